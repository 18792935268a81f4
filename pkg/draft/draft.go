// Package draft holds editing sessions for calendar events. A draft is a
// server-side working copy of one event: its start/end pair lives in a
// timerange editor, the remaining fields are plain values. Nothing touches
// the calendar until the draft is saved.
package draft

import (
	"fmt"
	"slices"
	"sync"

	"github.com/klokku/kladd/pkg/event"
	"github.com/klokku/kladd/pkg/timerange"
)

// Draft fields other than the immutable ID, EventUID and IsNew are only
// touched while mu is held; the service locks it around every operation so
// concurrent requests for the same draft are applied one after another.
type Draft struct {
	mu sync.Mutex

	ID          string
	EventUID    string
	IsNew       bool // the event has never been saved
	Summary     string
	Description string
	Location    string
	Categories  []string
	URL         string
	RRule       string
	Alarms      []event.Alarm
	Range       *timerange.EventTimeRange

	original snapshot
}

// snapshot freezes the details a draft was opened with so later edits can
// be told apart from the original.
type snapshot struct {
	summary     string
	description string
	location    string
	categories  []string
	url         string
	rrule       string
	alarms      []event.Alarm
}

func (s snapshot) clone() snapshot {
	s.categories = slices.Clone(s.categories)
	s.alarms = slices.Clone(s.alarms)
	return s
}

// view returns a detached copy of the draft. Responses are rendered from
// views, so reading one never races with edits on the live draft.
func (d *Draft) view() *Draft {
	return &Draft{
		ID:          d.ID,
		EventUID:    d.EventUID,
		IsNew:       d.IsNew,
		Summary:     d.Summary,
		Description: d.Description,
		Location:    d.Location,
		Categories:  slices.Clone(d.Categories),
		URL:         d.URL,
		RRule:       d.RRule,
		Alarms:      slices.Clone(d.Alarms),
		Range:       d.Range.Clone(),
		original:    d.original.clone(),
	}
}

// capture records the current details as the draft's pristine state.
func (d *Draft) capture() {
	d.original = snapshot{
		summary:     d.Summary,
		description: d.Description,
		location:    d.Location,
		categories:  slices.Clone(d.Categories),
		url:         d.URL,
		rrule:       d.RRule,
		alarms:      slices.Clone(d.Alarms),
	}
}

// Changed reports whether any part of the draft differs from the state it
// was opened with, the time range included.
func (d *Draft) Changed() bool {
	return d.Range.Changed() ||
		d.Summary != d.original.summary ||
		d.Description != d.original.description ||
		d.Location != d.original.location ||
		d.URL != d.original.url ||
		d.RRule != d.original.rrule ||
		!slices.Equal(d.Categories, d.original.categories) ||
		!slices.Equal(d.Alarms, d.original.alarms)
}

// Valid reports whether the draft can be saved. Only the time range can
// make a draft invalid; an event without a summary is allowed.
func (d *Draft) Valid() bool {
	return d.Range.Valid()
}

// Field names one of the four editable time range inputs.
type Field string

const (
	FieldStartDate Field = "startDate"
	FieldStartTime Field = "startTime"
	FieldEndDate   Field = "endDate"
	FieldEndTime   Field = "endTime"
)

// ParseField maps the wire name of a field onto a Field.
func ParseField(s string) (Field, error) {
	switch Field(s) {
	case FieldStartDate, FieldStartTime, FieldEndDate, FieldEndTime:
		return Field(s), nil
	}
	return "", fmt.Errorf("unknown field %q", s)
}
