// Package timerange holds the start/end pair of a calendar event while it is
// being edited. It keeps track of the all-day flag and the visible timezone,
// validates field text against the locale's formats, and answers whether the
// pair changed and whether it still describes a valid range.
package timerange

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidFormat is returned when field text does not conform to the
// locale's date or time format. The range keeps its previous state then.
var ErrInvalidFormat = errors.New("invalid format")

// ZoneSelector supplies the timezone an event is converted into when its
// timezone becomes visible. Implementations typically ask the user.
type ZoneSelector func() (*time.Location, error)

// EventTimeRange is the mutable start/end state of a single event under
// edit. It is constructed from the event's current moments and accumulates
// field edits and representation toggles until the caller reads the result
// back out. It is not safe for concurrent use.
type EventTimeRange struct {
	locale Locale

	start Moment
	end   Moment

	allDay    bool
	tzVisible bool

	originalStart Moment
	originalEnd   Moment
}

// New returns a range seeded with the event's current start and end. Whether
// the event is all-day is derived from the start moment. The moments are
// kept exactly as given; nothing is converted or validated here.
func New(start, end Moment, locale Locale) *EventTimeRange {
	return &EventTimeRange{
		locale:        locale,
		start:         start,
		end:           end,
		allDay:        start.DateOnly,
		originalStart: start,
		originalEnd:   end,
	}
}

// Clone returns an independent copy of the range. Moments and the locale
// are plain values, so a struct copy is enough.
func (r *EventTimeRange) Clone() *EventTimeRange {
	c := *r
	return &c
}

// Locale returns the locale the range was built with.
func (r *EventTimeRange) Locale() Locale {
	return r.locale
}

// AllDay reports whether the range currently represents an all-day event.
func (r *EventTimeRange) AllDay() bool {
	return r.allDay
}

// TimezoneVisible reports whether an explicitly chosen timezone is active.
func (r *EventTimeRange) TimezoneVisible() bool {
	return r.tzVisible
}

// Start returns the start moment under the active representation: date-only
// when the range is all-day, the stored timed moment otherwise.
func (r *EventTimeRange) Start() Moment {
	return r.project(r.start)
}

// End returns the end moment under the active representation.
func (r *EventTimeRange) End() Moment {
	return r.project(r.end)
}

func (r *EventTimeRange) project(m Moment) Moment {
	if r.allDay && !m.DateOnly {
		return DateOf(m.Time)
	}
	return m
}

// Timezone returns the zone the start moment lives in, falling back to the
// locale default when the range is all-day.
func (r *EventTimeRange) Timezone() *time.Location {
	return r.start.Location(r.locale.DefaultTimezone)
}

// FormatStartDate renders the start date in the locale's long date format.
func (r *EventTimeRange) FormatStartDate() string {
	return r.locale.FormatDate(r.Start())
}

// FormatStartTime renders the start time in the locale's time format.
func (r *EventTimeRange) FormatStartTime() string {
	return r.locale.FormatTime(r.Start())
}

// FormatEndDate renders the end date in the locale's long date format.
func (r *EventTimeRange) FormatEndDate() string {
	return r.locale.FormatDate(r.End())
}

// FormatEndTime renders the end time in the locale's time format.
func (r *EventTimeRange) FormatEndTime() string {
	return r.locale.FormatTime(r.End())
}

// ValidateStartDate parses text as a date and moves the start to that date,
// keeping its time-of-day and timezone. On failure the range is unchanged
// and the error wraps ErrInvalidFormat.
func (r *EventTimeRange) ValidateStartDate(text string) (Moment, error) {
	m, err := r.combineDate(r.start, text)
	if err != nil {
		return Moment{}, err
	}
	r.start = m
	return r.Start(), nil
}

// ValidateStartTime parses text as a time-of-day and moves the start to that
// time, keeping its date and timezone. A date-only start contributes its
// date and picks up the parsed time.
func (r *EventTimeRange) ValidateStartTime(text string) (Moment, error) {
	m, err := r.combineTime(r.start, text)
	if err != nil {
		return Moment{}, err
	}
	r.start = m
	return r.Start(), nil
}

// ValidateEndDate parses text as a date and moves the end to that date,
// keeping its time-of-day and timezone.
func (r *EventTimeRange) ValidateEndDate(text string) (Moment, error) {
	m, err := r.combineDate(r.end, text)
	if err != nil {
		return Moment{}, err
	}
	r.end = m
	return r.End(), nil
}

// ValidateEndTime parses text as a time-of-day and moves the end to that
// time, keeping its date and timezone.
func (r *EventTimeRange) ValidateEndTime(text string) (Moment, error) {
	m, err := r.combineTime(r.end, text)
	if err != nil {
		return Moment{}, err
	}
	r.end = m
	return r.End(), nil
}

// combineDate replaces the date part of cur with the date parsed from text.
// The result is always a timed moment in cur's zone; the all-day projection
// happens on read.
func (r *EventTimeRange) combineDate(cur Moment, text string) (Moment, error) {
	loc := cur.Location(r.locale.DefaultTimezone)
	parsed, err := time.ParseInLocation(r.locale.longDateLayout, text, loc)
	if err != nil {
		return Moment{}, fmt.Errorf("%q does not match %q: %w", text, r.locale.LongDateFormat, ErrInvalidFormat)
	}
	year, month, day := parsed.Date()
	hour, min, sec := cur.TimeOfDay()
	return NewTimed(time.Date(year, month, day, hour, min, sec, 0, loc)), nil
}

// combineTime replaces the time-of-day part of cur with the time parsed from
// text, keeping cur's date and zone.
func (r *EventTimeRange) combineTime(cur Moment, text string) (Moment, error) {
	loc := cur.Location(r.locale.DefaultTimezone)
	parsed, err := time.ParseInLocation(r.locale.timeLayout, text, loc)
	if err != nil {
		return Moment{}, fmt.Errorf("%q does not match %q: %w", text, r.locale.TimeFormat, ErrInvalidFormat)
	}
	year, month, day := cur.Date()
	hour, min, sec := parsed.Clock()
	return NewTimed(time.Date(year, month, day, hour, min, sec, 0, loc)), nil
}

// SetAllDay switches between the all-day and timed representations. Going
// all-day truncates both moments to their calendar dates; going timed again
// puts them at midnight in the default timezone, so the original
// time-of-day does not survive a round trip.
func (r *EventTimeRange) SetAllDay(allDay bool) {
	if allDay == r.allDay {
		return
	}
	if allDay {
		r.start = DateOf(r.start.Time)
		r.end = DateOf(r.end.Time)
	} else {
		r.start = r.midnight(r.start)
		r.end = r.midnight(r.end)
	}
	r.allDay = allDay
}

func (r *EventTimeRange) midnight(m Moment) Moment {
	year, month, day := m.Date()
	return NewTimed(time.Date(year, month, day, 0, 0, 0, 0, r.locale.DefaultTimezone))
}

// SetTimezoneVisible attaches or detaches an explicit timezone. Turning it
// on asks selectZone for the zone and converts both moments into it; turning
// it off converts them back into the default timezone. Both directions
// preserve the underlying instants. A selector failure leaves the range
// unchanged. Date-only moments carry no zone and pass through untouched.
func (r *EventTimeRange) SetTimezoneVisible(visible bool, selectZone ZoneSelector) error {
	if visible == r.tzVisible {
		return nil
	}
	if visible {
		if selectZone == nil {
			return fmt.Errorf("no timezone selector provided")
		}
		loc, err := selectZone()
		if err != nil {
			return fmt.Errorf("selecting timezone: %w", err)
		}
		if loc == nil {
			return fmt.Errorf("timezone selector returned no zone")
		}
		r.start = r.start.In(loc)
		r.end = r.end.In(loc)
	} else {
		r.start = r.start.In(r.locale.DefaultTimezone)
		r.end = r.end.In(r.locale.DefaultTimezone)
	}
	r.tzVisible = visible
	return nil
}

// Changed reports whether the range, read under the active representation,
// differs from the moments it was constructed with.
func (r *EventTimeRange) Changed() bool {
	return !r.Start().Equal(r.originalStart) || !r.End().Equal(r.originalEnd)
}

// Valid reports whether the start does not come after the end under the
// active representation. All-day ranges compare by calendar date, timed
// ranges by instant.
func (r *EventTimeRange) Valid() bool {
	return !r.Start().After(r.End())
}
