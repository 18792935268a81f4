package draft

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/klokku/kladd/internal/event_bus"
	"github.com/klokku/kladd/internal/utils"
	"github.com/klokku/kladd/pkg/event"
	"github.com/klokku/kladd/pkg/recurrence"
	"github.com/klokku/kladd/pkg/timerange"
	"github.com/klokku/kladd/pkg/timezone"
)

var (
	// ErrDraftNotFound is returned for an unknown or expired session id.
	ErrDraftNotFound = errors.New("draft not found")
	// ErrInvalidRange rejects saving while the start comes after the end.
	ErrInvalidRange = errors.New("start must not be after end")
)

// Details carries the free-text fields of an event.
type Details struct {
	Summary     string
	Description string
	Location    string
	Categories  []string
	URL         string
}

type Service interface {
	// OpenNew starts a session for an event that does not exist yet.
	OpenNew(ctx context.Context, allDay bool) (*Draft, error)
	// Open starts a session editing a stored event.
	Open(ctx context.Context, eventUID string) (*Draft, error)
	Get(ctx context.Context, draftID string) (*Draft, error)
	// ValidateField parses text for one time range field and applies it.
	ValidateField(ctx context.Context, draftID string, field Field, text string) (*Draft, error)
	SetAllDay(ctx context.Context, draftID string, allDay bool) (*Draft, error)
	// SetTimezone toggles the explicit timezone, converting into zoneName
	// when visible becomes true.
	SetTimezone(ctx context.Context, draftID string, visible bool, zoneName string) (*Draft, error)
	UpdateDetails(ctx context.Context, draftID string, details Details) (*Draft, error)
	SetRecurrence(ctx context.Context, draftID string, rule string) (*Draft, error)
	SetAlarms(ctx context.Context, draftID string, alarms []event.Alarm) (*Draft, error)
	// Save writes the draft to the calendar and ends the session.
	Save(ctx context.Context, draftID string) (event.Event, error)
	// Discard ends the session without saving.
	Discard(ctx context.Context, draftID string) error
	// SweepExpired drops inactive sessions and returns how many went.
	SweepExpired(ctx context.Context) int
}

type ServiceImpl struct {
	sessions *SessionStore
	store    event.Store
	locale   timerange.Locale
	eventBus *event_bus.EventBus
	clock    utils.Clock
}

func NewService(sessions *SessionStore, store event.Store, locale timerange.Locale, eventBus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{sessions, store, locale, eventBus, clock}
}

func (s *ServiceImpl) OpenNew(ctx context.Context, allDay bool) (*Draft, error) {
	now := s.clock.Now().In(s.locale.DefaultTimezone)

	var start, end timerange.Moment
	if allDay {
		days := int(s.locale.DefaultDayEventDuration / (24 * time.Hour))
		if days < 1 {
			days = 1
		}
		start = timerange.DateOf(now)
		end = timerange.DateOf(now.AddDate(0, 0, days-1))
	} else {
		from := nextQuarterHour(now)
		start = timerange.NewTimed(from)
		end = timerange.NewTimed(from.Add(s.locale.DefaultEventDuration))
	}

	d := &Draft{
		ID:       uuid.NewString(),
		EventUID: uuid.NewString(),
		IsNew:    true,
		Range:    timerange.New(start, end, s.locale),
	}
	d.capture()
	view := d.view()
	s.sessions.Add(d)
	log.Debugf("opened draft %s for a new event", d.ID)
	return view, nil
}

func (s *ServiceImpl) Open(ctx context.Context, eventUID string) (*Draft, error) {
	e, err := s.store.Get(ctx, eventUID)
	if err != nil {
		return nil, fmt.Errorf("loading event %s: %w", eventUID, err)
	}

	start, end := momentsOf(e)
	d := &Draft{
		ID:          uuid.NewString(),
		EventUID:    e.UID,
		Summary:     e.Summary,
		Description: e.Description,
		Location:    e.Location,
		Categories:  append([]string(nil), e.Categories...),
		URL:         e.URL,
		RRule:       e.RRule,
		Alarms:      append([]event.Alarm(nil), e.Alarms...),
		Range:       timerange.New(start, end, s.locale),
	}
	d.capture()
	view := d.view()
	s.sessions.Add(d)
	log.Debugf("opened draft %s for event %s", d.ID, e.UID)
	return view, nil
}

// momentsOf turns stored event times into editor moments. The exclusive end
// date of an all-day event becomes the inclusive last day the editor shows.
func momentsOf(e event.Event) (timerange.Moment, timerange.Moment) {
	if e.AllDay {
		return timerange.DateOf(e.Start), timerange.DateOf(e.End.AddDate(0, 0, -1))
	}
	return timerange.NewTimed(e.Start), timerange.NewTimed(e.End)
}

func (s *ServiceImpl) Get(ctx context.Context, draftID string) (*Draft, error) {
	d, err := s.draft(draftID)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.view(), nil
}

func (s *ServiceImpl) ValidateField(ctx context.Context, draftID string, field Field, text string) (*Draft, error) {
	d, err := s.draft(draftID)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	switch field {
	case FieldStartDate:
		_, err = d.Range.ValidateStartDate(text)
	case FieldStartTime:
		_, err = d.Range.ValidateStartTime(text)
	case FieldEndDate:
		_, err = d.Range.ValidateEndDate(text)
	case FieldEndTime:
		_, err = d.Range.ValidateEndTime(text)
	default:
		return nil, fmt.Errorf("unknown field %q", field)
	}
	if err != nil {
		return nil, err
	}
	return d.view(), nil
}

func (s *ServiceImpl) SetAllDay(ctx context.Context, draftID string, allDay bool) (*Draft, error) {
	d, err := s.draft(draftID)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.Range.SetAllDay(allDay)
	return d.view(), nil
}

func (s *ServiceImpl) SetTimezone(ctx context.Context, draftID string, visible bool, zoneName string) (*Draft, error) {
	d, err := s.draft(draftID)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	var selector timerange.ZoneSelector
	if visible {
		selector = timezone.Fixed(zoneName)
	}
	if err := d.Range.SetTimezoneVisible(visible, selector); err != nil {
		return nil, err
	}
	return d.view(), nil
}

func (s *ServiceImpl) UpdateDetails(ctx context.Context, draftID string, details Details) (*Draft, error) {
	d, err := s.draft(draftID)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.Summary = details.Summary
	d.Description = details.Description
	d.Location = details.Location
	d.Categories = append([]string(nil), details.Categories...)
	d.URL = details.URL
	return d.view(), nil
}

func (s *ServiceImpl) SetRecurrence(ctx context.Context, draftID string, rule string) (*Draft, error) {
	d, err := s.draft(draftID)
	if err != nil {
		return nil, err
	}
	if err := recurrence.Validate(rule); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.RRule = rule
	return d.view(), nil
}

func (s *ServiceImpl) SetAlarms(ctx context.Context, draftID string, alarms []event.Alarm) (*Draft, error) {
	d, err := s.draft(draftID)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.Alarms = append([]event.Alarm(nil), alarms...)
	return d.view(), nil
}

func (s *ServiceImpl) Save(ctx context.Context, draftID string) (event.Event, error) {
	d, err := s.draft(draftID)
	if err != nil {
		return event.Event{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := recurrence.Validate(d.RRule); err != nil {
		return event.Event{}, err
	}
	if !d.Range.Valid() {
		return event.Event{}, ErrInvalidRange
	}

	e := s.eventOf(d)
	if err := s.store.Put(ctx, e); err != nil {
		return event.Event{}, fmt.Errorf("storing event %s: %w", e.UID, err)
	}
	s.sessions.Remove(d.ID)

	err = s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.TypeEventSaved, event_bus.EventSaved{
		UID:      e.UID,
		Summary:  e.Summary,
		AllDay:   e.AllDay,
		Start:    e.Start,
		End:      e.End,
		Timezone: e.Timezone,
		Created:  d.IsNew,
	}))
	if err != nil {
		// The event is already on disk; subscribers failing must not undo
		// the save from the client's point of view.
		log.Errorf("failed to publish saved event %s: %v", e.UID, err)
	}
	return e, nil
}

// eventOf reads the draft back out under its active representation. All-day
// events are stored with date midnights in UTC and an exclusive end.
func (s *ServiceImpl) eventOf(d *Draft) event.Event {
	e := event.Event{
		UID:          d.EventUID,
		Summary:      d.Summary,
		Description:  d.Description,
		Location:     d.Location,
		Categories:   append([]string(nil), d.Categories...),
		URL:          d.URL,
		RRule:        d.RRule,
		Alarms:       append([]event.Alarm(nil), d.Alarms...),
		AllDay:       d.Range.AllDay(),
		LastModified: s.clock.Now().UTC(),
	}

	start, end := d.Range.Start(), d.Range.End()
	if e.AllDay {
		year, month, day := start.Date()
		e.Start = time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		year, month, day = end.Date()
		e.End = time.Date(year, month, day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	} else {
		e.Start = start.Time
		e.End = end.Time
		e.Timezone = d.Range.Timezone().String()
	}
	return e
}

func (s *ServiceImpl) Discard(ctx context.Context, draftID string) error {
	d, ok := s.sessions.Remove(draftID)
	if !ok {
		return ErrDraftNotFound
	}
	s.publishDiscarded(ctx, d)
	return nil
}

func (s *ServiceImpl) SweepExpired(ctx context.Context) int {
	expired := s.sessions.Sweep()
	for _, d := range expired {
		log.Infof("draft session %s expired", d.ID)
		s.publishDiscarded(ctx, d)
	}
	return len(expired)
}

func (s *ServiceImpl) publishDiscarded(ctx context.Context, d *Draft) {
	err := s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.TypeDraftDiscarded, event_bus.DraftDiscarded{
		DraftID: d.ID,
		UID:     d.EventUID,
	}))
	if err != nil {
		log.Errorf("failed to publish discarded draft %s: %v", d.ID, err)
	}
}

func (s *ServiceImpl) draft(draftID string) (*Draft, error) {
	d, ok := s.sessions.Get(draftID)
	if !ok {
		return nil, ErrDraftNotFound
	}
	return d, nil
}

// nextQuarterHour rounds up to the next full quarter hour, so fresh events
// start at a tidy time.
func nextQuarterHour(t time.Time) time.Time {
	rounded := t.Truncate(15 * time.Minute)
	if rounded.Before(t) {
		rounded = rounded.Add(15 * time.Minute)
	}
	return rounded
}
