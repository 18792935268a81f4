// Package google mirrors the calendar into Google Calendar. The vdir store
// stays the source of truth; mirroring is best effort and never fails a save.
package google

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/klokku/kladd/internal/config"
	"github.com/klokku/kladd/internal/event_bus"
	"github.com/klokku/kladd/pkg/event"
)

type Sink struct {
	service    *gcal.Service
	store      event.Store
	calendarId string
}

// NewSink connects to Google Calendar with the offline token from the
// configured token file and subscribes to saved and deleted events.
func NewSink(ctx context.Context, cfg config.Google, store event.Store, eventBus *event_bus.EventBus) (*Sink, error) {
	client, err := newOAuthClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	service, err := gcal.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		err := fmt.Errorf("unable to retrieve Calendar client: %v", err)
		log.Error(err)
		return nil, err
	}

	calendarId := cfg.CalendarId
	if calendarId == "" {
		calendarId = "primary"
	}
	s := &Sink{service: service, store: store, calendarId: calendarId}

	event_bus.SubscribeTyped(eventBus, event_bus.TypeEventSaved, s.onEventSaved)
	event_bus.SubscribeTyped(eventBus, event_bus.TypeEventDeleted, s.onEventDeleted)
	log.Infof("Google Calendar mirror enabled for calendar %s", calendarId)
	return s, nil
}

func (s *Sink) onEventSaved(e event_bus.EventT[event_bus.EventSaved]) error {
	stored, err := s.store.Get(e.Context(), e.Data.UID)
	if err != nil {
		log.Errorf("unable to load saved event %s for mirroring: %v", e.Data.UID, err)
		return nil
	}
	if err := s.upsert(stored); err != nil {
		log.Errorf("unable to mirror event %s to Google Calendar: %v", stored.UID, err)
	}
	return nil
}

func (s *Sink) onEventDeleted(e event_bus.EventT[event_bus.EventDeleted]) error {
	existing, err := s.findByUID(e.Data.UID)
	if err != nil {
		log.Errorf("unable to look up deleted event %s in Google Calendar: %v", e.Data.UID, err)
		return nil
	}
	if existing == nil {
		return nil
	}
	if err := s.service.Events.Delete(s.calendarId, existing.Id).Do(); err != nil {
		log.Errorf("unable to delete event %s from Google Calendar: %v", e.Data.UID, err)
	}
	return nil
}

// upsert keys the mirrored copy on the iCalendar UID, so repeated saves of
// the same event update one Google entry instead of piling up imports.
func (s *Sink) upsert(e event.Event) error {
	existing, err := s.findByUID(e.UID)
	if err != nil {
		return err
	}

	ev := googleEvent(e)
	if existing == nil {
		if _, err := s.service.Events.Import(s.calendarId, ev).Do(); err != nil {
			return fmt.Errorf("unable to insert event in Google Calendar: %v", err)
		}
		return nil
	}
	if _, err := s.service.Events.Update(s.calendarId, existing.Id, ev).Do(); err != nil {
		return fmt.Errorf("unable to update event in Google Calendar: %v", err)
	}
	return nil
}

func (s *Sink) findByUID(uid string) (*gcal.Event, error) {
	list, err := s.service.Events.List(s.calendarId).ICalUID(uid).MaxResults(1).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve events from Google Calendar: %v", err)
	}
	if len(list.Items) == 0 {
		return nil, nil
	}
	return list.Items[0], nil
}

func googleEvent(e event.Event) *gcal.Event {
	ev := &gcal.Event{
		ICalUID:     e.UID,
		Summary:     e.Summary,
		Description: e.Description,
		Location:    e.Location,
	}
	if e.AllDay {
		ev.Start = &gcal.EventDateTime{Date: e.Start.Format(time.DateOnly)}
		ev.End = &gcal.EventDateTime{Date: e.End.Format(time.DateOnly)}
	} else {
		ev.Start = &gcal.EventDateTime{DateTime: e.Start.Format(time.RFC3339), TimeZone: e.Timezone}
		ev.End = &gcal.EventDateTime{DateTime: e.End.Format(time.RFC3339), TimeZone: e.Timezone}
	}
	if e.RRule != "" {
		ev.Recurrence = []string{"RRULE:" + e.RRule}
	}
	if overrides := reminderOverrides(e.Alarms); len(overrides) > 0 {
		ev.Reminders = &gcal.EventReminders{
			UseDefault:      false,
			Overrides:       overrides,
			ForceSendFields: []string{"UseDefault"},
		}
	}
	return ev
}

func reminderOverrides(alarms []event.Alarm) []*gcal.EventReminder {
	overrides := make([]*gcal.EventReminder, 0, len(alarms))
	for _, a := range alarms {
		if a.Trigger > 0 {
			// Google only knows reminders that fire before the start.
			continue
		}
		overrides = append(overrides, &gcal.EventReminder{
			Method:  "popup",
			Minutes: int64(-a.Trigger / time.Minute),
		})
	}
	return overrides
}
