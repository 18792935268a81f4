// Package calendar exposes the stored events: listing, lookup, deletion and
// bulk export. Writing events happens through draft sessions, never here.
package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/rusq/fsadapter"
	log "github.com/sirupsen/logrus"

	"github.com/klokku/kladd/internal/event_bus"
	"github.com/klokku/kladd/pkg/event"
)

// Exporter copies raw event files into an fsadapter target.
type Exporter interface {
	Export(fsa fsadapter.FS) (int, error)
}

type Service struct {
	store    event.Store
	exporter Exporter
	eventBus *event_bus.EventBus
}

func NewService(store event.Store, exporter Exporter, eventBus *event_bus.EventBus) *Service {
	return &Service{
		store:    store,
		exporter: exporter,
		eventBus: eventBus,
	}
}

// GetEvents returns events overlapping the given window, ordered by start.
// A zero from or to leaves that side of the window open.
func (s *Service) GetEvents(ctx context.Context, from time.Time, to time.Time) ([]event.Event, error) {
	events, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	filtered := make([]event.Event, 0, len(events))
	for _, e := range events {
		if !from.IsZero() && !e.End.After(from) {
			continue
		}
		if !to.IsZero() && !e.Start.Before(to) {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered, nil
}

func (s *Service) GetEvent(ctx context.Context, eventUID string) (event.Event, error) {
	return s.store.Get(ctx, eventUID)
}

func (s *Service) DeleteEvent(ctx context.Context, eventUID string) error {
	e, err := s.store.Get(ctx, eventUID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, eventUID); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	err = s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.TypeEventDeleted, event_bus.EventDeleted{
		UID:     e.UID,
		Summary: e.Summary,
	}))
	if err != nil {
		log.Errorf("failed to publish deleted event %s: %v", e.UID, err)
	}
	return nil
}

// Export writes every stored event into target, a directory path or a .zip
// archive path, and returns how many events were written.
func (s *Service) Export(ctx context.Context, target string) (int, error) {
	fsa, err := fsadapter.New(target)
	if err != nil {
		return 0, fmt.Errorf("failed to open export target: %w", err)
	}
	defer fsa.Close()

	exported, err := s.exporter.Export(fsa)
	if err != nil {
		return exported, fmt.Errorf("failed to export calendar: %w", err)
	}
	log.Infof("exported %d events to %s", exported, target)
	return exported, nil
}
