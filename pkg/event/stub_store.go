package event

import (
	"context"
	"sort"
)

// StubStore is an in-memory Store for tests.
type StubStore struct {
	data map[string]Event
}

func NewStubStore() *StubStore {
	return &StubStore{data: map[string]Event{}}
}

func (s *StubStore) Put(ctx context.Context, event Event) error {
	s.data[event.UID] = event
	return nil
}

func (s *StubStore) Get(ctx context.Context, uid string) (Event, error) {
	event, ok := s.data[uid]
	if !ok {
		return Event{}, ErrNotFound
	}
	return event, nil
}

func (s *StubStore) List(ctx context.Context) ([]Event, error) {
	events := make([]Event, 0, len(s.data))
	for _, event := range s.data {
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].Start.Equal(events[j].Start) {
			return events[i].UID < events[j].UID
		}
		return events[i].Start.Before(events[j].Start)
	})
	return events, nil
}

func (s *StubStore) Delete(ctx context.Context, uid string) error {
	if _, ok := s.data[uid]; !ok {
		return ErrNotFound
	}
	delete(s.data, uid)
	return nil
}

func (s *StubStore) Cleanup() {
	s.data = map[string]Event{}
}
