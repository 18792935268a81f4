package event

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no event with the requested UID exists.
var ErrNotFound = errors.New("event not found")

// Store persists events by UID.
type Store interface {
	// Put writes the event, replacing any stored one with the same UID.
	Put(ctx context.Context, event Event) error
	// Get returns the event with the given UID or ErrNotFound.
	Get(ctx context.Context, uid string) (Event, error)
	// List returns all stored events ordered by start, then UID.
	List(ctx context.Context) ([]Event, error)
	// Delete removes the event with the given UID or returns ErrNotFound.
	Delete(ctx context.Context, uid string) error
}
