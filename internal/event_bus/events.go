package event_bus

import "time"

// Event types published by the application.
const (
	TypeEventSaved     EventType = "calendar.event.saved"
	TypeEventDeleted   EventType = "calendar.event.deleted"
	TypeDraftDiscarded EventType = "draft.discarded"
)

// EventSaved is published after an event has been written to the calendar,
// both for new events and for edits of existing ones.
type EventSaved struct {
	UID      string
	Summary  string
	AllDay   bool
	Start    time.Time
	End      time.Time
	Timezone string
	// Created is true on the first save of a new event.
	Created bool
}

// EventDeleted is published after an event has been removed from the
// calendar.
type EventDeleted struct {
	UID     string
	Summary string
}

// DraftDiscarded is published when an editing session is thrown away without
// saving, including sessions removed by the expiry sweep.
type DraftDiscarded struct {
	DraftID string
	UID     string
}
