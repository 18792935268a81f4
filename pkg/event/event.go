package event

import (
	"time"
)

// Event is a single calendar entry as it is stored. All-day events span
// whole calendar days; Start and End then hold midnight of the first day
// and of the day after the last one. Timed events keep their instants in
// the zone named by Timezone.
type Event struct {
	UID          string
	Summary      string
	Description  string
	Location     string
	Categories   []string
	URL          string
	AllDay       bool
	Start        time.Time
	End          time.Time
	Timezone     string
	RRule        string
	Alarms       []Alarm
	LastModified time.Time
}

// Alarm is a reminder attached to an event. Trigger is relative to the
// event start; a negative duration fires before it.
type Alarm struct {
	Trigger     time.Duration
	Description string
}

// Duration returns the span between start and end.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}
