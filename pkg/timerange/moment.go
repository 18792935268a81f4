package timerange

import (
	"time"
)

// Moment is a point on the calendar that is either a whole day or an exact
// instant. All-day events are built from date-only moments, timed events from
// timed ones. The zero value is a timed moment at the zero instant.
type Moment struct {
	Time     time.Time
	DateOnly bool
}

// NewDate returns a date-only Moment. The calendar date is all that is
// retained; time-of-day and timezone are not meaningful on it.
func NewDate(year int, month time.Month, day int) Moment {
	return Moment{
		Time:     time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
		DateOnly: true,
	}
}

// NewTimed returns a Moment for the exact instant t, keeping t's location.
func NewTimed(t time.Time) Moment {
	return Moment{Time: t}
}

// DateOf truncates t to its calendar date in t's own location and returns it
// as a date-only Moment.
func DateOf(t time.Time) Moment {
	year, month, day := t.Date()
	return NewDate(year, month, day)
}

// Date returns the calendar date of the moment, read in the moment's own
// location when it is timed.
func (m Moment) Date() (year int, month time.Month, day int) {
	return m.Time.Date()
}

// TimeOfDay returns the wall-clock time of the moment. A date-only moment has
// no time-of-day and reports midnight.
func (m Moment) TimeOfDay() (hour, min, sec int) {
	if m.DateOnly {
		return 0, 0, 0
	}
	return m.Time.Clock()
}

// Location returns the moment's own timezone, or fallback for a date-only
// moment, which carries none.
func (m Moment) Location(fallback *time.Location) *time.Location {
	if m.DateOnly {
		return fallback
	}
	return m.Time.Location()
}

// In converts a timed moment into loc without moving the underlying instant.
// Date-only moments have no timezone and are returned unchanged.
func (m Moment) In(loc *time.Location) Moment {
	if m.DateOnly {
		return m
	}
	return Moment{Time: m.Time.In(loc)}
}

// Equal reports whether two moments are the same value. Moments of different
// kinds are never equal; date-only moments compare by calendar date, timed
// moments by instant.
func (m Moment) Equal(o Moment) bool {
	if m.DateOnly != o.DateOnly {
		return false
	}
	if m.DateOnly {
		y1, m1, d1 := m.Date()
		y2, m2, d2 := o.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	}
	return m.Time.Equal(o.Time)
}

// After reports whether m is later than o. Date-only moments compare by
// calendar date; a comparison involving a date-only moment uses the other
// moment's calendar date as well.
func (m Moment) After(o Moment) bool {
	if m.DateOnly || o.DateOnly {
		y1, m1, d1 := m.Date()
		y2, m2, d2 := o.Date()
		a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
		b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
		return a.After(b)
	}
	return m.Time.After(o.Time)
}

// Format renders the moment using a Go time layout.
func (m Moment) Format(layout string) string {
	return m.Time.Format(layout)
}

func (m Moment) String() string {
	if m.DateOnly {
		return m.Time.Format(time.DateOnly)
	}
	return m.Time.Format(time.RFC3339)
}
