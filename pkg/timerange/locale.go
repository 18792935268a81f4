package timerange

import (
	"fmt"
	"time"

	"github.com/ncruces/go-strftime"
)

// Locale bundles the user-facing date and time conventions that field editing
// runs against. Formats are given in strftime notation, like "%d.%m.%Y" and
// "%H:%M", and are compiled into Go layouts once at construction.
type Locale struct {
	// LongDateFormat renders and parses the date part of a moment.
	LongDateFormat string
	// TimeFormat renders and parses the time-of-day part of a moment.
	TimeFormat string
	// DefaultTimezone is attached to parsed times and is the zone an event
	// returns to when its explicit timezone is hidden again.
	DefaultTimezone *time.Location
	// FirstWeekday is the first day of the week in this locale.
	FirstWeekday time.Weekday
	// DefaultEventDuration spans a fresh timed event.
	DefaultEventDuration time.Duration
	// DefaultDayEventDuration spans a fresh all-day event.
	DefaultDayEventDuration time.Duration

	longDateLayout string
	timeLayout     string
}

// NewLocale compiles the strftime formats and returns a ready Locale.
// It fails when a format has no Go layout equivalent or the timezone is nil.
func NewLocale(longDateFormat, timeFormat string, defaultTimezone *time.Location) (Locale, error) {
	if defaultTimezone == nil {
		return Locale{}, fmt.Errorf("default timezone must not be nil")
	}
	longDateLayout, err := strftime.Layout(longDateFormat)
	if err != nil {
		return Locale{}, fmt.Errorf("compiling long date format %q: %w", longDateFormat, err)
	}
	timeLayout, err := strftime.Layout(timeFormat)
	if err != nil {
		return Locale{}, fmt.Errorf("compiling time format %q: %w", timeFormat, err)
	}
	return Locale{
		LongDateFormat:          longDateFormat,
		TimeFormat:              timeFormat,
		DefaultTimezone:         defaultTimezone,
		FirstWeekday:            time.Monday,
		DefaultEventDuration:    time.Hour,
		DefaultDayEventDuration: 24 * time.Hour,
		longDateLayout:          longDateLayout,
		timeLayout:              timeLayout,
	}, nil
}

// DateLayout returns the Go layout compiled from LongDateFormat.
func (l Locale) DateLayout() string {
	return l.longDateLayout
}

// TimeLayout returns the Go layout compiled from TimeFormat.
func (l Locale) TimeLayout() string {
	return l.timeLayout
}

// FormatDate renders the date part of m using the locale's long date format.
func (l Locale) FormatDate(m Moment) string {
	return m.Format(l.longDateLayout)
}

// FormatTime renders the time-of-day part of m using the locale's time
// format. Date-only moments render as midnight.
func (l Locale) FormatTime(m Moment) string {
	return m.Format(l.timeLayout)
}
