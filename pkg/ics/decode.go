package ics

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/sosodev/duration"

	"github.com/klokku/kladd/pkg/event"
)

// Decode parses an iCalendar payload into an event. Payloads holding several
// VEVENTs, as recurrence overrides do, yield the master entry. Floating
// times, which carry neither TZID nor a UTC marker, are read in defaultZone.
func Decode(data []byte, defaultZone *time.Location) (event.Event, error) {
	cal, err := ical.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		return event.Event{}, fmt.Errorf("parsing calendar data: %w", err)
	}
	events := cal.Events()
	if len(events) == 0 {
		return event.Event{}, fmt.Errorf("calendar data contains no event")
	}
	ve := master(events)

	var e event.Event
	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return event.Event{}, fmt.Errorf("event has no UID")
	}
	e.UID = uid.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		e.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		e.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		e.Location = p.Value
	}
	if p := ve.GetProperty(ical.ComponentProperty(ical.PropertyUrl)); p != nil {
		e.URL = p.Value
	}
	if p := ve.GetProperty(ical.ComponentProperty(ical.PropertyCategories)); p != nil {
		for _, c := range strings.Split(p.Value, ",") {
			if c = strings.TrimSpace(c); c != "" {
				e.Categories = append(e.Categories, c)
			}
		}
	}
	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		e.RRule = p.Value
	}
	if p := ve.GetProperty(ical.ComponentProperty(ical.PropertyLastModified)); p != nil {
		if t, err := time.Parse(utcLayout, p.Value); err == nil {
			e.LastModified = t
		}
	}

	startProp := ve.GetProperty(ical.ComponentPropertyDtStart)
	if startProp == nil {
		return event.Event{}, fmt.Errorf("event %s has no DTSTART", e.UID)
	}
	start, allDay, tzid, err := parseDateTime(startProp, defaultZone)
	if err != nil {
		return event.Event{}, fmt.Errorf("event %s: invalid DTSTART: %w", e.UID, err)
	}
	e.Start = start
	e.AllDay = allDay
	e.Timezone = tzid

	end, err := parseEnd(ve, e, defaultZone)
	if err != nil {
		return event.Event{}, fmt.Errorf("event %s: %w", e.UID, err)
	}
	e.End = end

	e.Alarms = parseAlarms(ve)

	return e, nil
}

// master returns the VEVENT without a RECURRENCE-ID, which describes the
// series itself rather than an overridden instance.
func master(events []*ical.VEvent) *ical.VEvent {
	for _, ve := range events {
		if ve.GetProperty("RECURRENCE-ID") == nil {
			return ve
		}
	}
	return events[0]
}

// parseDateTime reads a DTSTART or DTEND property. All-day values are
// reported with the date at midnight UTC and no zone name; timed values keep
// their TZID zone, UTC for a trailing Z, or defaultZone for floating times.
func parseDateTime(p *ical.IANAProperty, defaultZone *time.Location) (time.Time, bool, string, error) {
	v := strings.TrimSpace(p.Value)

	isDate := !strings.Contains(v, "T")
	if values, ok := p.ICalParameters["VALUE"]; ok && len(values) > 0 && strings.EqualFold(values[0], "DATE") {
		isDate = true
	}
	if isDate {
		t, err := time.ParseInLocation(dateLayout, v, time.UTC)
		return t, true, "", err
	}

	if tzids, ok := p.ICalParameters["TZID"]; ok && len(tzids) > 0 {
		loc, err := time.LoadLocation(tzids[0])
		if err != nil {
			return time.Time{}, false, "", fmt.Errorf("loading timezone %q: %w", tzids[0], err)
		}
		t, err := time.ParseInLocation(localLayout, v, loc)
		return t, false, tzids[0], err
	}

	if strings.HasSuffix(v, "Z") {
		t, err := time.Parse(utcLayout, v)
		return t, false, "", err
	}

	t, err := time.ParseInLocation(localLayout, v, defaultZone)
	return t, false, "", err
}

// parseEnd resolves the event end from DTEND, a DURATION, or the defaults
// of one day for all-day events and zero length for timed ones.
func parseEnd(ve *ical.VEvent, e event.Event, defaultZone *time.Location) (time.Time, error) {
	if p := ve.GetProperty(ical.ComponentPropertyDtEnd); p != nil {
		end, _, _, err := parseDateTime(p, defaultZone)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid DTEND: %w", err)
		}
		return end, nil
	}
	if p := ve.GetProperty(ical.ComponentProperty(ical.PropertyDuration)); p != nil {
		d, err := ParseTrigger(p.Value)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid DURATION: %w", err)
		}
		return e.Start.Add(d), nil
	}
	if e.AllDay {
		return e.Start.AddDate(0, 0, 1), nil
	}
	return e.Start, nil
}

func parseAlarms(ve *ical.VEvent) []event.Alarm {
	var alarms []event.Alarm
	for _, c := range ve.Components {
		va, ok := c.(*ical.VAlarm)
		if !ok {
			continue
		}
		trigger := va.GetProperty(ical.ComponentProperty(ical.PropertyTrigger))
		if trigger == nil {
			continue
		}
		offset, err := ParseTrigger(trigger.Value)
		if err != nil {
			continue
		}
		alarm := event.Alarm{Trigger: offset}
		if p := va.GetProperty(ical.ComponentPropertyDescription); p != nil {
			alarm.Description = p.Value
		}
		alarms = append(alarms, alarm)
	}
	return alarms
}

// ParseTrigger reads an ISO 8601 duration with an optional leading sign, as
// used by TRIGGER and DURATION properties.
func ParseTrigger(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	negative := strings.HasPrefix(v, "-")
	v = strings.TrimPrefix(strings.TrimPrefix(v, "-"), "+")
	d, err := duration.Parse(v)
	if err != nil {
		return 0, fmt.Errorf("parsing duration %q: %w", v, err)
	}
	offset := d.ToTimeDuration()
	if negative {
		offset = -offset
	}
	return offset, nil
}
