// Package ics converts events to and from iCalendar payloads, one VEVENT
// per payload. All-day events travel as VALUE=DATE with an exclusive end
// date; timed events carry a TZID parameter or a UTC timestamp.
package ics

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/sosodev/duration"

	"github.com/klokku/kladd/pkg/event"
)

const (
	dateLayout  = "20060102"
	localLayout = "20060102T150405"
	utcLayout   = "20060102T150405Z"
)

// Encode renders the event as a VCALENDAR with a single VEVENT. DTSTAMP is
// taken from the event's LastModified, falling back to the current time.
func Encode(e event.Event) (string, error) {
	if e.UID == "" {
		return "", fmt.Errorf("event has no UID")
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	ve := cal.AddEvent(e.UID)

	stamp := e.LastModified
	if stamp.IsZero() {
		stamp = time.Now()
	}
	ve.SetDtStampTime(stamp)
	if !e.LastModified.IsZero() {
		ve.SetModifiedAt(e.LastModified)
	}

	if err := setTimes(ve, e); err != nil {
		return "", err
	}

	ve.SetSummary(e.Summary)
	if e.Description != "" {
		ve.SetDescription(e.Description)
	}
	if e.Location != "" {
		ve.SetLocation(e.Location)
	}
	if e.URL != "" {
		ve.SetURL(e.URL)
	}
	if len(e.Categories) > 0 {
		ve.SetProperty(ical.ComponentProperty(ical.PropertyCategories), strings.Join(e.Categories, ","))
	}
	if e.RRule != "" {
		ve.SetProperty(ical.ComponentPropertyRrule, e.RRule)
	}

	for _, a := range e.Alarms {
		alarm := &ical.VAlarm{}
		alarm.SetProperty(ical.ComponentProperty(ical.PropertyAction), "DISPLAY")
		alarm.SetProperty(ical.ComponentProperty(ical.PropertyTrigger), FormatTrigger(a.Trigger))
		description := a.Description
		if description == "" {
			description = e.Summary
		}
		alarm.SetProperty(ical.ComponentPropertyDescription, description)
		ve.Components = append(ve.Components, alarm)
	}

	return cal.Serialize(), nil
}

func setTimes(ve *ical.VEvent, e event.Event) error {
	if e.AllDay {
		asDate := &ical.KeyValues{Key: "VALUE", Value: []string{"DATE"}}
		ve.SetProperty(ical.ComponentPropertyDtStart, e.Start.Format(dateLayout), asDate)
		ve.SetProperty(ical.ComponentPropertyDtEnd, e.End.Format(dateLayout), asDate)
		return nil
	}

	if e.Timezone != "" {
		loc, err := time.LoadLocation(e.Timezone)
		if err != nil {
			return fmt.Errorf("loading event timezone %q: %w", e.Timezone, err)
		}
		inZone := &ical.KeyValues{Key: "TZID", Value: []string{e.Timezone}}
		ve.SetProperty(ical.ComponentPropertyDtStart, e.Start.In(loc).Format(localLayout), inZone)
		ve.SetProperty(ical.ComponentPropertyDtEnd, e.End.In(loc).Format(localLayout), inZone)
		return nil
	}

	ve.SetProperty(ical.ComponentPropertyDtStart, e.Start.UTC().Format(utcLayout))
	ve.SetProperty(ical.ComponentPropertyDtEnd, e.End.UTC().Format(utcLayout))
	return nil
}

// FormatTrigger renders a trigger offset as an ISO 8601 duration, with the
// sign in front as RFC 5545 wants it.
func FormatTrigger(d time.Duration) string {
	negative := d < 0
	if negative {
		d = -d
	}
	iso := duration.FromTimeDuration(d).String()
	if negative {
		return "-" + iso
	}
	return iso
}
