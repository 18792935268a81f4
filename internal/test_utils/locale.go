package test_utils

import (
	"testing"
	"time"

	"github.com/klokku/kladd/pkg/timerange"
)

// MustZone loads a timezone by name and fails the test when the zone
// database does not know it.
func MustZone(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("failed to load timezone %s: %v", name, err)
	}
	return loc
}

// TestLocale returns the locale most tests edit in: day-first dates,
// 24-hour clock, Europe/Berlin.
func TestLocale(t *testing.T) timerange.Locale {
	t.Helper()
	locale, err := timerange.NewLocale("%d.%m.%Y", "%H:%M", MustZone(t, "Europe/Berlin"))
	if err != nil {
		t.Fatalf("failed to build test locale: %v", err)
	}
	return locale
}
