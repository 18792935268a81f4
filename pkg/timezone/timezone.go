// Package timezone answers which IANA timezones the application offers and
// turns a chosen zone name into a selector the time range editor accepts.
package timezone

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/klokku/kladd/pkg/timerange"
)

// ErrUnknownZone is returned when a name does not resolve to an IANA
// timezone.
var ErrUnknownZone = errors.New("unknown timezone")

// common is the set of zones offered for picking. It covers the well-known
// city zones plus UTC; any valid IANA name is still accepted on input.
var common = []string{
	"Africa/Cairo",
	"Africa/Johannesburg",
	"Africa/Lagos",
	"Africa/Nairobi",
	"America/Anchorage",
	"America/Argentina/Buenos_Aires",
	"America/Bogota",
	"America/Chicago",
	"America/Denver",
	"America/Halifax",
	"America/Lima",
	"America/Los_Angeles",
	"America/Mexico_City",
	"America/New_York",
	"America/Phoenix",
	"America/Santiago",
	"America/Sao_Paulo",
	"America/St_Johns",
	"America/Toronto",
	"America/Vancouver",
	"Asia/Bangkok",
	"Asia/Dubai",
	"Asia/Hong_Kong",
	"Asia/Jakarta",
	"Asia/Jerusalem",
	"Asia/Kolkata",
	"Asia/Manila",
	"Asia/Seoul",
	"Asia/Shanghai",
	"Asia/Singapore",
	"Asia/Taipei",
	"Asia/Tokyo",
	"Atlantic/Azores",
	"Atlantic/Reykjavik",
	"Australia/Adelaide",
	"Australia/Brisbane",
	"Australia/Melbourne",
	"Australia/Perth",
	"Australia/Sydney",
	"Europe/Amsterdam",
	"Europe/Athens",
	"Europe/Berlin",
	"Europe/Brussels",
	"Europe/Bucharest",
	"Europe/Dublin",
	"Europe/Helsinki",
	"Europe/Istanbul",
	"Europe/Kyiv",
	"Europe/Lisbon",
	"Europe/London",
	"Europe/Madrid",
	"Europe/Moscow",
	"Europe/Oslo",
	"Europe/Paris",
	"Europe/Prague",
	"Europe/Rome",
	"Europe/Stockholm",
	"Europe/Vienna",
	"Europe/Warsaw",
	"Europe/Zurich",
	"Pacific/Auckland",
	"Pacific/Honolulu",
	"UTC",
}

// Common returns the offered zone names in sorted order.
func Common() []string {
	zones := make([]string, len(common))
	copy(zones, common)
	return zones
}

// Search returns the offered zones whose name contains the query,
// case-insensitively. An empty query returns all of them.
func Search(query string) []string {
	if query == "" {
		return Common()
	}
	query = strings.ToLower(query)
	zones := make([]string, 0, len(common))
	for _, name := range common {
		if strings.Contains(strings.ToLower(name), query) {
			zones = append(zones, name)
		}
	}
	sort.Strings(zones)
	return zones
}

// Valid reports whether name resolves to an IANA timezone. The empty name
// and the host-dependent "Local" are rejected.
func Valid(name string) bool {
	_, err := Load(name)
	return err == nil
}

// Load resolves name into a timezone.
func Load(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return nil, fmt.Errorf("%w: %q is not an IANA name", ErrUnknownZone, name)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrUnknownZone, name, err)
	}
	return loc, nil
}

// Fixed returns a selector that always picks the given zone. The name is
// resolved when the selector runs, so an unknown name surfaces as the
// selection error the editor expects.
func Fixed(name string) timerange.ZoneSelector {
	return func() (*time.Location, error) {
		return Load(name)
	}
}
