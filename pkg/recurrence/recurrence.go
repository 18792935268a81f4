// Package recurrence validates RRULE strings and previews the occurrences
// they generate.
package recurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// ErrInvalidRule is returned when a recurrence rule cannot be parsed.
var ErrInvalidRule = errors.New("invalid recurrence rule")

// Validate checks that rule is a parseable RRULE. The empty rule is valid
// and means no recurrence.
func Validate(rule string) error {
	if rule == "" {
		return nil
	}
	if _, err := rrule.StrToRRule(rule); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	return nil
}

// Preview returns the first occurrences of rule anchored at start, at most
// count of them. The empty rule means no recurrence and previews as no
// occurrences. The preview window is capped at five years past start so an
// unbounded rule cannot run away.
func Preview(rule string, start time.Time, count int) ([]time.Time, error) {
	if rule == "" || count <= 0 {
		return []time.Time{}, nil
	}
	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	r.DTStart(start)

	occurrences := r.Between(start, start.AddDate(5, 0, 0), true)
	if len(occurrences) > count {
		occurrences = occurrences[:count]
	}
	return occurrences, nil
}
