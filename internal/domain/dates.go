package domain

import (
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates (birth, start/end, expiry).
const DateLayout = "2006-01-02"

// DateTimeLayouts are accepted for instants; the second matches
// <input type="datetime-local">.
var DateTimeLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04"}

// Today truncates now to midnight in now's location.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// DateOnly normalizes a calendar date to midnight UTC so comparisons ignore
// wall-clock offsets of whoever produced it.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}

// ParseDate parses a YYYY-MM-DD value into a UTC calendar date.
func ParseDate(field, raw string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, NewFieldError(field, "must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

// ParseDateTime accepts RFC3339 or datetime-local values, the latter in loc.
func ParseDateTime(field, raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range DateTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, NewFieldError(field, "must be a date-time in RFC3339 or YYYY-MM-DDTHH:MM format")
}
