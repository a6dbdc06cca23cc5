package models

import (
	"strings"
	"time"
)

// isoMillis matches the millisecond-precision UTC form the mobile app has
// always written (JavaScript Date#toISOString).
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// dateLayouts are the timestamp forms accepted from free-text date entry, in
// the order they are tried.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"1/2/2006 3:04 PM",
}

// NowISO returns the current UTC time as a millisecond ISO-8601 string.
func NowISO() string {
	return ISO(time.Now())
}

// ISO formats t as a millisecond-precision UTC ISO-8601 string.
// Fixed width keeps lexicographic order equal to chronological order.
func ISO(t time.Time) string {
	return t.UTC().Format(isoMillis)
}

// ParseWhen parses a stored or user-entered date string, trying RFC 3339
// first and then the looser forms the app's web date field accepted.
func ParseWhen(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// SanitizeDate normalizes a user-supplied date string for persistence.
// A blank or unparsable value comes back empty ("not scheduled") so an
// invalid timestamp is never written to the store; a valid one is
// canonicalized to UTC ISO-8601.
func SanitizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t, err := ParseWhen(s)
	if err != nil {
		return ""
	}
	return ISO(t)
}
