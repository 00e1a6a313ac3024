package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrUnknownTimestamp is returned when no known layout matches
var ErrUnknownTimestamp = errors.New("unrecognized timestamp")

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999-0700",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05,000",
	"02/Jan/2006:15:04:05 -0700",
	time.RFC1123Z,
	time.RFC1123,
	time.Stamp,
	time.StampMicro,
}

// ParseTimestamp parses the timestamp formats the line parsers extract.
// Layouts without a year (syslog) resolve to year 0.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrUnknownTimestamp
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrUnknownTimestamp
}
