// Package interval compares half-open time intervals in a single UTC reference frame.
package interval

import (
	"errors"
	"strings"
	"time"
)

const Day = 24 * time.Hour

var ErrInvalidTimestamp = errors.New("invalid timestamp")

// layouts without an offset are read as UTC, never as local time.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// UTC normalizes t to the canonical reference frame.
func UTC(t time.Time) time.Time {
	return t.UTC()
}

// Parse reads a timestamp; a value lacking an explicit offset is taken as UTC.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidTimestamp
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share an instant.
// Intervals that only touch (aEnd == bStart) do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	aStart, aEnd = UTC(aStart), UTC(aEnd)
	bStart, bEnd = UTC(bStart), UTC(bEnd)
	return aEnd.After(bStart) && aStart.Before(bEnd)
}

// Contains reports whether t lies in [start, end).
func Contains(start, end, t time.Time) bool {
	t = UTC(t)
	return !UTC(start).After(t) && UTC(end).After(t)
}

// DayStart truncates t to midnight UTC.
func DayStart(t time.Time) time.Time {
	t = UTC(t)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayBounds returns [midnight, midnight+1 day) for the UTC calendar day holding t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := DayStart(t)
	return start, start.Add(Day)
}
