package services

import (
	"fmt"
	"time"
)

// DefaultWindowHours is used when a query supplies neither hours nor
// an explicit date range.
const DefaultWindowHours = 24

// timestampLayouts are tried in order. RFC3339 covers the trailing-Z
// UTC marker; the bare layouts cover naive timestamps from older
// publishers.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp, normalizing to UTC.
func ParseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: cannot parse timestamp %q", ErrInvalidParameter, value)
}

// Window is a closed [Start, End] query interval.
type Window struct {
	Start time.Time
	End   time.Time
}

// WindowFromHours builds the window covering the last N hours.
func WindowFromHours(hours int) (Window, error) {
	if hours < 1 {
		return Window{}, fmt.Errorf("%w: hours must be >= 1", ErrInvalidParameter)
	}
	end := time.Now().UTC()
	return Window{Start: end.Add(-time.Duration(hours) * time.Hour), End: end}, nil
}

// WindowFromRange builds the window from ISO-8601 start/end strings.
func WindowFromRange(startDate, endDate string) (Window, error) {
	start, err := ParseTimestamp(startDate)
	if err != nil {
		return Window{}, err
	}
	end, err := ParseTimestamp(endDate)
	if err != nil {
		return Window{}, err
	}
	if end.Before(start) {
		return Window{}, fmt.Errorf("%w: end_date precedes start_date", ErrInvalidParameter)
	}
	return Window{Start: start, End: end}, nil
}
