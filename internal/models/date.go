package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date form accepted from forms and the CLI.
const DateLayout = "2006-01-02"

// StoredDateLayout is the ISO-8601 form written to storage.
const StoredDateLayout = "2006-01-02T15:04:05.000Z07:00"

// ParseDate parses either a YYYY-MM-DD date or a full ISO-8601 timestamp.
// An empty string yields nil without error.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return NormalizeDate(&t), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or ISO-8601", s)
	}
	return NormalizeDate(&t), nil
}

// FormatDate renders the calendar date, or "No date" when absent.
func FormatDate(d *time.Time) string {
	if d == nil {
		return "No date"
	}
	return d.Format(DateLayout)
}
