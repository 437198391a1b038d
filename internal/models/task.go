package models

import (
	"errors"
	"strings"
	"time"
)

// ErrEmptyTitle is returned when a task title is empty or whitespace-only.
var ErrEmptyTitle = errors.New("title is required")

// TaskID identifies a task. It is the only identifier type used across packages.
type TaskID int64

// Task represents a single entry in the task list.
type Task struct {
	ID    TaskID
	Title string
	Date  *time.Time // nil means "no date"
	Done  bool
}

// Validate checks that the task has valid field values.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// HasDate reports whether the task carries a calendar date.
func (t *Task) HasDate() bool {
	return t.Date != nil
}

// DateKey returns the instant used for date ordering and whether the task has one.
func (t *Task) DateKey() (time.Time, bool) {
	if t.Date == nil {
		return time.Time{}, false
	}
	return *t.Date, true
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	if t.Date != nil {
		d := *t.Date
		t.Date = &d
	}
	return t
}

// NormalizeTitle trims surrounding whitespace and reports an error when nothing remains.
func NormalizeTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", ErrEmptyTitle
	}
	return trimmed, nil
}

// NormalizeDate reduces d to its calendar date at UTC midnight.
// The calendar date is read in d's own location.
func NormalizeDate(d *time.Time) *time.Time {
	if d == nil {
		return nil
	}
	y, m, day := d.Date()
	n := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	return &n
}
