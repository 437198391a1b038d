package models

import (
	"fmt"
	"strings"
)

// FilterMode gates which tasks appear in the view.
type FilterMode string

const (
	FilterAll    FilterMode = "all"
	FilterActive FilterMode = "active"
	FilterDone   FilterMode = "done"
)

// ParseFilterMode parses a filter mode; an empty string means FilterAll.
func ParseFilterMode(s string) (FilterMode, error) {
	switch FilterMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterActive:
		return FilterActive, nil
	case FilterDone:
		return FilterDone, nil
	default:
		return "", fmt.Errorf("filter must be 'all', 'active', or 'done', got %q", s)
	}
}

// Keep reports whether a task with the given completion flag passes the filter.
func (f FilterMode) Keep(done bool) bool {
	switch f {
	case FilterDone:
		return done
	case FilterActive:
		return !done
	default:
		return true
	}
}
