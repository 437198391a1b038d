// Package view derives the displayed task list from the collection and the
// current filter, search text and sort direction.
package view

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"todolist/internal/models"
)

// Options selects what Compute keeps and how it orders the result.
type Options struct {
	Filter        models.FilterMode
	Search        string
	SortAscending bool
}

// DefaultOptions shows every task, earliest date first.
func DefaultOptions() Options {
	return Options{Filter: models.FilterAll, SortAscending: true}
}

// Compute returns the filtered, searched and date-sorted view of tasks.
// The input slice and its tasks are never modified; the result holds copies.
// Tasks without a date sort before every dated task. Ties keep manual order.
func Compute(tasks []models.Task, opts Options) []models.Task {
	fold := cases.Fold()
	needle := fold.String(opts.Search)

	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if !opts.Filter.Keep(t.Done) {
			continue
		}
		if needle != "" && !strings.Contains(fold.String(t.Title), needle) {
			continue
		}
		out = append(out, t.Clone())
	}

	sort.SliceStable(out, func(i, j int) bool {
		if opts.SortAscending {
			return dateLess(out[i], out[j])
		}
		return dateLess(out[j], out[i])
	})
	return out
}

func dateLess(a, b models.Task) bool {
	ad, aok := a.DateKey()
	bd, bok := b.DateKey()
	switch {
	case !aok && !bok:
		return false
	case !aok:
		return true
	case !bok:
		return false
	default:
		return ad.Before(bd)
	}
}
