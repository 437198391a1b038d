package store

import (
	"fmt"
	"math"

	"github.com/bytedance/sonic"

	"todolist/internal/models"
)

// taskRecord is the persisted shape of one task.
type taskRecord struct {
	ID    int64   `json:"id"`
	Title string  `json:"title"`
	Date  *string `json:"date"`
	Done  bool    `json:"done"`
}

// encodeTasks serializes the ordered collection into the stored JSON array.
func encodeTasks(tasks []models.Task) (string, error) {
	records := make([]taskRecord, 0, len(tasks))
	for _, t := range tasks {
		rec := taskRecord{ID: int64(t.ID), Title: t.Title, Done: t.Done}
		if t.Date != nil {
			s := t.Date.UTC().Format(models.StoredDateLayout)
			rec.Date = &s
		}
		records = append(records, rec)
	}

	data, err := sonic.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("failed to encode tasks: %w", err)
	}
	return string(data), nil
}

// storedRecord is the decode-side shape. Ids are read as JSON numbers, so an
// integral float such as 1700000000000.0 is accepted.
type storedRecord struct {
	ID    float64 `json:"id"`
	Title string  `json:"title"`
	Date  *string `json:"date"`
	Done  bool    `json:"done"`
}

// decodeTasks parses the stored JSON array. Any syntax, type or date error
// fails the whole blob; invariant checks are left to the caller.
func decodeTasks(blob string) ([]models.Task, error) {
	var records []storedRecord
	if err := sonic.UnmarshalString(blob, &records); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}

	tasks := make([]models.Task, 0, len(records))
	for i, rec := range records {
		if rec.ID != math.Trunc(rec.ID) || math.Abs(rec.ID) > maxExactID {
			return nil, fmt.Errorf("failed to decode id of task %d: %v is not an integer", i, rec.ID)
		}
		task := models.Task{ID: models.TaskID(rec.ID), Title: rec.Title, Done: rec.Done}
		if rec.Date != nil {
			d, err := models.ParseDate(*rec.Date)
			if err != nil {
				return nil, fmt.Errorf("failed to decode date of task %d: %w", i, err)
			}
			task.Date = d
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// maxExactID is the largest integer a JSON number holds without rounding.
const maxExactID = 1<<53 - 1
