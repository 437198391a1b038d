// Package store owns the ordered task collection and keeps its durable copy
// in a kv.Store.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"todolist/internal/kv"
	"todolist/internal/models"
)

// ErrNotLoaded is returned by Persist when storage could not be read at load.
var ErrNotLoaded = errors.New("stored tasks were not loaded")

// DefaultKey is the storage key that holds the task list.
const DefaultKey = "todo_lab_tasks"

// TaskStore holds the task collection in manual order, most recent first.
//
// The in-memory collection is authoritative: a failed write is logged and
// remembered (see PersistErr) but never rolls back or fails a mutation.
// TaskStore is not safe for concurrent use; callers serialize events.
type TaskStore struct {
	kv     kv.Store
	key    string
	logger log.FieldLogger

	tasks      []models.Task
	ids        *idAllocator
	persistErr error
	// loadErr is set when the last Load could not read storage. Writes are
	// held back until a Load succeeds so the unread data is not overwritten.
	loadErr error
}

// Option configures a TaskStore.
type Option func(*TaskStore)

// WithClock overrides the time source used for id allocation.
func WithClock(now func() time.Time) Option {
	return func(s *TaskStore) { s.ids = newIDAllocator(now) }
}

// New creates an empty TaskStore backed by backend under key.
func New(backend kv.Store, key string, logger log.FieldLogger, opts ...Option) *TaskStore {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	s := &TaskStore{
		kv:     backend,
		key:    key,
		logger: logger.WithField("component", "taskstore"),
		ids:    newIDAllocator(nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the collection with the stored one and returns a snapshot.
// Missing or unparsable data yields an empty collection; the stored blob is
// then overwritten by the next mutation, so that data is lost. If storage
// cannot be read at all the collection also starts empty, but nothing is
// written until a later Load succeeds.
func (s *TaskStore) Load(ctx context.Context) []models.Task {
	s.tasks, s.loadErr = s.readStored(ctx)
	for _, t := range s.tasks {
		s.ids.observe(t.ID)
	}
	return s.Tasks()
}

func (s *TaskStore) readStored(ctx context.Context) ([]models.Task, error) {
	blob, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return []models.Task{}, nil
		}
		s.logger.WithError(err).WithField("key", s.key).Warn("failed to read tasks, starting empty without saving")
		return []models.Task{}, err
	}

	decoded, err := decodeTasks(blob)
	if err != nil {
		s.logger.WithError(err).WithField("key", s.key).Warn("stored tasks are unreadable, starting empty")
		return []models.Task{}, nil
	}

	tasks := make([]models.Task, 0, len(decoded))
	seen := make(map[models.TaskID]struct{}, len(decoded))
	for _, t := range decoded {
		if err := t.Validate(); err != nil {
			s.logger.WithField("id", t.ID).Warn("dropping stored task with empty title")
			continue
		}
		if _, dup := seen[t.ID]; dup {
			s.logger.WithField("id", t.ID).Warn("dropping stored task with duplicate id")
			continue
		}
		seen[t.ID] = struct{}{}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Persist writes the full ordered collection to storage. It refuses while
// the last Load failed to read storage.
func (s *TaskStore) Persist(ctx context.Context) error {
	if s.loadErr != nil {
		s.persistErr = fmt.Errorf("%w: %v", ErrNotLoaded, s.loadErr)
		return s.persistErr
	}
	blob, err := encodeTasks(s.tasks)
	if err == nil {
		err = s.kv.Set(ctx, s.key, blob)
	}
	s.persistErr = err
	return err
}

// persist is used after mutations: failures are logged and swallowed.
func (s *TaskStore) persist(ctx context.Context) {
	if err := s.Persist(ctx); err != nil {
		s.logger.WithError(err).WithField("key", s.key).Warn("failed to persist tasks, keeping in-memory state")
	}
}

// PersistErr returns the error from the most recent write, or nil.
func (s *TaskStore) PersistErr() error {
	return s.persistErr
}

// Tasks returns a copy of the collection in manual order.
func (s *TaskStore) Tasks() []models.Task {
	out := make([]models.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

// Len returns the number of tasks.
func (s *TaskStore) Len() int {
	return len(s.tasks)
}

// Get returns a copy of the task with the given id.
func (s *TaskStore) Get(id models.TaskID) (models.Task, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return models.Task{}, false
	}
	return s.tasks[i].Clone(), true
}

// Create adds a new task at the front of the collection.
func (s *TaskStore) Create(ctx context.Context, title string, date *time.Time) (models.Task, error) {
	title, err := models.NormalizeTitle(title)
	if err != nil {
		return models.Task{}, err
	}

	task := models.Task{
		ID:    s.ids.next(),
		Title: title,
		Date:  models.NormalizeDate(date),
	}
	s.tasks = append([]models.Task{task}, s.tasks...)
	s.persist(ctx)

	return task.Clone(), nil
}

// Update overwrites the title and date of a task. An unknown id is a no-op.
func (s *TaskStore) Update(ctx context.Context, id models.TaskID, title string, date *time.Time) error {
	title, err := models.NormalizeTitle(title)
	if err != nil {
		return err
	}

	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	date = models.NormalizeDate(date)
	if s.tasks[i].Title == title && sameDate(s.tasks[i].Date, date) {
		return nil
	}
	s.tasks[i].Title = title
	s.tasks[i].Date = date
	s.persist(ctx)

	return nil
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// Remove deletes a task. An unknown id is a no-op.
func (s *TaskStore) Remove(ctx context.Context, id models.TaskID) {
	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	s.persist(ctx)
}

// Toggle flips the completion flag of a task. An unknown id is a no-op.
func (s *TaskStore) Toggle(ctx context.Context, id models.TaskID) {
	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.tasks[i].Done = !s.tasks[i].Done
	s.persist(ctx)
}

// Reorder moves the source task to the target task's current index; all
// other tasks keep their relative order. Equal or unknown ids are a no-op.
func (s *TaskStore) Reorder(ctx context.Context, sourceID, targetID models.TaskID) {
	if sourceID == targetID {
		return
	}
	src := s.indexOf(sourceID)
	dst := s.indexOf(targetID)
	if src < 0 || dst < 0 {
		return
	}

	moved := s.tasks[src]
	rest := make([]models.Task, 0, len(s.tasks))
	rest = append(rest, s.tasks[:src]...)
	rest = append(rest, s.tasks[src+1:]...)

	reordered := make([]models.Task, 0, len(s.tasks))
	reordered = append(reordered, rest[:dst]...)
	reordered = append(reordered, moved)
	reordered = append(reordered, rest[dst:]...)
	s.tasks = reordered
	s.persist(ctx)
}

func (s *TaskStore) indexOf(id models.TaskID) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
