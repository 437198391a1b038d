// Package edit implements the per-task Viewing/Editing state machine that
// gates when title and date changes are committed.
package edit

import (
	"context"
	"errors"
	"sort"
	"time"

	"todolist/internal/models"
)

// ErrNotEditing is returned by draft operations on a session in Viewing.
var ErrNotEditing = errors.New("edit: task is not being edited")

// State of an edit session.
type State int

const (
	Viewing State = iota
	Editing
)

func (s State) String() string {
	if s == Editing {
		return "editing"
	}
	return "viewing"
}

// Updater commits a title and date to a task.
type Updater interface {
	Update(ctx context.Context, id models.TaskID, title string, date *time.Time) error
}

// Session is the edit state of one task row. The draft is private to the
// session and reaches the store only through Save.
type Session struct {
	id         models.TaskID
	state      State
	draftTitle string
	draftDate  *time.Time
}

func NewSession(id models.TaskID) *Session {
	return &Session{id: id}
}

func (s *Session) ID() models.TaskID { return s.id }

func (s *Session) State() State { return s.state }

// Begin captures the task's current title and date into the draft and
// enters Editing. Calling it while already editing restarts the draft.
func (s *Session) Begin(task models.Task) {
	s.draftTitle = task.Title
	s.draftDate = task.Clone().Date
	s.state = Editing
}

// Draft returns the uncommitted title and date.
func (s *Session) Draft() (string, *time.Time) {
	return s.draftTitle, s.draftDate
}

// SetTitle replaces the draft title.
func (s *Session) SetTitle(title string) error {
	if s.state != Editing {
		return ErrNotEditing
	}
	s.draftTitle = title
	return nil
}

// SetDate replaces the draft date; nil clears it.
func (s *Session) SetDate(date *time.Time) error {
	if s.state != Editing {
		return ErrNotEditing
	}
	if date != nil {
		d := *date
		date = &d
	}
	s.draftDate = date
	return nil
}

// Save commits the draft. A blank title returns models.ErrEmptyTitle and
// the session stays in Editing with its draft intact.
func (s *Session) Save(ctx context.Context, u Updater) error {
	if s.state != Editing {
		return ErrNotEditing
	}
	title, err := models.NormalizeTitle(s.draftTitle)
	if err != nil {
		return err
	}
	if err := u.Update(ctx, s.id, title, s.draftDate); err != nil {
		return err
	}
	s.reset()
	return nil
}

// Cancel discards the draft without touching the store.
func (s *Session) Cancel() error {
	if s.state != Editing {
		return ErrNotEditing
	}
	s.reset()
	return nil
}

func (s *Session) reset() {
	s.state = Viewing
	s.draftTitle = ""
	s.draftDate = nil
}

// Registry keeps one independent session per task id.
type Registry struct {
	sessions map[models.TaskID]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[models.TaskID]*Session)}
}

// Session returns the session for id, creating it in Viewing if needed.
func (r *Registry) Session(id models.TaskID) *Session {
	s, ok := r.sessions[id]
	if !ok {
		s = NewSession(id)
		r.sessions[id] = s
	}
	return s
}

// Lookup returns the session for id without creating one.
func (r *Registry) Lookup(id models.TaskID) (*Session, bool) {
	s, ok := r.sessions[id]
	return s, ok
}

// Forget drops the session for id, discarding any draft.
func (r *Registry) Forget(id models.TaskID) {
	delete(r.sessions, id)
}

// Editing returns the ids of sessions currently in Editing, ascending.
func (r *Registry) Editing() []models.TaskID {
	var ids []models.TaskID
	for id, s := range r.sessions {
		if s.state == Editing {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
