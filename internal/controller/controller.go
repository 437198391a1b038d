// Package controller wires the task store, view state, drag coordinator and
// edit sessions behind a single command dispatcher. One Controller exists
// per session; it processes one command at a time and is not safe for
// concurrent use.
package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"todolist/internal/drag"
	"todolist/internal/edit"
	"todolist/internal/models"
	"todolist/internal/store"
	"todolist/internal/view"
)

// ErrDeleteDeclined is returned when the user answers no to the delete prompt.
var ErrDeleteDeclined = errors.New("delete declined")

// EmptyTitleMessage is shown when a create or edit is rejected.
const EmptyTitleMessage = "Title cannot be empty"

// Prompter asks the user a yes/no question.
type Prompter interface {
	Confirm(ctx context.Context, message string) bool
}

// Notifier shows a message to the user before the command returns.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(ctx context.Context, message string) bool

func (f PrompterFunc) Confirm(ctx context.Context, message string) bool { return f(ctx, message) }

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, message string)

func (f NotifierFunc) Notify(ctx context.Context, message string) { f(ctx, message) }

// Result carries what a command produced, if anything.
type Result struct {
	Task *models.Task
}

// EditState describes the edit session of one task.
type EditState struct {
	ID    models.TaskID
	State edit.State
	Title string
	Date  *time.Time
}

// Controller owns all per-session state.
type Controller struct {
	store    *store.TaskStore
	opts     view.Options
	drag     *drag.Coordinator
	edits    *edit.Registry
	prompter Prompter
	notifier Notifier
	logger   log.FieldLogger
}

// New creates a controller around s. A nil prompter confirms everything; a
// nil notifier logs messages at Info.
func New(s *store.TaskStore, prompter Prompter, notifier Notifier, logger log.FieldLogger) *Controller {
	if logger == nil {
		logger = log.StandardLogger()
	}
	logger = logger.WithField("component", "controller")
	if prompter == nil {
		prompter = PrompterFunc(func(context.Context, string) bool { return true })
	}
	if notifier == nil {
		notifier = NotifierFunc(func(_ context.Context, msg string) { logger.Info(msg) })
	}
	return &Controller{
		store:    s,
		opts:     view.DefaultOptions(),
		drag:     drag.NewCoordinator(s),
		edits:    edit.NewRegistry(),
		prompter: prompter,
		notifier: notifier,
		logger:   logger,
	}
}

// Load reads the persisted collection into the store.
func (c *Controller) Load(ctx context.Context) {
	tasks := c.store.Load(ctx)
	c.logger.WithField("tasks", len(tasks)).Debug("tasks loaded")
}

// View returns the current derived task list.
func (c *Controller) View() []models.Task {
	return view.Compute(c.store.Tasks(), c.opts)
}

// Options returns the current filter, search and sort state.
func (c *Controller) Options() view.Options {
	return c.opts
}

// Tasks returns the collection in manual order.
func (c *Controller) Tasks() []models.Task {
	return c.store.Tasks()
}

// Dragged returns the id of the task being dragged, if any.
func (c *Controller) Dragged() (models.TaskID, bool) {
	return c.drag.Dragged()
}

// Edit returns the edit state of a task.
func (c *Controller) Edit(id models.TaskID) EditState {
	st := EditState{ID: id, State: edit.Viewing}
	if s, ok := c.edits.Lookup(id); ok {
		st.State = s.State()
		st.Title, st.Date = s.Draft()
	}
	return st
}

// Editing returns the ids of tasks with an open edit.
func (c *Controller) Editing() []models.TaskID {
	return c.edits.Editing()
}

// Dispatch processes one command to completion.
func (c *Controller) Dispatch(ctx context.Context, cmd Command) (Result, error) {
	if cmd == nil {
		return Result{}, errors.New("nil command")
	}
	logger := c.logger.WithField("command", cmd.commandName())
	res, err := c.dispatch(ctx, cmd)
	if err != nil {
		logger.WithError(err).Debug("command rejected")
		return res, err
	}
	logger.Debug("command applied")
	return res, nil
}

func (c *Controller) dispatch(ctx context.Context, cmd Command) (Result, error) {
	switch cmd := cmd.(type) {
	case CreateTask:
		task, err := c.store.Create(ctx, cmd.Title, cmd.Date)
		if err != nil {
			return Result{}, c.rejected(ctx, err)
		}
		return Result{Task: &task}, nil

	case UpdateTask:
		if err := c.store.Update(ctx, cmd.ID, cmd.Title, cmd.Date); err != nil {
			return Result{}, c.rejected(ctx, err)
		}
		return c.result(cmd.ID), nil

	case DeleteTask:
		task, ok := c.store.Get(cmd.ID)
		if !ok {
			return Result{}, nil
		}
		if !c.prompter.Confirm(ctx, DeletePrompt(task)) {
			return Result{}, ErrDeleteDeclined
		}
		c.store.Remove(ctx, cmd.ID)
		c.edits.Forget(cmd.ID)
		return Result{}, nil

	case ToggleTask:
		c.store.Toggle(ctx, cmd.ID)
		return c.result(cmd.ID), nil

	case ReorderTask:
		c.store.Reorder(ctx, cmd.Source, cmd.Target)
		return Result{}, nil

	case SetFilter:
		mode, err := models.ParseFilterMode(string(cmd.Mode))
		if err != nil {
			return Result{}, err
		}
		c.opts.Filter = mode
		return Result{}, nil

	case SetSearch:
		c.opts.Search = cmd.Text
		return Result{}, nil

	case ToggleSort:
		c.opts.SortAscending = !c.opts.SortAscending
		return Result{}, nil

	case SetSort:
		c.opts.SortAscending = cmd.Ascending
		return Result{}, nil

	case StartDrag:
		c.drag.Start(cmd.ID)
		return Result{}, nil

	case EndDrag:
		c.drag.End()
		return Result{}, nil

	case DropOnTask:
		c.drag.Drop(ctx, cmd.Target)
		return Result{}, nil

	case BeginEdit:
		task, ok := c.store.Get(cmd.ID)
		if !ok {
			return Result{}, nil
		}
		c.edits.Session(cmd.ID).Begin(task)
		return c.result(cmd.ID), nil

	case EditDraft:
		s, err := c.openSession(cmd.ID)
		if err != nil {
			return Result{}, err
		}
		if cmd.Title != nil {
			if err := s.SetTitle(*cmd.Title); err != nil {
				return Result{}, err
			}
		}
		switch {
		case cmd.ClearDate:
			return Result{}, s.SetDate(nil)
		case cmd.Date != nil:
			return Result{}, s.SetDate(cmd.Date)
		}
		return Result{}, nil

	case SaveEdit:
		s, err := c.openSession(cmd.ID)
		if err != nil {
			return Result{}, err
		}
		if err := s.Save(ctx, c.store); err != nil {
			return Result{}, c.rejected(ctx, err)
		}
		return c.result(cmd.ID), nil

	case CancelEdit:
		s, err := c.openSession(cmd.ID)
		if err != nil {
			return Result{}, err
		}
		return Result{}, s.Cancel()

	default:
		return Result{}, fmt.Errorf("unknown command %T", cmd)
	}
}

func (c *Controller) openSession(id models.TaskID) (*edit.Session, error) {
	s, ok := c.edits.Lookup(id)
	if !ok || s.State() != edit.Editing {
		return nil, edit.ErrNotEditing
	}
	return s, nil
}

// rejected notifies the user of validation failures and passes err through.
func (c *Controller) rejected(ctx context.Context, err error) error {
	if errors.Is(err, models.ErrEmptyTitle) {
		c.notifier.Notify(ctx, EmptyTitleMessage)
	}
	return err
}

func (c *Controller) result(id models.TaskID) Result {
	task, ok := c.store.Get(id)
	if !ok {
		return Result{}
	}
	return Result{Task: &task}
}

// DeletePrompt is the confirmation question shown before deleting task.
func DeletePrompt(task models.Task) string {
	return fmt.Sprintf("Delete task «%s»?", task.Title)
}
