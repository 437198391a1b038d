package controller

import (
	"time"

	"todolist/internal/models"
)

// Command is a user intent dispatched to the controller.
type Command interface {
	commandName() string
}

type CreateTask struct {
	Title string
	Date  *time.Time
}

type UpdateTask struct {
	ID    models.TaskID
	Title string
	Date  *time.Time
}

// DeleteTask asks for confirmation before removing the task.
type DeleteTask struct {
	ID models.TaskID
}

type ToggleTask struct {
	ID models.TaskID
}

type ReorderTask struct {
	Source models.TaskID
	Target models.TaskID
}

type SetFilter struct {
	Mode models.FilterMode
}

type SetSearch struct {
	Text string
}

// ToggleSort flips the date sort direction.
type ToggleSort struct{}

type SetSort struct {
	Ascending bool
}

type StartDrag struct {
	ID models.TaskID
}

type EndDrag struct{}

// DropOnTask carries the row the drag ended on; a nil Target means the row
// could not be resolved to a task.
type DropOnTask struct {
	Target *models.TaskID
}

type BeginEdit struct {
	ID models.TaskID
}

// EditDraft changes the draft of an open edit. Nil fields are left alone;
// ClearDate removes the draft date.
type EditDraft struct {
	ID        models.TaskID
	Title     *string
	Date      *time.Time
	ClearDate bool
}

type SaveEdit struct {
	ID models.TaskID
}

type CancelEdit struct {
	ID models.TaskID
}

func (CreateTask) commandName() string  { return "create_task" }
func (UpdateTask) commandName() string  { return "update_task" }
func (DeleteTask) commandName() string  { return "delete_task" }
func (ToggleTask) commandName() string  { return "toggle_task" }
func (ReorderTask) commandName() string { return "reorder_task" }
func (SetFilter) commandName() string   { return "set_filter" }
func (SetSearch) commandName() string   { return "set_search" }
func (ToggleSort) commandName() string  { return "toggle_sort" }
func (SetSort) commandName() string     { return "set_sort" }
func (StartDrag) commandName() string   { return "start_drag" }
func (EndDrag) commandName() string     { return "end_drag" }
func (DropOnTask) commandName() string  { return "drop_on_task" }
func (BeginEdit) commandName() string   { return "begin_edit" }
func (EditDraft) commandName() string   { return "edit_draft" }
func (SaveEdit) commandName() string    { return "save_edit" }
func (CancelEdit) commandName() string  { return "cancel_edit" }
