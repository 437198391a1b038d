// Package drag tracks an in-progress drag and turns a drop into a reorder.
package drag

import (
	"context"

	"todolist/internal/models"
)

// Reorderer moves sourceID to targetID's position.
type Reorderer interface {
	Reorder(ctx context.Context, sourceID, targetID models.TaskID)
}

// Coordinator holds the id of the task being dragged, if any.
type Coordinator struct {
	store   Reorderer
	dragged *models.TaskID
}

func NewCoordinator(store Reorderer) *Coordinator {
	return &Coordinator{store: store}
}

// Start records id as the dragged task, replacing any earlier drag.
func (c *Coordinator) Start(id models.TaskID) {
	c.dragged = &id
}

// End clears drag state whatever the outcome of the drop.
func (c *Coordinator) End() {
	c.dragged = nil
}

// Dragged returns the dragged task id and whether a drag is in progress.
func (c *Coordinator) Dragged() (models.TaskID, bool) {
	if c.dragged == nil {
		return 0, false
	}
	return *c.dragged, true
}

// Drop handles a drop onto a row. target is nil when the row did not
// resolve to a task. It reports whether a reorder was requested.
func (c *Coordinator) Drop(ctx context.Context, target *models.TaskID) bool {
	if c.dragged == nil || target == nil || *c.dragged == *target {
		return false
	}
	c.store.Reorder(ctx, *c.dragged, *target)
	return true
}
