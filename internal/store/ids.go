package store

import (
	"time"

	"todolist/internal/models"
)

// idAllocator issues timestamp-like ids that are strictly increasing even
// when several are requested within the same millisecond.
type idAllocator struct {
	last models.TaskID
	now  func() time.Time
}

func newIDAllocator(now func() time.Time) *idAllocator {
	if now == nil {
		now = time.Now
	}
	return &idAllocator{now: now}
}

// observe raises the floor so that future ids never collide with id.
func (a *idAllocator) observe(id models.TaskID) {
	if id > a.last {
		a.last = id
	}
}

func (a *idAllocator) next() models.TaskID {
	id := models.TaskID(a.now().UnixMilli())
	if id <= a.last {
		id = a.last + 1
	}
	a.last = id
	return id
}
