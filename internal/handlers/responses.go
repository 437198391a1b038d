package handlers

import (
	"time"

	"todolist/internal/controller"
	"todolist/internal/models"
	"todolist/internal/view"
)

type errorResponse struct {
	Error  string   `json:"error"`
	Prompt string   `json:"prompt,omitempty"`
	Notes  []string `json:"notes,omitempty"`
}

type taskResponse struct {
	ID    int64   `json:"id"`
	Title string  `json:"title"`
	Date  *string `json:"date"`
	Done  bool    `json:"done"`
}

type viewResponse struct {
	Tasks    []taskResponse `json:"tasks"`
	Filter   string         `json:"filter"`
	Search   string         `json:"search"`
	Sort     string         `json:"sort"`
	Dragging *int64         `json:"dragging"`
	Editing  []int64        `json:"editing"`
}

type editResponse struct {
	ID    int64   `json:"id"`
	State string  `json:"state"`
	Title string  `json:"title"`
	Date  *string `json:"date"`
}

func wireDate(d *time.Time) *string {
	if d == nil {
		return nil
	}
	s := d.Format(models.DateLayout)
	return &s
}

func newTaskResponse(t models.Task) taskResponse {
	return taskResponse{ID: int64(t.ID), Title: t.Title, Date: wireDate(t.Date), Done: t.Done}
}

func sortName(opts view.Options) string {
	if opts.SortAscending {
		return "asc"
	}
	return "desc"
}

// newViewResponse snapshots the controller; callers hold the lock.
func newViewResponse(c *controller.Controller) viewResponse {
	opts := c.Options()
	tasks := c.View()
	resp := viewResponse{
		Tasks:   make([]taskResponse, 0, len(tasks)),
		Filter:  string(opts.Filter),
		Search:  opts.Search,
		Sort:    sortName(opts),
		Editing: []int64{},
	}
	for _, t := range tasks {
		resp.Tasks = append(resp.Tasks, newTaskResponse(t))
	}
	if id, ok := c.Dragged(); ok {
		v := int64(id)
		resp.Dragging = &v
	}
	for _, id := range c.Editing() {
		resp.Editing = append(resp.Editing, int64(id))
	}
	return resp
}

func newEditResponse(st controller.EditState) editResponse {
	return editResponse{
		ID:    int64(st.ID),
		State: st.State.String(),
		Title: st.Title,
		Date:  wireDate(st.Date),
	}
}
