package handlers

import (
	"net/http"

	"todolist/internal/controller"
	"todolist/internal/models"
)

type taskRequest struct {
	Title string  `json:"title"`
	Date  *string `json:"date"`
}

type reorderRequest struct {
	Source int64 `json:"source"`
	Target int64 `json:"target"`
}

// ListTasks applies any filter, search and sort parameters and returns the view.
func (h *Handlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	var cmds []controller.Command
	if q.Has("filter") {
		mode, err := models.ParseFilterMode(q.Get("filter"))
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		cmds = append(cmds, controller.SetFilter{Mode: mode})
	}
	if q.Has("q") {
		cmds = append(cmds, controller.SetSearch{Text: q.Get("q")})
	}
	switch q.Get("sort") {
	case "":
	case "asc":
		cmds = append(cmds, controller.SetSort{Ascending: true})
	case "desc":
		cmds = append(cmds, controller.SetSort{Ascending: false})
	default:
		respondError(w, http.StatusBadRequest, "sort must be 'asc' or 'desc'")
		return
	}

	var (
		resp viewResponse
		err  error
	)
	h.locked(func(c *controller.Controller) {
		for _, cmd := range cmds {
			if _, err = c.Dispatch(ctx, cmd); err != nil {
				return
			}
		}
		resp = newViewResponse(c)
	})
	if err != nil {
		h.respondServerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// CreateTask adds a task to the top of the list.
func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ex := &exchange{}
	res, err := h.dispatch(withExchange(r.Context(), ex), controller.CreateTask{Title: req.Title, Date: date})
	if err != nil {
		h.respondCommandError(w, err, ex)
		return
	}
	respondJSON(w, http.StatusCreated, newTaskResponse(*res.Task))
}

// UpdateTask replaces the title and date of a task.
func (h *Handlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ex := &exchange{}
	res, err := h.dispatch(withExchange(r.Context(), ex), controller.UpdateTask{ID: id, Title: req.Title, Date: date})
	if err != nil {
		h.respondCommandError(w, err, ex)
		return
	}
	if res.Task == nil {
		respondError(w, http.StatusNotFound, "task not found")
		return
	}
	respondJSON(w, http.StatusOK, newTaskResponse(*res.Task))
}

// DeleteTask deletes a task once the caller confirms with confirm=true.
func (h *Handlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	ex := &exchange{confirm: r.URL.Query().Get("confirm") == "true"}
	if _, err := h.dispatch(withExchange(r.Context(), ex), controller.DeleteTask{ID: id}); err != nil {
		h.respondCommandError(w, err, ex)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ToggleTask flips the completion status of a task.
func (h *Handlers) ToggleTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	res, err := h.dispatch(r.Context(), controller.ToggleTask{ID: id})
	if err != nil {
		h.respondServerError(w, err)
		return
	}
	if res.Task == nil {
		respondError(w, http.StatusNotFound, "task not found")
		return
	}
	respondJSON(w, http.StatusOK, newTaskResponse(*res.Task))
}

// ReorderTasks moves the source task to the target task's position.
func (h *Handlers) ReorderTasks(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}

	cmd := controller.ReorderTask{Source: models.TaskID(req.Source), Target: models.TaskID(req.Target)}
	h.respondView(w, r, cmd)
}

// respondView dispatches cmd and answers with the resulting view.
func (h *Handlers) respondView(w http.ResponseWriter, r *http.Request, cmd controller.Command) {
	ctx := r.Context()
	var (
		resp viewResponse
		err  error
	)
	h.locked(func(c *controller.Controller) {
		if _, err = c.Dispatch(ctx, cmd); err != nil {
			return
		}
		resp = newViewResponse(c)
	})
	if err != nil {
		h.respondServerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}
