package handlers

import (
	"net/http"
	"time"

	"todolist/internal/controller"
	"todolist/internal/models"
)

type draftRequest struct {
	Title     *string `json:"title"`
	Date      *string `json:"date"`
	ClearDate bool    `json:"clear_date"`
}

type dragRequest struct {
	ID     *int64 `json:"id"`
	Target *int64 `json:"target"`
}

// BeginEdit opens an edit session seeded from the stored task.
func (h *Handlers) BeginEdit(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	res, err := h.dispatch(r.Context(), controller.BeginEdit{ID: id})
	if err != nil {
		h.respondCommandError(w, err, &exchange{})
		return
	}
	if res.Task == nil {
		respondError(w, http.StatusNotFound, "task not found")
		return
	}
	h.respondEditState(w, id)
}

// UpdateDraft changes the draft title or date of an open edit.
func (h *Handlers) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var req draftRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}
	cmd := controller.EditDraft{ID: id, Title: req.Title, ClearDate: req.ClearDate}
	if req.Date != nil && *req.Date != "" {
		var d *time.Time
		if d, err = models.ParseDate(*req.Date); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		cmd.Date = d
	}

	if _, err := h.dispatch(r.Context(), cmd); err != nil {
		h.respondCommandError(w, err, &exchange{})
		return
	}
	h.respondEditState(w, id)
}

// SaveEdit commits the draft. A blank title keeps the session open.
func (h *Handlers) SaveEdit(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	ex := &exchange{}
	res, err := h.dispatch(withExchange(r.Context(), ex), controller.SaveEdit{ID: id})
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

// CancelEdit discards the draft.
func (h *Handlers) CancelEdit(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	if _, err := h.dispatch(r.Context(), controller.CancelEdit{ID: id}); err != nil {
		h.respondCommandError(w, err, &exchange{})
		return
	}
	h.respondEditState(w, id)
}

func (h *Handlers) respondEditState(w http.ResponseWriter, id models.TaskID) {
	var st controller.EditState
	h.locked(func(c *controller.Controller) { st = c.Edit(id) })
	respondJSON(w, http.StatusOK, newEditResponse(st))
}

// StartDrag records the task being dragged.
func (h *Handlers) StartDrag(w http.ResponseWriter, r *http.Request) {
	var req dragRequest
	if err := decodeJSON(r, &req); err != nil || req.ID == nil {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}
	h.respondView(w, r, controller.StartDrag{ID: models.TaskID(*req.ID)})
}

// EndDrag clears the drag state.
func (h *Handlers) EndDrag(w http.ResponseWriter, r *http.Request) {
	h.respondView(w, r, controller.EndDrag{})
}

// DropTask drops the dragged task on the target row. A missing target is
// accepted and ignored, like a drop outside any row.
func (h *Handlers) DropTask(w http.ResponseWriter, r *http.Request) {
	var req dragRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid json")
			return
		}
	}

	cmd := controller.DropOnTask{}
	if req.Target != nil {
		target := models.TaskID(*req.Target)
		cmd.Target = &target
	}
	h.respondView(w, r, cmd)
}
