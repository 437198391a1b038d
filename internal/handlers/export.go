package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"todolist/internal/controller"
	"todolist/internal/export"
	"todolist/internal/models"
)

// Export writes the current view as JSON, CSV or PDF.
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var tasks []models.Task
	h.locked(func(c *controller.Controller) { tasks = c.View() })

	var buf bytes.Buffer
	if err := export.Write(&buf, tasks, format); err != nil {
		h.respondServerError(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"tasks.%s\"", format))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.WithError(err).WithField("format", format).Warn("failed to write export response")
	}
}
