package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// Routes builds the router for the task API.
func (h *Handlers) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// Task API routes
	r.Get("/api/tasks", h.ListTasks)
	r.Post("/api/tasks", h.CreateTask)
	r.Post("/api/tasks/reorder", h.ReorderTasks)
	r.Put("/api/tasks/{id}", h.UpdateTask)
	r.Delete("/api/tasks/{id}", h.DeleteTask)
	r.Post("/api/tasks/{id}/toggle", h.ToggleTask)

	// Edit session routes
	r.Post("/api/tasks/{id}/edit", h.BeginEdit)
	r.Patch("/api/tasks/{id}/edit", h.UpdateDraft)
	r.Post("/api/tasks/{id}/edit/save", h.SaveEdit)
	r.Post("/api/tasks/{id}/edit/cancel", h.CancelEdit)

	// Drag and drop routes
	r.Post("/api/drag/start", h.StartDrag)
	r.Post("/api/drag/end", h.EndDrag)
	r.Post("/api/drag/drop", h.DropTask)

	r.Get("/api/export", h.Export)

	return r
}

// requestLogger logs one line per request with logrus.
func requestLogger(logger log.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.WithFields(log.Fields{
					"method":     r.Method,
					"path":       r.URL.Path,
					"status":     ww.Status(),
					"bytes":      ww.BytesWritten(),
					"duration":   time.Since(start).String(),
					"request_id": middleware.GetReqID(r.Context()),
				}).Info("request handled")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
