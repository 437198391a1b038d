package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"todolist/internal/controller"
	"todolist/internal/edit"
	"todolist/internal/models"
	"todolist/internal/store"
)

// Handlers holds the HTTP handlers and the controller they drive.
type Handlers struct {
	mu     sync.Mutex
	ctrl   *controller.Controller
	logger log.FieldLogger
}

// New creates a new Handlers instance around an already loaded store.
func New(s *store.TaskStore, logger log.FieldLogger) *Handlers {
	if logger == nil {
		logger = log.StandardLogger()
	}
	logger = logger.WithField("component", "http")
	h := &Handlers{logger: logger}
	h.ctrl = controller.New(s, controller.PrompterFunc(confirmFromRequest), controller.NotifierFunc(h.notify), logger)
	return h
}

// exchange carries per-request answers to prompts and collects notifications.
type exchange struct {
	confirm bool
	prompt  string
	notes   []string
}

type exchangeKey struct{}

func withExchange(ctx context.Context, ex *exchange) context.Context {
	return context.WithValue(ctx, exchangeKey{}, ex)
}

func exchangeFrom(ctx context.Context) *exchange {
	ex, _ := ctx.Value(exchangeKey{}).(*exchange)
	return ex
}

func confirmFromRequest(ctx context.Context, message string) bool {
	ex := exchangeFrom(ctx)
	if ex == nil {
		return false
	}
	ex.prompt = message
	return ex.confirm
}

func (h *Handlers) notify(ctx context.Context, message string) {
	if ex := exchangeFrom(ctx); ex != nil {
		ex.notes = append(ex.notes, message)
	}
	h.logger.WithField("message", message).Info("user notified")
}

// dispatch runs one command with the controller locked.
func (h *Handlers) dispatch(ctx context.Context, cmd controller.Command) (controller.Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ctrl.Dispatch(ctx, cmd)
}

// locked runs fn with exclusive access to the controller.
func (h *Handlers) locked(fn func(c *controller.Controller)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(h.ctrl)
}

// parseID extracts and parses a task ID from URL parameters.
func parseID(r *http.Request, param string) (models.TaskID, error) {
	idStr := chi.URLParam(r, param)
	id, err := strconv.ParseInt(idStr, 10, 64)
	return models.TaskID(id), err
}

// parseDate parses an optional wire date; nil or empty means no date.
func parseDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	return models.ParseDate(*s)
}

func decodeJSON(r *http.Request, v interface{}) error {
	return sonic.ConfigDefault.NewDecoder(r.Body).Decode(v)
}

func respondJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := sonic.ConfigDefault.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("failed to encode response")
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, errorResponse{Error: message})
}

func (h *Handlers) respondServerError(w http.ResponseWriter, err error) {
	h.logger.WithError(err).Error("internal server error")
	respondError(w, http.StatusInternalServerError, "internal server error")
}

// respondCommandError maps controller errors to status codes.
func (h *Handlers) respondCommandError(w http.ResponseWriter, err error, ex *exchange) {
	switch {
	case errors.Is(err, models.ErrEmptyTitle):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: controller.EmptyTitleMessage, Notes: ex.notes})
	case errors.Is(err, controller.ErrDeleteDeclined):
		respondJSON(w, http.StatusConflict, errorResponse{Error: "confirmation required", Prompt: ex.prompt})
	case errors.Is(err, edit.ErrNotEditing):
		respondError(w, http.StatusConflict, err.Error())
	default:
		h.respondServerError(w, err)
	}
}
