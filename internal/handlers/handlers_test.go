package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"todolist/internal/kv"
	"todolist/internal/store"
)

func setupTestHandlers(t *testing.T) (*Handlers, *store.TaskStore) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	s := store.New(kv.NewMemoryStore(), "", logger)
	s.Load(context.Background())
	return New(s, logger), s
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createTask(t *testing.T, h http.Handler, body string) taskResponse {
	t.Helper()
	rec := do(t, h, "POST", "/api/tasks", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	var task taskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &task); err != nil {
		t.Fatalf("failed to decode task: %v", err)
	}
	return task
}

func listTasks(t *testing.T, h http.Handler, query string) viewResponse {
	t.Helper()
	rec := do(t, h, "GET", "/api/tasks"+query, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var v viewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode view: %v", err)
	}
	return v
}

func taskPath(id int64, suffix string) string {
	return "/api/tasks/" + strconv.FormatInt(id, 10) + suffix
}

func TestCreateTaskHandler_Success(t *testing.T) {
	h, s := setupTestHandlers(t)
	router := h.Routes()

	task := createTask(t, router, `{"title":"  Buy milk ","date":"2024-01-01"}`)

	if task.Title != "Buy milk" {
		t.Errorf("expected trimmed title, got %q", task.Title)
	}
	if task.Date == nil || *task.Date != "2024-01-01" {
		t.Errorf("expected date 2024-01-01, got %v", task.Date)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 stored task, got %d", s.Len())
	}
}

func TestCreateTaskHandler_ValidationError(t *testing.T) {
	h, s := setupTestHandlers(t)

	req := httptest.NewRequest("POST", "/api/tasks", strings.NewReader(`{"title":"   "}`))
	rec := httptest.NewRecorder()

	h.CreateTask(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Title cannot be empty") {
		t.Errorf("expected empty title message, got %s", rec.Body.String())
	}
	if s.Len() != 0 {
		t.Error("expected no task created")
	}
}

func TestCreateTaskHandler_BadInput(t *testing.T) {
	h, _ := setupTestHandlers(t)
	router := h.Routes()

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"title":`},
		{"invalid date", `{"title":"x","date":"tomorrow"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, "POST", "/api/tasks", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
		})
	}
}

func TestListTasksHandler_FilterSearchSort(t *testing.T) {
	h, _ := setupTestHandlers(t)
	router := h.Routes()

	feb := createTask(t, router, `{"title":"Feb report","date":"2024-02-01"}`)
	createTask(t, router, `{"title":"Jan report","date":"2024-01-01T00:00:00.000Z"}`)
	createTask(t, router, `{"title":"Buy milk"}`)

	v := listTasks(t, router, "")
	if len(v.Tasks) != 3 || v.Tasks[0].Title != "Buy milk" || v.Sort != "asc" {
		t.Fatalf("unexpected default view: %+v", v)
	}

	v = listTasks(t, router, "?q=REPORT&sort=desc")
	if len(v.Tasks) != 2 || v.Tasks[0].Title != "Feb report" || v.Tasks[1].Title != "Jan report" {
		t.Errorf("unexpected searched view: %+v", v.Tasks)
	}

	do(t, router, "POST", taskPath(feb.ID, "/toggle"), "")

	// View state sticks between requests.
	v = listTasks(t, router, "?filter=done")
	if len(v.Tasks) != 1 || v.Tasks[0].ID != feb.ID || v.Search != "REPORT" || v.Sort != "desc" {
		t.Errorf("unexpected done view: %+v", v)
	}

	v = listTasks(t, router, "?filter=active&q=")
	if len(v.Tasks) != 2 {
		t.Errorf("expected 2 active tasks, got %d", len(v.Tasks))
	}
}

func TestListTasksHandler_BadParams(t *testing.T) {
	h, _ := setupTestHandlers(t)
	router := h.Routes()

	for _, query := range []string{"?filter=bogus", "?sort=sideways"} {
		rec := do(t, router, "GET", "/api/tasks"+query, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status %d, got %d", query, http.StatusBadRequest, rec.Code)
		}
	}
}

func TestUpdateTaskHandler_Success(t *testing.T) {
	h, s := setupTestHandlers(t)
	task := createTask(t, h.Routes(), `{"title":"Original","date":"2024-01-01"}`)

	req := httptest.NewRequest("PUT", taskPath(task.ID, ""), strings.NewReader(`{"title":"Updated","date":null}`))
	rec := httptest.NewRecorder()

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", strconv.FormatInt(task.ID, 10))
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	h.UpdateTask(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	updated := s.Tasks()[0]
	if updated.Title != "Updated" || updated.Date != nil {
		t.Errorf("unexpected task after update: %+v", updated)
	}
}

func TestUpdateTaskHandler_Errors(t *testing.T) {
	h, _ := setupTestHandlers(t)
	router := h.Routes()
	task := createTask(t, router, `{"title":"x"}`)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"invalid id", "/api/tasks/abc", `{"title":"y"}`, http.StatusBadRequest},
		{"unknown id", "/api/tasks/1", `{"title":"y"}`, http.StatusNotFound},
		{"empty title", taskPath(task.ID, ""), `{"title":""}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, "PUT", tt.path, tt.body)
			if rec.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestDeleteTaskHandler_RequiresConfirmation(t *testing.T) {
	h, s := setupTestHandlers(t)
	router := h.Routes()
	task := createTask(t, router, `{"title":"Walk dog"}`)

	rec := do(t, router, "DELETE", taskPath(task.ID, ""), "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if resp.Prompt != "Delete task «Walk dog»?" {
		t.Errorf("unexpected prompt %q", resp.Prompt)
	}
	if s.Len() != 1 {
		t.Fatal("expected task kept without confirmation")
	}

	rec = do(t, router, "DELETE", taskPath(task.ID, "?confirm=true"), "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	if s.Len() != 0 {
		t.Error("expected task deleted")
	}
}

func TestToggleTaskHandler(t *testing.T) {
	h, _ := setupTestHandlers(t)
	router := h.Routes()
	task := createTask(t, router, `{"title":"x"}`)

	rec := do(t, router, "POST", taskPath(task.ID, "/toggle"), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"done":true`) {
		t.Errorf("expected done task, got %s", rec.Body.String())
	}

	rec = do(t, router, "POST", "/api/tasks/1/toggle", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestReorderAndDragHandlers(t *testing.T) {
	h, s := setupTestHandlers(t)
	router := h.Routes()
	a := createTask(t, router, `{"title":"a"}`)
	createTask(t, router, `{"title":"b"}`)
	c := createTask(t, router, `{"title":"c"}`)
	// Manual order is c, b, a.

	do(t, router, "POST", "/api/tasks/reorder", `{"source":`+strconv.FormatInt(c.ID, 10)+`,"target":`+strconv.FormatInt(a.ID, 10)+`}`)
	if got := titlesOf(s); got != "bac" {
		t.Fatalf("expected bac after reorder, got %s", got)
	}

	rec := do(t, router, "POST", "/api/drag/start", `{"id":`+strconv.FormatInt(a.ID, 10)+`}`)
	var v viewResponse
	json.Unmarshal(rec.Body.Bytes(), &v)
	if v.Dragging == nil || *v.Dragging != a.ID {
		t.Errorf("expected dragging %d, got %v", a.ID, v.Dragging)
	}

	do(t, router, "POST", "/api/drag/drop", `{"target":`+strconv.FormatInt(c.ID, 10)+`}`)
	do(t, router, "POST", "/api/drag/end", "")
	if got := titlesOf(s); got != "bca" {
		t.Errorf("expected bca after drop, got %s", got)
	}

	// A drop outside any row is accepted and ignored.
	rec = do(t, router, "POST", "/api/drag/drop", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if rec = do(t, router, "POST", "/api/drag/start", `{}`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func titlesOf(s *store.TaskStore) string {
	var b strings.Builder
	for _, t := range s.Tasks() {
		b.WriteString(t.Title)
	}
	return b.String()
}

func TestEditHandlers_Lifecycle(t *testing.T) {
	h, s := setupTestHandlers(t)
	router := h.Routes()
	task := createTask(t, router, `{"title":"Old"}`)

	rec := do(t, router, "POST", taskPath(task.ID, "/edit/save"), "")
	if rec.Code != http.StatusConflict {
		t.Errorf("save without edit: expected status %d, got %d", http.StatusConflict, rec.Code)
	}

	rec = do(t, router, "POST", taskPath(task.ID, "/edit"), "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"state":"editing"`) {
		t.Fatalf("begin edit: got %d %s", rec.Code, rec.Body.String())
	}

	do(t, router, "PATCH", taskPath(task.ID, "/edit"), `{"title":" "}`)
	rec = do(t, router, "POST", taskPath(task.ID, "/edit/save"), "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank save: expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}

	rec = do(t, router, "PATCH", taskPath(task.ID, "/edit"), `{"title":"New","date":"2024-03-01"}`)
	if !strings.Contains(rec.Body.String(), `"date":"2024-03-01"`) {
		t.Errorf("expected draft date, got %s", rec.Body.String())
	}
	rec = do(t, router, "POST", taskPath(task.ID, "/edit/save"), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("save: expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if got := s.Tasks()[0]; got.Title != "New" || got.Date == nil {
		t.Errorf("unexpected saved task: %+v", got)
	}

	do(t, router, "POST", taskPath(task.ID, "/edit"), "")
	do(t, router, "PATCH", taskPath(task.ID, "/edit"), `{"title":"Discarded","clear_date":true}`)
	rec = do(t, router, "POST", taskPath(task.ID, "/edit/cancel"), "")
	if !strings.Contains(rec.Body.String(), `"state":"viewing"`) {
		t.Errorf("expected viewing after cancel, got %s", rec.Body.String())
	}
	if got := s.Tasks()[0]; got.Title != "New" || got.Date == nil {
		t.Errorf("cancel changed task: %+v", got)
	}

	if rec = do(t, router, "POST", "/api/tasks/1/edit", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown task: expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestExportHandler(t *testing.T) {
	h, _ := setupTestHandlers(t)
	router := h.Routes()
	createTask(t, router, `{"title":"Buy milk","date":"2024-01-01"}`)

	tests := []struct {
		format      string
		contentType string
		contains    string
	}{
		{"json", "application/json", `"title": "Buy milk"`},
		{"csv", "text/csv; charset=utf-8", "id,title,date,done"},
		{"pdf", "application/pdf", "%PDF-"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			rec := do(t, router, "GET", "/api/export?format="+tt.format, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != tt.contentType {
				t.Errorf("expected content type %q, got %q", tt.contentType, ct)
			}
			if !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("expected %q in body", tt.contains)
			}
		})
	}

	if rec := do(t, router, "GET", "/api/export?format=xml", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

type brokenResponseWriter struct {
	*httptest.ResponseRecorder
}

func (brokenResponseWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestExportHandler_LogsWriteFailure(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s := store.New(kv.NewMemoryStore(), "", logger)
	s.Load(context.Background())
	h := New(s, logger)

	req := httptest.NewRequest("GET", "/api/export?format=csv", nil)
	h.Export(brokenResponseWriter{httptest.NewRecorder()}, req)

	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel || entry.Message != "failed to write export response" {
		t.Errorf("expected write failure to be logged, got %+v", entry)
	}
}
