package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vkorchagin/workers-bot/internal/domain/reminders"
	"github.com/vkorchagin/workers-bot/internal/domain/tasks"
	"github.com/vkorchagin/workers-bot/internal/domain/users"
	"github.com/vkorchagin/workers-bot/internal/observability"
	"github.com/vkorchagin/workers-bot/internal/storage/fstore"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	dir := t.TempDir()
	open := func(name string) *fstore.Store {
		st, err := fstore.Open(filepath.Join(dir, name+".json"))
		if err != nil {
			t.Fatalf("fstore.Open(%s) error = %v", name, err)
		}
		return st
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.New(prometheus.NewRegistry())
	return &Handler{
		Tasks:     tasks.NewService(tasks.NewFileRepo(open("tasks")), log, metrics),
		Users:     users.NewFileRepo(open("users")),
		Reminders: reminders.NewFileRepo(open("reminders")),
		Log:       log,
	}
}

func doJSON(t *testing.T, h *Handler, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return out
}

const validTaskBody = `{
	"title": "Разгрузка фуры",
	"description": "20 тонн",
	"task_type": "loading",
	"location": "Москва, Ленинградское шоссе 72",
	"start_datetime": "2025-03-01T09:00:00Z",
	"duration_hours": 8,
	"client_price": 16000,
	"client_id": "client-1"
}`

func TestHealth(t *testing.T) {
	h := newTestHandler(t)
	rec := doJSON(t, h, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decode[map[string]any](t, rec)
	if body["ok"] != true || body["db_connected"] != true {
		t.Fatalf("health body = %v", body)
	}
}

func TestHealthDBDown(t *testing.T) {
	h := newTestHandler(t)
	h.Ping = func(context.Context) error { return errors.New("connection refused") }
	rec := doJSON(t, h, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decode[map[string]any](t, rec)
	if body["db_connected"] != false {
		t.Fatalf("db_connected = %v, want false", body["db_connected"])
	}
}

func TestCreateTaskIgnoresStatus(t *testing.T) {
	h := newTestHandler(t)
	body := strings.Replace(validTaskBody, `"client_id": "client-1"`,
		`"client_id": "client-1", "status": "approved"`, 1)
	rec := doJSON(t, h, http.MethodPost, "/api/tasks", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decode[tasks.Task](t, rec)
	if created.Status != tasks.StatusPending {
		t.Fatalf("status = %q, want pending", created.Status)
	}
	if created.ID == "" {
		t.Fatalf("id is empty")
	}
}

func TestCreateTaskBadDatetime(t *testing.T) {
	h := newTestHandler(t)
	body := strings.Replace(validTaskBody, "2025-03-01T09:00:00Z", "01.03.2025", 1)
	rec := doJSON(t, h, http.MethodPost, "/api/tasks", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestCreateTaskBadDuration(t *testing.T) {
	h := newTestHandler(t)
	body := strings.Replace(validTaskBody, `"duration_hours": 8`, `"duration_hours": 3`, 1)
	rec := doJSON(t, h, http.MethodPost, "/api/tasks", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	resp := decode[map[string]any](t, rec)
	if resp["error"] != "validation_failed" {
		t.Fatalf("error = %v, want validation_failed", resp["error"])
	}
}

func TestGetTaskNotFound(t *testing.T) {
	h := newTestHandler(t)
	rec := doJSON(t, h, http.MethodGet, "/api/tasks/no-such-id", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	resp := decode[map[string]any](t, rec)
	if resp["error"] != "not_found" {
		t.Fatalf("error = %v, want not_found", resp["error"])
	}
}

func TestPatchTaskLifecycle(t *testing.T) {
	h := newTestHandler(t)
	rec := doJSON(t, h, http.MethodPost, "/api/tasks", validTaskBody)
	created := decode[tasks.Task](t, rec)

	// Модератор одобряет и назначает цену исполнителя.
	rec = doJSON(t, h, http.MethodPatch, "/api/tasks/"+created.ID,
		`{"status": "approved", "worker_price": 12000}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve status = %d, body %s", rec.Code, rec.Body.String())
	}
	got := decode[tasks.Task](t, rec)
	if got.Status != tasks.StatusApproved {
		t.Fatalf("status = %q, want approved", got.Status)
	}
	if got.WorkerPrice == nil || *got.WorkerPrice != 12000 {
		t.Fatalf("worker_price = %v, want 12000", got.WorkerPrice)
	}

	// Запрещённый прыжок.
	rec = doJSON(t, h, http.MethodPatch, "/api/tasks/"+created.ID, `{"status": "completed"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("jump status = %d, want 422", rec.Code)
	}
	resp := decode[map[string]any](t, rec)
	if resp["error"] != "invalid_transition" {
		t.Fatalf("error = %v, want invalid_transition", resp["error"])
	}
}

func TestListTasksFilter(t *testing.T) {
	h := newTestHandler(t)
	for i := 0; i < 3; i++ {
		rec := doJSON(t, h, http.MethodPost, "/api/tasks", validTaskBody)
		if rec.Code != http.StatusOK {
			t.Fatalf("seed status = %d", rec.Code)
		}
	}

	rec := doJSON(t, h, http.MethodGet, "/api/tasks?status=pending&limit=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	list := decode[[]tasks.Task](t, rec)
	if len(list) != 2 {
		t.Fatalf("list = %d, want 2", len(list))
	}

	rec = doJSON(t, h, http.MethodGet, "/api/tasks?status=published", "")
	list = decode[[]tasks.Task](t, rec)
	if len(list) != 0 {
		t.Fatalf("published = %d, want 0", len(list))
	}
}

// failTaskRepo имитирует недоступное хранилище на пути чтения.
type failTaskRepo struct{}

var errStorage = errors.New("storage unavailable")

func (failTaskRepo) Insert(context.Context, *tasks.Task) error { return errStorage }
func (failTaskRepo) Get(context.Context, string) (*tasks.Task, error) {
	return nil, errStorage
}
func (failTaskRepo) Update(context.Context, string, func(*tasks.Task) error) (*tasks.Task, error) {
	return nil, errStorage
}
func (failTaskRepo) List(context.Context, tasks.Filter) ([]tasks.Task, error) {
	return nil, errStorage
}
func (failTaskRepo) CountByStatus(context.Context) (map[tasks.Status]int64, error) {
	return nil, errStorage
}
func (failTaskRepo) SumClientPrice(context.Context, tasks.Status) (float64, error) {
	return 0, errStorage
}

type failUserRepo struct{ users.Repo }

func (failUserRepo) Count(context.Context, users.Role) (int64, error) { return 0, errStorage }

func TestStatsSummary(t *testing.T) {
	h := newTestHandler(t)
	rec := doJSON(t, h, http.MethodPost, "/api/tasks", validTaskBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("seed status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/stats/summary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[map[string]any](t, rec)
	if body["total_tasks"] != float64(1) {
		t.Fatalf("total_tasks = %v, want 1", body["total_tasks"])
	}
}

func TestStatsSummaryDegradesToZeros(t *testing.T) {
	h := newTestHandler(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h.Tasks = tasks.NewService(failTaskRepo{}, log, nil)
	h.Users = failUserRepo{}

	rec := doJSON(t, h, http.MethodGet, "/api/stats/summary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 despite storage failure", rec.Code)
	}
	body := decode[map[string]any](t, rec)
	if body["total_tasks"] != float64(0) || body["total_users"] != float64(0) {
		t.Fatalf("degraded stats = %v, want zeros", body)
	}
}

func TestCreateTaskStorageFailure(t *testing.T) {
	h := newTestHandler(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h.Tasks = tasks.NewService(failTaskRepo{}, log, nil)

	rec := doJSON(t, h, http.MethodPost, "/api/tasks", validTaskBody)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	resp := decode[map[string]any](t, rec)
	if resp["error"] != "internal_error" {
		t.Fatalf("error = %v, want internal_error", resp["error"])
	}
}

func TestCreateAndListReminders(t *testing.T) {
	h := newTestHandler(t)
	rec := doJSON(t, h, http.MethodPost, "/api/reminders", `{
		"user_id": "u1",
		"title": "Позвонить заказчику",
		"remind_at": "2025-03-01T08:00:00Z"
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decode[reminders.Reminder](t, rec)
	if created.ID == "" || created.UserID != "u1" {
		t.Fatalf("created = %+v", created)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/reminders?user_id=u1", "")
	list := decode[[]reminders.Reminder](t, rec)
	if len(list) != 1 {
		t.Fatalf("list = %d, want 1", len(list))
	}

	rec = doJSON(t, h, http.MethodPost, "/api/reminders", `{"title": "без пользователя"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}
