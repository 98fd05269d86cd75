package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vkorchagin/workers-bot/internal/domain/reminders"
	"github.com/vkorchagin/workers-bot/internal/domain/tasks"
	"github.com/vkorchagin/workers-bot/internal/domain/users"
)

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbConnected := true
	if h.Ping != nil {
		dbConnected = h.Ping(r.Context()) == nil
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"ok":           true,
		"service":      "backend",
		"db_connected": dbConnected,
		"time":         time.Now().UTC().Format(time.RFC3339),
	})
}

type createTaskRequest struct {
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	TaskType       tasks.Type          `json:"task_type"`
	Requirements   []tasks.Requirement `json:"requirements"`
	Location       string              `json:"location"`
	MetroStation   string              `json:"metro_station"`
	StartDatetime  string              `json:"start_datetime"`
	DurationHours  int                 `json:"duration_hours"`
	ClientPrice    float64             `json:"client_price"`
	WorkerPrice    *float64            `json:"worker_price"`
	VerifiedOnly   bool                `json:"verified_only"`
	AdditionalInfo string              `json:"additional_info"`
	ClientID       string              `json:"client_id"`
	// Status принимается, но игнорируется: создание всегда даёт pending.
	Status string `json:"status,omitempty"`
}

func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid_body", err.Error())
		return
	}
	start, err := time.Parse(time.RFC3339, req.StartDatetime)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "validation_failed",
			"start_datetime must be an ISO-8601 timestamp")
		return
	}

	t, err := h.Tasks.Create(r.Context(), tasks.CreateRequest{
		Title:          req.Title,
		Description:    req.Description,
		Type:           req.TaskType,
		Requirements:   req.Requirements,
		Location:       req.Location,
		MetroStation:   req.MetroStation,
		StartDatetime:  start,
		DurationHours:  req.DurationHours,
		ClientPrice:    req.ClientPrice,
		WorkerPrice:    req.WorkerPrice,
		VerifiedOnly:   req.VerifiedOnly,
		AdditionalInfo: req.AdditionalInfo,
		ClientID:       req.ClientID,
	})
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := tasks.Filter{
		Status:   tasks.Status(q.Get("status")),
		Type:     tasks.Type(q.Get("task_type")),
		ClientID: q.Get("client_id"),
		Limit:    queryInt(q.Get("limit"), tasks.DefaultListLimit),
		Offset:   queryInt(q.Get("offset"), 0),
	}
	list, err := h.Tasks.List(r.Context(), f)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	t, err := h.Tasks.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (h *Handler) handlePatchTask(w http.ResponseWriter, r *http.Request) {
	var p tasks.Patch
	if err := decodeJSON(r, &p); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid_body", err.Error())
		return
	}
	t, err := h.Tasks.Update(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.Users.List(r.Context(), users.Filter{
		Role:   users.Role(q.Get("role")),
		Limit:  queryInt(q.Get("limit"), 50),
		Offset: queryInt(q.Get("offset"), 0),
	})
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

type createReminderRequest struct {
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	RemindAt    string `json:"remind_at"`
	TaskID      string `json:"task_id"`
}

func (h *Handler) handleCreateReminder(w http.ResponseWriter, r *http.Request) {
	var req createReminderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid_body", err.Error())
		return
	}
	if req.UserID == "" || req.Title == "" {
		respondError(w, http.StatusUnprocessableEntity, "validation_failed",
			"user_id and title are required")
		return
	}
	remindAt, err := time.Parse(time.RFC3339, req.RemindAt)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "validation_failed",
			"remind_at must be an ISO-8601 timestamp")
		return
	}

	rem := &reminders.Reminder{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
		RemindAt:    remindAt.UTC(),
		TaskID:      req.TaskID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.Reminders.Insert(r.Context(), rem); err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rem)
}

func (h *Handler) handleListReminders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.Reminders.List(r.Context(), reminders.Filter{
		UserID: q.Get("user_id"),
		Limit:  queryInt(q.Get("limit"), 50),
	})
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// handleStatsSummary отдаёт сводку для дашборда. Недоступное хранилище на
// пути чтения не валит запрос: в ответ уходят нули.
func (h *Handler) handleStatsSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	byStatus := map[tasks.Status]int64{}
	if m, err := h.Tasks.CountByStatus(ctx); err == nil {
		byStatus = m
	} else {
		h.Log.Warn("stats: count by status failed", "err", err)
	}
	var totalTasks int64
	for _, n := range byStatus {
		totalTasks += n
	}

	var totalRevenue float64
	if sum, err := h.Tasks.SumClientPrice(ctx, tasks.StatusCompleted); err == nil {
		totalRevenue = sum
	} else {
		h.Log.Warn("stats: revenue sum failed", "err", err)
	}

	var totalUsers, workersCount, clientsCount int64
	if n, err := h.Users.Count(ctx, ""); err == nil {
		totalUsers = n
	}
	if n, err := h.Users.Count(ctx, users.RoleWorker); err == nil {
		workersCount = n
	}
	if n, err := h.Users.Count(ctx, users.RoleClient); err == nil {
		clientsCount = n
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"total_tasks":   totalTasks,
		"by_status":     byStatus,
		"total_revenue": int64(totalRevenue),
		"total_users":   totalUsers,
		"workers_count": workersCount,
		"clients_count": clientsCount,
	})
}

func queryInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}
