package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vkorchagin/workers-bot/internal/domain/reminders"
	"github.com/vkorchagin/workers-bot/internal/domain/tasks"
	"github.com/vkorchagin/workers-bot/internal/domain/users"
)

type Server struct {
	srv *http.Server
}

// Handler несёт зависимости API-обработчиков. Ping — проверка хранилища
// для /api/health; для файлового хранилища передаётся nil.
type Handler struct {
	Tasks     *tasks.Service
	Users     users.Repo
	Reminders reminders.Repo
	Log       *slog.Logger
	Ping      func(ctx context.Context) error
}

func New(addr string, h *Handler, exposeMetrics bool) *Server {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.handleHealth)

		r.Post("/tasks", h.handleCreateTask)
		r.Get("/tasks", h.handleListTasks)
		r.Get("/tasks/{id}", h.handleGetTask)
		r.Patch("/tasks/{id}", h.handlePatchTask)

		r.Get("/users", h.handleListUsers)

		r.Post("/reminders", h.handleCreateReminder)
		r.Get("/reminders", h.handleListReminders)

		r.Get("/stats/summary", h.handleStatsSummary)
	})

	if exposeMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	return &Server{srv: &http.Server{Addr: addr, Handler: r}}
}

// Router — для httptest.
func (h *Handler) Router() http.Handler {
	s := New("", h, false)
	return s.srv.Handler
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
