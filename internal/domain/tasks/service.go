package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vkorchagin/workers-bot/internal/observability"
)

// Notifier доставляет заказчику итог модерации. Реализуется ботом;
// для approved сообщение содержит кнопки «согласен/отменить».
type Notifier interface {
	TaskApproved(ctx context.Context, t Task)
	TaskRejected(ctx context.Context, t Task)
}

// Service владеет записью задания и машиной статусов. Все смены статуса
// идут через него и проверяются по таблице переходов.
type Service struct {
	repo     Repo
	log      *slog.Logger
	metrics  *observability.Metrics
	notifier Notifier
}

func NewService(repo Repo, log *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{repo: repo, log: log, metrics: metrics}
}

// SetNotifier разрывает цикл конструирования: бот зависит от сервиса,
// сервис шлёт уведомления через бота.
func (s *Service) SetNotifier(n Notifier) { s.notifier = n }

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Task, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, &ValidationError{Field: "title", Reason: "is required"}
	}
	if req.DurationHours < MinDurationHours || req.DurationHours > MaxDurationHours {
		return nil, &ValidationError{
			Field:  "duration_hours",
			Reason: fmt.Sprintf("must be between %d and %d", MinDurationHours, MaxDurationHours),
		}
	}
	if req.ClientPrice <= 0 {
		return nil, &ValidationError{Field: "client_price", Reason: "must be positive"}
	}
	if strings.TrimSpace(req.ClientID) == "" {
		return nil, &ValidationError{Field: "client_id", Reason: "is required"}
	}
	if req.Type == "" {
		req.Type = TypeOther
	}
	if req.Requirements == nil {
		req.Requirements = []Requirement{}
	}

	now := time.Now().UTC()
	t := &Task{
		ID:              uuid.NewString(),
		Title:           req.Title,
		Description:     req.Description,
		Type:            req.Type,
		Requirements:    req.Requirements,
		Location:        req.Location,
		MetroStation:    req.MetroStation,
		StartDatetime:   req.StartDatetime.UTC(),
		DurationHours:   req.DurationHours,
		ClientPrice:     req.ClientPrice,
		WorkerPrice:     req.WorkerPrice,
		VerifiedOnly:    req.VerifiedOnly,
		AdditionalInfo:  req.AdditionalInfo,
		Status:          StatusPending, // статус из запроса игнорируется всегда
		ClientID:        req.ClientID,
		AssignedWorkers: []string{},
		Applications:    0,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Insert(ctx, t); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	if s.metrics != nil {
		s.metrics.TasksCreated.Inc()
	}
	s.log.Info("task created", "task_id", t.ID, "client_id", t.ClientID)
	return t, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Task, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter) ([]Task, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) CountByStatus(ctx context.Context) (map[Status]int64, error) {
	return s.repo.CountByStatus(ctx)
}

func (s *Service) SumClientPrice(ctx context.Context, st Status) (float64, error) {
	return s.repo.SumClientPrice(ctx, st)
}

// Update применяет только присутствующие поля патча. Пустой патч возвращает
// запись как есть, не трогая updated_at. Смена статуса проверяется по
// таблице переходов; после перехода pending -> approved|cancelled заказчик
// получает уведомление.
func (s *Service) Update(ctx context.Context, id string, p Patch) (*Task, error) {
	if p.Empty() {
		return s.repo.Get(ctx, id)
	}

	var from Status
	t, err := s.repo.Update(ctx, id, func(t *Task) error {
		from = t.Status
		if p.Status != nil {
			if !ValidStatus(*p.Status) {
				return &ValidationError{Field: "status", Reason: "unknown value " + string(*p.Status)}
			}
			if *p.Status != t.Status && !CanTransition(t.Status, *p.Status) {
				return &TransitionError{From: t.Status, To: *p.Status}
			}
			t.Status = *p.Status
		}
		if p.Title != nil {
			t.Title = *p.Title
		}
		if p.Description != nil {
			t.Description = *p.Description
		}
		if p.WorkerPrice != nil {
			t.WorkerPrice = p.WorkerPrice
		}
		if p.ModerationNotes != nil {
			t.ModerationNotes = *p.ModerationNotes
		}
		t.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if p.Status != nil && from != t.Status {
		s.afterTransition(ctx, from, *t)
	}
	return t, nil
}

// Confirm — заказчик согласился с условиями после модерации.
func (s *Service) Confirm(ctx context.Context, id string) (*Task, error) {
	return s.transition(ctx, id, StatusPublished)
}

// Reject — заказчик отказался, задание отменяется.
func (s *Service) Reject(ctx context.Context, id string) (*Task, error) {
	return s.transition(ctx, id, StatusCancelled)
}

func (s *Service) transition(ctx context.Context, id string, to Status) (*Task, error) {
	t, err := s.repo.Update(ctx, id, func(t *Task) error {
		if !CanTransition(t.Status, to) {
			return &TransitionError{From: t.Status, To: to}
		}
		t.Status = to
		t.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("task transitioned", "task_id", id, "status", to)
	return t, nil
}

func (s *Service) afterTransition(ctx context.Context, from Status, t Task) {
	if from == StatusPending && (t.Status == StatusApproved || t.Status == StatusCancelled) {
		if s.metrics != nil {
			s.metrics.ModerationDecisions.WithLabelValues(string(t.Status)).Inc()
		}
	}
	if s.notifier == nil {
		return
	}
	// Сбой доставки не откатывает обновление: транспорт — не хранилище.
	switch t.Status {
	case StatusApproved:
		s.notifier.TaskApproved(ctx, t)
	case StatusCancelled:
		if from == StatusPending {
			s.notifier.TaskRejected(ctx, t)
		}
	}
}
