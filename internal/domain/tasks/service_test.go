package tasks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vkorchagin/workers-bot/internal/observability"
	"github.com/vkorchagin/workers-bot/internal/storage/fstore"
)

type fakeNotifier struct {
	mu       sync.Mutex
	approved []string
	rejected []string
}

func (n *fakeNotifier) TaskApproved(_ context.Context, t Task) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.approved = append(n.approved, t.ID)
}

func (n *fakeNotifier) TaskRejected(_ context.Context, t Task) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rejected = append(n.rejected, t.ID)
}

func newTestService(t *testing.T) (*Service, *FileRepo) {
	t.Helper()
	st, err := fstore.Open(filepath.Join(t.TempDir(), "tasks.json"))
	if err != nil {
		t.Fatalf("fstore.Open() error = %v", err)
	}
	repo := NewFileRepo(st)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.New(prometheus.NewRegistry())
	return NewService(repo, log, metrics), repo
}

func validCreate() CreateRequest {
	return CreateRequest{
		Title:         "Разгрузка фуры",
		Description:   "20 тонн, паллеты",
		Type:          TypeLoading,
		Location:      "Москва, Ленинградское шоссе 72",
		StartDatetime: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		DurationHours: 8,
		ClientPrice:   16000,
		ClientID:      "client-1",
	}
}

func TestCreateAlwaysPending(t *testing.T) {
	svc, _ := newTestService(t)
	created, err := svc.Create(context.Background(), validCreate())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.Status != StatusPending {
		t.Fatalf("status = %q, want %q", created.Status, StatusPending)
	}
	if created.ID == "" {
		t.Fatalf("id is empty")
	}
	if created.AssignedWorkers == nil || created.Requirements == nil {
		t.Fatalf("slices must be initialized, got workers=%v reqs=%v",
			created.AssignedWorkers, created.Requirements)
	}

	got, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != created.Title || got.Status != StatusPending {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	cases := []struct {
		name  string
		mut   func(*CreateRequest)
		field string
	}{
		{"empty title", func(r *CreateRequest) { r.Title = "  " }, "title"},
		{"duration too short", func(r *CreateRequest) { r.DurationHours = 3 }, "duration_hours"},
		{"duration too long", func(r *CreateRequest) { r.DurationHours = 25 }, "duration_hours"},
		{"zero price", func(r *CreateRequest) { r.ClientPrice = 0 }, "client_price"},
		{"negative price", func(r *CreateRequest) { r.ClientPrice = -100 }, "client_price"},
		{"no client", func(r *CreateRequest) { r.ClientID = "" }, "client_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreate()
			tc.mut(&req)
			_, err := svc.Create(context.Background(), req)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Create() error = %v, want ValidationError", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("field = %q, want %q", verr.Field, tc.field)
			}
		})
	}
}

func TestGetMissing(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Get(context.Background(), "no-such-id")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestEmptyPatchKeepsUpdatedAt(t *testing.T) {
	svc, _ := newTestService(t)
	created, err := svc.Create(context.Background(), validCreate())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := svc.Update(context.Background(), created.ID, Patch{})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !got.UpdatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("updated_at changed on empty patch: %v -> %v",
			created.UpdatedAt, got.UpdatedAt)
	}
}

func TestPatchApproveNotifies(t *testing.T) {
	svc, _ := newTestService(t)
	n := &fakeNotifier{}
	svc.SetNotifier(n)

	created, err := svc.Create(context.Background(), validCreate())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	status := StatusApproved
	price := 12000.0
	got, err := svc.Update(context.Background(), created.ID, Patch{
		Status:      &status,
		WorkerPrice: &price,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.Status != StatusApproved {
		t.Fatalf("status = %q, want approved", got.Status)
	}
	if got.WorkerPrice == nil || *got.WorkerPrice != price {
		t.Fatalf("worker_price = %v, want %v", got.WorkerPrice, price)
	}
	if len(n.approved) != 1 || n.approved[0] != created.ID {
		t.Fatalf("approved notifications = %v, want [%s]", n.approved, created.ID)
	}
}

func TestPatchRejectNotifies(t *testing.T) {
	svc, _ := newTestService(t)
	n := &fakeNotifier{}
	svc.SetNotifier(n)

	created, err := svc.Create(context.Background(), validCreate())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	status := StatusCancelled
	notes := "Недостаточно данных об адресе"
	if _, err := svc.Update(context.Background(), created.ID, Patch{
		Status:          &status,
		ModerationNotes: &notes,
	}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if len(n.rejected) != 1 {
		t.Fatalf("rejected notifications = %v, want one", n.rejected)
	}
}

func TestPatchInvalidTransition(t *testing.T) {
	svc, _ := newTestService(t)
	created, err := svc.Create(context.Background(), validCreate())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	status := StatusCompleted
	_, err = svc.Update(context.Background(), created.ID, Patch{Status: &status})
	var terr *TransitionError
	if !errors.As(err, &terr) {
		t.Fatalf("Update() error = %v, want TransitionError", err)
	}
	if terr.From != StatusPending || terr.To != StatusCompleted {
		t.Fatalf("transition error = %v", terr)
	}

	// Запись не изменилась.
	got, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != StatusPending {
		t.Fatalf("status after failed patch = %q, want pending", got.Status)
	}
}

func TestPatchUnknownStatus(t *testing.T) {
	svc, _ := newTestService(t)
	created, err := svc.Create(context.Background(), validCreate())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	bad := Status("archived")
	_, err = svc.Update(context.Background(), created.ID, Patch{Status: &bad})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Update() error = %v, want ValidationError", err)
	}
}

func TestConfirmAndReject(t *testing.T) {
	svc, _ := newTestService(t)
	created, err := svc.Create(context.Background(), validCreate())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	status := StatusApproved
	if _, err := svc.Update(context.Background(), created.ID, Patch{Status: &status}); err != nil {
		t.Fatalf("approve error = %v", err)
	}

	got, err := svc.Confirm(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if got.Status != StatusPublished {
		t.Fatalf("status = %q, want published", got.Status)
	}

	// Повторное согласие невозможно.
	_, err = svc.Confirm(context.Background(), created.ID)
	var terr *TransitionError
	if !errors.As(err, &terr) {
		t.Fatalf("second Confirm() error = %v, want TransitionError", err)
	}
}

func TestListFilters(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	seed := []struct {
		id       string
		status   Status
		clientID string
		created  time.Time
	}{
		{"t1", StatusPending, "c1", base},
		{"t2", StatusPublished, "c1", base.Add(time.Hour)},
		{"t3", StatusPublished, "c2", base.Add(2 * time.Hour)},
	}
	for _, s := range seed {
		err := repo.Insert(ctx, &Task{
			ID: s.id, Title: s.id, Status: s.status, ClientID: s.clientID,
			StartDatetime: base, DurationHours: 8, ClientPrice: 1000,
			Requirements: []Requirement{}, AssignedWorkers: []string{},
			CreatedAt: s.created, UpdatedAt: s.created,
		})
		if err != nil {
			t.Fatalf("Insert(%s) error = %v", s.id, err)
		}
	}

	published, err := svc.List(ctx, Filter{Status: StatusPublished})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(published) != 2 {
		t.Fatalf("published count = %d, want 2", len(published))
	}
	// Сортировка по created_at, свежие первыми.
	if published[0].ID != "t3" || published[1].ID != "t2" {
		t.Fatalf("order = [%s %s], want [t3 t2]", published[0].ID, published[1].ID)
	}

	byClient, err := svc.List(ctx, Filter{ClientID: "c1"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(byClient) != 2 {
		t.Fatalf("client tasks = %d, want 2", len(byClient))
	}

	limited, err := svc.List(ctx, Filter{Limit: 1})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "t3" {
		t.Fatalf("limited = %v, want [t3]", limited)
	}
}

func TestConcurrentPatchesUnion(t *testing.T) {
	svc, _ := newTestService(t)
	created, err := svc.Create(context.Background(), validCreate())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	title := "Новое название"
	desc := "Новое описание"
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if _, err := svc.Update(context.Background(), created.ID, Patch{Title: &title}); err != nil {
			t.Errorf("title patch error = %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		if _, err := svc.Update(context.Background(), created.ID, Patch{Description: &desc}); err != nil {
			t.Errorf("description patch error = %v", err)
		}
	}()
	wg.Wait()

	got, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != title || got.Description != desc {
		t.Fatalf("union lost a field: title=%q description=%q", got.Title, got.Description)
	}
}
