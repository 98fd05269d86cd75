package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGRepo struct {
	pool *pgxpool.Pool
}

func NewPGRepo(pool *pgxpool.Pool) *PGRepo { return &PGRepo{pool: pool} }

const taskColumns = `id, title, description, task_type, requirements, location, metro_station,
	start_datetime, duration_hours, client_price, worker_price, verified_only,
	additional_info, moderation_notes, status, client_id, assigned_workers,
	applications_count, created_at, updated_at`

func scanTask(row pgx.Row) (*Task, error) {
	var t Task
	var reqRaw, workersRaw []byte
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Type, &reqRaw, &t.Location,
		&t.MetroStation, &t.StartDatetime, &t.DurationHours, &t.ClientPrice,
		&t.WorkerPrice, &t.VerifiedOnly, &t.AdditionalInfo, &t.ModerationNotes,
		&t.Status, &t.ClientID, &workersRaw, &t.Applications, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(reqRaw) > 0 {
		if err := json.Unmarshal(reqRaw, &t.Requirements); err != nil {
			return nil, fmt.Errorf("decode requirements: %w", err)
		}
	}
	if t.Requirements == nil {
		t.Requirements = []Requirement{}
	}
	if len(workersRaw) > 0 {
		if err := json.Unmarshal(workersRaw, &t.AssignedWorkers); err != nil {
			return nil, fmt.Errorf("decode assigned_workers: %w", err)
		}
	}
	if t.AssignedWorkers == nil {
		t.AssignedWorkers = []string{}
	}
	return &t, nil
}

func (r *PGRepo) Insert(ctx context.Context, t *Task) error {
	reqRaw, err := json.Marshal(t.Requirements)
	if err != nil {
		return fmt.Errorf("encode requirements: %w", err)
	}
	workersRaw, err := json.Marshal(t.AssignedWorkers)
	if err != nil {
		return fmt.Errorf("encode assigned_workers: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
	`, t.ID, t.Title, t.Description, t.Type, reqRaw, t.Location, t.MetroStation,
		t.StartDatetime, t.DurationHours, t.ClientPrice, t.WorkerPrice, t.VerifiedOnly,
		t.AdditionalInfo, t.ModerationNotes, t.Status, t.ClientID, workersRaw,
		t.Applications, t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *PGRepo) Get(ctx context.Context, id string) (*Task, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

// Update держит строку под FOR UPDATE на время apply, поэтому параллельные
// патчи одной записи сериализуются и не теряют поля друг друга.
func (r *PGRepo) Update(ctx context.Context, id string, apply func(*Task) error) (*Task, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR UPDATE`, id)
	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := apply(t); err != nil {
		return nil, err
	}

	workersRaw, err := json.Marshal(t.AssignedWorkers)
	if err != nil {
		return nil, fmt.Errorf("encode assigned_workers: %w", err)
	}
	_, err = tx.Exec(ctx, `
		UPDATE tasks SET
			title = $2, description = $3, status = $4, worker_price = $5,
			moderation_notes = $6, assigned_workers = $7, applications_count = $8,
			updated_at = $9
		WHERE id = $1
	`, t.ID, t.Title, t.Description, t.Status, t.WorkerPrice,
		t.ModerationNotes, workersRaw, t.Applications, t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *PGRepo) List(ctx context.Context, f Filter) ([]Task, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if f.Status != "" {
		where = append(where, "status = "+arg(f.Status))
	}
	if f.Type != "" {
		where = append(where, "task_type = "+arg(f.Type))
	}
	if f.ClientID != "" {
		where = append(where, "client_id = "+arg(f.ClientID))
	}

	q := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC LIMIT " + arg(normalizeLimit(f.Limit)) + " OFFSET " + arg(f.Offset)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *PGRepo) CountByStatus(ctx context.Context) (map[Status]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, count(*) FROM tasks GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[Status]int64{}
	for rows.Next() {
		var s Status
		var n int64
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		out[s] = n
	}
	return out, rows.Err()
}

func (r *PGRepo) SumClientPrice(ctx context.Context, status Status) (float64, error) {
	var sum float64
	err := r.pool.QueryRow(ctx,
		`SELECT coalesce(sum(client_price), 0) FROM tasks WHERE status = $1`, status).Scan(&sum)
	return sum, err
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
