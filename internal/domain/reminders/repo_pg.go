package reminders

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGRepo struct {
	pool *pgxpool.Pool
}

func NewPGRepo(pool *pgxpool.Pool) *PGRepo { return &PGRepo{pool: pool} }

const reminderColumns = `id, user_id, title, description, remind_at, task_id, is_sent, created_at`

func scanReminder(row pgx.Row) (*Reminder, error) {
	var rem Reminder
	err := row.Scan(&rem.ID, &rem.UserID, &rem.Title, &rem.Description,
		&rem.RemindAt, &rem.TaskID, &rem.IsSent, &rem.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rem, nil
}

func (r *PGRepo) Insert(ctx context.Context, rem *Reminder) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO reminders (`+reminderColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, rem.ID, rem.UserID, rem.Title, rem.Description, rem.RemindAt,
		rem.TaskID, rem.IsSent, rem.CreatedAt)
	return err
}

func (r *PGRepo) Get(ctx context.Context, id string) (*Reminder, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+reminderColumns+` FROM reminders WHERE id = $1`, id)
	rem, err := scanReminder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rem, err
}

func (r *PGRepo) List(ctx context.Context, f Filter) ([]Reminder, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if f.UserID != "" {
		where = append(where, "user_id = "+arg(f.UserID))
	}
	if f.From != nil {
		where = append(where, "remind_at >= "+arg(*f.From))
	}
	if f.To != nil {
		where = append(where, "remind_at < "+arg(*f.To))
	}
	if f.UnsentOnly {
		where = append(where, "is_sent = false")
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	q := `SELECT ` + reminderColumns + ` FROM reminders`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY remind_at ASC LIMIT " + arg(limit)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Reminder{}
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rem)
	}
	return out, rows.Err()
}

func (r *PGRepo) MarkSent(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE reminders SET is_sent = true WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
