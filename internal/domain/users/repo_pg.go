package users

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

const userColumns = `id, tg_chat_id, username, first_name, last_name, phone, role,
	is_active, is_verified, worker_profile, client_profile, created_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var wpRaw, cpRaw []byte
	err := row.Scan(&u.ID, &u.TgChatID, &u.Username, &u.FirstName, &u.LastName,
		&u.Phone, &u.Role, &u.IsActive, &u.IsVerified, &wpRaw, &cpRaw, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(wpRaw) > 0 {
		if err := json.Unmarshal(wpRaw, &u.WorkerProfile); err != nil {
			return nil, fmt.Errorf("decode worker_profile: %w", err)
		}
	}
	if len(cpRaw) > 0 {
		if err := json.Unmarshal(cpRaw, &u.ClientProfile); err != nil {
			return nil, fmt.Errorf("decode client_profile: %w", err)
		}
	}
	return &u, nil
}

func profilesRaw(u *User) (wp, cp []byte, err error) {
	if u.WorkerProfile != nil {
		if wp, err = json.Marshal(u.WorkerProfile); err != nil {
			return nil, nil, fmt.Errorf("encode worker_profile: %w", err)
		}
	}
	if u.ClientProfile != nil {
		if cp, err = json.Marshal(u.ClientProfile); err != nil {
			return nil, nil, fmt.Errorf("encode client_profile: %w", err)
		}
	}
	return wp, cp, nil
}

func (r *PGRepo) Insert(ctx context.Context, u *User) error {
	wpRaw, cpRaw, err := profilesRaw(u)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, u.ID, u.TgChatID, u.Username, u.FirstName, u.LastName, u.Phone, u.Role,
		u.IsActive, u.IsVerified, wpRaw, cpRaw, u.CreatedAt)
	return err
}

func (r *PGRepo) Get(ctx context.Context, id string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

func (r *PGRepo) GetByChatID(ctx context.Context, chatID int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE tg_chat_id = $1`, chatID)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

func (r *PGRepo) Update(ctx context.Context, id string, apply func(*User) error) (*User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := apply(u); err != nil {
		return nil, err
	}
	wpRaw, cpRaw, err := profilesRaw(u)
	if err != nil {
		return nil, err
	}
	_, err = tx.Exec(ctx, `
		UPDATE users SET
			username = $2, first_name = $3, last_name = $4, phone = $5, role = $6,
			is_active = $7, is_verified = $8, worker_profile = $9, client_profile = $10
		WHERE id = $1
	`, u.ID, u.Username, u.FirstName, u.LastName, u.Phone, u.Role,
		u.IsActive, u.IsVerified, wpRaw, cpRaw)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *PGRepo) List(ctx context.Context, f Filter) ([]User, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if f.Role != "" {
		where = append(where, "role = "+arg(f.Role))
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	q := `SELECT ` + userColumns + ` FROM users`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC LIMIT " + arg(limit) + " OFFSET " + arg(f.Offset)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *PGRepo) Count(ctx context.Context, role Role) (int64, error) {
	var n int64
	var err error
	if role == "" {
		err = r.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n)
	} else {
		err = r.pool.QueryRow(ctx, `SELECT count(*) FROM users WHERE role = $1`, role).Scan(&n)
	}
	return n, err
}
