package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/vkorchagin/workers-bot/internal/storage/fstore"
)

type FileRepo struct {
	st *fstore.Store
}

func NewFileRepo(st *fstore.Store) *FileRepo { return &FileRepo{st: st} }

func (r *FileRepo) Insert(_ context.Context, u *User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return r.st.Put(u.ID, raw)
}

func (r *FileRepo) Get(_ context.Context, id string) (*User, error) {
	raw, ok := r.st.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", id, err)
	}
	return &u, nil
}

func (r *FileRepo) GetByChatID(_ context.Context, chatID int64) (*User, error) {
	for _, raw := range r.st.All() {
		var u User
		if err := json.Unmarshal(raw, &u); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		if u.TgChatID == chatID {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *FileRepo) Update(_ context.Context, id string, apply func(*User) error) (*User, error) {
	var out User
	_, err := r.st.Update(id, func(raw json.RawMessage) (json.RawMessage, error) {
		var u User
		if err := json.Unmarshal(raw, &u); err != nil {
			return nil, fmt.Errorf("decode user %s: %w", id, err)
		}
		if err := apply(&u); err != nil {
			return nil, err
		}
		out = u
		return json.Marshal(u)
	})
	if errors.Is(err, fstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *FileRepo) List(_ context.Context, f Filter) ([]User, error) {
	all := []User{}
	for _, raw := range r.st.All() {
		var u User
		if err := json.Unmarshal(raw, &u); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if f.Offset >= len(all) {
		return []User{}, nil
	}
	all = all[f.Offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *FileRepo) Count(_ context.Context, role Role) (int64, error) {
	if role == "" {
		return int64(r.st.Len()), nil
	}
	var n int64
	for _, raw := range r.st.All() {
		var u User
		if err := json.Unmarshal(raw, &u); err != nil {
			return 0, fmt.Errorf("decode user: %w", err)
		}
		if u.Role == role {
			n++
		}
	}
	return n, nil
}
