package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/vkorchagin/workers-bot/internal/storage/fstore"
)

// FileRepo — файловый вариант хранилища: вся коллекция в одном JSON-файле,
// записи сериализуются мьютексом стора.
type FileRepo struct {
	st *fstore.Store
}

func NewFileRepo(st *fstore.Store) *FileRepo { return &FileRepo{st: st} }

func (r *FileRepo) Insert(_ context.Context, t *Task) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}
	return r.st.Put(t.ID, raw)
}

func (r *FileRepo) Get(_ context.Context, id string) (*Task, error) {
	raw, ok := r.st.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	var t Task
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("decode task %s: %w", id, err)
	}
	return &t, nil
}

func (r *FileRepo) Update(_ context.Context, id string, apply func(*Task) error) (*Task, error) {
	var out Task
	_, err := r.st.Update(id, func(raw json.RawMessage) (json.RawMessage, error) {
		var t Task
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("decode task %s: %w", id, err)
		}
		if err := apply(&t); err != nil {
			return nil, err
		}
		out = t
		return json.Marshal(t)
	})
	if errors.Is(err, fstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *FileRepo) List(_ context.Context, f Filter) ([]Task, error) {
	all := []Task{}
	for _, raw := range r.st.All() {
		var t Task
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("decode task: %w", err)
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Type != "" && t.Type != f.Type {
			continue
		}
		if f.ClientID != "" && t.ClientID != f.ClientID {
			continue
		}
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})

	limit := normalizeLimit(f.Limit)
	if f.Offset >= len(all) {
		return []Task{}, nil
	}
	all = all[f.Offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *FileRepo) CountByStatus(_ context.Context) (map[Status]int64, error) {
	out := map[Status]int64{}
	for _, raw := range r.st.All() {
		var t Task
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("decode task: %w", err)
		}
		out[t.Status]++
	}
	return out, nil
}

func (r *FileRepo) SumClientPrice(_ context.Context, status Status) (float64, error) {
	var sum float64
	for _, raw := range r.st.All() {
		var t Task
		if err := json.Unmarshal(raw, &t); err != nil {
			return 0, fmt.Errorf("decode task: %w", err)
		}
		if t.Status == status {
			sum += t.ClientPrice
		}
	}
	return sum, nil
}
