package reminders

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

func (r *FileRepo) Insert(_ context.Context, rem *Reminder) error {
	raw, err := json.Marshal(rem)
	if err != nil {
		return fmt.Errorf("encode reminder: %w", err)
	}
	return r.st.Put(rem.ID, raw)
}

func (r *FileRepo) Get(_ context.Context, id string) (*Reminder, error) {
	raw, ok := r.st.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	var rem Reminder
	if err := json.Unmarshal(raw, &rem); err != nil {
		return nil, fmt.Errorf("decode reminder %s: %w", id, err)
	}
	return &rem, nil
}

func (r *FileRepo) List(_ context.Context, f Filter) ([]Reminder, error) {
	all := []Reminder{}
	for _, raw := range r.st.All() {
		var rem Reminder
		if err := json.Unmarshal(raw, &rem); err != nil {
			return nil, fmt.Errorf("decode reminder: %w", err)
		}
		if f.UserID != "" && rem.UserID != f.UserID {
			continue
		}
		if f.From != nil && rem.RemindAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !rem.RemindAt.Before(*f.To) {
			continue
		}
		if f.UnsentOnly && rem.IsSent {
			continue
		}
		all = append(all, rem)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].RemindAt.Before(all[j].RemindAt) })

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *FileRepo) MarkSent(_ context.Context, id string) error {
	_, err := r.st.Update(id, func(raw json.RawMessage) (json.RawMessage, error) {
		var rem Reminder
		if err := json.Unmarshal(raw, &rem); err != nil {
			return nil, fmt.Errorf("decode reminder %s: %w", id, err)
		}
		rem.IsSent = true
		return json.Marshal(rem)
	})
	if errors.Is(err, fstore.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
