package dialog

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/vkorchagin/workers-bot/internal/storage/fstore"
)

type FileRepo struct {
	st *fstore.Store
}

func NewFileRepo(st *fstore.Store) *FileRepo { return &FileRepo{st: st} }

type fileItem struct {
	State   State   `json:"state"`
	Payload Payload `json:"payload"`
}

func chatKey(chatID int64) string { return strconv.FormatInt(chatID, 10) }

func (r *FileRepo) Get(_ context.Context, chatID int64) (*Item, error) {
	raw, ok := r.st.Get(chatKey(chatID))
	if !ok {
		return &Item{ChatID: chatID, State: StateMainMenu, Payload: Payload{}}, nil
	}
	var fi fileItem
	if err := json.Unmarshal(raw, &fi); err != nil {
		return &Item{ChatID: chatID, State: StateMainMenu, Payload: Payload{}}, nil
	}
	if fi.Payload == nil {
		fi.Payload = Payload{}
	}
	return &Item{ChatID: chatID, State: fi.State, Payload: fi.Payload}, nil
}

func (r *FileRepo) Set(_ context.Context, chatID int64, state State, payload Payload) error {
	if payload == nil {
		payload = Payload{}
	}
	raw, err := json.Marshal(fileItem{State: state, Payload: payload})
	if err != nil {
		return err
	}
	return r.st.Put(chatKey(chatID), raw)
}

func (r *FileRepo) Reset(_ context.Context, chatID int64) error {
	return r.st.Delete(chatKey(chatID))
}
