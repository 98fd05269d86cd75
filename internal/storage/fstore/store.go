// Package fstore хранит коллекцию JSON-документов в одном файле на диске.
// Каждая коллекция (users/tasks/reminders/dialog_states) — отдельный Store
// со своим мьютексом; запись идёт через временный файл и os.Rename, чтобы
// параллельный читатель никогда не увидел недописанный файл.
package fstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var ErrNotFound = errors.New("fstore: document not found")

type Store struct {
	path string

	mu   sync.Mutex
	docs map[string]json.RawMessage
}

// Open загружает коллекцию из path; отсутствующий файл считается пустой
// коллекцией и создаётся при первой записи.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	s := &Store{path: path, docs: map[string]json.RawMessage{}}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s.docs); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return s, nil
}

func (s *Store) Get(id string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.docs[id]
	return raw, ok
}

// Put кладёт документ и сразу сбрасывает коллекцию на диск.
func (s *Store) Put(id string, doc json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[id] = doc
	return s.save()
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return s.save()
}

// Update атомарно перечитывает документ, применяет fn и сохраняет результат.
// Пока fn работает, другие писатели этой коллекции ждут на мьютексе.
func (s *Store) Update(id string, fn func(json.RawMessage) (json.RawMessage, error)) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	next, err := fn(cur)
	if err != nil {
		return nil, err
	}
	s.docs[id] = next
	if err := s.save(); err != nil {
		return nil, err
	}
	return next, nil
}

func (s *Store) All() []json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]json.RawMessage, 0, len(s.docs))
	for _, raw := range s.docs {
		out = append(out, raw)
	}
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

// save пишет всю коллекцию во временный файл и подменяет основной.
// Вызывается только под s.mu.
func (s *Store) save() error {
	raw, err := json.MarshalIndent(s.docs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
