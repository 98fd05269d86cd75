package bot

import (
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vkorchagin/workers-bot/internal/dialog"
	"github.com/vkorchagin/workers-bot/internal/domain/reminders"
	"github.com/vkorchagin/workers-bot/internal/domain/tasks"
	"github.com/vkorchagin/workers-bot/internal/domain/users"
	"github.com/vkorchagin/workers-bot/internal/observability"
	"github.com/vkorchagin/workers-bot/internal/storage/fstore"
)

// fakeAPI копит всё, что бот отправил бы в Telegram.
type fakeAPI struct {
	mu   sync.Mutex
	sent []tgbotapi.Chattable
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdates(tgbotapi.UpdateConfig) ([]tgbotapi.Update, error) {
	return nil, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

// lastText возвращает текст последнего отправленного сообщения.
func (f *fakeAPI) lastText(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		switch m := f.sent[i].(type) {
		case tgbotapi.MessageConfig:
			return m.Text
		case tgbotapi.EditMessageTextConfig:
			return m.Text
		}
	}
	t.Fatalf("no messages sent")
	return ""
}

// lastMessage возвращает последний MessageConfig (не callback и не edit).
func (f *fakeAPI) lastMessage(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if m, ok := f.sent[i].(tgbotapi.MessageConfig); ok {
			return m
		}
	}
	t.Fatalf("no MessageConfig sent")
	return tgbotapi.MessageConfig{}
}

type testEnv struct {
	bot    *Bot
	api    *fakeAPI
	tasks  *tasks.Service
	users  users.Repo
	states dialog.Repo
}

func newTestBot(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	open := func(name string) *fstore.Store {
		st, err := fstore.Open(filepath.Join(dir, name+".json"))
		if err != nil {
			t.Fatalf("fstore.Open(%s) error = %v", name, err)
		}
		return st
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.New(prometheus.NewRegistry())

	usersRepo := users.NewFileRepo(open("users"))
	statesRepo := dialog.NewFileRepo(open("dialog_states"))
	remindersRepo := reminders.NewFileRepo(open("reminders"))
	taskSvc := tasks.NewService(tasks.NewFileRepo(open("tasks")), log, metrics)

	api := &fakeAPI{}
	b := New(api, log, usersRepo, statesRepo, taskSvc, remindersRepo, 999, metrics)
	taskSvc.SetNotifier(b)

	return &testEnv{bot: b, api: api, tasks: taskSvc, users: usersRepo, states: statesRepo}
}

func userMessage(chatID int64, text string) *tgbotapi.Message {
	msg := &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{ID: chatID, UserName: "tester", FirstName: "Тест"},
	}
	if len(text) > 0 && text[0] == '/' {
		end := len(text)
		for i, r := range text {
			if r == ' ' {
				end = i
				break
			}
		}
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: end}}
	}
	return msg
}
