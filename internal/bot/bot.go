package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sethvargo/go-retry"

	"github.com/vkorchagin/workers-bot/internal/dialog"
	"github.com/vkorchagin/workers-bot/internal/domain/reminders"
	"github.com/vkorchagin/workers-bot/internal/domain/tasks"
	"github.com/vkorchagin/workers-bot/internal/domain/users"
	"github.com/vkorchagin/workers-bot/internal/observability"
)

// API — используемая часть Telegram-клиента; в тестах подменяется фейком.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

type Bot struct {
	api       API
	log       *slog.Logger
	users     users.Repo
	states    dialog.Repo
	tasks     *tasks.Service
	reminders reminders.Repo
	adminChat int64
	metrics   *observability.Metrics
}

func New(api API, log *slog.Logger, usersRepo users.Repo, statesRepo dialog.Repo,
	taskSvc *tasks.Service, remindersRepo reminders.Repo,
	adminChatID int64, metrics *observability.Metrics) *Bot {

	return &Bot{
		api: api, log: log, users: usersRepo, states: statesRepo,
		tasks: taskSvc, reminders: remindersRepo,
		adminChat: adminChatID, metrics: metrics,
	}
}

// Run запускает long polling. Первый getUpdates делается с ограниченными
// повторами (3 попытки, экспоненциальная пауза): так переживается конфликт
// с другим работающим экземпляром бота. Исчерпание попыток фатально.
func (b *Bot) Run(ctx context.Context, timeoutSec int) error {
	probe := tgbotapi.NewUpdate(0)
	probe.Limit = 1

	backoff := retry.WithMaxRetries(3, retry.NewExponential(2*time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if _, err := b.api.GetUpdates(probe); err != nil {
			if isConflict(err) {
				b.log.Warn("getUpdates conflict, retrying", "err", err)
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("start polling: %w", err)
	}
	b.log.Info("polling started")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSec
	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd := <-updates:
			if b.metrics != nil {
				b.metrics.UpdatesProcessed.Inc()
			}
			if upd.Message != nil {
				b.onMessage(ctx, upd)
			} else if upd.CallbackQuery != nil {
				b.onCallback(ctx, upd)
			}
		}
	}
}

func isConflict(err error) bool {
	s := err.Error()
	return strings.Contains(s, "Conflict") || strings.Contains(s, "terminated by other getUpdates")
}

func (b *Bot) onMessage(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	b.handleStateMessage(ctx, msg)
}

func (b *Bot) onCallback(ctx context.Context, upd tgbotapi.Update) {
	b.handleCallback(ctx, upd.CallbackQuery)
}
