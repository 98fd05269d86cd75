package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vkorchagin/workers-bot/internal/domain/tasks"
)

// TaskApproved — задание прошло модерацию: заказчику уходит сводка и два
// варианта ответа; его выбор решает, публикуется задание или отменяется.
func (b *Bot) TaskApproved(ctx context.Context, t tasks.Task) {
	client, err := b.users.Get(ctx, t.ClientID)
	if err != nil {
		b.log.Error("notify: client lookup failed", "client_id", t.ClientID, "err", err)
		return
	}

	var sb strings.Builder
	sb.WriteString("✅ Ваше задание прошло модерацию!\n\n")
	sb.WriteString(fmt.Sprintf("📋 %s\n", t.Title))
	sb.WriteString(fmt.Sprintf("📍 %s\n", t.Location))
	sb.WriteString(fmt.Sprintf("📅 %s\n", t.StartDatetime.Format("02.01.2006 15:04")))
	sb.WriteString(fmt.Sprintf("💰 Стоимость: %.0f ₽\n\n", t.ClientPrice))
	if t.ModerationNotes != "" {
		sb.WriteString(fmt.Sprintf("💬 Комментарий: %s\n\n", t.ModerationNotes))
	}
	sb.WriteString("Задание будет опубликовано для исполнителей. Согласны с условиями?")

	msg := tgbotapi.NewMessage(client.TgChatID, sb.String())
	msg.ReplyMarkup = approvalKeyboard(t.ID)
	b.send(msg)
}

// TaskRejected — модератор отклонил задание.
func (b *Bot) TaskRejected(ctx context.Context, t tasks.Task) {
	client, err := b.users.Get(ctx, t.ClientID)
	if err != nil {
		b.log.Error("notify: client lookup failed", "client_id", t.ClientID, "err", err)
		return
	}

	var sb strings.Builder
	sb.WriteString("❌ Ваше задание отклонено модератором\n\n")
	sb.WriteString(fmt.Sprintf("📋 %s\n", t.Title))
	sb.WriteString(fmt.Sprintf("📍 %s\n\n", t.Location))
	if t.ModerationNotes != "" {
		sb.WriteString(fmt.Sprintf("💬 Причина: %s\n\n", t.ModerationNotes))
	}
	sb.WriteString("Вы можете создать новое задание с учётом комментариев.")

	b.send(tgbotapi.NewMessage(client.TgChatID, sb.String()))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID

	switch {
	case strings.HasPrefix(cb.Data, "task:confirm:"):
		taskID := strings.TrimPrefix(cb.Data, "task:confirm:")
		b.answerCallback(cb, "", false)
		t, err := b.tasks.Confirm(ctx, taskID)
		if err != nil {
			b.log.Error("confirm task failed", "task_id", taskID, "err", err)
			b.editTextAndClear(chatID, messageID, "❌ Не удалось обработать ответ. Задание могло быть уже обработано.")
			return
		}
		b.editTextAndClear(chatID, messageID, fmt.Sprintf(
			"✅ Задание опубликовано!\n\n📋 %s\nЗадание размещено для исполнителей. Вы получите уведомление, когда найдутся кандидаты.",
			t.Title))

	case strings.HasPrefix(cb.Data, "task:decline:"):
		taskID := strings.TrimPrefix(cb.Data, "task:decline:")
		b.answerCallback(cb, "", false)
		t, err := b.tasks.Reject(ctx, taskID)
		if err != nil {
			b.log.Error("reject task failed", "task_id", taskID, "err", err)
			b.editTextAndClear(chatID, messageID, "❌ Не удалось обработать ответ. Задание могло быть уже обработано.")
			return
		}
		b.editTextAndClear(chatID, messageID, fmt.Sprintf(
			"❌ Задание отменено\n\n📋 %s\nЗадание снято с публикации.", t.Title))

	default:
		b.answerCallback(cb, "", false)
	}
}
