package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vkorchagin/workers-bot/internal/domain/tasks"
)

/*** HELPERS ***/

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send failed", "err", err)
	}
}

func (b *Bot) answerCallback(cb *tgbotapi.CallbackQuery, text string, alert bool) {
	resp := tgbotapi.NewCallback(cb.ID, text)
	resp.ShowAlert = alert
	if _, err := b.api.Request(resp); err != nil {
		b.log.Error("answer callback failed", "err", err)
	}
}

func (b *Bot) editTextAndClear(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(
		chatID, messageID, text,
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}},
	)
	b.send(edit)
}

func statusEmoji(s tasks.Status) string {
	switch s {
	case tasks.StatusDraft:
		return "📝"
	case tasks.StatusPending:
		return "⏳"
	case tasks.StatusApproved:
		return "✅"
	case tasks.StatusPublished:
		return "📢"
	case tasks.StatusInProgress:
		return "🔄"
	case tasks.StatusCompleted:
		return "✅"
	case tasks.StatusCancelled:
		return "❌"
	case tasks.StatusUrgent:
		return "🚨"
	}
	return "❓"
}

func workerTypeRU(wt tasks.WorkerType) string {
	switch wt {
	case tasks.WorkerLoader:
		return "грузчик"
	case tasks.WorkerDriver:
		return "водитель"
	case tasks.WorkerRigger:
		return "такелажник"
	case tasks.WorkerCleaner:
		return "уборщик"
	case tasks.WorkerHandyman:
		return "разнорабочий"
	}
	return string(wt)
}

func roleRU(role string) string {
	switch role {
	case "worker":
		return "Исполнитель"
	case "client":
		return "Заказчик"
	case "admin":
		return "Администратор"
	case "moderator":
		return "Модератор"
	}
	return role
}
