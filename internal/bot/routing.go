package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vkorchagin/workers-bot/internal/dialog"
	"github.com/vkorchagin/workers-bot/internal/domain/users"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		u, err := users.EnsureFromTelegram(ctx, b.users, telegramProfile(msg))
		if err != nil {
			b.send(tgbotapi.NewMessage(chatID, "Ошибка: не удалось сохранить профиль"))
			return
		}
		_ = b.states.Reset(ctx, chatID)

		m := tgbotapi.NewMessage(chatID, "🏢 Добро пожаловать в систему Рабочие! Выберите действие:")
		if chatID == b.adminChat || u.Role == users.RoleAdmin {
			m.ReplyMarkup = adminReplyKeyboard()
		} else {
			m.ReplyMarkup = mainReplyKeyboard()
		}
		b.send(m)
		return

	case "help":
		b.send(tgbotapi.NewMessage(chatID,
			"Команды:\n/start — начать работу\n/cancel — прервать диалог\n/help — помощь"))
		return

	case "cancel":
		st, _ := b.states.Get(ctx, chatID)
		if dialog.IntakeState(st.State) && b.metrics != nil {
			b.metrics.IntakeCancelled.Inc()
		}
		_ = b.states.Reset(ctx, chatID)
		m := tgbotapi.NewMessage(chatID, "Диалог завершён.")
		m.ReplyMarkup = mainReplyKeyboard()
		b.send(m)
		return

	default:
		b.send(tgbotapi.NewMessage(chatID, "Не знаю такую команду. Наберите /help"))
		return
	}
}

func (b *Bot) handleStateMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	st, _ := b.states.Get(ctx, chatID)

	// Активный диалог создания задания: повторный вход сбрасывает черновик,
	// любой другой текст уходит в текущий шаг.
	if dialog.IntakeState(st.State) {
		if msg.Text == btnCreate {
			b.startIntake(ctx, chatID)
			return
		}
		b.handleIntakeStep(ctx, msg, st)
		return
	}

	switch msg.Text {
	case btnCreate:
		b.startIntake(ctx, chatID)
	case btnMyTasks:
		b.showMyTasks(ctx, msg)
	case btnSearch:
		b.showSearchTasks(ctx, chatID)
	case btnProfile:
		b.showProfile(ctx, msg)
	case btnReminders:
		b.showReminders(ctx, msg)
	case btnSettings:
		b.showSettings(chatID)
	case btnExport:
		b.handleTasksExport(ctx, msg)
	default:
		m := tgbotapi.NewMessage(chatID, "Выберите действие из меню ниже")
		m.ReplyMarkup = mainReplyKeyboard()
		b.send(m)
	}
}

func telegramProfile(msg *tgbotapi.Message) users.Telegram {
	tg := users.Telegram{ChatID: msg.Chat.ID}
	if msg.From != nil {
		tg.Username = msg.From.UserName
		tg.FirstName = msg.From.FirstName
		tg.LastName = msg.From.LastName
	}
	return tg
}
