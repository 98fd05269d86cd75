package bot

import (
	"context"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vkorchagin/workers-bot/internal/dialog"
	"github.com/vkorchagin/workers-bot/internal/domain/tasks"
	"github.com/vkorchagin/workers-bot/internal/domain/users"
)

const intakeDatetimeLayout = "2006-01-02 15:04"

// startIntake начинает (или перезапускает) диалог создания задания.
// Частично заполненный черновик при повторном входе теряется.
func (b *Bot) startIntake(ctx context.Context, chatID int64) {
	_ = b.states.Set(ctx, chatID, dialog.StateTaskTitle, dialog.Payload{})
	b.send(tgbotapi.NewMessage(chatID, "Введите название задания:"))
}

// handleIntakeStep обрабатывает один шаг диалога: валидный ввод двигает
// диалог дальше, невалидный оставляет на том же шаге с повторным вопросом.
func (b *Bot) handleIntakeStep(ctx context.Context, msg *tgbotapi.Message, st *dialog.Item) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)
	p := st.Payload

	switch st.State {
	case dialog.StateTaskTitle:
		if text == "" {
			b.send(tgbotapi.NewMessage(chatID, "Название не может быть пустым. Введите ещё раз."))
			return
		}
		p["title"] = text
		_ = b.states.Set(ctx, chatID, dialog.StateTaskDescription, p)
		b.send(tgbotapi.NewMessage(chatID, "Опишите задание:"))

	case dialog.StateTaskDescription:
		if text == "" {
			b.send(tgbotapi.NewMessage(chatID, "Описание не может быть пустым. Введите ещё раз."))
			return
		}
		p["description"] = text
		_ = b.states.Set(ctx, chatID, dialog.StateTaskLocation, p)
		b.send(tgbotapi.NewMessage(chatID, "Укажите адрес выполнения:"))

	case dialog.StateTaskLocation:
		if text == "" {
			b.send(tgbotapi.NewMessage(chatID, "Адрес не может быть пустым. Введите ещё раз."))
			return
		}
		p["location"] = text
		_ = b.states.Set(ctx, chatID, dialog.StateTaskDatetime, p)
		b.send(tgbotapi.NewMessage(chatID, "Введите дату и время начала (формат ГГГГ-ММ-ДД ЧЧ:ММ):"))

	case dialog.StateTaskDatetime:
		dt, err := time.Parse(intakeDatetimeLayout, text)
		if err != nil {
			b.send(tgbotapi.NewMessage(chatID, "Неверный формат. Пример: 2025-03-01 09:00"))
			return
		}
		p["start_datetime"] = dt.UTC().Format(time.RFC3339)
		_ = b.states.Set(ctx, chatID, dialog.StateTaskDuration, p)
		m := tgbotapi.NewMessage(chatID, "Выберите продолжительность (часы):")
		m.ReplyMarkup = durationKeyboard()
		b.send(m)

	case dialog.StateTaskDuration:
		hours, err := strconv.Atoi(text)
		if err != nil || hours < tasks.MinDurationHours || hours > tasks.MaxDurationHours {
			b.send(tgbotapi.NewMessage(chatID, "Пожалуйста, выберите число от 4 до 24"))
			return
		}
		p["duration_hours"] = hours
		_ = b.states.Set(ctx, chatID, dialog.StateTaskPrice, p)
		m := tgbotapi.NewMessage(chatID, "Укажите бюджет (₽):")
		m.ReplyMarkup = mainReplyKeyboard()
		b.send(m)

	case dialog.StateTaskPrice:
		price, err := strconv.ParseFloat(strings.ReplaceAll(text, " ", ""), 64)
		if err != nil || price <= 0 {
			b.send(tgbotapi.NewMessage(chatID, "Введите положительное число, например 5000"))
			return
		}
		p["client_price"] = price
		b.submitIntake(ctx, msg, p)
	}
}

// submitIntake собирает черновик в запрос создания и отдаёт его менеджеру
// заданий. Черновик сбрасывается в любом исходе — повторной отправки нет.
func (b *Bot) submitIntake(ctx context.Context, msg *tgbotapi.Message, p dialog.Payload) {
	chatID := msg.Chat.ID
	defer func() { _ = b.states.Reset(ctx, chatID) }()

	u, err := users.EnsureFromTelegram(ctx, b.users, telegramProfile(msg))
	if err != nil {
		b.log.Error("intake: ensure user failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "❌ Ошибка при создании задания"))
		return
	}

	title, _ := dialog.GetString(p, "title")
	description, _ := dialog.GetString(p, "description")
	location, _ := dialog.GetString(p, "location")
	startRaw, _ := dialog.GetString(p, "start_datetime")
	start, err := time.Parse(time.RFC3339, startRaw)
	if err != nil {
		b.log.Error("intake: bad start_datetime in draft", "value", startRaw)
		b.send(tgbotapi.NewMessage(chatID, "❌ Ошибка при создании задания"))
		return
	}
	hours, _ := dialog.GetInt(p, "duration_hours")
	price, _ := dialog.GetFloat(p, "client_price")

	// В упрощённом диалоге категория и состав бригады фиксированы.
	req := tasks.CreateRequest{
		Title:         title,
		Description:   description,
		Type:          tasks.TypeLoading,
		Requirements:  []tasks.Requirement{{WorkerType: tasks.WorkerLoader, Count: 1}},
		Location:      location,
		StartDatetime: start,
		DurationHours: hours,
		ClientPrice:   price,
		ClientID:      u.ID,
	}

	if _, err := b.tasks.Create(ctx, req); err != nil {
		b.log.Error("intake: create task failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "❌ Ошибка при создании задания"))
		return
	}
	if b.metrics != nil {
		b.metrics.IntakeCompleted.Inc()
	}
	b.send(tgbotapi.NewMessage(chatID, "✅ Задание создано и отправлено на модерацию!"))
}
