package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vkorchagin/workers-bot/internal/domain/reminders"
	"github.com/vkorchagin/workers-bot/internal/domain/tasks"
	"github.com/vkorchagin/workers-bot/internal/domain/users"
)

func (b *Bot) showProfile(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	u, err := b.users.GetByChatID(ctx, chatID)
	if err != nil {
		b.send(tgbotapi.NewMessage(chatID, "❌ Профиль не найден. Наберите /start"))
		return
	}

	var sb strings.Builder
	sb.WriteString("👤 Профиль\n\n")
	sb.WriteString(fmt.Sprintf("Имя: %s %s\n", u.FirstName, u.LastName))
	login := u.Username
	if login == "" {
		login = "—"
	}
	sb.WriteString(fmt.Sprintf("Логин: @%s\n", login))
	sb.WriteString(fmt.Sprintf("Роль: %s\n", roleRU(string(u.Role))))
	if u.IsVerified {
		sb.WriteString("Статус: Верифицирован\n")
	} else {
		sb.WriteString("Статус: Не верифицирован\n")
	}
	if u.Role == users.RoleWorker && u.WorkerProfile != nil {
		wp := u.WorkerProfile
		sb.WriteString(fmt.Sprintf("Рейтинг: %.1f⭐\n", wp.Rating))
		sb.WriteString(fmt.Sprintf("Выполнено: %d\n", wp.CompletedTasks))
		sb.WriteString(fmt.Sprintf("Отменено: %d\n", wp.CancelledTasks))
	}
	b.send(tgbotapi.NewMessage(chatID, sb.String()))
}

func (b *Bot) showMyTasks(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	u, err := b.users.GetByChatID(ctx, chatID)
	if err != nil {
		b.send(tgbotapi.NewMessage(chatID, "❌ Пользователь не найден. Наберите /start"))
		return
	}

	var list []tasks.Task
	if u.Role == users.RoleClient {
		list, err = b.tasks.List(ctx, tasks.Filter{ClientID: u.ID, Limit: 10})
	} else {
		// Исполнителю показываем задания, где он в составе бригады.
		var all []tasks.Task
		all, err = b.tasks.List(ctx, tasks.Filter{Limit: tasks.MaxListLimit})
		for _, t := range all {
			for _, w := range t.AssignedWorkers {
				if w == u.ID {
					list = append(list, t)
					break
				}
			}
			if len(list) == 10 {
				break
			}
		}
	}
	if err != nil {
		b.log.Error("my tasks: list failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "❌ Не удалось получить задания"))
		return
	}
	if len(list) == 0 {
		b.send(tgbotapi.NewMessage(chatID, "У вас пока нет заданий"))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 Мои задания (последние %d)\n\n", len(list)))
	for _, t := range list {
		sb.WriteString(fmt.Sprintf("%s %s\n", statusEmoji(t.Status), t.Title))
		sb.WriteString(fmt.Sprintf("📍 %s\n", t.Location))
		sb.WriteString(fmt.Sprintf("💰 %.0f ₽\n", t.ClientPrice))
		sb.WriteString(fmt.Sprintf("📅 %s\n\n", t.StartDatetime.Format("02.01.2006 15:04")))
	}
	b.send(tgbotapi.NewMessage(chatID, sb.String()))
}

func (b *Bot) showSearchTasks(ctx context.Context, chatID int64) {
	list, err := b.tasks.List(ctx, tasks.Filter{Status: tasks.StatusPublished, Limit: 10})
	if err != nil {
		b.log.Error("search tasks: list failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "❌ Не удалось получить задания"))
		return
	}
	if len(list) == 0 {
		b.send(tgbotapi.NewMessage(chatID, "🔍 Поиск заданий\n\nДоступных заданий пока нет."))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔍 Доступные задания (%d)\n\n", len(list)))
	for _, t := range list {
		var req []string
		for _, r := range t.Requirements {
			req = append(req, fmt.Sprintf("%d %s", r.Count, workerTypeRU(r.WorkerType)))
		}
		price := t.ClientPrice
		if t.WorkerPrice != nil {
			price = *t.WorkerPrice
		}
		sb.WriteString(fmt.Sprintf("📋 %s\n", t.Title))
		if len(req) > 0 {
			sb.WriteString(fmt.Sprintf("👥 Нужно: %s\n", strings.Join(req, ", ")))
		}
		sb.WriteString(fmt.Sprintf("📍 %s\n", t.Location))
		sb.WriteString(fmt.Sprintf("💰 %.0f ₽\n", price))
		sb.WriteString(fmt.Sprintf("📅 %s\n\n", t.StartDatetime.Format("02.01.2006 15:04")))
	}
	b.send(tgbotapi.NewMessage(chatID, sb.String()))
}

func (b *Bot) showReminders(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	u, err := b.users.GetByChatID(ctx, chatID)
	if err != nil {
		b.send(tgbotapi.NewMessage(chatID, "❌ Пользователь не найден. Наберите /start"))
		return
	}

	now := time.Now().UTC()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	tomorrowStart := todayStart.AddDate(0, 0, 1)
	tomorrowEnd := tomorrowStart.AddDate(0, 0, 1)

	today, err := b.reminders.List(ctx, reminders.Filter{
		UserID: u.ID, From: &todayStart, To: &tomorrowStart, UnsentOnly: true,
	})
	if err != nil {
		b.log.Error("reminders: list failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "❌ Не удалось получить напоминания"))
		return
	}
	tomorrow, err := b.reminders.List(ctx, reminders.Filter{
		UserID: u.ID, From: &tomorrowStart, To: &tomorrowEnd, UnsentOnly: true,
	})
	if err != nil {
		b.log.Error("reminders: list failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "❌ Не удалось получить напоминания"))
		return
	}

	var sb strings.Builder
	sb.WriteString("⏰ Напоминания\n\n")
	if len(today) > 0 {
		sb.WriteString("📅 Сегодня:\n")
		for _, r := range today {
			sb.WriteString(fmt.Sprintf("• %s - %s\n", r.RemindAt.Format("15:04"), r.Title))
		}
		sb.WriteString("\n")
	}
	if len(tomorrow) > 0 {
		sb.WriteString("📅 Завтра:\n")
		for _, r := range tomorrow {
			sb.WriteString(fmt.Sprintf("• %s - %s\n", r.RemindAt.Format("15:04"), r.Title))
		}
		sb.WriteString("\n")
	}
	if len(today) == 0 && len(tomorrow) == 0 {
		sb.WriteString("У вас нет активных напоминаний.\n")
	}
	b.send(tgbotapi.NewMessage(chatID, sb.String()))
}

func (b *Bot) showSettings(chatID int64) {
	b.send(tgbotapi.NewMessage(chatID,
		"⚙️ Настройки\n\n🔔 Уведомления: ✅ Включены\n🌍 Язык: Русский\n⏰ Часовой пояс: MSK (UTC+3)"))
}
