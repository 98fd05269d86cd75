package bot

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vkorchagin/workers-bot/internal/domain/tasks"
)

const (
	btnMyTasks   = "📋 Мои задания"
	btnSearch    = "🔍 Поиск заданий"
	btnCreate    = "➕ Создать задание"
	btnProfile   = "👤 Профиль"
	btnReminders = "⏰ Напоминания"
	btnSettings  = "⚙️ Настройки"
	btnExport    = "📤 Выгрузка заданий"
)

func mainReplyKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.ReplyKeyboardMarkup{
		ResizeKeyboard: true,
		Keyboard: [][]tgbotapi.KeyboardButton{
			{tgbotapi.NewKeyboardButton(btnMyTasks), tgbotapi.NewKeyboardButton(btnSearch)},
			{tgbotapi.NewKeyboardButton(btnCreate), tgbotapi.NewKeyboardButton(btnProfile)},
			{tgbotapi.NewKeyboardButton(btnReminders), tgbotapi.NewKeyboardButton(btnSettings)},
		},
	}
}

func adminReplyKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.ReplyKeyboardMarkup{
		ResizeKeyboard: true,
		Keyboard: [][]tgbotapi.KeyboardButton{
			{tgbotapi.NewKeyboardButton(btnMyTasks), tgbotapi.NewKeyboardButton(btnSearch)},
			{tgbotapi.NewKeyboardButton(btnCreate), tgbotapi.NewKeyboardButton(btnProfile)},
			{tgbotapi.NewKeyboardButton(btnReminders), tgbotapi.NewKeyboardButton(btnExport)},
		},
	}
}

// durationKeyboard — выбор продолжительности: 4..24 часа, по 6 кнопок в ряду.
func durationKeyboard() tgbotapi.ReplyKeyboardMarkup {
	rows := [][]tgbotapi.KeyboardButton{}
	row := []tgbotapi.KeyboardButton{}
	for h := tasks.MinDurationHours; h <= tasks.MaxDurationHours; h++ {
		row = append(row, tgbotapi.NewKeyboardButton(strconv.Itoa(h)))
		if len(row) == 6 {
			rows = append(rows, row)
			row = []tgbotapi.KeyboardButton{}
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.ReplyKeyboardMarkup{ResizeKeyboard: true, Keyboard: rows}
}

func approvalKeyboard(taskID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Да, согласен", fmt.Sprintf("task:confirm:%s", taskID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Нет, отменить", fmt.Sprintf("task:decline:%s", taskID)),
		),
	)
}
