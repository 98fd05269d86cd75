package bot

import (
	"bytes"
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xuri/excelize/v2"

	"github.com/vkorchagin/workers-bot/internal/domain/tasks"
	"github.com/vkorchagin/workers-bot/internal/domain/users"
)

// handleTasksExport — выгрузка последних заданий в Excel для админа.
func (b *Bot) handleTasksExport(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	u, err := b.users.GetByChatID(ctx, chatID)
	if err != nil || (u.Role != users.RoleAdmin && chatID != b.adminChat) {
		// для остальных кнопки просто нет — молча игнорируем
		return
	}

	list, err := b.tasks.List(ctx, tasks.Filter{Limit: tasks.MaxListLimit})
	if err != nil {
		b.send(tgbotapi.NewMessage(chatID, "❌ Не удалось получить задания для выгрузки"))
		return
	}
	if len(list) == 0 {
		b.send(tgbotapi.NewMessage(chatID, "Заданий пока нет — выгружать нечего."))
		return
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Задания"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		b.log.Error("export: create sheet failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "❌ Ошибка формирования файла"))
		return
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{"ID", "Название", "Статус", "Категория", "Адрес",
		"Начало", "Часы", "Цена клиента", "Цена исполнителям", "Заказчик", "Создано"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for rowIdx, t := range list {
		row := rowIdx + 2
		workerPrice := ""
		if t.WorkerPrice != nil {
			workerPrice = fmt.Sprintf("%.0f", *t.WorkerPrice)
		}
		values := []any{
			t.ID, t.Title, string(t.Status), string(t.Type), t.Location,
			t.StartDatetime.Format("02.01.2006 15:04"), t.DurationHours,
			t.ClientPrice, workerPrice, t.ClientID,
			t.CreatedAt.Format("02.01.2006 15:04"),
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		b.log.Error("export: write xlsx failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "❌ Ошибка формирования файла"))
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("tasks_%s.xlsx", time.Now().Format("20060102")),
		Bytes: buf.Bytes(),
	})
	doc.Caption = fmt.Sprintf("Выгрузка заданий: %d шт.", len(list))
	b.send(doc)
}
