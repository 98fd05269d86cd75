package dialog

import "context"

// Repo хранит состояние диалога по chat_id. Отсутствие записи — это
// главное меню с пустым payload, а не ошибка.
type Repo interface {
	Get(ctx context.Context, chatID int64) (*Item, error)
	Set(ctx context.Context, chatID int64, state State, payload Payload) error
	Reset(ctx context.Context, chatID int64) error
}
