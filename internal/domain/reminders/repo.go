package reminders

import "context"

type Repo interface {
	Insert(ctx context.Context, rem *Reminder) error
	Get(ctx context.Context, id string) (*Reminder, error)
	// List возвращает напоминания по фильтру, отсортированные по remind_at
	// по возрастанию.
	List(ctx context.Context, f Filter) ([]Reminder, error)
	MarkSent(ctx context.Context, id string) error
}
