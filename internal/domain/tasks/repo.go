package tasks

import "context"

// Repo — хранилище заданий. Две реализации: Postgres (PGRepo) и
// JSON-файл (FileRepo). Update применяет apply к актуальной версии записи
// атомарно на уровне одной записи: параллельные патчи разных полей не
// теряют друг друга.
type Repo interface {
	Insert(ctx context.Context, t *Task) error
	Get(ctx context.Context, id string) (*Task, error)
	Update(ctx context.Context, id string, apply func(*Task) error) (*Task, error)
	List(ctx context.Context, f Filter) ([]Task, error)
	CountByStatus(ctx context.Context) (map[Status]int64, error)
	SumClientPrice(ctx context.Context, status Status) (float64, error)
}
