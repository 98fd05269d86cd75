package users

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Repo interface {
	Insert(ctx context.Context, u *User) error
	Get(ctx context.Context, id string) (*User, error)
	GetByChatID(ctx context.Context, chatID int64) (*User, error)
	Update(ctx context.Context, id string, apply func(*User) error) (*User, error)
	List(ctx context.Context, f Filter) ([]User, error)
	Count(ctx context.Context, role Role) (int64, error)
}

// EnsureFromTelegram создаёт пользователя при первом контакте (роль по
// умолчанию: исполнитель) и обновляет имя/логин при каждом следующем.
func EnsureFromTelegram(ctx context.Context, r Repo, tg Telegram) (*User, error) {
	existing, err := r.GetByChatID(ctx, tg.ChatID)
	if err == nil {
		return r.Update(ctx, existing.ID, func(u *User) error {
			u.Username = tg.Username
			u.FirstName = tg.FirstName
			u.LastName = tg.LastName
			return nil
		})
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	u := &User{
		ID:            uuid.NewString(),
		TgChatID:      tg.ChatID,
		Username:      tg.Username,
		FirstName:     tg.FirstName,
		LastName:      tg.LastName,
		Role:          RoleWorker,
		IsActive:      true,
		WorkerProfile: NewWorkerProfile(),
		CreatedAt:     time.Now().UTC(),
	}
	if err := r.Insert(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
