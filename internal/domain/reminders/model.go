package reminders

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("reminder not found")

// Reminder — разовое напоминание; отправкой занимается внешний планировщик,
// здесь только создание, выборка и флаг is_sent.
type Reminder struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	RemindAt    time.Time `json:"remind_at"`
	TaskID      string    `json:"task_id,omitempty"`
	IsSent      bool      `json:"is_sent"`
	CreatedAt   time.Time `json:"created_at"`
}

type Filter struct {
	UserID     string
	From       *time.Time
	To         *time.Time
	UnsentOnly bool
	Limit      int
}
