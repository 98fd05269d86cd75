package users

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("user not found")

type Role string

const (
	RoleClient    Role = "client"
	RoleWorker    Role = "worker"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
)

type WorkerProfile struct {
	WorkerTypes    []string          `json:"worker_types"`
	Rating         float64           `json:"rating"`
	CompletedTasks int               `json:"completed_tasks"`
	CancelledTasks int               `json:"cancelled_tasks"`
	OnVacation     bool              `json:"on_vacation"`
	VacationStart  *time.Time        `json:"vacation_start,omitempty"`
	VacationEnd    *time.Time        `json:"vacation_end,omitempty"`
	MetroStations  []string          `json:"metro_stations"`
	WorkSchedule   map[string]string `json:"work_schedule"`
	// SpecialSkills — например {"has_belts": true} у такелажников.
	SpecialSkills map[string]bool `json:"special_skills"`
}

func NewWorkerProfile() *WorkerProfile {
	return &WorkerProfile{
		WorkerTypes:   []string{},
		Rating:        5.0,
		MetroStations: []string{},
		WorkSchedule:  map[string]string{},
		SpecialSkills: map[string]bool{},
	}
}

type ClientProfile struct {
	CompanyName string  `json:"company_name,omitempty"`
	TotalOrders int     `json:"total_orders"`
	TotalSpent  float64 `json:"total_spent"`
	Rating      float64 `json:"rating"`
}

func NewClientProfile() *ClientProfile {
	return &ClientProfile{Rating: 5.0}
}

type User struct {
	ID            string         `json:"id"`
	TgChatID      int64          `json:"tg_chat_id"`
	Username      string         `json:"username,omitempty"`
	FirstName     string         `json:"first_name,omitempty"`
	LastName      string         `json:"last_name,omitempty"`
	Phone         string         `json:"phone,omitempty"`
	Role          Role           `json:"role"`
	IsActive      bool           `json:"is_active"`
	IsVerified    bool           `json:"is_verified"`
	WorkerProfile *WorkerProfile `json:"worker_profile,omitempty"`
	ClientProfile *ClientProfile `json:"client_profile,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Telegram — профиль из апдейта, источник upsert-а при каждом контакте.
type Telegram struct {
	ChatID    int64
	Username  string
	FirstName string
	LastName  string
}

type Filter struct {
	Role   Role
	Limit  int
	Offset int
}
