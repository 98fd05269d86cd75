package tasks

import "time"

type Status string

const (
	StatusDraft      Status = "draft"
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusPublished  Status = "published"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	// StatusUrgent — «срочно нужен ещё человек»; задание остаётся в работе.
	StatusUrgent Status = "urgent"
)

type Type string

const (
	TypeLoading  Type = "loading"
	TypeMoving   Type = "moving"
	TypeCleaning Type = "cleaning"
	TypeDelivery Type = "delivery"
	TypeAssembly Type = "assembly"
	TypeOther    Type = "other"
)

type WorkerType string

const (
	WorkerLoader   WorkerType = "loader"
	WorkerDriver   WorkerType = "driver"
	WorkerRigger   WorkerType = "rigger"
	WorkerCleaner  WorkerType = "cleaner"
	WorkerHandyman WorkerType = "handyman"
)

const (
	MinDurationHours = 4
	MaxDurationHours = 24
)

type Requirement struct {
	WorkerType WorkerType `json:"worker_type"`
	Count      int        `json:"count"`
	HourlyRate *float64   `json:"hourly_rate,omitempty"`
}

type Task struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	Type            Type          `json:"task_type"`
	Requirements    []Requirement `json:"requirements"`
	Location        string        `json:"location"`
	MetroStation    string        `json:"metro_station,omitempty"`
	StartDatetime   time.Time     `json:"start_datetime"`
	DurationHours   int           `json:"duration_hours"`
	ClientPrice     float64       `json:"client_price"`
	WorkerPrice     *float64      `json:"worker_price,omitempty"`
	VerifiedOnly    bool          `json:"verified_only"`
	AdditionalInfo  string        `json:"additional_info,omitempty"`
	ModerationNotes string        `json:"moderation_notes,omitempty"`
	Status          Status        `json:"status"`
	ClientID        string        `json:"client_id"`
	AssignedWorkers []string      `json:"assigned_workers"`
	Applications    int           `json:"applications_count"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (t Task) Terminal() bool {
	switch t.Status {
	case StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// CreateRequest — входные данные создания задания (API и диалог бота).
type CreateRequest struct {
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Type           Type          `json:"task_type"`
	Requirements   []Requirement `json:"requirements"`
	Location       string        `json:"location"`
	MetroStation   string        `json:"metro_station,omitempty"`
	StartDatetime  time.Time     `json:"start_datetime"`
	DurationHours  int           `json:"duration_hours"`
	ClientPrice    float64       `json:"client_price"`
	WorkerPrice    *float64      `json:"worker_price,omitempty"`
	VerifiedOnly   bool          `json:"verified_only"`
	AdditionalInfo string        `json:"additional_info,omitempty"`
	ClientID       string        `json:"client_id"`
}

// Patch — частичное обновление: nil-поле не трогает запись.
type Patch struct {
	Title           *string  `json:"title"`
	Description     *string  `json:"description"`
	Status          *Status  `json:"status"`
	WorkerPrice     *float64 `json:"worker_price"`
	ModerationNotes *string  `json:"moderation_notes"`
}

func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.WorkerPrice == nil && p.ModerationNotes == nil
}

type Filter struct {
	Status   Status
	Type     Type
	ClientID string
	Limit    int
	Offset   int
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)
