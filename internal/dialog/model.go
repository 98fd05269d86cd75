package dialog

type State string

const (
	// Главное меню — активного диалога нет.
	StateMainMenu State = "main_menu"

	// Создание задания: строгая цепочка шагов, на каждом ровно один ввод.
	StateTaskTitle       State = "task_title"
	StateTaskDescription State = "task_description"
	StateTaskLocation    State = "task_location"
	StateTaskDatetime    State = "task_datetime"
	StateTaskDuration    State = "task_duration"
	StateTaskPrice       State = "task_price"
)

// IntakeState — шаг диалога создания задания.
func IntakeState(s State) bool {
	switch s {
	case StateTaskTitle, StateTaskDescription, StateTaskLocation,
		StateTaskDatetime, StateTaskDuration, StateTaskPrice:
		return true
	}
	return false
}

type Payload map[string]any

type Item struct {
	ChatID  int64
	State   State
	Payload Payload
}

// GetString — безопасное чтение строки из payload.
func GetString(p Payload, key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetInt — payload ходит через JSON, числа приходят как float64.
func GetInt(p Payload, key string) (int, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

func GetFloat(p Payload, key string) (float64, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	n, ok := v.(float64)
	return n, ok
}
