package tasks

// transitions — таблица допустимых смен статуса. Любая смена, которой здесь
// нет, отклоняется с TransitionError (в том числе через PATCH /tasks/{id}).
// draft оставлен достижимым источником, хотя путь создания всегда даёт
// pending. urgent входится только из published/in_progress — ручной флаг
// «нужен ещё человек».
var transitions = map[Status][]Status{
	StatusDraft:      {StatusPending},
	StatusPending:    {StatusApproved, StatusCancelled},
	StatusApproved:   {StatusPublished, StatusCancelled},
	StatusPublished:  {StatusInProgress, StatusUrgent, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusUrgent, StatusCancelled},
	StatusUrgent:     {StatusInProgress, StatusCompleted, StatusCancelled},
	// completed и cancelled — терминальные.
}

func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func ValidStatus(s Status) bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusPublished,
		StatusInProgress, StatusCompleted, StatusCancelled, StatusUrgent:
		return true
	}
	return false
}
