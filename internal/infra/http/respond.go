package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vkorchagin/workers-bot/internal/domain/reminders"
	"github.com/vkorchagin/workers-bot/internal/domain/tasks"
	"github.com/vkorchagin/workers-bot/internal/domain/users"
)

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, code, detail string) {
	respondJSON(w, status, errorResponse{Error: code, Detail: detail})
}

// respondDomainError — общее отображение ошибок ядра на HTTP-статусы:
// не найдено — 404, невалидные данные и запрещённый переход — 422,
// остальное (недоступное хранилище на пути записи) — 500.
func (h *Handler) respondDomainError(w http.ResponseWriter, err error) {
	var ve *tasks.ValidationError
	var te *tasks.TransitionError
	switch {
	case errors.Is(err, tasks.ErrNotFound), errors.Is(err, users.ErrNotFound),
		errors.Is(err, reminders.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.As(err, &ve):
		respondError(w, http.StatusUnprocessableEntity, "validation_failed", ve.Error())
	case errors.As(err, &te):
		respondError(w, http.StatusUnprocessableEntity, "invalid_transition", te.Error())
	default:
		h.Log.Error("request failed", "err", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "storage unavailable")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
