package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

// ResultsHandler serves the results screen of finished sessions.
type ResultsHandler struct {
	service *app.QuizService
	log     logrus.FieldLogger
}

func NewResultsHandler(service *app.QuizService, log logrus.FieldLogger) *ResultsHandler {
	return &ResultsHandler{service: service, log: log}
}

func (h *ResultsHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	review, err := h.service.Review(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, sessionID, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(review)
}

// Delete clears a stored result so the next quiz starts fresh.
func (h *ResultsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.service.Restart(r.Context(), sessionID); err != nil {
		h.writeError(w, sessionID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ResultsHandler) writeError(w http.ResponseWriter, sessionID string, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrResultNotFound) {
		status = http.StatusNotFound
	} else {
		h.log.WithError(err).WithField("session", sessionID).Error("results request failed")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
