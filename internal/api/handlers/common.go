package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hugh/teamhub/internal/api/dto"
	"github.com/hugh/teamhub/internal/teams"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, dto.ErrorResponse{Error: msg})
}

func writeData(w http.ResponseWriter, status int, data interface{}, msg string) {
	writeJSON(w, status, dto.DataResponse{Data: data, Message: msg})
}

func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: msg})
}

func writeValidation(w http.ResponseWriter, details map[string]string) {
	writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: details})
}

// writeServiceError renders an error returned by one of the domain services.
// Errors without a kind are logged and hidden behind a generic 500.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, teams.ErrForbidden),
		errors.Is(err, teams.ErrQuotaExceeded),
		errors.Is(err, teams.ErrProtectedAccount):
		status = http.StatusForbidden
	case errors.Is(err, teams.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, teams.ErrConflict),
		errors.Is(err, teams.ErrInvalidOperation),
		errors.Is(err, teams.ErrExpired):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
		writeError(w, status, "Internal server error")
		return
	}

	msg := teams.Message(err)
	if msg == "" {
		msg = http.StatusText(status)
	}
	writeError(w, status, msg)
}

// decodeJSON reads the request body into v. It reports false after writing
// a 400 when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// urlID parses a public id route parameter. Malformed ids read as not found
// so they are indistinguishable from unknown ones.
func urlID(w http.ResponseWriter, r *http.Request, param, notFound string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeError(w, http.StatusNotFound, notFound)
		return uuid.Nil, false
	}
	return id, true
}
