package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hugh/teamhub/internal/api/dto"
)

// TokenCookieName is the cookie the login endpoints set for browser clients.
const TokenCookieName = "token"

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, dto.ErrorResponse{Error: msg})
}
