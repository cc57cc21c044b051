package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-otp-signup/internal/domain"
	"github.com/go-otp-signup/internal/pkg/validate"
)

// MessageEnvelope is the generic response wrapper. Errors lists per-field
// validation failures.
type MessageEnvelope struct {
	Message string                `json:"message"`
	Errors  []validate.FieldError `json:"errors,omitempty"`
}

// AuthEnvelope wraps signup verification and login responses.
type AuthEnvelope struct {
	Token string          `json:"token"`
	User  *domain.Account `json:"user"`
}

// UserEnvelope wraps the current-account response.
type UserEnvelope struct {
	User *domain.Account `json:"user"`
}

// DeleteEnvelope acknowledges a deletion.
type DeleteEnvelope struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Message: msg})
}
