package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-otp-signup/internal/domain"
	"github.com/go-otp-signup/internal/pkg/logx"
	"github.com/go-otp-signup/internal/pkg/validate"
)

const msgInternal = "internal server error"

// clientMessages holds the text shown for each domain error. Code lookup
// failures share one message so callers cannot tell a missing entry from a
// wrong code.
var clientMessages = []struct {
	err error
	msg string
}{
	{domain.ErrAlreadyRegistered, "user already exists"},
	{domain.ErrOTPNotFound, "invalid or expired OTP"},
	{domain.ErrInvalidCode, "invalid or expired OTP"},
	{domain.ErrInvalidCredentials, "invalid credentials"},
	{domain.ErrDeliveryFailed, "failed to send OTP, please try again"},
	{domain.ErrForbidden, "account disabled"},
	{domain.ErrUnauthorized, "unauthorized"},
	{domain.ErrNotFound, "not found"},
	{domain.ErrConflict, "conflict"},
}

func clientMessage(err error) (string, bool) {
	for _, m := range clientMessages {
		if errors.Is(err, m.err) {
			return m.msg, true
		}
	}
	if errors.Is(err, domain.ErrBadRequest) {
		return err.Error(), true
	}
	return "", false
}

// decode reads the JSON body into dst and validates it.
func decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", domain.ErrBadRequest)
	}
	return validate.Struct(dst)
}

// respondAuthError answers every known failure of the public auth endpoints
// with 400. Anything else is logged and answered with 500.
func respondAuthError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *validate.Error
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, MessageEnvelope{Message: "validation failed", Errors: ve.Fields})
		return
	}
	if msg, ok := clientMessage(err); ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	logx.FromContext(r.Context()).Error("request failed", "err", err)
	writeError(w, http.StatusInternalServerError, msgInternal)
}

// respondError maps domain errors onto their natural HTTP status.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *validate.Error
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, MessageEnvelope{Message: "validation failed", Errors: ve.Fields})
		return
	}
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrAlreadyRegistered), errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrBadRequest):
		status = http.StatusBadRequest
	}
	msg, ok := clientMessage(err)
	if status == http.StatusInternalServerError || !ok {
		logx.FromContext(r.Context()).Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	writeError(w, status, msg)
}
