package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// Signup and login failures. ErrOTPNotFound and ErrInvalidCode are reported to
// clients with one shared message, as are the two causes of ErrInvalidCredentials.
var (
	ErrValidation         = errors.New("validation failed")
	ErrAlreadyRegistered  = errors.New("user already exists")
	ErrOTPNotFound        = errors.New("otp expired or not found")
	ErrInvalidCode        = errors.New("invalid otp")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDeliveryFailed     = errors.New("otp delivery failed")
)
