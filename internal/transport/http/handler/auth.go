package handler

import (
	"net/http"

	"github.com/go-otp-signup/internal/application/session"
	"github.com/go-otp-signup/internal/application/signup"
	"github.com/go-otp-signup/internal/transport/http/middleware"
)

// AuthHandler handles signup, login and current-account endpoints.
type AuthHandler struct {
	signup  signup.Service
	session session.Service
}

func NewAuthHandler(signupSvc signup.Service, sessionSvc session.Service) *AuthHandler {
	return &AuthHandler{signup: signupSvc, session: sessionSvc}
}

func (h *AuthHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req signup.RequestCodeRequest
	if err := decode(r, &req); err != nil {
		respondAuthError(w, r, err)
		return
	}
	if err := h.signup.RequestCode(r.Context(), req); err != nil {
		respondAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "OTP sent successfully"})
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req signup.VerifyRequest
	if err := decode(r, &req); err != nil {
		respondAuthError(w, r, err)
		return
	}
	res, err := h.signup.VerifyAndCreate(r.Context(), req)
	if err != nil {
		respondAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, AuthEnvelope{Token: res.Token, User: res.Account})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req session.LoginRequest
	if err := decode(r, &req); err != nil {
		respondAuthError(w, r, err)
		return
	}
	res, err := h.session.Login(r.Context(), req)
	if err != nil {
		respondAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{Token: res.Token, User: res.Account})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	a, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, UserEnvelope{User: a})
}
