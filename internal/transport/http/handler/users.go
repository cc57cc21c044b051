package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-otp-signup/internal/application/account"
	"github.com/go-otp-signup/internal/domain"
)

// UserHandler handles the admin account endpoints.
type UserHandler struct {
	svc account.Service
}

func NewUserHandler(svc account.Service) *UserHandler { return &UserHandler{svc: svc} }

// List returns all accounts, or only those with ?role=.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.List(r.Context(), r.URL.Query().Get("role"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAccountRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	a, err := h.svc.Create(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), accountID); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteEnvelope{Success: true, ID: accountID})
}
