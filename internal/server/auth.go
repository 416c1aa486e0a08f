package server

import (
	"net/http"

	"github.com/MDharunPrasad/photo-kiosk/internal/models"
	"github.com/MDharunPrasad/photo-kiosk/internal/store"
)

type AuthHandler struct {
	store *store.SessionStore
}

func NewAuthHandler(st *store.SessionStore) *AuthHandler {
	return &AuthHandler{store: st}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string      `json:"name"`
		Email    string      `json:"email"`
		Password string      `json:"password"`
		Role     models.Role `json:"role"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	// no failure detail beyond the conflict itself
	if !h.store.Register(req.Name, req.Email, req.Password, req.Role) {
		writeError(w, http.StatusConflict, "registration failed")
		return
	}

	user, _ := h.store.CurrentUser()
	writeJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email      string      `json:"email"`
		Password   string      `json:"password"`
		Role       models.Role `json:"role"`
		ForceLogin bool        `json:"forceLogin"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if !h.store.Login(req.Email, req.Password, req.Role, req.ForceLogin) {
		writeError(w, http.StatusUnauthorized, "login failed")
		return
	}

	user, _ := h.store.CurrentUser()
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.store.Logout()
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := h.store.CurrentUser()
	if !ok {
		writeError(w, http.StatusNotFound, "not logged in")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
