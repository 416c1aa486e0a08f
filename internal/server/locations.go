package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MDharunPrasad/photo-kiosk/internal/store"
)

type LocationHandler struct {
	store *store.SessionStore
}

func NewLocationHandler(st *store.SessionStore) *LocationHandler {
	return &LocationHandler{store: st}
}

func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Locations())
}

func (h *LocationHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	loc := h.store.AddLocation(req.Name)
	writeJSON(w, http.StatusCreated, loc)
}

func (h *LocationHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !h.store.ToggleLocation(id) {
		writeError(w, http.StatusNotFound, "location not found")
		return
	}
	writeJSON(w, http.StatusOK, h.store.Locations())
}
