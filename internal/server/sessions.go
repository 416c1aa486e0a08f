package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/MDharunPrasad/photo-kiosk/internal/bundles"
	"github.com/MDharunPrasad/photo-kiosk/internal/models"
	"github.com/MDharunPrasad/photo-kiosk/internal/store"
)

type SessionHandler struct {
	store   *store.SessionStore
	catalog *bundles.Catalog
}

func NewSessionHandler(st *store.SessionStore, catalog *bundles.Catalog) *SessionHandler {
	return &SessionHandler{store: st, catalog: catalog}
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name"`
		Location   string `json:"location"`
		SessionKey string `json:"sessionKey"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	s := h.store.CreateSession(req.Name, req.Location, req.SessionKey)
	writeJSON(w, http.StatusCreated, s)
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	var sessions []models.Session
	switch r.URL.Query().Get("filter") {
	case "deleted":
		sessions = h.store.DeletedSessions()
	case "operator":
		sessions = h.store.OperatorSessions()
	case "all":
		sessions = h.store.Sessions()
	default:
		sessions = h.store.ActiveSessions()
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *SessionHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	h.store.DeleteAllSessions()
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store.CurrentSession()
	if !ok {
		writeError(w, http.StatusNotFound, "no current session")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *SessionHandler) SetCurrent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if !h.store.SetCurrentSession(req.ID) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	s, _ := h.store.CurrentSession()
	writeJSON(w, http.StatusOK, s)
}

func (h *SessionHandler) ClearCurrent(w http.ResponseWriter, r *http.Request) {
	h.store.ClearCurrentSession()
	w.WriteHeader(http.StatusNoContent)
}

// SelectBundle - attaches a catalog bundle to the current session. The
// request may name a catalog entry or carry a full custom bundle.
func (h *SessionHandler) SelectBundle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string              `json:"name"`
		Count  *models.BundleCount `json:"count"`
		Price  *float64            `json:"price"`
		Custom bool                `json:"custom"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	var b models.Bundle
	if req.Custom {
		if req.Count == nil || req.Price == nil {
			writeError(w, http.StatusBadRequest, "custom bundle requires count and price")
			return
		}
		b = models.Bundle{Name: req.Name, Count: *req.Count, Price: *req.Price}
	} else {
		found, ok := h.catalog.Find(req.Name)
		if !ok {
			writeError(w, http.StatusNotFound, "unknown bundle")
			return
		}
		b = found
	}

	if !h.store.SelectBundle(b) {
		writeError(w, http.StatusConflict, "no current session")
		return
	}
	s, _ := h.store.CurrentSession()
	writeJSON(w, http.StatusOK, s)
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !h.store.DeleteSession(id) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) Recover(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !h.store.RecoverSession(id) {
		writeError(w, http.StatusNotFound, "no deleted session with that id")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (h *SessionHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req struct {
		Status models.Status `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	ok, err := h.store.SetSessionStatus(id, req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": models.NormalizeStatus(req.Status)})
}

func (h *SessionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !h.store.CompleteSession(id) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": models.StatusCompleted})
}

func (h *SessionHandler) DeleteByDateRange(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Start time.Time `json:"start"`
		End   time.Time `json:"end"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.End.Before(req.Start) {
		writeError(w, http.StatusBadRequest, "end before start")
		return
	}
	removed := h.store.DeleteSessionsByDateRange(req.Start, req.End)
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func (h *SessionHandler) DeleteByMonth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Month int `json:"month"`
		Year  int `json:"year"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Month < 0 || req.Month > 11 {
		writeError(w, http.StatusBadRequest, "month must be 0-11")
		return
	}
	removed := h.store.DeleteSessionsByMonth(req.Month, req.Year)
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func (h *SessionHandler) AutoDelete(w http.ResponseWriter, r *http.Request) {
	removed := h.store.AutoDeleteOldSessions()
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func (h *SessionHandler) PurgeDeleted(w http.ResponseWriter, r *http.Request) {
	removed := h.store.ClearDeletedSessions()
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func (h *SessionHandler) Bundles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Bundles())
}
