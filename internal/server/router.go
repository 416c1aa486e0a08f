package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MDharunPrasad/photo-kiosk/internal/bundles"
	"github.com/MDharunPrasad/photo-kiosk/internal/config"
	"github.com/MDharunPrasad/photo-kiosk/internal/store"
)

// Deps - everything the HTTP surface consumes. The router owns none of
// it; all state lives behind the store.
type Deps struct {
	Store   *store.SessionStore
	Catalog *bundles.Catalog
	Upload  config.UploadConfig
	Hub     *Hub
}

func NewRouter(deps Deps) *mux.Router {
	r := mux.NewRouter()

	authHandler := NewAuthHandler(deps.Store)
	sessionHandler := NewSessionHandler(deps.Store, deps.Catalog)
	photoHandler := NewPhotoHandler(deps.Store, deps.Catalog, deps.Upload)
	locationHandler := NewLocationHandler(deps.Store)
	storageHandler := NewStorageHandler(deps.Store)

	r.HandleFunc("/api/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/api/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/logout", authHandler.Logout).Methods("POST")
	r.HandleFunc("/api/me", authHandler.Me).Methods("GET")

	r.HandleFunc("/api/sessions", sessionHandler.Create).Methods("POST")
	r.HandleFunc("/api/sessions", sessionHandler.List).Methods("GET")
	r.HandleFunc("/api/sessions", sessionHandler.DeleteAll).Methods("DELETE")
	r.HandleFunc("/api/sessions/current", sessionHandler.Current).Methods("GET")
	r.HandleFunc("/api/sessions/current", sessionHandler.SetCurrent).Methods("PUT")
	r.HandleFunc("/api/sessions/current", sessionHandler.ClearCurrent).Methods("DELETE")
	r.HandleFunc("/api/sessions/current/bundle", sessionHandler.SelectBundle).Methods("POST")
	r.HandleFunc("/api/sessions/{id}", sessionHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/sessions/{id}/recover", sessionHandler.Recover).Methods("POST")
	r.HandleFunc("/api/sessions/{id}/status", sessionHandler.SetStatus).Methods("POST")
	r.HandleFunc("/api/sessions/{id}/complete", sessionHandler.Complete).Methods("POST")

	r.HandleFunc("/api/sessions/{id}/photos", photoHandler.Upload).Methods("POST")
	r.HandleFunc("/api/sessions/{id}/photos/{photoID}", photoHandler.Update).Methods("PATCH")
	r.HandleFunc("/api/sessions/{id}/photos/{photoID}", photoHandler.Delete).Methods("DELETE")

	r.HandleFunc("/api/retention/range", sessionHandler.DeleteByDateRange).Methods("POST")
	r.HandleFunc("/api/retention/month", sessionHandler.DeleteByMonth).Methods("POST")
	r.HandleFunc("/api/retention/auto", sessionHandler.AutoDelete).Methods("POST")
	r.HandleFunc("/api/retention/purge-deleted", sessionHandler.PurgeDeleted).Methods("POST")

	r.HandleFunc("/api/locations", locationHandler.List).Methods("GET")
	r.HandleFunc("/api/locations", locationHandler.Add).Methods("POST")
	r.HandleFunc("/api/locations/{id}/toggle", locationHandler.Toggle).Methods("POST")

	r.HandleFunc("/api/bundles", sessionHandler.Bundles).Methods("GET")

	r.HandleFunc("/api/storage", storageHandler.Status).Methods("GET")
	r.HandleFunc("/api/storage/clear", storageHandler.Clear).Methods("POST")

	if deps.Hub != nil {
		r.HandleFunc("/ws", deps.Hub.ServeWS)
	}

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("[HTTP] encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
