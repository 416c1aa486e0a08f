package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/MDharunPrasad/photo-kiosk/internal/bundles"
	"github.com/MDharunPrasad/photo-kiosk/internal/config"
	"github.com/MDharunPrasad/photo-kiosk/internal/imaging"
	"github.com/MDharunPrasad/photo-kiosk/internal/models"
	"github.com/MDharunPrasad/photo-kiosk/internal/quota"
	"github.com/MDharunPrasad/photo-kiosk/internal/store"
)

const maxUploadBytes = 64 << 20

type PhotoHandler struct {
	store   *store.SessionStore
	catalog *bundles.Catalog
	upload  config.UploadConfig
}

func NewPhotoHandler(st *store.SessionStore, catalog *bundles.Catalog, upload config.UploadConfig) *PhotoHandler {
	return &PhotoHandler{store: st, catalog: catalog, upload: upload}
}

type uploadResult struct {
	Added   []models.Photo `json:"added"`
	Skipped int            `json:"skipped"`
	Reason  string         `json:"reason,omitempty"`
}

// Upload - multipart batch under the "photos" field. Refuses outright
// when storage pressure is already critical; past the session's bundle
// cap the remaining files are skipped, not failed.
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if u, err := h.store.Usage(); err == nil && u.Level() == quota.LevelCritical {
		writeError(w, http.StatusInsufficientStorage, "storage is almost full, delete old sessions first")
		return
	}
	if h.store.StorageFull() {
		writeError(w, http.StatusInsufficientStorage, "storage is full")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	files := r.MultipartForm.File["photos"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no photos in request")
		return
	}

	remaining := h.remainingFor(sessionID)
	if remaining < 0 {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	res := uploadResult{Added: []models.Photo{}}
	for i, fh := range files {
		if len(res.Added) >= remaining {
			res.Skipped = len(files) - i
			res.Reason = "bundle limit reached"
			break
		}

		f, err := fh.Open()
		if err != nil {
			slog.Warn("[HTTP] open upload part", "file", fh.Filename, "err", err)
			res.Skipped++
			continue
		}
		url, err := imaging.Compress(f, h.upload.Quality, h.upload.MaxDimension)
		f.Close()
		if err != nil {
			slog.Warn("[HTTP] compress upload", "file", fh.Filename, "err", err)
			res.Skipped++
			continue
		}

		p, ok := h.store.AddPhoto(sessionID, models.Photo{URL: url})
		if !ok {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		res.Added = append(res.Added, p)

		if h.store.StorageFull() {
			res.Skipped += len(files) - i - 1
			res.Reason = "storage is full"
			break
		}
		if i < len(files)-1 && h.upload.Delay > 0 {
			time.Sleep(h.upload.Delay)
		}
	}

	writeJSON(w, http.StatusCreated, res)
}

func (h *PhotoHandler) Update(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var req struct {
		URL    *string `json:"url"`
		Edited *bool   `json:"edited"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	upd := store.PhotoUpdate{URL: req.URL, Edited: req.Edited}
	if req.URL != nil || req.Edited != nil {
		now := time.Now()
		upd.LastEdited = &now
	}

	if !h.store.UpdatePhoto(vars["id"], vars["photoID"], upd) {
		writeError(w, http.StatusNotFound, "photo not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PhotoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if !h.store.DeletePhoto(vars["id"], vars["photoID"]) {
		writeError(w, http.StatusNotFound, "photo not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// remainingFor - how many more photos the session's bundle admits.
// Returns -1 for an unknown session; a session without a bundle gets
// the unlimited cap, the limit is advisory either way.
func (h *PhotoHandler) remainingFor(sessionID string) int {
	for _, s := range h.store.Sessions() {
		if s.ID != sessionID {
			continue
		}
		if s.Bundle == nil {
			return models.UnlimitedCap - len(s.Photos)
		}
		return bundles.Remaining(s.Bundle, len(s.Photos))
	}
	return -1
}
