package server

import (
	"net/http"

	"github.com/MDharunPrasad/photo-kiosk/internal/quota"
	"github.com/MDharunPrasad/photo-kiosk/internal/store"
)

type StorageHandler struct {
	store *store.SessionStore
}

func NewStorageHandler(st *store.SessionStore) *StorageHandler {
	return &StorageHandler{store: st}
}

type storageStatus struct {
	Usage       quota.Usage `json:"usage"`
	Level       quota.Level `json:"level"`
	StorageFull bool        `json:"storageFull"`
}

func (h *StorageHandler) Status(w http.ResponseWriter, r *http.Request) {
	u, err := h.store.Usage()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "usage unavailable")
		return
	}
	writeJSON(w, http.StatusOK, storageStatus{
		Usage:       u,
		Level:       u.Level(),
		StorageFull: h.store.StorageFull(),
	})
}

// Clear - the operator confirms space was freed; the write ladder is
// re-armed and the full flag drops.
func (h *StorageHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.store.ClearStorageFull()
	w.WriteHeader(http.StatusNoContent)
}
