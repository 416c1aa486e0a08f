package store

// Event - a completed store mutation, pushed to kiosk displays.
type Event struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
	PhotoID   string `json:"photoId,omitempty"`
}

const (
	EventSessionCreated   = "session.created"
	EventSessionUpdated   = "session.updated"
	EventSessionDeleted   = "session.deleted"
	EventSessionRecovered = "session.recovered"
	EventSessionsPurged   = "sessions.purged"
	EventPhotoAdded       = "photo.added"
	EventPhotoUpdated     = "photo.updated"
	EventPhotoDeleted     = "photo.deleted"
	EventLocationChanged  = "location.changed"
	EventStorageFull      = "storage.full"
	EventStorageCleared   = "storage.cleared"
)

func (st *SessionStore) emit(evs ...Event) {
	if st.onEvent == nil {
		return
	}
	for _, ev := range evs {
		st.onEvent(ev)
	}
}
