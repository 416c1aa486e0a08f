package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/MDharunPrasad/photo-kiosk/internal/models"
)

// PhotoUpdate - shallow merge for UpdatePhoto; nil fields are left alone.
type PhotoUpdate struct {
	URL        *string
	Edited     *bool
	LastEdited *time.Time
}

// AddPhoto - appends the photo to the session's list and runs the
// write-through ladder. The photo is visible in memory whatever the
// persistence outcome. Missing session id is a no-op.
func (st *SessionStore) AddPhoto(sessionID string, p models.Photo) (models.Photo, bool) {
	st.mu.Lock()
	s := st.findLocked(sessionID)
	if s == nil {
		st.mu.Unlock()
		return models.Photo{}, false
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Timestamp.IsZero() {
		p.Timestamp = st.now()
	}
	s.Photos = append(s.Photos, p)

	evs, alert := st.persistSessionsLocked()
	st.mu.Unlock()

	st.deliver(append(evs, Event{Type: EventPhotoAdded, SessionID: sessionID, PhotoID: p.ID}), alert)
	return p, true
}

// UpdatePhoto - in-place merge, used by the editor's save callback.
func (st *SessionStore) UpdatePhoto(sessionID, photoID string, upd PhotoUpdate) bool {
	st.mu.Lock()
	s := st.findLocked(sessionID)
	if s == nil {
		st.mu.Unlock()
		return false
	}

	found := false
	for i := range s.Photos {
		if s.Photos[i].ID != photoID {
			continue
		}
		if upd.URL != nil {
			s.Photos[i].URL = *upd.URL
		}
		if upd.Edited != nil {
			s.Photos[i].Edited = *upd.Edited
		}
		if upd.LastEdited != nil {
			t := *upd.LastEdited
			s.Photos[i].LastEdited = &t
		}
		found = true
		break
	}
	if !found {
		st.mu.Unlock()
		return false
	}

	evs, alert := st.persistSessionsLocked()
	st.mu.Unlock()

	st.deliver(append(evs, Event{Type: EventPhotoUpdated, SessionID: sessionID, PhotoID: photoID}), alert)
	return true
}

// DeletePhoto - removes by id. The inverse of AddPhoto; there is no
// undo beyond re-adding.
func (st *SessionStore) DeletePhoto(sessionID, photoID string) bool {
	st.mu.Lock()
	s := st.findLocked(sessionID)
	if s == nil {
		st.mu.Unlock()
		return false
	}

	found := false
	for i := range s.Photos {
		if s.Photos[i].ID == photoID {
			s.Photos = append(s.Photos[:i], s.Photos[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		st.mu.Unlock()
		return false
	}

	evs, alert := st.persistSessionsLocked()
	st.mu.Unlock()

	st.deliver(append(evs, Event{Type: EventPhotoDeleted, SessionID: sessionID, PhotoID: photoID}), alert)
	return true
}
