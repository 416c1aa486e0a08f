package store

import (
	"github.com/MDharunPrasad/photo-kiosk/internal/models"
)

// AddLocation - appends an active location.
func (st *SessionStore) AddLocation(name string) models.Location {
	st.mu.Lock()
	loc := models.NewLocation(name, st.now())
	st.locations = append(st.locations, loc)
	st.persistLocationsLocked()
	st.mu.Unlock()

	st.emit(Event{Type: EventLocationChanged})
	return loc
}

// ToggleLocation - flips IsActive. Locations are never hard-deleted.
func (st *SessionStore) ToggleLocation(id string) bool {
	st.mu.Lock()
	found := false
	for i := range st.locations {
		if st.locations[i].ID == id {
			st.locations[i].IsActive = !st.locations[i].IsActive
			found = true
			break
		}
	}
	if found {
		st.persistLocationsLocked()
	}
	st.mu.Unlock()

	if found {
		st.emit(Event{Type: EventLocationChanged})
	}
	return found
}
