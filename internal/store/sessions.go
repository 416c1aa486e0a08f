package store

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/MDharunPrasad/photo-kiosk/internal/models"
	"github.com/MDharunPrasad/photo-kiosk/internal/retention"
)

var ErrUnknownStatus = errors.New("unknown session status")

// CreateSession - appends a new pending session and makes it current.
// The session key is a 5-digit token the customer quotes to the
// operator; an override wins when provided.
func (st *SessionStore) CreateSession(name, location, sessionKeyOverride string) models.Session {
	st.mu.Lock()
	now := st.now()

	key := sessionKeyOverride
	if key == "" {
		key = newSessionKey()
	}

	s := models.NewSession(st.nextSessionIDLocked(now), name, location, key, now)
	st.sessions = append(st.sessions, s)
	st.currentID = s.ID
	out := s.Clone()

	evs, alert := st.persistSessionsLocked()
	st.mu.Unlock()

	st.deliver(append(evs, Event{Type: EventSessionCreated, SessionID: out.ID}), alert)
	return out
}

// DeleteSession - soft delete: the entry stays in the collection and is
// recoverable. Clears the current session if it was the one deleted.
func (st *SessionStore) DeleteSession(id string) bool {
	st.mu.Lock()
	s := st.findLocked(id)
	if s == nil {
		st.mu.Unlock()
		return false
	}
	s.Deleted = true
	if st.currentID == id {
		st.currentID = ""
	}

	evs, alert := st.persistSessionsLocked()
	st.mu.Unlock()

	st.deliver(append(evs, Event{Type: EventSessionDeleted, SessionID: id}), alert)
	return true
}

// RecoverSession - clears the soft-delete flag. No-op on a missing or
// live session.
func (st *SessionStore) RecoverSession(id string) bool {
	st.mu.Lock()
	s := st.findLocked(id)
	if s == nil || !s.Deleted {
		st.mu.Unlock()
		return false
	}
	s.Deleted = false

	evs, alert := st.persistSessionsLocked()
	st.mu.Unlock()

	st.deliver(append(evs, Event{Type: EventSessionRecovered, SessionID: id}), alert)
	return true
}

// SetCurrentSession - points the projection at an existing session.
func (st *SessionStore) SetCurrentSession(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.findLocked(id) == nil {
		return false
	}
	st.currentID = id
	return true
}

func (st *SessionStore) ClearCurrentSession() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.currentID = ""
}

// SelectBundle - attaches the bundle to the current session. No-op when
// nothing is current.
func (st *SessionStore) SelectBundle(b models.Bundle) bool {
	st.mu.Lock()
	s := st.findLocked(st.currentID)
	if s == nil {
		st.mu.Unlock()
		return false
	}
	bundle := b
	s.Bundle = &bundle
	id := s.ID

	evs, alert := st.persistSessionsLocked()
	st.mu.Unlock()

	st.deliver(append(evs, Event{Type: EventSessionUpdated, SessionID: id}), alert)
	return true
}

func (st *SessionStore) CompleteSession(id string) bool {
	found, _ := st.SetSessionStatus(id, models.StatusCompleted)
	return found
}

// SetSessionStatus - the store does not police the pending →
// ready-for-operator → completed ordering, but it rejects statuses it
// has never heard of.
func (st *SessionStore) SetSessionStatus(id string, status models.Status) (bool, error) {
	status = models.NormalizeStatus(status)
	if !status.Known() {
		return false, fmt.Errorf("set status %q: %w", status, ErrUnknownStatus)
	}

	st.mu.Lock()
	s := st.findLocked(id)
	if s == nil {
		st.mu.Unlock()
		return false, nil
	}
	s.Status = status

	evs, alert := st.persistSessionsLocked()
	st.mu.Unlock()

	st.deliver(append(evs, Event{Type: EventSessionUpdated, SessionID: id}), alert)
	return true, nil
}

// DeleteAllSessions - hard removal of everything, current included.
func (st *SessionStore) DeleteAllSessions() {
	st.mu.Lock()
	st.sessions = []models.Session{}
	st.currentID = ""
	st.relieveLocked()

	evs, alert := st.persistSessionsLocked()
	st.mu.Unlock()

	st.deliver(append(evs, Event{Type: EventSessionsPurged}), alert)
}

// DeleteSessionsByDateRange - hard-removes sessions dated inside
// [start, end].
func (st *SessionStore) DeleteSessionsByDateRange(start, end time.Time) int {
	return st.applyRetention(func(sessions []models.Session) []models.Session {
		return retention.ByDateRange(sessions, start, end)
	})
}

// DeleteSessionsByMonth - hard-removes one calendar month. Month is
// 0-based January, as stored.
func (st *SessionStore) DeleteSessionsByMonth(month, year int) int {
	return st.applyRetention(func(sessions []models.Session) []models.Session {
		return retention.ByMonth(sessions, month, year)
	})
}

// AutoDeleteOldSessions - the standing 31-day retention sweep.
func (st *SessionStore) AutoDeleteOldSessions() int {
	now := st.now()
	return st.applyRetention(func(sessions []models.Session) []models.Session {
		return retention.ByMaxAge(sessions, st.retentionAge, now)
	})
}

// ClearDeletedSessions - empties the recently-deleted view for good.
func (st *SessionStore) ClearDeletedSessions() int {
	return st.applyRetention(retention.ExcludeDeleted)
}

// applyRetention - hard removal path shared by the cleanup operations.
// Freeing space re-arms persistence if it was suspended.
func (st *SessionStore) applyRetention(keep func([]models.Session) []models.Session) int {
	st.mu.Lock()
	kept := keep(st.sessions)
	removed := len(st.sessions) - len(kept)
	if removed == 0 {
		st.mu.Unlock()
		return 0
	}
	st.sessions = kept
	if st.findLocked(st.currentID) == nil {
		st.currentID = ""
	}
	st.relieveLocked()

	evs, alert := st.persistSessionsLocked()
	st.mu.Unlock()

	st.deliver(append(evs, Event{Type: EventSessionsPurged}), alert)
	return removed
}

func (st *SessionStore) nextSessionIDLocked(now time.Time) string {
	ms := now.UnixMilli()
	for {
		id := fmt.Sprintf("session_%d", ms)
		if st.findLocked(id) == nil {
			return id
		}
		ms++
	}
}

func newSessionKey() string {
	return fmt.Sprintf("%05d", rand.Intn(100000))
}
