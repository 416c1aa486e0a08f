// Package store owns the authoritative in-memory record of users,
// sessions and locations. Every mutation lands in memory first and is
// then written through to the durable key/value substrate; when the
// substrate runs out of room the write degrades through the retention
// ladder instead of failing the caller.
package store

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/MDharunPrasad/photo-kiosk/internal/kvstore"
	"github.com/MDharunPrasad/photo-kiosk/internal/models"
	"github.com/MDharunPrasad/photo-kiosk/internal/quota"
	"github.com/MDharunPrasad/photo-kiosk/internal/retention"
)

// Durable storage layout. The keys match the original kiosk payloads,
// so an old data file hydrates as-is.
const (
	KeyUser      = "photoBoothUser"
	KeySessions  = "photoBoothSessions"
	KeyLocations = "photoBoothLocations"
	KeyUsers     = "photoBoothUsers"
)

// KV - the durable substrate the store writes through. Satisfied by
// kvstore.Store and by test fakes.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
	Usage() (quota.Usage, error)
}

// Snapshot - hydrated state handed over by the bootstrap loader.
type Snapshot struct {
	CurrentUser *models.User
	Sessions    []models.Session
	Users       []models.StoredUser
	Locations   []models.Location
}

const (
	defaultEvictionWindow = 24 * time.Hour
	defaultRetentionAge   = 31 * 24 * time.Hour
)

// SessionStore - single authority over the kiosk collections. The
// current session is kept as an id only and looked up on read, so the
// projection can never contradict the collection entry.
type SessionStore struct {
	mu sync.Mutex
	kv KV

	sessions  []models.Session
	users     []models.StoredUser
	locations []models.Location

	currentUser *models.User
	currentID   string

	fsm     *writeFSM
	alerted bool

	now            func() time.Time
	evictionWindow time.Duration
	retentionAge   time.Duration

	onEvent       func(Event)
	onStorageFull func(quota.Usage)
}

type Option func(*SessionStore)

// WithNow - injects the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(st *SessionStore) { st.now = now }
}

// WithEvictionWindow - how much completed history the first ladder rung
// keeps. Default 24h.
func WithEvictionWindow(d time.Duration) Option {
	return func(st *SessionStore) { st.evictionWindow = d }
}

// WithRetentionAge - the AutoDeleteOldSessions cutoff. Default 31 days.
func WithRetentionAge(d time.Duration) Option {
	return func(st *SessionStore) { st.retentionAge = d }
}

// WithOnEvent - called after each completed mutation, outside the lock.
func WithOnEvent(fn func(Event)) Option {
	return func(st *SessionStore) { st.onEvent = fn }
}

// WithOnStorageFull - called once per suspension episode, outside the lock.
func WithOnStorageFull(fn func(quota.Usage)) Option {
	return func(st *SessionStore) { st.onStorageFull = fn }
}

func New(kv KV, snap Snapshot, opts ...Option) *SessionStore {
	st := &SessionStore{
		kv:             kv,
		sessions:       snap.Sessions,
		users:          snap.Users,
		locations:      snap.Locations,
		currentUser:    snap.CurrentUser,
		fsm:            newWriteFSM(),
		now:            time.Now,
		evictionWindow: defaultEvictionWindow,
		retentionAge:   defaultRetentionAge,
	}
	if st.sessions == nil {
		st.sessions = []models.Session{}
	}
	if st.users == nil {
		st.users = []models.StoredUser{}
	}
	if st.locations == nil {
		st.locations = []models.Location{}
	}
	for _, opt := range opts {
		opt(st)
	}
	return st
}

// --- reads (everything leaves as a copy) ---

func (st *SessionStore) Sessions() []models.Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return cloneAll(st.sessions)
}

// ActiveSessions - the normal listing, soft-deleted entries excluded.
func (st *SessionStore) ActiveSessions() []models.Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return cloneAll(retention.ExcludeDeleted(st.sessions))
}

// DeletedSessions - the "recently deleted" view.
func (st *SessionStore) DeletedSessions() []models.Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]models.Session, 0)
	for _, s := range st.sessions {
		if s.Deleted {
			out = append(out, s.Clone())
		}
	}
	return out
}

// OperatorSessions - sessions handed off to the print operator.
func (st *SessionStore) OperatorSessions() []models.Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]models.Session, 0)
	for _, s := range st.sessions {
		if s.Status == models.StatusOperator && !s.Deleted {
			out = append(out, s.Clone())
		}
	}
	return out
}

// CurrentSession - derived from the collection on every call.
func (st *SessionStore) CurrentSession() (models.Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s := st.findLocked(st.currentID); s != nil {
		return s.Clone(), true
	}
	return models.Session{}, false
}

func (st *SessionStore) CurrentUser() (models.User, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.currentUser == nil {
		return models.User{}, false
	}
	return *st.currentUser, true
}

func (st *SessionStore) Locations() []models.Location {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]models.Location, len(st.locations))
	copy(out, st.locations)
	return out
}

// Usage - passthrough to the substrate's quota accounting.
func (st *SessionStore) Usage() (quota.Usage, error) {
	return st.kv.Usage()
}

// StorageFull - true while persistence is suspended.
func (st *SessionStore) StorageFull() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.fsm.Current() == stateSuspended
}

// ClearStorageFull - re-arms persistence after the operator freed space.
func (st *SessionStore) ClearStorageFull() {
	st.mu.Lock()
	cleared := st.relieveLocked()
	st.mu.Unlock()
	if cleared {
		st.emit(Event{Type: EventStorageCleared})
	}
}

// --- internals ---

func (st *SessionStore) findLocked(id string) *models.Session {
	if id == "" {
		return nil
	}
	for i := range st.sessions {
		if st.sessions[i].ID == id {
			return &st.sessions[i]
		}
	}
	return nil
}

func (st *SessionStore) relieveLocked() bool {
	if st.fsm.Current() != stateSuspended {
		return false
	}
	st.fsm.safeTrigger(eventStorageCleared)
	st.alerted = false
	return true
}

// persistSessionsLocked runs the degradation ladder. Returned events and
// alert must be delivered after the lock is released.
func (st *SessionStore) persistSessionsLocked() (evs []Event, alert *quota.Usage) {
	if st.fsm.Current() == stateSuspended {
		return nil, nil
	}

	now := st.now()
	for {
		candidate := st.sessions
		switch st.fsm.Current() {
		case stateDegradedCompleted:
			candidate = retention.KeepRecentOrActive(st.sessions, st.evictionWindow, now)
		case stateDegradedActive:
			candidate = retention.OnlyActive(st.sessions)
		}

		payload, err := json.Marshal(candidate)
		if err != nil {
			slog.Error("[STORE] serialize sessions", "err", err)
			return nil, nil
		}

		if err := st.kv.Set(KeySessions, string(payload)); err == nil {
			// a reduced set that made it to disk becomes the collection
			if st.fsm.Current() != stateNormal {
				st.sessions = candidate
				if st.findLocked(st.currentID) == nil {
					st.currentID = ""
				}
			}
			st.fsm.safeTrigger(eventWriteOK)
			return evs, nil
		} else if !errors.Is(err, kvstore.ErrQuotaExceeded) {
			slog.Error("[STORE] persist sessions", "err", err)
			return evs, nil
		}

		st.fsm.safeTrigger(eventQuotaExceeded)
		if st.fsm.Current() == stateSuspended {
			slog.Warn("[STORE] storage full, persistence suspended",
				"sessions", len(st.sessions))
			evs = append(evs, Event{Type: EventStorageFull})
			if !st.alerted {
				st.alerted = true
				u, uerr := st.kv.Usage()
				if uerr != nil {
					slog.Error("[STORE] usage after suspension", "err", uerr)
				}
				alert = &u
			}
			return evs, alert
		}
	}
}

func (st *SessionStore) persistUsersLocked() {
	payload, err := json.Marshal(st.users)
	if err != nil {
		slog.Error("[STORE] serialize users", "err", err)
		return
	}
	if err := st.kv.Set(KeyUsers, string(payload)); err != nil {
		slog.Error("[STORE] persist users", "err", err)
	}
}

func (st *SessionStore) persistLocationsLocked() {
	payload, err := json.Marshal(st.locations)
	if err != nil {
		slog.Error("[STORE] serialize locations", "err", err)
		return
	}
	if err := st.kv.Set(KeyLocations, string(payload)); err != nil {
		slog.Error("[STORE] persist locations", "err", err)
	}
}

func (st *SessionStore) persistCurrentUserLocked() {
	if st.currentUser == nil {
		if err := st.kv.Remove(KeyUser); err != nil {
			slog.Error("[STORE] remove current user", "err", err)
		}
		return
	}
	payload, err := json.Marshal(st.currentUser)
	if err != nil {
		slog.Error("[STORE] serialize current user", "err", err)
		return
	}
	if err := st.kv.Set(KeyUser, string(payload)); err != nil {
		slog.Error("[STORE] persist current user", "err", err)
	}
}

func (st *SessionStore) deliver(evs []Event, alert *quota.Usage) {
	st.emit(evs...)
	if alert != nil && st.onStorageFull != nil {
		st.onStorageFull(*alert)
	}
}

func cloneAll(sessions []models.Session) []models.Session {
	out := make([]models.Session, len(sessions))
	for i, s := range sessions {
		out[i] = s.Clone()
	}
	return out
}
