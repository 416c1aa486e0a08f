// Package bootstrap hydrates the session store from the durable
// substrate at process start. This is the only place that reads the
// photoBooth* keys; after hydration the store owns them.
package bootstrap

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/MDharunPrasad/photo-kiosk/internal/models"
	"github.com/MDharunPrasad/photo-kiosk/internal/store"
)

// Hydrate - reads user, sessions, locations and the user registry,
// seeding defaults where the store is empty. Malformed stored JSON is
// fatal: the caller decides whether to reset storage or abort.
func Hydrate(kv store.KV, opts ...store.Option) (*store.SessionStore, error) {
	var snap store.Snapshot

	raw, ok, err := kv.Get(store.KeyUser)
	if err != nil {
		return nil, fmt.Errorf("bootstrap read %s: %w", store.KeyUser, err)
	}
	if ok {
		var u models.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			return nil, fmt.Errorf("bootstrap decode %s: %w", store.KeyUser, err)
		}
		snap.CurrentUser = &u
	}

	raw, ok, err = kv.Get(store.KeySessions)
	if err != nil {
		return nil, fmt.Errorf("bootstrap read %s: %w", store.KeySessions, err)
	}
	if ok {
		if err := json.Unmarshal([]byte(raw), &snap.Sessions); err != nil {
			return nil, fmt.Errorf("bootstrap decode %s: %w", store.KeySessions, err)
		}
		normalize(snap.Sessions)
	} else {
		snap.Sessions = []models.Session{}
		if err := kv.Set(store.KeySessions, "[]"); err != nil {
			slog.Warn("[BOOT] seed empty sessions", "err", err)
		}
	}

	raw, ok, err = kv.Get(store.KeyLocations)
	if err != nil {
		return nil, fmt.Errorf("bootstrap read %s: %w", store.KeyLocations, err)
	}
	if ok {
		if err := json.Unmarshal([]byte(raw), &snap.Locations); err != nil {
			return nil, fmt.Errorf("bootstrap decode %s: %w", store.KeyLocations, err)
		}
	}
	if len(snap.Locations) == 0 {
		snap.Locations = models.DefaultLocations()
		if payload, err := json.Marshal(snap.Locations); err == nil {
			if err := kv.Set(store.KeyLocations, string(payload)); err != nil {
				slog.Warn("[BOOT] seed default locations", "err", err)
			}
		}
	}

	raw, ok, err = kv.Get(store.KeyUsers)
	if err != nil {
		return nil, fmt.Errorf("bootstrap read %s: %w", store.KeyUsers, err)
	}
	if ok {
		if err := json.Unmarshal([]byte(raw), &snap.Users); err != nil {
			return nil, fmt.Errorf("bootstrap decode %s: %w", store.KeyUsers, err)
		}
	}

	slog.Info("[BOOT] store hydrated",
		"sessions", len(snap.Sessions),
		"locations", len(snap.Locations),
		"users", len(snap.Users),
		"loggedIn", snap.CurrentUser != nil)

	return store.New(kv, snap, opts...), nil
}

// normalize upgrades payloads written by the previous kiosk generation.
func normalize(sessions []models.Session) {
	for i := range sessions {
		sessions[i].Status = models.NormalizeStatus(sessions[i].Status)
		if sessions[i].Photos == nil {
			sessions[i].Photos = []models.Photo{}
		}
	}
}
