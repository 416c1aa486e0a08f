package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MDharunPrasad/photo-kiosk/internal/models"
	"github.com/MDharunPrasad/photo-kiosk/internal/quota"
	"github.com/MDharunPrasad/photo-kiosk/internal/store/mock"
)

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func newTestStore(kv KV, snap Snapshot, opts ...Option) *SessionStore {
	opts = append([]Option{WithNow(func() time.Time { return testNow })}, opts...)
	return New(kv, snap, opts...)
}

func TestCreateSession(t *testing.T) {
	kv := mock.NewFakeKV()
	st := newTestStore(kv, Snapshot{})

	s := st.CreateSession("Priya", "castle", "")

	require.Equal(t, "session_1749988800000", s.ID)
	require.Equal(t, models.StatusPending, s.Status)
	require.Len(t, s.SessionKey, 5)
	require.Empty(t, s.Photos)
	require.False(t, s.Deleted)

	cur, ok := st.CurrentSession()
	require.True(t, ok, "new session must become current")
	require.Equal(t, s.ID, cur.ID)

	// durable copy matches
	raw, ok, err := kv.Get(KeySessions)
	require.NoError(t, err)
	require.True(t, ok)
	var persisted []models.Session
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	require.Len(t, persisted, 1)
	require.Equal(t, s.ID, persisted[0].ID)
}

func TestCreateSession_KeyOverrideAndUniqueIDs(t *testing.T) {
	st := newTestStore(mock.NewFakeKV(), Snapshot{})

	a := st.CreateSession("A", "entrance", "12345")
	b := st.CreateSession("B", "entrance", "")

	require.Equal(t, "12345", a.SessionKey)
	require.NotEqual(t, a.ID, b.ID, "same-millisecond sessions must not collide")
}

func TestSoftDeleteRecover_RoundTrip(t *testing.T) {
	st := newTestStore(mock.NewFakeKV(), Snapshot{})

	s := st.CreateSession("Ravi", "waterfall", "")
	st.SelectBundle(models.Bundle{Name: "Premium", Count: models.BundleCount{Value: 10}, Price: 499})
	_, ok := st.AddPhoto(s.ID, models.Photo{URL: "data:image/jpeg;base64,aaaa"})
	require.True(t, ok)

	before := st.Sessions()[0]

	require.True(t, st.DeleteSession(s.ID))
	_, ok = st.CurrentSession()
	require.False(t, ok, "deleting the current session clears the projection")
	require.Empty(t, st.ActiveSessions())
	require.Len(t, st.DeletedSessions(), 1)

	require.True(t, st.RecoverSession(s.ID))
	after := st.Sessions()[0]
	require.Equal(t, before, after, "soft delete round-trip must be lossless")
}

func TestRecoverSession_NoOps(t *testing.T) {
	st := newTestStore(mock.NewFakeKV(), Snapshot{})
	s := st.CreateSession("A", "entrance", "")

	require.False(t, st.RecoverSession("session_missing"))
	require.False(t, st.RecoverSession(s.ID), "recovering a live session is a no-op")
}

func TestCurrentSessionProjection_AlwaysInCollection(t *testing.T) {
	st := newTestStore(mock.NewFakeKV(), Snapshot{})

	check := func() {
		cur, ok := st.CurrentSession()
		if !ok {
			return
		}
		for _, s := range st.Sessions() {
			if s.ID == cur.ID {
				return
			}
		}
		t.Fatalf("current session %s not in collection", cur.ID)
	}

	s1 := st.CreateSession("A", "entrance", "")
	check()
	st.CreateSession("B", "castle", "")
	check()
	require.True(t, st.SetCurrentSession(s1.ID))
	check()
	st.DeleteAllSessions()
	check()
	_, ok := st.CurrentSession()
	require.False(t, ok)

	require.False(t, st.SetCurrentSession("session_missing"))
}

func TestSelectBundle_RequiresCurrentSession(t *testing.T) {
	st := newTestStore(mock.NewFakeKV(), Snapshot{})

	require.False(t, st.SelectBundle(models.Bundle{Name: "Basic"}))

	s := st.CreateSession("A", "entrance", "")
	require.True(t, st.SelectBundle(models.Bundle{
		Name:  "Unlimited",
		Count: models.BundleCount{Unlimited: true},
		Price: 999,
	}))

	cur, _ := st.CurrentSession()
	require.NotNil(t, cur.Bundle)
	require.Equal(t, "Unlimited", cur.Bundle.Name)
	require.Equal(t, models.UnlimitedCap, cur.Bundle.Count.Cap())

	// mirror in the collection, not only the projection
	for _, got := range st.Sessions() {
		if got.ID == s.ID {
			require.NotNil(t, got.Bundle)
		}
	}
}

func TestPhotos_NetEffectSurvivesPersistenceFailure(t *testing.T) {
	kv := mock.NewFakeKV()
	st := newTestStore(kv, Snapshot{})
	s := st.CreateSession("A", "entrance", "")

	// every durable write from here on fails
	kv.FailSets = 1000

	p1, _ := st.AddPhoto(s.ID, models.Photo{URL: "u1"})
	p2, _ := st.AddPhoto(s.ID, models.Photo{URL: "u2"})
	p3, _ := st.AddPhoto(s.ID, models.Photo{URL: "u3"})
	require.True(t, st.DeletePhoto(s.ID, p2.ID))

	cur, _ := st.CurrentSession()
	require.Len(t, cur.Photos, 2, "in-memory state must not be starved by persistence failure")
	require.Equal(t, p1.ID, cur.Photos[0].ID)
	require.Equal(t, p3.ID, cur.Photos[1].ID)
}

func TestUpdatePhoto_ShallowMerge(t *testing.T) {
	st := newTestStore(mock.NewFakeKV(), Snapshot{})
	s := st.CreateSession("A", "entrance", "")
	p, _ := st.AddPhoto(s.ID, models.Photo{URL: "orig"})

	edited := true
	url := "data:image/jpeg;base64,edited"
	at := testNow.Add(time.Minute)
	require.True(t, st.UpdatePhoto(s.ID, p.ID, PhotoUpdate{URL: &url, Edited: &edited, LastEdited: &at}))

	cur, _ := st.CurrentSession()
	require.Equal(t, url, cur.Photos[0].URL)
	require.True(t, cur.Photos[0].Edited)
	require.NotNil(t, cur.Photos[0].LastEdited)
	require.Equal(t, p.Timestamp, cur.Photos[0].Timestamp, "unset fields stay put")

	require.False(t, st.UpdatePhoto(s.ID, "photo_missing", PhotoUpdate{URL: &url}))
	require.False(t, st.UpdatePhoto("session_missing", p.ID, PhotoUpdate{URL: &url}))
	require.False(t, st.DeletePhoto(s.ID, "photo_missing"))
}

func TestSetSessionStatus(t *testing.T) {
	st := newTestStore(mock.NewFakeKV(), Snapshot{})
	s := st.CreateSession("A", "entrance", "")

	found, err := st.SetSessionStatus(s.ID, models.StatusOperator)
	require.NoError(t, err)
	require.True(t, found)

	found, err = st.SetSessionStatus("session_missing", models.StatusCompleted)
	require.NoError(t, err)
	require.False(t, found)

	_, err = st.SetSessionStatus(s.ID, models.Status("exploded"))
	require.ErrorIs(t, err, ErrUnknownStatus)

	// legacy spellings are accepted and normalized
	found, err = st.SetSessionStatus(s.ID, models.Status("Completed"))
	require.NoError(t, err)
	require.True(t, found)
	cur, _ := st.CurrentSession()
	require.Equal(t, models.StatusCompleted, cur.Status)

	require.True(t, st.CompleteSession(s.ID))
}

func TestDegradationLadder_EvictsCompletedKeepsPending(t *testing.T) {
	kv := mock.NewFakeKV()

	oldCompleted := models.NewSession("session_1", "Old", "entrance", "11111", testNow.Add(-72*time.Hour))
	oldCompleted.Status = models.StatusCompleted
	oldPending := models.NewSession("session_2", "S1", "castle", "22222", testNow.Add(-72*time.Hour))

	st := newTestStore(kv, Snapshot{Sessions: []models.Session{oldCompleted, oldPending}})

	// first write fails, the retry with completed history evicted lands
	kv.FailSets = 1
	p, ok := st.AddPhoto("session_2", models.Photo{URL: "u"})
	require.True(t, ok)

	sessions := st.Sessions()
	require.Len(t, sessions, 1, "24h eviction must drop the old completed session")
	require.Equal(t, "session_2", sessions[0].ID, "pending session survives regardless of age")
	require.Len(t, sessions[0].Photos, 1)
	require.Equal(t, p.ID, sessions[0].Photos[0].ID)
	require.False(t, st.StorageFull())

	// the adopted reduced set is what got persisted
	raw, _, err := kv.Get(KeySessions)
	require.NoError(t, err)
	var persisted []models.Session
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	require.Len(t, persisted, 1)
	require.Equal(t, "session_2", persisted[0].ID)
}

func TestDegradationLadder_SecondFailureKeepsOnlyActive(t *testing.T) {
	kv := mock.NewFakeKV()

	freshCompleted := models.NewSession("session_done", "Done", "entrance", "11111", testNow.Add(-time.Hour))
	freshCompleted.Status = models.StatusCompleted
	pending := models.NewSession("session_live", "Live", "castle", "22222", testNow)

	st := newTestStore(kv, Snapshot{Sessions: []models.Session{freshCompleted, pending}})

	// full set fails, 24h-evicted set (unchanged, completed is fresh)
	// fails again, active-only succeeds
	kv.FailSets = 2
	_, ok := st.AddPhoto("session_live", models.Photo{URL: "u"})
	require.True(t, ok)

	sessions := st.Sessions()
	require.Len(t, sessions, 1)
	require.Equal(t, "session_live", sessions[0].ID)
	require.False(t, st.StorageFull())
}

func TestDegradationLadder_ExhaustionSuspendsOnce(t *testing.T) {
	kv := mock.NewFakeKV()
	kv.SetUsage(quota.Usage{UsedBytes: 99, LimitBytes: 100, Percentage: 99})

	var alerts []quota.Usage
	var events []Event

	st := newTestStore(kv, Snapshot{},
		WithOnStorageFull(func(u quota.Usage) { alerts = append(alerts, u) }),
		WithOnEvent(func(ev Event) { events = append(events, ev) }),
	)
	s := st.CreateSession("A", "entrance", "")

	kv.FailSets = 1000
	_, ok := st.AddPhoto(s.ID, models.Photo{URL: "u1"})
	require.True(t, ok, "mutation stays visible in memory")
	require.True(t, st.StorageFull())
	require.Len(t, alerts, 1, "interruptive notice fires exactly once")
	require.Equal(t, 99.0, alerts[0].Percentage)

	// while suspended no further durable writes are attempted
	attempts := len(kv.SetKeys)
	_, ok = st.AddPhoto(s.ID, models.Photo{URL: "u2"})
	require.True(t, ok)
	require.Len(t, kv.SetKeys, attempts, "suspended store must not retry")
	require.Len(t, alerts, 1, "no repeat alert while suspended")

	cur, _ := st.CurrentSession()
	require.Len(t, cur.Photos, 2)

	// explicit relief re-arms persistence
	kv.FailSets = 0
	st.ClearStorageFull()
	require.False(t, st.StorageFull())
	_, ok = st.AddPhoto(s.ID, models.Photo{URL: "u3"})
	require.True(t, ok)
	require.Greater(t, len(kv.SetKeys), attempts)

	var full, cleared bool
	for _, ev := range events {
		switch ev.Type {
		case EventStorageFull:
			full = true
		case EventStorageCleared:
			cleared = true
		}
	}
	require.True(t, full)
	require.True(t, cleared)
}

func TestRetentionOperations(t *testing.T) {
	mkSession := func(id string, date time.Time, status models.Status, deleted bool) models.Session {
		s := models.NewSession(id, id, "entrance", "00000", date)
		s.Status = status
		s.Deleted = deleted
		return s
	}

	t.Run("by date range clears current when removed", func(t *testing.T) {
		st := newTestStore(mock.NewFakeKV(), Snapshot{Sessions: []models.Session{
			mkSession("in", testNow.Add(-36*time.Hour), models.StatusCompleted, false),
			mkSession("out", testNow, models.StatusPending, false),
		}})
		require.True(t, st.SetCurrentSession("in"))

		removed := st.DeleteSessionsByDateRange(testNow.Add(-48*time.Hour), testNow.Add(-24*time.Hour))
		require.Equal(t, 1, removed)
		_, ok := st.CurrentSession()
		require.False(t, ok)
		require.Len(t, st.Sessions(), 1)
	})

	t.Run("by month", func(t *testing.T) {
		st := newTestStore(mock.NewFakeKV(), Snapshot{Sessions: []models.Session{
			mkSession("june", time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC), models.StatusCompleted, false),
			mkSession("may", time.Date(2025, time.May, 2, 0, 0, 0, 0, time.UTC), models.StatusCompleted, false),
		}})

		require.Equal(t, 1, st.DeleteSessionsByMonth(5, 2025))
		require.Equal(t, "may", st.Sessions()[0].ID)
	})

	t.Run("auto delete old keeps 31 days", func(t *testing.T) {
		st := newTestStore(mock.NewFakeKV(), Snapshot{Sessions: []models.Session{
			mkSession("ancient", testNow.Add(-40*24*time.Hour), models.StatusCompleted, false),
			mkSession("recent", testNow.Add(-30*24*time.Hour), models.StatusCompleted, false),
		}})

		require.Equal(t, 1, st.AutoDeleteOldSessions())
		require.Equal(t, "recent", st.Sessions()[0].ID)
	})

	t.Run("clear deleted purges the soft-deleted only", func(t *testing.T) {
		st := newTestStore(mock.NewFakeKV(), Snapshot{Sessions: []models.Session{
			mkSession("live", testNow, models.StatusPending, false),
			mkSession("gone", testNow, models.StatusCompleted, true),
		}})

		require.Equal(t, 1, st.ClearDeletedSessions())
		require.Equal(t, "live", st.Sessions()[0].ID)
		require.Equal(t, 0, st.ClearDeletedSessions(), "second pass removes nothing")
	})
}

func TestAuth(t *testing.T) {
	t.Run("register then duplicate email", func(t *testing.T) {
		st := newTestStore(mock.NewFakeKV(), Snapshot{})

		require.True(t, st.Register("A", "a@x.com", "p", models.RoleAdmin))
		require.Equal(t, 1, st.RegisteredUsers())

		u, ok := st.CurrentUser()
		require.True(t, ok, "register logs the new user in")
		require.Equal(t, "a@x.com", u.Email)

		require.False(t, st.Register("B", "a@x.com", "q", models.RoleCameraman))
		require.Equal(t, 1, st.RegisteredUsers(), "user list length unchanged")
	})

	t.Run("login exact match only", func(t *testing.T) {
		kv := mock.NewFakeKV()
		st := newTestStore(kv, Snapshot{Users: []models.StoredUser{{
			User:     models.User{ID: "user_1", Name: "A", Email: "a@x.com", Role: models.RoleAdmin},
			Password: "p",
		}}})

		require.False(t, st.Login("a@x.com", "wrong", models.RoleAdmin, false))
		_, ok := st.CurrentUser()
		require.False(t, ok, "failed login must not alter the current user")

		require.False(t, st.Login("a@x.com", "p", models.RoleCameraman, false), "role is part of the match")
		require.False(t, st.Login("b@x.com", "p", models.RoleAdmin, false))

		require.True(t, st.Login("a@x.com", "p", models.RoleAdmin, false))
		u, ok := st.CurrentUser()
		require.True(t, ok)
		require.Equal(t, "user_1", u.ID)

		raw, ok, err := kv.Get(KeyUser)
		require.NoError(t, err)
		require.True(t, ok)
		require.Contains(t, raw, "a@x.com")
	})

	t.Run("force login synthesizes a user", func(t *testing.T) {
		st := newTestStore(mock.NewFakeKV(), Snapshot{})

		require.True(t, st.Login("walkup@venue.com", "", models.RoleCameraman, true))
		u, ok := st.CurrentUser()
		require.True(t, ok)
		require.Equal(t, "walkup", u.Name)
		require.Equal(t, models.RoleCameraman, u.Role)
	})

	t.Run("logout clears identity and durable key", func(t *testing.T) {
		kv := mock.NewFakeKV()
		st := newTestStore(kv, Snapshot{})
		require.True(t, st.Login("a@x.com", "", models.RoleAdmin, true))

		st.Logout()
		_, ok := st.CurrentUser()
		require.False(t, ok)
		_, present, err := kv.Get(KeyUser)
		require.NoError(t, err)
		require.False(t, present)
	})
}

func TestLocations(t *testing.T) {
	st := newTestStore(mock.NewFakeKV(), Snapshot{Locations: models.DefaultLocations()})

	loc := st.AddLocation("Pier")
	require.True(t, loc.IsActive)
	require.Len(t, st.Locations(), 5)

	before := st.Locations()[0].IsActive
	require.True(t, st.ToggleLocation("entrance"))
	require.Equal(t, !before, st.Locations()[0].IsActive)
	require.True(t, st.ToggleLocation("entrance"))
	require.Equal(t, before, st.Locations()[0].IsActive, "double toggle is identity")

	require.False(t, st.ToggleLocation("loc_missing"))
}

func TestOperatorSessions(t *testing.T) {
	ready := models.NewSession("session_r", "R", "castle", "11111", testNow)
	ready.Status = models.StatusOperator
	deletedReady := models.NewSession("session_d", "D", "castle", "22222", testNow)
	deletedReady.Status = models.StatusOperator
	deletedReady.Deleted = true
	pending := models.NewSession("session_p", "P", "castle", "33333", testNow)

	st := newTestStore(mock.NewFakeKV(), Snapshot{
		Sessions: []models.Session{ready, deletedReady, pending},
	})

	ops := st.OperatorSessions()
	require.Len(t, ops, 1)
	require.Equal(t, "session_r", ops[0].ID)
}
