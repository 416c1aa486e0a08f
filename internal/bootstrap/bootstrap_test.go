package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MDharunPrasad/photo-kiosk/internal/models"
	"github.com/MDharunPrasad/photo-kiosk/internal/store"
	"github.com/MDharunPrasad/photo-kiosk/internal/store/mock"
)

func TestHydrate_FirstRunSeedsDefaults(t *testing.T) {
	kv := mock.NewFakeKV()

	st, err := Hydrate(kv)
	require.NoError(t, err)

	require.Empty(t, st.Sessions())
	require.Len(t, st.Locations(), 4)
	require.Equal(t, "entrance", st.Locations()[0].ID)
	_, ok := st.CurrentUser()
	require.False(t, ok)

	// seeds were persisted so the next boot reads them back
	raw, ok, err := kv.Get(store.KeySessions)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "[]", raw)

	_, ok, err = kv.Get(store.KeyLocations)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestHydrate_ExistingData(t *testing.T) {
	kv := mock.NewFakeKV()
	kv.Data[store.KeyUser] = `{"id":"user_1","name":"A","email":"a@x.com","role":"Admin"}`
	kv.Data[store.KeySessions] = `[{"id":"session_1","name":"Priya","location":"castle",` +
		`"date":"2025-06-01T10:00:00Z","status":"pending","sessionKey":"12345","photos":[]}]`
	kv.Data[store.KeyLocations] = `[{"id":"pier","name":"Pier","isActive":false}]`
	kv.Data[store.KeyUsers] = `[{"id":"user_1","name":"A","email":"a@x.com","role":"Admin","password":"p"}]`

	st, err := Hydrate(kv)
	require.NoError(t, err)

	require.Len(t, st.Sessions(), 1)
	require.Equal(t, "session_1", st.Sessions()[0].ID)

	u, ok := st.CurrentUser()
	require.True(t, ok)
	require.Equal(t, "a@x.com", u.Email)

	require.Len(t, st.Locations(), 1)
	require.False(t, st.Locations()[0].IsActive)

	require.True(t, st.Login("a@x.com", "p", models.RoleAdmin, false))
}

func TestHydrate_LegacyStatusesNormalized(t *testing.T) {
	kv := mock.NewFakeKV()
	kv.Data[store.KeySessions] = `[` +
		`{"id":"s1","name":"A","location":"castle","date":"2025-06-01T10:00:00Z","status":"Active","sessionKey":"11111"},` +
		`{"id":"s2","name":"B","location":"castle","date":"2025-06-01T10:00:00Z","status":"Completed","sessionKey":"22222"}]`

	st, err := Hydrate(kv)
	require.NoError(t, err)

	sessions := st.Sessions()
	require.Equal(t, models.StatusPending, sessions[0].Status)
	require.Equal(t, models.StatusCompleted, sessions[1].Status)
	require.NotNil(t, sessions[0].Photos, "missing photo lists become empty, not nil")
}

func TestHydrate_MalformedDataIsFatal(t *testing.T) {
	for key, payload := range map[string]string{
		store.KeyUser:      `{"id":`,
		store.KeySessions:  `[{]`,
		store.KeyLocations: `not json`,
		store.KeyUsers:     `{"oops"}`,
	} {
		kv := mock.NewFakeKV()
		kv.Data[key] = payload

		_, err := Hydrate(kv)
		require.Error(t, err, "malformed %s must abort the load", key)
	}
}

func TestHydrate_EmptyLocationListReseeded(t *testing.T) {
	kv := mock.NewFakeKV()
	kv.Data[store.KeyLocations] = `[]`

	st, err := Hydrate(kv)
	require.NoError(t, err)
	require.Len(t, st.Locations(), 4)
}
