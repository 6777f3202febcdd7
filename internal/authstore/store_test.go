package authstore

import (
	"os"
	"path/filepath"
	"testing"

	"auction-house/internal/models"

	"github.com/stretchr/testify/require"
)

func testSession() models.Session {
	return models.Session{
		Token: "token-123",
		Profile: models.Profile{
			Name:    "anna",
			Email:   "anna@example.com",
			Bio:     "collector",
			Credits: 1000,
		},
	}
}

func TestStore_SaveRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	session := testSession()
	require.NoError(t, store.Save(session))

	token, ok := store.Token()
	require.True(t, ok)
	require.Equal(t, "token-123", token)

	profile, ok := store.Profile()
	require.True(t, ok)
	require.Equal(t, session.Profile, profile)

	// A fresh store over the same file reads the persisted session.
	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	got, ok := reopened.Session()
	require.True(t, ok)
	require.Equal(t, session, got)
}

func TestStore_Clear(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Save(testSession()))
	require.NoError(t, store.Clear())

	_, ok := store.Token()
	require.False(t, ok)
	_, ok = store.Profile()
	require.False(t, ok)

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	_, ok = reopened.Session()
	require.False(t, ok)
}

// A token without a profile (or vice versa) is treated as logged out.
func TestStore_PartialStateIsUnauthenticated(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "token_only", content: `{"token":"abc"}`},
		{name: "profile_only", content: `{"profile":"{\"name\":\"anna\"}"}`},
		{name: "corrupt_file", content: `{{{not json`},
		{name: "corrupt_profile", content: `{"token":"abc","profile":"not-json"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "session.json")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o600))

			store, err := NewFileStore(path)
			require.NoError(t, err)

			_, ok := store.Token()
			require.False(t, ok)
			_, ok = store.Session()
			require.False(t, ok)
		})
	}
}

// A token key embedded in a persisted profile payload never survives
// the round trip; only models.Profile fields do.
func TestStore_TokenInsideProfilePayloadIsDropped(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")
	content := `{"token":"abc","profile":"{\"name\":\"anna\",\"token\":\"leaked\"}"}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	store, err := NewFileStore(path)
	require.NoError(t, err)

	profile, ok := store.Profile()
	require.True(t, ok)
	require.Equal(t, "anna", profile.Name)

	// Re-save and inspect the file: the leaked key is gone.
	require.NoError(t, store.Save(models.Session{Token: "abc", Profile: profile}))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "leaked")
}

func TestStore_SubscribeReceivesAuthChanges(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	var events []bool
	store.Subscribe(func(_ models.Session, authenticated bool) {
		events = append(events, authenticated)
	})

	require.NoError(t, store.Save(testSession()))
	require.NoError(t, store.Clear())

	require.Equal(t, []bool{true, false}, events)
}
