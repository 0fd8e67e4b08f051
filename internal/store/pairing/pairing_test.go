package pairing_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundeo-tools/soundeo-grabber/internal/store/pairing"
)

func newStore(t *testing.T) *pairing.Store {
	t.Helper()

	store, err := pairing.Open(filepath.Join(t.TempDir(), "pairings.db"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestLookup_Missing(t *testing.T) {
	t.Parallel()

	store := newStore(t)

	_, found, err := store.Lookup("spotify123")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSaveAndLookup(t *testing.T) {
	t.Parallel()

	store := newStore(t)

	require.NoError(t, store.Save("spotify123", "catalog456", "Some Title", "Some Artist", 1000))

	catalogTrackID, found, err := store.Lookup("spotify123")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "catalog456", catalogTrackID)
}

func TestSave_OverwritesExistingPairing(t *testing.T) {
	t.Parallel()

	store := newStore(t)

	require.NoError(t, store.Save("spotify123", "catalog456", "Title", "Artist", 1000))
	require.NoError(t, store.Save("spotify123", "catalog789", "Title", "Artist", 2000))

	catalogTrackID, found, err := store.Lookup("spotify123")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "catalog789", catalogTrackID)
}
