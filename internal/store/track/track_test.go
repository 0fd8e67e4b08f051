package track_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundeo-tools/soundeo-grabber/internal/store/snapshot"
	"github.com/soundeo-tools/soundeo-grabber/internal/store/track"
)

func newStore(t *testing.T) *track.Store {
	t.Helper()

	snap, err := snapshot.Open(t.TempDir())
	require.NoError(t, err)

	return track.New(snap)
}

func TestUpsertAndGet(t *testing.T) {
	t.Parallel()

	store := newStore(t)

	require.NoError(t, store.Upsert(track.Record{ID: "123", Title: "Example", Downloadable: true}))

	record, found := store.Get("123")
	require.True(t, found)
	assert.Equal(t, "Example", record.Title)
}

func TestGet_Missing(t *testing.T) {
	t.Parallel()

	store := newStore(t)

	_, found := store.Get("missing")
	assert.False(t, found)
}

func TestMarkDownloaded(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	require.NoError(t, store.Upsert(track.Record{ID: "123"}))

	require.NoError(t, store.MarkDownloaded("123"))

	record, _ := store.Get("123")
	assert.True(t, record.AlreadyDownloaded)
}

func TestMarkNotDownloadable(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	require.NoError(t, store.Upsert(track.Record{ID: "123", Downloadable: true}))

	require.NoError(t, store.MarkNotDownloadable("123"))

	record, _ := store.Get("123")
	assert.False(t, record.Downloadable)
}

func TestListPendingMirror(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	require.NoError(t, store.Upsert(track.Record{ID: "1", Mirrored: true}))
	require.NoError(t, store.Upsert(track.Record{ID: "2"}))
	require.NoError(t, store.Upsert(track.Record{ID: "3"}))

	var pending []string
	for record := range store.ListPendingMirror() {
		pending = append(pending, record.ID)
	}

	assert.ElementsMatch(t, []string{"2", "3"}, pending)
}
