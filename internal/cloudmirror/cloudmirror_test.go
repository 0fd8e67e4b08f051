package cloudmirror_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundeo-tools/soundeo-grabber/internal/client/firestore"
	"github.com/soundeo-tools/soundeo-grabber/internal/cloudmirror"
	"github.com/soundeo-tools/soundeo-grabber/internal/store/queue"
	"github.com/soundeo-tools/soundeo-grabber/internal/store/snapshot"
	"github.com/soundeo-tools/soundeo-grabber/internal/store/track"
)

// fakeCloudStore is an in-memory stand-in for the Firestore REST client,
// keyed the same way: collection -> documentID -> fields.
type fakeCloudStore struct {
	mu         sync.Mutex
	documents  map[string]map[string]map[string]any
	saveCalls  int
	batchCalls int
}

func newFakeCloudStore(seed map[string]map[string]map[string]any) *fakeCloudStore {
	if seed == nil {
		seed = make(map[string]map[string]map[string]any)
	}

	return &fakeCloudStore{documents: seed}
}

func (f *fakeCloudStore) List(_ context.Context, collection string) ([]firestore.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []firestore.Document
	for id, fields := range f.documents[collection] {
		out = append(out, firestore.Document{ID: id, Fields: fields})
	}

	return out, nil
}

func (f *fakeCloudStore) Save(_ context.Context, collection, documentID string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.saveCalls++

	if f.documents[collection] == nil {
		f.documents[collection] = make(map[string]map[string]any)
	}

	f.documents[collection][documentID] = fields

	return nil
}

func (f *fakeCloudStore) BatchWrite(_ context.Context, items []firestore.WriteItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.batchCalls++

	for _, item := range items {
		if f.documents[item.Collection] == nil {
			f.documents[item.Collection] = make(map[string]map[string]any)
		}

		f.documents[item.Collection][item.DocumentID] = item.Fields
	}

	return nil
}

func newTestStores(t *testing.T) (*track.Store, *queue.Store) {
	t.Helper()

	snap, err := snapshot.Open(t.TempDir())
	require.NoError(t, err)

	return track.New(snap), queue.New(snap, queue.NowMonotonicMS)
}

func TestMirrorTracks_SkipsAlreadyRemote(t *testing.T) {
	t.Parallel()

	tracks, queueStore := newTestStores(t)

	require.NoError(t, tracks.Upsert(track.Record{ID: "T1", Title: "One", Downloadable: true}))
	require.NoError(t, tracks.Upsert(track.Record{ID: "T2", Title: "Two", Downloadable: true}))

	cloud := newFakeCloudStore(map[string]map[string]map[string]any{
		"soundeo_tracks": {"T1": {"title": "One"}},
	})

	mirror := cloudmirror.New(cloud, tracks, queueStore, 3, 20)

	result, err := mirror.MirrorTracks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.AlreadyMirrored)
	assert.Equal(t, 1, result.Written)
	assert.Equal(t, 1, cloud.batchCalls)

	t1, _ := tracks.Get("T1")
	t2, _ := tracks.Get("T2")
	assert.True(t, t1.Mirrored)
	assert.True(t, t2.Mirrored)
}

func TestMigrateQueue_SkipsAlreadyRemoteAndMarksCompleted(t *testing.T) {
	t.Parallel()

	tracks, queueStore := newTestStores(t)

	_, err := queueStore.Enqueue("Q1", queue.PriorityNormal)
	require.NoError(t, err)
	_, err = queueStore.Enqueue("Q2", queue.PriorityHigh)
	require.NoError(t, err)

	cloud := newFakeCloudStore(map[string]map[string]map[string]any{
		"queued_tracks": {"Q1": {"track_id": "Q1"}},
	})

	mirror := cloudmirror.New(cloud, tracks, queueStore, 2, 20)

	result, err := mirror.MigrateQueue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.AlreadyMirrored)
	assert.Equal(t, int64(1), result.Completed)
	assert.Equal(t, int64(0), result.Failed)
	assert.Equal(t, 1, cloud.saveCalls)
}

func TestMigrateQueue_WritesAddedAtAndOrderKeyAsDouble(t *testing.T) {
	t.Parallel()

	tracks, queueStore := newTestStores(t)

	_, err := queueStore.Enqueue("Q1", queue.PriorityNormal)
	require.NoError(t, err)

	cloud := newFakeCloudStore(nil)

	mirror := cloudmirror.New(cloud, tracks, queueStore, 2, 20)

	_, err = mirror.MigrateQueue(context.Background())
	require.NoError(t, err)

	fields := cloud.documents["queued_tracks"]["Q1"]
	require.Contains(t, fields, "added_at")
	require.Contains(t, fields, "order_key")

	entries := queueStore.DequeueSorted()
	require.Len(t, entries, 1)
	assert.Equal(t, entries[0].AddedAt, fields["added_at"])

	orderKey, ok := fields["order_key"].(firestore.Double)
	require.True(t, ok, "order_key should be wrapped in firestore.Double so it always encodes as a doubleValue")
	assert.Equal(t, firestore.Double(entries[0].OrderKey), orderKey)
}
