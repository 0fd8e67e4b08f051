package scheduler_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundeo-tools/soundeo-grabber/internal/client/catalog"
	"github.com/soundeo-tools/soundeo-grabber/internal/scheduler"
	"github.com/soundeo-tools/soundeo-grabber/internal/store/available"
	"github.com/soundeo-tools/soundeo-grabber/internal/store/genre"
	"github.com/soundeo-tools/soundeo-grabber/internal/store/queue"
	"github.com/soundeo-tools/soundeo-grabber/internal/store/snapshot"
	"github.com/soundeo-tools/soundeo-grabber/internal/store/track"
)

// page models one fake listing page: the track IDs on it and their dates.
type page struct {
	trackIDs []string
	dates    map[string]string
}

// fakeCatalog serves a fixed set of pages (1..len(pages)) and 404s beyond that.
type fakeCatalog struct {
	pages []page
}

func (f *fakeCatalog) GetTrackInfo(_ context.Context, trackID string) (*catalog.TrackMetadata, error) {
	for _, p := range f.pages {
		if date, ok := p.dates[trackID]; ok {
			return &catalog.TrackMetadata{ID: trackID, Date: date, Downloadable: true}, nil
		}
	}

	return nil, catalog.ErrTrackNotFound
}

func (f *fakeCatalog) GetDownloadURL(context.Context, string) (string, error) { return "", nil }

func (f *fakeCatalog) FetchListing(_ context.Context, listingURL string) (map[string]struct{}, error) {
	pageNum := pageNumberFromURL(listingURL)
	if pageNum < 1 || pageNum > len(f.pages) {
		return map[string]struct{}{}, nil
	}

	out := make(map[string]struct{})
	for _, id := range f.pages[pageNum-1].trackIDs {
		out[id] = struct{}{}
	}

	return out, nil
}

func (f *fakeCatalog) ProbePageExists(_ context.Context, listingURL string) (bool, error) {
	pageNum := pageNumberFromURL(listingURL)

	return pageNum >= 1 && pageNum <= len(f.pages), nil
}

func (f *fakeCatalog) StreamDownload(context.Context, string) (*catalog.DownloadStream, error) {
	return nil, nil
}

func (f *fakeCatalog) CheckRemainingDownloads(context.Context) (*catalog.BudgetSnapshot, error) {
	return &catalog.BudgetSnapshot{}, nil
}

func (f *fakeCatalog) Search(context.Context, string) ([]catalog.SearchHit, error) { return nil, nil }

func (f *fakeCatalog) GetBaseURL() string { return "https://example.test" }

func pageNumberFromURL(listingURL string) int {
	var n int

	idx := len(listingURL) - 1
	multiplier := 1

	for idx >= 0 && listingURL[idx] >= '0' && listingURL[idx] <= '9' {
		n += int(listingURL[idx]-'0') * multiplier
		multiplier *= 10
		idx--
	}

	return n
}

func newTestStores(t *testing.T) (*genre.Store, *queue.Store, *available.Store, *track.Store) {
	t.Helper()

	snap, err := snapshot.Open(t.TempDir())
	require.NoError(t, err)

	return genre.New(snap), queue.New(snap, queue.NowMonotonicMS), available.New(snap), track.New(snap)
}

// TestRun_WatermarkedWalk mirrors scenario S4: 5 pages, newest on page 1,
// oldest on page 5; only tracks at or after the watermark are enqueued, and
// the watermark advances to the max date seen on each page regardless.
func TestRun_WatermarkedWalk(t *testing.T) {
	t.Parallel()

	genres, queueStore, availableStore, tracks := newTestStores(t)

	require.NoError(t, genres.StartTracking(3, "Techno", "2024-02-15", 0))

	fake := &fakeCatalog{
		pages: []page{
			{trackIDs: []string{"P1A"}, dates: map[string]string{"P1A": "2024-03-01"}},
			{trackIDs: []string{"P2A"}, dates: map[string]string{"P2A": "2024-02-20"}},
			{trackIDs: []string{"P3A"}, dates: map[string]string{"P3A": "2024-02-15"}},
			{trackIDs: []string{"P4A"}, dates: map[string]string{"P4A": "2024-02-01"}},
			{trackIDs: []string{"P5A"}, dates: map[string]string{"P5A": "2024-01-10"}},
		},
	}

	sched := scheduler.New(fake, genres, queueStore, availableStore, tracks)

	result, err := sched.Run(context.Background(), 3, "2024-01-01", "2024-03-31")
	require.NoError(t, err)

	assert.Equal(t, 5, result.LastPage)
	assert.True(t, queueStore.Contains("P1A"))
	assert.True(t, queueStore.Contains("P2A"))
	assert.True(t, queueStore.Contains("P3A"))
	assert.False(t, queueStore.Contains("P4A"))
	assert.False(t, queueStore.Contains("P5A"))
	assert.Equal(t, "2024-03-01", result.Watermark)
}

func TestFindLastPage_ExactBoundary(t *testing.T) {
	t.Parallel()

	genres, queueStore, availableStore, tracks := newTestStores(t)
	require.NoError(t, genres.StartTracking(1, "House", "2024-01-01", 0))

	fake := &fakeCatalog{pages: make([]page, 7)}
	for i := range fake.pages {
		fake.pages[i] = page{dates: map[string]string{}}
	}

	sched := scheduler.New(fake, genres, queueStore, availableStore, tracks)

	result, err := sched.Run(context.Background(), 1, "2024-01-01", "2024-12-31")
	require.NoError(t, err)

	assert.Equal(t, 7, result.LastPage)
}
