// Package scheduler walks a Catalog genre's listing pages from the last
// (oldest) page down to page 1, enqueueing tracks at or after the genre's
// persisted watermark.
package scheduler

import (
	"context"
	"fmt"

	"github.com/soundeo-tools/soundeo-grabber/internal/client/catalog"
	"github.com/soundeo-tools/soundeo-grabber/internal/logger"
	"github.com/soundeo-tools/soundeo-grabber/internal/store/available"
	"github.com/soundeo-tools/soundeo-grabber/internal/store/genre"
	"github.com/soundeo-tools/soundeo-grabber/internal/store/queue"
	"github.com/soundeo-tools/soundeo-grabber/internal/store/track"
)

// consecutiveEmptyPagesLimit stops the reverse walk after this many pages in
// a row enqueue nothing new.
const consecutiveEmptyPagesLimit = 3

// Scheduler walks a tracked genre's listing pages oldest-first, enqueueing
// tracks at or after the genre's watermark and advancing that watermark.
type Scheduler struct {
	catalog   catalog.Client
	genres    *genre.Store
	queue     *queue.Store
	available *available.Store
	tracks    *track.Store
}

// New creates a Scheduler.
func New(
	catalogClient catalog.Client,
	genres *genre.Store,
	queueStore *queue.Store,
	availableStore *available.Store,
	tracks *track.Store,
) *Scheduler {
	return &Scheduler{
		catalog:   catalogClient,
		genres:    genres,
		queue:     queueStore,
		available: availableStore,
		tracks:    tracks,
	}
}

// Result summarizes one genre-walk run.
type Result struct {
	LastPage  int
	Enqueued  int
	PagesSeen int
	Watermark string
}

// Run walks genreID's listing pages in [startDate, endDate] from the
// discovered last page down to page 1, enqueueing newly-seen tracks whose
// date is at or after the genre's current watermark, and advancing that
// watermark to the newest date seen so far after every page regardless of
// whether anything was enqueued. The watermark never moves backwards.
func (s *Scheduler) Run(ctx context.Context, genreID uint32, startDate, endDate string) (*Result, error) {
	tracker, ok := s.genres.Get(genreID)
	if !ok {
		return nil, fmt.Errorf("genre %d is not tracked", genreID)
	}

	lastPage, err := s.findLastPage(ctx, genreID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to find last page: %w", err)
	}

	// runStartWatermark is the enqueue filter bound for every page this run
	// touches. It is captured once, here, and never reassigned: pages are
	// walked oldest-first (lastPage down to 1), so a bound that followed
	// each page's maxDateSeen would admit tracks older than the run's
	// starting watermark after an old page, or skip tracks that are still
	// >= it but older than an earlier page's maximum. result.Watermark, by
	// contrast, is the value persisted back to the genre tracker and
	// advances.
	runStartWatermark := tracker.LastCheckedDate

	result := &Result{LastPage: lastPage, Watermark: runStartWatermark}

	consecutiveEmpty := 0

	for page := lastPage; page >= 1; page-- {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		enqueuedThisPage, maxDateSeen, err := s.processPage(ctx, genreID, startDate, endDate, page, runStartWatermark)
		if err != nil {
			return result, fmt.Errorf("failed to process page %d: %w", page, err)
		}

		result.PagesSeen++
		result.Enqueued += enqueuedThisPage

		if maxDateSeen > result.Watermark {
			if err := s.genres.AdvanceWatermark(genreID, maxDateSeen); err != nil {
				return result, fmt.Errorf("failed to advance watermark: %w", err)
			}

			result.Watermark = maxDateSeen
		}

		if enqueuedThisPage == 0 {
			consecutiveEmpty++
		} else {
			consecutiveEmpty = 0
		}

		if consecutiveEmpty >= consecutiveEmptyPagesLimit {
			logger.Debugf(ctx, "genre %d: stopping early after %d empty pages", genreID, consecutiveEmpty)

			break
		}
	}

	return result, nil
}

// processPage fetches one listing page, fetches metadata for every track on
// it, and enqueues those meeting the watermark and dedup criteria. It
// returns the number enqueued and the maximum track date seen on the page
// (across ALL tracks, not only the enqueued ones, so the watermark keeps
// advancing even on pages where every track was already tracked).
func (s *Scheduler) processPage(
	ctx context.Context,
	genreID uint32,
	startDate, endDate string,
	page int,
	watermark string,
) (int, string, error) {
	listingURL := buildListingURL(s.catalog.GetBaseURL(), genreID, startDate, endDate, page)

	trackIDs, err := s.catalog.FetchListing(ctx, listingURL)
	if err != nil {
		return 0, "", err
	}

	var (
		enqueued    int
		maxDateSeen string
	)

	for trackID := range trackIDs {
		metadata, err := s.catalog.GetTrackInfo(ctx, trackID)
		if err != nil {
			logger.Errorf(ctx, "genre %d page %d: failed to fetch metadata for %s: %v", genreID, page, trackID, err)

			continue
		}

		if metadata.Date > maxDateSeen {
			maxDateSeen = metadata.Date
		}

		if metadata.Date < watermark {
			continue
		}

		if s.alreadyTracked(trackID) {
			continue
		}

		if _, err := s.queue.Enqueue(trackID, queue.PriorityNormal); err != nil {
			return enqueued, maxDateSeen, err
		}

		enqueued++
	}

	return enqueued, maxDateSeen, nil
}

// alreadyTracked reports whether trackID is already queued, available, or
// has already been downloaded once, so the genre walk never re-enqueues it.
func (s *Scheduler) alreadyTracked(trackID string) bool {
	if s.queue.Contains(trackID) || s.available.Contains(trackID) {
		return true
	}

	record, ok := s.tracks.Get(trackID)

	return ok && record.AlreadyDownloaded
}

// findLastPage exponentially probes pages (1, 2, 4, 8, ...) until one 404s,
// then binary-searches the gap for the exact boundary, avoiding a linear
// scan through every page number up to the listing's end.
func (s *Scheduler) findLastPage(ctx context.Context, genreID uint32, startDate, endDate string) (int, error) {
	lastExisting := 0
	probe := 1

	for {
		exists, err := s.probePage(ctx, genreID, startDate, endDate, probe)
		if err != nil {
			return 0, err
		}

		if !exists {
			break
		}

		lastExisting = probe
		probe *= 2
	}

	lo, hi := lastExisting, probe

	for hi-lo > 1 {
		mid := (lo + hi) / 2

		exists, err := s.probePage(ctx, genreID, startDate, endDate, mid)
		if err != nil {
			return 0, err
		}

		if exists {
			lo = mid
		} else {
			hi = mid
		}
	}

	return lo, nil
}

func (s *Scheduler) probePage(ctx context.Context, genreID uint32, startDate, endDate string, page int) (bool, error) {
	return s.catalog.ProbePageExists(ctx, buildListingURL(s.catalog.GetBaseURL(), genreID, startDate, endDate, page))
}

func buildListingURL(baseURL string, genreID uint32, startDate, endDate string, page int) string {
	return fmt.Sprintf(
		"%s/list/tracks?availableFilter=1&genreFilter=%d&timeFilter=r_%s_%s&page=%d",
		baseURL, genreID, startDate, endDate, page)
}
