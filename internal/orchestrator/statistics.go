package orchestrator

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Statistics aggregates disposition counts and errors across a single run.
// Per-disposition counters are simple tallies, so each is a plain atomic;
// the error log is compound (a growing slice guarded together), so it takes a mutex.
type Statistics struct {
	downloaded        atomic.Int64
	notDownloadable   atomic.Int64
	stemTracks        atomic.Int64
	failed            atomic.Int64
	alreadyDownloaded atomic.Int64
	alreadyAvailable  atomic.Int64
	bytesDownloaded   atomic.Int64

	errMu  sync.Mutex
	errLog []FailureRecord
}

// FailureRecord is one recorded failure, kept for a post-run summary.
type FailureRecord struct {
	TrackID string
	Err     error
}

// NewStatistics creates an empty Statistics.
func NewStatistics() *Statistics {
	return &Statistics{}
}

// Record increments the counter for the given disposition.
func (s *Statistics) Record(disposition Disposition) {
	switch disposition {
	case DispositionDownloaded:
		s.downloaded.Add(1)
	case DispositionNotDownloadable:
		s.notDownloadable.Add(1)
	case DispositionStemTrack:
		s.stemTracks.Add(1)
	case DispositionFailed:
		s.failed.Add(1)
	case DispositionAlreadyDownloaded:
		s.alreadyDownloaded.Add(1)
	case DispositionAlreadyAvailable:
		s.alreadyAvailable.Add(1)
	}
}

// AddBytesDownloaded adds n to the running byte-transfer total.
func (s *Statistics) AddBytesDownloaded(n int64) {
	s.bytesDownloaded.Add(n)
}

func (s *Statistics) recordFailure(trackID string, err error) {
	s.errMu.Lock()
	defer s.errMu.Unlock()

	s.errLog = append(s.errLog, FailureRecord{TrackID: trackID, Err: err})
}

// Failures returns a copy of the recorded failures.
func (s *Statistics) Failures() []FailureRecord {
	s.errMu.Lock()
	defer s.errMu.Unlock()

	out := make([]FailureRecord, len(s.errLog))
	copy(out, s.errLog)

	return out
}

// Snapshot is an immutable read of the current counters, suitable for
// rendering without holding any lock.
type Snapshot struct {
	Downloaded        int64
	NotDownloadable   int64
	StemTracks        int64
	Failed            int64
	AlreadyDownloaded int64
	AlreadyAvailable  int64
	BytesDownloaded   int64
}

// Snapshot reads the current counters.
func (s *Statistics) Snapshot() Snapshot {
	return Snapshot{
		Downloaded:        s.downloaded.Load(),
		NotDownloadable:   s.notDownloadable.Load(),
		StemTracks:        s.stemTracks.Load(),
		Failed:            s.failed.Load(),
		AlreadyDownloaded: s.alreadyDownloaded.Load(),
		AlreadyAvailable:  s.alreadyAvailable.Load(),
		BytesDownloaded:   s.bytesDownloaded.Load(),
	}
}

// String renders the aggregate-statistics status line.
func (s Snapshot) String() string {
	return fmt.Sprintf(
		"downloaded=%d not_downloadable=%d stem=%d failed=%d already_downloaded=%d already_available=%d",
		s.Downloaded, s.NotDownloadable, s.StemTracks, s.Failed, s.AlreadyDownloaded, s.AlreadyAvailable)
}
