package orchestrator

import (
	"context"
	"errors"

	"github.com/soundeo-tools/soundeo-grabber/internal/logger"
)

// Common errors for the orchestrator.
var (
	// ErrIncompleteDownload indicates the downloaded file size doesn't match the declared size.
	ErrIncompleteDownload = errors.New("incomplete download")
	// ErrBudgetExhausted indicates Phase 1 stopped because no budget remained even after a refresh.
	ErrBudgetExhausted = errors.New("rate budget exhausted")
)

// ErrorContext carries the information needed to record and log a failure
// against a specific track, without requiring every call site to format its own message.
type ErrorContext struct {
	TrackID string
	Phase   string
}

// ErrorHandler centralizes failure logging and statistics recording so
// worker loops don't duplicate that bookkeeping inline.
type ErrorHandler struct {
	stats *Statistics
}

// NewErrorHandler creates an error handler recording into stats.
func NewErrorHandler(stats *Statistics) *ErrorHandler {
	return &ErrorHandler{stats: stats}
}

// Handle logs and records a non-nil error, returning true if it was handled
// (i.e. err was non-nil). Context cancellation is recorded but not logged,
// since it's expected during graceful shutdown.
func (h *ErrorHandler) Handle(ctx context.Context, err error, errCtx ErrorContext) bool {
	if err == nil {
		return false
	}

	if !errors.Is(err, context.Canceled) {
		logger.Errorf(ctx, "%s failed for track %s: %v", errCtx.Phase, errCtx.TrackID, err)
	}

	h.stats.recordFailure(errCtx.TrackID, err)

	return true
}
