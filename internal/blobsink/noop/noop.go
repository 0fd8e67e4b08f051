// Package noop implements blobsink.Sink as a discard: it reads and drops
// the stream without any network call, and is the default collaborator
// when no backup credentials are configured.
package noop

import (
	"context"
	"io"
)

// Sink discards every upload.
type Sink struct{}

// New creates a noop Sink.
func New() *Sink { return &Sink{} }

// Upload drains content and returns an empty identifier.
func (Sink) Upload(_ context.Context, _ string, content io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, content); err != nil {
		return "", err
	}

	return "", nil
}
