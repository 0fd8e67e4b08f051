// Package blobsink defines the optional content-addressed backup path: a
// BlobSink uploads an arbitrary byte stream (the serialized snapshot
// document, in this module's use) and returns a content identifier.
package blobsink

import (
	"context"
	"io"
)

// Sink uploads a stream and returns its content identifier (e.g. an IPFS hash).
type Sink interface {
	Upload(ctx context.Context, filename string, content io.Reader) (string, error)
}
