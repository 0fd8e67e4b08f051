package noop_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundeo-tools/soundeo-grabber/internal/blobsink/noop"
)

func TestSink_UploadDrainsAndReturnsEmptyHash(t *testing.T) {
	t.Parallel()

	sink := noop.New()

	hash, err := sink.Upload(context.Background(), "snapshot.json", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Empty(t, hash)
}
