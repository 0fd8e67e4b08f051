package ipfs_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundeo-tools/soundeo-grabber/internal/blobsink/ipfs"
)

func TestSink_Upload(t *testing.T) {
	t.Parallel()

	var gotAuth bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		gotAuth = ok && user == "key" && pass == "secret"

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close() //nolint:errcheck

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"Hash": "Qm123"}) //nolint:errcheck,errchkjson
	}))
	defer server.Close()

	sink := ipfs.New(server.URL, "key", "secret")

	hash, err := sink.Upload(context.Background(), "snapshot.json", strings.NewReader(`{"x":1}`))
	require.NoError(t, err)
	assert.Equal(t, "Qm123", hash)
	assert.True(t, gotAuth)
}

func TestSink_Upload_ServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	sink := ipfs.New(server.URL, "key", "secret")

	_, err := sink.Upload(context.Background(), "snapshot.json", strings.NewReader("data"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ipfs.ErrUploadFailed)
}
