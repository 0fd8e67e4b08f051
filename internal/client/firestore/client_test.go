package firestore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticTokenProvider always returns the same token, far from expiry.
type staticTokenProvider struct {
	calls atomic.Int32
}

func (p *staticTokenProvider) RefreshToken(context.Context) (string, time.Time, error) {
	p.calls.Add(1)

	return "test-token", time.Now().Add(time.Hour), nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *staticTokenProvider) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider := &staticTokenProvider{}
	client := NewClient(server.Client(), "test-project", "user-1", provider).withEndpoint(server.URL)

	return client, provider
}

func TestClient_SaveAndLoad(t *testing.T) {
	t.Parallel()

	var stored document

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPatch:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&stored))
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			require.NoError(t, json.NewEncoder(w).Encode(stored))
		}
	})

	ctx := context.Background()

	err := client.Save(ctx, "tracks", "track-1", map[string]any{
		"title": "Anthem",
		"plays": int64(42),
	})
	require.NoError(t, err)

	fields, err := client.Load(ctx, "tracks", "track-1")
	require.NoError(t, err)
	assert.Equal(t, "Anthem", fields["title"])
	assert.Equal(t, int64(42), fields["plays"])
}

func TestClient_LoadNotFound(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	fields, err := client.Load(context.Background(), "tracks", "missing")
	require.NoError(t, err)
	assert.Nil(t, fields)
}

func TestClient_List_FollowsPageToken(t *testing.T) {
	t.Parallel()

	var requestCount int

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requestCount++

		w.Header().Set("Content-Type", "application/json")

		if r.URL.Query().Get("pageToken") == "" {
			json.NewEncoder(w).Encode(listPageResponse{ //nolint:errcheck,errchkjson
				Documents: []document{
					{Name: "projects/test-project/databases/(default)/documents/users/user-1/tracks/a",
						Fields: EncodeFields(map[string]any{"title": "A"})},
				},
				NextPageToken: "page-2",
			})

			return
		}

		json.NewEncoder(w).Encode(listPageResponse{ //nolint:errcheck,errchkjson
			Documents: []document{
				{Name: "projects/test-project/databases/(default)/documents/users/user-1/tracks/b",
					Fields: EncodeFields(map[string]any{"title": "B"})},
			},
		})
	})

	docs, err := client.List(context.Background(), "tracks")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, "B", docs[1].Fields["title"])
	assert.Equal(t, 2, requestCount)
}

func TestClient_BatchWrite_ChunksAndRetries(t *testing.T) {
	t.Parallel()

	var (
		attempts   int
		chunkSizes []int
	)

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, ":batchWrite"))

		var req batchWriteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		chunkSizes = append(chunkSizes, len(req.Writes))

		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(batchWriteResponse{}) //nolint:errcheck,errchkjson
	})

	items := make([]WriteItem, maxBatchWriteOperations+10)
	for i := range items {
		items[i] = WriteItem{Collection: "tracks", DocumentID: "t", Fields: map[string]any{"i": i}}
	}

	err := client.BatchWrite(context.Background(), items)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, attempts, 3) // first chunk fails once then succeeds, second chunk succeeds first try.
	assert.Contains(t, chunkSizes, maxBatchWriteOperations)
	assert.Contains(t, chunkSizes, 10)
}

func TestClient_BatchWrite_FailsAfterRetriesExhausted(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := client.BatchWrite(context.Background(), []WriteItem{{Collection: "tracks", DocumentID: "t"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBatchWriteFailed)
}

func TestClient_EnsureToken_RefreshesOnlyNearExpiry(t *testing.T) {
	t.Parallel()

	client, provider := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	ctx := context.Background()

	_, err := client.Load(ctx, "tracks", "x")
	require.NoError(t, err)
	_, err = client.Load(ctx, "tracks", "y")
	require.NoError(t, err)

	assert.Equal(t, int32(1), provider.calls.Load())
}
