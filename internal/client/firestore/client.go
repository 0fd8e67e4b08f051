package firestore

//go:generate $MOCKGEN -source=client.go -destination=mocks/client_mock.go

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/soundeo-tools/soundeo-grabber/internal/logger"
)

// tokenRefreshMargin is how far ahead of expiry a token is proactively refreshed.
const tokenRefreshMargin = 5 * time.Minute

// maxBatchWriteOperations is Firestore's own hard ceiling per batchWrite call.
const maxBatchWriteOperations = 500

const batchWriteRetryAttempts = 3

// Errors returned by the client.
var (
	ErrDocumentNotFound   = errors.New("document not found")
	ErrBatchTooLarge      = errors.New("batch exceeds Firestore's 500-operation limit")
	ErrBatchWriteFailed   = errors.New("batch write failed after retries")
	ErrTokenRefreshFailed = errors.New("token refresh failed")
)

// TokenProvider refreshes or re-authenticates to produce a new access token.
// Implementations may open a browser flow, call a refresh-token endpoint,
// or both — the client doesn't care, it only enforces the expiry check.
type TokenProvider interface {
	RefreshToken(ctx context.Context) (accessToken string, expiresAt time.Time, err error)
}

// defaultEndpoint is the production Firestore REST API host. Tests override
// it via withEndpoint to point at an httptest.Server.
const defaultEndpoint = "https://firestore.googleapis.com/v1"

// Client is a small REST client for a single user's namespace within a
// Firestore-shaped document store (`users/{user_id}/{collection}/{doc_id}`).
type Client struct {
	httpClient *http.Client
	endpoint   string
	projectID  string
	userID     string
	provider   TokenProvider

	accessToken string
	expiresAt   time.Time
}

// NewClient creates a Client for the given Firestore project and user namespace.
func NewClient(httpClient *http.Client, projectID, userID string, provider TokenProvider) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{httpClient: httpClient, endpoint: defaultEndpoint, projectID: projectID, userID: userID, provider: provider}
}

// withEndpoint overrides the REST API host, for tests pointed at an httptest.Server.
func (c *Client) withEndpoint(endpoint string) *Client {
	c.endpoint = endpoint

	return c
}

func (c *Client) baseURL() string {
	return fmt.Sprintf("%s/projects/%s/databases/(default)/documents", c.endpoint, c.projectID)
}

func (c *Client) documentPath(collection, documentID string) string {
	return fmt.Sprintf("%s/users/%s/%s/%s", c.baseURL(), url.PathEscape(c.userID), collection, url.PathEscape(documentID))
}

func (c *Client) collectionPath(collection string) string {
	return fmt.Sprintf("%s/users/%s/%s", c.baseURL(), url.PathEscape(c.userID), collection)
}

// ensureToken refreshes the access token if it's within tokenRefreshMargin of
// expiring. Failure here is fatal — every caller propagates it.
func (c *Client) ensureToken(ctx context.Context) error {
	if time.Now().Add(tokenRefreshMargin).Before(c.expiresAt) {
		return nil
	}

	token, expiresAt, err := c.provider.RefreshToken(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTokenRefreshFailed, err)
	}

	c.accessToken = token
	c.expiresAt = expiresAt

	return nil
}

type document struct {
	Name   string           `json:"name,omitempty"`
	Fields map[string]Value `json:"fields"`
}

// Save creates or replaces a single document's fields.
func (c *Client) Save(ctx context.Context, collection, documentID string, fields map[string]any) error {
	if err := c.ensureToken(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(document{Fields: EncodeFields(fields)})
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	request, err := http.NewRequestWithContext(
		ctx, http.MethodPatch, c.documentPath(collection, documentID), bytes.NewReader(body))
	if err != nil {
		return err
	}

	c.authorize(request)
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close() //nolint:errcheck

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("firestore save failed: %d", response.StatusCode)
	}

	return nil
}

// Load reads one document's fields. Returns (nil, nil) if not found.
func (c *Client) Load(ctx context.Context, collection, documentID string) (map[string]any, error) {
	if err := c.ensureToken(ctx); err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.documentPath(collection, documentID), http.NoBody)
	if err != nil {
		return nil, err
	}

	c.authorize(request)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close() //nolint:errcheck

	if response.StatusCode == http.StatusNotFound {
		return nil, nil //nolint:nilnil // absence is a valid, expected outcome here.
	}

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("firestore load failed: %d", response.StatusCode)
	}

	var doc document
	if err := json.NewDecoder(response.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}

	return DecodeFields(doc.Fields), nil
}

// Delete removes one document. Not finding it is not an error.
func (c *Client) Delete(ctx context.Context, collection, documentID string) error {
	if err := c.ensureToken(ctx); err != nil {
		return err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.documentPath(collection, documentID), http.NoBody)
	if err != nil {
		return err
	}

	c.authorize(request)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close() //nolint:errcheck

	if response.StatusCode != http.StatusOK && response.StatusCode != http.StatusNotFound {
		return fmt.Errorf("firestore delete failed: %d", response.StatusCode)
	}

	return nil
}

func (c *Client) authorize(request *http.Request) {
	request.Header.Set("Authorization", "Bearer "+c.accessToken)
}

// Document is one item returned by List: its ID within the collection and
// its decoded fields.
type Document struct {
	ID     string
	Fields map[string]any
}

type listPageResponse struct {
	Documents     []document `json:"documents"`
	NextPageToken string     `json:"nextPageToken"`
}

const listPageSize = 1000

// List reads every document in a collection, following nextPageToken until
// the server stops returning one.
func (c *Client) List(ctx context.Context, collection string) ([]Document, error) {
	var (
		out       []Document
		pageToken string
	)

	for {
		if err := c.ensureToken(ctx); err != nil {
			return out, err
		}

		requestURL := fmt.Sprintf("%s?pageSize=%d", c.collectionPath(collection), listPageSize)
		if pageToken != "" {
			requestURL += "&pageToken=" + url.QueryEscape(pageToken)
		}

		request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, http.NoBody)
		if err != nil {
			return out, err
		}

		c.authorize(request)

		response, err := c.httpClient.Do(request)
		if err != nil {
			return out, err
		}

		if response.StatusCode != http.StatusOK {
			response.Body.Close() //nolint:errcheck

			return out, fmt.Errorf("firestore list failed: %d", response.StatusCode)
		}

		var page listPageResponse
		if err := json.NewDecoder(response.Body).Decode(&page); err != nil {
			response.Body.Close() //nolint:errcheck

			return out, fmt.Errorf("failed to decode list page: %w", err)
		}

		response.Body.Close() //nolint:errcheck

		for _, doc := range page.Documents {
			out = append(out, Document{ID: documentIDFromName(doc.Name), Fields: DecodeFields(doc.Fields)})
		}

		c.logf(ctx, "firestore: listed page of %d documents from %s", len(page.Documents), collection)

		if page.NextPageToken == "" {
			return out, nil
		}

		pageToken = page.NextPageToken
	}
}

func documentIDFromName(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '/' {
			return name[i+1:]
		}
	}

	return name
}

// WriteItem is one document to upsert within a BatchWrite call.
type WriteItem struct {
	Collection string
	DocumentID string
	Fields     map[string]any
}

type batchWriteRequest struct {
	Writes []batchWrite `json:"writes"`
}

type batchWrite struct {
	Update document `json:"update"`
}

type batchWriteResponse struct {
	Status []struct {
		Code int `json:"code"`
	} `json:"status"`
}

// BatchWrite upserts items in chunks of at most maxBatchWriteOperations,
// retrying each chunk up to batchWriteRetryAttempts times with linear
// backoff, honoring Firestore's 500-operation-per-request limit on the
// `:batchWrite` endpoint.
func (c *Client) BatchWrite(ctx context.Context, items []WriteItem) error {
	for start := 0; start < len(items); start += maxBatchWriteOperations {
		end := start + maxBatchWriteOperations
		if end > len(items) {
			end = len(items)
		}

		if err := c.batchWriteChunk(ctx, items[start:end]); err != nil {
			return err
		}
	}

	return nil
}

func (c *Client) batchWriteChunk(ctx context.Context, items []WriteItem) error {
	writes := make([]batchWrite, len(items))
	for i, item := range items {
		writes[i] = batchWrite{Update: document{
			Name:   c.documentName(c.documentPath(item.Collection, item.DocumentID)),
			Fields: EncodeFields(item.Fields),
		}}
	}

	body, err := json.Marshal(batchWriteRequest{Writes: writes})
	if err != nil {
		return fmt.Errorf("failed to encode batch write: %w", err)
	}

	var lastErr error

	for attempt := 1; attempt <= batchWriteRetryAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt-1) * time.Second):
			}
		}

		if err := c.ensureToken(ctx); err != nil {
			return err
		}

		lastErr = c.sendBatchWrite(ctx, body)
		if lastErr == nil {
			return nil
		}

		c.logf(ctx, "firestore: batch write attempt %d/%d failed: %v", attempt, batchWriteRetryAttempts, lastErr)
	}

	return fmt.Errorf("%w: %w", ErrBatchWriteFailed, lastErr)
}

func (c *Client) sendBatchWrite(ctx context.Context, body []byte) error {
	requestURL := c.baseURL() + ":batchWrite"

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(body))
	if err != nil {
		return err
	}

	c.authorize(request)
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close() //nolint:errcheck

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("batchWrite request failed: %d", response.StatusCode)
	}

	var result batchWriteResponse
	if err := json.NewDecoder(response.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode batchWrite response: %w", err)
	}

	for _, status := range result.Status {
		if status.Code != 0 {
			return fmt.Errorf("batchWrite entry failed with status code %d", status.Code)
		}
	}

	return nil
}

// documentName strips the REST host prefix from a document path, producing
// the `projects/.../documents/...` form Firestore expects in `update.name`.
func (c *Client) documentName(fullPath string) string {
	hostPrefix := c.endpoint + "/"

	if len(fullPath) > len(hostPrefix) && fullPath[:len(hostPrefix)] == hostPrefix {
		return fullPath[len(hostPrefix):]
	}

	return fullPath
}

// logf is a context-accepting logger wrapper for the rare case a caller
// wants to narrate a Firestore operation at call sites.
func (c *Client) logf(ctx context.Context, format string, args ...any) {
	logger.Debugf(ctx, format, args...)
}
