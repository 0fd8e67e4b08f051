package catalog

//go:generate $MOCKGEN -source=client.go -destination=mocks/client_mock.go

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/soundeo-tools/soundeo-grabber/internal/config"
	http_transport "github.com/soundeo-tools/soundeo-grabber/internal/transport/http"
	"github.com/soundeo-tools/soundeo-grabber/internal/utils"
)

// Client defines the interface for interacting with the catalog site.
type Client interface {
	// GetTrackInfo fetches a track's current metadata.
	GetTrackInfo(ctx context.Context, trackID string) (*TrackMetadata, error)
	// GetDownloadURL acquires a one-time download URL for a track. The call
	// itself counts against the site's rate budget, regardless of outcome.
	GetDownloadURL(ctx context.Context, trackID string) (string, error)
	// FetchListing scrapes a listing page for every referenced track ID.
	FetchListing(ctx context.Context, listingURL string) (map[string]struct{}, error)
	// ProbePageExists reports whether a listing page exists (i.e. does not 404).
	ProbePageExists(ctx context.Context, pageURL string) (bool, error)
	// StreamDownload opens a download URL for a single, one-shot read of the file.
	StreamDownload(ctx context.Context, downloadURL string) (*DownloadStream, error)
	// CheckRemainingDownloads performs the login handshake and reports the
	// current rate budget counters.
	CheckRemainingDownloads(ctx context.Context) (*BudgetSnapshot, error)
	// Search runs an autocomplete query, used to pair a Spotify title/artist to a track.
	Search(ctx context.Context, term string) ([]SearchHit, error)
	// GetBaseURL returns the base URL of the catalog site.
	GetBaseURL() string
}

// ClientImpl implements Client against the catalog site's AJAX contract.
type ClientImpl struct {
	cfg     *config.Config
	baseURL string

	httpClient   *http.Client
	searchClient *searchClient

	limiter *rate.Limiter

	metadataCache *lru.Cache[string, *TrackMetadata]
}

// NewClient creates and returns a new instance of ClientImpl.
func NewClient(cfg *config.Config) (Client, error) {
	baseURL, err := url.Parse(cfg.CatalogBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog base URL: %w", err)
	}

	cookies, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	cookies.SetCookies(baseURL, []*http.Cookie{{
		Name:  "session",
		Value: cfg.SessionCookie,
	}})

	dialer := &net.Dialer{Timeout: connectTimeout}
	baseTransport := &http.Transport{DialContext: dialer.DialContext}

	httpClient := &http.Client{
		Transport: http_transport.NewUserAgentInjector(
			http_transport.NewLogTransport(baseTransport, 0),
			utils.NewSimpleUserAgentProvider(http_transport.DefaultUserAgent)),
		Jar:     cookies,
		Timeout: requestTimeout,
	}

	metadataCache, err := lru.New[string, *TrackMetadata](metadataCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata cache: %w", err)
	}

	return &ClientImpl{
		cfg:           cfg,
		baseURL:       baseURL.String(),
		httpClient:    httpClient,
		searchClient:  newSearchClient(baseURL.String(), cfg.SessionCookie),
		limiter:       rate.NewLimiter(rate.Limit(perSecondRateLimit), rateLimitBurst),
		metadataCache: metadataCache,
	}, nil
}

// GetBaseURL returns the base URL of the catalog site.
func (c *ClientImpl) GetBaseURL() string {
	return c.baseURL
}

// GetTrackInfo fetches a track's current metadata, consulting the in-memory cache first.
func (c *ClientImpl) GetTrackInfo(ctx context.Context, trackID string) (*TrackMetadata, error) {
	if cached, ok := c.metadataCache.Get(trackID); ok {
		return cached, nil
	}

	route, err := url.JoinPath(c.baseURL, fmt.Sprintf(trackInfoURIFormat, trackID))
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Track *TrackMetadata `json:"track"`
	}

	statusCode, err := c.getJSON(ctx, route, &envelope)
	if err != nil {
		if statusCode == http.StatusNotFound {
			return nil, ErrTrackNotFound
		}

		return nil, err
	}

	if envelope.Track == nil {
		return nil, fmt.Errorf("%w: missing track", ErrParseResponse)
	}

	c.metadataCache.Add(trackID, envelope.Track)

	return envelope.Track, nil
}

// GetDownloadURL acquires a one-time download URL for a track. This call
// counts against the site's rate budget even when it fails, so callers must
// have already decremented their local budget tracking before invoking it.
func (c *ClientImpl) GetDownloadURL(ctx context.Context, trackID string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	route, err := url.JoinPath(c.baseURL, fmt.Sprintf(downloadURLURIFormat, trackID))
	if err != nil {
		return "", err
	}

	request, err := c.newAJAXRequest(ctx, http.MethodGet, route, nil)
	if err != nil {
		return "", err
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return "", err
	}
	defer response.Body.Close() //nolint:errcheck // body close errors carry no recovery action here.

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	body, err := readAllLimited(response.Body)
	if err != nil {
		return "", err
	}

	return parseDownloadURLResponse(body)
}

// FetchListing scrapes a listing page for every referenced track ID.
func (c *ClientImpl) FetchListing(ctx context.Context, listingURL string) (map[string]struct{}, error) {
	request, err := c.newAJAXRequest(ctx, http.MethodGet, listingURL, nil)
	if err != nil {
		return nil, err
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close() //nolint:errcheck

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	return parseListingPage(response.Body)
}

// ProbePageExists reports whether a listing page exists (i.e. does not 404).
func (c *ClientImpl) ProbePageExists(ctx context.Context, pageURL string) (bool, error) {
	request, err := c.newAJAXRequest(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return false, err
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return false, err
	}
	defer response.Body.Close() //nolint:errcheck

	return response.StatusCode != http.StatusNotFound, nil
}

// StreamDownload opens a download URL for a single, one-shot read of the file.
func (c *ClientImpl) StreamDownload(ctx context.Context, downloadURL string) (*DownloadStream, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}

	if response.StatusCode != http.StatusOK && response.StatusCode != http.StatusPartialContent {
		response.Body.Close() //nolint:errcheck,gosec

		return nil, fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	filename, err := utils.ParseContentDispositionFilename(response.Header.Get("Content-Disposition"))
	if err != nil {
		response.Body.Close() //nolint:errcheck,gosec

		return nil, fmt.Errorf("%w: %w", ErrMissingContentDisposition, err)
	}

	return &DownloadStream{
		Filename: filename,
		Size:     response.ContentLength,
		Body:     response.Body,
	}, nil
}

// CheckRemainingDownloads performs the login handshake and reports the
// current rate budget counters.
func (c *ClientImpl) CheckRemainingDownloads(ctx context.Context) (*BudgetSnapshot, error) {
	route, err := url.JoinPath(c.baseURL, loginHandshakeURI)
	if err != nil {
		return nil, err
	}

	request, err := c.newAJAXRequest(ctx, http.MethodGet, route, nil)
	if err != nil {
		return nil, err
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close() //nolint:errcheck

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	return parseBudgetSnapshot(response.Body)
}

// Search runs an autocomplete query, used to pair a Spotify title/artist to a track.
func (c *ClientImpl) Search(ctx context.Context, term string) ([]SearchHit, error) {
	return c.searchClient.search(ctx, term)
}

// newAJAXRequest builds a request carrying the catalog site's documented AJAX
// header contract: accept/content-type pairing and the XMLHttpRequest marker.
func (c *ClientImpl) newAJAXRequest(
	ctx context.Context,
	method, route string,
	query url.Values,
) (*http.Request, error) {
	request, err := http.NewRequestWithContext(ctx, method, route, http.NoBody)
	if err != nil {
		return nil, err
	}

	if query != nil {
		request.URL.RawQuery = query.Encode()
	}

	request.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	request.Header.Set("Accept-Language", "en-US,en;q=0.9")
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	request.Header.Set("X-Requested-With", "XMLHttpRequest")

	return request, nil
}

func (c *ClientImpl) getJSON(ctx context.Context, route string, dest any) (int, error) {
	request, err := c.newAJAXRequest(ctx, http.MethodGet, route, nil)
	if err != nil {
		return 0, err
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return 0, err
	}
	defer response.Body.Close() //nolint:errcheck

	if response.StatusCode != http.StatusOK {
		return response.StatusCode, fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	if err = decodeJSON(response.Body, dest); err != nil {
		return response.StatusCode, err
	}

	return response.StatusCode, nil
}
