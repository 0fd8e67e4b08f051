// Package spotify fetches a playlist's tracks using the client-credentials
// OAuth flow, grounded on anyuan-chen-splitter's spotify.go (the playlist
// JSON shape and token exchange) and kirbs-btw-spotify-playlist-dataset's
// main.go (the go-resty request pattern this module already uses for its
// own Catalog autocomplete client).
package spotify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	tokenURL    = "https://accounts.spotify.com/api/token"
	apiBaseURL  = "https://api.spotify.com/v1"
	playlistURI = "/playlists/%s"

	requestTimeout = 15 * time.Second

	// tokenExpiryMargin refreshes the token a bit before Spotify actually
	// expires it, so a request mid-flight doesn't race the expiry.
	tokenExpiryMargin = 30 * time.Second
)

// ErrMissingCredentials indicates no client ID/secret was configured.
var ErrMissingCredentials = errors.New("spotify client ID/secret not configured")

// Track is one playlist entry, reduced to the fields used to pair against a
// Catalog search hit: title and the first listed artist.
type Track struct {
	ID     string
	Title  string
	Artist string
}

// Client fetches playlist tracks via the client-credentials flow,
// transparently refreshing its access token as it expires.
type Client struct {
	resty        *resty.Client
	clientID     string
	clientSecret string

	mu        sync.Mutex
	token     string
	tokenExpr time.Time
}

// New creates a Client. Returns ErrMissingCredentials if either credential is empty.
func New(clientID, clientSecret string) (*Client, error) {
	if clientID == "" || clientSecret == "" {
		return nil, ErrMissingCredentials
	}

	return &Client{
		resty:        resty.New().SetTimeout(requestTimeout),
		clientID:     clientID,
		clientSecret: clientSecret,
	}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpr) {
		return c.token, nil
	}

	var result tokenResponse

	response, err := c.resty.R().
		SetContext(ctx).
		SetBasicAuth(c.clientID, c.clientSecret).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody("grant_type=client_credentials").
		SetResult(&result).
		Post(tokenURL)
	if err != nil {
		return "", fmt.Errorf("failed to request spotify token: %w", err)
	}

	if response.IsError() {
		return "", fmt.Errorf("spotify token request failed: %s", response.Status())
	}

	c.token = result.AccessToken
	c.tokenExpr = time.Now().Add(time.Duration(result.ExpiresIn)*time.Second - tokenExpiryMargin)

	return c.token, nil
}

type playlistResponse struct {
	Name   string `json:"name"`
	Tracks struct {
		Items []struct {
			Track struct {
				ID      string `json:"id"`
				Name    string `json:"name"`
				Artists []struct {
					Name string `json:"name"`
				} `json:"artists"`
			} `json:"track"`
		} `json:"items"`
	} `json:"tracks"`
}

// PlaylistTracks fetches the tracks on the first page of playlistID's items.
// Spotify's pagination beyond that first page is not followed: `tracks.next`
// is never requested, so later pages of a longer playlist are not returned.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string) ([]Track, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	var result playlistResponse

	response, err := c.resty.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&result).
		Get(apiBaseURL + fmt.Sprintf(playlistURI, playlistID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch spotify playlist: %w", err)
	}

	if response.IsError() {
		return nil, fmt.Errorf("spotify playlist request failed: %s", response.Status())
	}

	tracks := make([]Track, 0, len(result.Tracks.Items))

	for _, item := range result.Tracks.Items {
		var artist string
		if len(item.Track.Artists) > 0 {
			artist = item.Track.Artists[0].Name
		}

		tracks = append(tracks, Track{ID: item.Track.ID, Title: item.Track.Name, Artist: artist})
	}

	return tracks, nil
}
