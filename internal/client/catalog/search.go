package catalog

import (
	"context"
	"net/http"

	"github.com/go-resty/resty/v2"

	http_transport "github.com/soundeo-tools/soundeo-grabber/internal/transport/http"
)

// searchClient wraps a resty.Client dedicated to the autocomplete endpoint.
// It is kept separate from the main *http.Client so the AJAX-contract
// headers used by the metadata/download endpoints don't leak into the
// much simpler suggestion query, and vice versa.
type searchClient struct {
	resty   *resty.Client
	baseURL string
}

func newSearchClient(baseURL, sessionCookie string) *searchClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(requestTimeout).
		SetHeader("User-Agent", http_transport.DefaultUserAgent).
		SetCookie(&http.Cookie{Name: "session", Value: sessionCookie})

	return &searchClient{resty: client, baseURL: baseURL}
}

func (s *searchClient) search(ctx context.Context, term string) ([]SearchHit, error) {
	var envelope searchResponseEnvelope

	response, err := s.resty.R().
		SetContext(ctx).
		SetQueryParam("term", term).
		SetResult(&envelope).
		Get(searchURI)
	if err != nil {
		return nil, err
	}

	if response.IsError() {
		return nil, ErrUnexpectedHTTPStatus
	}

	return envelope.Tracks, nil
}
