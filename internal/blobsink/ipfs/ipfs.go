// Package ipfs implements blobsink.Sink against an IPFS pinning service's
// HTTP API: a multipart POST to the `/api/v0/add` endpoint with basic-auth
// API credentials, reading the returned hash out of the `Hash` JSON field.
package ipfs

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
)

// uploadTimeout matches the original's 600-second client timeout, since
// pinning can take a while for a large snapshot.
const uploadTimeout = 600 * time.Second

// addEndpoint is the IPFS HTTP API's file-add RPC.
const addEndpoint = "/api/v0/add"

// ErrUploadFailed indicates the pinning service rejected the upload.
var ErrUploadFailed = errors.New("ipfs upload failed")

// Sink uploads content to an IPFS pinning endpoint using basic-auth API credentials.
type Sink struct {
	resty *resty.Client
}

// New creates a Sink against baseURL (e.g. "https://ipfs.infura.io:5001")
// authenticating with apiKey/apiKeySecret.
func New(baseURL, apiKey, apiKeySecret string) *Sink {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(uploadTimeout).
		SetBasicAuth(apiKey, apiKeySecret)

	return &Sink{resty: client}
}

type addResponse struct {
	Hash string `json:"Hash"`
}

// Upload posts content as a multipart file named filename and returns the
// resulting IPFS content hash.
func (s *Sink) Upload(ctx context.Context, filename string, content io.Reader) (string, error) {
	var result addResponse

	response, err := s.resty.R().
		SetContext(ctx).
		SetFileReader("file", filename, content).
		SetResult(&result).
		Post(addEndpoint)
	if err != nil {
		return "", err
	}

	if response.IsError() {
		return "", ErrUploadFailed
	}

	return result.Hash, nil
}
