package firestore

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// datastoreScope is the OAuth scope required to read/write Firestore in
// Datastore mode via the REST API.
const datastoreScope = "https://www.googleapis.com/auth/datastore"

// ServiceAccountProvider implements TokenProvider against a Google service
// account key (the engine itself never performs an interactive OAuth flow;
// see internal/service/auth for the analogous Catalog-side browser login).
type ServiceAccountProvider struct {
	jwt oauth2TokenSource
}

// oauth2TokenSource narrows google.JWTConfigFromJSON's *jwt.Config down to
// the one method RefreshToken needs, so it can be swapped in tests.
type oauth2TokenSource interface {
	TokenSource(ctx context.Context) oauth2.TokenSource
}

// NewServiceAccountProvider reads a service-account JSON key from the
// environment variable named by envVar (config.Config.GoogleClientSecretEnv,
// default GOOGLE_CLIENT_SECRET) and builds a TokenProvider from it.
func NewServiceAccountProvider(envVar string) (*ServiceAccountProvider, error) {
	raw := os.Getenv(envVar)
	if raw == "" {
		return nil, fmt.Errorf("environment variable %s is not set", envVar)
	}

	jwtConfig, err := google.JWTConfigFromJSON([]byte(raw), datastoreScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account key from %s: %w", envVar, err)
	}

	return &ServiceAccountProvider{jwt: jwtConfig}, nil
}

// RefreshToken exchanges the service account key for a fresh access token.
func (p *ServiceAccountProvider) RefreshToken(ctx context.Context) (string, time.Time, error) {
	token, err := p.jwt.TokenSource(ctx).Token()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to refresh Google access token: %w", err)
	}

	return token.AccessToken, token.Expiry, nil
}
