package spotify_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soundeo-tools/soundeo-grabber/internal/client/spotify"
)

func TestNew_RequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := spotify.New("", "")
	require.ErrorIs(t, err, spotify.ErrMissingCredentials)

	_, err = spotify.New("id", "")
	require.ErrorIs(t, err, spotify.ErrMissingCredentials)

	client, err := spotify.New("id", "secret")
	require.NoError(t, err)
	require.NotNil(t, client)
}
