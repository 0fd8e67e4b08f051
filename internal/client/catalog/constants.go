package catalog

import "time"

const (
	// trackInfoURIFormat is the URI template for a track's status/metadata endpoint.
	trackInfoURIFormat = "tracks/status/%s"
	// downloadURLURIFormat is the URI template for acquiring a track's download URL.
	// The trailing "3" is the format selector the site expects.
	downloadURLURIFormat = "download/%s/3"
	// searchURI is the autocomplete endpoint used to pair a free-text query to a track.
	searchURI = "catalog/ajAutocomplete"
	// loginHandshakeURI is requested to read the current remaining-downloads counters.
	loginHandshakeURI = "account/downloads"

	// metadataCacheSize bounds the in-memory track metadata cache. Genre-walk
	// pages overlap, so this avoids refetching metadata seen on an adjacent page.
	metadataCacheSize = 4096

	// perSecondRateLimit is the documented ceiling on requests per second the
	// catalog site tolerates before throttling connections at the edge.
	perSecondRateLimit = 2
	// rateLimitBurst allows a short burst above the steady-state rate.
	rateLimitBurst = 4

	// connectTimeout bounds dialing + TLS handshake.
	connectTimeout = 30 * time.Second
	// requestTimeout bounds non-streaming requests end to end.
	requestTimeout = 60 * time.Second
)
