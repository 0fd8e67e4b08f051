package app

import (
	"fmt"
	"net/http"

	"github.com/soundeo-tools/soundeo-grabber/internal/client/catalog"
	"github.com/soundeo-tools/soundeo-grabber/internal/client/firestore"
	"github.com/soundeo-tools/soundeo-grabber/internal/cloudmirror"
	"github.com/soundeo-tools/soundeo-grabber/internal/config"
	"github.com/soundeo-tools/soundeo-grabber/internal/ratebudget"
	"github.com/soundeo-tools/soundeo-grabber/internal/store/available"
	"github.com/soundeo-tools/soundeo-grabber/internal/store/genre"
	"github.com/soundeo-tools/soundeo-grabber/internal/store/queue"
	"github.com/soundeo-tools/soundeo-grabber/internal/store/snapshot"
	"github.com/soundeo-tools/soundeo-grabber/internal/store/track"
	"github.com/soundeo-tools/soundeo-grabber/internal/store/urllist"
)

// deps bundles the durable stores and the Catalog client every command
// operates on, built once from cfg and shared by the operation it backs.
type deps struct {
	snapshot  *snapshot.Store
	tracks    *track.Store
	queue     *queue.Store
	available *available.Store
	genres    *genre.Store
	urls      *urllist.Store
	budget    *ratebudget.Budget
	catalog   catalog.Client
}

// buildDeps opens the local snapshot document and wires every store and the
// Catalog client over it. Every command below starts from this.
func buildDeps(cfg *config.Config) (*deps, error) {
	snap, err := snapshot.Open(cfg.DownloadPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local snapshot: %w", err)
	}

	catalogClient, err := catalog.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize catalog client: %w", err)
	}

	return &deps{
		snapshot:  snap,
		tracks:    track.New(snap),
		queue:     queue.New(snap, queue.NowMonotonicMS),
		available: available.New(snap),
		genres:    genre.New(snap),
		urls:      urllist.New(snap),
		budget:    ratebudget.New(),
		catalog:   catalogClient,
	}, nil
}

// buildCloudMirror wires a Cloud Mirror over cfg's Firestore-shaped REST
// endpoint. Callers must only invoke this for commands that actually touch
// the cloud (migrate, queue --serve-metrics doesn't need it), since it fails
// fast when the service account credential is missing.
func buildCloudMirror(cfg *config.Config, d *deps) (*cloudmirror.Mirror, error) {
	provider, err := firestore.NewServiceAccountProvider(cfg.GoogleClientSecretEnv)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloud credentials: %w", err)
	}

	client := firestore.NewClient(http.DefaultClient, cfg.CloudProjectID, cfg.User, provider)

	return cloudmirror.New(
		client,
		d.tracks,
		d.queue,
		int(cfg.MigrationConcurrency),
		int(cfg.FirebaseBatchChunkSize),
	), nil
}
