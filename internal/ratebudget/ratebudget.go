// Package ratebudget tracks the per-user download allowance reported by the
// catalog site: a main counter, a bonus counter, and a reset ETA. State is
// compound (three fields that must be read and written together), so it is
// guarded by a plain mutex rather than individual atomics.
package ratebudget

import (
	"context"
	"fmt"
	"sync"

	"github.com/soundeo-tools/soundeo-grabber/internal/client/catalog"
)

// Budget tracks remaining main/bonus downloads and the reset ETA, and
// enforces the "consume before calling the Catalog" discipline spec'd for
// download-URL acquisition.
type Budget struct {
	mu       sync.Mutex
	main     uint32
	bonus    uint32
	resetETA string
}

// New creates a Budget. Call RefreshFromClient once before first use to seed it.
func New() *Budget {
	return &Budget{}
}

// Current returns the main and bonus counters.
func (b *Budget) Current() (main, bonus uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.main, b.bonus
}

// Remaining returns main+bonus.
func (b *Budget) Remaining() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.main + b.bonus
}

// ResetETA returns the last known human-readable reset wording.
func (b *Budget) ResetETA() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.resetETA
}

// TryConsume atomically decrements one unit of budget (preferring main, then
// bonus) if any remains, reporting whether it succeeded.
func (b *Budget) TryConsume() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case b.main > 0:
		b.main--

		return true
	case b.bonus > 0:
		b.bonus--

		return true
	default:
		return false
	}
}

// RefreshFromClient performs the authoritative login-handshake reload via
// the catalog client, replacing the locally tracked counters with server truth.
func (b *Budget) RefreshFromClient(ctx context.Context, client catalog.Client) error {
	snapshot, err := client.CheckRemainingDownloads(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh rate budget: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.main = snapshot.Main
	b.bonus = snapshot.Bonus
	b.resetETA = snapshot.ResetETA

	return nil
}
