// Package metrics exposes the orchestration engine's queue depth,
// available-set size, rate-budget remaining, and cloud-mirror backlog as
// Prometheus gauges scraped via /metrics. No example repo in this
// module's lineage wires prometheus/client_golang to concrete metrics, so
// this package follows the library's own documented GaugeFunc pattern
// rather than a specific teacher file: each gauge recomputes its value on
// scrape straight from the snapshot-backed stores, which is already safe
// for concurrent, lock-protected reads and avoids a second background
// updater goroutine duplicating state.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// QueueDepthSource reports how many tracks are currently queued.
type QueueDepthSource interface {
	Len() int
}

// AvailableSetSource reports how many tracks are awaiting Phase 2 transfer.
type AvailableSetSource interface {
	Len() int
}

// RateBudgetSource reports the Catalog download budget currently remaining.
type RateBudgetSource interface {
	Remaining() uint32
}

// MirrorBacklogSource reports how many records are pending a Cloud Mirror push.
type MirrorBacklogSource interface {
	PendingMirrorCount() int
}

// Registry wires the module's live state into a Prometheus registry.
type Registry struct {
	registry *prometheus.Registry
}

// New constructs a Registry with gauges bound to the given sources. Any
// source may be nil, in which case its gauge always reports zero — callers
// need not wire every collaborator (e.g. CLI invocations that never touch
// the Cloud Mirror).
func New(queueDepth QueueDepthSource, available AvailableSetSource, budget RateBudgetSource, mirror MirrorBacklogSource) *Registry {
	registry := prometheus.NewRegistry()

	registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "soundeo",
			Name:      "queue_depth",
			Help:      "Number of tracks currently queued for download.",
		},
		func() float64 {
			if queueDepth == nil {
				return 0
			}

			return float64(queueDepth.Len())
		},
	))

	registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "soundeo",
			Name:      "available_set_size",
			Help:      "Number of tracks with an acquired URL awaiting byte transfer.",
		},
		func() float64 {
			if available == nil {
				return 0
			}

			return float64(available.Len())
		},
	))

	registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "soundeo",
			Name:      "rate_budget_remaining",
			Help:      "Downloads remaining in the current Catalog rate-budget window.",
		},
		func() float64 {
			if budget == nil {
				return 0
			}

			return float64(budget.Remaining())
		},
	))

	registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "soundeo",
			Name:      "mirror_backlog",
			Help:      "Number of records not yet pushed to the Cloud Mirror.",
		},
		func() float64 {
			if mirror == nil {
				return 0
			}

			return float64(mirror.PendingMirrorCount())
		},
	))

	return &Registry{registry: registry}
}

// Handler returns the HTTP handler to serve at /metrics.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
