// Package metrics registers the engine's Prometheus metrics. Collectors are
// registered once via promauto on the default registry and exposed by the
// API server's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReceiptsSubmitted counts accepted receipt submissions per space.
	ReceiptsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "splitweek_receipts_submitted_total",
		Help: "Receipts accepted by the ledger.",
	}, []string{"space"})

	// ReceiptsUpdated counts in-place receipt replacements per space.
	ReceiptsUpdated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "splitweek_receipts_updated_total",
		Help: "Receipts replaced in place.",
	}, []string{"space"})

	// ReceiptsDeleted counts receipt deletions per space.
	ReceiptsDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "splitweek_receipts_deleted_total",
		Help: "Receipts removed from the ledger.",
	}, []string{"space"})

	// ReceiptsRedirected counts submissions rerouted from a settled week
	// to the active one.
	ReceiptsRedirected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "splitweek_receipts_redirected_total",
		Help: "Late submissions routed to the active period.",
	}, []string{"space"})

	// ValidationRejections counts drafts rejected at the ledger boundary.
	ValidationRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitweek_validation_rejections_total",
		Help: "Receipt drafts rejected by validation.",
	})

	// PeriodsFinalized counts one-way active -> settled transitions.
	PeriodsFinalized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitweek_periods_finalized_total",
		Help: "Settlement periods finalized.",
	})

	// NotifyFailures counts notification gateway errors after finalize.
	NotifyFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitweek_notify_failures_total",
		Help: "Settlement-closed notices that failed to deliver.",
	})

	// MutationDuration observes the transactional write+recompute cycle.
	MutationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "splitweek_ledger_mutation_seconds",
		Help:    "Duration of ledger mutations including recomputation.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
)
