// Package metrics collects operation counters for the ledger core. The
// collector is nil-safe so services can run without metrics wired.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for operation counters.
const (
	OutcomeSuccess = "success"
	OutcomeDenied  = "denied"
	OutcomeFailed  = "failed"
)

// Collector holds the prometheus instruments for core operations.
type Collector struct {
	registry         *prometheus.Registry
	authorizations   *prometheus.CounterVec
	transfers        *prometheus.CounterVec
	redemptions      *prometheus.CounterVec
	transferDuration prometheus.Histogram
}

// New creates a Collector backed by its own registry.
func New() *Collector {
	registry := prometheus.NewRegistry()
	return &Collector{
		registry: registry,
		authorizations: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_authorizations_total",
			Help: "Debit authorizations by outcome",
		}, []string{"outcome"}),
		transfers: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_transfers_total",
			Help: "Peer to peer transfers by outcome",
		}, []string{"outcome"}),
		redemptions: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_code_redemptions_total",
			Help: "Deposit code redemptions by outcome",
		}, []string{"outcome"}),
		transferDuration: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_transfer_duration_seconds",
			Help:    "Time taken to complete a transfer",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// RecordAuthorization counts a debit authorization outcome.
func (c *Collector) RecordAuthorization(outcome string) {
	if c == nil {
		return
	}
	c.authorizations.WithLabelValues(outcome).Inc()
}

// RecordTransfer counts a transfer outcome and its duration.
func (c *Collector) RecordTransfer(outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.transfers.WithLabelValues(outcome).Inc()
	c.transferDuration.Observe(d.Seconds())
}

// RecordRedemption counts a deposit code redemption outcome.
func (c *Collector) RecordRedemption(outcome string) {
	if c == nil {
		return
	}
	c.redemptions.WithLabelValues(outcome).Inc()
}

// Handler exposes the collector's registry for scraping.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
