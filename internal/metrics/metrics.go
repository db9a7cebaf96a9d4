// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests counts handled API requests by method, route and
	// status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fondo_http_requests_total",
		Help: "Handled HTTP requests.",
	}, []string{"method", "route", "status"})

	// HTTPDuration observes request latency per route.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fondo_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	// LedgerComputations counts view computations by view name and
	// whether the result came from the memoization cache.
	LedgerComputations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fondo_ledger_computations_total",
		Help: "Ledger view computations.",
	}, []string{"view", "source"})

	// SnapshotRefreshes counts snapshot reloads from storage.
	SnapshotRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fondo_snapshot_refreshes_total",
		Help: "Snapshot reloads, by outcome.",
	}, []string{"outcome"})

	// SnapshotVersion reports the currently served snapshot version.
	SnapshotVersion = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fondo_snapshot_version",
		Help: "Version of the snapshot currently being served.",
	})

	// RecordChanges counts consumed record-change messages by
	// collection and operation.
	RecordChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fondo_record_changes_total",
		Help: "Consumed record-change messages.",
	}, []string{"collection", "op"})

	// RateLimitRejections counts write requests turned away by the
	// per-IP limiter.
	RateLimitRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fondo_rate_limit_rejections_total",
		Help: "Requests rejected by the rate limiter.",
	})

	// SuspiciousRequests counts requests matching scanner or injection
	// patterns, by the category that matched.
	SuspiciousRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fondo_suspicious_requests_total",
		Help: "Requests matching known probe patterns.",
	}, []string{"reason"})

	// InvalidForwardedIPs counts unparseable forwarded-IP headers from
	// trusted proxies.
	InvalidForwardedIPs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fondo_invalid_forwarded_ips_total",
		Help: "Forwarded-IP headers that failed to parse.",
	})

	// SheetsExports counts rows pushed to the spreadsheet export.
	SheetsExports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fondo_sheets_exports_total",
		Help: "Spreadsheet export operations, by outcome.",
	}, []string{"outcome"})
)

// Cache source labels for LedgerComputations.
const (
	SourceCache    = "cache"
	SourceComputed = "computed"
)

// Handler returns the /metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
