package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyncRuns counts sync invocations by outcome ("ok", "failed") and mode ("live", "dry").
	SyncRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vehicle_sync_runs_total",
			Help: "Total number of sync runs",
		},
		[]string{"result", "mode"},
	)

	// SyncItems counts per-item outcomes ("create", "update", "skip", "delete", "error").
	SyncItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vehicle_sync_items_total",
			Help: "Total number of reconciled items by action",
		},
		[]string{"action"},
	)

	// SyncDuration tracks wall time of whole sync runs.
	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vehicle_sync_run_duration_seconds",
			Help:    "Duration of sync runs in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	// UpstreamRequests counts outbound API calls by upstream and status class.
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vehicle_sync_upstream_requests_total",
			Help: "Total number of requests to upstream APIs",
		},
		[]string{"upstream", "status"},
	)

	// CircuitBreakerState is 0=closed, 1=half-open, 2=open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vehicle_sync_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// ReferenceLoads counts full reference-collection scans.
	ReferenceLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vehicle_sync_reference_loads_total",
			Help: "Total number of reference collection scans",
		},
		[]string{"collection"},
	)

	// MediaCache counts media proxy cache lookups ("hit", "miss", "bypass").
	MediaCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vehicle_sync_media_cache_total",
			Help: "Media proxy cache lookups",
		},
		[]string{"result"},
	)
)

// StatusClass buckets an HTTP status code into "2xx", "4xx", "5xx" or "error" for 0.
func StatusClass(code int) string {
	switch {
	case code == 0:
		return "error"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
