package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// remote document store call latency (seconds)
	StoreRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_request_duration_seconds",
			Help:    "Remote document store request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"collection", "method", "outcome"},
	)

	// requirement operations served by the on-device store
	StoreFallbackCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_fallback_total",
			Help: "Requirement operations served by the local fallback store",
		},
		[]string{"operation"},
	)

	// circuit breaker state transitions
	BreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_changes_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "to"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// form submissions by entity and result
	WriteCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_writes_total",
			Help: "Total number of create/update/delete submissions",
		},
		[]string{"entity", "action", "status"}, // status: success, invalid, failed
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation"},
	)

	AuditWriteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "audit_write_duration_seconds",
			Help:    "Audit insert duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"status"},
	)
)

func RecordStoreRequest(collection, method, outcome string, duration time.Duration) {
	StoreRequestDuration.WithLabelValues(collection, method, outcome).Observe(duration.Seconds())
}

func IncrementStoreFallback(operation string) {
	StoreFallbackCount.WithLabelValues(operation).Inc()
}

func IncrementBreakerStateChange(name, to string) {
	BreakerStateChanges.WithLabelValues(name, to).Inc()
}

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func IncrementWrite(entity, action, status string) {
	WriteCount.WithLabelValues(entity, action, status).Inc()
}

func RecordDBQueryDuration(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func RecordAuditWrite(status string, duration time.Duration) {
	AuditWriteDuration.WithLabelValues(status).Observe(duration.Seconds())
}
