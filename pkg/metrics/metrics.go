package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation", "table"},
	)

	SyncEventsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_events_published_total",
			Help: "Total project update events published to the sync channel",
		},
	)

	SyncEventsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_events_applied_total",
			Help: "Total sync payloads applied or discarded by receivers",
		},
		[]string{"outcome"}, // outcome: applied, stale, unknown
	)

	OfferTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offer_transitions_total",
			Help: "Total assigned-offer status transitions",
		},
		[]string{"from", "to"},
	)
)

// RecordHTTPRequestDuration records one served HTTP request.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordDBQueryDuration records one database round trip.
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// IncrementSyncApplied records the outcome of one received sync payload.
func IncrementSyncApplied(outcome string) {
	SyncEventsApplied.WithLabelValues(outcome).Inc()
}

// IncrementOfferTransition records one assignment lifecycle move.
func IncrementOfferTransition(from, to string) {
	OfferTransitions.WithLabelValues(from, to).Inc()
}
