// Package metrics exposes Prometheus instrumentation for the prefq server.
//
// Counters follow the query lifecycle (submitted, delivered, resolved,
// drained) and gauges mirror the store counters after every state change, so
// an operator can watch a batch move through the rendezvous from /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Query lifecycle
	QueriesSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prefq_queries_submitted_total",
			Help: "Total number of query pairs accepted from producers",
		},
	)

	SubmissionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prefq_submissions_rejected_total",
			Help: "Total number of rejected query submissions by reason",
		},
		[]string{"reason"}, // "auth", "duplicate", "malformed", "storage"
	)

	QueriesDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prefq_queries_delivered_total",
			Help: "Total number of times a query pair was shown to a rater",
		},
	)

	FeedbackReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prefq_feedback_received_total",
			Help: "Total number of feedback submissions by outcome",
		},
		[]string{"outcome"}, // "resolved", "duplicate", "defective"
	)

	DrainsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prefq_feedback_drains_total",
			Help: "Total number of GET /feedback calls by result",
		},
		[]string{"result"}, // "complete", "incomplete"
	)

	// Store state
	PendingQueries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "prefq_pending_queries",
			Help: "Current number of unresolved query pairs",
		},
	)

	LedgerEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "prefq_ledger_entries",
			Help: "Current number of resolved preferences awaiting drain",
		},
	)

	MediaBytesStored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prefq_media_bytes_stored_total",
			Help: "Total bytes of media written to disk",
		},
	)

	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prefq_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "prefq_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRejection counts a rejected submission
func RecordRejection(reason string) {
	SubmissionsRejected.WithLabelValues(reason).Inc()
}

// RecordFeedback counts a feedback submission
func RecordFeedback(outcome string) {
	FeedbackReceived.WithLabelValues(outcome).Inc()
}

// RecordDrain counts a drain attempt
func RecordDrain(complete bool) {
	if complete {
		DrainsTotal.WithLabelValues("complete").Inc()
		return
	}
	DrainsTotal.WithLabelValues("incomplete").Inc()
}

// UpdateStoreGauges mirrors the store counters
func UpdateStoreGauges(pending, ledger int) {
	PendingQueries.Set(float64(pending))
	LedgerEntries.Set(float64(ledger))
}
