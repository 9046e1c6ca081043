// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gitforum_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// CounterDesyncs counts decrement guards tripped at zero. A tripped
	// guard means a counter had already drifted below its live row count.
	CounterDesyncs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gitforum_counter_desync_total",
		Help: "Total number of counter decrements refused by the zero guard",
	}, []string{"entity", "field"})

	// ReconcileCorrections counts counter values overwritten by the
	// reconciliation routine.
	ReconcileCorrections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gitforum_reconcile_corrections_total",
		Help: "Total number of counters corrected by reconciliation",
	}, []string{"entity", "field"})

	// NotificationEmissionFailures counts notification inserts or publishes
	// that failed after the triggering write committed.
	NotificationEmissionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gitforum_notification_emission_failures_total",
		Help: "Total number of failed notification emissions by event type",
	}, []string{"event"})

	// NotificationsEmitted counts notifications created by the fan-out engine.
	NotificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gitforum_notifications_emitted_total",
		Help: "Total number of notifications created by event type",
	}, []string{"event"})

	// RevisionSequenceFailures counts post updates that failed after their
	// revision snapshot was inserted. Non-zero values should alert.
	RevisionSequenceFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gitforum_revision_sequence_failures_total",
		Help: "Total number of post updates that failed after the revision snapshot",
	})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gitforum_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// WebSocketConnections is the gauge of active notification stream connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gitforum_websocket_connections",
		Help: "Number of active notification WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped because a client's
	// send buffer was closed or full.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gitforum_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
