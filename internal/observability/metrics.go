package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NotificationFanout counts notifications written by the fan-out step, by type.
	NotificationFanout = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wayfarer_notification_fanout_total",
		Help: "Total number of notifications created by the fan-out step",
	}, []string{"type"})

	// NotificationsPurged counts notification rows removed by the retention sweeper.
	NotificationsPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wayfarer_notifications_purged_total",
		Help: "Total number of notification rows purged by the retention sweeper",
	})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wayfarer_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// WebSocketConnectionsTotal is the gauge of active WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wayfarer_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketEventsTotal counts WebSocket events by type.
	WebSocketEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wayfarer_websocket_events_total",
		Help: "Total WebSocket events by type",
	}, []string{"event_type"})

	// ReportsSubmitted counts moderation reports by target type.
	ReportsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wayfarer_reports_submitted_total",
		Help: "Total number of moderation reports submitted",
	}, []string{"target_type"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}
