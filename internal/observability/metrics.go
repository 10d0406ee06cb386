// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "echohole_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "echohole_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// PostSubmissions counts submit attempts by outcome.
	PostSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "echohole_post_submissions_total",
		Help: "Post submissions by result",
	}, []string{"result"})

	// RateLimitDecisions counts limiter checks by action and outcome.
	RateLimitDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "echohole_rate_limit_decisions_total",
		Help: "Rate limiter decisions by action and result",
	}, []string{"action", "result"})

	// ModerationActions counts applied moderation actions.
	ModerationActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "echohole_moderation_actions_total",
		Help: "Moderation actions applied by action and actor",
	}, []string{"action", "actor"})

	// PostLikes counts like attempts by outcome.
	PostLikes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "echohole_post_likes_total",
		Help: "Like attempts by result",
	}, []string{"result"})

	// VisitsRecorded counts visit recording attempts by outcome.
	VisitsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "echohole_visits_recorded_total",
		Help: "Visit records by result",
	}, []string{"result"})

	// EventsPublished counts change events by type.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "echohole_events_published_total",
		Help: "Change events published by type",
	}, []string{"event_type"})

	// EventDrops counts events dropped because a subscriber fell behind.
	EventDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "echohole_event_drops_total",
		Help: "Change events dropped by subscriber",
	}, []string{"subscriber"})

	// WebSocketConnectionsTotal is the gauge of active WebSocket connections by audience.
	WebSocketConnectionsTotal = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "echohole_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	}, []string{"audience"})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "echohole_websocket_backpressure_drops_total",
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
