package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sankalpa_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sankalpa_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// BadgeChanges counts persisted badge transitions by the badge reached.
	BadgeChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sankalpa_badge_changes_total",
		Help: "Total number of stored badge changes by badge id",
	}, []string{"badge"})

	// FeedRankDuration records how long ranking a feed snapshot takes.
	FeedRankDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sankalpa_feed_rank_duration_seconds",
		Help:    "Time spent ranking a feed snapshot",
		Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
	}, []string{"mode"})

	// FeedCacheLookups counts feed snapshot cache hits and misses.
	FeedCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sankalpa_feed_cache_lookups_total",
		Help: "Feed snapshot cache lookups by result",
	}, []string{"result"})

	// CoinsAwarded sums coins granted by reason.
	CoinsAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sankalpa_coins_awarded_total",
		Help: "Total coins awarded by reason",
	}, []string{"reason"})

	// EventsPublished counts domain events by routing key and outcome.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sankalpa_events_published_total",
		Help: "Domain events published by routing key and result",
	}, []string{"routing_key", "result"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// RecordCoins adds an award to CoinsAwarded. Non-positive amounts are ignored.
func RecordCoins(reason string, amount int) {
	if amount <= 0 {
		return
	}
	CoinsAwarded.WithLabelValues(reason).Add(float64(amount))
}
