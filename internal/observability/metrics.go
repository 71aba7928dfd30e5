// Package observability owns the Prometheus collectors and the OpenTelemetry
// tracer used by the service layers.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PostsWritten counts post creations and edits.
	PostsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_posts_written_total",
		Help: "Total number of posts created or edited",
	}, []string{"operation"})

	// CommentsCreated counts accepted comments.
	CommentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yatube_comments_created_total",
		Help: "Total number of comments created",
	})

	// FollowChanges counts follow and unfollow requests that changed state.
	FollowChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_follow_changes_total",
		Help: "Total number of follow relation changes",
	}, []string{"operation"})

	// LikeToggles counts like toggles by resulting state.
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_like_toggles_total",
		Help: "Total number of like toggles by resulting state",
	}, []string{"state"})

	// FeedCacheLookups counts index page cache hits and misses.
	FeedCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_feed_cache_lookups_total",
		Help: "Index page cache lookups by result",
	}, []string{"result"})

	// DatabaseQueryLatency records repository query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "yatube_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// LikeState is the label recorded for a toggle outcome.
func LikeState(liked bool) string {
	if liked {
		return "liked"
	}
	return "unliked"
}
