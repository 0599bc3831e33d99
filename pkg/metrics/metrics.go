package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Notification metrics
	NotificationsCreated    *prometheus.CounterVec
	NotificationsSuperseded prometheus.Counter
	NotificationsDropped    *prometheus.CounterVec
	DuplicatesRemoved       prometheus.Counter
	ReferenceChecksFailed   *prometheus.CounterVec

	// Feed metrics
	FeedSubscriptions prometheus.Gauge
	FeedEvents        *prometheus.CounterVec
	FeedPollLatency   prometheus.Histogram

	// Match metrics
	SwipesRecorded    *prometheus.CounterVec
	MatchesDetected   prometheus.Counter
	IncompatiblePairs *prometheus.CounterVec

	// Database metrics
	DatabaseOperations *prometheus.CounterVec
	DatabaseLatency    *prometheus.HistogramVec
}

// NewMetrics creates and registers all application metrics on the
// default registry.
func NewMetrics(namespace, subsystem string) *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer, namespace, subsystem)
}

// NewMetricsWith registers the metrics on reg; tests pass a fresh
// registry so parallel constructions do not collide.
func NewMetricsWith(reg prometheus.Registerer, namespace, subsystem string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		NotificationsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications_created_total",
			Help:      "Total number of notifications written",
		}, []string{"type"}),
		NotificationsSuperseded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications_superseded_total",
			Help:      "Total number of notifications replaced by a newer one with the same key",
		}),
		NotificationsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications_dropped_total",
			Help:      "Total number of notification requests rejected or failed",
		}, []string{"reason"}),
		DuplicatesRemoved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notification_duplicates_removed_total",
			Help:      "Total number of duplicate notifications removed by cleanup",
		}),
		ReferenceChecksFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notification_reference_checks_failed_total",
			Help:      "Total number of reference validations that nulled the reference",
		}, []string{"type"}),

		FeedSubscriptions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "feed_subscriptions",
			Help:      "Current number of open feed subscriptions",
		}),
		FeedEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "feed_events_total",
			Help:      "Total number of feed events delivered",
		}, []string{"kind"}),
		FeedPollLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "feed_poll_duration_seconds",
			Help:      "Duration of backstop poll queries",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),

		SwipesRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "swipes_recorded_total",
			Help:      "Total number of swipe decisions",
		}, []string{"decision"}),
		MatchesDetected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "matches_detected_total",
			Help:      "Total number of mutual matches detected",
		}),
		IncompatiblePairs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "incompatible_pairs_total",
			Help:      "Total number of likes blocked by compatibility checks",
		}, []string{"reason"}),

		DatabaseOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
		DatabaseLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "database_operation_duration_seconds",
			Help:      "Duration of database operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
	}
}
