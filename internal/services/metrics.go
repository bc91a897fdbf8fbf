package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instrumentation shared by the services.
// Business counters (shows, clicks) live in the KV store, not here.
type Metrics struct {
	RecommendationRequests prometheus.Counter
	CacheLookups           *prometheus.CounterVec
	RankDuration           prometheus.Histogram
	MatrixRebuilds         prometheus.Counter
	MatrixRebuildDuration  prometheus.Histogram
	FeedbackEvents         *prometheus.CounterVec
}

// NewMetrics registers the service metrics on reg. Tests pass a fresh
// registry so repeated construction never collides.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RecommendationRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "recommendation_requests_total",
			Help: "Total number of recommendation requests",
		}),

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recommendation_cache_lookups_total",
			Help: "Per-user recommendation cache lookups by result",
		}, []string{"result"}),

		RankDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "recommendation_rank_duration_seconds",
			Help:    "Time spent computing a recommendation list on cache miss",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		}),

		MatrixRebuilds: factory.NewCounter(prometheus.CounterOpts{
			Name: "item_matrix_rebuilds_total",
			Help: "Total number of item matrix rebuilds",
		}),

		MatrixRebuildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "item_matrix_rebuild_duration_seconds",
			Help:    "Item matrix rebuild duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0},
		}),

		FeedbackEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "feedback_events_total",
			Help: "Shown and click feedback events recorded",
		}, []string{"kind"}),
	}
}
