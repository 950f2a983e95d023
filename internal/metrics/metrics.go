package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "userdesk"
)

var (
	directoryDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}

	// Directory API Metrics
	DirectoryRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "directory_requests_total",
		Help:      "Count of requests sent to the user directory API.",
	}, []string{"operation", "outcome"})

	DirectoryRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "directory_request_duration_seconds",
		Help:      "Time taken for a user directory API request to complete.",
		Buckets:   directoryDurationBuckets,
	}, []string{"operation"})

	// Session Metrics
	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Count of login attempts by outcome.",
	}, []string{"outcome"})

	LogoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logouts_total",
		Help:      "Count of logouts.",
	})

	// Listing Metrics
	ListingWorkspaces = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "listing_workspaces",
		Help:      "Number of live per-session listing workspaces.",
	})

	ListingStaleResponsesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listing_stale_responses_total",
		Help:      "Count of page responses discarded because a newer page was requested.",
	})

	ListingMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listing_mutations_total",
		Help:      "Count of update and delete operations by outcome.",
	}, []string{"operation", "outcome"})
)

// Outcome maps an error to the outcome label used by the counters above.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
