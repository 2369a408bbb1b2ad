package monitor

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MergesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_merges_total",
			Help: "Merged-document assemblies by outcome",
		},
		[]string{"outcome"},
	)

	MergeSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "portal_merge_skipped_attachments_total",
			Help: "Attachments skipped during merge (unreadable, non-PDF or fetch failure)",
		},
	)

	MergeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "portal_merge_duration_seconds",
			Help:    "Duration of merged-document assembly",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)

	LiveMergedURLs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "portal_live_merged_urls",
			Help: "Merged-document URLs currently published to screens",
		},
	)

	SupersededLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_superseded_list_loads_total",
			Help: "List loads discarded because a later request was issued for the same screen",
		},
		[]string{"list"},
	)

	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "portal_backend_request_duration_seconds",
			Help: "Duration of requests to the fund backend",
		},
		[]string{"endpoint", "status"},
	)
)

// ObserveBackendRequest records one backend round trip; status 0 means transport failure.
func ObserveBackendRequest(endpoint string, status int, elapsed time.Duration) {
	BackendRequestDuration.WithLabelValues(endpoint, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// ObserveMerge records the outcome of one merge.
func ObserveMerge(outcome string, skipped int, elapsed time.Duration) {
	MergesTotal.WithLabelValues(outcome).Inc()
	MergeSkippedTotal.Add(float64(skipped))
	MergeDuration.Observe(elapsed.Seconds())
}
