package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments for the collection pipeline.
type Metrics struct {
	CollectionsTotal   *prometheus.CounterVec // label: outcome={success,invalid_input,not_found,download_error,storage_error}
	CollectionDuration prometheus.Histogram
	RowsKept           prometheus.Counter
	RowsDropped        prometheus.Counter
	ProcessedCache     *prometheus.CounterVec // label: result={hit,miss}
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.CollectionsTotal,
		m.CollectionDuration,
		m.RowsKept,
		m.RowsDropped,
		m.ProcessedCache,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics so parallel tests do not
// trip "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		CollectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pnct",
			Name:      "collections_total",
			Help:      "Dataset collection attempts by outcome.",
		}, []string{"outcome"}),
		CollectionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pnct",
			Name:      "collection_duration_seconds",
			Help:      "Duration of a complete download-extract-parse-store cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		RowsKept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pnct",
			Name:      "rows_kept_total",
			Help:      "Rows retained by coordinate processing.",
		}),
		RowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pnct",
			Name:      "rows_dropped_total",
			Help:      "Rows dropped for lacking both coordinates.",
		}),
		ProcessedCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pnct",
			Name:      "processed_cache_total",
			Help:      "Processed-table cache lookups by result.",
		}, []string{"result"}),
	}
}
