package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the literature aggregation
// service, organized by subsystem: aggregations, searches, records, the
// pipeline stages, and the result cache. All counters and histograms are
// registered via promauto for automatic registration with the default
// Prometheus registry.
type Metrics struct {
	// AggregationsStarted counts the total number of aggregated searches initiated.
	AggregationsStarted prometheus.Counter

	// AggregationsCompleted counts aggregated searches that finished successfully.
	AggregationsCompleted prometheus.Counter

	// AggregationsFailed counts aggregated searches rejected or failed.
	AggregationsFailed prometheus.Counter

	// AggregationDuration observes the end-to-end duration of aggregated searches in seconds.
	AggregationDuration prometheus.Histogram

	// SearchesStarted counts searches initiated, labeled by literature source.
	SearchesStarted *prometheus.CounterVec

	// SearchesCompleted counts successful searches, labeled by literature source.
	SearchesCompleted *prometheus.CounterVec

	// SearchesFailed counts failed searches, labeled by literature source.
	SearchesFailed *prometheus.CounterVec

	// SearchDuration observes search duration in seconds, labeled by literature source.
	SearchDuration *prometheus.HistogramVec

	// RecordsPerSearch observes the distribution of records returned per search, labeled by source.
	RecordsPerSearch *prometheus.HistogramVec

	// RecordsFetched counts the total number of records fetched across all sources.
	RecordsFetched prometheus.Counter

	// RecordsBySource counts records fetched, labeled by literature source.
	RecordsBySource *prometheus.CounterVec

	// RecordsDuplicate counts records removed by deduplication.
	RecordsDuplicate prometheus.Counter

	// RecordsFiltered counts records removed by filter criteria.
	RecordsFiltered prometheus.Counter

	// RecordsReturned observes the number of records returned per aggregated search.
	RecordsReturned prometheus.Histogram

	// CacheHits counts result cache hits.
	CacheHits prometheus.Counter

	// CacheMisses counts result cache misses.
	CacheMisses prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		// Aggregations
		AggregationsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregations_started_total",
			Help:      "Total number of aggregated searches started",
		}),
		AggregationsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregations_completed_total",
			Help:      "Total number of aggregated searches completed successfully",
		}),
		AggregationsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregations_failed_total",
			Help:      "Total number of aggregated searches that failed",
		}),
		AggregationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregation_duration_seconds",
			Help:      "Duration of aggregated searches in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}),

		// Searches
		SearchesStarted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_started_total",
			Help:      "Total number of record searches started by source",
		}, []string{"source"}),
		SearchesCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_completed_total",
			Help:      "Total number of record searches completed by source",
		}, []string{"source"}),
		SearchesFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_failed_total",
			Help:      "Total number of record searches that failed by source",
		}, []string{"source"}),
		SearchDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Duration of record searches in seconds by source",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"source"}),
		RecordsPerSearch: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "records_per_search",
			Help:      "Number of records returned per search by source",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 200},
		}, []string{"source"}),

		// Records
		RecordsFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_fetched_total",
			Help:      "Total number of records fetched from all sources",
		}),
		RecordsBySource: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_by_source_total",
			Help:      "Total number of records fetched by source",
		}, []string{"source"}),
		RecordsDuplicate: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_duplicate_total",
			Help:      "Total number of duplicate records removed",
		}),
		RecordsFiltered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_filtered_total",
			Help:      "Total number of records removed by filters",
		}),
		RecordsReturned: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "records_returned",
			Help:      "Number of records returned per aggregated search",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 150},
		}),

		// Cache
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of result cache hits",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of result cache misses",
		}),
	}
}

// RecordAggregationStarted records that an aggregated search has started.
func (m *Metrics) RecordAggregationStarted() {
	m.AggregationsStarted.Inc()
}

// RecordAggregationCompleted records that an aggregated search has completed.
func (m *Metrics) RecordAggregationCompleted(durationSeconds float64, returned int) {
	m.AggregationsCompleted.Inc()
	m.AggregationDuration.Observe(durationSeconds)
	m.RecordsReturned.Observe(float64(returned))
}

// RecordAggregationFailed records that an aggregated search has failed.
func (m *Metrics) RecordAggregationFailed(durationSeconds float64) {
	m.AggregationsFailed.Inc()
	m.AggregationDuration.Observe(durationSeconds)
}

// RecordSearchStarted records that a search has started.
func (m *Metrics) RecordSearchStarted(source string) {
	m.SearchesStarted.WithLabelValues(source).Inc()
}

// RecordSearchCompleted records that a search has completed.
func (m *Metrics) RecordSearchCompleted(source string, recordCount int, durationSeconds float64) {
	m.SearchesCompleted.WithLabelValues(source).Inc()
	m.SearchDuration.WithLabelValues(source).Observe(durationSeconds)
	m.RecordsPerSearch.WithLabelValues(source).Observe(float64(recordCount))
}

// RecordSearchFailed records that a search has failed.
func (m *Metrics) RecordSearchFailed(source string, durationSeconds float64) {
	m.SearchesFailed.WithLabelValues(source).Inc()
	m.SearchDuration.WithLabelValues(source).Observe(durationSeconds)
}

// RecordRecordsFetched records records fetched from a source.
func (m *Metrics) RecordRecordsFetched(source string, count int) {
	m.RecordsFetched.Add(float64(count))
	m.RecordsBySource.WithLabelValues(source).Add(float64(count))
}

// RecordDuplicatesRemoved records duplicate records removed in a single call.
func (m *Metrics) RecordDuplicatesRemoved(count int) {
	m.RecordsDuplicate.Add(float64(count))
}

// RecordFilteredOut records records removed by filter criteria.
func (m *Metrics) RecordFilteredOut(count int) {
	m.RecordsFiltered.Add(float64(count))
}

// RecordCacheHit records a result cache hit.
func (m *Metrics) RecordCacheHit() {
	m.CacheHits.Inc()
}

// RecordCacheMiss records a result cache miss.
func (m *Metrics) RecordCacheMiss() {
	m.CacheMisses.Inc()
}
