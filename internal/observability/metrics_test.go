package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Note: prometheus/promauto registers metrics globally, so we need to use
// unique namespaces per test to avoid registration conflicts.

func TestNewMetrics(t *testing.T) {
	m := NewMetrics("test_literature_aggregation_new")

	assert.NotNil(t, m.AggregationsStarted)
	assert.NotNil(t, m.AggregationsCompleted)
	assert.NotNil(t, m.AggregationsFailed)
	assert.NotNil(t, m.AggregationDuration)
	assert.NotNil(t, m.SearchesStarted)
	assert.NotNil(t, m.SearchesCompleted)
	assert.NotNil(t, m.SearchesFailed)
	assert.NotNil(t, m.SearchDuration)
	assert.NotNil(t, m.RecordsPerSearch)
	assert.NotNil(t, m.RecordsFetched)
	assert.NotNil(t, m.RecordsBySource)
	assert.NotNil(t, m.RecordsDuplicate)
	assert.NotNil(t, m.RecordsFiltered)
	assert.NotNil(t, m.CacheHits)
	assert.NotNil(t, m.CacheMisses)
}

func TestRecordAggregationStarted(t *testing.T) {
	m := NewMetrics("test_aggregation_started")

	initial := testutil.ToFloat64(m.AggregationsStarted)
	m.RecordAggregationStarted()
	assert.Equal(t, initial+1, testutil.ToFloat64(m.AggregationsStarted))
}

func TestRecordAggregationCompleted(t *testing.T) {
	m := NewMetrics("test_aggregation_completed")

	initial := testutil.ToFloat64(m.AggregationsCompleted)
	m.RecordAggregationCompleted(1.5, 42)
	assert.Equal(t, initial+1, testutil.ToFloat64(m.AggregationsCompleted))

	histCount, err := getHistogramSampleCount(m.AggregationDuration)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), histCount)
}

func TestRecordAggregationFailed(t *testing.T) {
	m := NewMetrics("test_aggregation_failed")

	initial := testutil.ToFloat64(m.AggregationsFailed)
	m.RecordAggregationFailed(0.1)
	assert.Equal(t, initial+1, testutil.ToFloat64(m.AggregationsFailed))
}

func TestRecordSearchStarted(t *testing.T) {
	m := NewMetrics("test_search_started")

	m.RecordSearchStarted("crossref")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SearchesStarted.WithLabelValues("crossref")))
}

func TestRecordSearchCompleted(t *testing.T) {
	m := NewMetrics("test_search_completed")

	m.RecordSearchCompleted("openalex", 42, 2.5)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SearchesCompleted.WithLabelValues("openalex")))
}

func TestRecordSearchFailed(t *testing.T) {
	m := NewMetrics("test_search_failed")

	m.RecordSearchFailed("arxiv", 1.0)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SearchesFailed.WithLabelValues("arxiv")))
}

func TestRecordRecordsFetched(t *testing.T) {
	m := NewMetrics("test_records_fetched")

	initial := testutil.ToFloat64(m.RecordsFetched)
	m.RecordRecordsFetched("crossref", 25)
	assert.Equal(t, initial+25, testutil.ToFloat64(m.RecordsFetched))
	assert.Equal(t, float64(25), testutil.ToFloat64(m.RecordsBySource.WithLabelValues("crossref")))
}

func TestRecordDuplicatesRemoved(t *testing.T) {
	m := NewMetrics("test_duplicates_removed")

	initial := testutil.ToFloat64(m.RecordsDuplicate)
	m.RecordDuplicatesRemoved(7)
	assert.Equal(t, initial+7, testutil.ToFloat64(m.RecordsDuplicate))
}

func TestRecordFilteredOut(t *testing.T) {
	m := NewMetrics("test_filtered_out")

	initial := testutil.ToFloat64(m.RecordsFiltered)
	m.RecordFilteredOut(3)
	assert.Equal(t, initial+3, testutil.ToFloat64(m.RecordsFiltered))
}

func TestRecordCacheHitMiss(t *testing.T) {
	m := NewMetrics("test_cache_hit_miss")

	m.RecordCacheHit()
	m.RecordCacheMiss()
	m.RecordCacheMiss()
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheHits))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.CacheMisses))
}

// Helper to get histogram sample count
func getHistogramSampleCount(h prometheus.Histogram) (uint64, error) {
	ch := make(chan prometheus.Metric, 1)
	h.Collect(ch)
	close(ch)

	var m prometheus.Metric
	for m = range ch {
		break
	}

	var dto = &dto.Metric{}
	if err := m.Write(dto); err != nil {
		return 0, err
	}

	return dto.Histogram.GetSampleCount(), nil
}
