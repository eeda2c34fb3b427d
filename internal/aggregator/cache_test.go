package aggregator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperscope/literature-aggregation-service/internal/domain"
)

func TestCacheRoundTrip(t *testing.T) {
	cache := NewResultCache(16, time.Minute)
	params := Params{Keyword: "crispr", LimitPerSource: 20}
	result := &Result{Records: []domain.Record{{Title: "A"}}, TotalFetched: 1}

	assert.Nil(t, cache.Get(params))

	cache.Set(params, result)
	got := cache.Get(params)
	require.NotNil(t, got)
	assert.Equal(t, result, got)
	assert.Equal(t, 1, cache.Len())
}

func TestCacheKeyIgnoresSourceOrder(t *testing.T) {
	a := Params{Keyword: "x", Sources: []domain.SourceType{domain.SourceTypeArXiv, domain.SourceTypeCrossRef}}
	b := Params{Keyword: "x", Sources: []domain.SourceType{domain.SourceTypeCrossRef, domain.SourceTypeArXiv}}
	assert.Equal(t, cacheKey(a), cacheKey(b))
}

func TestCacheKeyDistinguishesParams(t *testing.T) {
	base := Params{Keyword: "x", LimitPerSource: 20}

	differentLimit := base
	differentLimit.LimitPerSource = 10
	assert.NotEqual(t, cacheKey(base), cacheKey(differentLimit))

	differentKeyword := base
	differentKeyword.Keyword = "y"
	assert.NotEqual(t, cacheKey(base), cacheKey(differentKeyword))

	differentFilters := base
	differentFilters.Filters.MinCitations = 5
	assert.NotEqual(t, cacheKey(base), cacheKey(differentFilters))

	differentSort := base
	differentSort.SortBy = domain.SortByYear
	assert.NotEqual(t, cacheKey(base), cacheKey(differentSort))
}

func TestCacheExpiry(t *testing.T) {
	cache := NewResultCache(16, 50*time.Millisecond)
	params := Params{Keyword: "x"}
	cache.Set(params, &Result{})

	require.NotNil(t, cache.Get(params))
	time.Sleep(120 * time.Millisecond)
	assert.Nil(t, cache.Get(params))
}

func TestCachePurge(t *testing.T) {
	cache := NewResultCache(16, time.Minute)
	cache.Set(Params{Keyword: "a"}, &Result{})
	cache.Set(Params{Keyword: "b"}, &Result{})
	require.Equal(t, 2, cache.Len())

	cache.Purge()
	assert.Zero(t, cache.Len())
}
