package aggregator

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// DefaultCacheSize is the default maximum number of cached results.
	DefaultCacheSize = 1024

	// DefaultCacheTTL is the default time-to-live for cached results.
	DefaultCacheTTL = 5 * time.Minute
)

// ResultCache is a TTL-bounded LRU cache for aggregated search results.
// Identical queries within the TTL window are served without touching the
// upstream sources. It is safe for concurrent use.
type ResultCache struct {
	lru *expirable.LRU[string, *Result]
}

// NewResultCache creates a cache holding up to size results for ttl each.
// Non-positive values fall back to the defaults.
func NewResultCache(size int, ttl time.Duration) *ResultCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ResultCache{
		lru: expirable.NewLRU[string, *Result](size, nil, ttl),
	}
}

// Get returns the cached result for the given parameters, or nil if absent
// or expired.
func (c *ResultCache) Get(params Params) *Result {
	result, ok := c.lru.Get(cacheKey(params))
	if !ok {
		return nil
	}
	return result
}

// Set stores a result under the given parameters.
func (c *ResultCache) Set(params Params, result *Result) {
	c.lru.Add(cacheKey(params), result)
}

// Len returns the number of live entries in the cache.
func (c *ResultCache) Len() int {
	return c.lru.Len()
}

// Purge removes all entries from the cache.
func (c *ResultCache) Purge() {
	c.lru.Purge()
}

// cacheKey derives a stable key from every parameter that affects the
// result. Source order is normalized so equivalent requests share a key.
func cacheKey(params Params) string {
	sourceNames := make([]string, 0, len(params.Sources))
	for _, source := range params.Sources {
		sourceNames = append(sourceNames, string(source))
	}
	sort.Strings(sourceNames)

	f := params.Filters
	return fmt.Sprintf("%s|%d|%s|%s|%d|%d|%d|%s|%s|%t",
		strings.ToLower(strings.TrimSpace(params.Keyword)),
		params.LimitPerSource,
		strings.Join(sourceNames, ","),
		params.SortBy,
		f.YearMin,
		f.YearMax,
		f.MinCitations,
		strings.ToLower(strings.Join(f.Authors, ",")),
		strings.ToLower(strings.Join(f.Journals, ",")),
		f.OpenAccessOnly,
	)
}
