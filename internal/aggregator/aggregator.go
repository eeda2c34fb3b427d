// Package aggregator orchestrates concurrent literature searches across
// multiple sources and runs the merged results through a deduplicate,
// filter, and rank pipeline.
package aggregator

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/paperscope/literature-aggregation-service/internal/domain"
	"github.com/paperscope/literature-aggregation-service/internal/observability"
	"github.com/paperscope/literature-aggregation-service/internal/sources"
)

const (
	// MaxKeywordLength is the longest accepted search keyword.
	MaxKeywordLength = 500

	// DefaultLimitPerSource is used when the caller does not set a limit.
	DefaultLimitPerSource = 20

	// MaxLimitPerSource is the largest accepted per-source limit.
	MaxLimitPerSource = 50

	// ResultBudgetFactor bounds the final result count to this multiple of
	// the per-source limit.
	ResultBudgetFactor = 3
)

// Params describes one aggregated search.
type Params struct {
	// Keyword is the search term (required, at most MaxKeywordLength chars).
	Keyword string

	// LimitPerSource caps the records requested from each source.
	// Zero selects DefaultLimitPerSource.
	LimitPerSource int

	// Sources restricts the search to the named sources. Empty means every
	// enabled source.
	Sources []domain.SourceType

	// SortBy selects the ranking criterion for the merged results.
	SortBy domain.SortKey

	// Filters holds the optional predicates applied after deduplication.
	Filters domain.FilterCriteria
}

// Result is the outcome of one aggregated search.
type Result struct {
	// Records is the final deduplicated, filtered, ranked result set.
	// Never nil.
	Records []domain.Record

	// TotalFetched counts records fetched across all sources before the
	// pipeline ran.
	TotalFetched int

	// DuplicatesRemoved counts records dropped by deduplication.
	DuplicatesRemoved int

	// FilteredOut counts records dropped by filter criteria.
	FilteredOut int

	// SourceCounts maps each responding source to the records it contributed.
	SourceCounts map[domain.SourceType]int

	// SourceErrors maps each failed source to its error message. A source
	// failure never fails the aggregation.
	SourceErrors map[domain.SourceType]string

	// Truncated reports whether the result budget cut the final set.
	Truncated bool

	// Duration is the end-to-end aggregation time.
	Duration time.Duration

	// FromCache reports whether this result was served from the cache.
	FromCache bool
}

// Config holds aggregator settings.
type Config struct {
	// DefaultLimitPerSource is applied when a request does not set a limit.
	// Zero selects the package DefaultLimitPerSource.
	DefaultLimitPerSource int
}

// Aggregator coordinates the fan-out search and the result pipeline.
type Aggregator struct {
	registry     *sources.Registry
	cache        *ResultCache
	logger       zerolog.Logger
	metrics      *observability.Metrics
	defaultLimit int
}

// New creates an Aggregator. The cache is optional; pass nil to disable
// result caching.
func New(cfg Config, registry *sources.Registry, cache *ResultCache, logger zerolog.Logger, metrics *observability.Metrics) *Aggregator {
	if cfg.DefaultLimitPerSource <= 0 {
		cfg.DefaultLimitPerSource = DefaultLimitPerSource
	}
	return &Aggregator{
		registry:     registry,
		cache:        cache,
		logger:       logger,
		metrics:      metrics,
		defaultLimit: cfg.DefaultLimitPerSource,
	}
}

// Aggregate runs an aggregated search. Individual source failures degrade
// the result instead of failing it; even all sources failing yields an
// empty result. The only errors returned wrap domain.ErrInvalidInput.
func (a *Aggregator) Aggregate(ctx context.Context, params Params) (*Result, error) {
	startTime := time.Now()

	normalized, err := a.validate(params)
	if err != nil {
		a.metrics.RecordAggregationFailed(time.Since(startTime).Seconds())
		return nil, err
	}

	if a.cache != nil {
		if cached := a.cache.Get(normalized); cached != nil {
			a.metrics.RecordCacheHit()
			hit := *cached
			hit.FromCache = true
			return &hit, nil
		}
		a.metrics.RecordCacheMiss()
	}

	a.metrics.RecordAggregationStarted()
	logger := observability.WithAggregationContext(a.logger, normalized.Keyword, normalized.LimitPerSource)
	logger.Info().Msg("aggregated search started")

	searchParams := sources.SearchParams{
		Query:      normalized.Keyword,
		MaxResults: normalized.LimitPerSource,
		SortBy:     normalized.SortBy,
	}

	var outcomes []sources.SourceOutcome
	if len(normalized.Sources) == 0 {
		outcomes = a.registry.SearchAll(ctx, searchParams)
	} else {
		outcomes = a.registry.SearchSources(ctx, normalized.Sources, searchParams)
	}

	result := &Result{
		Records:      []domain.Record{},
		SourceCounts: make(map[domain.SourceType]int, len(outcomes)),
		SourceErrors: make(map[domain.SourceType]string),
	}

	merged := make([]domain.Record, 0, len(outcomes)*normalized.LimitPerSource)
	for _, outcome := range outcomes {
		sourceLabel := string(outcome.Source)
		if outcome.Error != nil {
			a.metrics.RecordSearchFailed(sourceLabel, 0)
			result.SourceErrors[outcome.Source] = outcome.Error.Error()
			result.SourceCounts[outcome.Source] = 0
			logger.Warn().
				Str("source", sourceLabel).
				Err(outcome.Error).
				Msg("source search failed")
			continue
		}

		count := len(outcome.Result.Records)
		a.metrics.RecordSearchCompleted(sourceLabel, count, outcome.Result.SearchDuration.Seconds())
		a.metrics.RecordRecordsFetched(sourceLabel, count)
		result.SourceCounts[outcome.Source] = count
		merged = append(merged, outcome.Result.Records...)
	}
	result.TotalFetched = len(merged)

	deduped, duplicates := Deduplicate(merged)
	result.DuplicatesRemoved = duplicates
	a.metrics.RecordDuplicatesRemoved(duplicates)

	filtered, removed := ApplyFilters(deduped, normalized.Filters)
	result.FilteredOut = removed
	a.metrics.RecordFilteredOut(removed)

	Rank(filtered, normalized.SortBy)

	budget := normalized.LimitPerSource * ResultBudgetFactor
	if len(filtered) > budget {
		filtered = filtered[:budget]
		result.Truncated = true
	}
	result.Records = filtered
	result.Duration = time.Since(startTime)

	a.metrics.RecordAggregationCompleted(result.Duration.Seconds(), len(result.Records))
	logger.Info().
		Int("fetched", result.TotalFetched).
		Int("duplicates_removed", result.DuplicatesRemoved).
		Int("filtered_out", result.FilteredOut).
		Int("returned", len(result.Records)).
		Dur("duration", result.Duration).
		Msg("aggregated search completed")

	if a.cache != nil {
		a.cache.Set(normalized, result)
	}

	return result, nil
}

// validate checks and normalizes the request parameters.
func (a *Aggregator) validate(params Params) (Params, error) {
	params.Keyword = strings.TrimSpace(params.Keyword)
	if params.Keyword == "" {
		return params, domain.NewValidationError("keyword", "must not be empty")
	}
	if len(params.Keyword) > MaxKeywordLength {
		return params, domain.NewValidationError("keyword", "must be at most 500 characters")
	}

	if params.LimitPerSource == 0 {
		params.LimitPerSource = a.defaultLimit
	}
	if params.LimitPerSource < 1 || params.LimitPerSource > MaxLimitPerSource {
		return params, domain.NewValidationError("limit_per_source", "must be between 1 and 50")
	}

	for _, source := range params.Sources {
		if !domain.IsValidSourceType(source) {
			return params, domain.NewValidationError("sources", "unknown source: "+string(source))
		}
	}

	if params.Filters.YearMin != 0 && params.Filters.YearMax != 0 &&
		params.Filters.YearMin > params.Filters.YearMax {
		return params, domain.NewValidationError("filters", "year_min must not exceed year_max")
	}
	if params.Filters.MinCitations < 0 {
		return params, domain.NewValidationError("filters", "min_citations must not be negative")
	}

	params.SortBy = domain.ResolveSortKey(string(params.SortBy))
	return params, nil
}
