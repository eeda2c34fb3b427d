// Package sources provides interfaces and shared infrastructure for
// literature source clients.
//
// Each external literature API (CrossRef, arXiv, OpenAlex) implements the
// SourceClient interface, allowing the aggregation service to search multiple
// sources concurrently with a unified contract.
//
// Example usage:
//
//	client := crossref.New(cfg)
//	params := sources.SearchParams{
//		Query:      "transformer architectures",
//		MaxResults: 20,
//	}
//	result, err := client.Search(ctx, params)
package sources

import (
	"context"
	"time"

	"github.com/paperscope/literature-aggregation-service/internal/domain"
)

// SearchParams defines the parameters for searching a literature source.
type SearchParams struct {
	// Query is the search keyword (required).
	Query string

	// MaxResults limits the number of records returned in a single request.
	// Sources clamp this to their own page-size maximums. A value of 0 uses
	// the source's default.
	MaxResults int

	// SortBy hints the native sort parameter to request from the source.
	// Sources that cannot honor a criterion map it to the closest one they
	// support (arXiv has no citation data, so citations degrades to relevance).
	SortBy domain.SortKey
}

// SearchResult contains the outcome of a source search operation.
type SearchResult struct {
	// Records contains the normalized records returned by the search.
	// May be empty if no records match or every item failed to parse.
	Records []domain.Record

	// TotalResults is the total number of matches reported by the source
	// API, regardless of pagination limits. May be an estimate.
	TotalResults int

	// Skipped counts individual response items that could not be mapped to
	// a valid record (for example, a missing title) and were dropped.
	Skipped int

	// Source identifies which literature source produced these results.
	Source domain.SourceType

	// SearchDuration is the time taken to execute the search, including
	// network latency and response parsing.
	SearchDuration time.Duration
}

// SourceClient defines the interface that all literature source clients
// must implement.
type SourceClient interface {
	// Search queries the source for records matching the given parameters.
	//
	// Implementations must:
	//   - Respect context cancellation
	//   - Apply rate limiting as needed
	//   - Transform source-specific responses into domain.Record values
	//   - Skip individual malformed items rather than failing the batch
	//
	// A transport failure, non-2xx status, or unparseable top-level payload
	// returns an error wrapping domain.ErrSourceUnavailable.
	Search(ctx context.Context, params SearchParams) (*SearchResult, error)

	// SourceType returns the type identifier for this source.
	// Used for attribution, deduplication, and routing.
	SourceType() domain.SourceType

	// Name returns a human-readable name for this source.
	// Used for logging, metrics, and display purposes.
	Name() string

	// IsEnabled returns whether this source is currently enabled and
	// available for searches.
	IsEnabled() bool
}
