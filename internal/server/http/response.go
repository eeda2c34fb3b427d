package httpserver

import (
	"github.com/paperscope/literature-aggregation-service/internal/aggregator"
	"github.com/paperscope/literature-aggregation-service/internal/domain"
)

// Search response types for JSON serialization.

type searchResponse struct {
	Records []recordResponse `json:"records"`
	Meta    metaResponse     `json:"meta"`
}

type metaResponse struct {
	TotalFetched      int               `json:"total_fetched"`
	DuplicatesRemoved int               `json:"duplicates_removed"`
	FilteredOut       int               `json:"filtered_out"`
	Returned          int               `json:"returned"`
	SourceCounts      map[string]int    `json:"source_counts"`
	SourceErrors      map[string]string `json:"source_errors,omitempty"`
	Truncated         bool              `json:"truncated"`
	DurationMS        int64             `json:"duration_ms"`
	FromCache         bool              `json:"from_cache"`
}

type recordResponse struct {
	Title         string           `json:"title"`
	Authors       []authorResponse `json:"authors"`
	Abstract      string           `json:"abstract,omitempty"`
	DOI           string           `json:"doi,omitempty"`
	URL           string           `json:"url,omitempty"`
	PublishedDate string           `json:"published_date,omitempty"`
	Journal       string           `json:"journal,omitempty"`
	CitationCount int              `json:"citation_count"`
	Source        string           `json:"source"`
}

type authorResponse struct {
	Name        string `json:"name"`
	Affiliation string `json:"affiliation,omitempty"`
}

// Converter functions

func resultToResponse(result *aggregator.Result) searchResponse {
	records := make([]recordResponse, len(result.Records))
	for i, r := range result.Records {
		records[i] = recordToResponse(r)
	}

	counts := make(map[string]int, len(result.SourceCounts))
	for source, count := range result.SourceCounts {
		counts[string(source)] = count
	}

	var failures map[string]string
	if len(result.SourceErrors) > 0 {
		failures = make(map[string]string, len(result.SourceErrors))
		for source, message := range result.SourceErrors {
			failures[string(source)] = message
		}
	}

	return searchResponse{
		Records: records,
		Meta: metaResponse{
			TotalFetched:      result.TotalFetched,
			DuplicatesRemoved: result.DuplicatesRemoved,
			FilteredOut:       result.FilteredOut,
			Returned:          len(result.Records),
			SourceCounts:      counts,
			SourceErrors:      failures,
			Truncated:         result.Truncated,
			DurationMS:        result.Duration.Milliseconds(),
			FromCache:         result.FromCache,
		},
	}
}

func recordToResponse(r domain.Record) recordResponse {
	authors := make([]authorResponse, len(r.Authors))
	for i, a := range r.Authors {
		authors[i] = authorResponse{
			Name:        a.Name,
			Affiliation: a.Affiliation,
		}
	}
	return recordResponse{
		Title:         r.Title,
		Authors:       authors,
		Abstract:      r.Abstract,
		DOI:           r.DOI,
		URL:           r.URL,
		PublishedDate: r.PublishedDate,
		Journal:       r.Journal,
		CitationCount: r.CitationCount,
		Source:        string(r.Source),
	}
}
