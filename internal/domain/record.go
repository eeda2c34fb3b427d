// Package domain provides domain models and business logic for the literature aggregation service.
package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// SourceType identifies the external API that produced a record.
type SourceType string

const (
	SourceTypeCrossRef SourceType = "crossref"
	SourceTypeArXiv    SourceType = "arxiv"
	SourceTypeOpenAlex SourceType = "openalex"
)

// IsValidSourceType returns true if the source type is one of the supported sources.
func IsValidSourceType(s SourceType) bool {
	switch s {
	case SourceTypeCrossRef, SourceTypeArXiv, SourceTypeOpenAlex:
		return true
	default:
		return false
	}
}

// UnknownAuthorName is the sentinel author name substituted when a source
// returns a record with no author information.
const UnknownAuthorName = "Unknown Author"

// MaxAbstractLength is the maximum abstract length emitted by source clients.
// Longer abstracts are truncated with an ellipsis marker.
const MaxAbstractLength = 5000

// TruncateAbstract caps an abstract at MaxAbstractLength characters and
// appends an ellipsis marker. The cut falls on a rune boundary so a
// multi-byte character is never split.
func TruncateAbstract(abstract string) string {
	runes := []rune(abstract)
	if len(runes) <= MaxAbstractLength {
		return abstract
	}
	return string(runes[:MaxAbstractLength]) + "..."
}

// Author represents a record author with an optional affiliation.
type Author struct {
	Name        string `json:"name"`
	Affiliation string `json:"affiliation,omitempty"`
}

// Record is the unified representation of a literature item that every
// source client must produce. Records are immutable after creation: the
// aggregation pipeline filters, reorders, and deduplicates them but never
// mutates fields in place.
type Record struct {
	// Title is required. A record with an empty or whitespace-only title is
	// invalid and must never be emitted by a source client.
	Title string `json:"title"`

	// Authors preserves the author order reported by the source. Clients
	// substitute a single UnknownAuthorName entry when the source reports none.
	Authors []Author `json:"authors"`

	// Abstract is optional and bounded to MaxAbstractLength characters.
	Abstract string `json:"abstract,omitempty"`

	// DOI is the bare identifier with any doi.org URL prefix stripped.
	DOI string `json:"doi,omitempty"`

	// URL points at the work (landing page, abstract page, or DOI resolver).
	URL string `json:"url,omitempty"`

	// PublishedDate is an ISO-date-like string: YYYY, YYYY-MM, or YYYY-MM-DD.
	// It is used only for year extraction, so no stricter form is enforced.
	PublishedDate string `json:"published_date,omitempty"`

	// Journal is the venue name, if the source reports one.
	Journal string `json:"journal,omitempty"`

	// CitationCount is never negative; sources without citation data report 0.
	CitationCount int `json:"citation_count"`

	// Source identifies provenance. It is always set explicitly by the
	// producing client, never inferred.
	Source SourceType `json:"source"`
}

// Valid reports whether the record satisfies the minimum contract for
// entering the aggregation pipeline.
func (r *Record) Valid() bool {
	return strings.TrimSpace(r.Title) != "" && r.CitationCount >= 0
}

// Year returns the publication year extracted from PublishedDate,
// or 0 if none can be found.
func (r *Record) Year() int {
	return ExtractYear(r.PublishedDate)
}

// SortKey selects the ranking criterion for aggregated results.
type SortKey string

const (
	SortByCitations SortKey = "citations"
	SortByYear      SortKey = "year"
	SortByRelevance SortKey = "relevance"
)

// ResolveSortKey maps a raw sort string to a supported SortKey.
// Unknown or empty values fall back to SortByCitations.
func ResolveSortKey(raw string) SortKey {
	switch SortKey(strings.ToLower(strings.TrimSpace(raw))) {
	case SortByYear:
		return SortByYear
	case SortByRelevance:
		return SortByRelevance
	case SortByCitations:
		return SortByCitations
	default:
		return SortByCitations
	}
}

// FilterCriteria holds the optional predicates applied to the merged result
// set. The zero value matches every record.
type FilterCriteria struct {
	// YearMin and YearMax bound the extracted publication year (inclusive).
	// A record with no extractable year fails whenever either bound is set.
	YearMin int `json:"year_min,omitempty"`
	YearMax int `json:"year_max,omitempty"`

	// MinCitations requires citation_count >= MinCitations.
	MinCitations int `json:"min_citations,omitempty"`

	// Authors passes a record whose author names contain any of these
	// substrings (case-insensitive).
	Authors []string `json:"authors,omitempty"`

	// Journals passes a record whose journal name contains any of these
	// substrings (case-insensitive).
	Journals []string `json:"journals,omitempty"`

	// OpenAccessOnly passes records with a non-empty URL.
	OpenAccessOnly bool `json:"open_access_only,omitempty"`
}

// Active returns true if at least one predicate is set.
func (c FilterCriteria) Active() bool {
	return c.YearMin != 0 || c.YearMax != 0 || c.MinCitations != 0 ||
		len(c.Authors) > 0 || len(c.Journals) > 0 || c.OpenAccessOnly
}

// yearRegex matches the first plausible 4-digit publication year.
var yearRegex = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// ExtractYear returns the first 19xx/20xx year found in an ISO-date-like
// string, or 0 if the string contains none.
func ExtractYear(date string) int {
	if date == "" {
		return 0
	}
	match := yearRegex.FindString(date)
	if match == "" {
		return 0
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return year
}

// titleStripRegex removes everything except letters, digits, and whitespace.
var titleStripRegex = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

// NormalizeTitle lowercases a title, strips punctuation, and collapses
// internal whitespace. The result is the weak identity key used by
// title-based deduplication.
func NormalizeTitle(title string) string {
	if title == "" {
		return ""
	}
	normalized := titleStripRegex.ReplaceAllString(strings.ToLower(title), "")
	return strings.Join(strings.Fields(normalized), " ")
}

// NormalizeDOI strips doi.org URL prefixes and the doi: scheme from a DOI,
// returning the bare lowercase identifier.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	if doi == "" {
		return ""
	}
	lower := strings.ToLower(doi)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "doi:"} {
		if strings.HasPrefix(lower, prefix) {
			doi = doi[len(prefix):]
			lower = lower[len(prefix):]
		}
	}
	return strings.ToLower(strings.TrimSpace(doi))
}
