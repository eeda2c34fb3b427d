package domain

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestExtractYear(t *testing.T) {
	tests := []struct {
		name string
		date string
		want int
	}{
		{name: "full ISO date", date: "2024-01-15", want: 2024},
		{name: "year and month", date: "2021-06", want: 2021},
		{name: "year only", date: "1998", want: 1998},
		{name: "empty string", date: "", want: 0},
		{name: "no year present", date: "unknown", want: 0},
		{name: "pre-1900 year rejected", date: "1854", want: 0},
		{name: "year embedded in text", date: "published 2019 (online)", want: 2019},
		{name: "five digit number is not a year", date: "20195", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractYear(tt.date))
		})
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{
			name:  "lowercases and strips punctuation",
			title: "Attention Is All You Need!",
			want:  "attention is all you need",
		},
		{
			name:  "collapses whitespace",
			title: "  Deep   Learning\n for\tNLP ",
			want:  "deep learning for nlp",
		},
		{
			name:  "hyphenated terms merge",
			title: "Self-Supervised Learning",
			want:  "selfsupervised learning",
		},
		{name: "empty title", title: "", want: ""},
		{name: "punctuation only", title: "?!...", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTitle(tt.title))
		})
	}
}

func TestNormalizeTitleEquivalence(t *testing.T) {
	// Titles differing only in casing, punctuation, and spacing must collapse
	// to the same identity key.
	variants := []string{
		"CRISPR-Cas9: A Review",
		"crispr-cas9 a review",
		"CRISPR-CAS9   A  Review!!",
	}
	want := NormalizeTitle(variants[0])
	for _, v := range variants[1:] {
		assert.Equal(t, want, NormalizeTitle(v))
	}
}

func TestNormalizeDOI(t *testing.T) {
	tests := []struct {
		name string
		doi  string
		want string
	}{
		{name: "https prefix stripped", doi: "https://doi.org/10.1038/nature12373", want: "10.1038/nature12373"},
		{name: "http prefix stripped", doi: "http://doi.org/10.1000/XYZ123", want: "10.1000/xyz123"},
		{name: "doi scheme stripped", doi: "doi:10.1234/abc", want: "10.1234/abc"},
		{name: "bare DOI lowercased", doi: "10.1126/SCIENCE.1234567", want: "10.1126/science.1234567"},
		{name: "whitespace trimmed", doi: "  10.1/1 ", want: "10.1/1"},
		{name: "empty", doi: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDOI(tt.doi))
		})
	}
}

func TestResolveSortKey(t *testing.T) {
	assert.Equal(t, SortByCitations, ResolveSortKey("citations"))
	assert.Equal(t, SortByYear, ResolveSortKey("year"))
	assert.Equal(t, SortByRelevance, ResolveSortKey("relevance"))
	assert.Equal(t, SortByYear, ResolveSortKey("  YEAR "))
	assert.Equal(t, SortByCitations, ResolveSortKey(""))
	assert.Equal(t, SortByCitations, ResolveSortKey("journal_impact"))
}

func TestRecordValid(t *testing.T) {
	valid := Record{Title: "A Title", Source: SourceTypeCrossRef}
	assert.True(t, valid.Valid())

	blank := Record{Title: "   ", Source: SourceTypeArXiv}
	assert.False(t, blank.Valid())

	negative := Record{Title: "A Title", CitationCount: -1}
	assert.False(t, negative.Valid())
}

func TestRecordYear(t *testing.T) {
	r := Record{Title: "x", PublishedDate: "2020-05-01"}
	assert.Equal(t, 2020, r.Year())

	r = Record{Title: "x"}
	assert.Equal(t, 0, r.Year())
}

func TestTruncateAbstract(t *testing.T) {
	short := "a short abstract"
	assert.Equal(t, short, TruncateAbstract(short))

	long := strings.Repeat("a", MaxAbstractLength+10)
	truncated := TruncateAbstract(long)
	assert.Len(t, truncated, MaxAbstractLength+3)
	assert.True(t, strings.HasSuffix(truncated, "..."))
}

func TestTruncateAbstractMultibyte(t *testing.T) {
	// The cut must never split a multi-byte rune.
	long := strings.Repeat("é", MaxAbstractLength+10)
	truncated := TruncateAbstract(long)

	assert.True(t, utf8.ValidString(truncated))
	assert.Equal(t, MaxAbstractLength+3, utf8.RuneCountInString(truncated))
	assert.True(t, strings.HasSuffix(truncated, "..."))
}

func TestFilterCriteriaActive(t *testing.T) {
	assert.False(t, FilterCriteria{}.Active())
	assert.True(t, FilterCriteria{YearMin: 2000}.Active())
	assert.True(t, FilterCriteria{YearMax: 2024}.Active())
	assert.True(t, FilterCriteria{MinCitations: 1}.Active())
	assert.True(t, FilterCriteria{Authors: []string{"smith"}}.Active())
	assert.True(t, FilterCriteria{Journals: []string{"nature"}}.Active())
	assert.True(t, FilterCriteria{OpenAccessOnly: true}.Active())
}

func TestIsValidSourceType(t *testing.T) {
	assert.True(t, IsValidSourceType(SourceTypeCrossRef))
	assert.True(t, IsValidSourceType(SourceTypeArXiv))
	assert.True(t, IsValidSourceType(SourceTypeOpenAlex))
	assert.False(t, IsValidSourceType(SourceType("pubmed")))
	assert.False(t, IsValidSourceType(SourceType("")))
}

func TestErrorUnwrapping(t *testing.T) {
	verr := NewValidationError("keyword", "must not be empty")
	assert.ErrorIs(t, verr, ErrInvalidInput)
	assert.Contains(t, verr.Error(), "keyword")

	nerr := NewNotFoundError("record", "10.1/1")
	assert.ErrorIs(t, nerr, ErrNotFound)

	serr := NewSourceError(SourceTypeArXiv, errors.New("connection refused"))
	assert.ErrorIs(t, serr, ErrSourceUnavailable)
	assert.Contains(t, serr.Error(), "arxiv")

	aerr := NewExternalAPIError("CrossRef", 503, "upstream down")
	assert.ErrorIs(t, aerr, ErrSourceUnavailable)
	assert.Contains(t, aerr.Error(), "503")
}
