package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperscope/literature-aggregation-service/internal/domain"
)

func TestRankByCitationsDescending(t *testing.T) {
	records := []domain.Record{
		{Title: "Low", CitationCount: 5},
		{Title: "High", CitationCount: 500},
		{Title: "Mid", CitationCount: 50},
	}

	Rank(records, domain.SortByCitations)

	assert.Equal(t, "High", records[0].Title)
	assert.Equal(t, "Mid", records[1].Title)
	assert.Equal(t, "Low", records[2].Title)
}

func TestRankByCitationsStable(t *testing.T) {
	records := []domain.Record{
		{Title: "First", CitationCount: 10},
		{Title: "Second", CitationCount: 10},
		{Title: "Third", CitationCount: 10},
	}

	Rank(records, domain.SortByCitations)

	assert.Equal(t, "First", records[0].Title)
	assert.Equal(t, "Second", records[1].Title)
	assert.Equal(t, "Third", records[2].Title)
}

func TestRankByYearDescending(t *testing.T) {
	records := []domain.Record{
		{Title: "Old", PublishedDate: "1999-01-01"},
		{Title: "Undated"},
		{Title: "New", PublishedDate: "2024-06-01"},
		{Title: "Mid", PublishedDate: "2010"},
	}

	Rank(records, domain.SortByYear)

	require.Len(t, records, 4)
	assert.Equal(t, "New", records[0].Title)
	assert.Equal(t, "Mid", records[1].Title)
	assert.Equal(t, "Old", records[2].Title)
	// Records without an extractable year sort last.
	assert.Equal(t, "Undated", records[3].Title)
}

func TestRankByRelevanceKeepsOrder(t *testing.T) {
	records := []domain.Record{
		{Title: "B", CitationCount: 1},
		{Title: "A", CitationCount: 100},
		{Title: "C", CitationCount: 50},
	}

	Rank(records, domain.SortByRelevance)

	assert.Equal(t, "B", records[0].Title)
	assert.Equal(t, "A", records[1].Title)
	assert.Equal(t, "C", records[2].Title)
}

func TestRankUnknownKeyFallsBackToCitations(t *testing.T) {
	records := []domain.Record{
		{Title: "Low", CitationCount: 1},
		{Title: "High", CitationCount: 10},
	}

	Rank(records, domain.SortKey("impact_factor"))

	assert.Equal(t, "High", records[0].Title)
}
