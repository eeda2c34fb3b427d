package aggregator

import (
	"sort"

	"github.com/paperscope/literature-aggregation-service/internal/domain"
)

// Rank orders records in place by the given sort key.
//
// Citation and year sorts are descending and stable, so records with equal
// keys keep their merge order. A relevance sort is the identity: each
// source already returned its records in native relevance order and the
// merged stream preserves it.
func Rank(records []domain.Record, key domain.SortKey) {
	switch key {
	case domain.SortByYear:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Year() > records[j].Year()
		})
	case domain.SortByRelevance:
		// Identity: keep merge order.
	default:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].CitationCount > records[j].CitationCount
		})
	}
}
