package aggregator

import (
	"github.com/paperscope/literature-aggregation-service/internal/domain"
)

// Deduplicate removes duplicate records in a single left-to-right pass and
// returns the surviving records plus the number removed. The first
// occurrence of a record always wins, so callers control precedence through
// input order.
//
// Two records are duplicates when they share a normalized DOI, or, failing
// that, a normalized title. A record with neither a DOI nor a usable title
// key is never treated as a duplicate.
func Deduplicate(records []domain.Record) ([]domain.Record, int) {
	if len(records) == 0 {
		return []domain.Record{}, 0
	}

	seenDOIs := make(map[string]struct{}, len(records))
	seenTitles := make(map[string]struct{}, len(records))
	unique := make([]domain.Record, 0, len(records))
	removed := 0

	for _, record := range records {
		doi := domain.NormalizeDOI(record.DOI)
		title := domain.NormalizeTitle(record.Title)

		if doi != "" {
			if _, ok := seenDOIs[doi]; ok {
				removed++
				continue
			}
		}
		if title != "" {
			if _, ok := seenTitles[title]; ok {
				removed++
				continue
			}
		}

		if doi != "" {
			seenDOIs[doi] = struct{}{}
		}
		if title != "" {
			seenTitles[title] = struct{}{}
		}
		unique = append(unique, record)
	}

	return unique, removed
}
