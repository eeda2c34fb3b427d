package aggregator

import (
	"strings"

	"github.com/paperscope/literature-aggregation-service/internal/domain"
)

// ApplyFilters returns the records matching every active criterion, plus the
// number removed. Criteria combine with AND semantics; the zero criteria
// value passes everything through untouched.
func ApplyFilters(records []domain.Record, criteria domain.FilterCriteria) ([]domain.Record, int) {
	if !criteria.Active() {
		return records, 0
	}

	matched := make([]domain.Record, 0, len(records))
	for _, record := range records {
		if matchesFilters(&record, criteria) {
			matched = append(matched, record)
		}
	}
	return matched, len(records) - len(matched)
}

// matchesFilters reports whether a record passes every active criterion.
// Records missing the data a criterion inspects fail that criterion: a
// record with no extractable year fails any year bound, and a record with
// no authors fails an author filter.
func matchesFilters(record *domain.Record, criteria domain.FilterCriteria) bool {
	if criteria.YearMin != 0 || criteria.YearMax != 0 {
		year := record.Year()
		if year == 0 {
			return false
		}
		if criteria.YearMin != 0 && year < criteria.YearMin {
			return false
		}
		if criteria.YearMax != 0 && year > criteria.YearMax {
			return false
		}
	}

	if criteria.MinCitations != 0 && record.CitationCount < criteria.MinCitations {
		return false
	}

	if len(criteria.Authors) > 0 && !matchesAnyAuthor(record.Authors, criteria.Authors) {
		return false
	}

	if len(criteria.Journals) > 0 && !containsAnyFold(record.Journal, criteria.Journals) {
		return false
	}

	if criteria.OpenAccessOnly && record.URL == "" {
		return false
	}

	return true
}

// matchesAnyAuthor reports whether any record author name contains any of
// the wanted substrings, case-insensitively.
func matchesAnyAuthor(authors []domain.Author, wanted []string) bool {
	for _, author := range authors {
		if containsAnyFold(author.Name, wanted) {
			return true
		}
	}
	return false
}

// containsAnyFold reports whether s contains any of the substrings,
// case-insensitively. Empty substrings never match.
func containsAnyFold(s string, substrings []string) bool {
	if s == "" {
		return false
	}
	lower := strings.ToLower(s)
	for _, sub := range substrings {
		sub = strings.ToLower(strings.TrimSpace(sub))
		if sub == "" {
			continue
		}
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}
