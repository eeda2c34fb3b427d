package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/paperscope/literature-aggregation-service/internal/aggregator"
	"github.com/paperscope/literature-aggregation-service/internal/domain"
)

const maxRequestBodySize = 1 << 20 // 1 MB limit for request bodies

// searchRequest is the JSON request body for a basic aggregated search.
type searchRequest struct {
	Keyword string   `json:"keyword" validate:"required,max=500"`
	Limit   int      `json:"limit,omitempty" validate:"omitempty,min=1,max=50"`
	Sources []string `json:"sources,omitempty" validate:"omitempty,dive,oneof=crossref arxiv openalex"`
	SortBy  string   `json:"sort_by,omitempty" validate:"omitempty,oneof=citations year relevance"`
}

// advancedSearchRequest adds filter criteria to the basic search request.
type advancedSearchRequest struct {
	Keyword string         `json:"keyword" validate:"required,max=500"`
	Limit   int            `json:"limit,omitempty" validate:"omitempty,min=1,max=50"`
	Sources []string       `json:"sources,omitempty" validate:"omitempty,dive,oneof=crossref arxiv openalex"`
	SortBy  string         `json:"sort_by,omitempty" validate:"omitempty,oneof=citations year relevance"`
	Filters *filterRequest `json:"filters,omitempty"`
}

// filterRequest is the JSON shape of the optional result filters.
type filterRequest struct {
	YearMin        int      `json:"year_min,omitempty"`
	YearMax        int      `json:"year_max,omitempty"`
	MinCitations   int      `json:"min_citations,omitempty" validate:"omitempty,min=0"`
	Authors        []string `json:"authors,omitempty"`
	Journals       []string `json:"journals,omitempty"`
	OpenAccessOnly bool     `json:"open_access_only,omitempty"`
}

// searchLiterature handles POST /api/v1/literature/search.
func (s *Server) searchLiterature(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	params := aggregator.Params{
		Keyword:        req.Keyword,
		LimitPerSource: req.Limit,
		Sources:        toSourceTypes(req.Sources),
		SortBy:         domain.SortKey(req.SortBy),
	}
	s.runAggregation(w, r, params)
}

// advancedSearchLiterature handles POST /api/v1/literature/search/advanced.
func (s *Server) advancedSearchLiterature(w http.ResponseWriter, r *http.Request) {
	var req advancedSearchRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	params := aggregator.Params{
		Keyword:        req.Keyword,
		LimitPerSource: req.Limit,
		Sources:        toSourceTypes(req.Sources),
		SortBy:         domain.SortKey(req.SortBy),
	}
	if req.Filters != nil {
		params.Filters = domain.FilterCriteria{
			YearMin:        req.Filters.YearMin,
			YearMax:        req.Filters.YearMax,
			MinCitations:   req.Filters.MinCitations,
			Authors:        req.Filters.Authors,
			Journals:       req.Filters.Journals,
			OpenAccessOnly: req.Filters.OpenAccessOnly,
		}
	}
	s.runAggregation(w, r, params)
}

// lookupByDOI handles GET /api/v1/literature/doi/*.
// Finders are tried in order; the first hit wins.
func (s *Server) lookupByDOI(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "*")
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}

	doi := domain.NormalizeDOI(raw)
	if doi == "" {
		writeError(w, http.StatusBadRequest, "doi is required")
		return
	}

	ctx := r.Context()
	if s.searchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.searchTimeout)
		defer cancel()
	}

	var lastErr error
	for _, finder := range s.finders {
		record, err := finder.GetByDOI(ctx, doi)
		if err == nil {
			writeJSON(w, http.StatusOK, recordToResponse(*record))
			return
		}
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		lastErr = err
	}

	if lastErr != nil {
		s.logger.Warn().Str("doi", doi).Err(lastErr).Msg("DOI lookup failed")
		writeDomainError(w, lastErr)
		return
	}
	writeError(w, http.StatusNotFound, "no record found for DOI: "+doi)
}

// runAggregation executes an aggregated search and writes the response.
func (s *Server) runAggregation(w http.ResponseWriter, r *http.Request, params aggregator.Params) {
	ctx := r.Context()
	if s.searchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.searchTimeout)
		defer cancel()
	}

	result, err := s.aggregator.Aggregate(ctx, params)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultToResponse(result))
}

// decodeAndValidate reads the request body into req and runs struct
// validation. It writes the error response itself and reports success.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return false
	}

	if err := json.Unmarshal(body, req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return false
	}

	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

// validationMessage renders the first field violation as a client message.
func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		switch fe.Tag() {
		case "required":
			return fe.Field() + " is required"
		case "min", "max":
			return fe.Field() + " is out of range"
		case "oneof":
			return fe.Field() + " has an unsupported value"
		default:
			return fe.Field() + " is invalid"
		}
	}
	return "invalid request"
}

func toSourceTypes(names []string) []domain.SourceType {
	if len(names) == 0 {
		return nil
	}
	types := make([]domain.SourceType, len(names))
	for i, name := range names {
		types[i] = domain.SourceType(name)
	}
	return types
}
