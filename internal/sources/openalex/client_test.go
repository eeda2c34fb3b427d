package openalex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperscope/literature-aggregation-service/internal/domain"
	"github.com/paperscope/literature-aggregation-service/internal/sources"
)

// newTestClient creates a client configured for testing with the given server URL.
func newTestClient(serverURL string, enabled bool) *Client {
	cfg := Config{
		BaseURL:    serverURL,
		Email:      "test@example.com",
		Timeout:    5 * time.Second,
		RateLimit:  100, // High rate for testing
		BurstSize:  100,
		MaxResults: 25,
		Enabled:    enabled,
	}

	httpClient := sources.NewHTTPClient(sources.HTTPClientConfig{
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		BurstSize: cfg.BurstSize,
		UserAgent: "TestClient/1.0",
	})

	return NewWithHTTPClient(cfg, httpClient)
}

// sampleSearchResponse returns a sample OpenAlex search response for testing.
func sampleSearchResponse() SearchResponse {
	return SearchResponse{
		Meta: Meta{
			Count:   3,
			Page:    1,
			PerPage: 25,
		},
		Results: []Work{
			{
				ID:              "https://openalex.org/W2741809807",
				DOI:             "https://doi.org/10.1038/nature12373",
				DisplayName:     "CRISPR-Cas Systems for Editing &amp; Regulating Genomes",
				PublicationYear: 2014,
				PublicationDate: "2014-06-05",
				Type:            "article",
				CitedByCount:    5000,
				OpenAccess: &OpenAccess{
					IsOA:  true,
					OAURL: "https://europepmc.org/articles/pmc4022601?pdf=render",
				},
				Authorships: []Authorship{
					{
						Author: AuthorInfo{DisplayName: "John Smith"},
						Institutions: []Institution{
							{DisplayName: "MIT"},
						},
					},
					{
						Author: AuthorInfo{DisplayName: "Jane Doe"},
					},
				},
				PrimaryLocation: &Location{
					Source: &Source{DisplayName: "Nature Biotechnology", Type: "journal"},
				},
				AbstractInvertedIndex: map[string][]int{
					"CRISPR":   {0},
					"is":       {1},
					"a":        {2},
					"powerful": {3},
					"tool.":    {4},
				},
			},
			{
				// Placeholder title; the mapper must skip this work.
				ID:              "https://openalex.org/W999",
				DisplayName:     "Untitled",
				PublicationYear: 2020,
				CitedByCount:    5,
			},
			{
				ID:              "https://openalex.org/W2741809808",
				DisplayName:     "Gene Therapy Advances",
				PublicationYear: 2023,
				CitedByCount:    150,
				PrimaryLocation: &Location{
					LandingPage: "https://www.science.org/doi/10.1126/science.1234567",
				},
			},
		},
	}
}

func TestSearch(t *testing.T) {
	var capturedQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedQuery = r.URL.RawQuery
		assert.Equal(t, "/works", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(sampleSearchResponse()))
	}))
	defer server.Close()

	client := newTestClient(server.URL, true)

	result, err := client.Search(context.Background(), sources.SearchParams{
		Query:      "crispr",
		MaxResults: 10,
		SortBy:     domain.SortByCitations,
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, domain.SourceTypeOpenAlex, result.Source)
	assert.Equal(t, 3, result.TotalResults)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Records, 2)

	first := result.Records[0]
	assert.Equal(t, "CRISPR-Cas Systems for Editing & Regulating Genomes", first.Title)
	assert.Equal(t, "10.1038/nature12373", first.DOI)
	assert.Equal(t, "https://europepmc.org/articles/pmc4022601?pdf=render", first.URL)
	assert.Equal(t, "Nature Biotechnology", first.Journal)
	assert.Equal(t, "2014-06-05", first.PublishedDate)
	assert.Equal(t, 5000, first.CitationCount)
	assert.Equal(t, "CRISPR is a powerful tool.", first.Abstract)
	require.Len(t, first.Authors, 2)
	assert.Equal(t, "John Smith", first.Authors[0].Name)
	assert.Equal(t, "MIT", first.Authors[0].Affiliation)

	second := result.Records[1]
	assert.Equal(t, "2023", second.PublishedDate)
	assert.Equal(t, "https://www.science.org/doi/10.1126/science.1234567", second.URL)
	require.Len(t, second.Authors, 1)
	assert.Equal(t, domain.UnknownAuthorName, second.Authors[0].Name)

	assert.Contains(t, capturedQuery, "search=crispr")
	assert.Contains(t, capturedQuery, "per_page=10")
	assert.Contains(t, capturedQuery, "sort=cited_by_count%3Adesc")
	assert.Contains(t, capturedQuery, "mailto=test%40example.com")
}

func TestSearchSortMapping(t *testing.T) {
	tests := []struct {
		name     string
		sortBy   domain.SortKey
		wantSort string
	}{
		{name: "citations", sortBy: domain.SortByCitations, wantSort: "cited_by_count:desc"},
		{name: "year", sortBy: domain.SortByYear, wantSort: "publication_year:desc"},
		{name: "relevance", sortBy: domain.SortByRelevance, wantSort: "relevance_score:desc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var capturedSort string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				capturedSort = r.URL.Query().Get("sort")
				w.Header().Set("Content-Type", "application/json")
				require.NoError(t, json.NewEncoder(w).Encode(SearchResponse{}))
			}))
			defer server.Close()

			client := newTestClient(server.URL, true)
			_, err := client.Search(context.Background(), sources.SearchParams{Query: "x", SortBy: tt.sortBy})
			require.NoError(t, err)
			assert.Equal(t, tt.wantSort, capturedSort)
		})
	}
}

func TestSearchClampsPerPage(t *testing.T) {
	var capturedPerPage string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPerPage = r.URL.Query().Get("per_page")
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(SearchResponse{}))
	}))
	defer server.Close()

	client := newTestClient(server.URL, true)
	_, err := client.Search(context.Background(), sources.SearchParams{Query: "x", MaxResults: 1000})
	require.NoError(t, err)
	assert.Equal(t, "200", capturedPerPage)
}

func TestSearchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient(server.URL, true)
	result, err := client.Search(context.Background(), sources.SearchParams{Query: "x"})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestGetByID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/works/https://doi.org/10.1038/nature12373", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(sampleSearchResponse().Results[0]))
	}))
	defer server.Close()

	client := newTestClient(server.URL, true)
	record, err := client.GetByID(context.Background(), "10.1038/nature12373")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "10.1038/nature12373", record.DOI)
	assert.Equal(t, domain.SourceTypeOpenAlex, record.Source)
}

func TestGetByIDNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL, true)
	record, err := client.GetByID(context.Background(), "W0")
	assert.Nil(t, record)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReconstructAbstract(t *testing.T) {
	tests := []struct {
		name  string
		index map[string][]int
		want  string
	}{
		{
			name: "ordered by position",
			index: map[string][]int{
				"brown": {1},
				"the":   {0, 3},
				"fox":   {2},
				"den":   {4},
			},
			want: "the brown fox the den",
		},
		{name: "empty index", index: nil, want: ""},
		{name: "single word", index: map[string][]int{"hello": {0}}, want: "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reconstructAbstract(tt.index))
		})
	}
}

func TestReconstructAbstractTruncation(t *testing.T) {
	word := strings.Repeat("a", 1000)
	index := make(map[string][]int)
	for i := 0; i < 10; i++ {
		index[word+strings.Repeat("b", i)] = []int{i}
	}

	abstract := reconstructAbstract(index)
	assert.True(t, strings.HasSuffix(abstract, "..."))
	assert.LessOrEqual(t, len(abstract), domain.MaxAbstractLength+3)
}

func TestUsableTitle(t *testing.T) {
	assert.True(t, usableTitle("Gene Therapy"))
	assert.False(t, usableTitle(""))
	assert.False(t, usableTitle("ab"))
	assert.False(t, usableTitle("Untitled"))
	assert.False(t, usableTitle("untitled"))
}

func TestClientMetadata(t *testing.T) {
	client := newTestClient("http://localhost:0", true)
	assert.Equal(t, domain.SourceTypeOpenAlex, client.SourceType())
	assert.Equal(t, "OpenAlex", client.Name())
	assert.True(t, client.IsEnabled())

	disabled := newTestClient("http://localhost:0", false)
	assert.False(t, disabled.IsEnabled())
}
