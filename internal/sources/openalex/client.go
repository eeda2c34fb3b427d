package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/paperscope/literature-aggregation-service/internal/domain"
	"github.com/paperscope/literature-aggregation-service/internal/sources"
)

const (
	// DefaultBaseURL is the default OpenAlex API base URL.
	DefaultBaseURL = "https://api.openalex.org"

	// DefaultRateLimit is the default rate limit for requests per second.
	// OpenAlex polite pool (with email) allows higher rates.
	DefaultRateLimit = 10.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 10

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResults is the default maximum results per request.
	DefaultMaxResults = 25

	// MaxPerPage is the largest per_page value the works endpoint accepts.
	MaxPerPage = 200

	// minTitleLength is the shortest title accepted from OpenAlex. Shorter
	// titles are almost always indexing artifacts.
	minTitleLength = 3

	// sourceName is the human-readable name for this source.
	sourceName = "OpenAlex"

	// doiPrefix is the URL prefix that OpenAlex uses for DOIs.
	doiPrefix = "https://doi.org/"
)

// htmlTagRegex matches markup occasionally embedded in OpenAlex titles.
var htmlTagRegex = regexp.MustCompile(`<[^>]+>`)

// Config holds configuration for the OpenAlex client.
type Config struct {
	// BaseURL is the OpenAlex API base URL.
	// Defaults to https://api.openalex.org
	BaseURL string

	// Email is the contact email for the polite pool.
	// Providing an email grants access to higher rate limits.
	// See: https://docs.openalex.org/how-to-use-the-api/rate-limits-and-authentication
	Email string

	// Timeout is the request timeout.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// MaxResults is the maximum results to return per search request.
	// Clamped to MaxPerPage per the OpenAlex API.
	MaxResults int

	// Enabled indicates whether this source is enabled for searches.
	Enabled bool
}

// applyDefaults sets default values for unset configuration fields.
func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.BurstSize == 0 {
		c.BurstSize = DefaultBurstSize
	}
	if c.MaxResults == 0 {
		c.MaxResults = DefaultMaxResults
	}
}

// Client implements the sources.SourceClient interface for OpenAlex.
type Client struct {
	config     Config
	httpClient *sources.HTTPClient
}

// Ensure Client implements SourceClient interface.
var _ sources.SourceClient = (*Client)(nil)

// New creates a new OpenAlex client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	userAgent := "PaperScope-LiteratureAggregator/1.0"
	if cfg.Email != "" {
		userAgent += " (mailto:" + cfg.Email + ")"
	}

	httpClient := sources.NewHTTPClient(sources.HTTPClientConfig{
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		BurstSize: cfg.BurstSize,
		UserAgent: userAgent,
	})

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// NewWithHTTPClient creates a new OpenAlex client with a custom HTTP client.
// This is useful for testing with mock servers.
func NewWithHTTPClient(cfg Config, httpClient *sources.HTTPClient) *Client {
	cfg.applyDefaults()

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// Search queries OpenAlex for records matching the given parameters.
func (c *Client) Search(ctx context.Context, params sources.SearchParams) (*sources.SearchResult, error) {
	startTime := time.Now()

	searchURL, err := c.buildSearchURL(params)
	if err != nil {
		return nil, fmt.Errorf("building search URL: %w", err)
	}

	resp, err := c.httpClient.Get(ctx, searchURL)
	if err != nil {
		return nil, domain.NewSourceError(domain.SourceTypeOpenAlex, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, domain.NewExternalAPIError(sourceName, resp.StatusCode, string(body))
	}

	// Parse the response (limit body to 10MB to prevent resource exhaustion).
	var searchResp SearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&searchResp); err != nil {
		return nil, domain.NewSourceError(domain.SourceTypeOpenAlex, fmt.Errorf("decoding response: %w", err))
	}

	records := make([]domain.Record, 0, len(searchResp.Results))
	skipped := 0
	for i := range searchResp.Results {
		record := c.workToRecord(&searchResp.Results[i])
		if record == nil {
			skipped++
			continue
		}
		records = append(records, *record)
	}

	return &sources.SearchResult{
		Records:        records,
		TotalResults:   searchResp.Meta.Count,
		Skipped:        skipped,
		Source:         domain.SourceTypeOpenAlex,
		SearchDuration: time.Since(startTime),
	}, nil
}

// GetByDOI retrieves a specific record by DOI. OpenAlex resolves DOIs as
// work identifiers directly.
func (c *Client) GetByDOI(ctx context.Context, doi string) (*domain.Record, error) {
	doi = domain.NormalizeDOI(doi)
	if doi == "" {
		return nil, domain.NewValidationError("doi", "must not be empty")
	}
	return c.GetByID(ctx, "https://doi.org/"+doi)
}

// GetByID retrieves a specific record by its OpenAlex ID or DOI.
func (c *Client) GetByID(ctx context.Context, id string) (*domain.Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.NewValidationError("id", "must not be empty")
	}

	fetchURL, err := c.buildGetByIDURL(id)
	if err != nil {
		return nil, fmt.Errorf("building fetch URL: %w", err)
	}

	resp, err := c.httpClient.Get(ctx, fetchURL)
	if err != nil {
		return nil, domain.NewSourceError(domain.SourceTypeOpenAlex, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.NewNotFoundError("record", id)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, domain.NewExternalAPIError(sourceName, resp.StatusCode, string(body))
	}

	var work Work
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&work); err != nil {
		return nil, domain.NewSourceError(domain.SourceTypeOpenAlex, fmt.Errorf("decoding response: %w", err))
	}

	record := c.workToRecord(&work)
	if record == nil {
		return nil, domain.NewNotFoundError("record", id)
	}

	return record, nil
}

// SourceType returns the source type identifier.
func (c *Client) SourceType() domain.SourceType {
	return domain.SourceTypeOpenAlex
}

// Name returns the human-readable name for this source.
func (c *Client) Name() string {
	return sourceName
}

// IsEnabled returns whether this source is enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// buildSearchURL constructs the works search URL with query parameters.
func (c *Client) buildSearchURL(params sources.SearchParams) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	baseURL.Path = "/works"

	query := url.Values{}
	query.Set("search", params.Query)

	maxResults := params.MaxResults
	if maxResults == 0 {
		maxResults = c.config.MaxResults
	}
	if maxResults > MaxPerPage {
		maxResults = MaxPerPage
	}
	query.Set("per_page", strconv.Itoa(maxResults))

	switch params.SortBy {
	case domain.SortByYear:
		query.Set("sort", "publication_year:desc")
	case domain.SortByRelevance:
		query.Set("sort", "relevance_score:desc")
	default:
		query.Set("sort", "cited_by_count:desc")
	}

	if c.config.Email != "" {
		query.Set("mailto", c.config.Email)
	}

	baseURL.RawQuery = query.Encode()
	return baseURL.String(), nil
}

// buildGetByIDURL constructs the URL for fetching a work by ID.
// OpenAlex accepts OpenAlex IDs and DOIs (bare or as full doi.org URLs).
func (c *Client) buildGetByIDURL(id string) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	var workID string
	switch {
	case strings.HasPrefix(id, "W"):
		workID = id
	case strings.HasPrefix(id, doiPrefix):
		workID = id
	case strings.HasPrefix(id, "10."):
		workID = doiPrefix + id
	case strings.HasPrefix(id, "doi:"):
		workID = doiPrefix + strings.TrimPrefix(id, "doi:")
	default:
		workID = id
	}

	// OpenAlex expects the DOI as-is in the path and decodes it server side.
	baseURL.Path = "/works/" + workID

	if c.config.Email != "" {
		query := url.Values{}
		query.Set("mailto", c.config.Email)
		baseURL.RawQuery = query.Encode()
	}

	return baseURL.String(), nil
}

// workToRecord converts an OpenAlex work to a domain Record.
// Returns nil when the work has no usable title.
func (c *Client) workToRecord(work *Work) *domain.Record {
	if work == nil {
		return nil
	}

	title := cleanTitle(work.DisplayName)
	if title == "" {
		title = cleanTitle(work.Title)
	}
	if !usableTitle(title) {
		return nil
	}

	authors := make([]domain.Author, 0, len(work.Authorships))
	for _, authorship := range work.Authorships {
		name := strings.TrimSpace(authorship.Author.DisplayName)
		if name == "" {
			continue
		}
		author := domain.Author{Name: name}
		if len(authorship.Institutions) > 0 {
			author.Affiliation = strings.TrimSpace(authorship.Institutions[0].DisplayName)
		}
		authors = append(authors, author)
	}
	if len(authors) == 0 {
		authors = append(authors, domain.Author{Name: domain.UnknownAuthorName})
	}

	doi := domain.NormalizeDOI(work.DOI)

	recordURL := ""
	if work.OpenAccess != nil && work.OpenAccess.OAURL != "" {
		recordURL = work.OpenAccess.OAURL
	} else if work.PrimaryLocation != nil && work.PrimaryLocation.LandingPage != "" {
		recordURL = work.PrimaryLocation.LandingPage
	} else if doi != "" {
		recordURL = doiPrefix + doi
	}

	publishedDate := work.PublicationDate
	if publishedDate == "" && work.PublicationYear > 0 {
		publishedDate = strconv.Itoa(work.PublicationYear)
	}

	journal := ""
	if work.PrimaryLocation != nil && work.PrimaryLocation.Source != nil {
		journal = strings.TrimSpace(work.PrimaryLocation.Source.DisplayName)
	}

	citations := work.CitedByCount
	if citations < 0 {
		citations = 0
	}

	return &domain.Record{
		Title:         title,
		Authors:       authors,
		Abstract:      reconstructAbstract(work.AbstractInvertedIndex),
		DOI:           doi,
		URL:           recordURL,
		PublishedDate: publishedDate,
		Journal:       journal,
		CitationCount: citations,
		Source:        domain.SourceTypeOpenAlex,
	}
}

// cleanTitle unescapes HTML entities, strips embedded markup, and collapses
// whitespace in a title.
func cleanTitle(title string) string {
	if title == "" {
		return ""
	}
	cleaned := html.UnescapeString(title)
	cleaned = htmlTagRegex.ReplaceAllString(cleaned, " ")
	return strings.Join(strings.Fields(cleaned), " ")
}

// usableTitle rejects blank, placeholder, and degenerately short titles.
func usableTitle(title string) bool {
	if len(title) < minTitleLength {
		return false
	}
	return strings.ToLower(title) != "untitled"
}

// reconstructAbstract rebuilds the abstract text from OpenAlex's inverted
// index format, which maps each word to its positions in the original text.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	const maxAbstractWords = 100_000
	totalPairs := 0
	for _, positions := range invertedIndex {
		totalPairs += len(positions)
	}
	// Guard against malicious payloads with excessive position entries.
	if totalPairs > maxAbstractWords {
		return ""
	}
	pairs := make([]posWord, 0, totalPairs)

	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	var builder strings.Builder
	builder.Grow(totalPairs * 7)
	for i, pair := range pairs {
		if i > 0 {
			builder.WriteByte(' ')
		}
		builder.WriteString(pair.word)
	}

	return domain.TruncateAbstract(builder.String())
}
