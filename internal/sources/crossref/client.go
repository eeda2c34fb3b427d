package crossref

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/paperscope/literature-aggregation-service/internal/domain"
	"github.com/paperscope/literature-aggregation-service/internal/sources"
)

const (
	// DefaultBaseURL is the default CrossRef API base URL.
	DefaultBaseURL = "https://api.crossref.org"

	// DefaultRateLimit is the default rate limit for requests per second.
	// CrossRef's polite pool allows substantially more with a mailto.
	DefaultRateLimit = 10.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 10

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResults is the default maximum results per request.
	DefaultMaxResults = 20

	// MaxRows is the largest rows value sent to the works endpoint.
	MaxRows = 50

	// sourceName is the human-readable name for this source.
	sourceName = "CrossRef"

	// selectFields limits the response to the fields the mapper consumes.
	selectFields = "DOI,title,author,published,published-print,published-online,issued,abstract,URL,container-title,is-referenced-by-count"
)

// jatsTagRegex matches JATS XML tags embedded in CrossRef abstracts,
// such as <jats:p> and <jats:italic>.
var jatsTagRegex = regexp.MustCompile(`<[^>]+>`)

// Config holds configuration for the CrossRef client.
type Config struct {
	// BaseURL is the CrossRef API base URL.
	// Defaults to https://api.crossref.org
	BaseURL string

	// Email is the contact email for the polite pool.
	// See: https://api.crossref.org/swagger-ui/index.html#meta
	Email string

	// Timeout is the request timeout.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// MaxResults is the maximum results to return per search request.
	// Clamped to MaxRows per the CrossRef API.
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

// Client implements the sources.SourceClient interface for CrossRef.
type Client struct {
	config     Config
	httpClient *sources.HTTPClient
}

// Ensure Client implements SourceClient interface.
var _ sources.SourceClient = (*Client)(nil)

// New creates a new CrossRef client with the given configuration.
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

// NewWithHTTPClient creates a new CrossRef client with a custom HTTP client.
// This is useful for testing with mock servers.
func NewWithHTTPClient(cfg Config, httpClient *sources.HTTPClient) *Client {
	cfg.applyDefaults()

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// Search queries CrossRef for records matching the given parameters.
func (c *Client) Search(ctx context.Context, params sources.SearchParams) (*sources.SearchResult, error) {
	startTime := time.Now()

	searchURL, err := c.buildSearchURL(params)
	if err != nil {
		return nil, fmt.Errorf("building search URL: %w", err)
	}

	resp, err := c.httpClient.Get(ctx, searchURL)
	if err != nil {
		return nil, domain.NewSourceError(domain.SourceTypeCrossRef, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, domain.NewExternalAPIError(sourceName, resp.StatusCode, string(body))
	}

	// Parse the response (limit body to 10MB to prevent resource exhaustion).
	var searchResp SearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&searchResp); err != nil {
		return nil, domain.NewSourceError(domain.SourceTypeCrossRef, fmt.Errorf("decoding response: %w", err))
	}

	records := make([]domain.Record, 0, len(searchResp.Message.Items))
	skipped := 0
	for i := range searchResp.Message.Items {
		record := c.workToRecord(&searchResp.Message.Items[i])
		if record == nil {
			skipped++
			continue
		}
		records = append(records, *record)
	}

	return &sources.SearchResult{
		Records:        records,
		TotalResults:   searchResp.Message.TotalResults,
		Skipped:        skipped,
		Source:         domain.SourceTypeCrossRef,
		SearchDuration: time.Since(startTime),
	}, nil
}

// GetByDOI retrieves a single record by its DOI.
func (c *Client) GetByDOI(ctx context.Context, doi string) (*domain.Record, error) {
	doi = domain.NormalizeDOI(doi)
	if doi == "" {
		return nil, domain.NewValidationError("doi", "must not be empty")
	}

	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	// CrossRef expects the DOI unescaped in the path and decodes it server side.
	baseURL.Path = "/works/" + doi
	if c.config.Email != "" {
		query := url.Values{}
		query.Set("mailto", c.config.Email)
		baseURL.RawQuery = query.Encode()
	}

	resp, err := c.httpClient.Get(ctx, baseURL.String())
	if err != nil {
		return nil, domain.NewSourceError(domain.SourceTypeCrossRef, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.NewNotFoundError("record", doi)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, domain.NewExternalAPIError(sourceName, resp.StatusCode, string(body))
	}

	var workResp WorkResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&workResp); err != nil {
		return nil, domain.NewSourceError(domain.SourceTypeCrossRef, fmt.Errorf("decoding response: %w", err))
	}

	record := c.workToRecord(&workResp.Message)
	if record == nil {
		return nil, domain.NewNotFoundError("record", doi)
	}

	return record, nil
}

// SourceType returns the source type identifier.
func (c *Client) SourceType() domain.SourceType {
	return domain.SourceTypeCrossRef
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
	query.Set("query", params.Query)

	rows := params.MaxResults
	if rows == 0 {
		rows = c.config.MaxResults
	}
	if rows > MaxRows {
		rows = MaxRows
	}
	query.Set("rows", strconv.Itoa(rows))
	query.Set("select", selectFields)

	switch params.SortBy {
	case domain.SortByYear:
		query.Set("sort", "published")
		query.Set("order", "desc")
	case domain.SortByRelevance:
		query.Set("sort", "score")
		query.Set("order", "desc")
	default:
		query.Set("sort", "is-referenced-by-count")
		query.Set("order", "desc")
	}

	if c.config.Email != "" {
		query.Set("mailto", c.config.Email)
	}

	baseURL.RawQuery = query.Encode()
	return baseURL.String(), nil
}

// workToRecord converts a CrossRef work to a domain Record.
// Returns nil when the work has no usable title.
func (c *Client) workToRecord(work *Work) *domain.Record {
	if work == nil {
		return nil
	}

	title := ""
	if len(work.Title) > 0 {
		title = strings.TrimSpace(work.Title[0])
	}
	if title == "" {
		return nil
	}

	authors := make([]domain.Author, 0, len(work.Authors))
	for _, a := range work.Authors {
		name := strings.TrimSpace(strings.TrimSpace(a.Given) + " " + strings.TrimSpace(a.Family))
		if name == "" {
			continue
		}
		author := domain.Author{Name: name}
		if len(a.Affiliation) > 0 {
			author.Affiliation = strings.TrimSpace(a.Affiliation[0].Name)
		}
		authors = append(authors, author)
	}
	if len(authors) == 0 {
		authors = append(authors, domain.Author{Name: domain.UnknownAuthorName})
	}

	doi := domain.NormalizeDOI(work.DOI)

	recordURL := strings.TrimSpace(work.URL)
	if recordURL == "" && doi != "" {
		recordURL = "https://doi.org/" + doi
	}

	journal := ""
	if len(work.ContainerTitle) > 0 {
		journal = strings.TrimSpace(work.ContainerTitle[0])
	}

	citations := work.IsReferencedByCount
	if citations < 0 {
		citations = 0
	}

	return &domain.Record{
		Title:         title,
		Authors:       authors,
		Abstract:      cleanAbstract(work.Abstract),
		DOI:           doi,
		URL:           recordURL,
		PublishedDate: extractDate(work),
		Journal:       journal,
		CitationCount: citations,
		Source:        domain.SourceTypeCrossRef,
	}
}

// extractDate returns an ISO-like date string from the work's date parts.
// Works carry dates in several fields depending on publication type; books,
// proceedings, and posted content often have only "issued".
func extractDate(work *Work) string {
	for _, dp := range []*DateParts{work.Published, work.PublishedPrint, work.PublishedOnline, work.Issued} {
		if date := formatDateParts(dp); date != "" {
			return date
		}
	}
	return ""
}

// formatDateParts joins CrossRef date parts into YYYY, YYYY-MM, or
// YYYY-MM-DD with zero-padded month and day.
func formatDateParts(dp *DateParts) string {
	if dp == nil || len(dp.DateParts) == 0 || len(dp.DateParts[0]) == 0 {
		return ""
	}

	parts := dp.DateParts[0]
	var builder strings.Builder
	for i, part := range parts {
		if i >= 3 {
			break
		}
		if i > 0 {
			builder.WriteByte('-')
			fmt.Fprintf(&builder, "%02d", part)
			continue
		}
		fmt.Fprintf(&builder, "%d", part)
	}
	return builder.String()
}

// cleanAbstract strips JATS markup from a CrossRef abstract, collapses
// whitespace, and truncates to the domain abstract bound.
func cleanAbstract(abstract string) string {
	if abstract == "" {
		return ""
	}
	cleaned := jatsTagRegex.ReplaceAllString(abstract, " ")
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	return domain.TruncateAbstract(cleaned)
}
