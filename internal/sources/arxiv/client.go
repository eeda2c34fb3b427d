package arxiv

import (
	"context"
	"encoding/xml"
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
	// DefaultBaseURL is the default arXiv API base URL.
	DefaultBaseURL = "https://export.arxiv.org/api"

	// DefaultRateLimit is the default rate limit (3 requests per second)
	// per the arXiv API usage guidance.
	DefaultRateLimit = 3.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 3

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResults is the default maximum results per request.
	DefaultMaxResults = 100

	// MaxResultsCap is the largest max_results value sent to the query
	// endpoint, per the arXiv API limit of 2000 results per call.
	MaxResultsCap = 2000

	// sourceName is the human-readable name for this source.
	sourceName = "arXiv"
)

// arxivIDRegex extracts the arXiv ID from the full URL, dropping any version
// suffix. Matches "http://arxiv.org/abs/2301.12345v1" and the older
// "http://arxiv.org/abs/hep-th/9901001v1" form.
var arxivIDRegex = regexp.MustCompile(`arxiv\.org/abs/(.+?)(?:v\d+)?$`)

// Config holds configuration for the arXiv client.
type Config struct {
	// BaseURL is the arXiv API base URL.
	BaseURL string

	// Timeout is the request timeout.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// MaxResults is the maximum results to return per search request.
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

// Client implements the sources.SourceClient interface for arXiv.
type Client struct {
	config     Config
	httpClient *sources.HTTPClient
}

// Ensure Client implements SourceClient interface.
var _ sources.SourceClient = (*Client)(nil)

// New creates a new arXiv client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	httpClient := sources.NewHTTPClient(sources.HTTPClientConfig{
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		BurstSize: cfg.BurstSize,
		UserAgent: "PaperScope-LiteratureAggregator/1.0",
	})

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// NewWithHTTPClient creates a new arXiv client with a custom HTTP client.
// This is useful for testing with mock servers.
func NewWithHTTPClient(cfg Config, httpClient *sources.HTTPClient) *Client {
	cfg.applyDefaults()

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// Search queries arXiv for records matching the given parameters.
func (c *Client) Search(ctx context.Context, params sources.SearchParams) (*sources.SearchResult, error) {
	startTime := time.Now()

	searchURL, err := c.buildSearchURL(params)
	if err != nil {
		return nil, fmt.Errorf("building search URL: %w", err)
	}

	resp, err := c.httpClient.Get(ctx, searchURL)
	if err != nil {
		return nil, domain.NewSourceError(domain.SourceTypeArXiv, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, domain.NewExternalAPIError(sourceName, resp.StatusCode, string(body))
	}

	// Parse the Atom XML response (limit body to 10MB).
	var feed Feed
	if err := xml.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&feed); err != nil {
		return nil, domain.NewSourceError(domain.SourceTypeArXiv, fmt.Errorf("decoding response: %w", err))
	}

	records := make([]domain.Record, 0, len(feed.Entries))
	skipped := 0
	for i := range feed.Entries {
		record := c.entryToRecord(&feed.Entries[i])
		if record == nil {
			skipped++
			continue
		}
		records = append(records, *record)
	}

	return &sources.SearchResult{
		Records:        records,
		TotalResults:   feed.TotalResults,
		Skipped:        skipped,
		Source:         domain.SourceTypeArXiv,
		SearchDuration: time.Since(startTime),
	}, nil
}

// GetByID retrieves a specific record by its arXiv ID.
func (c *Client) GetByID(ctx context.Context, id string) (*domain.Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.NewValidationError("id", "must not be empty")
	}

	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	baseURL.Path = strings.TrimRight(baseURL.Path, "/") + "/query"
	query := url.Values{}
	query.Set("id_list", id)
	baseURL.RawQuery = query.Encode()

	resp, err := c.httpClient.Get(ctx, baseURL.String())
	if err != nil {
		return nil, domain.NewSourceError(domain.SourceTypeArXiv, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, domain.NewExternalAPIError(sourceName, resp.StatusCode, string(body))
	}

	var feed Feed
	if err := xml.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&feed); err != nil {
		return nil, domain.NewSourceError(domain.SourceTypeArXiv, fmt.Errorf("decoding response: %w", err))
	}

	if len(feed.Entries) == 0 {
		return nil, domain.NewNotFoundError("record", id)
	}

	record := c.entryToRecord(&feed.Entries[0])
	if record == nil {
		return nil, domain.NewNotFoundError("record", id)
	}

	return record, nil
}

// SourceType returns the source type identifier.
func (c *Client) SourceType() domain.SourceType {
	return domain.SourceTypeArXiv
}

// Name returns the human-readable name for this source.
func (c *Client) Name() string {
	return sourceName
}

// IsEnabled returns whether this source is enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// buildSearchURL constructs the arXiv search API URL.
func (c *Client) buildSearchURL(params sources.SearchParams) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	baseURL.Path = strings.TrimRight(baseURL.Path, "/") + "/query"

	query := url.Values{}
	query.Set("search_query", "all:"+params.Query)

	maxResults := params.MaxResults
	if maxResults == 0 {
		maxResults = c.config.MaxResults
	}
	if maxResults > MaxResultsCap {
		maxResults = MaxResultsCap
	}
	query.Set("max_results", strconv.Itoa(maxResults))

	// arXiv has no citation data, so a citation sort degrades to relevance.
	switch params.SortBy {
	case domain.SortByYear:
		query.Set("sortBy", "submittedDate")
		query.Set("sortOrder", "descending")
	default:
		query.Set("sortBy", "relevance")
		query.Set("sortOrder", "descending")
	}

	baseURL.RawQuery = query.Encode()
	return baseURL.String(), nil
}

// entryToRecord converts an arXiv Atom entry to a domain Record.
// Returns nil when the entry lacks an ID or a usable title.
func (c *Client) entryToRecord(entry *Entry) *domain.Record {
	if entry == nil {
		return nil
	}

	arxivID := extractArXivID(entry.ID)
	if arxivID == "" {
		return nil
	}

	// arXiv titles and abstracts include embedded newlines and indentation.
	title := normalizeWhitespace(entry.Title)
	if title == "" {
		return nil
	}

	abstract := domain.TruncateAbstract(normalizeWhitespace(entry.Summary))

	authors := make([]domain.Author, 0, len(entry.Authors))
	for _, a := range entry.Authors {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			continue
		}
		authors = append(authors, domain.Author{
			Name:        name,
			Affiliation: strings.TrimSpace(a.Affiliation),
		})
	}
	if len(authors) == 0 {
		authors = append(authors, domain.Author{Name: domain.UnknownAuthorName})
	}

	var publishedDate string
	if entry.Published != "" {
		if t, err := time.Parse(time.RFC3339, entry.Published); err == nil {
			publishedDate = t.Format("2006-01-02")
		}
	}

	journal := strings.TrimSpace(entry.JournalRef)
	if journal == "" && entry.PrimaryCategory.Term != "" {
		journal = "arXiv:" + entry.PrimaryCategory.Term
	}

	recordURL := strings.TrimSpace(entry.ID)
	for _, link := range entry.Links {
		if link.Rel == "alternate" && link.Href != "" {
			recordURL = link.Href
			break
		}
	}

	return &domain.Record{
		Title:         title,
		Authors:       authors,
		Abstract:      abstract,
		DOI:           domain.NormalizeDOI(entry.DOI),
		URL:           recordURL,
		PublishedDate: publishedDate,
		Journal:       journal,
		CitationCount: 0, // arXiv does not expose citation counts
		Source:        domain.SourceTypeArXiv,
	}
}

// extractArXivID extracts the bare arXiv ID from the full entry URL.
// "http://arxiv.org/abs/2301.12345v1" becomes "2301.12345".
func extractArXivID(entryURL string) string {
	matches := arxivIDRegex.FindStringSubmatch(entryURL)
	if len(matches) < 2 {
		return ""
	}
	return matches[1]
}

// normalizeWhitespace trims and collapses runs of whitespace, including
// newlines, into single spaces.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
