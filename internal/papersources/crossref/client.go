package crossref

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/helixir/research-assistant-service/internal/domain"
	"github.com/helixir/research-assistant-service/internal/papersources"
)

const (
	// ProviderName identifies Crossref in results, logs, and metrics.
	ProviderName = "crossref"

	// DefaultBaseURL is the default Crossref API base URL.
	DefaultBaseURL = "https://api.crossref.org"

	// DefaultRateLimit is the default rate limit for requests per second.
	// The public pool allows roughly 50 req/s; stay well below it.
	DefaultRateLimit = 5.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 5

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// maxRows is the Crossref page size limit.
	maxRows = 1000
)

// Config holds configuration for the Crossref client.
type Config struct {
	// BaseURL is the Crossref API base URL.
	BaseURL string

	// Email routes requests to the polite pool when set.
	Email string

	// Timeout is the request timeout.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int
}

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
}

// Client implements papersources.Provider for Crossref.
type Client struct {
	config     Config
	httpClient *papersources.HTTPClient
}

var _ papersources.Provider = (*Client)(nil)

// New creates a new Crossref client.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	userAgent := "Helixir-ResearchAssistant/1.0"
	if cfg.Email != "" {
		userAgent += " (mailto:" + cfg.Email + ")"
	}

	return NewWithHTTPClient(cfg, papersources.NewHTTPClient(papersources.HTTPClientConfig{
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		BurstSize: cfg.BurstSize,
		UserAgent: userAgent,
	}))
}

// NewWithHTTPClient creates a new Crossref client with a custom HTTP client.
func NewWithHTTPClient(cfg Config, httpClient *papersources.HTTPClient) *Client {
	cfg.applyDefaults()
	return &Client{config: cfg, httpClient: httpClient}
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return ProviderName
}

// Search queries Crossref for works matching query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.CandidateRecord, error) {
	searchURL, err := c.buildSearchURL(query, limit)
	if err != nil {
		return nil, domain.NewProviderError(ProviderName, fmt.Errorf("building search URL: %w", err))
	}

	var resp SearchResponse
	if err := c.httpClient.GetJSON(ctx, "Crossref", searchURL, &resp); err != nil {
		return nil, domain.NewProviderError(ProviderName, err)
	}

	records := make([]domain.CandidateRecord, 0, len(resp.Message.Items))
	for i := range resp.Message.Items {
		if rec, ok := itemToRecord(&resp.Message.Items[i]); ok {
			records = append(records, rec)
		}
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (c *Client) buildSearchURL(query string, limit int) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}
	baseURL.Path = strings.TrimSuffix(baseURL.Path, "/") + "/works"

	if limit <= 0 {
		limit = 10
	}
	if limit > maxRows {
		limit = maxRows
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("rows", strconv.Itoa(limit))
	if c.config.Email != "" {
		params.Set("mailto", c.config.Email)
	}

	baseURL.RawQuery = params.Encode()
	return baseURL.String(), nil
}

// itemToRecord converts a Crossref item to a candidate record.
func itemToRecord(item *Item) (domain.CandidateRecord, bool) {
	doi := domain.NormalizeDOI(item.DOI)
	title := strings.TrimSpace(item.Title.First())

	key := domain.GenerateIdentityKey(domain.RecordIdentifiers{DOI: doi, Title: title})
	if key == "" {
		return domain.CandidateRecord{}, false
	}

	authors := make([]string, 0, len(item.Author))
	for _, a := range item.Author {
		if name := authorName(a); name != "" {
			authors = append(authors, name)
		}
	}

	link := strings.TrimSpace(item.URL)
	if link == "" && doi != "" {
		link = "https://doi.org/" + doi
	}

	rec := domain.CandidateRecord{
		IdentityKey:  key,
		Title:        title,
		Authors:      authors,
		Year:         pickYear(item),
		Venue:        strings.TrimSpace(item.ContainerTitle.First()),
		DOI:          doi,
		URL:          link,
		CitedByCount: item.IsReferencedByCount,
		Sources:      []string{ProviderName},
	}
	rec.RelevanceNotes.Add("Registered with Crossref")

	return rec, true
}

// pickYear prefers publication dates over the DOI deposit date.
func pickYear(item *Item) int {
	for _, d := range []*DateParts{item.Published, item.PublishedPrint, item.PublishedOnline, item.Issued, item.Created} {
		if y := d.Year(); y > 0 {
			return y
		}
	}
	return 0
}

func authorName(a Author) string {
	given := strings.TrimSpace(a.Given)
	family := strings.TrimSpace(a.Family)
	if given == "" && family == "" {
		return strings.TrimSpace(a.Name)
	}
	return strings.TrimSpace(given + " " + family)
}
