package unpaywall

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/helixir/research-assistant-service/internal/domain"
	"github.com/helixir/research-assistant-service/internal/papersources"
)

const (
	// ProviderName identifies Unpaywall in results, logs, and metrics.
	ProviderName = "unpaywall"

	// DefaultBaseURL is the default Unpaywall API base URL.
	DefaultBaseURL = "https://api.unpaywall.org"

	// DefaultRateLimit is the default rate limit for requests per second.
	DefaultRateLimit = 5.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 5

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second
)

var leadingYear = regexp.MustCompile(`^(\d{4})`)

// Config holds configuration for the Unpaywall client.
type Config struct {
	// BaseURL is the Unpaywall API base URL.
	BaseURL string

	// Email is required by Unpaywall on every request.
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

// Client implements papersources.Provider for Unpaywall.
type Client struct {
	config     Config
	httpClient *papersources.HTTPClient
}

var _ papersources.Provider = (*Client)(nil)

// New creates a new Unpaywall client. It fails with a ConfigurationError
// when no contact email is configured.
func New(cfg Config) (*Client, error) {
	cfg.applyDefaults()
	return NewWithHTTPClient(cfg, papersources.NewHTTPClient(papersources.HTTPClientConfig{
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		BurstSize: cfg.BurstSize,
		UserAgent: "Helixir-ResearchAssistant/1.0 (mailto:" + cfg.Email + ")",
	}))
}

// NewWithHTTPClient creates a new Unpaywall client with a custom HTTP client.
func NewWithHTTPClient(cfg Config, httpClient *papersources.HTTPClient) (*Client, error) {
	cfg.applyDefaults()
	cfg.Email = strings.TrimSpace(cfg.Email)
	if cfg.Email == "" {
		return nil, domain.NewConfigurationError("paper_sources.unpaywall.email", "Unpaywall requires a contact email")
	}
	return &Client{config: cfg, httpClient: httpClient}, nil
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return ProviderName
}

// Search queries Unpaywall for open-access works matching query.
// Unpaywall pages are fixed at 50 results; the page is sliced to limit.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.CandidateRecord, error) {
	searchURL, err := c.buildSearchURL(query)
	if err != nil {
		return nil, domain.NewProviderError(ProviderName, fmt.Errorf("building search URL: %w", err))
	}

	var resp SearchResponse
	if err := c.httpClient.GetJSON(ctx, "Unpaywall", searchURL, &resp); err != nil {
		return nil, domain.NewProviderError(ProviderName, err)
	}

	hits := resp.Results
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	records := make([]domain.CandidateRecord, 0, len(hits))
	for i := range hits {
		if rec, ok := workToRecord(hits[i].Resolve()); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (c *Client) buildSearchURL(query string) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}
	baseURL.Path = strings.TrimSuffix(baseURL.Path, "/") + "/v2/search"

	params := url.Values{}
	params.Set("query", query)
	params.Set("is_oa", "true")
	params.Set("email", c.config.Email)

	baseURL.RawQuery = params.Encode()
	return baseURL.String(), nil
}

func workToRecord(w *Work) (domain.CandidateRecord, bool) {
	doi := domain.NormalizeDOI(w.DOI)
	if doi == "" {
		doi = domain.NormalizeDOI(w.DOIUpper)
	}
	title := strings.TrimSpace(w.Title)

	key := domain.GenerateIdentityKey(domain.RecordIdentifiers{DOI: doi, Title: title})
	if key == "" {
		return domain.CandidateRecord{}, false
	}

	people := w.ZAuthors
	if len(people) == 0 {
		people = w.Authors
	}
	authors := make([]string, 0, len(people))
	for _, a := range people {
		if name := a.DisplayName(); name != "" {
			authors = append(authors, name)
		}
	}

	year := int(w.Year)
	if year == 0 {
		if m := leadingYear.FindStringSubmatch(w.PublishedDate); m != nil {
			year, _ = strconv.Atoi(m[1])
		}
	}

	venue := strings.TrimSpace(w.JournalName)
	if venue == "" {
		venue = strings.TrimSpace(w.Publisher)
	}

	var link, pdf string
	if loc := w.BestOALocation; loc != nil {
		pdf = strings.TrimSpace(loc.URLForPDF)
		link = pdf
		if link == "" {
			link = strings.TrimSpace(loc.URL)
		}
	}

	rec := domain.CandidateRecord{
		IdentityKey: key,
		Title:       title,
		Authors:     authors,
		Year:        year,
		Venue:       venue,
		DOI:         doi,
		URL:         link,
		Sources:     []string{ProviderName},
	}
	rec.RelevanceNotes.Add("Open access")
	if pdf != "" {
		rec.RelevanceNotes.Add("Direct PDF available")
	}

	return rec, true
}
