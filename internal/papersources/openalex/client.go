package openalex

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
	// ProviderName identifies OpenAlex in results, logs, and metrics.
	ProviderName = "openalex"

	// DefaultBaseURL is the default OpenAlex API base URL.
	DefaultBaseURL = "https://api.openalex.org"

	// DefaultRateLimit is the default rate limit for requests per second.
	DefaultRateLimit = 10.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 10

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// maxPerPage is the OpenAlex API page size limit.
	maxPerPage = 200

	// openAlexIDPrefix is the URL prefix for OpenAlex IDs.
	openAlexIDPrefix = "https://openalex.org/"

	// unknownAuthor stands in for authorships without a display name.
	unknownAuthor = "Unknown Author"
)

// Config holds configuration for the OpenAlex client.
type Config struct {
	// BaseURL is the OpenAlex API base URL.
	// Defaults to https://api.openalex.org
	BaseURL string

	// Email is the contact email for the polite pool.
	// See: https://docs.openalex.org/how-to-use-the-api/rate-limits-and-authentication
	Email string

	// Timeout is the request timeout.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int
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
}

// Client implements papersources.Provider for OpenAlex.
type Client struct {
	config     Config
	httpClient *papersources.HTTPClient
}

// Ensure Client implements Provider interface.
var _ papersources.Provider = (*Client)(nil)

// New creates a new OpenAlex client with the given configuration.
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

// NewWithHTTPClient creates a new OpenAlex client with a custom HTTP client.
// This is useful for testing with mock servers.
func NewWithHTTPClient(cfg Config, httpClient *papersources.HTTPClient) *Client {
	cfg.applyDefaults()

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return ProviderName
}

// Search queries OpenAlex for works matching query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.CandidateRecord, error) {
	searchURL, err := c.buildSearchURL(query, limit)
	if err != nil {
		return nil, domain.NewProviderError(ProviderName, fmt.Errorf("building search URL: %w", err))
	}

	var searchResp SearchResponse
	if err := c.httpClient.GetJSON(ctx, "OpenAlex", searchURL, &searchResp); err != nil {
		return nil, domain.NewProviderError(ProviderName, err)
	}

	records := make([]domain.CandidateRecord, 0, len(searchResp.Results))
	for i := range searchResp.Results {
		if rec, ok := workToRecord(&searchResp.Results[i]); ok {
			records = append(records, rec)
		}
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// buildSearchURL constructs the search API URL with query parameters.
func (c *Client) buildSearchURL(query string, limit int) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}
	baseURL.Path = strings.TrimSuffix(baseURL.Path, "/") + "/works"

	params := url.Values{}
	params.Set("search", query)

	if limit <= 0 {
		limit = 10
	}
	if limit > maxPerPage {
		limit = maxPerPage
	}
	params.Set("per_page", strconv.Itoa(limit))

	if c.config.Email != "" {
		params.Set("mailto", c.config.Email)
	}

	baseURL.RawQuery = params.Encode()
	return baseURL.String(), nil
}

// workToRecord converts an OpenAlex Work to a candidate record.
// Returns false when the work carries no usable identity.
func workToRecord(work *Work) (domain.CandidateRecord, bool) {
	doi := domain.NormalizeDOI(work.DOI)
	if doi == "" {
		doi = domain.NormalizeDOI(work.IDs.DOI)
	}

	openAlexID := normalizeOpenAlexID(work.ID)
	if openAlexID == "" {
		openAlexID = normalizeOpenAlexID(work.IDs.OpenAlex)
	}

	// Prefer display_name as it is usually cleaner.
	title := strings.TrimSpace(work.DisplayName)
	if title == "" {
		title = strings.TrimSpace(work.Title)
	}

	key := domain.GenerateIdentityKey(domain.RecordIdentifiers{
		DOI:        doi,
		ProviderID: prefixedID(openAlexID),
		Title:      title,
	})
	if key == "" {
		return domain.CandidateRecord{}, false
	}

	authors := make([]string, 0, len(work.Authorships))
	for _, a := range work.Authorships {
		name := strings.TrimSpace(a.Author.DisplayName)
		if name == "" {
			name = unknownAuthor
		}
		authors = append(authors, name)
	}

	year := work.PublicationYear
	if year == 0 && len(work.PublicationDate) >= 4 {
		year, _ = strconv.Atoi(work.PublicationDate[:4])
	}

	var venue string
	if work.PrimaryLocation != nil && work.PrimaryLocation.Source != nil {
		venue = work.PrimaryLocation.Source.DisplayName
	}
	if venue == "" && work.HostVenue != nil {
		venue = work.HostVenue.DisplayName
	}

	isOpenAccess := work.IsOpenAccess
	if work.OpenAccess != nil {
		isOpenAccess = work.OpenAccess.IsOA
	}

	rec := domain.CandidateRecord{
		IdentityKey:  key,
		Title:        title,
		Authors:      authors,
		Year:         year,
		Venue:        strings.TrimSpace(venue),
		DOI:          doi,
		URL:          bestURL(work, doi),
		CitedByCount: work.CitedByCount,
		Sources:      []string{ProviderName},
	}

	rec.RelevanceNotes.Add("Indexed by OpenAlex")
	if isOpenAccess {
		rec.RelevanceNotes.Add("Open access")
	}
	if work.CitedByCount != nil && *work.CitedByCount > 0 {
		rec.RelevanceNotes.Add(fmt.Sprintf("Cited by %d works", *work.CitedByCount))
	}

	return rec, true
}

// bestURL picks the most direct locator: open-access URL, then the primary
// location's PDF or landing page, then the DOI resolver.
func bestURL(work *Work, doi string) string {
	if work.OpenAccess != nil && work.OpenAccess.OAURL != "" {
		return work.OpenAccess.OAURL
	}
	if loc := work.PrimaryLocation; loc != nil {
		if loc.PDFURL != "" {
			return loc.PDFURL
		}
		if loc.LandingPageURL != "" {
			return loc.LandingPageURL
		}
	}
	if doi != "" {
		return "https://doi.org/" + doi
	}
	return ""
}

// normalizeOpenAlexID extracts the short ID from full OpenAlex URLs.
func normalizeOpenAlexID(id string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(id), openAlexIDPrefix))
}

func prefixedID(openAlexID string) string {
	if openAlexID == "" {
		return ""
	}
	return "openalex:" + openAlexID
}
