package semanticscholar

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
	// ProviderName identifies Semantic Scholar in results, logs, and metrics.
	ProviderName = "semanticscholar"

	// DefaultBaseURL is the default base URL for the Semantic Scholar Graph API.
	DefaultBaseURL = "https://api.semanticscholar.org/graph/v1"

	// DefaultRateLimit is the unauthenticated pacing. With an API key it can be raised.
	DefaultRateLimit = 1.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 1

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// maxLimit is the API's page size cap for /paper/search.
	maxLimit = 100

	apiKeyHeader = "x-api-key"

	paperFields = "paperId,externalIds,title,year,publicationDate,venue,journal,authors,citationCount,isOpenAccess,openAccessPdf"
)

// Config contains configuration options for the Semantic Scholar client.
type Config struct {
	// BaseURL defaults to DefaultBaseURL if empty.
	BaseURL string

	// APIKey is optional. Authenticated requests have higher rate limits.
	APIKey string

	Timeout   time.Duration
	RateLimit float64
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

// Client implements papersources.Provider for Semantic Scholar.
type Client struct {
	httpClient *papersources.HTTPClient
	config     Config
}

var _ papersources.Provider = (*Client)(nil)

// New creates a Semantic Scholar client with its own paced HTTP client.
func New(cfg Config) *Client {
	cfg.applyDefaults()
	return NewWithHTTPClient(cfg, papersources.NewHTTPClient(papersources.HTTPClientConfig{
		Timeout:      cfg.Timeout,
		RateLimit:    cfg.RateLimit,
		BurstSize:    cfg.BurstSize,
		APIKey:       cfg.APIKey,
		APIKeyHeader: apiKeyHeader,
	}))
}

// NewWithHTTPClient creates a client with a caller-supplied HTTP client.
func NewWithHTTPClient(cfg Config, httpClient *papersources.HTTPClient) *Client {
	cfg.applyDefaults()
	return &Client{
		httpClient: httpClient,
		config:     cfg,
	}
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return ProviderName
}

// Search queries Semantic Scholar for papers matching query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.CandidateRecord, error) {
	searchURL, err := c.buildSearchURL(query, limit)
	if err != nil {
		return nil, domain.NewProviderError(ProviderName, fmt.Errorf("building search URL: %w", err))
	}

	var searchResp SearchResponse
	if err := c.httpClient.GetJSON(ctx, "Semantic Scholar", searchURL, &searchResp); err != nil {
		return nil, domain.NewProviderError(ProviderName, err)
	}

	records := make([]domain.CandidateRecord, 0, len(searchResp.Data))
	for i := range searchResp.Data {
		if rec, ok := paperToRecord(&searchResp.Data[i]); ok {
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
	searchURL := baseURL.JoinPath("paper", "search")

	if limit <= 0 {
		limit = 10
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	q := searchURL.Query()
	q.Set("query", query)
	q.Set("fields", paperFields)
	q.Set("limit", strconv.Itoa(limit))

	searchURL.RawQuery = q.Encode()
	return searchURL.String(), nil
}

// paperToRecord converts an API paper to a candidate record.
// Returns false when the paper carries no usable identity.
func paperToRecord(p *PaperResult) (domain.CandidateRecord, bool) {
	var doi string
	if p.ExternalIDs != nil {
		doi = domain.NormalizeDOI(p.ExternalIDs.DOI)
	}

	title := strings.TrimSpace(p.Title)

	var providerID string
	if id := strings.TrimSpace(p.PaperID); id != "" {
		providerID = "s2:" + id
	}

	key := domain.GenerateIdentityKey(domain.RecordIdentifiers{
		DOI:        doi,
		ProviderID: providerID,
		Title:      title,
	})
	if key == "" {
		return domain.CandidateRecord{}, false
	}

	authors := make([]string, 0, len(p.Authors))
	for _, a := range p.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			authors = append(authors, name)
		}
	}

	year := p.Year
	if year == 0 && len(p.PublicationDate) >= 4 {
		year, _ = strconv.Atoi(p.PublicationDate[:4])
	}

	venue := strings.TrimSpace(p.Venue)
	if venue == "" && p.Journal != nil {
		venue = strings.TrimSpace(p.Journal.Name)
	}

	rec := domain.CandidateRecord{
		IdentityKey:  key,
		Title:        title,
		Authors:      authors,
		Year:         year,
		Venue:        venue,
		DOI:          doi,
		URL:          bestURL(p, doi),
		CitedByCount: p.CitationCount,
		Sources:      []string{ProviderName},
	}

	rec.RelevanceNotes.Add("Indexed by Semantic Scholar")
	if p.IsOpenAccess || (p.OpenAccessPDF != nil && p.OpenAccessPDF.URL != "") {
		rec.RelevanceNotes.Add("Open access")
	}
	if p.CitationCount != nil && *p.CitationCount > 0 {
		rec.RelevanceNotes.Add(fmt.Sprintf("Cited by %d works", *p.CitationCount))
	}

	return rec, true
}

// bestURL prefers the open-access PDF, then the DOI resolver, then the
// Semantic Scholar landing page.
func bestURL(p *PaperResult, doi string) string {
	if p.OpenAccessPDF != nil && p.OpenAccessPDF.URL != "" {
		return p.OpenAccessPDF.URL
	}
	if doi != "" {
		return "https://doi.org/" + doi
	}
	if id := strings.TrimSpace(p.PaperID); id != "" {
		return "https://www.semanticscholar.org/paper/" + id
	}
	return ""
}
