// Package semanticscholar provides a papersources.Provider for the Semantic
// Scholar Graph API.
//
// API Documentation: https://api.semanticscholar.org/api-docs/
package semanticscholar

// SearchResponse represents the response from the paper search endpoint.
type SearchResponse struct {
	Total  int           `json:"total"`
	Offset int           `json:"offset"`
	Next   int           `json:"next"`
	Data   []PaperResult `json:"data"`
}

// PaperResult represents a single paper in a search response.
type PaperResult struct {
	// PaperID is the Semantic Scholar unique identifier for the paper.
	PaperID string `json:"paperId"`

	Title string `json:"title"`

	// Year is the publication year; zero when unknown.
	Year int `json:"year"`

	// PublicationDate is the full publication date in YYYY-MM-DD format.
	PublicationDate string `json:"publicationDate"`

	// Venue is the publication venue (conference, journal name, etc.).
	Venue string `json:"venue"`

	Journal *Journal `json:"journal,omitempty"`

	Authors []Author `json:"authors"`

	// CitationCount is null in the API for some records.
	CitationCount *int `json:"citationCount"`

	IsOpenAccess bool `json:"isOpenAccess"`

	OpenAccessPDF *OpenAccessPDF `json:"openAccessPdf,omitempty"`

	ExternalIDs *ExternalIDs `json:"externalIds,omitempty"`
}

// ExternalIDs contains external identifiers for a paper.
type ExternalIDs struct {
	DOI   string `json:"DOI,omitempty"`
	ArXiv string `json:"ArXiv,omitempty"`
}

// Journal contains journal-specific information.
type Journal struct {
	Name string `json:"name,omitempty"`
}

// Author represents a paper author.
type Author struct {
	AuthorID string `json:"authorId,omitempty"`
	Name     string `json:"name"`
}

// OpenAccessPDF describes an open-access PDF location.
type OpenAccessPDF struct {
	URL string `json:"url,omitempty"`

	// Status is the open access status (e.g., "HYBRID", "GOLD", "GREEN").
	Status string `json:"status,omitempty"`
}
