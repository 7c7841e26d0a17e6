// Package unpaywall provides a client for the Unpaywall search API.
//
// Unpaywall indexes legal open-access copies of scholarly articles. The
// search endpoint requires a contact email on every request.
//
// API Documentation: https://unpaywall.org/products/api
package unpaywall

import (
	"encoding/json"
	"strconv"
	"strings"
)

// SearchResponse is the envelope returned by GET /v2/search.
type SearchResponse struct {
	Results []SearchHit `json:"results"`
}

// SearchHit wraps a DOI object. Older responses inline the object instead of
// nesting it under "response".
type SearchHit struct {
	Response *Work   `json:"response"`
	Score    float64 `json:"score"`
	Snippet  string  `json:"snippet"`

	Work
}

// Resolve returns the wrapped DOI object, falling back to the inline one.
func (h *SearchHit) Resolve() *Work {
	if h.Response != nil {
		return h.Response
	}
	return &h.Work
}

// Work is an Unpaywall DOI object.
type Work struct {
	DOI            string        `json:"doi"`
	DOIUpper       string        `json:"DOI"`
	DOIURL         string        `json:"doi_url"`
	Title          string        `json:"title"`
	Year           flexInt       `json:"year"`
	PublishedDate  string        `json:"published_date"`
	JournalName    string        `json:"journal_name"`
	Publisher      string        `json:"publisher"`
	IsOA           bool          `json:"is_oa"`
	ZAuthors       []Author      `json:"z_authors"`
	Authors        []Author      `json:"authors"`
	BestOALocation *OALocation   `json:"best_oa_location"`
	OALocations    []*OALocation `json:"oa_locations"`
}

// Author is a name entry. z_authors use given/family, the legacy authors
// array uses name.
type Author struct {
	Given         string `json:"given"`
	Family        string `json:"family"`
	Name          string `json:"name"`
	RawAuthorName string `json:"raw_author_name"`
}

// DisplayName returns the best available name for the author.
func (a Author) DisplayName() string {
	if n := strings.TrimSpace(a.Name); n != "" {
		return n
	}
	if n := strings.TrimSpace(a.RawAuthorName); n != "" {
		return n
	}
	return strings.TrimSpace(strings.TrimSpace(a.Given) + " " + strings.TrimSpace(a.Family))
}

// OALocation is one place an open-access copy is hosted.
type OALocation struct {
	URL           string `json:"url"`
	URLForPDF     string `json:"url_for_pdf"`
	URLForLanding string `json:"url_for_landing_page"`
	HostType      string `json:"host_type"`
	License       string `json:"license"`
	Version       string `json:"version"`
}

// flexInt decodes a JSON number or numeric string; anything else is 0.
type flexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (f *flexInt) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		if i, err := strconv.Atoi(n.String()); err == nil {
			*f = flexInt(i)
			return nil
		}
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			*f = flexInt(i)
			return nil
		}
	}
	*f = 0
	return nil
}
