// Package crossref provides a client for the Crossref REST API.
//
// Crossref is the DOI registration agency for most scholarly publishers.
// This package implements papersources.Provider on top of the works query
// endpoint.
//
// API Documentation: https://api.crossref.org/swagger-ui/index.html
package crossref

import (
	"encoding/json"
)

// SearchResponse is the envelope returned by GET /works.
type SearchResponse struct {
	Status  string  `json:"status"`
	Message Message `json:"message"`
}

// Message holds the paged result set.
type Message struct {
	TotalResults int    `json:"total-results"`
	Items        []Item `json:"items"`
}

// Item is one registered work.
type Item struct {
	DOI                 string     `json:"DOI"`
	URL                 string     `json:"URL"`
	Title               stringList `json:"title"`
	ContainerTitle      stringList `json:"container-title"`
	Publisher           string     `json:"publisher"`
	Author              []Author   `json:"author"`
	Published           *DateParts `json:"published"`
	PublishedPrint      *DateParts `json:"published-print"`
	PublishedOnline     *DateParts `json:"published-online"`
	Issued              *DateParts `json:"issued"`
	Created             *DateParts `json:"created"`
	IsReferencedByCount *int       `json:"is-referenced-by-count"`
	Type                string     `json:"type"`
}

// Author is a contributor entry. Organisations carry Name instead of
// Given/Family.
type Author struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	Name   string `json:"name"`
}

// DateParts is Crossref's partial-date representation: [[year, month, day]].
type DateParts struct {
	DateParts [][]*int `json:"date-parts"`
}

// Year returns the leading year, or 0 when absent.
func (d *DateParts) Year() int {
	if d == nil || len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 || d.DateParts[0][0] == nil {
		return 0
	}
	return *d.DateParts[0][0]
}

// stringList accepts either a JSON array of strings or a bare string.
type stringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *stringList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = nil
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = stringList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

// First returns the first element or "".
func (s stringList) First() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}
