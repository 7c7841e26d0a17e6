package domain

import (
	"strings"
)

// RecordIdentifiers holds the identifiers a provider can attach to a work.
type RecordIdentifiers struct {
	DOI        string
	ProviderID string
	Title      string
}

// GenerateIdentityKey derives the durable merge key for a record.
// Priority order: DOI > provider-native id > raw title.
// Returns empty string if nothing usable is present.
func GenerateIdentityKey(ids RecordIdentifiers) string {
	if doi := NormalizeDOI(ids.DOI); doi != "" {
		return "doi:" + doi
	}
	if id := strings.TrimSpace(ids.ProviderID); id != "" {
		return "id:" + id
	}
	if title := strings.TrimSpace(ids.Title); title != "" {
		return "title:" + title
	}
	return ""
}

// NormalizeDOI strips resolver prefixes from a DOI and case-folds it.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	if doi == "" {
		return ""
	}
	lower := strings.ToLower(doi)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/", "doi:"} {
		if strings.HasPrefix(lower, prefix) {
			lower = lower[len(prefix):]
			break
		}
	}
	return strings.TrimSpace(lower)
}

// NoteSet is an insertion-ordered set of short justification strings.
// The zero value is ready to use.
type NoteSet struct {
	items []string
}

// NewNoteSet creates a NoteSet containing notes in order, skipping duplicates.
func NewNoteSet(notes ...string) NoteSet {
	var s NoteSet
	s.Add(notes...)
	return s
}

// Add appends notes that are not already present. Blank notes are ignored.
func (s *NoteSet) Add(notes ...string) {
	for _, n := range notes {
		n = strings.TrimSpace(n)
		if n == "" || s.Contains(n) {
			continue
		}
		s.items = append(s.items, n)
	}
}

// Contains reports whether note is already in the set.
func (s NoteSet) Contains(note string) bool {
	for _, existing := range s.items {
		if existing == note {
			return true
		}
	}
	return false
}

// Len returns the number of notes.
func (s NoteSet) Len() int {
	return len(s.items)
}

// Items returns a copy of the notes in insertion order.
func (s NoteSet) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// CandidateRecord is one provider's view of a single work, before merging.
type CandidateRecord struct {
	IdentityKey    string
	Title          string
	Authors        []string
	Year           int
	Venue          string
	DOI            string
	URL            string
	CitedByCount   *int
	RelevanceNotes NoteSet
	Sources        []string
}

// MergedRecord is the reconciled view of a work across providers.
type MergedRecord = CandidateRecord

// IsNoise returns true for records with neither a title nor any author.
func (r *CandidateRecord) IsNoise() bool {
	return strings.TrimSpace(r.Title) == "" && len(r.Authors) == 0
}

// Clone returns a deep copy so merged output never aliases provider slices.
func (r CandidateRecord) Clone() CandidateRecord {
	out := r
	if r.Authors != nil {
		out.Authors = append([]string(nil), r.Authors...)
	}
	if r.Sources != nil {
		out.Sources = append([]string(nil), r.Sources...)
	}
	if r.CitedByCount != nil {
		n := *r.CitedByCount
		out.CitedByCount = &n
	}
	out.RelevanceNotes = NewNoteSet(r.RelevanceNotes.items...)
	return out
}

// IntPtr returns a pointer to n. Adapters use it for optional counts.
func IntPtr(n int) *int {
	return &n
}
