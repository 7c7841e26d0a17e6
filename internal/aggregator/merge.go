package aggregator

import (
	"strings"

	"github.com/helixir/research-assistant-service/internal/domain"
	"github.com/helixir/research-assistant-service/internal/papersources"
)

// Merge reconciles provider results into one record per identity key.
//
// Results are consumed in slice order and records within a result in the
// order the provider returned them. The first non-empty value wins for every
// scalar field; relevance notes and contributing providers are unioned.
// Failed results are skipped, as are records without an identity key.
// Records with neither a title nor an author are dropped after merging.
func Merge(results []papersources.SourceResult) []domain.MergedRecord {
	index := make(map[string]int)
	var merged []domain.MergedRecord

	for _, res := range results {
		if res.Err != nil {
			continue
		}
		for _, rec := range res.Records {
			key := strings.TrimSpace(rec.IdentityKey)
			if key == "" {
				continue
			}
			if i, ok := index[key]; ok {
				fill(&merged[i], rec, res.Provider)
				continue
			}
			m := rec.Clone()
			m.IdentityKey = key
			m.Sources = nil
			addSources(&m, rec.Sources, res.Provider)
			index[key] = len(merged)
			merged = append(merged, m)
		}
	}

	out := make([]domain.MergedRecord, 0, len(merged))
	for _, m := range merged {
		if m.IsNoise() {
			continue
		}
		out = append(out, m)
	}
	return out
}

// fill copies values from rec into the empty fields of dst.
func fill(dst *domain.MergedRecord, rec domain.CandidateRecord, provider string) {
	if strings.TrimSpace(dst.Title) == "" {
		dst.Title = rec.Title
	}
	if len(dst.Authors) == 0 && len(rec.Authors) > 0 {
		dst.Authors = append([]string(nil), rec.Authors...)
	}
	if dst.Year == 0 {
		dst.Year = rec.Year
	}
	if dst.Venue == "" {
		dst.Venue = rec.Venue
	}
	if dst.DOI == "" {
		dst.DOI = rec.DOI
	}
	if dst.URL == "" {
		dst.URL = rec.URL
	}
	if dst.CitedByCount == nil && rec.CitedByCount != nil {
		n := *rec.CitedByCount
		dst.CitedByCount = &n
	}
	dst.RelevanceNotes.Add(rec.RelevanceNotes.Items()...)
	addSources(dst, rec.Sources, provider)
}

func addSources(dst *domain.MergedRecord, sources []string, provider string) {
	for _, s := range append(append([]string(nil), sources...), provider) {
		if s == "" || contains(dst.Sources, s) {
			continue
		}
		dst.Sources = append(dst.Sources, s)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
