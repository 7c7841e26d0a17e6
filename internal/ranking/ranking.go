// Package ranking orders and truncates results to the depth budget.
package ranking

import (
	"sort"

	"github.com/helixir/research-assistant-service/internal/domain"
)

// fallbackNextSteps is returned when filtering leaves no theme to show.
var fallbackNextSteps = []string{
	"Try adding a more specific angle + time range (e.g., 'Napoleonic Code civil liberties 1804–1815').",
	"Ask for 'university lecture notes PDF' or 'working paper PDF' in your prompt.",
	"Switch to deep mode and re-run.",
}

// FallbackNextSteps returns a fresh copy of the guidance shown when no theme
// survived filtering.
func FallbackNextSteps() []string {
	return append([]string(nil), fallbackNextSteps...)
}

// RankRecords returns records stably sorted by year descending, then by
// number of relevance notes descending, truncated to the depth budget.
// The input slice is not modified.
func RankRecords(records []domain.MergedRecord, depth domain.Depth) []domain.MergedRecord {
	out := make([]domain.MergedRecord, len(records))
	copy(out, records)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].RelevanceNotes.Len() > out[j].RelevanceNotes.Len()
	})

	if budget := depth.ResultBudget(); len(out) > budget {
		out = out[:budget]
	}
	return out
}

// TruncateThemes caps the number of themes and the sources in each theme.
// Order is preserved; no re-ranking happens across themes.
func TruncateThemes(themes []domain.ThemeGroup, depth domain.Depth) []domain.ThemeGroup {
	maxThemes := depth.MaxThemes()
	maxSources := depth.MaxSourcesPerTheme()

	n := len(themes)
	if n > maxThemes {
		n = maxThemes
	}

	out := make([]domain.ThemeGroup, n)
	for i := 0; i < n; i++ {
		t := themes[i]
		if len(t.Sources) > maxSources {
			t.Sources = t.Sources[:maxSources:maxSources]
		}
		out[i] = t
	}
	return out
}
