package research

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/research-assistant-service/internal/domain"
	"github.com/helixir/research-assistant-service/internal/ranking"
	"github.com/helixir/research-assistant-service/internal/websearch"
)

func TestPackageRecords(t *testing.T) {
	records := make([]domain.MergedRecord, 0, 7)
	for i := 0; i < 7; i++ {
		records = append(records, domain.MergedRecord{
			IdentityKey:    string(rune('a' + i)),
			Title:          "Title " + string(rune('A'+i)),
			URL:            "https://example.org/" + string(rune('a'+i)),
			RelevanceNotes: domain.NewNoteSet("Open access"),
		})
	}

	env := PackageRecords("Cold War", []string{"Cold War", "Cold War review article"}, records)

	require.True(t, env.IsAllowed())
	p := env.Payload()
	assert.Len(t, p.Sources, 7)
	assert.Equal(t, []string{"Title A", "Title B", "Title C", "Title D", "Title E"}, p.ReadingOrder)
	assert.Equal(t, []string{"Cold War", "Cold War review article"}, p.SearchQueries)
	assert.Contains(t, p.Overview, "Found 7 sources")
	assert.NotNil(t, p.Sources[0].Authors)
	assert.Equal(t, []string{"Open access"}, p.Sources[0].WhyRelevantBullets)
	assert.Len(t, p.NextSteps, 3)
	assert.NotEqual(t, ranking.FallbackNextSteps(), p.NextSteps)
}

func TestPackageRecords_Empty(t *testing.T) {
	env := PackageRecords("Cold War", []string{"Cold War"}, nil)

	require.True(t, env.IsAllowed())
	p := env.Payload()
	assert.Empty(t, p.Sources)
	assert.Empty(t, p.ReadingOrder)
	assert.Equal(t, ranking.FallbackNextSteps(), p.NextSteps)
	assert.Contains(t, p.Overview, "No sources")
}

func TestPackageThemes(t *testing.T) {
	places := make([]domain.TopPlace, 5)
	for i := range places {
		places[i] = domain.TopPlace{Name: "Place", URL: "https://core.ac.uk", Why: "Open repository"}
	}
	res := &websearch.Result{
		Overview:              "Overview",
		InterpretationBullets: []string{"One"},
		TopPlaces:             places,
		NextSteps:             []string{"Read"},
	}
	themes := []domain.ThemeGroup{{Theme: "T", Sources: []domain.ThemeSource{{Title: "S", URL: "https://arxiv.org/pdf/1", Host: "arxiv.org"}}}}

	env := PackageThemes(res, themes)

	require.True(t, env.IsAllowed())
	p := env.Payload()
	assert.Equal(t, "Overview", p.Overview)
	assert.Len(t, p.TopPlaces, 5)
	assert.Equal(t, themes, p.Themes)
	assert.Equal(t, []string{"Read"}, p.NextSteps)
	assert.Empty(t, p.Sources)
}

func TestPackageThemes_NextStepsNeverEmpty(t *testing.T) {
	res := &websearch.Result{Overview: "Overview"}
	themes := []domain.ThemeGroup{{Theme: "T", Sources: []domain.ThemeSource{{Title: "S", URL: "https://arxiv.org/pdf/1"}}}}

	env := PackageThemes(res, themes)
	assert.Equal(t, ranking.FallbackNextSteps(), env.Payload().NextSteps)

	env = PackageThemes(&websearch.Result{NextSteps: []string{"ignored"}}, nil)
	assert.Equal(t, ranking.FallbackNextSteps(), env.Payload().NextSteps)
}

func TestPackageThemes_WireShape(t *testing.T) {
	env := PackageThemes(&websearch.Result{Overview: "Overview", NextSteps: []string{"Read"}}, nil)

	data, err := json.Marshal(env)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, "allow", wire["decision"])
	assert.NotContains(t, wire, "refusalReason")
	assert.NotContains(t, wire, "topPlaces")
	assert.NotContains(t, wire, "sources")
}
