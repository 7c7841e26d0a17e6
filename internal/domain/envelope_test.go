package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope_Refuse(t *testing.T) {
	env := Refuse("Enter a topic.")

	assert.Equal(t, DecisionRefuse, env.Decision())
	assert.False(t, env.IsAllowed())
	assert.Nil(t, env.Payload())

	data, err := json.Marshal(env)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, map[string]any{"decision": "refuse", "refusalReason": "Enter a topic."}, m)
}

func TestEnvelope_Allow(t *testing.T) {
	env := Allow(Payload{
		Overview:      "overview",
		SearchQueries: []string{"q"},
		Sources: []FlatSource{
			{Title: "T", Authors: []string{"A"}, Year: 2001, URL: "https://x", WhyRelevantBullets: []string{"n"}},
		},
		NextSteps: []string{"step"},
	})

	assert.True(t, env.IsAllowed())
	assert.Empty(t, env.Reason())

	data, err := json.Marshal(env)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "allow", m["decision"])
	assert.NotContains(t, m, "refusalReason")
	assert.NotContains(t, m, "themes")
	assert.Contains(t, m, "sources")
	assert.Contains(t, m, "nextSteps")
}

func TestEnvelope_AllowAlwaysHasNextSteps(t *testing.T) {
	data, err := json.Marshal(Allow(Payload{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"decision":"allow","nextSteps":[]}`, string(data))
}

func TestEnvelope_PayloadIsCopy(t *testing.T) {
	env := Allow(Payload{Overview: "original"})
	p := env.Payload()
	p.Overview = "changed"
	assert.Equal(t, "original", env.Payload().Overview)
}

func TestEnvelope_SlicesAreNotShared(t *testing.T) {
	steps := []string{"step"}
	authors := []string{"Ada"}
	bullets := []string{"primary"}
	env := Allow(Payload{
		NextSteps:    steps,
		ReadingOrder: []string{"first"},
		TopPlaces:    []TopPlace{{Name: "JSTOR"}},
		Sources:      []FlatSource{{Title: "T", Authors: authors}},
		Themes: []ThemeGroup{{
			Theme:   "Law",
			Sources: []ThemeSource{{Title: "Code", WhyRelevantBullets: bullets}},
		}},
	})

	steps[0] = "changed by builder"
	authors[0] = "changed by builder"
	bullets[0] = "changed by builder"

	p := env.Payload()
	p.ReadingOrder[0] = "changed by reader"
	p.TopPlaces[0].Name = "changed by reader"
	p.Sources[0].Authors[0] = "changed by reader"
	p.Themes[0].Sources[0].Title = "changed by reader"
	p.Themes[0].Sources[0].WhyRelevantBullets[0] = "changed by reader"

	got := env.Payload()
	assert.Equal(t, []string{"step"}, got.NextSteps)
	assert.Equal(t, []string{"first"}, got.ReadingOrder)
	assert.Equal(t, "JSTOR", got.TopPlaces[0].Name)
	assert.Equal(t, []string{"Ada"}, got.Sources[0].Authors)
	assert.Equal(t, "Code", got.Themes[0].Sources[0].Title)
	assert.Equal(t, []string{"primary"}, got.Themes[0].Sources[0].WhyRelevantBullets)

	data, err := json.Marshal(env)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "changed by")
}

func TestEnvelope_RoundTrip(t *testing.T) {
	orig := Allow(Payload{
		Themes: []ThemeGroup{{
			Theme:               "Legal reform",
			WhyThisThemeMatters: "why",
			Sources: []ThemeSource{{
				Title: "Code", URL: "https://law.stanford.edu/a.pdf", Host: "law.stanford.edu",
				WhyRelevantBullets: []string{"primary"},
			}},
		}},
		NextSteps: []string{"read"},
	})

	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var decoded Envelope
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, orig, decoded)

	var refused Envelope
	require.NoError(t, json.Unmarshal([]byte(`{"decision":"refuse","refusalReason":"no"}`), &refused))
	assert.Equal(t, Refuse("no"), refused)

	assert.Error(t, json.Unmarshal([]byte(`{"decision":"maybe"}`), &refused))
}

func TestEnvelope_ZeroValueDoesNotMarshal(t *testing.T) {
	_, err := json.Marshal(Envelope{})
	assert.Error(t, err)
}
