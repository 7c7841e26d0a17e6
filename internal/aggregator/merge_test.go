package aggregator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/research-assistant-service/internal/domain"
	"github.com/helixir/research-assistant-service/internal/papersources"
)

func record(key, title string, notes ...string) domain.CandidateRecord {
	return domain.CandidateRecord{
		IdentityKey:    key,
		Title:          title,
		RelevanceNotes: domain.NewNoteSet(notes...),
	}
}

func TestMerge_FirstNonEmptyWins(t *testing.T) {
	a := record("doi:10.1/x", "", "Indexed by OpenAlex")
	a.Year = 2001
	a.URL = "https://openalex.example/x"

	b := record("doi:10.1/x", "Revolutionary France", "Registered with Crossref", "Indexed by OpenAlex")
	b.Authors = []string{"Lynn Hunt"}
	b.Year = 1999
	b.Venue = "Past & Present"
	b.DOI = "10.1/x"
	b.CitedByCount = domain.IntPtr(12)
	b.URL = "https://doi.org/10.1/x"

	c := record("doi:10.1/x", "Other title")
	c.Venue = "Ignored"
	c.CitedByCount = domain.IntPtr(99)

	got := Merge([]papersources.SourceResult{
		{Provider: "openalex", Records: []domain.CandidateRecord{a}},
		{Provider: "crossref", Records: []domain.CandidateRecord{b}},
		{Provider: "unpaywall", Records: []domain.CandidateRecord{c}},
	})

	require.Len(t, got, 1)
	m := got[0]
	assert.Equal(t, "Revolutionary France", m.Title)
	assert.Equal(t, []string{"Lynn Hunt"}, m.Authors)
	assert.Equal(t, 2001, m.Year)
	assert.Equal(t, "Past & Present", m.Venue)
	assert.Equal(t, "10.1/x", m.DOI)
	assert.Equal(t, "https://openalex.example/x", m.URL)
	require.NotNil(t, m.CitedByCount)
	assert.Equal(t, 12, *m.CitedByCount)
	assert.Equal(t, []string{"Indexed by OpenAlex", "Registered with Crossref"}, m.RelevanceNotes.Items())
	assert.Equal(t, []string{"openalex", "crossref", "unpaywall"}, m.Sources)
}

func TestMerge_ArrivalOrderPreserved(t *testing.T) {
	got := Merge([]papersources.SourceResult{
		{Provider: "openalex", Records: []domain.CandidateRecord{record("k2", "B"), record("k1", "A")}},
		{Provider: "crossref", Records: []domain.CandidateRecord{record("k3", "C"), record("k1", "A2")}},
	})

	titles := make([]string, len(got))
	for i, r := range got {
		titles[i] = r.Title
	}
	assert.Equal(t, []string{"B", "A", "C"}, titles)
}

func TestMerge_SkipsFailuresAndMissingIdentity(t *testing.T) {
	got := Merge([]papersources.SourceResult{
		{Provider: "openalex", Err: domain.NewProviderError("openalex", errors.New("down")),
			Records: []domain.CandidateRecord{record("k1", "Should not appear")}},
		{Provider: "crossref", Records: []domain.CandidateRecord{record("  ", "No key"), record("k2", "Kept")}},
	})

	require.Len(t, got, 1)
	assert.Equal(t, "Kept", got[0].Title)
}

func TestMerge_DropsNoise(t *testing.T) {
	noise := record("doi:10.1/empty", "")
	authorOnly := record("doi:10.1/author", "")
	authorOnly.Authors = []string{"E. P. Thompson"}

	got := Merge([]papersources.SourceResult{
		{Provider: "crossref", Records: []domain.CandidateRecord{noise, authorOnly}},
	})

	require.Len(t, got, 1)
	assert.Equal(t, "doi:10.1/author", got[0].IdentityKey)
}

func TestMerge_LaterTitleRescuesNoise(t *testing.T) {
	got := Merge([]papersources.SourceResult{
		{Provider: "openalex", Records: []domain.CandidateRecord{record("k", "")}},
		{Provider: "crossref", Records: []domain.CandidateRecord{record("k", "Found later")}},
	})

	require.Len(t, got, 1)
	assert.Equal(t, "Found later", got[0].Title)
}

func TestMerge_DoesNotAliasInput(t *testing.T) {
	a := record("k", "A")
	a.Authors = []string{"First"}
	a.CitedByCount = domain.IntPtr(1)
	input := []papersources.SourceResult{{Provider: "openalex", Records: []domain.CandidateRecord{a}}}

	got := Merge(input)
	got[0].Authors[0] = "Changed"
	*got[0].CitedByCount = 42
	got[0].RelevanceNotes.Add("extra")

	assert.Equal(t, "First", input[0].Records[0].Authors[0])
	assert.Equal(t, 1, *input[0].Records[0].CitedByCount)
	assert.Equal(t, 0, input[0].Records[0].RelevanceNotes.Len())
}

func TestMerge_Empty(t *testing.T) {
	assert.Empty(t, Merge(nil))
	assert.NotNil(t, Merge(nil))
}
