package research

import (
	"fmt"

	"github.com/helixir/research-assistant-service/internal/domain"
	"github.com/helixir/research-assistant-service/internal/ranking"
	"github.com/helixir/research-assistant-service/internal/websearch"
)

// readingOrderLength is the number of top titles suggested as a reading order.
const readingOrderLength = 5

var metadataNextSteps = []string{
	"Start with the reading order and skim each abstract before committing to the full text.",
	"Follow the DOI or open-access links to reach a free PDF.",
	"Note recurring authors and venues, then search them directly for related work.",
}

// PackageThemes builds the allow envelope for llm mode from a validated
// model answer and its filtered, truncated themes.
func PackageThemes(res *websearch.Result, themes []domain.ThemeGroup) domain.Envelope {
	nextSteps := append([]string(nil), res.NextSteps...)
	if len(themes) == 0 || len(nextSteps) == 0 {
		nextSteps = ranking.FallbackNextSteps()
	}

	return domain.Allow(domain.Payload{
		Overview:              res.Overview,
		InterpretationBullets: append([]string(nil), res.InterpretationBullets...),
		TopPlaces:             append([]domain.TopPlace(nil), res.TopPlaces...),
		Themes:                themes,
		NextSteps:             nextSteps,
	})
}

// PackageRecords builds the allow envelope for metadata mode from ranked
// records.
func PackageRecords(topic string, queries []string, records []domain.MergedRecord) domain.Envelope {
	sources := make([]domain.FlatSource, 0, len(records))
	for _, r := range records {
		sources = append(sources, flatten(r))
	}

	readingOrder := make([]string, 0, readingOrderLength)
	for i := 0; i < len(records) && i < readingOrderLength; i++ {
		readingOrder = append(readingOrder, records[i].Title)
	}

	nextSteps := append([]string(nil), metadataNextSteps...)
	if len(records) == 0 {
		nextSteps = ranking.FallbackNextSteps()
	}

	return domain.Allow(domain.Payload{
		Overview:      overview(topic, len(queries), len(records)),
		SearchQueries: append([]string(nil), queries...),
		Sources:       sources,
		ReadingOrder:  readingOrder,
		NextSteps:     nextSteps,
	})
}

func flatten(r domain.MergedRecord) domain.FlatSource {
	authors := append([]string{}, r.Authors...)
	url := r.URL
	if url == "" && r.DOI != "" {
		url = "https://doi.org/" + r.DOI
	}
	return domain.FlatSource{
		Title:              r.Title,
		Authors:            authors,
		Year:               r.Year,
		Venue:              r.Venue,
		DOI:                r.DOI,
		URL:                url,
		WhyRelevantBullets: r.RelevanceNotes.Items(),
	}
}

func overview(topic string, queryCount, recordCount int) string {
	if recordCount == 0 {
		return fmt.Sprintf("No sources were found for %q across %d searches.", topic, queryCount)
	}
	noun := "sources"
	if recordCount == 1 {
		noun = "source"
	}
	return fmt.Sprintf("Found %d %s for %q across %d searches, newest first.", recordCount, noun, topic, queryCount)
}
