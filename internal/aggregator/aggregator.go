// Package aggregator fans a set of queries out to every registered metadata
// provider, waits for all calls to settle, and merges the survivors into one
// deduplicated record list.
package aggregator

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/helixir/research-assistant-service/internal/domain"
	"github.com/helixir/research-assistant-service/internal/observability"
	"github.com/helixir/research-assistant-service/internal/papersources"
)

// Collection is the outcome of one Collect call.
type Collection struct {
	// Results holds every (provider, query) outcome in provider order, then query order.
	Results []papersources.SourceResult

	// Records is the merged, noise-free record list.
	Records []domain.MergedRecord

	// Failures lists the errors of failed or cancelled searches.
	Failures []error
}

// Succeeded returns the number of searches that returned without error.
func (c Collection) Succeeded() int {
	return len(c.Results) - len(c.Failures)
}

// Aggregator coordinates provider searches for one deployment.
type Aggregator struct {
	registry *papersources.Registry
	logger   zerolog.Logger
	metrics  *observability.Metrics
}

// New creates an Aggregator over registry. metrics may be nil.
func New(registry *papersources.Registry, logger zerolog.Logger, metrics *observability.Metrics) *Aggregator {
	return &Aggregator{
		registry: registry,
		logger:   observability.WithComponent(logger, "aggregator"),
		metrics:  metrics,
	}
}

// ProviderNames returns the registered provider names in merge order.
func (a *Aggregator) ProviderNames() []string {
	providers := a.registry.Providers()
	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = p.Name()
	}
	return names
}

// Collect searches every provider for every query concurrently. Individual
// failures, including cancellation, are logged and excluded; Collect itself
// never fails.
func (a *Aggregator) Collect(ctx context.Context, queries []string, limit int) Collection {
	logger := observability.LoggerFromContext(ctx, a.logger)

	for _, name := range a.ProviderNames() {
		for range queries {
			a.metrics.RecordSearchStarted(name)
		}
	}

	results := a.registry.SearchAll(ctx, queries, limit)

	var failures []error
	for _, res := range results {
		l := observability.WithSearchContext(logger, res.Query, res.Provider)
		if res.Err != nil {
			failures = append(failures, res.Err)
			a.metrics.RecordSearchFailed(res.Provider, res.Duration.Seconds())
			l.Warn().Err(res.Err).Dur("duration", res.Duration).Msg("provider search failed")
			continue
		}
		a.metrics.RecordSearchCompleted(res.Provider, len(res.Records), res.Duration.Seconds())
		l.Debug().Int("records", len(res.Records)).Dur("duration", res.Duration).Msg("provider search completed")
	}

	records := Merge(results)
	a.metrics.RecordMerged(len(records))

	logger.Info().
		Int("searches", len(results)).
		Int("failed", len(failures)).
		Int("merged", len(records)).
		Msg("provider fan-out settled")

	return Collection{
		Results:  results,
		Records:  records,
		Failures: failures,
	}
}
