// Package papersources provides the capability interface and shared HTTP
// plumbing for bibliographic metadata providers.
//
// Each provider (OpenAlex, Crossref, Unpaywall, Semantic Scholar) translates its native
// response into domain.CandidateRecord values so that the aggregator only
// ever sees one record shape.
//
// Example usage:
//
//	registry := papersources.NewRegistry()
//	registry.Register(openalex.New(openalex.Config{Email: "ops@example.edu"}))
//	results := registry.SearchAll(ctx, []string{"Cold War propaganda"}, 10)
package papersources

import (
	"context"

	"github.com/helixir/research-assistant-service/internal/domain"
)

// Provider is a single bibliographic metadata source.
type Provider interface {
	// Search returns zero or more candidate records for query, at most limit.
	// Failures are reported as *domain.ProviderError.
	//
	// Implementations should:
	//   - Respect context cancellation
	//   - Normalize provider quirks at this boundary
	//   - Never return a record with an empty identity key
	Search(ctx context.Context, query string, limit int) ([]domain.CandidateRecord, error)

	// Name returns the provider identifier used for attribution, logging, and metrics.
	Name() string
}
