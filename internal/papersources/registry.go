package papersources

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/helixir/research-assistant-service/internal/domain"
)

// SourceResult holds the outcome of one (provider, query) search.
type SourceResult struct {
	// Provider names the provider that was searched.
	Provider string

	// Query is the search string sent to the provider.
	Query string

	// Records contains the candidates if the search succeeded.
	// Will be nil if Err is non-nil.
	Records []domain.CandidateRecord

	// Err is a *domain.ProviderError if the search failed or was cancelled.
	Err error

	// Duration is the wall time spent on the call.
	Duration time.Duration
}

// Registry holds providers in a fixed order and coordinates concurrent searches.
// Registration order is arrival order for merging.
type Registry struct {
	mu        sync.RWMutex
	providers []Provider
}

// NewRegistry creates a new, empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a provider. A provider with the same name replaces the
// earlier one in place, keeping its position.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.providers {
		if existing.Name() == p.Name() {
			r.providers[i] = p
			return
		}
	}
	r.providers = append(r.providers, p)
}

// Providers returns a snapshot of the registered providers in order.
func (r *Registry) Providers() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}

// SearchAll runs every (provider, query) pair concurrently and waits for all
// of them to settle. A failure, panic, or cancellation of one call never
// stops its siblings; it is returned as a SourceResult with Err set.
//
// Results are ordered by provider registration order, then query order,
// independent of completion order.
func (r *Registry) SearchAll(ctx context.Context, queries []string, limit int) []SourceResult {
	providers := r.Providers()
	if len(providers) == 0 || len(queries) == 0 {
		return nil
	}

	results := make([]SourceResult, len(providers)*len(queries))

	// Goroutines never return an error, so Wait is a pure "settle all" join.
	var g errgroup.Group
	for pi, p := range providers {
		for qi, q := range queries {
			idx := pi*len(queries) + qi
			g.Go(func() error {
				results[idx] = searchOne(ctx, p, q, limit)
				return nil
			})
		}
	}
	_ = g.Wait()

	return results
}

// searchOne calls a single provider and converts every failure mode into a
// ProviderError.
func searchOne(ctx context.Context, p Provider, query string, limit int) (res SourceResult) {
	start := time.Now()
	res = SourceResult{Provider: p.Name(), Query: query}

	defer func() {
		if rec := recover(); rec != nil {
			res.Records = nil
			res.Err = domain.NewProviderError(p.Name(), fmt.Errorf("panic: %v", rec))
		}
		res.Duration = time.Since(start)
	}()

	if err := ctx.Err(); err != nil {
		res.Err = domain.NewProviderError(p.Name(), err)
		return res
	}

	records, err := p.Search(ctx, query, limit)
	if err != nil {
		var perr *domain.ProviderError
		if !errors.As(err, &perr) {
			err = domain.NewProviderError(p.Name(), err)
		}
		res.Err = err
		return res
	}

	res.Records = records
	return res
}
