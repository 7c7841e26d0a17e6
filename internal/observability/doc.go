// Package observability provides logging and metrics support for the
// research assistant service.
//
// # Overview
//
// The observability package provides:
//
//   - Structured logging with zerolog
//   - Prometheus metrics for research requests, provider searches, and LLM calls
//   - Context helpers for propagating request data
//
// # Logging
//
// Create a logger from configuration:
//
//	cfg := observability.LoggingConfig{
//	    Level:     "info",
//	    Format:    "json",
//	    Output:    "stdout",
//	    AddSource: true,
//	}
//
//	logger := observability.NewLogger(cfg)
//	logger.Info().Str("request_id", reqID).Msg("research started")
//
// Add request context to a logger:
//
//	logger = observability.WithRequestContext(logger, requestID)
//	logger = observability.WithSearchContext(logger, query, "openalex")
//
// # Metrics
//
// Initialize metrics once per process:
//
//	metrics := observability.NewMetrics("research_assistant")
//
// Record metrics:
//
//	metrics.RecordSearchStarted("crossref")
//	metrics.RecordSearchCompleted("crossref", 18, 0.9)
//	metrics.RecordResearch("metadata", "allow", 2.4)
//
// # Context Helpers
//
//	ctx = observability.WithRequestID(ctx, requestID)
//	ctx = observability.WithResearch(ctx, mode, depth)
//
//	logger = observability.LoggerFromContext(ctx, logger)
//
// # Standard Fields
//
//   - request_id: Request correlation identifier
//   - mode: Research mode (metadata or llm)
//   - depth: Research depth (quick, standard, deep)
//   - query: Search query sent to a provider
//   - provider: Metadata provider (openalex, crossref, unpaywall)
//   - component: Owning component (aggregator, websearch, ...)
//
// # Thread Safety
//
// All components are safe for concurrent use from multiple goroutines.
package observability
