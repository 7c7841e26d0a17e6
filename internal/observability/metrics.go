package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the research assistant service.
// Metrics are organized by subsystem: research requests, query expansion,
// provider searches, merging and filtering, LLM operations, and planning. All
// counters and histograms are registered via promauto with the default
// Prometheus registry.
//
// A nil *Metrics is valid; every Record method is then a no-op.
type Metrics struct {
	// ResearchRequests counts research requests by mode and decision.
	ResearchRequests *prometheus.CounterVec

	// ResearchDuration observes end-to-end research duration in seconds by mode.
	ResearchDuration *prometheus.HistogramVec

	// ClassifierRefusals counts topics refused by the writing-task classifier.
	ClassifierRefusals prometheus.Counter

	// QueryExpansions counts expansions by outcome ("llm" or "fallback").
	QueryExpansions *prometheus.CounterVec

	// QueriesPerRequest observes how many search queries each request produced.
	QueriesPerRequest prometheus.Histogram

	// SearchesStarted counts searches initiated, labeled by provider.
	SearchesStarted *prometheus.CounterVec

	// SearchesCompleted counts successful searches, labeled by provider.
	SearchesCompleted *prometheus.CounterVec

	// SearchesFailed counts failed or cancelled searches, labeled by provider.
	SearchesFailed *prometheus.CounterVec

	// SearchDuration observes search duration in seconds, labeled by provider.
	SearchDuration *prometheus.HistogramVec

	// RecordsPerSearch observes the number of records returned per search.
	RecordsPerSearch *prometheus.HistogramVec

	// RecordsMerged observes the number of merged records per request.
	RecordsMerged prometheus.Histogram

	// SourcesRejected counts LLM-proposed sources dropped by the policy filter.
	SourcesRejected prometheus.Counter

	// LLMRequestsTotal counts LLM API requests, labeled by operation and model.
	LLMRequestsTotal *prometheus.CounterVec

	// LLMRequestsFailed counts failed LLM API requests, labeled by operation, model, and error type.
	LLMRequestsFailed *prometheus.CounterVec

	// LLMRequestDuration observes LLM API request duration in seconds, labeled by operation and model.
	LLMRequestDuration *prometheus.HistogramVec

	// LLMTokensUsed counts tokens consumed by LLM operations, labeled by operation, model, and token type.
	LLMTokensUsed *prometheus.CounterVec

	// PlansCreated counts planner calls by decision.
	PlansCreated *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		// Research
		ResearchRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "research_requests_total",
			Help:      "Total number of research requests by mode and decision",
		}, []string{"mode", "decision"}),
		ResearchDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "research_duration_seconds",
			Help:      "Duration of research requests in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"mode"}),
		ClassifierRefusals: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifier_refusals_total",
			Help:      "Total number of topics refused as writing requests",
		}),

		// Query expansion
		QueryExpansions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_expansions_total",
			Help:      "Total number of query expansions by outcome",
		}, []string{"outcome"}),
		QueriesPerRequest: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "queries_per_request",
			Help:      "Number of search queries produced per request",
			Buckets:   []float64{1, 2, 3, 5, 8, 10},
		}),

		// Searches
		SearchesStarted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_started_total",
			Help:      "Total number of provider searches started",
		}, []string{"provider"}),
		SearchesCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_completed_total",
			Help:      "Total number of provider searches completed",
		}, []string{"provider"}),
		SearchesFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_failed_total",
			Help:      "Total number of provider searches that failed or were cancelled",
		}, []string{"provider"}),
		SearchDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Duration of provider searches in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"provider"}),
		RecordsPerSearch: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "records_per_search",
			Help:      "Number of records returned per provider search",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 200},
		}, []string{"provider"}),

		// Merge and filter
		RecordsMerged: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "records_merged",
			Help:      "Number of merged records per request",
			Buckets:   []float64{0, 1, 5, 10, 20, 50, 100, 200},
		}),
		SourcesRejected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sources_rejected_total",
			Help:      "Total number of sources dropped by the host and PDF policy",
		}),

		// LLM
		LLMRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of LLM requests by operation",
		}, []string{"operation", "model"}),
		LLMRequestsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_failed_total",
			Help:      "Total number of failed LLM requests by operation",
		}, []string{"operation", "model", "error_type"}),
		LLMRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Duration of LLM requests in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"operation", "model"}),
		LLMTokensUsed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_used_total",
			Help:      "Total number of tokens used by LLM operations",
		}, []string{"operation", "model", "token_type"}),

		// Planner
		PlansCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_created_total",
			Help:      "Total number of planner requests by decision",
		}, []string{"decision"}),
	}
}

// RecordResearch records a finished research request.
func (m *Metrics) RecordResearch(mode, decision string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.ResearchRequests.WithLabelValues(mode, decision).Inc()
	m.ResearchDuration.WithLabelValues(mode).Observe(durationSeconds)
}

// RecordClassifierRefusal records a topic refused by the classifier.
func (m *Metrics) RecordClassifierRefusal() {
	if m == nil {
		return
	}
	m.ClassifierRefusals.Inc()
}

// RecordQueryExpansion records how the search queries were produced.
func (m *Metrics) RecordQueryExpansion(outcome string, count int) {
	if m == nil {
		return
	}
	m.QueryExpansions.WithLabelValues(outcome).Inc()
	m.QueriesPerRequest.Observe(float64(count))
}

// RecordSearchStarted records that a search has started.
func (m *Metrics) RecordSearchStarted(provider string) {
	if m == nil {
		return
	}
	m.SearchesStarted.WithLabelValues(provider).Inc()
}

// RecordSearchCompleted records that a search has completed.
func (m *Metrics) RecordSearchCompleted(provider string, recordCount int, durationSeconds float64) {
	if m == nil {
		return
	}
	m.SearchesCompleted.WithLabelValues(provider).Inc()
	m.SearchDuration.WithLabelValues(provider).Observe(durationSeconds)
	m.RecordsPerSearch.WithLabelValues(provider).Observe(float64(recordCount))
}

// RecordSearchFailed records that a search has failed.
func (m *Metrics) RecordSearchFailed(provider string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.SearchesFailed.WithLabelValues(provider).Inc()
	m.SearchDuration.WithLabelValues(provider).Observe(durationSeconds)
}

// RecordMerged records the size of a merged record set.
func (m *Metrics) RecordMerged(count int) {
	if m == nil {
		return
	}
	m.RecordsMerged.Observe(float64(count))
}

// RecordSourcesRejected records sources dropped by the policy filter.
func (m *Metrics) RecordSourcesRejected(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.SourcesRejected.Add(float64(count))
}

// RecordLLMRequest records an LLM request.
func (m *Metrics) RecordLLMRequest(operation, model string, durationSeconds float64, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	m.LLMRequestsTotal.WithLabelValues(operation, model).Inc()
	m.LLMRequestDuration.WithLabelValues(operation, model).Observe(durationSeconds)
	m.LLMTokensUsed.WithLabelValues(operation, model, "input").Add(float64(inputTokens))
	m.LLMTokensUsed.WithLabelValues(operation, model, "output").Add(float64(outputTokens))
}

// RecordLLMRequestFailed records a failed LLM request.
func (m *Metrics) RecordLLMRequestFailed(operation, model, errorType string) {
	if m == nil {
		return
	}
	m.LLMRequestsFailed.WithLabelValues(operation, model, errorType).Inc()
}

// RecordPlan records a planner call.
func (m *Metrics) RecordPlan(decision string) {
	if m == nil {
		return
	}
	m.PlansCreated.WithLabelValues(decision).Inc()
}
