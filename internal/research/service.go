// Package research runs one research request end to end: classification,
// query expansion, provider fan-out, merging, filtering, ranking, and
// packaging into an allow/refuse envelope.
package research

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/helixir/research-assistant-service/internal/aggregator"
	"github.com/helixir/research-assistant-service/internal/classifier"
	"github.com/helixir/research-assistant-service/internal/domain"
	"github.com/helixir/research-assistant-service/internal/observability"
	"github.com/helixir/research-assistant-service/internal/policy"
	"github.com/helixir/research-assistant-service/internal/ranking"
	"github.com/helixir/research-assistant-service/internal/websearch"
)

// User-visible refusal reasons.
const (
	ReasonEmptyContext = "Enter a topic."
	ReasonWritingTask  = "I can’t write any part of your paper. I can help you find free academic PDFs and a research plan."
	ReasonNoLLM        = "Server missing LLM configuration."
)

// contextWindow is the number of trailing user messages used when no topic is given.
const contextWindow = 6

// ErrUnexpected marks a refusal caused by a recovered panic.
var ErrUnexpected = errors.New("unexpected failure")

// Message is one turn of a conversation.
type Message struct {
	Role    string
	Content string
}

// Request is the input to one research call.
type Request struct {
	Topic    string
	Depth    domain.Depth
	Messages []Message
}

// Outcome is the envelope for a request together with the error that caused
// a refusal. Err is nil for allow envelopes.
type Outcome struct {
	Envelope domain.Envelope
	Err      error
}

// WebSearcher returns themed sources from an LLM with web search.
type WebSearcher interface {
	Search(ctx context.Context, userContext string, depth domain.Depth) (*websearch.Result, error)
}

// QueryExpander turns a topic into search queries.
type QueryExpander interface {
	Expand(ctx context.Context, topic string) []string
}

// Collector fans queries out to metadata providers and merges the results.
type Collector interface {
	Collect(ctx context.Context, queries []string, limit int) aggregator.Collection
}

// Config holds the per-deployment settings of a Service.
type Config struct {
	Mode            domain.Mode
	ResultsPerQuery int
}

// Dependencies are the collaborators of a Service. Only those needed by the
// configured mode must be set.
type Dependencies struct {
	// WebSearch serves llm mode.
	WebSearch WebSearcher

	// WebSearchErr is the error that prevented WebSearch from being built.
	// It is reported on every llm-mode request.
	WebSearchErr error

	// Expander and Collector serve metadata mode.
	Expander  QueryExpander
	Collector Collector

	// Filter enforces the host and PDF policy on llm-mode sources.
	Filter *policy.Filter
}

// Service executes research requests. It holds no per-request state and is
// safe for concurrent use.
type Service struct {
	cfg     Config
	deps    Dependencies
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewService creates a Service. metrics may be nil.
func NewService(cfg Config, deps Dependencies, logger zerolog.Logger, metrics *observability.Metrics) *Service {
	if cfg.ResultsPerQuery <= 0 {
		cfg.ResultsPerQuery = 10
	}
	if deps.Filter == nil {
		deps.Filter = policy.New(nil)
	}
	return &Service{
		cfg:     cfg,
		deps:    deps,
		logger:  observability.WithComponent(logger, "research"),
		metrics: metrics,
	}
}

// Mode returns the deployment mode the service was built for.
func (s *Service) Mode() domain.Mode {
	return s.cfg.Mode
}

// Research handles one request. It never fails: every path, including a
// panic in a collaborator, ends in an envelope.
func (s *Service) Research(ctx context.Context, req Request) (out Outcome) {
	start := time.Now()
	depth := domain.ParseDepth(string(req.Depth))
	ctx = observability.WithResearch(ctx, string(s.cfg.Mode), string(depth))
	logger := observability.LoggerFromContext(ctx, s.logger)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: %v", ErrUnexpected, r)
			logger.Error().Err(err).Msg("research panicked")
			out = Outcome{Envelope: domain.Refuse(ServerErrorReason(err)), Err: err}
		}
		s.metrics.RecordResearch(string(s.cfg.Mode), string(out.Envelope.Decision()), time.Since(start).Seconds())
		logger.Info().
			Str("decision", string(out.Envelope.Decision())).
			Dur("duration", time.Since(start)).
			Msg("research finished")
	}()

	userContext := CompactContext(req.Topic, req.Messages)
	if userContext == "" {
		return refuse(domain.NewValidationError("topic", ReasonEmptyContext), ReasonEmptyContext)
	}

	if classifier.IsDisallowed(userContext) {
		s.metrics.RecordClassifierRefusal()
		logger.Info().Msg("topic refused by classifier")
		return refuse(domain.NewPolicyRefusalError(ReasonWritingTask), ReasonWritingTask)
	}

	if s.cfg.Mode == domain.ModeMetadata {
		return s.researchMetadata(ctx, logger, userContext, depth)
	}
	return s.researchLLM(ctx, logger, userContext, depth)
}

func (s *Service) researchLLM(ctx context.Context, logger zerolog.Logger, userContext string, depth domain.Depth) Outcome {
	if s.deps.WebSearch == nil {
		err := s.deps.WebSearchErr
		if err == nil {
			err = domain.NewConfigurationError("llm", ReasonNoLLM)
		}
		logger.Warn().Err(err).Msg("llm mode without a web search provider")
		return refuse(err, websearch.RefusalReason(err))
	}

	res, err := s.deps.WebSearch.Search(ctx, userContext, depth)
	if err != nil {
		logger.Warn().Err(err).Msg("web search failed")
		return refuse(err, websearch.RefusalReason(err))
	}

	themes, rejected := s.deps.Filter.FilterThemes(res.Themes)
	s.metrics.RecordSourcesRejected(rejected)
	themes = ranking.TruncateThemes(themes, depth)

	logger.Debug().
		Int("themes", len(themes)).
		Int("rejected_sources", rejected).
		Msg("filtered web search sources")

	return Outcome{Envelope: PackageThemes(res, themes)}
}

func (s *Service) researchMetadata(ctx context.Context, logger zerolog.Logger, topic string, depth domain.Depth) Outcome {
	if s.deps.Expander == nil || s.deps.Collector == nil {
		err := domain.NewConfigurationError("paper_sources", "No paper sources are configured.")
		logger.Warn().Err(err).Msg("metadata mode without providers")
		return refuse(err, err.Message)
	}

	queries := s.deps.Expander.Expand(ctx, topic)
	collection := s.deps.Collector.Collect(ctx, queries, s.cfg.ResultsPerQuery)
	ranked := ranking.RankRecords(collection.Records, depth)

	logger.Debug().
		Int("queries", len(queries)).
		Int("merged", len(collection.Records)).
		Int("returned", len(ranked)).
		Int("failed_searches", len(collection.Failures)).
		Msg("collected metadata records")

	return Outcome{Envelope: PackageRecords(topic, queries, ranked)}
}

// CompactContext derives the user context for a request: the trimmed topic
// when present, otherwise the last six user messages joined by newlines.
func CompactContext(topic string, messages []Message) string {
	if t := strings.TrimSpace(topic); t != "" {
		return t
	}

	var user []string
	for _, m := range messages {
		if m.Role == "user" {
			user = append(user, m.Content)
		}
	}
	if len(user) > contextWindow {
		user = user[len(user)-contextWindow:]
	}
	return strings.TrimSpace(strings.Join(user, "\n"))
}

// ServerErrorReason renders an unexpected failure for the user.
func ServerErrorReason(err error) string {
	msg := "unknown"
	if err != nil {
		msg = domain.TruncateDetail(err.Error())
	}
	return "Server error: " + msg
}

func refuse(err error, reason string) Outcome {
	return Outcome{Envelope: domain.Refuse(reason), Err: err}
}
