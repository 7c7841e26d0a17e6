// Package expander turns a student's topic into a handful of concrete
// search strings for the bibliographic providers.
//
// When an LLM is configured it is asked for queries in JSON. Any failure, or
// the absence of an LLM, yields a fixed set of templated queries, so Expand
// never fails.
package expander

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/helixir/research-assistant-service/internal/llm"
	"github.com/helixir/research-assistant-service/internal/observability"
)

const (
	// MaxQueries caps the number of queries returned.
	MaxQueries = 10

	operation = "expand_queries"

	outcomeLLM      = "llm"
	outcomeFallback = "fallback"

	maxOutputTokens = 400
)

// Expander produces search queries for a topic.
type Expander struct {
	completer llm.Completer
	logger    zerolog.Logger
	metrics   *observability.Metrics
}

// New creates an Expander. A nil completer selects the templated fallback for
// every call. metrics may be nil.
func New(completer llm.Completer, logger zerolog.Logger, metrics *observability.Metrics) *Expander {
	return &Expander{
		completer: completer,
		logger:    observability.WithComponent(logger, "expander"),
		metrics:   metrics,
	}
}

// Fallback returns the templated queries used when no LLM answer is available.
func Fallback(topic string) []string {
	topic = strings.TrimSpace(topic)
	return []string{
		topic,
		topic + " review article",
		topic + " historiography",
	}
}

// Expand returns 1 to MaxQueries search strings for topic.
func (e *Expander) Expand(ctx context.Context, topic string) []string {
	if e.completer == nil {
		return e.fallback(topic, nil)
	}

	queries, err := e.ask(ctx, topic)
	if err != nil {
		return e.fallback(topic, err)
	}

	e.metrics.RecordQueryExpansion(outcomeLLM, len(queries))
	e.logger.Debug().Int("queries", len(queries)).Msg("topic expanded")
	return queries
}

func (e *Expander) fallback(topic string, cause error) []string {
	if cause != nil {
		e.logger.Warn().Err(cause).Msg("query expansion failed, using templated queries")
	}
	out := Fallback(topic)
	e.metrics.RecordQueryExpansion(outcomeFallback, len(out))
	return out
}

type expansionResponse struct {
	Queries []string `json:"queries"`
}

var errNoQueries = errors.New("expander: model returned no queries")

func (e *Expander) ask(ctx context.Context, topic string) ([]string, error) {
	start := time.Now()
	resp, err := e.completer.Complete(ctx, llm.Request{
		System:          buildSystemPrompt(),
		User:            buildUserPrompt(topic),
		JSON:            true,
		MaxOutputTokens: maxOutputTokens,
	})
	if err != nil {
		e.metrics.RecordLLMRequestFailed(operation, e.completer.Model(), llm.ErrorClass(err))
		return nil, err
	}
	e.metrics.RecordLLMRequest(operation, resp.Model, time.Since(start).Seconds(), resp.InputTokens, resp.OutputTokens)

	var parsed expansionResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(resp.Text)), &parsed); err != nil {
		return nil, err
	}

	queries := Normalize(parsed.Queries)
	if len(queries) == 0 {
		return nil, errNoQueries
	}
	return queries, nil
}

// Normalize trims queries, drops blanks and case-insensitive duplicates, and
// caps the result at MaxQueries. Order is preserved.
func Normalize(queries []string) []string {
	seen := make(map[string]struct{}, len(queries))
	out := make([]string, 0, len(queries))
	for _, q := range queries {
		q = strings.Join(strings.Fields(q), " ")
		if q == "" {
			continue
		}
		key := strings.ToLower(q)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, q)
		if len(out) == MaxQueries {
			break
		}
	}
	return out
}

func buildSystemPrompt() string {
	var sb strings.Builder

	sb.WriteString("You help students search scholarly databases such as OpenAlex and Crossref. ")
	sb.WriteString("Turn the student's topic into concrete search strings.\n\n")

	sb.WriteString("You MUST respond with valid JSON in exactly this format:\n")
	sb.WriteString(`{"queries": ["query one", "query two"]}`)
	sb.WriteString("\n\n")

	sb.WriteString("Guidelines:\n")
	sb.WriteString("1. Return between 3 and 8 queries.\n")
	sb.WriteString("2. Keep each query short: 2 to 8 words, no quotes or boolean operators.\n")
	sb.WriteString("3. Cover distinct angles: key actors, periods, places, and scholarly debates.\n")
	sb.WriteString("4. Use the vocabulary historians and researchers use in titles.\n")
	sb.WriteString("5. Never write prose, summaries, or essay text.\n")

	return sb.String()
}

func buildUserPrompt(topic string) string {
	var sb strings.Builder
	sb.WriteString("Topic:\n")
	sb.WriteString(strings.TrimSpace(topic))
	return sb.String()
}
