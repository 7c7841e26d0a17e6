// Package websearch asks a web-search-enabled LLM for themed, direct-PDF
// academic sources and decodes its answer under a strict schema.
//
// The provider only talks to the model and validates the shape of what comes
// back. Host and PDF filtering, truncation, and envelope construction happen
// downstream.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/helixir/research-assistant-service/internal/domain"
	"github.com/helixir/research-assistant-service/internal/llm"
	"github.com/helixir/research-assistant-service/internal/observability"
)

// operation labels LLM metrics for this provider.
const operation = "web_search"

// Result is a validated allow answer from the model, before policy filtering.
type Result struct {
	Overview              string
	InterpretationBullets []string
	TopPlaces             []domain.TopPlace
	Themes                []domain.ThemeGroup
	NextSteps             []string
}

// Provider produces themed sources through an llm.Completer with web search.
type Provider struct {
	completer llm.Completer
	validate  *validator.Validate
	logger    zerolog.Logger
	metrics   *observability.Metrics
}

// New creates a Provider. metrics may be nil.
func New(completer llm.Completer, logger zerolog.Logger, metrics *observability.Metrics) *Provider {
	return &Provider{
		completer: completer,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    observability.WithComponent(logger, "websearch"),
		metrics:   metrics,
	}
}

// Name returns the backend name of the underlying completer.
func (p *Provider) Name() string {
	return p.completer.Provider()
}

// Search runs one model call for userContext at the given depth.
//
// Errors:
//   - *domain.ProviderError when the model call fails
//   - *domain.SchemaViolationError when the answer cannot be decoded or validated
//   - *domain.PolicyRefusalError when the model itself refuses
func (p *Provider) Search(ctx context.Context, userContext string, depth domain.Depth) (*Result, error) {
	req := llm.Request{
		System:    BuildSystemPrompt(depth),
		User:      BuildUserPrompt(userContext),
		WebSearch: true,
		Schema:    resultSchema(),
	}

	start := time.Now()
	resp, err := p.completer.Complete(ctx, req)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		p.metrics.RecordLLMRequestFailed(operation, p.completer.Model(), llm.ErrorClass(err))
		p.logger.Warn().Err(err).
			Str("model", p.completer.Model()).
			Float64("duration_s", elapsed).
			Msg("web search completion failed")
		if errors.Is(err, llm.ErrEmptyOutput) {
			return nil, domain.NewSchemaViolationError("empty model output")
		}
		return nil, domain.NewProviderError(p.completer.Provider(), err)
	}
	p.metrics.RecordLLMRequest(operation, resp.Model, elapsed, resp.InputTokens, resp.OutputTokens)

	result, err := p.decode(resp.Text)
	if err != nil {
		p.logger.Warn().Err(err).Str("model", resp.Model).Msg("model output rejected")
		return nil, err
	}

	p.logger.Debug().
		Str("model", resp.Model).
		Int("themes", len(result.Themes)).
		Int("input_tokens", resp.InputTokens).
		Int("output_tokens", resp.OutputTokens).
		Msg("web search completed")
	return result, nil
}

type wireResult struct {
	Decision              string      `json:"decision"`
	RefusalReason         string      `json:"refusalReason"`
	Overview              string      `json:"overview"`
	InterpretationBullets []string    `json:"interpretationBullets"`
	TopPlaces             []wirePlace `json:"topPlaces" validate:"omitempty,len=5,dive"`
	Themes                []wireTheme `json:"themes" validate:"dive"`
	NextSteps             []string    `json:"nextSteps"`
}

type wirePlace struct {
	Name string `json:"name" validate:"required"`
	URL  string `json:"url" validate:"required"`
	Why  string `json:"why"`
}

type wireTheme struct {
	Theme               string       `json:"theme" validate:"required"`
	WhyThisThemeMatters string       `json:"whyThisThemeMatters"`
	Sources             []wireSource `json:"sources" validate:"dive"`
}

type wireSource struct {
	Title              string   `json:"title" validate:"required"`
	URL                string   `json:"url" validate:"required"`
	Host               string   `json:"host"`
	Year               *float64 `json:"year"`
	Authors            []string `json:"authors"`
	WhyRelevantBullets []string `json:"whyRelevantBullets"`
}

// decode parses and validates model output. A refuse decision is returned as
// a PolicyRefusalError carrying the model's reason.
func (p *Provider) decode(text string) (*Result, error) {
	raw, ok := extractJSON(text)
	if !ok {
		return nil, domain.NewSchemaViolationError("no JSON object in model output")
	}

	var w wireResult
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&w); err != nil {
		return nil, domain.NewSchemaViolationError(err.Error())
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, domain.NewSchemaViolationError("trailing data after JSON object")
	}

	switch domain.Decision(w.Decision) {
	case domain.DecisionRefuse:
		return nil, domain.NewPolicyRefusalError(strings.TrimSpace(w.RefusalReason))
	case domain.DecisionAllow:
	default:
		return nil, domain.NewSchemaViolationError(fmt.Sprintf("unknown decision %q", w.Decision))
	}

	if err := p.validate.Struct(w); err != nil {
		return nil, domain.NewSchemaViolationError(err.Error())
	}

	return w.toResult(), nil
}

func (w wireResult) toResult() *Result {
	out := &Result{
		Overview:              strings.TrimSpace(w.Overview),
		InterpretationBullets: nonNil(w.InterpretationBullets),
		NextSteps:             nonNil(w.NextSteps),
	}
	for _, tp := range w.TopPlaces {
		out.TopPlaces = append(out.TopPlaces, domain.TopPlace{Name: tp.Name, URL: tp.URL, Why: tp.Why})
	}
	for _, t := range w.Themes {
		group := domain.ThemeGroup{
			Theme:               t.Theme,
			WhyThisThemeMatters: t.WhyThisThemeMatters,
			Sources:             make([]domain.ThemeSource, 0, len(t.Sources)),
		}
		for _, s := range t.Sources {
			src := domain.ThemeSource{
				Title:              s.Title,
				URL:                strings.TrimSpace(s.URL),
				Host:               s.Host,
				Authors:            s.Authors,
				WhyRelevantBullets: nonNil(s.WhyRelevantBullets),
			}
			if s.Year != nil && *s.Year > 0 {
				src.Year = int(math.Round(*s.Year))
			}
			group.Sources = append(group.Sources, src)
		}
		out.Themes = append(out.Themes, group)
	}
	return out
}

// extractJSON returns the JSON object in text. Models without native
// structured output sometimes wrap it in a code fence or prose.
func extractJSON(text string) ([]byte, bool) {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		return []byte(s), true
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	return []byte(s[start : end+1]), true
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
