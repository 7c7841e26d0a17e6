package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiConfig holds the parameters needed to create a Gemini provider.
type GeminiConfig struct {
	// APIKey is the Gemini API key.
	APIKey string
	// Model is the model identifier (e.g., "gemini-2.5-flash").
	Model string
	// BaseURL overrides the API endpoint. Used by tests.
	BaseURL string
}

// GeminiProvider implements Completer using the Gemini API.
type GeminiProvider struct {
	client      *genai.Client
	model       string
	temperature float32
}

var _ Completer = (*GeminiProvider)(nil)

// NewGeminiProvider creates a Gemini completer.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig, temperature float64) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}

	return &GeminiProvider{
		client:      client,
		model:       model,
		temperature: float32(temperature),
	}, nil
}

// Provider returns the provider name.
func (p *GeminiProvider) Provider() string {
	return "gemini"
}

// Model returns the model identifier being used.
func (p *GeminiProvider) Model() string {
	return p.model
}

// Complete calls GenerateContent. Google Search grounding cannot be combined
// with a JSON response MIME type, so with WebSearch the schema travels in the
// system instruction instead.
func (p *GeminiProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	system := req.System
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(p.temperature),
	}
	if req.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxOutputTokens)
	}

	if req.WebSearch {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
		if req.Schema != nil {
			schema, _ := json.Marshal(req.Schema.Schema)
			system += "\n\nRespond with a single JSON object and nothing else. It must validate against this JSON schema:\n" + string(schema)
		} else if req.JSON {
			system += "\n\nRespond with a single JSON object and nothing else."
		}
	} else if req.Schema != nil || req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(req.User, genai.RoleUser),
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, contents, cfg)
	if err != nil {
		return nil, toAPIError(err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return nil, fmt.Errorf("gemini: %w", ErrEmptyOutput)
	}

	out := &Response{Text: text, Model: p.model}
	if result.ModelVersion != "" {
		out.Model = result.ModelVersion
	}
	if u := result.UsageMetadata; u != nil {
		out.InputTokens = int(u.PromptTokenCount)
		out.OutputTokens = int(u.CandidatesTokenCount)
	}
	return out, nil
}

// toAPIError maps genai errors onto *APIError so callers classify every
// backend the same way.
func toAPIError(err error) error {
	var valErr genai.APIError
	if errors.As(err, &valErr) {
		return &APIError{Provider: "gemini", StatusCode: valErr.Code, Message: valErr.Message, Type: valErr.Status}
	}
	var ptrErr *genai.APIError
	if errors.As(err, &ptrErr) && ptrErr != nil {
		return &APIError{Provider: "gemini", StatusCode: ptrErr.Code, Message: ptrErr.Message, Type: ptrErr.Status}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("gemini: %w", err)
	}
	return &APIError{Provider: "gemini", Message: err.Error(), Type: "network_error"}
}
