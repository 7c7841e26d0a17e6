package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Default values for the OpenAI provider.
const (
	defaultOpenAIBaseURL   = "https://api.openai.com/v1"
	defaultOpenAIModel     = "gpt-4o-mini"
	defaultOpenAIMaxTokens = 1600
	openAIWebSearchTool    = "web_search_preview"
)

// responsesRequest is the OpenAI Responses API request body.
type responsesRequest struct {
	Model           string          `json:"model"`
	Input           []inputMessage  `json:"input"`
	Tools           []responsesTool `json:"tools,omitempty"`
	Temperature     float64         `json:"temperature"`
	MaxOutputTokens int             `json:"max_output_tokens,omitempty"`
	Text            *textConfig     `json:"text,omitempty"`
}

// inputMessage represents a single input message.
type inputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// responsesTool enables a hosted tool.
type responsesTool struct {
	Type string `json:"type"`
}

// textConfig specifies the output format.
type textConfig struct {
	Format textFormat `json:"format"`
}

// textFormat is either {"type":"json_object"} or a named json_schema.
type textFormat struct {
	Type   string         `json:"type"`
	Name   string         `json:"name,omitempty"`
	Schema map[string]any `json:"schema,omitempty"`
	Strict bool           `json:"strict,omitempty"`
}

// responsesResponse is the subset of the Responses API body this client reads.
type responsesResponse struct {
	ID         string           `json:"id"`
	Model      string           `json:"model"`
	Status     string           `json:"status"`
	OutputText string           `json:"output_text"`
	Output     []responseOutput `json:"output"`
	Usage      responsesUsage   `json:"usage"`
}

// responseOutput is one item of the output array. Tool calls appear as items
// with no message content.
type responseOutput struct {
	Type    string            `json:"type"`
	Role    string            `json:"role"`
	Content []responseContent `json:"content"`
}

// responseContent is one content part of a message output item.
type responseContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// responsesUsage contains token usage information.
type responsesUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// openAIErrorResponse represents an error response from the OpenAI API.
type openAIErrorResponse struct {
	Error openAIErrorDetail `json:"error"`
}

// openAIErrorDetail contains error details from the OpenAI API.
type openAIErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// OpenAIProvider implements Completer using the OpenAI Responses API.
type OpenAIProvider struct {
	httpClient  *http.Client
	apiKey      string
	model       string
	baseURL     string
	temperature float64
}

var _ Completer = (*OpenAIProvider)(nil)

// OpenAIConfig holds the parameters needed to create an OpenAI provider.
// This is defined in the llm package to avoid importing the config package.
type OpenAIConfig struct {
	// APIKey is the OpenAI API key.
	APIKey string
	// Model is the model identifier (e.g., "gpt-4o-mini").
	Model string
	// BaseURL is the API base URL (empty means default).
	BaseURL string
}

// NewOpenAIProvider creates a new OpenAI completer.
func NewOpenAIProvider(cfg OpenAIConfig, temperature float64, timeout time.Duration) *OpenAIProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &OpenAIProvider{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		apiKey:      cfg.APIKey,
		model:       model,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		temperature: temperature,
	}
}

// Provider returns the name of the LLM provider.
func (p *OpenAIProvider) Provider() string {
	return "openai"
}

// Model returns the model identifier being used.
func (p *OpenAIProvider) Model() string {
	return p.model
}

// Complete sends req to the Responses endpoint.
func (p *OpenAIProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(p.buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("openai: failed to marshal request: %w", err)
	}

	endpoint := p.baseURL + "/responses"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai: failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("openai: failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseOpenAIAPIError(resp.StatusCode, respBody)
	}

	var rr responsesResponse
	if err := json.Unmarshal(respBody, &rr); err != nil {
		return nil, fmt.Errorf("openai: failed to unmarshal response: %w", err)
	}

	text := strings.TrimSpace(rr.text())
	if text == "" {
		return nil, fmt.Errorf("openai: %w", ErrEmptyOutput)
	}

	model := rr.Model
	if model == "" {
		model = p.model
	}

	return &Response{
		Text:         text,
		Model:        model,
		InputTokens:  rr.Usage.InputTokens,
		OutputTokens: rr.Usage.OutputTokens,
	}, nil
}

func (p *OpenAIProvider) buildRequest(req Request) responsesRequest {
	maxTokens := req.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = defaultOpenAIMaxTokens
	}

	rr := responsesRequest{
		Model: p.model,
		Input: []inputMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature:     p.temperature,
		MaxOutputTokens: maxTokens,
	}

	if req.WebSearch {
		rr.Tools = []responsesTool{{Type: openAIWebSearchTool}}
	}

	switch {
	case req.Schema != nil:
		rr.Text = &textConfig{Format: textFormat{
			Type:   "json_schema",
			Name:   req.Schema.Name,
			Schema: req.Schema.Schema,
			Strict: req.Schema.Strict,
		}}
	case req.JSON:
		rr.Text = &textConfig{Format: textFormat{Type: "json_object"}}
	}

	return rr
}

// text prefers the aggregated output_text field and otherwise joins every
// output_text part of every message item.
func (r *responsesResponse) text() string {
	if r.OutputText != "" {
		return r.OutputText
	}
	var b strings.Builder
	for _, item := range r.Output {
		if item.Type != "message" {
			continue
		}
		for _, c := range item.Content {
			if c.Type == "output_text" {
				b.WriteString(c.Text)
			}
		}
	}
	return b.String()
}

// parseOpenAIAPIError parses an OpenAI API error from the response status code and body.
func parseOpenAIAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		Provider:   "openai",
		StatusCode: statusCode,
		Message:    string(body),
	}

	var errResp openAIErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		apiErr.Message = errResp.Error.Message
		apiErr.Type = errResp.Error.Type
		apiErr.Code = errResp.Error.Code
	}

	return apiErr
}
