// Package llm provides chat-completion backends for the research assistant.
//
// A Completer sends one system/user instruction pair to a hosted model and
// returns the raw text of its answer. Callers own prompt construction and
// output decoding; this package only moves bytes and classifies failures.
// Three backends are available: OpenAI (Responses API), Anthropic (Messages
// API), and Google Gemini (via google.golang.org/genai). Each can enable the
// vendor's hosted web search tool.
//
// Example usage:
//
//	c, err := llm.NewCompleter(ctx, llm.FactoryConfig{Provider: "openai", OpenAI: llm.OpenAIConfig{APIKey: key}})
//	resp, err := c.Complete(ctx, llm.Request{
//		System:    "Return JSON only.",
//		User:      "Topic: the Napoleonic Code",
//		WebSearch: true,
//		Schema:    &llm.JSONSchema{Name: "research_result", Schema: schema},
//	})
package llm

import (
	"context"
)

// Completer produces a single model answer for a prompt pair.
type Completer interface {
	// Complete sends the request and returns the model's text output.
	// No retries are attempted.
	Complete(ctx context.Context, req Request) (*Response, error)

	// Provider returns the backend name ("openai", "anthropic", "gemini").
	Provider() string

	// Model returns the model identifier in use.
	Model() string
}

// Request is one completion call.
type Request struct {
	// System is the system instruction.
	System string

	// User is the user turn.
	User string

	// WebSearch enables the provider's hosted web search tool.
	WebSearch bool

	// Schema, when set, asks the backend to constrain output to this JSON
	// schema. Backends without native schema support fall back to JSON mode
	// or prompt instructions.
	Schema *JSONSchema

	// JSON requests a bare JSON object without a schema.
	JSON bool

	// MaxOutputTokens caps the answer length. Zero uses the backend default.
	MaxOutputTokens int
}

// JSONSchema names a JSON schema document for structured output.
type JSONSchema struct {
	// Name is the schema identifier sent to the provider.
	Name string

	// Schema is the JSON schema document.
	Schema map[string]any

	// Strict enables exact schema adherence where the provider supports it.
	Strict bool
}

// Response is the outcome of a completion call.
type Response struct {
	// Text is the concatenated text output.
	Text string

	// Model is the model that produced the answer.
	Model string

	// InputTokens is the number of prompt tokens reported by the provider.
	InputTokens int

	// OutputTokens is the number of completion tokens reported by the provider.
	OutputTokens int
}
