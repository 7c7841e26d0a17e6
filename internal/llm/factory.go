package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/helixir/research-assistant-service/internal/domain"
)

// FactoryConfig holds the parameters needed to create a Completer.
// This is defined in the llm package to avoid importing the config package,
// keeping the llm package free of infrastructure dependencies.
type FactoryConfig struct {
	// Provider is the LLM provider name ("openai", "anthropic", or "gemini").
	Provider string
	// Temperature is the LLM temperature setting.
	Temperature float64
	// Timeout is the timeout for LLM API calls.
	Timeout time.Duration
	// OpenAI contains OpenAI-specific settings.
	OpenAI OpenAIConfig
	// Anthropic contains Anthropic-specific settings.
	Anthropic AnthropicConfig
	// Gemini contains Gemini-specific settings.
	Gemini GeminiConfig
}

// NewCompleter creates a Completer based on the configuration. A missing API
// key yields a *domain.ConfigurationError naming the environment variable, so
// the caller can keep serving and report the problem per request.
func NewCompleter(ctx context.Context, cfg FactoryConfig) (Completer, error) {
	switch cfg.Provider {
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, domain.NewConfigurationError("RESEARCH_LLM_OPENAI_API_KEY", "Server missing RESEARCH_LLM_OPENAI_API_KEY.")
		}
		return NewOpenAIProvider(cfg.OpenAI, cfg.Temperature, cfg.Timeout), nil
	case "anthropic":
		if cfg.Anthropic.APIKey == "" {
			return nil, domain.NewConfigurationError("RESEARCH_LLM_ANTHROPIC_API_KEY", "Server missing RESEARCH_LLM_ANTHROPIC_API_KEY.")
		}
		return NewAnthropicProvider(cfg.Anthropic, cfg.Temperature, cfg.Timeout), nil
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, domain.NewConfigurationError("RESEARCH_LLM_GEMINI_API_KEY", "Server missing RESEARCH_LLM_GEMINI_API_KEY.")
		}
		g, err := NewGeminiProvider(ctx, cfg.Gemini, cfg.Temperature)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", cfg.Provider)
	}
}
