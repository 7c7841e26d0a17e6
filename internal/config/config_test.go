package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/research-assistant-service/internal/domain"
)

func TestLoad_Defaults(t *testing.T) {
	// Clear any existing env vars that might interfere
	clearEnvVars(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Server defaults
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 9091, cfg.Server.MetricsPort)
	assert.Equal(t, 90*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)

	// Logging defaults
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	// Metrics defaults
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "research_assistant", cfg.Metrics.Namespace)

	// Research defaults
	assert.Equal(t, domain.ModeLLM, cfg.Research.ResearchMode())
	assert.Equal(t, 10, cfg.Research.ResultsPerQuery)
	assert.True(t, cfg.Research.ExpandQueries)
	assert.Empty(t, cfg.Research.AllowedHosts)

	// LLM defaults
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 0.2, cfg.LLM.Temperature)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.OpenAI.Model)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Gemini.Model)

	// Paper sources defaults
	assert.True(t, cfg.PaperSources.OpenAlex.Enabled)
	assert.True(t, cfg.PaperSources.Crossref.Enabled)
	assert.True(t, cfg.PaperSources.Unpaywall.Enabled)
	assert.Equal(t, "https://api.crossref.org", cfg.PaperSources.Crossref.BaseURL)
	assert.Equal(t, 5.0, cfg.PaperSources.Unpaywall.RateLimit)
	assert.False(t, cfg.PaperSources.SemanticScholar.Enabled)
	assert.Equal(t, 1.0, cfg.PaperSources.SemanticScholar.RateLimit)
}

func TestLoad_MissingAPIKeyIsNotAnError(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("RESEARCH_LLM_PROVIDER", "gemini")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "", cfg.LLM.APIKey())
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("RESEARCH_SERVER_HTTP_PORT", "8888")
	t.Setenv("RESEARCH_SERVER_REQUEST_TIMEOUT", "15s")
	t.Setenv("RESEARCH_LOGGING_LEVEL", "debug")
	t.Setenv("RESEARCH_RESEARCH_MODE", "metadata")
	t.Setenv("RESEARCH_RESEARCH_ALLOWED_HOSTS", "arxiv.org,.edu")
	t.Setenv("RESEARCH_LLM_PROVIDER", "anthropic")
	t.Setenv("RESEARCH_LLM_ANTHROPIC_API_KEY", "sk-ant-override")
	t.Setenv("RESEARCH_PAPER_SOURCES_EMAIL", "ops@example.edu")
	t.Setenv("RESEARCH_PAPER_SOURCES_UNPAYWALL_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8888, cfg.Server.HTTPPort)
	assert.Equal(t, 15*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, domain.ModeMetadata, cfg.Research.ResearchMode())
	assert.Equal(t, []string{"arxiv.org", ".edu"}, cfg.Research.AllowedHosts)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "sk-ant-override", cfg.LLM.APIKey())
	assert.Equal(t, "ops@example.edu", cfg.PaperSources.Email)
	assert.False(t, cfg.PaperSources.Unpaywall.Enabled)
}

func TestLoad_APIKeysFromEnvOnly(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("RESEARCH_LLM_OPENAI_API_KEY", "sk-openai-test")
	t.Setenv("RESEARCH_LLM_ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("RESEARCH_LLM_GEMINI_API_KEY", "gemini-key-test")
	t.Setenv("RESEARCH_PAPER_SOURCES_SEMANTIC_SCHOLAR_API_KEY", "s2-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "s2-test", cfg.PaperSources.SemanticScholar.APIKey)

	assert.Equal(t, "sk-openai-test", cfg.LLM.OpenAI.APIKey)
	assert.Equal(t, "sk-ant-test", cfg.LLM.Anthropic.APIKey)
	assert.Equal(t, "gemini-key-test", cfg.LLM.Gemini.APIKey)
}

func TestLoad_InvalidMode(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("RESEARCH_RESEARCH_MODE", "hybrid")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid research mode")
}

func TestValidate_InvalidPort(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:    "zero HTTP port",
			modify:  func(c *Config) { c.Server.HTTPPort = 0 },
			wantErr: "invalid HTTP port",
		},
		{
			name:    "HTTP port too high",
			modify:  func(c *Config) { c.Server.HTTPPort = 70000 },
			wantErr: "invalid HTTP port",
		},
		{
			name:    "negative metrics port",
			modify:  func(c *Config) { c.Server.MetricsPort = -1 },
			wantErr: "invalid metrics port",
		},
		{
			name:    "metrics port equals HTTP port",
			modify:  func(c *Config) { c.Server.MetricsPort = c.Server.HTTPPort },
			wantErr: "metrics port must differ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_LogLevel(t *testing.T) {
	validLevels := []string{"trace", "debug", "info", "warn", "error", "fatal", "panic", "INFO"}
	for _, level := range validLevels {
		t.Run("valid_"+level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logging.Level = level
			assert.NoError(t, cfg.Validate())
		})
	}

	cfg := validConfig()
	cfg.Logging.Level = "verbose"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestValidate_Research(t *testing.T) {
	t.Run("unknown mode", func(t *testing.T) {
		cfg := validConfig()
		cfg.Research.Mode = "both"
		assert.ErrorContains(t, cfg.Validate(), "invalid research mode")
	})

	t.Run("mode is case-insensitive", func(t *testing.T) {
		cfg := validConfig()
		cfg.Research.Mode = " Metadata "
		assert.NoError(t, cfg.Validate())
		assert.Equal(t, domain.ModeMetadata, cfg.Research.ResearchMode())
	})

	t.Run("results per query", func(t *testing.T) {
		cfg := validConfig()
		cfg.Research.ResultsPerQuery = 0
		assert.ErrorContains(t, cfg.Validate(), "results_per_query")
	})

	t.Run("metadata mode without sources", func(t *testing.T) {
		cfg := validConfig()
		cfg.Research.Mode = "metadata"
		cfg.PaperSources.OpenAlex.Enabled = false
		cfg.PaperSources.Crossref.Enabled = false
		cfg.PaperSources.Unpaywall.Enabled = false
		assert.ErrorContains(t, cfg.Validate(), "at least one enabled paper source")

		cfg.PaperSources.SemanticScholar.Enabled = true
		assert.NoError(t, cfg.Validate())
	})

	t.Run("llm mode without sources", func(t *testing.T) {
		cfg := validConfig()
		cfg.PaperSources = PaperSourcesConfig{}
		assert.NoError(t, cfg.Validate())
	})
}

func TestValidate_LLMConfig(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Provider = "bedrock"
	assert.ErrorContains(t, cfg.Validate(), "unsupported LLM provider")

	cfg = validConfig()
	cfg.LLM.Temperature = 3
	assert.ErrorContains(t, cfg.Validate(), "temperature")
}

func TestLLMConfig_APIKey(t *testing.T) {
	c := LLMConfig{
		OpenAI:    OpenAIConfig{APIKey: "o"},
		Anthropic: AnthropicConfig{APIKey: "a"},
		Gemini:    GeminiConfig{APIKey: "g"},
	}

	for provider, want := range map[string]string{"openai": "o", "Anthropic": "a", "gemini": "g", "azure": ""} {
		c.Provider = provider
		assert.Equal(t, want, c.APIKey(), provider)
	}
}

func TestPaperSourceConfig_ContactEmail(t *testing.T) {
	assert.Equal(t, "shared@example.edu", PaperSourceConfig{}.ContactEmail(" shared@example.edu "))
	assert.Equal(t, "own@example.edu", PaperSourceConfig{Email: "own@example.edu"}.ContactEmail("shared@example.edu"))
	assert.Equal(t, "", PaperSourceConfig{}.ContactEmail(""))
}

func TestServerConfig_Addresses(t *testing.T) {
	cfg := ServerConfig{Host: "localhost", HTTPPort: 8080, MetricsPort: 9091}
	assert.Equal(t, "localhost:8080", cfg.HTTPAddress())
	assert.Equal(t, "localhost:9091", cfg.MetricsAddress())
}

// clearEnvVars removes all RESEARCH_ prefixed environment variables for the
// duration of the test.
func clearEnvVars(t *testing.T) {
	t.Helper()
	for _, env := range os.Environ() {
		key, _, _ := strings.Cut(env, "=")
		if strings.HasPrefix(key, EnvPrefix+"_") {
			t.Setenv(key, "")
			require.NoError(t, os.Unsetenv(key))
		}
	}
}

// validConfig returns a valid configuration for testing
func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			HTTPPort:    8080,
			MetricsPort: 9091,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{Enabled: true},
		Research: ResearchConfig{
			Mode:            "llm",
			ResultsPerQuery: 10,
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Temperature: 0.2,
		},
		PaperSources: PaperSourcesConfig{
			OpenAlex: PaperSourceConfig{Enabled: true},
		},
	}
}
