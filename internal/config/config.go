// Package config provides configuration management for the research assistant service.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/helixir/research-assistant-service/internal/domain"
)

// EnvPrefix is the prefix for every environment variable read by Load.
const EnvPrefix = "RESEARCH"

// Config holds all configuration for the research assistant service.
// It is built once at start and treated as read-only afterwards.
type Config struct {
	// Server contains HTTP server settings.
	Server ServerConfig `mapstructure:"server"`
	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
	// Metrics contains Prometheus metrics exposure settings.
	Metrics MetricsConfig `mapstructure:"metrics"`
	// Research contains pipeline settings.
	Research ResearchConfig `mapstructure:"research"`
	// LLM contains LLM client settings for web search and query expansion.
	LLM LLMConfig `mapstructure:"llm"`
	// PaperSources contains bibliographic API configurations.
	PaperSources PaperSourcesConfig `mapstructure:"paper_sources"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	// Host is the address to bind the server to (default: 0.0.0.0).
	Host string `mapstructure:"host"`
	// HTTPPort is the HTTP server port (default: 8080).
	HTTPPort int `mapstructure:"http_port"`
	// MetricsPort is the metrics server port (default: 9091).
	MetricsPort int `mapstructure:"metrics_port"`
	// ReadTimeout is the maximum duration for reading request body.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the maximum duration for writing response.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// RequestTimeout is the deadline imposed on each research or planner request.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// MaxBodyBytes caps request body size.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (trace, debug, info, warn, error, fatal, panic).
	Level string `mapstructure:"level"`
	// Format is the log format (json, console).
	Format string `mapstructure:"format"`
	// Output is the log output destination (stdout, stderr).
	Output string `mapstructure:"output"`
	// AddSource adds source file and line to log output.
	AddSource bool `mapstructure:"add_source"`
	// TimeFormat is the timestamp format.
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Enabled enables metrics collection and exposure.
	Enabled bool `mapstructure:"enabled"`
	// Path is the HTTP path for metrics endpoint.
	Path string `mapstructure:"path"`
	// Namespace prefixes every metric name.
	Namespace string `mapstructure:"namespace"`
}

// ResearchConfig holds pipeline settings.
type ResearchConfig struct {
	// Mode selects the response shape: "metadata" or "llm".
	Mode string `mapstructure:"mode"`
	// ResultsPerQuery is the limit passed to each provider search.
	ResultsPerQuery int `mapstructure:"results_per_query"`
	// ExpandQueries asks the LLM for search queries in metadata mode.
	ExpandQueries bool `mapstructure:"expand_queries"`
	// AllowedHosts overrides the source host allow-list in llm mode.
	AllowedHosts []string `mapstructure:"allowed_hosts"`
}

// LLMConfig holds LLM client configuration.
type LLMConfig struct {
	// Provider is the LLM provider (openai, anthropic, gemini).
	Provider string `mapstructure:"provider"`
	// Timeout is the timeout for LLM API calls.
	Timeout time.Duration `mapstructure:"timeout"`
	// Temperature is the LLM temperature setting.
	Temperature float64 `mapstructure:"temperature"`
	// OpenAI contains OpenAI-specific settings.
	OpenAI OpenAIConfig `mapstructure:"openai"`
	// Anthropic contains Anthropic-specific settings.
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	// Gemini contains Google Gemini-specific settings.
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// OpenAIConfig holds OpenAI-specific settings.
type OpenAIConfig struct {
	// APIKey is the OpenAI API key (loaded from RESEARCH_LLM_OPENAI_API_KEY env var).
	APIKey string `mapstructure:"-"`
	// Model is the OpenAI model to use.
	Model string `mapstructure:"model"`
	// BaseURL is the OpenAI API base URL (for custom endpoints).
	BaseURL string `mapstructure:"base_url"`
}

// AnthropicConfig holds Anthropic-specific settings.
type AnthropicConfig struct {
	// APIKey is the Anthropic API key (loaded from RESEARCH_LLM_ANTHROPIC_API_KEY env var).
	APIKey string `mapstructure:"-"`
	// Model is the Anthropic model to use.
	Model string `mapstructure:"model"`
	// BaseURL is the Anthropic API base URL (for custom endpoints).
	BaseURL string `mapstructure:"base_url"`
}

// GeminiConfig holds Google Gemini-specific settings.
type GeminiConfig struct {
	// APIKey is the Gemini API key (loaded from RESEARCH_LLM_GEMINI_API_KEY env var).
	APIKey string `mapstructure:"-"`
	// Model is the Gemini model name.
	Model string `mapstructure:"model"`
	// BaseURL overrides the Gemini API endpoint.
	BaseURL string `mapstructure:"base_url"`
}

// PaperSourcesConfig holds configuration for all bibliographic APIs.
type PaperSourcesConfig struct {
	// Email is the contact address sent to providers with a polite pool.
	Email string `mapstructure:"email"`
	// OpenAlex contains OpenAlex API settings.
	OpenAlex PaperSourceConfig `mapstructure:"openalex"`
	// Crossref contains Crossref API settings.
	Crossref PaperSourceConfig `mapstructure:"crossref"`
	// Unpaywall contains Unpaywall API settings.
	Unpaywall PaperSourceConfig `mapstructure:"unpaywall"`
	// SemanticScholar contains Semantic Scholar API settings. Disabled by default.
	SemanticScholar PaperSourceConfig `mapstructure:"semantic_scholar"`
}

// PaperSourceConfig holds configuration for a single bibliographic API.
type PaperSourceConfig struct {
	// Enabled controls whether this source is used.
	Enabled bool `mapstructure:"enabled"`
	// BaseURL is the API base URL.
	BaseURL string `mapstructure:"base_url"`
	// Email overrides PaperSourcesConfig.Email for this source.
	Email string `mapstructure:"email"`
	// Timeout is the timeout for API calls.
	Timeout time.Duration `mapstructure:"timeout"`
	// RateLimit is the maximum requests per second.
	RateLimit float64 `mapstructure:"rate_limit"`
	// BurstSize is the maximum burst of requests.
	BurstSize int `mapstructure:"burst_size"`
	// APIKey is loaded from the environment only, for sources that accept one.
	APIKey string `mapstructure:"-"`
}

func (c PaperSourcesConfig) anyEnabled() bool {
	return c.OpenAlex.Enabled || c.Crossref.Enabled || c.Unpaywall.Enabled || c.SemanticScholar.Enabled
}

// ContactEmail returns the source email, falling back to shared.
func (c PaperSourceConfig) ContactEmail(shared string) string {
	if e := strings.TrimSpace(c.Email); e != "" {
		return e
	}
	return strings.TrimSpace(shared)
}

// HTTPAddress returns the HTTP server address.
func (c *ServerConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// MetricsAddress returns the metrics server address.
func (c *ServerConfig) MetricsAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.MetricsPort)
}

// ResearchMode returns the configured mode, normalized.
func (c *ResearchConfig) ResearchMode() domain.Mode {
	return domain.Mode(strings.ToLower(strings.TrimSpace(c.Mode)))
}

// APIKey returns the key of the selected LLM provider, or "" if unset.
func (c *LLMConfig) APIKey() string {
	switch strings.ToLower(c.Provider) {
	case "openai":
		return c.OpenAI.APIKey
	case "anthropic":
		return c.Anthropic.APIKey
	case "gemini":
		return c.Gemini.APIKey
	default:
		return ""
	}
}

// Load loads configuration from environment variables and config files.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if present
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/research-assistant-service")

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use env vars and defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Load secrets exclusively from environment variables.
	// These fields use mapstructure:"-" to prevent loading from config files.
	loadSecrets(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadSecrets populates secret fields exclusively from environment variables.
func loadSecrets(cfg *Config) {
	cfg.LLM.OpenAI.APIKey = os.Getenv(EnvPrefix + "_LLM_OPENAI_API_KEY")
	cfg.LLM.Anthropic.APIKey = os.Getenv(EnvPrefix + "_LLM_ANTHROPIC_API_KEY")
	cfg.LLM.Gemini.APIKey = os.Getenv(EnvPrefix + "_LLM_GEMINI_API_KEY")
	cfg.PaperSources.SemanticScholar.APIKey = os.Getenv(EnvPrefix + "_PAPER_SOURCES_SEMANTIC_SCHOLAR_API_KEY")
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.metrics_port", 9091)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.request_timeout", "90s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.max_body_bytes", 1<<20)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "research_assistant")

	// Research defaults
	v.SetDefault("research.mode", string(domain.ModeLLM))
	v.SetDefault("research.results_per_query", 10)
	v.SetDefault("research.expand_queries", true)
	v.SetDefault("research.allowed_hosts", []string{})

	// LLM defaults
	// API keys are loaded exclusively from environment variables (see loadSecrets).
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.openai.model", "gpt-4o-mini")
	v.SetDefault("llm.openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.anthropic.model", "claude-3-5-haiku-latest")
	v.SetDefault("llm.anthropic.base_url", "https://api.anthropic.com")
	v.SetDefault("llm.gemini.model", "gemini-2.5-flash")
	v.SetDefault("llm.gemini.base_url", "")

	// Paper sources defaults
	v.SetDefault("paper_sources.email", "")

	v.SetDefault("paper_sources.openalex.enabled", true)
	v.SetDefault("paper_sources.openalex.base_url", "https://api.openalex.org")
	v.SetDefault("paper_sources.openalex.email", "")
	v.SetDefault("paper_sources.openalex.timeout", "30s")
	v.SetDefault("paper_sources.openalex.rate_limit", 10.0)
	v.SetDefault("paper_sources.openalex.burst_size", 10)

	v.SetDefault("paper_sources.crossref.enabled", true)
	v.SetDefault("paper_sources.crossref.base_url", "https://api.crossref.org")
	v.SetDefault("paper_sources.crossref.email", "")
	v.SetDefault("paper_sources.crossref.timeout", "30s")
	v.SetDefault("paper_sources.crossref.rate_limit", 5.0)
	v.SetDefault("paper_sources.crossref.burst_size", 5)

	// Unpaywall refuses requests without an email; it is skipped at startup when none is set.
	v.SetDefault("paper_sources.unpaywall.enabled", true)
	v.SetDefault("paper_sources.unpaywall.base_url", "https://api.unpaywall.org")
	v.SetDefault("paper_sources.unpaywall.email", "")
	v.SetDefault("paper_sources.unpaywall.timeout", "30s")
	v.SetDefault("paper_sources.unpaywall.rate_limit", 5.0)
	v.SetDefault("paper_sources.unpaywall.burst_size", 5)

	v.SetDefault("paper_sources.semantic_scholar.enabled", false)
	v.SetDefault("paper_sources.semantic_scholar.base_url", "https://api.semanticscholar.org/graph/v1")
	v.SetDefault("paper_sources.semantic_scholar.timeout", "30s")
	v.SetDefault("paper_sources.semantic_scholar.rate_limit", 1.0)
	v.SetDefault("paper_sources.semantic_scholar.burst_size", 1)
}

// Validate validates the configuration. A missing LLM API key is not an
// error here; it is reported per request as a refusal.
func (c *Config) Validate() error {
	// Validate server ports
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}
	if c.Server.MetricsPort <= 0 || c.Server.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", c.Server.MetricsPort)
	}
	if c.Metrics.Enabled && c.Server.MetricsPort == c.Server.HTTPPort {
		return fmt.Errorf("metrics port must differ from HTTP port: %d", c.Server.HTTPPort)
	}
	if c.Server.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	// Validate research config
	if !domain.IsValidMode(c.Research.ResearchMode()) {
		return fmt.Errorf("invalid research mode: %q (want %q or %q)", c.Research.Mode, domain.ModeMetadata, domain.ModeLLM)
	}
	if c.Research.ResultsPerQuery <= 0 {
		return fmt.Errorf("research results_per_query must be positive")
	}

	// Validate LLM config
	switch strings.ToLower(c.LLM.Provider) {
	case "openai", "anthropic", "gemini":
	default:
		return fmt.Errorf("unsupported LLM provider: %q", c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("LLM temperature must be between 0 and 2")
	}

	if c.Research.ResearchMode() == domain.ModeMetadata &&
		!c.PaperSources.anyEnabled() {
		return fmt.Errorf("metadata mode requires at least one enabled paper source")
	}

	return nil
}
