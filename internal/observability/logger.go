package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ServiceName is stamped on every entry produced by NewLogger.
const ServiceName = "research-assistant"

// LoggingConfig contains logger configuration options.
type LoggingConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error, fatal, panic).
	Level string

	// Format is "json" or "console" ("pretty" is accepted as console).
	Format string

	// Output is stdout or stderr. Ignored when Writer is set.
	Output string

	// Writer overrides Output.
	Writer io.Writer

	AddSource  bool
	TimeFormat string

	// Mode is the research mode the process serves; added to every entry when set.
	Mode string
}

// DefaultLoggingConfig returns the configuration used when nothing is set.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:      "info",
		Format:     "json",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// NewLogger builds the process logger. Every entry carries the service name
// and, when configured, the research mode.
func NewLogger(cfg LoggingConfig) zerolog.Logger {
	out := cfg.Writer
	if out == nil {
		out = os.Stdout
		if strings.EqualFold(cfg.Output, "stderr") {
			out = os.Stderr
		}
	}

	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.TimeFormat != "" {
		zerolog.TimeFieldFormat = cfg.TimeFormat
	}

	switch strings.ToLower(cfg.Format) {
	case "console", "pretty":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: zerolog.TimeFieldFormat}
	}

	lc := zerolog.New(out).With().Timestamp().Str("service", ServiceName)
	if cfg.Mode != "" {
		lc = lc.Str("deployment_mode", cfg.Mode)
	}
	if cfg.AddSource {
		lc = lc.Caller()
	}

	return lc.Logger().Level(parseLevel(cfg.Level))
}

// parseLevel maps a configured level name to zerolog, defaulting to info.
func parseLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" || lvl == zerolog.NoLevel || lvl == zerolog.Disabled {
		return zerolog.InfoLevel
	}
	return lvl
}

// WithRequestContext adds the correlation ID to a logger.
func WithRequestContext(logger zerolog.Logger, requestID string) zerolog.Logger {
	return logger.With().Str("request_id", requestID).Logger()
}

// WithResearchContext adds the mode and depth of a research request.
func WithResearchContext(logger zerolog.Logger, mode, depth string) zerolog.Logger {
	return logger.With().Str("mode", mode).Str("depth", depth).Logger()
}

// WithSearchContext adds the query and provider of one fan-out call.
func WithSearchContext(logger zerolog.Logger, query, provider string) zerolog.Logger {
	return logger.With().Str("query", query).Str("provider", provider).Logger()
}

// WithComponent tags a logger with the component that owns it.
func WithComponent(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}
