// Package main provides the entry point for the research assistant HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/helixir/research-assistant-service/internal/aggregator"
	"github.com/helixir/research-assistant-service/internal/config"
	"github.com/helixir/research-assistant-service/internal/expander"
	"github.com/helixir/research-assistant-service/internal/llm"
	"github.com/helixir/research-assistant-service/internal/observability"
	"github.com/helixir/research-assistant-service/internal/papersources"
	"github.com/helixir/research-assistant-service/internal/papersources/crossref"
	"github.com/helixir/research-assistant-service/internal/papersources/openalex"
	"github.com/helixir/research-assistant-service/internal/papersources/semanticscholar"
	"github.com/helixir/research-assistant-service/internal/papersources/unpaywall"
	"github.com/helixir/research-assistant-service/internal/planner"
	"github.com/helixir/research-assistant-service/internal/policy"
	"github.com/helixir/research-assistant-service/internal/research"
	httpserver "github.com/helixir/research-assistant-service/internal/server/http"
	"github.com/helixir/research-assistant-service/internal/websearch"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Set up structured logging.
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
		Mode:       string(cfg.Research.ResearchMode()),
	})
	logger = observability.WithComponent(logger, "server")
	logger.Info().Msg("research-assistant-service starting")

	// Set up context with graceful shutdown via OS signals.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(cfg.Metrics.Namespace)
	}

	mode := cfg.Research.ResearchMode()

	// The completer may be missing a credential. That is reported on every
	// request rather than stopping the process.
	completer, completerErr := llm.NewCompleter(ctx, llm.FactoryConfig{
		Provider:    strings.ToLower(cfg.LLM.Provider),
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
		OpenAI: llm.OpenAIConfig{
			APIKey:  cfg.LLM.OpenAI.APIKey,
			Model:   cfg.LLM.OpenAI.Model,
			BaseURL: cfg.LLM.OpenAI.BaseURL,
		},
		Anthropic: llm.AnthropicConfig{
			APIKey:  cfg.LLM.Anthropic.APIKey,
			Model:   cfg.LLM.Anthropic.Model,
			BaseURL: cfg.LLM.Anthropic.BaseURL,
		},
		Gemini: llm.GeminiConfig{
			APIKey:  cfg.LLM.Gemini.APIKey,
			Model:   cfg.LLM.Gemini.Model,
			BaseURL: cfg.LLM.Gemini.BaseURL,
		},
	})
	if completerErr != nil {
		logger.Warn().Err(completerErr).Str("llm_provider", cfg.LLM.Provider).Msg("LLM completer unavailable")
	}

	registry := buildRegistry(cfg.PaperSources, logger)

	deps := research.Dependencies{
		WebSearchErr: completerErr,
		Filter:       policy.New(cfg.Research.AllowedHosts),
		Collector:    aggregator.New(registry, logger, metrics),
	}
	if completer != nil {
		deps.WebSearch = websearch.New(completer, logger, metrics)
	}

	// Query expansion falls back to fixed queries without a completer.
	var expansionCompleter llm.Completer
	if cfg.Research.ExpandQueries && completer != nil {
		expansionCompleter = completer
	}
	deps.Expander = expander.New(expansionCompleter, logger, metrics)

	svc := research.NewService(research.Config{
		Mode:            mode,
		ResultsPerQuery: cfg.Research.ResultsPerQuery,
	}, deps, logger, metrics)

	providerNames := make([]string, 0, registry.Len())
	for _, p := range registry.Providers() {
		providerNames = append(providerNames, p.Name())
	}

	httpCfg := httpserver.Config{
		Address:         cfg.Server.HTTPAddress(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     2 * time.Minute,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		RequestTimeout:  cfg.Server.RequestTimeout,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
	}

	httpSrv := httpserver.NewServer(
		httpCfg,
		svc,
		planner.New(logger, metrics),
		httpserver.Readiness{
			Mode:          mode,
			LLMProvider:   cfg.LLM.Provider,
			LLMConfigured: completer != nil,
			PaperSources:  providerNames,
		},
		logger,
	)

	// Set up Prometheus metrics handler on a separate port if configured.
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle(cfg.Metrics.Path, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress(),
			Handler:      metricsMux,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}
	}

	// Channel to collect server errors.
	errCh := make(chan error, 2)

	// Start HTTP API server in background.
	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Start metrics server if configured.
	if metricsServer != nil {
		go func() {
			logger.Info().
				Str("address", metricsServer.Addr).
				Msg("metrics server starting")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	readyLog := logger.Info().
		Str("http_address", httpCfg.Address).
		Str("mode", string(mode)).
		Strs("paper_sources", providerNames).
		Bool("llm_configured", completer != nil)
	if metricsServer != nil {
		readyLog = readyLog.Str("metrics_address", metricsServer.Addr)
	}
	readyLog.Msg("research-assistant-service is ready")

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		logger.Info().Msg("received shutdown signal")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	// Graceful shutdown.
	logger.Info().Msg("shutting down research-assistant-service")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server shutdown error")
		}
	}

	logger.Info().Msg("research-assistant-service shutdown complete")
	return nil
}

// buildRegistry registers the enabled metadata providers in merge order:
// OpenAlex, Crossref, Unpaywall.
func buildRegistry(cfg config.PaperSourcesConfig, logger zerolog.Logger) *papersources.Registry {
	registry := papersources.NewRegistry()

	if cfg.OpenAlex.Enabled {
		registry.Register(openalex.New(openalex.Config{
			BaseURL:   cfg.OpenAlex.BaseURL,
			Email:     cfg.OpenAlex.ContactEmail(cfg.Email),
			Timeout:   cfg.OpenAlex.Timeout,
			RateLimit: cfg.OpenAlex.RateLimit,
			BurstSize: cfg.OpenAlex.BurstSize,
		}))
	}

	if cfg.Crossref.Enabled {
		registry.Register(crossref.New(crossref.Config{
			BaseURL:   cfg.Crossref.BaseURL,
			Email:     cfg.Crossref.ContactEmail(cfg.Email),
			Timeout:   cfg.Crossref.Timeout,
			RateLimit: cfg.Crossref.RateLimit,
			BurstSize: cfg.Crossref.BurstSize,
		}))
	}

	if cfg.Unpaywall.Enabled {
		client, err := unpaywall.New(unpaywall.Config{
			BaseURL:   cfg.Unpaywall.BaseURL,
			Email:     cfg.Unpaywall.ContactEmail(cfg.Email),
			Timeout:   cfg.Unpaywall.Timeout,
			RateLimit: cfg.Unpaywall.RateLimit,
			BurstSize: cfg.Unpaywall.BurstSize,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("unpaywall disabled")
		} else {
			registry.Register(client)
		}
	}

	if cfg.SemanticScholar.Enabled {
		registry.Register(semanticscholar.New(semanticscholar.Config{
			BaseURL:   cfg.SemanticScholar.BaseURL,
			APIKey:    cfg.SemanticScholar.APIKey,
			Timeout:   cfg.SemanticScholar.Timeout,
			RateLimit: cfg.SemanticScholar.RateLimit,
			BurstSize: cfg.SemanticScholar.BurstSize,
		}))
	}

	return registry
}
