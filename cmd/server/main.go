// Package main provides the entry point for the literature aggregation service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/paperscope/literature-aggregation-service/internal/aggregator"
	"github.com/paperscope/literature-aggregation-service/internal/config"
	"github.com/paperscope/literature-aggregation-service/internal/observability"
	httpserver "github.com/paperscope/literature-aggregation-service/internal/server/http"
	"github.com/paperscope/literature-aggregation-service/internal/sources"
	"github.com/paperscope/literature-aggregation-service/internal/sources/arxiv"
	"github.com/paperscope/literature-aggregation-service/internal/sources/crossref"
	"github.com/paperscope/literature-aggregation-service/internal/sources/openalex"
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
	})
	logger = logger.With().Str("component", "server").Logger()
	logger.Info().Msg("literature-aggregation-service starting")

	// Set up context with graceful shutdown via OS signals.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics(cfg.Metrics.Namespace)

	// Register the enabled literature sources. CrossRef and OpenAlex also
	// serve DOI lookups, in that order.
	registry := sources.NewRegistry()
	var finders []httpserver.RecordFinder

	crossrefClient := crossref.New(crossref.Config{
		BaseURL:    cfg.Sources.CrossRef.BaseURL,
		Email:      cfg.Sources.CrossRef.Email,
		Timeout:    cfg.Sources.CrossRef.Timeout,
		RateLimit:  cfg.Sources.CrossRef.RateLimit,
		BurstSize:  cfg.Sources.CrossRef.BurstSize,
		MaxResults: cfg.Sources.CrossRef.MaxResults,
		Enabled:    cfg.Sources.CrossRef.Enabled,
	})
	registry.Register(crossrefClient)
	if cfg.Sources.CrossRef.Enabled {
		finders = append(finders, crossrefClient)
	}

	registry.Register(arxiv.New(arxiv.Config{
		BaseURL:    cfg.Sources.ArXiv.BaseURL,
		Timeout:    cfg.Sources.ArXiv.Timeout,
		RateLimit:  cfg.Sources.ArXiv.RateLimit,
		BurstSize:  cfg.Sources.ArXiv.BurstSize,
		MaxResults: cfg.Sources.ArXiv.MaxResults,
		Enabled:    cfg.Sources.ArXiv.Enabled,
	}))

	openalexClient := openalex.New(openalex.Config{
		BaseURL:    cfg.Sources.OpenAlex.BaseURL,
		Email:      cfg.Sources.OpenAlex.Email,
		Timeout:    cfg.Sources.OpenAlex.Timeout,
		RateLimit:  cfg.Sources.OpenAlex.RateLimit,
		BurstSize:  cfg.Sources.OpenAlex.BurstSize,
		MaxResults: cfg.Sources.OpenAlex.MaxResults,
		Enabled:    cfg.Sources.OpenAlex.Enabled,
	})
	registry.Register(openalexClient)
	if cfg.Sources.OpenAlex.Enabled {
		finders = append(finders, openalexClient)
	}

	logger.Info().
		Int("enabled_sources", len(registry.EnabledSources())).
		Msg("literature sources registered")

	// Result cache is optional.
	var cache *aggregator.ResultCache
	if cfg.Cache.Enabled {
		cache = aggregator.NewResultCache(cfg.Cache.Size, cfg.Cache.TTL)
		logger.Info().
			Int("size", cfg.Cache.Size).
			Dur("ttl", cfg.Cache.TTL).
			Msg("result cache enabled")
	}

	agg := aggregator.New(aggregator.Config{
		DefaultLimitPerSource: cfg.Aggregator.DefaultLimitPerSource,
	}, registry, cache, logger, metrics)

	httpCfg := httpserver.Config{
		Address:         cfg.Server.HTTPAddress(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     2 * time.Minute,
		SearchTimeout:   cfg.Aggregator.SearchTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}
	httpSrv := httpserver.NewServer(httpCfg, agg, registry, finders, logger)

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

	// Start HTTP REST API server in background.
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

	readyLog := logger.Info().Str("http_address", httpCfg.Address)
	if metricsServer != nil {
		readyLog = readyLog.Str("metrics_address", metricsServer.Addr)
	}
	readyLog.Msg("literature-aggregation-service is ready")

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		logger.Info().Msg("received shutdown signal")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	// Graceful shutdown.
	logger.Info().Msg("shutting down literature-aggregation-service")

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

	logger.Info().Msg("literature-aggregation-service shutdown complete")
	return nil
}
