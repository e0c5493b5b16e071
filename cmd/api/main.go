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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/bryanwahyu/meeting-insights/internal/application"
	appmeetings "github.com/bryanwahyu/meeting-insights/internal/application/meetings"
	"github.com/bryanwahyu/meeting-insights/internal/bootstrap"
	"github.com/bryanwahyu/meeting-insights/internal/config"
	domain "github.com/bryanwahyu/meeting-insights/internal/domain/meetings"
	"github.com/bryanwahyu/meeting-insights/internal/infra/httpserver"
	"github.com/bryanwahyu/meeting-insights/internal/logging"
	"github.com/bryanwahyu/meeting-insights/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(logging.Config{
		Level:       cfg.Log.Level,
		ServiceName: "meeting-insights",
		Environment: cfg.Server.Env,
		JSONFormat:  cfg.Log.JSON,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}

// run serves until ctx is cancelled. Every resource it opens is released
// before it returns, on failure too.
func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// init repositories
	repos, err := bootstrap.OpenRepositories(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("storage init: %w", err)
	}
	defer func() {
		if err := repos.Close(); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}()

	health := map[string]middleware.HealthChecker{}
	if repos.DB != nil {
		health["database"] = &middleware.DatabaseHealthChecker{DB: repos.DB}
	}

	// metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(reg)

	// init analyzer
	orch, backend, err := bootstrap.Orchestrator(ctx, cfg.AI, metrics, log)
	if err != nil {
		return fmt.Errorf("analyzer init: %w", err)
	}
	if !orch.AIEnabled() {
		log.Warn().Msg("no AI API key configured, using fallback analyzer")
	}

	// init minio (optional)
	store, err := bootstrap.ExportStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("export storage init: %w", err)
	}
	var exports domain.ExportStore
	if store != nil {
		exports = store
		health["storage"] = store
	}

	// init service
	svc := &appmeetings.Service{
		Meetings: repos.Meetings,
		Analyses: repos.Analyses,
		Failures: repos.Failures,
		Analyzer: orch,
		Exports:  exports,
		Clock:    application.SystemClock{},
		Log:      log,
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.AnalysesPerMinute > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.AnalysesPerMinute, cfg.RateLimit.Burst)
		defer limiter.Stop()
	}

	// init router
	handler := httpserver.NewRouter(httpserver.Options{
		Meetings:       svc,
		Analyzer:       orch,
		APIKeys:        cfg.Auth.APIKeys,
		CORSOrigins:    cfg.Server.CORSOrigins,
		Limiter:        limiter,
		Metrics:        metrics,
		Gatherer:       reg,
		Health:         health,
		HealthInfo:     map[string]string{"analyzer": backend, "storage": cfg.Database.Driver},
		RequestTimeout: time.Duration(cfg.Server.RequestTimeoutSec) * time.Second,
		Log:            log,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// AI calls can take most of the request timeout
		WriteTimeout: time.Duration(cfg.Server.RequestTimeoutSec+15) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("analyzer", backend).Msg("server listening")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	// graceful shutdown
	log.Info().Msg("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
