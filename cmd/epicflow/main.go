package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/epicflowhq/epicflow/internal/adapter/gateway"
	efhttp "github.com/epicflowhq/epicflow/internal/adapter/http"
	"github.com/epicflowhq/epicflow/internal/adapter/keyword"
	"github.com/epicflowhq/epicflow/internal/adapter/memory"
	efnats "github.com/epicflowhq/epicflow/internal/adapter/nats"
	"github.com/epicflowhq/epicflow/internal/adapter/natskv"
	"github.com/epicflowhq/epicflow/internal/adapter/otel"
	"github.com/epicflowhq/epicflow/internal/adapter/ristretto"
	"github.com/epicflowhq/epicflow/internal/adapter/tiered"
	"github.com/epicflowhq/epicflow/internal/adapter/ws"
	"github.com/epicflowhq/epicflow/internal/config"
	"github.com/epicflowhq/epicflow/internal/logger"
	"github.com/epicflowhq/epicflow/internal/middleware"
	"github.com/epicflowhq/epicflow/internal/port/cache"
	"github.com/epicflowhq/epicflow/internal/resilience"
	"github.com/epicflowhq/epicflow/internal/service"
)

func main() {
	flags, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := run(flags); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(flags config.CLIFlags) error {
	cfg, cfgPath, err := config.LoadWithCLI(flags)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	holder := config.NewHolder(cfg, cfgPath)

	log, logCloser := logger.New(cfg.Logging)
	slog.SetDefault(log)
	defer logCloser.Close()

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"config_file", cfgPath,
	)

	ctx := context.Background()

	// --- Telemetry ---
	otelShutdown, err := otel.Setup(ctx, cfg.Otel, cfg.Logging.Service)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("otel shutdown", "error", err)
		}
	}()

	metrics, err := otel.NewMetrics()
	if err != nil {
		return fmt.Errorf("otel instruments: %w", err)
	}

	// --- Infrastructure ---

	localCache, err := ristretto.New(cfg.Cache.MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer localCache.Close()
	var resultCache cache.Cache = localCache

	// NATS is optional infrastructure. The routing core answers HTTP
	// requests without it; decisions just stop flowing to dispatch and
	// the result cache stays process-local.
	queue, err := efnats.Connect(ctx, cfg.NATS.URL, cfg.NATS.Stream)
	if err != nil {
		slog.Warn("nats unavailable, publications disabled", "error", err)
	} else {
		defer func() { _ = queue.Drain() }()
		kv, err := queue.KeyValue(ctx, "epicflow-results", cfg.Cache.TTL)
		if err != nil {
			slog.Warn("shared result cache unavailable", "error", err)
		} else {
			resultCache = tiered.New(localCache, natskv.New(kv), 5*time.Minute)
		}
	}

	hub := ws.NewHub()

	gatewayClient := gateway.NewClient(cfg.Gateway.URL, cfg.Gateway.APIKey)
	gatewayClient.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))

	// --- Services ---
	store := memory.New(cfg.Context.MaxEntries)

	providers := service.NewProviderService()
	if err := providers.LoadFile(cfg.Providers.File); err != nil {
		return fmt.Errorf("provider profiles: %w", err)
	}

	monitor := service.NewMonitorService(cfg.Monitor.MaxSamples)
	monitor.SetMetrics(metrics)
	monitor.SetBroadcaster(hub)

	orchestrator := service.NewOrchestratorService(
		keyword.New(), store,
		service.NewStrategyService(),
		providers, monitor,
		gatewayClient,
	)
	orchestrator.SetCache(resultCache, cfg.Cache.TTL)
	orchestrator.SetBroadcaster(hub)
	orchestrator.SetMetrics(metrics)
	if queue != nil {
		orchestrator.SetQueue(queue)
		monitor.SetQueue(queue)
	}

	// Periodic threshold sweep so breaches surface without a poll.
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				report := monitor.CheckThresholds(sweepCtx)
				if !report.MeetsThresholds {
					slog.Warn("performance thresholds breached",
						"failed", report.FailedThresholds,
						"score", report.OverallScore)
				}
			}
		}
	}()

	// SIGHUP reloads the config file; the running server keeps its port.
	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	go func() {
		for range reload {
			if err := holder.Reload(); err != nil {
				slog.Error("config reload failed, keeping previous", "error", err)
				continue
			}
			next := holder.Get()
			if err := providers.LoadFile(next.Providers.File); err != nil {
				slog.Error("provider profile reload failed", "error", err)
			}
			slog.Info("config reloaded", "config_file", cfgPath)
		}
	}()

	// --- HTTP ---
	handlers := &efhttp.Handlers{
		Orchestrator: orchestrator,
		Store:        store,
		Providers:    providers,
		Monitor:      monitor,
		Hub:          hub,
	}
	if queue != nil {
		handlers.Queue = queue
	}

	rateLimiter := middleware.NewRateLimiter(cfg.Rate.RequestsPerSecond, cfg.Rate.Burst)
	stopCleanup := rateLimiter.StartCleanup(5*time.Minute, 30*time.Minute)
	defer stopCleanup()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(efhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(efhttp.SecurityHeaders)
	r.Use(efhttp.Logger)
	r.Use(otel.HTTPMiddleware(cfg.Logging.Service))
	r.Use(chimw.RealIP)
	r.Use(rateLimiter.Handler)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	efhttp.MountRoutes(r, handlers)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
