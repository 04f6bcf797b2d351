// cmd/worker-manager/main.go
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

	"go.uber.org/zap"

	"scholarship-workers/internal/api"
	"scholarship-workers/internal/app"
	"scholarship-workers/internal/common/camunda"
	"scholarship-workers/internal/common/config"
	"scholarship-workers/internal/common/logger"
	"scholarship-workers/internal/common/observability"
	"scholarship-workers/internal/common/validation"
	"scholarship-workers/pkg/registry"

	approve "scholarship-workers/internal/workers/scholarship/approve-scholarship-application"
	getapp "scholarship-workers/internal/workers/scholarship/get-scholarship-application"
	stats "scholarship-workers/internal/workers/scholarship/get-scholarship-statistics"
	submit "scholarship-workers/internal/workers/scholarship/submit-scholarship-application"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "worker manager failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	zapLog, err := logger.New(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return err
	}
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
		zap.String("ledgerBackend", cfg.Ledger.Backend),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Tracing, cfg.App.Name, cfg.App.Version)
	if err != nil {
		return err
	}
	defer shutdownWithTimeout(shutdownTracing, zapLog, "tracing")

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		return err
	}
	defer shutdownWithTimeout(obs.Shutdown, zapLog, "metrics")

	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		return fmt.Errorf("load activity registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("activity registry invalid: %w", err)
	}
	validator, err := validation.NewValidator(reg)
	if err != nil {
		return err
	}

	application, err := app.Build(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("build scholarship service: %w", err)
	}
	defer application.Close()
	svc := application.Service

	zeebe, err := camunda.NewClient(ctx, cfg.Camunda)
	if err != nil {
		return err
	}
	defer zeebe.Close()
	zapLog.Info("Zeebe client connected", zap.String("broker", cfg.Camunda.BrokerAddress))

	// --- Scholarship Workers ---
	var workers []*camunda.Worker

	if c := submit.LoadConfig(cfg); c.Enabled {
		h := submit.NewHandler(c, svc, validator, obs, log)
		workers = append(workers, camunda.StartWorker(zeebe.Zeebe(), submit.TaskType, config.GetWorkerConfig(cfg, submit.TaskType), h, log))
	}
	if c := approve.LoadConfig(cfg); c.Enabled {
		h := approve.NewHandler(c, svc, validator, obs, log)
		workers = append(workers, camunda.StartWorker(zeebe.Zeebe(), approve.TaskType, config.GetWorkerConfig(cfg, approve.TaskType), h, log))
	}
	if c := getapp.LoadConfig(cfg); c.Enabled {
		h := getapp.NewHandler(c, svc, validator, obs, log)
		workers = append(workers, camunda.StartWorker(zeebe.Zeebe(), getapp.TaskType, config.GetWorkerConfig(cfg, getapp.TaskType), h, log))
	}
	if c := stats.LoadConfig(cfg); c.Enabled {
		h := stats.NewHandler(c, svc, obs, log)
		workers = append(workers, camunda.StartWorker(zeebe.Zeebe(), stats.TaskType, config.GetWorkerConfig(cfg, stats.TaskType), h, log))
	}
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- HTTP API ---
	apiServer := api.NewServer(api.Options{
		Service: svc,
		Logger:  log,
		RateLimit: api.RateLimit{
			RequestsPerSecond: cfg.API.RateLimit.RequestsPerSecond,
			Burst:             cfg.API.RateLimit.Burst,
			IdleTTL:           time.Duration(cfg.API.RateLimit.IdleTTLSeconds) * time.Second,
		},
	})
	apiServer.Start(ctx)

	httpServer := &http.Server{
		Addr:              cfg.API.Address,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		zapLog.Info("HTTP API listening", zap.String("address", cfg.API.Address))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// --- Graceful Shutdown ---
	select {
	case <-ctx.Done():
		zapLog.Info("Shutdown signal received, stopping workers")
	case err := <-serveErr:
		zapLog.Error("HTTP API failed", zap.Error(err))
	}

	for _, w := range workers {
		w.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP API", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
	return nil
}

func shutdownWithTimeout(fn func(context.Context) error, log *zap.Logger, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Warn("shutdown failed", zap.String("component", name), zap.Error(err))
	}
}
