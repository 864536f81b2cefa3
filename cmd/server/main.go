package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"biogate/internal/enrollment/biometric"
	"biogate/internal/enrollment/handler"
	enrollmetrics "biogate/internal/enrollment/metrics"
	"biogate/internal/enrollment/service"
	"biogate/internal/enrollment/store"
	"biogate/internal/platform/config"
	"biogate/internal/platform/httpserver"
	"biogate/internal/platform/logger"
	"biogate/internal/platform/metrics"
	"biogate/pkg/platform/audit/publisher"
	auditmemory "biogate/pkg/platform/audit/store/memory"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "biogate:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	blobs, closeBackend, err := openBackend(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open snapshot backend: %w", err)
	}
	defer closeBackend()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	enrollMetrics := enrollmetrics.New(reg)

	// Corrupt or unreadable state aborts startup rather than starting empty.
	records, err := store.Open(ctx, blobs, store.WithMetrics(enrollMetrics))
	if err != nil {
		return err
	}
	log.Info("identity records loaded", "count", records.Len())

	auditLog := publisher.NewPublisher(auditmemory.NewInMemoryStore(auditmemory.WithCapacity(cfg.AuditCapacity)))
	svc := service.New(records, biometric.PlaceholderScanner{},
		service.WithLogger(log),
		service.WithAuditPublisher(auditLog),
		service.WithAlertFeed(auditLog),
		service.WithMetrics(enrollMetrics),
		service.WithCaptureTimeout(cfg.CaptureTimeout),
	)
	if cfg.AdminAPIToken == "" {
		log.Warn("ADMIN_API_TOKEN is empty; admin routes are disabled")
	}

	router := newRouter(routerDeps{
		logger:      log,
		gatherer:    reg,
		httpMetrics: metrics.New(reg),
		enrollment:  handler.New(svc, log, cfg.AdminAPIToken),
		recordCount: records.Len,
	})
	srv := httpserver.New(cfg.Addr, router)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting biogate", "addr", cfg.Addr, "backend", cfg.Store.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	// Every mutation is already persisted; the final save mirrors the exit path.
	if err := records.Save(shutdownCtx); err != nil {
		log.Error("final snapshot save failed", "error", err)
	}
	return nil
}
