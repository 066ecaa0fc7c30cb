package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rogerio-castellano/product-catalog/internal/config"
	"github.com/rogerio-castellano/product-catalog/internal/db"
	"github.com/rogerio-castellano/product-catalog/internal/http/handlers"
	rl "github.com/rogerio-castellano/product-catalog/internal/http/rate_limiter"
	"github.com/rogerio-castellano/product-catalog/internal/http/router"
	"github.com/rogerio-castellano/product-catalog/internal/redissvc"
	"github.com/rogerio-castellano/product-catalog/internal/repo"
	"github.com/rogerio-castellano/product-catalog/internal/service"
	"github.com/rogerio-castellano/product-catalog/internal/telemetry"
)

// @title Product Catalog API
// @version 1.0
// @description REST API for managing catalog products.
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	logger := telemetry.NewLogger(os.Stdout, cfg.LogLevel, cfg.OTLP.ServiceName, cfg.OTLP.Environment)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telem, err := telemetry.New(ctx, &cfg.OTLP, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telem.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down telemetry", slog.String("error", err.Error()))
		}
	}()

	productRepo, closeStorage, err := openRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStorage()

	handlers.SetLogger(logger)
	handlers.SetProductService(service.NewProductService(productRepo, telem.Tracer(), telem.Meter(), logger))

	opts := router.Options{Logger: logger, Telemetry: telem}
	if cfg.RateLimit.RPS > 0 {
		opts.Limiter = rl.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		go opts.Limiter.StartVisitorCleanupLoop(ctx, time.Minute)
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.NewRouter(opts),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("✅ Server running", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

// openRepository builds the configured storage backend, optionally fronted by
// the Redis cache. The returned func releases every connection it opened.
func openRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repo.ProductRepository, func(), error) {
	var (
		productRepo repo.ProductRepository
		closers     []func() error
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn("Error closing storage", slog.String("error", err.Error()))
			}
		}
	}

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		database, err := db.Connect(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to database: %w", err)
		}
		closers = append(closers, database.Close)
		productRepo = repo.NewPostgresProductRepository(database)
	case config.DriverGorm:
		gdb, err := db.OpenGorm(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to database: %w", err)
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, sqlDB.Close)
		productRepo = repo.NewGormProductRepository(gdb)
	default:
		productRepo = repo.NewInMemoryProductRepository()
	}
	logger.Info("Storage ready", slog.String("driver", cfg.Storage.Driver))

	if cfg.Cache.Addr != "" {
		rs, err := redissvc.Connect(ctx, cfg.Cache.Addr)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, rs.Close)
		productRepo = repo.NewCachedProductRepository(productRepo, rs, cfg.Cache.TTL, logger)
		logger.Info("Product cache enabled", slog.String("redis", cfg.Cache.Addr), slog.Duration("ttl", cfg.Cache.TTL))
	}

	return productRepo, closeAll, nil
}
