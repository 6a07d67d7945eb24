package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/liamcoop/salarypredict/analytics"
	"github.com/liamcoop/salarypredict/dataset"
	"github.com/liamcoop/salarypredict/features"
	"github.com/liamcoop/salarypredict/internal/config"
	"github.com/liamcoop/salarypredict/internal/logger"
	"github.com/liamcoop/salarypredict/registry"
)

// openDataset picks the dataset store named by the config. The returned
// closer is a no-op for file-backed stores.
func openDataset(ctx context.Context, cfg config.Config) (dataset.Store, pinger, func() error, error) {
	switch cfg.DatasetSource {
	case config.SourceCSV:
		return dataset.NewCSVStore(cfg.DatasetPath), nil, func() error { return nil }, nil
	case config.SourcePostgres, config.SourceSQLite:
		store, err := dataset.OpenSQLStore(ctx, cfg.DatasetSource, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if cfg.MigrateOnStart {
			if err := dataset.Migrate(store.DB().DB, cfg.DatasetSource); err != nil {
				store.Close()
				return nil, nil, nil, err
			}
		}
		return store, store, store.Close, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown dataset source %q", cfg.DatasetSource)
	}
}

// buildEngine loads the table and binds the analytics engine. The store is
// closed when either step fails.
func buildEngine(ctx context.Context, store dataset.Store, closeStore func() error, valueColumn string) (*analytics.Engine, error) {
	table, err := store.Load(ctx)
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	engine, err := analytics.NewEngine(table, valueColumn)
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("failed to build analytics engine: %w", err)
	}
	return engine, nil
}

func main() {
	cfg, err := config.Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx := context.Background()
	if err := logger.Setup(ctx, logger.Options{
		Level:       cfg.LogLevel,
		SampleRate:  cfg.ErrorSampleRate,
		OTEL:        cfg.OTELEnabled,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
	}

	reg, err := registry.LoadManifest(cfg.ManifestPath)
	if err != nil {
		logger.Fatal("failed to load models", "manifest", cfg.ManifestPath, "error", err)
	}
	if missing := features.MissingColumns(reg.Vocabulary()); len(missing) > 0 {
		logger.Warn("vocabulary lacks encoder columns; those selections will have no effect", "columns", missing)
	}
	logger.Info("models loaded", "models", reg.Names(), "features", reg.Vocabulary().Len())

	store, health, closeStore, err := openDataset(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to open dataset", "source", cfg.DatasetSource, "error", err)
	}

	engine, err := buildEngine(ctx, store, closeStore, cfg.ValueColumn)
	if err != nil {
		logger.Fatal("failed to prepare dataset", "source", cfg.DatasetSource, "error", err)
	}
	logger.Info("dataset loaded", "source", cfg.DatasetSource, "observations", engine.Len(), "value_column", engine.ValueColumn())

	server := NewServer(reg, engine, health, Options{
		HistogramBins:  cfg.HistogramBins,
		TopCountries:   cfg.TopCountries,
		RequestTimeout: cfg.RequestTimeout,
		SlowRequest:    cfg.SlowRequest,
	})

	port := strconv.Itoa(cfg.Port)
	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      server,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			closeStore()
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if err := closeStore(); err != nil {
		logger.Error("dataset close error", "error", err)
	}
	if err := logger.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "logger shutdown error: %v\n", err)
	}

	logger.Info("server stopped")
}
