package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"fondo/internal/backend"
	"fondo/internal/cli"
	"fondo/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap("fondo-worker")

	logger.Info("Starting fondo-worker")

	repo := cli.OpenStorage(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Without a spreadsheet the worker falls back to the in-memory
	// backend, which keeps local development honest: the pending queue
	// drains the same way it would in production.
	backendType := backend.SheetsBackend
	if cfg.GoogleSpreadsheetID == "" {
		logger.Warn("No GOOGLE_SPREADSHEET_ID configured, using in-memory export backend")
		backendType = backend.MemoryBackend
	}

	res, err := backend.Create(ctx, backend.Config{
		Type:               backendType,
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
	})
	if err != nil {
		logger.Error("Failed to initialize export backend", "error", err)
		os.Exit(1)
	}
	if res.Cleanup != nil {
		defer res.Cleanup()
	}
	logger.Info("Export backend initialized", "type", string(backendType))

	exporter := worker.NewExportWorker(repo, res.Backend, res.Backend, cfg.SyncBatchSize)

	logger.Info("Export worker configured",
		"batch_size", cfg.SyncBatchSize,
		"interval", cfg.SyncInterval)

	if err := exporter.Run(ctx, cfg.SyncInterval); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Export worker failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
