package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"fondo/internal/cache"
	"fondo/internal/cli"
	apphttp "fondo/internal/http"
	"fondo/internal/services"
	"fondo/internal/snapshot"
)

func main() {
	cfg, logger := cli.Bootstrap("fondo")

	logger.Info("Starting fondo server", "port", cfg.Port, "db", cfg.SQLiteDBPath)

	repo := cli.OpenStorage(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// The broker is optional: without it the snapshot still refreshes
	// on writes and on the periodic resync.
	amqpClient := cli.ConnectAMQP(logger, cfg)
	if amqpClient != nil {
		defer amqpClient.Close()
	}

	store := snapshot.NewStore()

	ledgerCfg := services.DefaultLedgerServiceConfig()
	ledgerCfg.FallbackHeadcount = cfg.FallbackHeadcount
	ledgerService := services.NewLedgerService(store, ledgerCfg)

	cacheManager := cache.NewManager()
	ledgerService.RegisterCaches(cacheManager)
	cacheManager.StartCleanup(10 * time.Minute)
	defer cacheManager.Stop()

	txService := services.NewTransactionService(repo, amqpClient, store)

	refresher := services.NewRefreshProcessor(repo, amqpClient, store, services.DefaultRefreshProcessorConfig())

	srv := apphttp.NewServer(":"+cfg.Port, logger.WithComponent("http"), ledgerService, txService)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := refresher.Start(ctx); err != nil {
		logger.Error("Failed to start refresh processor", "error", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := refresher.Stop(shutdownCtx); err != nil {
			logger.Error("Refresh processor shutdown error", "error", err)
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully")
}
