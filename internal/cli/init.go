// Package cli consolidates the initialization steps shared by the
// fondo binaries: environment loading, logging, configuration and the
// SQLite mirror.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"fondo/internal/amqp"
	"fondo/internal/config"
	"fondo/internal/log"
	"fondo/internal/storage"
)

// Bootstrap loads the .env file, configuration and logger for one
// binary. Exits the process on invalid configuration.
func Bootstrap(component string) (*config.Config, *log.Logger) {
	// .env is for local development; absence is fine in production.
	_ = godotenv.Load()

	cfg := config.Load()

	logger := log.FromEnv(cfg.LogLevel, cfg.LogFormat, component)
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	return cfg, logger
}

// OpenStorage opens the SQLite mirror and runs migrations. Exits the
// process on failure; none of the binaries can do anything without it.
func OpenStorage(logger *log.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}

// ConnectAMQP connects to the change-stream broker if one is
// configured. Returns nil when AMQP is disabled or unreachable; the
// binaries all degrade to local-only operation in that case.
func ConnectAMQP(logger *log.Logger, cfg *config.Config) *amqp.Client {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP disabled - record changes will not be announced")
		return nil
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("Failed to initialize AMQP client, continuing without change stream", "error", err)
		return nil
	}

	logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client
}
