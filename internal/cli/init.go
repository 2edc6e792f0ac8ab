// Package cli holds the startup steps shared by cmd/bilancio and
// cmd/bilancio-worker.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"bilancio/internal/config"
	"bilancio/internal/log"
	"bilancio/internal/storage"
)

// Bootstrap loads the environment, installs the default structured logger
// and returns a validated configuration. Exits the process when the
// configuration is unusable, since nothing can run without it.
func Bootstrap() *config.Config {
	// .env is a local development convenience; in production the variables
	// come from the environment and the file is simply absent.
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// MustOpenRepository opens the SQLite store and runs migrations, exiting
// on failure.
func MustOpenRepository(dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		slog.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}
