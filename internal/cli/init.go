// Package cli consolidates the initialization shared by cmd/pft and
// cmd/pft-loaddata.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"pft/internal/config"
	"pft/internal/log"
	"pft/internal/storage"
)

// LoadEnvFile loads the .env file for local development. Errors are
// ignored; the file is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the component logger from the configured level and
// installs it as the slog default.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	logCfg := log.DefaultConfig()
	logCfg.Level = log.ParseLevel(cfg.LogLevel)
	logCfg.Component = component
	logger := log.New(logCfg)
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and exits the process on
// validation failure.
func LoadAndValidateConfig() *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logCfg := log.DefaultConfig()
		log.New(logCfg).Error("configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitStore opens the SQLite store at the given path or exits the
// process on failure.
func InitStore(logger *log.Logger, dbPath string) *storage.SQLiteStore {
	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		logger.Error("failed to open store", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return store
}
