package cmd

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/gmg-digital/staticembed/internal/config"
	"github.com/gmg-digital/staticembed/internal/db"
	"github.com/gmg-digital/staticembed/internal/logging"
)

// DatabaseFile is the SQLite file created inside the data directory.
const DatabaseFile = "staticembed.db"

// loadConfig loads and validates the configuration file named by --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger. --verbose forces debug level.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	if verbose {
		level = "debug"
	}
	return logging.New(level)
}

// openDatabase opens the SQLite database inside the data directory.
func openDatabase(cfg *config.Config) (*db.DB, string, error) {
	path := filepath.Join(cfg.DataDir, DatabaseFile)
	database, err := db.Open(path)
	if err != nil {
		return nil, path, fmt.Errorf("opening database: %w", err)
	}
	return database, path, nil
}
