// Package main is the entry point for the YellowIpe API server.
//
// main stays minimal. It:
//  1. loads configuration
//  2. builds the logger
//  3. opens the store chosen by STORE_DRIVER
//  4. hands everything to server.New and blocks in Start
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/yellowipe/internal/config"
	"github.com/sakif/yellowipe/internal/repository"
	"github.com/sakif/yellowipe/internal/repository/mongodb"
	"github.com/sakif/yellowipe/internal/repository/sqlite"
	"github.com/sakif/yellowipe/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// No logger yet: the level comes from the config that just failed.
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := newLogger(cfg)

	store, err := openStore(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to open store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv, err := server.New(cfg, logger, store)
	if err != nil {
		store.Close()
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT/SIGTERM and closes the store on the way out.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// newLogger writes text logs in development and JSON everywhere else.
func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.Environment == "development" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		// os.MkdirAll is `mkdir -p`: a no-op when the directory exists.
		dir := filepath.Dir(cfg.SQLitePath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
		}
		db, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("using sqlite store", slog.String("path", cfg.SQLitePath))
		return db, nil

	default:
		s, err := mongodb.Open(ctx, mongodb.Config{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDatabase,
			Timeout:  cfg.MongoTimeout,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("using mongodb store", slog.String("database", cfg.MongoDatabase))
		return s, nil
	}
}
