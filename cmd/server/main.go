// Package main is the entry point for the profile lookup server.
//
// The main package is kept minimal. Its job is to:
//  1. Read configuration (environment variables, optionally a .env file)
//  2. Create the logger
//  3. Start the application
//
// All actual logic lives in imported packages (internal/server,
// internal/service, internal/handler, ...).
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/profile-lookup/internal/config"
	"github.com/sakif/profile-lookup/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === LOGGING ===
	// Text output for humans; level from LOG_LEVEL (debug, info, warn, error).
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// === FILE PATHS ===
	// Relative paths resolve against the working directory, which is the
	// project root under `go run ./cmd/server`.
	cfg.TemplateDir, _ = filepath.Abs(cfg.TemplateDir)
	cfg.StaticDir, _ = filepath.Abs(cfg.StaticDir)

	// The SQLite file's directory is created on first start (like `mkdir -p`).
	if cfg.CacheBackend == config.BackendSQLite && cfg.DBPath != ":memory:" {
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	if cfg.GitHubToken == "" {
		logger.Warn("GITHUB_TOKEN not set, GitHub allows 60 anonymous lookups per hour")
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
