package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/kupoindex/storecore/internal/config"
	"github.com/kupoindex/storecore/internal/store"
)

// newLogger builds the process-wide slog.Logger from the loaded config's
// logging section. A missing or unreadable log file falls back to stderr.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	out := os.Stderr
	if cfg.Logging.File != "" {
		if f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640); err == nil {
			out = f
		}
	}

	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
}

// openLongLived loads config, builds a logger-backed tracer, and opens the
// privileged long-lived writer connection named in the config (or an
// override path, when non-empty).
func openLongLived(ctx context.Context, pathOverride string) (*store.Database, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	path := cfg.Database.Path
	if pathOverride != "" {
		path = pathOverride
	}
	if path == "" {
		return nil, nil, fmt.Errorf("no database path configured (set database.path or pass --db)")
	}

	logger := newLogger(cfg)
	tracer := store.NewSlogTracer(logger)

	indexPolicy := store.InstallIfNotExist
	if cfg.Indexes.DeferNonEssential {
		indexPolicy = store.SkipNonEssential
	}

	db, err := store.OpenLongLived(ctx, store.OnDisk(path), store.Config{
		LongestRollback: cfg.Database.LongestRollback,
		IndexPolicy:     indexPolicy,
		Tracer:          tracer,
	}, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return db, cfg, nil
}
