package main

import (
	"context"
	"fmt"
	"log/slog"

	"biogate/internal/enrollment/store"
	"biogate/internal/enrollment/store/snapshot"
	"biogate/internal/platform/config"
	redisclient "biogate/internal/platform/redis"
)

// openBackend returns the configured snapshot backend and a func releasing its
// connections. The release func is never nil.
func openBackend(ctx context.Context, cfg config.Server, log *slog.Logger) (store.BlobStore, func(), error) {
	noop := func() {}
	switch cfg.Store.Backend {
	case config.BackendFile:
		fs, err := snapshot.NewFile(cfg.Store.Path)
		if err != nil {
			return nil, noop, err
		}
		log.Info("using file snapshot", "path", fs.Path())
		return fs, noop, nil

	case config.BackendSQLite:
		s, err := snapshot.OpenSQLite(ctx, cfg.Store.Path, cfg.Store.SnapshotName)
		if err != nil {
			return nil, noop, err
		}
		log.Info("using sqlite snapshot", "path", cfg.Store.Path, "name", cfg.Store.SnapshotName)
		return s, closeWith(log, "sqlite", s.Close), nil

	case config.BackendPostgres:
		s, err := snapshot.OpenPostgres(ctx, cfg.Store.DatabaseURL, cfg.Store.SnapshotName)
		if err != nil {
			return nil, noop, err
		}
		log.Info("using postgres snapshot", "name", cfg.Store.SnapshotName)
		return s, closeWith(log, "postgres", s.Close), nil

	case config.BackendRedis:
		client, err := redisclient.New(ctx, cfg.Redis)
		if err != nil {
			return nil, noop, err
		}
		s := snapshot.NewRedis(client.Client, cfg.Redis.KeyPrefix, cfg.Store.SnapshotName)
		log.Info("using redis snapshot", "key", s.Key())
		return s, closeWith(log, "redis", client.Close), nil

	default:
		return nil, noop, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func closeWith(log *slog.Logger, name string, closeFn func() error) func() {
	return func() {
		if err := closeFn(); err != nil {
			log.Warn("failed to close snapshot backend", "backend", name, "error", err)
		}
	}
}
