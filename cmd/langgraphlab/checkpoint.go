package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/smallnest/langgraphlab/store"
	"github.com/smallnest/langgraphlab/store/file"
	"github.com/smallnest/langgraphlab/store/memory"
	"github.com/smallnest/langgraphlab/store/postgres"
	"github.com/smallnest/langgraphlab/store/redis"
	"github.com/smallnest/langgraphlab/store/sqlite"
)

func noClose() error { return nil }

// openCheckpointStore opens the store named by dsn. An empty dsn disables
// checkpointing and returns a nil store.
func openCheckpointStore(ctx context.Context, dsn string) (store.CheckpointStore, func() error, error) {
	if dsn == "" {
		return nil, noClose, nil
	}
	if dsn == "memory" {
		return memory.NewMemoryCheckpointStore(), noClose, nil
	}

	kind, target, ok := strings.Cut(dsn, ":")
	if !ok || target == "" {
		return nil, nil, fmt.Errorf("checkpoint %q: want <kind>:<target>", dsn)
	}

	switch kind {
	case "file":
		s, err := file.NewFileCheckpointStore(target)
		if err != nil {
			return nil, nil, err
		}
		return s, noClose, nil
	case "sqlite":
		s, err := sqlite.NewSqliteCheckpointStore(sqlite.SqliteOptions{Path: target})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "redis":
		s := redis.NewRedisCheckpointStore(redis.RedisOptions{Addr: target})
		return s, s.Close, nil
	case "postgres":
		s, err := postgres.NewPostgresCheckpointStore(ctx, postgres.PostgresOptions{ConnString: target})
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { s.Close(); return nil }, nil
	default:
		return nil, nil, fmt.Errorf("checkpoint %q: unknown store %q", dsn, kind)
	}
}
