package versionstore

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config selects and configures a backend.
type Config struct {
	Backend string
	Redis   RedisConfig
	DSN     string
}

// Open creates the store named by cfg.Backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendRedis:
		s, err := NewRedisStore(cfg.Redis)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendSQLite, BackendPostgres:
		dialect := DialectSQLite
		if cfg.Backend == BackendPostgres {
			dialect = DialectPostgres
		}
		s, err := OpenSQLStore(ctx, dialect, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown version store backend: %s", cfg.Backend)
	}
}
