package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Well-known keys of the persisted local storage.
const (
	KeyAppState    = "fitness-tracker-storage"
	KeyUserID      = "fitness-tracker-user-id"
	KeyTheme       = "theme"
	KeyAuthSession = "fitness-tracker-auth-session"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

// KV is the persisted key/value storage every component writes through.
// Removing an absent key is not an error.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendRedis    Backend = "redis"
	BackendPostgres Backend = "postgres"
	BackendSqlite   Backend = "sqlite"
)

func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "memory", "mem":
		return BackendMemory, nil
	case "redis":
		return BackendRedis, nil
	case "postgres", "psql", "postgresql":
		return BackendPostgres, nil
	case "sqlite", "sqlite3":
		return BackendSqlite, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownBackend, s)
	}
}
