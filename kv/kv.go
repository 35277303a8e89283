// Package kv provides durable key-value slots where a ledger document is
// stored. Backends are selected with a DSN, see Open.
package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by Get for a key that was never written.
var ErrNotFound = errors.New("key not found")

// KV is a store of opaque values addressed by key.
//
// Put overwrites any previous value. Implementations copy values so callers
// may reuse their buffers.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Open returns the backend named by dsn:
//
//	mem:                         in memory, lost on exit
//	file:<dir> or <dir>          one file per key in dir
//	sqlite:<path>                a SQLite database file
//	redis://[:pass@]host:port/db a Redis server
//	postgres://... postgresql:// a PostgreSQL database
func Open(ctx context.Context, dsn string) (KV, error) {
	scheme, rest, found := strings.Cut(dsn, ":")
	if !found || len(scheme) == 1 { // a bare path, possibly with a drive letter
		return NewFile(dsn), nil
	}
	switch scheme {
	case "mem":
		return NewMemory(), nil
	case "file":
		return NewFile(strings.TrimPrefix(rest, "//")), nil
	case "sqlite":
		db, err := NewSQLite(ctx, strings.TrimPrefix(rest, "//"))
		if err != nil {
			return nil, err
		}
		return db, nil
	case "redis", "rediss":
		opts, err := redis.ParseURL(dsn)
		if err != nil {
			return nil, fmt.Errorf("invalid redis dsn: %w", err)
		}
		db, err := NewRedis(ctx, opts, "cashbook")
		if err != nil {
			return nil, err
		}
		return db, nil
	case "postgres", "postgresql":
		db, err := NewPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown key-value backend %q in %q", scheme, dsn)
	}
}
