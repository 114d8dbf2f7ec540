// Package store provides the key-value persistence layer for mindcare.
//
// Every backend stores opaque byte blobs under string keys. Higher layers own
// serialization and any partitioning of the stored data.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Well-known keys.
const (
	KeyUser     = "user"
	KeyJournals = "journals"
)

// ErrStorageFailure is wrapped by every error a backend returns when the
// underlying medium rejects a read or write.
var ErrStorageFailure = errors.New("storage failure")

// KV is a durable mapping from string keys to byte values.
//
// Read reports a missing key with ok=false and a nil error. Write replaces the
// whole value for a key or fails without a partial write. Remove is idempotent.
type KV interface {
	Read(ctx context.Context, key string) (value []byte, ok bool, err error)
	Write(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend       string
	Path          string
	MaxBytes      int
	RedisURL      string
	RedisPrefix   string
	MongoURI      string
	MongoDatabase string
}

// Open creates a backend by name.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch strings.ToLower(opts.Backend) {
	case "", "sqlite":
		return OpenSQLite(opts.Path)
	case "memory":
		return NewMemory(opts.MaxBytes), nil
	case "redis":
		return OpenRedis(ctx, opts.RedisURL, opts.RedisPrefix)
	case "mongo":
		return OpenMongo(ctx, opts.MongoURI, opts.MongoDatabase)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", opts.Backend)
	}
}

func storageErr(op, key string, err error) error {
	return fmt.Errorf("%s %q: %w: %w", op, key, ErrStorageFailure, err)
}
