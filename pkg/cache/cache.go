// Package cache stores synthesized tables and rendered artifacts.
//
// Backends implement [Cache]: [FileCache] for the CLI, [RedisCache] and
// [MongoCache] for shared deployments, and [NullCache] when caching is off.
// Keys come from a [Keyer] so every entry point hashes the same inputs the
// same way.
package cache

import (
	"context"
	"time"
)

// TTLs for the two kinds of cached entries.
const (
	// TTLTable bounds how long a synthesized table stays cached.
	TTLTable = 24 * time.Hour

	// TTLArtifact bounds how long a rendered artifact stays cached.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiration.
//
// Get reports a miss with ok=false and a nil error. Implementations must be
// safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
