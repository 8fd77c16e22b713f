// Package cache provides byte-level cache backends used for upstream HTTP
// responses and assembled feeds.
//
// # Backends
//
//   - [FileCache]: one JSON file per key under a directory (CLI default)
//   - [RedisCache]: shared cache for multi-instance server deployments
//   - [MongoCache]: document cache with a TTL index on expires_at
//   - [NullCache]: caching disabled
//
// Use [New] to construct the backend named in configuration.
//
// # Keys
//
// A [Keyer] builds namespaced keys so HTTP responses and feeds never collide.
// [NewScopedKeyer] adds a prefix, which lets several deployments share one
// Redis or Mongo instance.
package cache

import (
	"context"
	"errors"
	"time"
)

// Cache stores opaque byte payloads with an optional time-to-live.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the payload for key. hit is false on a miss or an expired entry.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// ErrUnknownBackend is returned by [New] for an unrecognised backend name.
var ErrUnknownBackend = errors.New("unknown cache backend")

// NullCache misses on every Get and discards every Set. It backs --no-cache
// and backend = "none".
type NullCache struct{}

// NewNullCache returns a NullCache.
func NewNullCache() *NullCache { return &NullCache{} }

func (*NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (*NullCache) Delete(context.Context, string) error                     { return nil }
func (*NullCache) Close() error                                             { return nil }

var _ Cache = (*NullCache)(nil)
