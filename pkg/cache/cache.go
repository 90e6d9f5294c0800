// Package cache stores normalized documents so repeated runs over the same
// input can skip parsing.
//
// Entries are opaque byte slices addressed by string keys. Keys are produced
// by a [Keyer] from the adapter name, the options that affect the output and
// a hash of the raw input, so any change to one of them is a miss.
//
// Three backends are provided:
//   - [FileCache] stores entries under a local directory (the CLI default)
//   - [RedisCache] shares entries between machines through Redis
//   - [NullCache] never stores anything (--no-cache)
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is reported
	// as hit=false with a nil error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// Clearer is implemented by caches that can drop all of their entries.
type Clearer interface {
	// Clear removes every entry and reports how many were removed.
	Clear(ctx context.Context) (int, error)
}
