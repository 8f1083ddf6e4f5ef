// Package cache provides the byte-level caches used to skip re-extracting
// images that have already been processed.
//
// # Backends
//
//   - [NullCache]: caching disabled
//   - [FileCache]: JSON entry files under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//
// # Keys
//
// Keys are built by a [Keyer] from the SHA-256 of the image bytes and the
// options that change the extraction result (palette and unrecognized-color
// policy). Map name and floor are not part of the key: they are applied to
// the cached graph after retrieval.
//
//	key := cache.NewDefaultKeyer().GraphKey(cache.Hash(imageBytes), cache.GraphKeyOpts{
//	    Palette: "#000000,#ff0000,#00ff00",
//	    Policy:  "warn",
//	})
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with an optional time-to-live.
//
// Get returns hit=false with a nil error on a miss; errors are reserved for
// backend failures. A ttl of zero means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// DefaultTTL is how long extracted graphs stay cached.
const DefaultTTL = 7 * 24 * time.Hour
