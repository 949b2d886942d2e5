// Package cache stores layout and render results between runs.
//
// Placement is deterministic for a given request and packer, so layouts are
// cached by a hash of the canonical request. Rendered artifacts are keyed by
// layout ID and render options.
//
// Three backends implement [Cache]:
//
//   - [FileCache] for the CLI (one JSON file per entry under the XDG cache dir)
//   - [RedisCache] for the HTTP server when several instances share results
//   - [NullCache] when caching is disabled
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// Get reports a miss with ok == false and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
