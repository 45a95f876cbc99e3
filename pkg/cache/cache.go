// Package cache provides content-addressed caching for measurement results.
//
// Estimating a note's size measures its text at up to 40 candidate widths;
// for boards arranged repeatedly the inputs rarely change, so results are
// cached keyed by a hash of (content, pixel environment). Backends:
//   - file: per-user cache directory for CLI usage
//   - redis: shared cache for server deployments
//   - null: caching disabled
//
// Entries carry a TTL; expired entries read as misses.
package cache

import (
	"context"
	"time"
)

// Cache is the interface all backends implement.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was present
	// and unexpired; an absent key is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl stores without expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
