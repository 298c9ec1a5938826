// Package cache defines a small string cache used to index gateway collection
// references to transaction ids, so the settlement webhook resolves without a
// log scan. The cache is advisory: a miss falls back to the transaction log.
package cache

import (
	"context"
	"time"
)

// Cache is a TTL-bounded string store.
type Cache interface {
	// Set stores value under key for ttl.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns the value and whether it was present and unexpired.
	Get(ctx context.Context, key string) (string, bool, error)

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
