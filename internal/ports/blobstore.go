// Package ports define the BlobStore interface for offline media caching.
package ports

import (
	"context"
)

// BlobStore is durable key to binary persistence used as the offline cache.
// Keys are track names; values are opaque audio payloads.
//
// Entries are never evicted: there is no size or TTL policy, and growth is unbounded.
//
// Thread-safety: Implementations must be safe for concurrent use. Concurrent Puts for
// the same key race and the last write wins.
type BlobStore interface {
	// Put inserts or overwrites the entry for key.
	// An empty key returns domain.ErrInvalidKey.
	//
	// On failure the returned error matches domain.ErrStorageUnavailable and the
	// previously stored value (if any) is left intact.
	Put(ctx context.Context, key string, data []byte) error

	// Get returns the payload stored for key.
	// A missing key returns domain.ErrBlobNotFound, which callers treat as a normal miss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Close releases the store's resources.
	Close() error
}
