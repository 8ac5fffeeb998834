// Package kvstore implements the durable string-keyed slot store that holds
// all studio state, plus a typed read/write layer with default-merge
// semantics on top of the raw byte store.
package kvstore

import "context"

// Store is the raw persistence interface. Values are opaque byte slices
// (JSON-serialized by the typed layer). Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the raw value stored at key, or (nil, nil) when the slot
	// is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value at key, overwriting any existing entry.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the slot at key. Deleting an absent slot is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases storage resources.
	Close() error
}

// Purger is implemented by stores that can remove several slots atomically.
// PurgeKeys uses it when available and falls back to one Delete per key.
type Purger interface {
	Purge(ctx context.Context, keys ...string) error
}
