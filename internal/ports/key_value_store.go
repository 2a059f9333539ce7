package ports

import (
	"context"
	"errors"
)

// ErrQuotaExceeded is returned (possibly wrapped) by a KeyValueStore when a write
// does not fit into the storage quota.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Port: durable string key/value storage for organizer state.
type KeyValueStore interface {
	// Return the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Store value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Remove key. Removing an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// List all keys in ascending order.
	Keys(ctx context.Context) ([]string, error)
}
