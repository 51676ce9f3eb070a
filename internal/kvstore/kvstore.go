// Package kvstore defines the persistence port for per-visitor state:
// session records, the notification slot, and the breadcrumb trail all live
// behind this interface, so the domain packages never touch a concrete
// storage backend.
package kvstore

import (
	"context"
	"errors"
	"time"
)

var ErrKeyNotFound = errors.New("key not found")

type Store interface {
	// Get returns the raw value for the key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set writes the value. A positive ttl bounds its lifetime; zero means
	// no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
