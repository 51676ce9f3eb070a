// Package memory implements the kvstore port in process memory. It backs
// tests and single-instance deployments that do not run a ValKey.
package memory

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/openkpi/kpi-gateway/internal/kvstore"
)

type Store struct {
	cache *gocache.Cache
}

var _ = kvstore.Store(&Store{})

func NewStore() *Store {
	return &Store{
		cache: gocache.New(gocache.NoExpiration, time.Minute),
	}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	value, found := s.cache.Get(key)
	if !found {
		return nil, kvstore.ErrKeyNotFound
	}

	// Copies keep callers from mutating the cached value, matching the
	// remote-store semantics of the valkey implementation.
	return append([]byte(nil), value.([]byte)...), nil
}

func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}

	s.cache.Set(key, append([]byte(nil), value...), ttl)

	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.cache.Delete(key)

	return nil
}
