// Package cache provides the time-bounded store that memoizes dashboard
// loads. Entries expire after their TTL and every mutation clears the
// store explicitly.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store is a process-wide key/value store with per-entry expiry.
type Store struct {
	items *gocache.Cache

	mu  sync.Mutex
	gen uint64

	loadMu sync.Mutex
}

// New creates an empty store. Expired entries are swept every minute.
func New() *Store {
	return &Store{items: gocache.New(gocache.NoExpiration, time.Minute)}
}

// Get returns the live value for key.
func (s *Store) Get(key string) (any, bool) {
	return s.items.Get(key)
}

// Set stores v under key for ttl.
func (s *Store) Set(key string, v any, ttl time.Duration) {
	s.items.Set(key, v, ttl)
}

// Invalidate drops a single key.
func (s *Store) Invalidate(key string) {
	s.mu.Lock()
	s.gen++
	s.mu.Unlock()
	s.items.Delete(key)
	slog.Debug("cache invalidated", "key", key)
}

// Clear drops every key. Loads that started before Clear do not store
// their result.
func (s *Store) Clear() {
	s.mu.Lock()
	s.gen++
	s.mu.Unlock()
	s.items.Flush()
	slog.Debug("cache cleared")
}

func (s *Store) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Load returns the cached value for key or calls fn and caches its
// result for ttl. Errors are not cached.
func Load[T any](ctx context.Context, s *Store, key string, ttl time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if v, ok := s.Get(key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	// Another caller may have filled the slot while we waited.
	if v, ok := s.Get(key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}

	gen := s.generation()
	start := time.Now()
	v, err := fn(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if s.generation() == gen {
		s.Set(key, v, ttl)
	}
	slog.Debug("cache loaded", "key", key, "ttl", ttl.String(), "duration", time.Since(start).String())
	return v, nil
}
