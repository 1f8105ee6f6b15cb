// Package cache provides small bounded caches shared by in-flight files.
// A race that computes the same artifact twice costs a recomputation only;
// callers must never rely on single execution.
package cache

import (
	"fmt"

	"github.com/maypok86/otter"
)

// Bounded is a thread-safe cache with capacity-based eviction. It is injected
// into consumers rather than held as package-level state so tests can size and
// scope caches independently.
type Bounded[K comparable, V any] struct {
	inner otter.Cache[K, V]
}

// NewBounded creates a cache holding at most capacity entries.
func NewBounded[K comparable, V any](capacity int) (*Bounded[K, V], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("cache capacity must be positive, got %d", capacity)
	}
	c, err := otter.MustBuilder[K, V](capacity).Build()
	if err != nil {
		return nil, err
	}
	return &Bounded[K, V]{inner: c}, nil
}

// Get returns the cached value for key, if present.
func (c *Bounded[K, V]) Get(key K) (V, bool) {
	return c.inner.Get(key)
}

// Set stores value under key, possibly evicting another entry.
func (c *Bounded[K, V]) Set(key K, value V) {
	c.inner.Set(key, value)
}

// GetOrCompute returns the cached value for key, computing and storing it on a
// miss. Concurrent callers may both compute; last write wins.
func (c *Bounded[K, V]) GetOrCompute(key K, compute func() (V, error)) (V, error) {
	if v, ok := c.inner.Get(key); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		var zero V
		return zero, err
	}
	c.inner.Set(key, v)
	return v, nil
}

// Size returns the current number of cached entries.
func (c *Bounded[K, V]) Size() int {
	return c.inner.Size()
}

// Close releases the cache's background resources.
func (c *Bounded[K, V]) Close() {
	c.inner.Close()
}
