package reconcile

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache holds a single value for a limited time.
// Concurrent misses share one fetch.
type Cache[T any] struct {
	ttl time.Duration
	now func() time.Time

	mu     sync.RWMutex
	value  T
	built  time.Time
	filled bool
	// gen is bumped by Invalidate. A fetch started under an older gen
	// returns its value but does not store it.
	gen uint64

	sf singleflight.Group
}

// NewCache creates a cache with the given time-to-live.
// A TTL of zero disables caching: every Get fetches.
func NewCache[T any](ttl time.Duration) *Cache[T] {
	return &Cache[T]{ttl: ttl, now: time.Now}
}

// isExpired must be called with mu held.
func (c *Cache[T]) isExpired() bool {
	if c.ttl == 0 || !c.filled {
		return true
	}
	return c.now().Sub(c.built) > c.ttl
}

// Get returns the cached value while it is fresh, otherwise calls fetch and
// stores its result. Fetch errors are returned and nothing is stored.
func (c *Cache[T]) Get(ctx context.Context, fetch func(context.Context) (T, error)) (T, error) {
	c.mu.RLock()
	if !c.isExpired() {
		v := c.value
		c.mu.RUnlock()
		return v, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do("value", func() (interface{}, error) {
		c.mu.RLock()
		if !c.isExpired() {
			v := c.value
			c.mu.RUnlock()
			return v, nil
		}
		gen := c.gen
		c.mu.RUnlock()

		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.gen == gen {
			c.store(v)
		}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return result.(T), nil
}

// Set stores a value and restarts its lifetime.
func (c *Cache[T]) Set(v T) {
	c.mu.Lock()
	c.store(v)
	c.mu.Unlock()
}

// store must be called with mu held.
func (c *Cache[T]) store(v T) {
	c.value = v
	c.built = c.now()
	c.filled = true
}

// Invalidate drops the cached value.
func (c *Cache[T]) Invalidate() {
	c.mu.Lock()
	var zero T
	c.value = zero
	c.filled = false
	c.gen++
	c.mu.Unlock()
}
