package gocas

import (
	"sync"
	"sync/atomic"
)

// Cache is an append-only memo table. Keys are structural values of
// immutable nodes, so entries never go stale and are never evicted. A nil
// *Cache is valid and stores nothing.
type Cache[K comparable, V any] struct {
	mu     sync.RWMutex
	m      map[K]V
	hits   atomic.Int64
	misses atomic.Int64
}

func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{m: make(map[K]V)}
}

func (c *Cache[K, V]) Get(k K) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	c.mu.RLock()
	v, ok := c.m[k]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Put stores v unless k is already present; the first value wins.
func (c *Cache[K, V]) Put(k K, v V) {
	if c == nil {
		return
	}
	c.mu.Lock()
	if _, ok := c.m[k]; !ok {
		c.m[k] = v
	}
	c.mu.Unlock()
}

func (c *Cache[K, V]) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

// Stats returns hit and miss counts since creation or the last Clear.
func (c *Cache[K, V]) Stats() (hits, misses int64) {
	if c == nil {
		return 0, 0
	}
	return c.hits.Load(), c.misses.Load()
}

func (c *Cache[K, V]) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.m = make(map[K]V)
	c.mu.Unlock()
	c.hits.Store(0)
	c.misses.Store(0)
}
