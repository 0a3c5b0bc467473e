// Package cache provides a small bounded get-or-compute cache used to memoize
// the engine's lookup ports: fixed-capacity LRU eviction plus wall-clock TTL.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Cache memoizes key -> value computations. It is safe for concurrent use so
// an orchestrator may share one instance across parallel jobs; within one job
// there is no contention because the engine is single-threaded.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	now      func() time.Time
	order    *list.List
	items    map[K]*list.Element

	hits   uint64
	misses uint64
}

type item[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
}

// New creates a cache with the given capacity and TTL. A non-positive
// capacity defaults to 1024; a non-positive TTL means entries never expire.
func New[K comparable, V any](capacity int, ttl time.Duration) *Cache[K, V] {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Cache[K, V]{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		order:    list.New(),
		items:    make(map[K]*list.Element),
	}
}

// GetOrCompute returns the cached value for key, computing and storing it on
// a miss. Compute errors are not cached.
func (c *Cache[K, V]) GetOrCompute(key K, compute func() (V, error)) (V, error) {
	c.mu.Lock()

	if el, ok := c.items[key]; ok {
		it := el.Value.(*item[K, V])
		if c.ttl <= 0 || c.now().Before(it.expiresAt) {
			c.order.MoveToFront(el)
			c.hits++
			v := it.value
			c.mu.Unlock()
			return v, nil
		}
		c.order.Remove(el)
		delete(c.items, key)
	}
	c.misses++
	c.mu.Unlock()

	value, err := compute()
	if err != nil {
		var zero V
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.store(key, value)
	return value, nil
}

func (c *Cache[K, V]) store(key K, value V) {
	if el, ok := c.items[key]; ok {
		it := el.Value.(*item[K, V])
		it.value = value
		it.expiresAt = c.now().Add(c.ttl)
		c.order.MoveToFront(el)
		return
	}

	for len(c.items) >= c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*item[K, V]).key)
	}

	el := c.order.PushFront(&item[K, V]{
		key:       key,
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	})
	c.items[key] = el
}

// Len returns the number of cached entries, including not-yet-evicted
// expired ones.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns the hit and miss counters.
func (c *Cache[K, V]) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
