package cache

import (
	"sync"
	"time"
)

// fifoItem is a single cached value with its insertion timestamp
type fifoItem[V any] struct {
	value    V
	cachedAt time.Time
}

// FIFO is a thread-safe bounded cache with insertion-order eviction: once
// capacity is reached, the first-inserted key is dropped to make room. This
// approximates LRU of first-seen order; recency of use is deliberately not
// tracked.
type FIFO[V any] struct {
	capacity int
	data     map[string]fifoItem[V]
	order    []string
	mutex    sync.Mutex
}

// NewFIFO creates a bounded FIFO cache. Capacity must be positive.
func NewFIFO[V any](capacity int) *FIFO[V] {
	if capacity <= 0 {
		capacity = 1
	}
	return &FIFO[V]{
		capacity: capacity,
		data:     make(map[string]fifoItem[V], capacity),
	}
}

// Get retrieves a value and its insertion time. Lookups do not affect
// eviction order.
func (c *FIFO[V]) Get(key string) (V, time.Time, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	item, exists := c.data[key]
	if !exists {
		var zero V
		return zero, time.Time{}, false
	}
	return item.value, item.cachedAt, true
}

// Put stores a value. Overwriting an existing key keeps its original slot in
// the eviction order. Inserting a new key at capacity evicts the oldest entry.
func (c *FIFO[V]) Put(key string, value V) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.data[key]; exists {
		c.data[key] = fifoItem[V]{value: value, cachedAt: time.Now()}
		return
	}

	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.data, oldest)
	}

	c.data[key] = fifoItem[V]{value: value, cachedAt: time.Now()}
	c.order = append(c.order, key)
}

// Size returns the current number of items in the cache
func (c *FIFO[V]) Size() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.data)
}

// Capacity returns the configured bound
func (c *FIFO[V]) Capacity() int {
	return c.capacity
}

// Clear removes all items from the cache
func (c *FIFO[V]) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data = make(map[string]fifoItem[V], c.capacity)
	c.order = nil
}
