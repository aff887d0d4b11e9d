package cache

import (
	"container/list"
	"sync"
)

type entry[K comparable, V any] struct {
	key   K
	value V
}

// LRUCache is a fixed-capacity, concurrency-safe cache that evicts the least
// recently used entry when full.
type LRUCache[K comparable, V any] struct {
	capacity int
	items    map[K]*list.Element
	order    *list.List
	onEvict  func(K, V)
	mu       sync.Mutex
}

// NewLRUCache creates a cache holding at most capacity entries.
// Capacities below one are raised to one.
func NewLRUCache[K comparable, V any](capacity int) *LRUCache[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &LRUCache[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element, capacity),
		order:    list.New(),
	}
}

// SetEvictCallback registers fn to run when an entry is evicted for capacity.
// Explicit Remove and Clear do not trigger it.
func (c *LRUCache[K, V]) SetEvictCallback(fn func(K, V)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvict = fn
}

// Get returns the value for key and marks it as recently used.
func (c *LRUCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*entry[K, V]).value, true
	}
	var zero V
	return zero, false
}

// Put inserts or replaces the value for key.
func (c *LRUCache[K, V]) Put(key K, value V) {
	c.mu.Lock()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry[K, V]).value = value
		c.order.MoveToFront(el)
		c.mu.Unlock()
		return
	}

	c.items[key] = c.order.PushFront(&entry[K, V]{key: key, value: value})

	var evicted *entry[K, V]
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		evicted = oldest.Value.(*entry[K, V])
		delete(c.items, evicted.key)
	}
	onEvict := c.onEvict
	c.mu.Unlock()

	// Callback runs outside the lock so it may use the cache.
	if evicted != nil && onEvict != nil {
		onEvict(evicted.key, evicted.value)
	}
}

// Remove deletes key and returns its value.
func (c *LRUCache[K, V]) Remove(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.order.Remove(el)
		delete(c.items, key)
		return el.Value.(*entry[K, V]).value, true
	}
	var zero V
	return zero, false
}

// Len returns the number of entries.
func (c *LRUCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear removes every entry.
func (c *LRUCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]*list.Element, c.capacity)
	c.order.Init()
}
