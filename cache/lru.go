package cache

import (
	"container/list"
	"sync"
)

// LRU is a thread-safe least-recently-used map
type LRU[V any] struct {
	size      int
	evictList *list.List
	items     map[string]*list.Element
	mu        sync.Mutex
}

// lruEntry is stored in the eviction list
type lruEntry[V any] struct {
	key   string
	value V
}

// NewLRU creates a new LRU holding at most size items
func NewLRU[V any](size int) *LRU[V] {
	if size <= 0 {
		size = 1
	}
	return &LRU[V]{
		size:      size,
		evictList: list.New(),
		items:     make(map[string]*list.Element),
	}
}

// Get retrieves a value and marks it most recently used
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, exists := c.items[key]
	if !exists {
		var zero V
		return zero, false
	}

	c.evictList.MoveToFront(node)
	return node.Value.(*lruEntry[V]).value, true
}

// Peek retrieves a value without touching its recency
func (c *LRU[V]) Peek(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if node, exists := c.items[key]; exists {
		return node.Value.(*lruEntry[V]).value, true
	}
	var zero V
	return zero, false
}

// Put adds or updates a value
func (c *LRU[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if node, exists := c.items[key]; exists {
		c.evictList.MoveToFront(node)
		node.Value.(*lruEntry[V]).value = value
		return
	}

	node := c.evictList.PushFront(&lruEntry[V]{key: key, value: value})
	c.items[key] = node

	if c.evictList.Len() > c.size {
		c.removeOldest()
	}
}

// Remove deletes key, reporting whether it was present
func (c *LRU[V]) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, exists := c.items[key]
	if !exists {
		return false
	}
	c.evictList.Remove(node)
	delete(c.items, key)
	return true
}

// removeOldest removes the least recently used item
func (c *LRU[V]) removeOldest() {
	node := c.evictList.Back()
	if node == nil {
		return
	}
	c.evictList.Remove(node)
	kv := node.Value.(*lruEntry[V])
	delete(c.items, kv.key)
}

// Range calls fn for every item, most recently used first.
// fn must not call back into the LRU.
func (c *LRU[V]) Range(fn func(key string, value V)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for node := c.evictList.Front(); node != nil; node = node.Next() {
		kv := node.Value.(*lruEntry[V])
		fn(kv.key, kv.value)
	}
}

// Clear removes all items
func (c *LRU[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.evictList.Init()
}

// Size returns the number of items
func (c *LRU[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.evictList.Len()
}
