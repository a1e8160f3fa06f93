// Package cache provides a generic keyed cache with least-recently-used
// eviction order. Capacity policy is left to the caller: the cache only
// tracks recency and exposes the oldest entry for eviction.
package cache

// node is an entry in the recency list. The node stores its key for
// O(1) deletion from the parent map.
type node[K comparable, V any] struct {
	key   K
	value V
	prev  *node[K, V]
	next  *node[K, V]
}

// LRU is a map-backed cache ordered by recency of use. Both Get and Put
// count as a use. The head of the internal list is the most recently
// used entry, the tail the least recently used.
//
// LRU is not safe for concurrent use; callers must handle
// synchronization.
type LRU[K comparable, V any] struct {
	entries map[K]*node[K, V]
	head    *node[K, V]
	tail    *node[K, V]
}

// NewLRU creates an empty cache.
func NewLRU[K comparable, V any]() *LRU[K, V] {
	return &LRU[K, V]{entries: make(map[K]*node[K, V])}
}

// Len returns the number of entries.
func (c *LRU[K, V]) Len() int {
	return len(c.entries)
}

// Get returns the value stored under key and marks the entry as most
// recently used. Reports false when the key is absent.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	n, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(n)
	return n.value, true
}

// Peek returns the value stored under key without touching recency.
func (c *LRU[K, V]) Peek(key K) (V, bool) {
	n, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	return n.value, true
}

// Put stores value under key and marks the entry as most recently used.
// An existing entry is overwritten in place.
func (c *LRU[K, V]) Put(key K, value V) {
	if n, ok := c.entries[key]; ok {
		n.value = value
		c.moveToFront(n)
		return
	}
	n := &node[K, V]{key: key, value: value}
	c.entries[key] = n
	c.pushFront(n)
}

// Remove deletes the entry under key. Reports false when absent.
func (c *LRU[K, V]) Remove(key K) bool {
	n, ok := c.entries[key]
	if !ok {
		return false
	}
	delete(c.entries, key)
	c.unlink(n)
	return true
}

// PopOldest removes and returns the least recently used entry. Reports
// false when the cache is empty.
func (c *LRU[K, V]) PopOldest() (K, V, bool) {
	if c.tail == nil {
		var zeroK K
		var zeroV V
		return zeroK, zeroV, false
	}
	n := c.tail
	delete(c.entries, n.key)
	c.unlink(n)
	return n.key, n.value, true
}

// Range calls f for every entry from most to least recently used,
// stopping early when f returns false. f must not mutate the cache.
func (c *LRU[K, V]) Range(f func(key K, value V) bool) {
	for n := c.head; n != nil; n = n.next {
		if !f(n.key, n.value) {
			return
		}
	}
}

// Clear removes all entries.
func (c *LRU[K, V]) Clear() {
	clear(c.entries)
	c.head = nil
	c.tail = nil
}

// pushFront links a new node at the head of the recency list.
func (c *LRU[K, V]) pushFront(n *node[K, V]) {
	if c.head == nil {
		c.head = n
		c.tail = n
		return
	}
	n.next = c.head
	c.head.prev = n
	c.head = n
}

// moveToFront marks an existing node as most recently used.
func (c *LRU[K, V]) moveToFront(n *node[K, V]) {
	if n == c.head {
		return
	}
	c.unlink(n)
	n.prev = nil
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

// unlink removes a node from the recency list without clearing its
// map entry.
func (c *LRU[K, V]) unlink(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev = nil
	n.next = nil
}
