// Package cache holds the small in-process key/value stores the server
// shares between requests: the user lookup cache, the fallback session
// table and the revoked token list.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a concurrency-safe map with optional per-entry expiry.
// Concurrent writers to the same key resolve last-write-wins.
type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]entry[V]
	now   func() time.Time
}

func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{items: make(map[K]entry[V]), now: time.Now}
}

// WithClock replaces the time source used for expiry checks.
func (c *Cache[K, V]) WithClock(now func() time.Time) *Cache[K, V] {
	c.now = now
	return c
}

// Set stores value without expiry.
func (c *Cache[K, V]) Set(key K, value V) {
	c.SetUntil(key, value, time.Time{})
}

// SetUntil stores value until the given instant. A zero time never expires.
func (c *Cache[K, V]) SetUntil(key K, value V, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = entry[V]{value: value, expiresAt: expiresAt}
}

// Get returns the live value for key.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || c.expired(e) {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Len counts stored entries, including expired ones not yet purged.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Purge drops expired entries and returns how many were removed.
func (c *Cache[K, V]) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k, e := range c.items {
		if c.expired(e) {
			delete(c.items, k)
			n++
		}
	}
	return n
}

func (c *Cache[K, V]) expired(e entry[V]) bool {
	return !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt)
}
