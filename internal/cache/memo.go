// Package cache provides a thread-safe memo with per-entry expiration.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value   V
	expires time.Time
}

// Memo is a thread-safe key-value cache where each entry expires ttl after
// it was stored. When maxEntries is reached, expired entries are dropped
// and, if that frees nothing, the whole memo is cleared.
type Memo[K comparable, V any] struct {
	mu         sync.RWMutex
	data       map[K]entry[V]
	ttl        time.Duration
	maxEntries int
}

// New creates a Memo. A maxEntries of zero or less means unbounded.
func New[K comparable, V any](ttl time.Duration, maxEntries int) *Memo[K, V] {
	return &Memo[K, V]{
		data:       make(map[K]entry[V]),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

// Get returns the value for key if present and not expired.
func (m *Memo[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.data[key]
	if !ok || !time.Now().Before(e.expires) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, resetting its expiry.
func (m *Memo[K, V]) Set(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if _, exists := m.data[key]; !exists && m.maxEntries > 0 && len(m.data) >= m.maxEntries {
		m.evictLocked(now)
	}
	m.data[key] = entry[V]{value: value, expires: now.Add(m.ttl)}
}

// GetOrCompute returns the cached value for key, computing and storing it
// with fn on a miss. fn runs without the lock held, so concurrent misses on
// the same key may compute it more than once.
func (m *Memo[K, V]) GetOrCompute(key K, fn func() V) (V, bool) {
	if v, ok := m.Get(key); ok {
		return v, true
	}
	v := fn()
	m.Set(key, v)
	return v, false
}

// Len returns the number of stored entries, including expired ones not yet
// evicted.
func (m *Memo[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// evictLocked MUST be called with the write lock held.
func (m *Memo[K, V]) evictLocked(now time.Time) {
	for k, e := range m.data {
		if !now.Before(e.expires) {
			delete(m.data, k)
		}
	}
	if len(m.data) >= m.maxEntries {
		m.data = make(map[K]entry[V])
	}
}
