// Package cache provides the response cache used by the registry client.
package cache

import "sync"

// Cache stores raw response bytes keyed by operation and arguments.
// Implementations must be safe for concurrent use; values are pure functions
// of the key, so concurrent writers racing on the same key is harmless and
// last-write-wins.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
}

// Memory is an in-process Cache backed by a map.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]byte)}
}

// Get returns the cached value for key, if present.
func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok
}

// Set stores value under key, replacing any previous value.
func (m *Memory) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
}

// Len returns the number of cached entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// None is a Cache that stores nothing. Useful for disabling caching in tests.
type None struct{}

// Get always misses.
func (None) Get(string) ([]byte, bool) { return nil, false }

// Set discards the value.
func (None) Set(string, []byte) {}
