package cache

import (
	"sync"
	"time"
)

// Cache is a small TTL cache. The ranking endpoint sits behind it so
// repeated leaderboard reads do not hammer sqlite.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Invalidate(key string)
}

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// Memory is an in-process Cache with a fixed TTL per entry.
type Memory[T any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry[T]
}

func NewMemory[T any](ttl time.Duration) *Memory[T] {
	return &Memory[T]{
		ttl:     ttl,
		entries: make(map[string]entry[T]),
	}
}

func (m *Memory[T]) Get(key string) (T, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		var zero T
		return zero, false
	}
	return e.value, true
}

func (m *Memory[T]) Set(key string, value T) {
	m.mu.Lock()
	m.entries[key] = entry[T]{value: value, expiresAt: time.Now().Add(m.ttl)}
	m.mu.Unlock()
}

func (m *Memory[T]) Invalidate(key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}
