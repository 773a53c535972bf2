// Package cache holds the process-local TTL store and the HTTP caching
// headers served with cached resources.
package cache

import (
	"sync"
	"time"
)

type Entry struct {
	Data      any
	Timestamp time.Time
	TTL       time.Duration
}

func entryExpired(e Entry, now time.Time) bool {
	return now.Sub(e.Timestamp) > e.TTL
}

type Option func(*Memory)

func WithClock(now func() time.Time) Option {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// Memory is a single-process TTL map. Expired entries are dropped lazily on
// read and by Cleanup; nothing is shared across instances.
type Memory struct {
	mu      sync.Mutex
	entries map[string]Entry
	now     func() time.Time
}

func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		entries: map[string]Entry{},
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Set(key string, data any, ttlSeconds int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = Entry{
		Data:      data,
		Timestamp: m.now(),
		TTL:       time.Duration(ttlSeconds) * time.Second,
	}
}

// Get returns the stored value as-is; callers must not mutate it.
func (m *Memory) Get(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookup(key)
}

func (m *Memory) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.lookup(key)
	return ok
}

// lookup must be called with mu held.
func (m *Memory) lookup(key string) (any, bool) {
	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if entryExpired(e, m.now()) {
		delete(m.entries, key)
		return nil, false
	}
	return e.Data, true
}

func (m *Memory) Delete(key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

func (m *Memory) Clear() {
	m.mu.Lock()
	m.entries = map[string]Entry{}
	m.mu.Unlock()
}

// Size counts stored entries, including expired ones not yet swept.
func (m *Memory) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) Cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	removed := 0
	for k, e := range m.entries {
		if entryExpired(e, now) {
			delete(m.entries, k)
			removed++
		}
	}
	return removed
}
