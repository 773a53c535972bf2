package rate

import (
	"sync"
	"time"
)

type window struct {
	count int
	start time.Time
}

// WindowLimiter is a fixed-window counter: limit hits per key per window.
type WindowLimiter struct {
	mu      sync.Mutex
	windows map[string]window
	limit   int
	size    time.Duration
	lastGC  time.Time
	now     func() time.Time
}

func NewWindowLimiter(limit int, size time.Duration, opts ...Option) *WindowLimiter {
	now := buildClock(opts)
	return &WindowLimiter{windows: map[string]window{}, limit: limit, size: size, lastGC: now(), now: now}
}

func windowExpired(w window, now time.Time, size time.Duration) bool {
	return now.Sub(w.start) >= size
}

func (l *WindowLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if now.Sub(l.lastGC) > time.Minute {
		l.sweep(now, 3*l.size)
		l.lastGC = now
	}
	w, ok := l.windows[key]
	if !ok || windowExpired(w, now, l.size) {
		l.windows[key] = window{count: 1, start: now}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	l.windows[key] = w
	return true
}

// Cleanup removes every window that has already closed.
func (l *WindowLimiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.lastGC = now
	return l.sweep(now, l.size)
}

func (l *WindowLimiter) sweep(now time.Time, age time.Duration) int {
	removed := 0
	for k, w := range l.windows {
		if windowExpired(w, now, age) {
			delete(l.windows, k)
			removed++
		}
	}
	return removed
}

func (l *WindowLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
