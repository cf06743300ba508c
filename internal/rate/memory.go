package rate

import (
	"sync"
	"time"
)

type window struct {
	count int
	start time.Time
}

// Limiter is a fixed-window in-memory rate limiter keyed by caller.
// Stale windows are swept opportunistically on the locked path.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]window
	lastGC  time.Time
	now     func() time.Time
}

func NewLimiter() *Limiter {
	return &Limiter{windows: map[string]window{}, lastGC: time.Now().UTC(), now: func() time.Time { return time.Now().UTC() }}
}

func (l *Limiter) Allow(key string, limit int, span time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if now.Sub(l.lastGC) > time.Minute {
		for k, w := range l.windows {
			if now.Sub(w.start) > 3*span {
				delete(l.windows, k)
			}
		}
		l.lastGC = now
	}
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= span {
		l.windows[key] = window{count: 1, start: now}
		return true
	}
	if w.count >= limit {
		return false
	}
	w.count++
	l.windows[key] = w
	return true
}
