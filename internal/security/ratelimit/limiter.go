package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a sliding-window rate limiter keyed by an arbitrary
// identifier (the middleware keys it by client IP).
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	max     int
	span    time.Duration
	sweeper *time.Ticker
	done    chan struct{}
}

type window struct {
	hits     []time.Time
	lastSeen time.Time
}

func NewLimiter(maxRequests int, span time.Duration) *Limiter {
	l := &Limiter{
		windows: make(map[string]*window),
		max:     maxRequests,
		span:    span,
		sweeper: time.NewTicker(5 * time.Minute),
		done:    make(chan struct{}),
	}
	go l.sweep()
	return l
}

// Allow records a hit for key and reports whether it is within the limit.
// An empty key is never limited.
func (l *Limiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.windows[key]
	if !ok {
		w = &window{}
		l.windows[key] = w
	}

	cutoff := now.Add(-l.span)
	kept := w.hits[:0]
	for _, t := range w.hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	w.hits = kept
	w.lastSeen = now

	if len(w.hits) >= l.max {
		return false
	}
	w.hits = append(w.hits, now)
	return true
}

func (l *Limiter) sweep() {
	for {
		select {
		case <-l.done:
			return
		case <-l.sweeper.C:
			stale := time.Now().Add(-15 * time.Minute)
			l.mu.Lock()
			for key, w := range l.windows {
				if w.lastSeen.Before(stale) {
					delete(l.windows, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

func (l *Limiter) Stop() {
	l.sweeper.Stop()
	close(l.done)
}
