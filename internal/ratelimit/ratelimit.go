// Package ratelimit implements a fixed-window request throttle keyed by an
// arbitrary identifier, typically a client IP. State lives in process
// memory and resets on restart, which is acceptable only for a
// single-instance deployment.
package ratelimit

import (
	"sync"
	"time"
)

const sweepInterval = time.Minute

type entry struct {
	count     int
	resetTime time.Time
}

// Limiter throttles requests per identifier over a fixed window. One
// Limiter is built per concern (registration, login) and injected into the
// handlers that need it.
type Limiter struct {
	mu          sync.Mutex
	requests    map[string]*entry
	maxRequests int
	window      time.Duration
	stop        chan struct{}
	stopOnce    sync.Once
}

// New creates a limiter allowing maxRequests per window for each
// identifier and starts the background sweep that evicts expired entries.
func New(maxRequests int, window time.Duration) *Limiter {
	l := &Limiter{
		requests:    make(map[string]*entry),
		maxRequests: maxRequests,
		window:      window,
		stop:        make(chan struct{}),
	}
	go l.sweep()
	return l
}

// IsAllowed records a request from identifier and reports whether it is
// within the window budget. The first request of a window (or the first
// after expiry) always passes and opens a fresh window.
func (l *Limiter) IsAllowed(identifier string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.requests[identifier]
	if !ok || now.After(e.resetTime) {
		l.requests[identifier] = &entry{count: 1, resetTime: now.Add(l.window)}
		return true
	}

	if e.count >= l.maxRequests {
		return false
	}

	e.count++
	return true
}

// ResetTime returns how long until identifier's window expires, or zero if
// no window is open.
func (l *Limiter) ResetTime(identifier string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.requests[identifier]
	if !ok {
		return 0
	}
	remaining := time.Until(e.resetTime)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Stop terminates the background sweep. The limiter remains usable but no
// longer bounds its memory.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		close(l.stop)
	})
}

func (l *Limiter) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.evictExpired()
		case <-l.stop:
			return
		}
	}
}

func (l *Limiter) evictExpired() {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for id, e := range l.requests {
		if now.After(e.resetTime) {
			delete(l.requests, id)
		}
	}
}
