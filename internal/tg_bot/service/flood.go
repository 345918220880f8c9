package service

import (
	"sync"
	"time"
)

// floodGuard drops messages of a chat that arrive within window of the last accepted one.
type floodGuard struct {
	window time.Duration
	mu     sync.Mutex
	last   map[int64]time.Time
}

func newFloodGuard(window time.Duration) *floodGuard {
	return &floodGuard{window: window, last: make(map[int64]time.Time)}
}

// Allow reports whether a message of chatID received at now should be processed.
// Dropped messages do not extend the window.
func (g *floodGuard) Allow(chatID int64, now time.Time) bool {
	if g.window <= 0 {
		return true
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if last, ok := g.last[chatID]; ok && now.Sub(last) < g.window {
		return false
	}
	g.last[chatID] = now
	return true
}
