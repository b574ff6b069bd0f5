package application

import (
	"sync"
	"time"

	"github.com/bnema/session-guard/internal/domain"
	"github.com/bnema/session-guard/internal/ports"
)

const defaultUnbanGrace = 10 * time.Second

// GraceTracker remembers recently unbanned names. A protected name is never
// targeted, even if a stale report or an old sweep snapshot says it is banned.
// Entries expire by clock comparison and are purged on lookup.
type GraceTracker struct {
	window time.Duration
	clock  ports.Clock

	mu      sync.Mutex
	entries map[string]time.Time
}

func NewGraceTracker(window time.Duration, clock ports.Clock) *GraceTracker {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &GraceTracker{
		window:  window,
		clock:   clock,
		entries: make(map[string]time.Time),
	}
}

// Protect starts or restarts the window for name.
func (g *GraceTracker) Protect(name string) {
	key := domain.NormalizeName(name)
	if key == "" {
		return
	}
	g.mu.Lock()
	g.entries[key] = g.clock.Now()
	g.mu.Unlock()
}

// Clear drops the entry for name and reports whether one existed.
func (g *GraceTracker) Clear(name string) bool {
	key := domain.NormalizeName(name)
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.entries[key]
	delete(g.entries, key)
	return ok
}

func (g *GraceTracker) IsProtected(name string) bool {
	key := domain.NormalizeName(name)
	if key == "" {
		return false
	}

	now := g.clock.Now()
	g.mu.Lock()
	defer g.mu.Unlock()

	since, ok := g.entries[key]
	if !ok {
		return false
	}
	if now.Sub(since) >= g.window {
		delete(g.entries, key)
		return false
	}
	return true
}

// Purge removes every expired entry and returns how many were removed.
func (g *GraceTracker) Purge() int {
	now := g.clock.Now()
	g.mu.Lock()
	defer g.mu.Unlock()

	removed := 0
	for key, since := range g.entries {
		if now.Sub(since) >= g.window {
			delete(g.entries, key)
			removed++
		}
	}
	return removed
}

func (g *GraceTracker) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}
