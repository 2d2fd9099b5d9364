package service

import (
	"context"
	"sync"
)

// RunGuard is exported so _test packages can exercise the guard directly.
type RunGuard = runGuard

// runGuard allows one in-flight run per key. Saved jobs use their ID as the
// key and one-shot conversions share oneShotKey.
type runGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
	idle chan struct{} // closed while nothing is held; nil means idle
}

// Acquire claims key. The returned release func must be called exactly once
// when ok is true.
func (g *runGuard) Acquire(key string) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.held[key]; busy {
		return nil, false
	}
	if g.held == nil {
		g.held = make(map[string]struct{})
	}
	if len(g.held) == 0 {
		g.idle = make(chan struct{})
	}
	g.held[key] = struct{}{}

	var once sync.Once
	return func() { once.Do(func() { g.release(key) }) }, true
}

func (g *runGuard) release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, key)
	if len(g.held) == 0 && g.idle != nil {
		close(g.idle)
		g.idle = nil
	}
}

// Held reports whether key is currently claimed.
func (g *runGuard) Held(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.held[key]
	return ok
}

// Wait blocks until no key is held or ctx is done.
func (g *runGuard) Wait(ctx context.Context) {
	g.mu.Lock()
	idle := g.idle
	g.mu.Unlock()
	if idle == nil {
		return
	}
	select {
	case <-idle:
	case <-ctx.Done():
	}
}
