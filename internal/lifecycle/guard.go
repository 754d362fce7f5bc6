// Package lifecycle suppresses state writes from async work that finishes
// after its owning view has been torn down.
package lifecycle

import (
	"errors"
	"sync"
)

// ErrStale marks a result that arrived after teardown and was discarded.
var ErrStale = errors.New("lifecycle: result arrived after teardown")

// Guard is a live flag plus teardown hooks. The zero value is alive.
type Guard struct {
	mu    sync.Mutex
	dead  bool
	hooks []func()
}

// Alive reports whether Teardown has not yet run.
func (g *Guard) Alive() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.dead
}

// Check returns ErrStale after teardown.
func (g *Guard) Check() error {
	if !g.Alive() {
		return ErrStale
	}
	return nil
}

// OnTeardown registers fn to run at teardown. If the guard is already torn
// down fn runs immediately.
func (g *Guard) OnTeardown(fn func()) {
	g.mu.Lock()
	if g.dead {
		g.mu.Unlock()
		fn()
		return
	}
	g.hooks = append(g.hooks, fn)
	g.mu.Unlock()
}

// Teardown marks the guard dead and runs hooks in reverse registration
// order. Later calls do nothing.
func (g *Guard) Teardown() {
	g.mu.Lock()
	if g.dead {
		g.mu.Unlock()
		return
	}
	g.dead = true
	hooks := g.hooks
	g.hooks = nil
	g.mu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}
}
