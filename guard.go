package mediabridge

import (
	"sync"
)

// lifecycleGuard enforces the session's teardown contract: teardown runs
// exactly once, no new operation may start after it begins, and the handle
// is not released while an in-flight one-shot operation still references it.
//
// Registration happens under the read lock and shutdown takes the write
// lock, so every ops.Add strictly precedes a shutdown that could observe it.
// Once beginShutdown returns, no further Add can start, which keeps wait()
// inside the WaitGroup contract (no Add concurrent with Wait from zero).
type lifecycleGuard struct {
	mu     sync.RWMutex
	closed bool
	ops    sync.WaitGroup
}

// enter registers an in-flight operation. Returns false if teardown has
// begun, in which case the caller must not touch the handle.
func (g *lifecycleGuard) enter() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.closed {
		return false
	}
	g.ops.Add(1)
	return true
}

// leave unregisters an in-flight operation.
func (g *lifecycleGuard) leave() {
	g.ops.Done()
}

// beginShutdown flips the guard. Exactly one caller wins and performs the
// real teardown; concurrent or repeated callers get false.
func (g *lifecycleGuard) beginShutdown() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return false
	}
	g.closed = true
	return true
}

// wait blocks until every counted operation has left. Call only after
// beginShutdown has returned.
func (g *lifecycleGuard) wait() {
	g.ops.Wait()
}
