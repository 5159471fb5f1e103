package overlay

import "sync/atomic"

// ToggleGuard serializes toggle sequences. Acquisition is a single atomic
// test-and-set, so a hotkey trigger arriving while a sequence runs is
// dropped instead of queued.
type ToggleGuard struct {
	busy atomic.Bool
}

// TryAcquire attempts to take the guard. Returns false if a sequence is
// already in flight.
func (g *ToggleGuard) TryAcquire() bool {
	return g.busy.CompareAndSwap(false, true)
}

// Release frees the guard for the next trigger.
func (g *ToggleGuard) Release() {
	g.busy.Store(false)
}

// Held reports whether a sequence currently holds the guard.
func (g *ToggleGuard) Held() bool {
	return g.busy.Load()
}
