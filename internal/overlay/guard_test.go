package overlay

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestToggleGuard_SecondAcquireFails(t *testing.T) {
	var g ToggleGuard

	if !g.TryAcquire() {
		t.Fatalf("expected first acquire to succeed")
	}
	if g.TryAcquire() {
		t.Fatalf("expected second acquire to fail")
	}

	g.Release()
	if !g.TryAcquire() {
		t.Fatalf("expected acquire to succeed after release")
	}
}

func TestToggleGuard_ConcurrentAcquireAdmitsOne(t *testing.T) {
	var g ToggleGuard
	var acquired atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.TryAcquire() {
				acquired.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := acquired.Load(); got != 1 {
		t.Fatalf("expected exactly 1 acquisition, got %d", got)
	}
}
