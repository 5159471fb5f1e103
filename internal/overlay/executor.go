package overlay

// Executor runs a toggle sequence. The default spawns a goroutine so the
// trigger handler returns immediately; tests substitute a synchronous
// executor to observe the full sequence inline.
type Executor interface {
	Go(fn func())
}

// GoroutineExecutor runs each sequence on its own goroutine.
type GoroutineExecutor struct{}

func (GoroutineExecutor) Go(fn func()) {
	go fn()
}

// SyncExecutor runs the sequence on the calling goroutine.
type SyncExecutor struct{}

func (SyncExecutor) Go(fn func()) {
	fn()
}
