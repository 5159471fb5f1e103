package overlay

import "sync"

// Visibility is the coordinator's own record of where the window is in its
// lifecycle. It is not read back from the window system; the show sequence
// advances it explicitly.
type Visibility int

const (
	// Hidden means the window is withdrawn. This is the initial state.
	Hidden Visibility = iota
	// Showing means the show sequence has started but enforcement has not
	// finished yet.
	Showing
	// Visible means the show sequence completed, including all enforcement
	// attempts.
	Visible
)

func (v Visibility) String() string {
	switch v {
	case Hidden:
		return "hidden"
	case Showing:
		return "showing"
	case Visible:
		return "visible"
	default:
		return "unknown"
	}
}

// StateStore holds the current visibility state. Reads can come from any
// goroutine (IPC status, reconciler) while the toggle sequence writes.
type StateStore struct {
	mu    sync.RWMutex
	state Visibility
}

// NewStateStore returns a store in the Hidden state.
func NewStateStore() *StateStore {
	return &StateStore{state: Hidden}
}

// Get returns the current visibility state.
func (s *StateStore) Get() Visibility {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Set records a new visibility state.
func (s *StateStore) Set(v Visibility) {
	s.mu.Lock()
	s.state = v
	s.mu.Unlock()
}
