package notes

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType describes a change to the note store.
type EventType int

const (
	// EventNoteChanged means the live note content was rewritten.
	EventNoteChanged EventType = iota

	// EventSnapshotsChanged means the snapshot history changed.
	EventSnapshotsChanged
)

// Event is emitted by Watch when the store changes on disk.
type Event struct {
	Type EventType
}

// Watch streams change events until ctx is cancelled. Rapid bursts of
// filesystem activity coalesce into one event per type; events are dropped
// rather than queued when the consumer lags, since a reload picks up
// everything anyway. The channel closes when ctx is done.
func (s *Store) Watch(ctx context.Context) (<-chan Event, error) {
	snapshotDir := filepath.Join(s.basePath, snapshotPrefix)
	if err := os.MkdirAll(snapshotDir, 0o755); err != nil {
		return nil, fmt.Errorf("notes: ensure snapshot directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("notes: create watcher: %w", err)
	}

	for _, dir := range []string{s.basePath, snapshotDir} {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("notes: watch %s: %w", dir, err)
		}
	}

	events := make(chan Event, 16)

	go func() {
		defer close(events)
		defer watcher.Close()

		throttle := newEventThrottle(100 * time.Millisecond)
		defer throttle.Stop()

		send := func(ev Event) {
			select {
			case events <- ev:
			default:
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}

				if filepath.Dir(evt.Name) == snapshotDir {
					throttle.Enqueue(Event{Type: EventSnapshotsChanged}, send)
				} else if filepath.Base(evt.Name) == currentKey {
					throttle.Enqueue(Event{Type: EventNoteChanged}, send)
				}
			}
		}
	}()

	return events, nil
}

// eventThrottle coalesces rapid change notifications so consumers redraw
// once per burst of filesystem activity instead of on every single write.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[EventType]struct{}
	delay   time.Duration
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[EventType]struct{}),
	}
}

func (t *eventThrottle) Enqueue(ev Event, send func(Event)) {
	t.mu.Lock()
	t.pending[ev.Type] = struct{}{}
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
	t.mu.Unlock()
}

func (t *eventThrottle) flush(send func(Event)) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[EventType]struct{})
	t.timer = nil
	t.mu.Unlock()

	for eventType := range pending {
		send(Event{Type: eventType})
	}
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
