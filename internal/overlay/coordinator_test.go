package overlay

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/hoverpad/internal/platform"
)

// fakeDriver records platform calls and returns scripted results.
type fakeDriver struct {
	mu sync.Mutex

	displays    []platform.Display
	displaysErr error
	geometry    platform.Rect
	geometryErr error
	visible     bool
	visibleErr  error
	showErr     error
	hideErr     error
	moveErr     error
	applyErr    error
	raiseErr    error

	displayCalls int
	showCalls    int
	hideCalls    int
	applyCalls   int
	raiseCalls   int
	moves        []moveCall
}

type moveCall struct {
	x, y int
}

func (f *fakeDriver) Displays() ([]platform.Display, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.displayCalls++
	return f.displays, f.displaysErr
}

func (f *fakeDriver) FindWindow(class, titleSubstring string) (platform.WindowID, error) {
	return 7, nil
}

func (f *fakeDriver) WindowGeometry(id platform.WindowID) (platform.Rect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.geometry, f.geometryErr
}

func (f *fakeDriver) ShowWindow(id platform.WindowID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.showCalls++
	if f.showErr != nil {
		return f.showErr
	}
	f.visible = true
	return nil
}

func (f *fakeDriver) HideWindow(id platform.WindowID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hideCalls++
	if f.hideErr != nil {
		return f.hideErr
	}
	f.visible = false
	return nil
}

func (f *fakeDriver) IsVisible(id platform.WindowID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visible, f.visibleErr
}

func (f *fakeDriver) MoveWindow(id platform.WindowID, x, y int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.moveErr != nil {
		return f.moveErr
	}
	f.moves = append(f.moves, moveCall{x, y})
	return nil
}

func (f *fakeDriver) RaiseWindow(id platform.WindowID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raiseCalls++
	return f.raiseErr
}

func (f *fakeDriver) ConvertToOverlay(id platform.WindowID, profile platform.OverlayProfile) error {
	return nil
}

func (f *fakeDriver) ApplyOverlay(id platform.WindowID, profile platform.OverlayProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applyCalls++
	return f.applyErr
}

func (f *fakeDriver) InspectWindow(id platform.WindowID) (platform.WindowInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return platform.WindowInfo{
		ID:      id,
		Class:   "Hoverpad",
		Bounds:  f.geometry,
		Visible: f.visible,
		Desktop: platform.AllDesktops,
		States:  []string{"_NET_WM_STATE_ABOVE"},
	}, nil
}

func (f *fakeDriver) EventLoop()  {}
func (f *fakeDriver) Disconnect() {}

func (f *fakeDriver) counts() (shows, hides, applies, moves int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.showCalls, f.hideCalls, f.applyCalls, len(f.moves)
}

// queueExecutor holds sequences instead of running them, so tests control
// exactly when the guard is released.
type queueExecutor struct {
	fns []func()
}

func (q *queueExecutor) Go(fn func()) {
	q.fns = append(q.fns, fn)
}

func (q *queueExecutor) drain() {
	for _, fn := range q.fns {
		fn()
	}
	q.fns = nil
}

func newTestDriver() *fakeDriver {
	return &fakeDriver{
		displays: []platform.Display{
			{ID: 0, Name: "eDP-1", Primary: true, Bounds: platform.Rect{Width: 1920, Height: 1080}},
		},
		geometry: platform.Rect{X: 0, Y: 0, Width: 400, Height: 300},
	}
}

func newTestCoordinator(d *fakeDriver) (*Coordinator, *queueExecutor, *[]time.Duration) {
	c := NewCoordinator(CoordinatorConfig{
		MarginX: 20,
		MarginY: 40,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, d, 7)

	q := &queueExecutor{}
	c.executor = q

	var sleeps []time.Duration
	c.sleep = func(d time.Duration) {
		sleeps = append(sleeps, d)
	}
	return c, q, &sleeps
}

func TestCoordinator_ShowSequence(t *testing.T) {
	d := newTestDriver()
	c, q, sleeps := newTestCoordinator(d)

	c.HandleTrigger()
	q.drain()

	shows, _, applies, moves := d.counts()
	if shows != 1 {
		t.Fatalf("expected 1 show call, got %d", shows)
	}
	if applies != 3 {
		t.Fatalf("expected 3 enforcement passes, got %d", applies)
	}
	if moves != 1 {
		t.Fatalf("expected 1 move, got %d", moves)
	}
	// x = 1920 - 400 - 20 = 1500, y = 40
	if d.moves[0] != (moveCall{1500, 40}) {
		t.Fatalf("expected move to (1500, 40), got (%d, %d)", d.moves[0].x, d.moves[0].y)
	}
	if c.State() != Visible {
		t.Fatalf("expected state visible, got %s", c.State())
	}
	if c.guard.Held() {
		t.Fatalf("expected guard released after sequence")
	}

	// settle, two inter-attempt delays, then the cooldown remainder
	got := *sleeps
	if len(got) != 4 {
		t.Fatalf("expected 4 sleeps, got %d (%v)", len(got), got)
	}
	if got[0] != settleDelay {
		t.Fatalf("expected settle delay %v, got %v", settleDelay, got[0])
	}
	if got[1] != enforceRetryDelay || got[2] != enforceRetryDelay {
		t.Fatalf("expected retry delays %v, got %v and %v", enforceRetryDelay, got[1], got[2])
	}
	if got[3] <= 0 || got[3] > triggerCooldown {
		t.Fatalf("expected cooldown remainder in (0, %v], got %v", triggerCooldown, got[3])
	}
}

func TestCoordinator_ToggleRoundTrip(t *testing.T) {
	d := newTestDriver()
	c, q, _ := newTestCoordinator(d)

	c.HandleTrigger()
	q.drain()
	if c.State() != Visible {
		t.Fatalf("expected visible after first toggle, got %s", c.State())
	}

	c.HandleTrigger()
	q.drain()
	if c.State() != Hidden {
		t.Fatalf("expected hidden after second toggle, got %s", c.State())
	}

	_, hides, _, _ := d.counts()
	if hides != 1 {
		t.Fatalf("expected 1 hide call, got %d", hides)
	}

	// Third toggle shows again but must not re-place the window.
	c.HandleTrigger()
	q.drain()
	if c.State() != Visible {
		t.Fatalf("expected visible after third toggle, got %s", c.State())
	}
	shows, _, _, moves := d.counts()
	if shows != 2 {
		t.Fatalf("expected 2 show calls, got %d", shows)
	}
	if moves != 1 {
		t.Fatalf("expected placement to run once, got %d moves", moves)
	}
}

func TestCoordinator_BurstCollapsesToOneToggle(t *testing.T) {
	d := newTestDriver()
	c, q, _ := newTestCoordinator(d)

	for i := 0; i < 5; i++ {
		c.HandleTrigger()
	}

	if len(q.fns) != 1 {
		t.Fatalf("expected 1 queued sequence, got %d", len(q.fns))
	}

	q.drain()

	shows, hides, _, _ := d.counts()
	if shows != 1 || hides != 0 {
		t.Fatalf("expected exactly 1 show and 0 hides, got %d and %d", shows, hides)
	}
	if c.State() != Visible {
		t.Fatalf("expected state visible, got %s", c.State())
	}
}

func TestCoordinator_TriggerWhileGuardHeldTouchesNothing(t *testing.T) {
	d := newTestDriver()
	c, q, _ := newTestCoordinator(d)

	if !c.guard.TryAcquire() {
		t.Fatalf("failed to acquire guard")
	}

	c.HandleTrigger()

	if len(q.fns) != 0 {
		t.Fatalf("expected no queued sequence, got %d", len(q.fns))
	}
	shows, hides, applies, moves := d.counts()
	if shows != 0 || hides != 0 || applies != 0 || moves != 0 {
		t.Fatalf("expected zero platform calls, got shows=%d hides=%d applies=%d moves=%d",
			shows, hides, applies, moves)
	}
	if c.State() != Hidden {
		t.Fatalf("expected state unchanged, got %s", c.State())
	}

	c.guard.Release()
}

func TestCoordinator_EnforcementFailuresAbsorbed(t *testing.T) {
	d := newTestDriver()
	d.applyErr = errors.New("BadWindow")
	c, q, _ := newTestCoordinator(d)

	c.HandleTrigger()
	q.drain()

	_, _, applies, _ := d.counts()
	if applies != 3 {
		t.Fatalf("expected all 3 enforcement passes despite failures, got %d", applies)
	}
	if c.State() != Visible {
		t.Fatalf("expected state visible despite enforcement failures, got %s", c.State())
	}
	if c.guard.Held() {
		t.Fatalf("expected guard released despite enforcement failures")
	}
}

func TestCoordinator_GuardReleasedWhenShowFails(t *testing.T) {
	d := newTestDriver()
	d.showErr = errors.New("window gone")
	c, q, _ := newTestCoordinator(d)

	c.HandleTrigger()
	q.drain()

	if c.State() != Hidden {
		t.Fatalf("expected state hidden after failed show, got %s", c.State())
	}
	if c.guard.Held() {
		t.Fatalf("expected guard released after failed show")
	}
	_, _, applies, _ := d.counts()
	if applies != 0 {
		t.Fatalf("expected no enforcement after failed show, got %d passes", applies)
	}
}

func TestCoordinator_PlacementRetriesAfterNoMonitors(t *testing.T) {
	d := newTestDriver()
	d.displays = nil
	c, q, _ := newTestCoordinator(d)

	c.HandleTrigger()
	q.drain()

	shows, _, _, moves := d.counts()
	if shows != 1 {
		t.Fatalf("expected show to proceed without placement, got %d shows", shows)
	}
	if moves != 0 {
		t.Fatalf("expected no move without monitors, got %d", moves)
	}
	if c.State() != Visible {
		t.Fatalf("expected state visible, got %s", c.State())
	}

	// Monitor appears; the next show retries placement.
	d.mu.Lock()
	d.displays = []platform.Display{
		{ID: 0, Name: "eDP-1", Primary: true, Bounds: platform.Rect{Width: 1920, Height: 1080}},
	}
	d.mu.Unlock()

	c.HandleTrigger()
	q.drain()
	if c.State() != Hidden {
		t.Fatalf("expected hidden after toggle, got %s", c.State())
	}

	c.HandleTrigger()
	q.drain()
	_, _, _, moves = d.counts()
	if moves != 1 {
		t.Fatalf("expected placement to retry once monitors exist, got %d moves", moves)
	}
}

func TestCoordinator_VisibilityQueryErrorShowsWindow(t *testing.T) {
	d := newTestDriver()
	d.visibleErr = errors.New("connection reset")
	c, q, _ := newTestCoordinator(d)

	c.HandleTrigger()
	q.drain()

	shows, hides, _, _ := d.counts()
	if shows != 1 || hides != 0 {
		t.Fatalf("expected show path on visibility error, got shows=%d hides=%d", shows, hides)
	}
}

func TestCoordinator_ForceToTop(t *testing.T) {
	d := newTestDriver()
	c, _, _ := newTestCoordinator(d)

	if err := c.ForceToTop(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	shows, _, applies, _ := d.counts()
	if shows != 1 {
		t.Fatalf("expected 1 show call, got %d", shows)
	}
	if applies != 1 {
		t.Fatalf("expected 1 enforcement pass, got %d", applies)
	}
	if d.raiseCalls != 1 {
		t.Fatalf("expected 1 raise call, got %d", d.raiseCalls)
	}
	if c.State() != Visible {
		t.Fatalf("expected state visible, got %s", c.State())
	}
}

func TestCoordinator_PositionTopRight(t *testing.T) {
	d := newTestDriver()
	c, q, _ := newTestCoordinator(d)

	pos, err := c.PositionTopRight()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos.X != 1500 || pos.Y != 40 {
		t.Fatalf("expected (1500, 40), got (%d, %d)", pos.X, pos.Y)
	}

	// The explicit command counts as placement; the next show skips it.
	c.HandleTrigger()
	q.drain()
	_, _, _, moves := d.counts()
	if moves != 1 {
		t.Fatalf("expected no re-placement on show, got %d moves", moves)
	}
}

func TestCoordinator_PositionTopRightNoMonitors(t *testing.T) {
	d := newTestDriver()
	d.displays = nil
	c, _, _ := newTestCoordinator(d)

	_, err := c.PositionTopRight()
	if err == nil {
		t.Fatalf("expected error without monitors")
	}
}

func TestCoordinator_SchedulePlacement(t *testing.T) {
	d := newTestDriver()
	c, q, sleeps := newTestCoordinator(d)

	c.SchedulePlacement(100 * time.Millisecond)

	_, _, _, moves := d.counts()
	if moves != 0 {
		t.Fatalf("expected no move before the executor runs, got %d", moves)
	}

	q.drain()

	got := *sleeps
	if len(got) != 1 || got[0] != 100*time.Millisecond {
		t.Fatalf("expected one 100ms delay, got %v", got)
	}
	_, _, _, moves = d.counts()
	if moves != 1 {
		t.Fatalf("expected 1 move after drain, got %d", moves)
	}
	if d.moves[0] != (moveCall{1500, 40}) {
		t.Fatalf("expected move to (1500, 40), got (%d, %d)", d.moves[0].x, d.moves[0].y)
	}
}

func TestCoordinator_DebugInfo(t *testing.T) {
	d := newTestDriver()
	c, _, _ := newTestCoordinator(d)

	info, err := c.DebugInfo()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"geometry:  400x300", "state:     hidden", "desktop:   all", "_NET_WM_STATE_ABOVE"} {
		if !strings.Contains(info, want) {
			t.Fatalf("expected debug info to contain %q, got:\n%s", want, info)
		}
	}
}
