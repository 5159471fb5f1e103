package overlay

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/1broseidon/hoverpad/internal/placement"
	"github.com/1broseidon/hoverpad/internal/platform"
)

const (
	// settleDelay gives the window manager time to finish mapping before
	// the first enforcement pass.
	settleDelay = 50 * time.Millisecond

	// enforceAttempts is the number of enforcement passes per show. Window
	// managers can silently drop properties applied to a freshly mapped
	// window, so every pass runs even when the previous one succeeded.
	enforceAttempts = 3

	// enforceRetryDelay separates consecutive enforcement passes.
	enforceRetryDelay = 25 * time.Millisecond

	// triggerCooldown is the minimum guard hold time, measured from trigger
	// receipt. Keyboard auto-repeat fires well inside this window, so a held
	// hotkey produces one toggle instead of a flicker.
	triggerCooldown = 200 * time.Millisecond
)

// CoordinatorConfig holds configuration for the toggle coordinator.
type CoordinatorConfig struct {
	MarginX int
	MarginY int
	Logger  *slog.Logger
}

// Coordinator owns the toggle lifecycle for the managed window: debouncing
// hotkey triggers, running the show/hide sequence, and keeping the recorded
// visibility state in step with what it did.
type Coordinator struct {
	driver   platform.Driver
	window   platform.WindowID
	enforcer *Enforcer
	store    *StateStore
	guard    *ToggleGuard
	executor Executor
	logger   *slog.Logger
	placed   atomic.Bool

	marginMu sync.Mutex
	marginX  int
	marginY  int

	// sleep is swapped out in tests to run sequences synchronously.
	sleep func(time.Duration)
}

// NewCoordinator creates a coordinator for the given window. The enforcer
// asserts the default overlay profile; margins come from configuration.
func NewCoordinator(cfg CoordinatorConfig, driver platform.Driver, window platform.WindowID) *Coordinator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	return &Coordinator{
		driver:   driver,
		window:   window,
		enforcer: NewEnforcer(driver, platform.DefaultProfile()),
		store:    NewStateStore(),
		guard:    &ToggleGuard{},
		executor: GoroutineExecutor{},
		logger:   logger,
		marginX:  cfg.MarginX,
		marginY:  cfg.MarginY,
		sleep:    time.Sleep,
	}
}

// HandleTrigger reacts to a hotkey press. It never blocks the caller: the
// guard is tested, the sequence is handed to the executor, and control
// returns immediately. A trigger arriving while the guard is held is
// dropped without touching the window.
func (c *Coordinator) HandleTrigger() {
	received := time.Now()

	if !c.guard.TryAcquire() {
		c.logger.Debug("toggle trigger dropped, sequence in flight")
		return
	}

	c.executor.Go(func() {
		defer c.releaseAfterCooldown(received)
		c.toggle()
	})
}

// releaseAfterCooldown frees the guard once the cooldown measured from
// trigger receipt has elapsed. Runs on every exit path of the sequence.
func (c *Coordinator) releaseAfterCooldown(received time.Time) {
	if remaining := triggerCooldown - time.Since(received); remaining > 0 {
		c.sleep(remaining)
	}
	c.guard.Release()
}

// toggle runs one show or hide sequence based on the window's live
// visibility. A failed visibility query is treated as hidden so the
// sequence errs toward showing the window.
func (c *Coordinator) toggle() {
	visible, err := c.driver.IsVisible(c.window)
	if err != nil {
		c.logger.Error("failed to query window visibility", "error", err)
		visible = false
	}

	if visible {
		c.hide()
	} else {
		c.show()
	}
}

// hide withdraws the window. A single platform call, no retries; if it
// fails the recorded state is left alone because the window is still up.
func (c *Coordinator) hide() {
	if err := c.driver.HideWindow(c.window); err != nil {
		c.logger.Error("failed to hide window", "error", err)
		return
	}
	c.store.Set(Hidden)
	c.logger.Debug("window hidden")
}

// show runs the full show sequence: place on first show, map, settle, then
// enforce the overlay profile. The recorded state reaches Visible only
// after every enforcement pass has run, whether or not they succeeded.
func (c *Coordinator) show() {
	c.store.Set(Showing)

	if !c.placed.Load() {
		c.placeInitial()
	}

	if err := c.driver.ShowWindow(c.window); err != nil {
		c.logger.Error("failed to show window", "error", err)
		c.store.Set(Hidden)
		return
	}

	c.sleep(settleDelay)
	c.enforceWithRetries()
	c.store.Set(Visible)
	c.logger.Debug("window visible")
}

// placeInitial pins the window to the top-right of the primary display.
// Geometry is read fresh from the window system each time. When no monitor
// is available the window stays where it is and the next show retries.
func (c *Coordinator) placeInitial() {
	displays, err := c.driver.Displays()
	if err != nil {
		c.logger.Error("failed to enumerate displays", "error", err)
		return
	}

	geom, err := c.driver.WindowGeometry(c.window)
	if err != nil {
		c.logger.Error("failed to read window geometry", "error", err)
		return
	}

	marginX, marginY := c.margins()
	pos, err := placement.TopRightOnPrimary(displays, geom, marginX, marginY)
	if err != nil {
		c.logger.Warn("skipping placement", "error", err)
		return
	}

	if err := c.driver.MoveWindow(c.window, pos.X, pos.Y); err != nil {
		c.logger.Error("failed to move window", "error", err)
		return
	}

	c.placed.Store(true)
	c.logger.Debug("window placed", "x", pos.X, "y", pos.Y)
}

// enforceWithRetries asserts the overlay profile enforceAttempts times with
// a short delay between passes. Failures are logged and absorbed; a drifted
// window is a cosmetic problem, a crashed daemon is not.
func (c *Coordinator) enforceWithRetries() {
	for attempt := 1; attempt <= enforceAttempts; attempt++ {
		if err := c.enforcer.Enforce(c.window); err != nil {
			c.logger.Warn("enforcement attempt failed", "attempt", attempt, "error", err)
		}
		if attempt < enforceAttempts {
			c.sleep(enforceRetryDelay)
		}
	}
}

// ForceToTop shows the window and re-asserts the overlay profile in one
// shot. Unlike the toggle sequence this runs unguarded; every call makes
// the same platform calls, so overlapping invocations converge.
func (c *Coordinator) ForceToTop() error {
	if err := c.driver.ShowWindow(c.window); err != nil {
		return fmt.Errorf("failed to show window: %w", err)
	}
	if err := c.enforcer.Enforce(c.window); err != nil {
		return err
	}
	if err := c.driver.RaiseWindow(c.window); err != nil {
		return fmt.Errorf("failed to raise window: %w", err)
	}
	c.store.Set(Visible)
	return nil
}

// PositionTopRight moves the window to the top-right corner of the primary
// display using its current geometry, and returns the position it moved to.
func (c *Coordinator) PositionTopRight() (placement.Position, error) {
	displays, err := c.driver.Displays()
	if err != nil {
		return placement.Position{}, fmt.Errorf("failed to enumerate displays: %w", err)
	}

	geom, err := c.driver.WindowGeometry(c.window)
	if err != nil {
		return placement.Position{}, fmt.Errorf("failed to read window geometry: %w", err)
	}

	marginX, marginY := c.margins()
	pos, err := placement.TopRightOnPrimary(displays, geom, marginX, marginY)
	if err != nil {
		return placement.Position{}, err
	}

	if err := c.driver.MoveWindow(c.window, pos.X, pos.Y); err != nil {
		return placement.Position{}, fmt.Errorf("failed to move window: %w", err)
	}

	c.placed.Store(true)
	return pos, nil
}

// SchedulePlacement hands a delayed top-right placement to the executor
// and returns immediately. Used once at startup, after the window manager
// has had time to settle the freshly discovered window; failures are
// logged and the next show retries placement anyway.
func (c *Coordinator) SchedulePlacement(delay time.Duration) {
	c.executor.Go(func() {
		c.sleep(delay)
		if _, err := c.PositionTopRight(); err != nil {
			c.logger.Warn("startup placement failed", "error", err)
		}
	})
}

// EnsureTopLevel re-asserts the overlay profile without changing
// visibility.
func (c *Coordinator) EnsureTopLevel() error {
	return c.enforcer.Enforce(c.window)
}

// UpdateMargins swaps the placement margins. The new values apply from the
// next placement on; an already positioned window is not moved.
func (c *Coordinator) UpdateMargins(marginX, marginY int) {
	c.marginMu.Lock()
	defer c.marginMu.Unlock()
	c.marginX = marginX
	c.marginY = marginY
}

func (c *Coordinator) margins() (int, int) {
	c.marginMu.Lock()
	defer c.marginMu.Unlock()
	return c.marginX, c.marginY
}

// DebugInfo returns a human-readable report of the managed window.
func (c *Coordinator) DebugInfo() (string, error) {
	info, err := c.driver.InspectWindow(c.window)
	if err != nil {
		return "", fmt.Errorf("failed to inspect window: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "window:    0x%x", uint32(info.ID))
	if info.Class != "" {
		fmt.Fprintf(&b, " (%s)", info.Class)
	}
	b.WriteString("\n")
	if info.Title != "" {
		fmt.Fprintf(&b, "title:     %s\n", info.Title)
	}
	fmt.Fprintf(&b, "geometry:  %dx%d at (%d, %d)\n", info.Bounds.Width, info.Bounds.Height, info.Bounds.X, info.Bounds.Y)
	fmt.Fprintf(&b, "mapped:    %t\n", info.Visible)
	fmt.Fprintf(&b, "state:     %s\n", c.store.Get())
	if info.Desktop == platform.AllDesktops {
		b.WriteString("desktop:   all\n")
	} else {
		fmt.Fprintf(&b, "desktop:   %d\n", info.Desktop)
	}
	if len(info.States) > 0 {
		fmt.Fprintf(&b, "wm states: %s\n", strings.Join(info.States, ", "))
	}
	fmt.Fprintf(&b, "placed:    %t\n", c.placed.Load())
	fmt.Fprintf(&b, "guard:     held=%t\n", c.guard.Held())
	return b.String(), nil
}

// State returns the recorded visibility state.
func (c *Coordinator) State() Visibility {
	return c.store.Get()
}

// InFlight reports whether a toggle sequence is currently running.
func (c *Coordinator) InFlight() bool {
	return c.guard.Held()
}

// Window returns the managed window id.
func (c *Coordinator) Window() platform.WindowID {
	return c.window
}
