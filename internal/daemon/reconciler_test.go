package daemon

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/1broseidon/hoverpad/internal/overlay"
	"github.com/1broseidon/hoverpad/internal/platform"
)

type fakeDriver struct {
	visible    bool
	visibleErr error

	showCalls  int
	applyCalls int
	raiseCalls int
}

func (d *fakeDriver) Displays() ([]platform.Display, error) {
	return []platform.Display{
		{ID: 1, Name: "eDP-1", Primary: true, Bounds: platform.Rect{Width: 1920, Height: 1080}},
	}, nil
}

func (d *fakeDriver) FindWindow(class, title string) (platform.WindowID, error) {
	return 1, nil
}

func (d *fakeDriver) WindowGeometry(id platform.WindowID) (platform.Rect, error) {
	return platform.Rect{Width: 400, Height: 300}, nil
}

func (d *fakeDriver) ShowWindow(id platform.WindowID) error {
	d.showCalls++
	d.visible = true
	return nil
}

func (d *fakeDriver) HideWindow(id platform.WindowID) error {
	d.visible = false
	return nil
}

func (d *fakeDriver) IsVisible(id platform.WindowID) (bool, error) {
	if d.visibleErr != nil {
		return false, d.visibleErr
	}
	return d.visible, nil
}

func (d *fakeDriver) MoveWindow(id platform.WindowID, x, y int) error { return nil }

func (d *fakeDriver) RaiseWindow(id platform.WindowID) error {
	d.raiseCalls++
	return nil
}

func (d *fakeDriver) ConvertToOverlay(id platform.WindowID, profile platform.OverlayProfile) error {
	return nil
}

func (d *fakeDriver) ApplyOverlay(id platform.WindowID, profile platform.OverlayProfile) error {
	d.applyCalls++
	return nil
}

func (d *fakeDriver) InspectWindow(id platform.WindowID) (platform.WindowInfo, error) {
	return platform.WindowInfo{ID: id}, nil
}

func (d *fakeDriver) EventLoop()  {}
func (d *fakeDriver) Disconnect() {}

func newTestReconciler(t *testing.T) (*Reconciler, *fakeDriver, *overlay.Coordinator) {
	t.Helper()

	d := &fakeDriver{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := overlay.NewCoordinator(overlay.CoordinatorConfig{Logger: logger}, d, 1)
	r := NewReconciler(ReconcilerConfig{Logger: logger}, c, d)
	return r, d, c
}

func TestNewReconciler_DefaultInterval(t *testing.T) {
	r, _, _ := newTestReconciler(t)
	if r.interval != 10*time.Second {
		t.Errorf("expected default interval 10s, got %v", r.interval)
	}
}

func TestReconciler_IdleWhileHidden(t *testing.T) {
	r, d, c := newTestReconciler(t)

	r.ReconcileNow()

	if c.State() != overlay.Hidden {
		t.Errorf("expected state to stay hidden, got %v", c.State())
	}
	if d.showCalls != 0 || d.applyCalls != 0 || d.raiseCalls != 0 {
		t.Errorf("expected no driver calls while hidden, got show=%d apply=%d raise=%d",
			d.showCalls, d.applyCalls, d.raiseCalls)
	}
}

func TestReconciler_ReassertsWhileVisible(t *testing.T) {
	r, d, c := newTestReconciler(t)

	// ForceToTop shows once and applies the profile once.
	if err := c.ForceToTop(); err != nil {
		t.Fatalf("ForceToTop failed: %v", err)
	}

	r.ReconcileNow()

	if d.showCalls != 1 {
		t.Errorf("expected no extra show, got %d", d.showCalls)
	}
	if d.applyCalls != 2 {
		t.Errorf("expected profile re-applied (2 total), got %d", d.applyCalls)
	}
}

func TestReconciler_RestoresUnmappedWindow(t *testing.T) {
	r, d, c := newTestReconciler(t)

	if err := c.ForceToTop(); err != nil {
		t.Fatalf("ForceToTop failed: %v", err)
	}

	// Simulate an external unmap.
	d.visible = false

	r.ReconcileNow()

	if d.showCalls != 2 {
		t.Errorf("expected window shown again, got %d show calls", d.showCalls)
	}
	if !d.visible {
		t.Error("expected window visible after restore")
	}
	if c.State() != overlay.Visible {
		t.Errorf("expected state visible, got %v", c.State())
	}
}

func TestReconciler_QueryErrorSkipsRestore(t *testing.T) {
	r, d, c := newTestReconciler(t)

	if err := c.ForceToTop(); err != nil {
		t.Fatalf("ForceToTop failed: %v", err)
	}
	d.visibleErr = errors.New("connection lost")

	r.ReconcileNow()

	if d.showCalls != 1 {
		t.Errorf("expected no restore on query error, got %d show calls", d.showCalls)
	}
	if d.applyCalls != 1 {
		t.Errorf("expected no re-assert on query error, got %d apply calls", d.applyCalls)
	}
}
