package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/hoverpad/internal/overlay"
	"github.com/1broseidon/hoverpad/internal/platform"
)

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically checks the overlay window for drift and corrects
// it. A window manager restart strips the always-on-top state, and some
// session managers unmap everything on lock; while the window is meant to
// be visible the reconciler puts it back the way it should be.
type Reconciler struct {
	interval    time.Duration
	coordinator *overlay.Coordinator
	driver      platform.Driver
	logger      *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, coordinator *overlay.Coordinator, driver platform.Driver) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}

	return &Reconciler{
		interval:    interval,
		coordinator: coordinator,
		driver:      driver,
		logger:      cfg.Logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile()
		}
	}
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	// Hidden needs no correcting, and Showing means the coordinator is
	// mid-sequence and will enforce on its own.
	if r.coordinator.State() != overlay.Visible {
		return
	}

	window := r.coordinator.Window()
	visible, err := r.driver.IsVisible(window)
	if err != nil {
		r.logger.Error("reconciler: failed to query window state", "error", err)
		return
	}

	if !visible {
		// Something external unmapped the window. Bring it back.
		r.logger.Info("reconciler: overlay window unmapped externally, restoring",
			"window", window)
		if err := r.coordinator.ForceToTop(); err != nil {
			r.logger.Warn("reconciler: failed to restore window", "error", err)
		}
		return
	}

	if err := r.coordinator.EnsureTopLevel(); err != nil {
		r.logger.Warn("reconciler: failed to re-assert overlay state", "error", err)
	}
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow() {
	r.reconcile()
}
