//go:build !linux

package daemon

import "log/slog"

// WakeMonitor is a no-op on platforms without logind. The reconciler's
// ticker still covers drift after sleep, just without the immediate pass.
type WakeMonitor struct{}

// NewWakeMonitor creates a new wake monitor.
func NewWakeMonitor(reconciler *Reconciler, logger *slog.Logger) *WakeMonitor {
	return &WakeMonitor{}
}

// Start is a no-op.
func (m *WakeMonitor) Start() error { return nil }

// Stop is a no-op.
func (m *WakeMonitor) Stop() error { return nil }
