//go:build linux

package daemon

import (
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
)

// WakeMonitor listens on D-Bus for resume and unlock events. Both tend to
// leave the overlay window buried under whatever the session restored, so
// each one triggers an immediate reconciliation pass instead of waiting for
// the next ticker interval.
type WakeMonitor struct {
	conn       *dbus.Conn
	reconciler *Reconciler
	logger     *slog.Logger
}

// NewWakeMonitor creates a new wake monitor.
func NewWakeMonitor(reconciler *Reconciler, logger *slog.Logger) *WakeMonitor {
	return &WakeMonitor{
		reconciler: reconciler,
		logger:     logger,
	}
}

// Start subscribes to logind signals on the system bus.
func (m *WakeMonitor) Start() error {
	conn, err := dbus.SystemBus()
	if err != nil {
		return fmt.Errorf("failed to connect to system bus: %w", err)
	}
	m.conn = conn

	// PrepareForSleep fires with false on resume, Unlock when the session
	// is unlocked.
	if err := conn.AddMatchSignal(
		dbus.WithMatchInterface("org.freedesktop.login1.Manager"),
		dbus.WithMatchMember("PrepareForSleep"),
	); err != nil {
		return fmt.Errorf("failed to add sleep match rule: %w", err)
	}
	if err := conn.AddMatchSignal(
		dbus.WithMatchInterface("org.freedesktop.login1.Session"),
		dbus.WithMatchMember("Unlock"),
	); err != nil {
		return fmt.Errorf("failed to add unlock match rule: %w", err)
	}

	ch := make(chan *dbus.Signal, 10)
	conn.Signal(ch)
	go m.processSignals(ch)

	m.logger.Info("wake monitor started")
	return nil
}

// processSignals reads D-Bus signals and triggers reconciliation.
func (m *WakeMonitor) processSignals(ch chan *dbus.Signal) {
	for sig := range ch {
		switch sig.Name {
		case "org.freedesktop.login1.Manager.PrepareForSleep":
			if len(sig.Body) < 1 {
				continue
			}
			entering, ok := sig.Body[0].(bool)
			if !ok || entering {
				// true fires before suspend; only resume matters here.
				continue
			}
			m.logger.Info("system resumed, reconciling overlay state")
			m.reconciler.ReconcileNow()

		case "org.freedesktop.login1.Session.Unlock":
			m.logger.Info("session unlocked, reconciling overlay state")
			m.reconciler.ReconcileNow()
		}
	}
}

// Stop stops the monitor.
func (m *WakeMonitor) Stop() error {
	if m.conn != nil {
		return m.conn.Close()
	}
	return nil
}
