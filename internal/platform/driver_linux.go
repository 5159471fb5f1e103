//go:build linux

package platform

import (
	"fmt"
	"os"

	"github.com/1broseidon/hoverpad/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// Overlay state atoms asserted on the managed window. The WM can silently
// drop any of these on space switches or restarts, which is why ApplyOverlay
// re-asserts all of them instead of applying once.
const (
	stateAbove       = "_NET_WM_STATE_ABOVE"
	stateSticky      = "_NET_WM_STATE_STICKY"
	stateSkipTaskbar = "_NET_WM_STATE_SKIP_TASKBAR"
	stateSkipPager   = "_NET_WM_STATE_SKIP_PAGER"

	windowTypeUtility = "_NET_WM_WINDOW_TYPE_UTILITY"
)

// X11Driver implements Driver on top of an X11 connection.
type X11Driver struct {
	conn *x11.Connection
}

var _ Driver = (*X11Driver)(nil)

// NewDriver opens a fresh X11 connection and wraps it as a Driver. The
// authority override goes through the environment because xgb reads
// XAUTHORITY itself during the handshake.
func NewDriver(opts Options) (Driver, error) {
	if opts.XAuthority != "" {
		if err := os.Setenv("XAUTHORITY", opts.XAuthority); err != nil {
			return nil, fmt.Errorf("failed to set XAUTHORITY: %w", err)
		}
	}

	conn, err := x11.NewConnection(opts.Display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &X11Driver{conn: conn}, nil
}

// NewX11Driver wraps an existing X11 connection.
func NewX11Driver(conn *x11.Connection) *X11Driver {
	return &X11Driver{conn: conn}
}

// EventLoop starts the X11 event loop (blocking).
func (d *X11Driver) EventLoop() {
	if d != nil && d.conn != nil {
		d.conn.EventLoop()
	}
}

// Disconnect closes the underlying X11 connection.
func (d *X11Driver) Disconnect() {
	if d != nil && d.conn != nil {
		d.conn.Close()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (d *X11Driver) XUtil() *xgbutil.XUtil {
	if d == nil || d.conn == nil {
		return nil
	}
	return d.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (d *X11Driver) RootWindow() xproto.Window {
	if d == nil || d.conn == nil {
		return 0
	}
	return d.conn.Root
}

// Displays returns all active displays.
func (d *X11Driver) Displays() ([]Display, error) {
	conn, err := d.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, Display{
			ID:      m.ID,
			Name:    m.Name,
			Primary: m.Primary,
			Bounds: Rect{
				X:      m.X,
				Y:      m.Y,
				Width:  m.Width,
				Height: m.Height,
			},
		})
	}

	return displays, nil
}

// FindWindow locates the window to adopt, matching WM_CLASS first and
// falling back to a title substring when given.
func (d *X11Driver) FindWindow(class, titleSubstring string) (WindowID, error) {
	conn, err := d.connection()
	if err != nil {
		return 0, err
	}

	id, classErr := conn.FindWindowByClass(class)
	if classErr == nil {
		return WindowID(id), nil
	}

	if titleSubstring != "" {
		if id, err := conn.FindWindowByTitle(titleSubstring); err == nil {
			return WindowID(id), nil
		}
	}

	return 0, classErr
}

// WindowGeometry returns the window's current geometry in root coordinates.
func (d *X11Driver) WindowGeometry(id WindowID) (Rect, error) {
	conn, err := d.connection()
	if err != nil {
		return Rect{}, err
	}

	geom, err := conn.GetWindowGeometry(uint32(id))
	if err != nil {
		return Rect{}, err
	}
	return Rect{X: geom.X, Y: geom.Y, Width: geom.Width, Height: geom.Height}, nil
}

// ShowWindow maps the window.
func (d *X11Driver) ShowWindow(id WindowID) error {
	conn, err := d.connection()
	if err != nil {
		return err
	}
	return conn.MapWindow(uint32(id))
}

// HideWindow withdraws the window.
func (d *X11Driver) HideWindow(id WindowID) error {
	conn, err := d.connection()
	if err != nil {
		return err
	}
	return conn.UnmapWindow(uint32(id))
}

// IsVisible reports whether the window is currently viewable.
func (d *X11Driver) IsVisible(id WindowID) (bool, error) {
	conn, err := d.connection()
	if err != nil {
		return false, err
	}
	return conn.IsViewable(uint32(id))
}

// MoveWindow moves the window to the given root coordinates.
func (d *X11Driver) MoveWindow(id WindowID, x, y int) error {
	conn, err := d.connection()
	if err != nil {
		return err
	}
	return conn.MoveWindow(uint32(id), x, y)
}

// RaiseWindow restacks the window above all siblings.
func (d *X11Driver) RaiseWindow(id WindowID) error {
	conn, err := d.connection()
	if err != nil {
		return err
	}
	return conn.RaiseWindow(uint32(id))
}

// ConvertToOverlay performs the one-time panel conversion: utility window
// type plus a passive input hint so the WM never hands the window keyboard
// focus, then a first assertion of the overlay profile.
func (d *X11Driver) ConvertToOverlay(id WindowID, profile OverlayProfile) error {
	conn, err := d.connection()
	if err != nil {
		return err
	}

	if profile.NonActivating {
		if err := conn.SetWindowType(uint32(id), windowTypeUtility); err != nil {
			return err
		}
		if err := conn.DisableInputFocus(uint32(id)); err != nil {
			return err
		}
	}

	return d.ApplyOverlay(id, profile)
}

// ApplyOverlay re-asserts the overlay profile on the window. X11 has no
// numeric window levels; _NET_WM_STATE_ABOVE plus an explicit restack is
// the strongest priority the protocol offers, so any positive Level maps
// to that.
func (d *X11Driver) ApplyOverlay(id WindowID, profile OverlayProfile) error {
	conn, err := d.connection()
	if err != nil {
		return err
	}
	win := uint32(id)

	if profile.AlwaysOnTop || profile.Level > 0 {
		if err := conn.AddWindowStates(win, stateAbove); err != nil {
			return err
		}
		if err := conn.RaiseWindow(win); err != nil {
			return err
		}
	}

	if profile.AllWorkspaces {
		if err := conn.AddWindowStates(win, stateSticky); err != nil {
			return err
		}
		if err := conn.SetWindowDesktop(win, x11.AllDesktops); err != nil {
			return err
		}
	}

	if profile.NonActivating {
		if err := conn.AddWindowStates(win, stateSkipTaskbar, stateSkipPager); err != nil {
			return err
		}
	}

	return nil
}

// InspectWindow returns a diagnostic snapshot of the window's live state.
func (d *X11Driver) InspectWindow(id WindowID) (WindowInfo, error) {
	conn, err := d.connection()
	if err != nil {
		return WindowInfo{}, err
	}
	win := uint32(id)

	info := WindowInfo{
		ID:    id,
		Class: conn.GetWindowClass(win),
		Title: conn.GetWindowTitle(win),
	}

	geom, err := conn.GetWindowGeometry(win)
	if err != nil {
		return info, err
	}
	info.Bounds = Rect{X: geom.X, Y: geom.Y, Width: geom.Width, Height: geom.Height}

	if viewable, err := conn.IsViewable(win); err == nil {
		info.Visible = viewable
	}
	if desktop, err := conn.GetWindowDesktop(win); err == nil {
		info.Desktop = desktop
	}
	if states, err := conn.GetWindowStates(win); err == nil {
		info.States = states
	}

	return info, nil
}

func (d *X11Driver) connection() (*x11.Connection, error) {
	if d == nil || d.conn == nil {
		return nil, fmt.Errorf("x11 driver connection is nil")
	}
	return d.conn, nil
}
