package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// Geometry describes a window's position and size in root coordinates.
type Geometry struct {
	X      int
	Y      int
	Width  int
	Height int
}

// AllDesktops is the _NET_WM_DESKTOP value for a window visible on every
// virtual desktop.
const AllDesktops = -1

const (
	netWMStateRemove = 0
	netWMStateAdd    = 1
)

// FindWindowByClass searches the EWMH client list for a window whose
// WM_CLASS class or instance matches (case-insensitive). Returns the
// first match.
func (c *Connection) FindWindowByClass(class string) (uint32, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get client list: %w", err)
	}
	for _, win := range clients {
		wmClass, err := icccm.WmClassGet(c.XUtil, win)
		if err != nil {
			continue
		}
		if strings.EqualFold(wmClass.Class, class) || strings.EqualFold(wmClass.Instance, class) {
			return uint32(win), nil
		}
	}
	return 0, fmt.Errorf("no window found with class %q", class)
}

// FindWindowByTitle searches the EWMH client list for a window whose
// _NET_WM_NAME contains the given substring. Returns the first match.
func (c *Connection) FindWindowByTitle(substring string) (uint32, error) {
	if substring == "" {
		return 0, fmt.Errorf("empty title substring")
	}
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get client list: %w", err)
	}
	for _, win := range clients {
		name, err := ewmh.WmNameGet(c.XUtil, win)
		if err != nil {
			continue
		}
		if strings.Contains(name, substring) {
			return uint32(win), nil
		}
	}
	return 0, fmt.Errorf("no window found with title containing %q", substring)
}

// MapWindow makes a window viewable.
func (c *Connection) MapWindow(windowID uint32) error {
	if err := xproto.MapWindowChecked(c.XUtil.Conn(), xproto.Window(windowID)).Check(); err != nil {
		return fmt.Errorf("failed to map window: %w", err)
	}
	return nil
}

// UnmapWindow withdraws a window. Per ICCCM 4.1.4 a client withdrawing a
// window must also send a synthetic UnmapNotify to the root so reparenting
// window managers release it.
func (c *Connection) UnmapWindow(windowID uint32) error {
	win := xproto.Window(windowID)
	if err := xproto.UnmapWindowChecked(c.XUtil.Conn(), win).Check(); err != nil {
		return fmt.Errorf("failed to unmap window: %w", err)
	}

	ev := xproto.UnmapNotifyEvent{
		Event:         c.Root,
		Window:        win,
		FromConfigure: false,
	}
	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// IsViewable reports whether a window is currently mapped and viewable.
func (c *Connection) IsViewable(windowID uint32) (bool, error) {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), xproto.Window(windowID)).Reply()
	if err != nil {
		return false, fmt.Errorf("failed to get window attributes: %w", err)
	}
	return attrs.MapState == xproto.MapStateViewable, nil
}

// GetWindowGeometry returns a window's geometry in root coordinates.
func (c *Connection) GetWindowGeometry(windowID uint32) (Geometry, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return Geometry{}, fmt.Errorf("failed to get window geometry: %w", err)
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		xproto.Window(windowID),
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return Geometry{}, fmt.Errorf("failed to translate coordinates: %w", err)
	}

	return Geometry{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

// MoveWindow moves a window without resizing it. A withdrawn window is not
// managed by the WM, so EWMH moveresize only applies while viewable; the
// direct configure covers both cases as a fallback.
func (c *Connection) MoveWindow(windowID uint32, x, y int) error {
	win := xproto.Window(windowID)

	if viewable, err := c.IsViewable(windowID); err == nil && viewable {
		if geom, err := c.GetWindowGeometry(windowID); err == nil {
			if err := ewmh.MoveresizeWindow(c.XUtil, win, x, y, geom.Width, geom.Height); err == nil {
				return nil
			}
		}
	}

	values := []uint32{uint32(int32(x)), uint32(int32(y))}
	if err := xproto.ConfigureWindowChecked(
		c.XUtil.Conn(),
		win,
		xproto.ConfigWindowX|xproto.ConfigWindowY,
		values,
	).Check(); err != nil {
		return fmt.Errorf("failed to move window: %w", err)
	}
	return nil
}

// RaiseWindow restacks a window above all siblings.
func (c *Connection) RaiseWindow(windowID uint32) error {
	values := []uint32{xproto.StackModeAbove}
	if err := xproto.ConfigureWindowChecked(
		c.XUtil.Conn(),
		xproto.Window(windowID),
		xproto.ConfigWindowStackMode,
		values,
	).Check(); err != nil {
		return fmt.Errorf("failed to raise window: %w", err)
	}
	return nil
}

// AddWindowStates requests that the WM add _NET_WM_STATE properties to a
// window. States are sent in pairs (a _NET_WM_STATE message carries at most
// two properties). We build the message manually because the xgbutil
// ewmh.WmStateReqExtra helper interns an empty atom name when given an odd
// number of states.
func (c *Connection) AddWindowStates(windowID uint32, states ...string) error {
	atomReply, err := xproto.InternAtom(c.XUtil.Conn(), false,
		uint16(len("_NET_WM_STATE")), "_NET_WM_STATE").Reply()
	if err != nil {
		return fmt.Errorf("failed to intern _NET_WM_STATE: %w", err)
	}

	const sourceIndication = 2 // pager/direct action
	for i := 0; i < len(states); i += 2 {
		first, err := xproto.InternAtom(c.XUtil.Conn(), false,
			uint16(len(states[i])), states[i]).Reply()
		if err != nil {
			return fmt.Errorf("failed to intern %s: %w", states[i], err)
		}

		var second xproto.Atom
		if i+1 < len(states) {
			reply, err := xproto.InternAtom(c.XUtil.Conn(), false,
				uint16(len(states[i+1])), states[i+1]).Reply()
			if err != nil {
				return fmt.Errorf("failed to intern %s: %w", states[i+1], err)
			}
			second = reply.Atom
		}

		ev := xproto.ClientMessageEvent{
			Format: 32,
			Window: xproto.Window(windowID),
			Type:   atomReply.Atom,
			Data: xproto.ClientMessageDataUnionData32New([]uint32{
				netWMStateAdd, uint32(first.Atom), uint32(second), sourceIndication, 0,
			}),
		}

		if err := xproto.SendEventChecked(
			c.XUtil.Conn(),
			false,
			c.Root,
			xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
			string(ev.Bytes()),
		).Check(); err != nil {
			return fmt.Errorf("failed to request state %s: %w", states[i], err)
		}
	}
	return nil
}

// GetWindowStates returns the window's current _NET_WM_STATE atom names.
func (c *Connection) GetWindowStates(windowID uint32) ([]string, error) {
	states, err := ewmh.WmStateGet(c.XUtil, xproto.Window(windowID))
	if err != nil {
		return nil, fmt.Errorf("failed to get window states: %w", err)
	}
	return states, nil
}

// SetWindowType sets _NET_WM_WINDOW_TYPE.
func (c *Connection) SetWindowType(windowID uint32, types ...string) error {
	if err := ewmh.WmWindowTypeSet(c.XUtil, xproto.Window(windowID), types); err != nil {
		return fmt.Errorf("failed to set window type: %w", err)
	}
	return nil
}

// DisableInputFocus sets the ICCCM input hint to False so the WM never
// assigns keyboard focus to the window when it is mapped or clicked. Mouse
// events are still delivered.
func (c *Connection) DisableInputFocus(windowID uint32) error {
	win := xproto.Window(windowID)
	hints, err := icccm.WmHintsGet(c.XUtil, win)
	if err != nil {
		hints = &icccm.Hints{}
	}
	hints.Flags |= icccm.HintInput
	hints.Input = 0
	if err := icccm.WmHintsSet(c.XUtil, win, hints); err != nil {
		return fmt.Errorf("failed to set input hint: %w", err)
	}
	return nil
}

// GetWindowDesktop returns the desktop number a window is on.
// Uses _NET_WM_DESKTOP. Returns AllDesktops for sticky windows.
func (c *Connection) GetWindowDesktop(windowID uint32) (int, error) {
	desktop, err := ewmh.WmDesktopGet(c.XUtil, xproto.Window(windowID))
	if err != nil {
		return 0, fmt.Errorf("failed to get window desktop: %w", err)
	}
	// 0xFFFFFFFF means the window is on all desktops (sticky)
	if desktop == 0xFFFFFFFF {
		return AllDesktops, nil
	}
	return int(desktop), nil
}

// SetWindowDesktop moves a window to the specified virtual desktop
// (AllDesktops pins it to every desktop). Sends a _NET_WM_DESKTOP client
// message to the root window per EWMH spec. We build the message manually
// because the xgbutil ewmh.WmDesktopReq helper panics on this library
// version (uint vs int type assertion).
func (c *Connection) SetWindowDesktop(windowID uint32, desktop int) error {
	atomReply, err := xproto.InternAtom(c.XUtil.Conn(), false,
		uint16(len("_NET_WM_DESKTOP")), "_NET_WM_DESKTOP").Reply()
	if err != nil {
		return fmt.Errorf("failed to intern _NET_WM_DESKTOP: %w", err)
	}

	const sourceIndication = 2 // pager/direct action
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: xproto.Window(windowID),
		Type:   atomReply.Atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{uint32(int32(desktop)), sourceIndication, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// GetWindowClass returns the WM_CLASS class name of a window.
func (c *Connection) GetWindowClass(windowID uint32) string {
	wmClass, err := icccm.WmClassGet(c.XUtil, xproto.Window(windowID))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(wmClass.Class)
}

// GetWindowTitle returns the window title, preferring _NET_WM_NAME over
// the legacy WM_NAME.
func (c *Connection) GetWindowTitle(windowID uint32) string {
	title, err := ewmh.WmNameGet(c.XUtil, xproto.Window(windowID))
	if err == nil {
		title = strings.TrimSpace(title)
		if title != "" {
			return title
		}
	}

	title, err = icccm.WmNameGet(c.XUtil, xproto.Window(windowID))
	if err == nil {
		title = strings.TrimSpace(title)
		if title != "" {
			return title
		}
	}

	return ""
}
