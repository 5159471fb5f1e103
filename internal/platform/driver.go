package platform

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Display describes a physical display.
type Display struct {
	ID      int
	Name    string
	Primary bool
	Bounds  Rect
}

// MaxLevel is the highest window level a platform accepts. Windows at this
// level render above fullscreen applications and system UI.
const MaxLevel int32 = 2147483647

// OverlayProfile is the set of properties that make a window behave as an
// overlay panel. The live OS state can silently drop individual properties
// (space switches, fullscreen transitions, screen unlock), so the profile
// is re-asserted rather than applied once.
type OverlayProfile struct {
	AlwaysOnTop   bool
	AllWorkspaces bool
	Level         int32
	NonActivating bool
}

// DefaultProfile returns the overlay profile used for the managed window.
func DefaultProfile() OverlayProfile {
	return OverlayProfile{
		AlwaysOnTop:   true,
		AllWorkspaces: true,
		Level:         MaxLevel,
		NonActivating: true,
	}
}

// AllDesktops is the Desktop value of a window pinned to every workspace.
const AllDesktops = -1

// WindowInfo is a diagnostic snapshot of a window's live state.
type WindowInfo struct {
	ID      WindowID
	Class   string
	Title   string
	Bounds  Rect
	Visible bool
	Desktop int // AllDesktops when pinned to every workspace
	States  []string
}

// Options configures driver construction. Platforms ignore fields they
// have no use for.
type Options struct {
	Display    string // X11 display override, e.g. ":1"
	XAuthority string // X11 authority file override
}

// Driver abstracts the window-system operations the overlay needs. The
// coordinator and enforcer depend only on this interface, never on
// platform types.
type Driver interface {
	Displays() ([]Display, error)
	FindWindow(class, titleSubstring string) (WindowID, error)
	WindowGeometry(id WindowID) (Rect, error)
	ShowWindow(id WindowID) error
	HideWindow(id WindowID) error
	IsVisible(id WindowID) (bool, error)
	MoveWindow(id WindowID, x, y int) error
	RaiseWindow(id WindowID) error
	// ConvertToOverlay performs the one-time conversion of the window into
	// a non-activating utility panel. Called once at adoption; ApplyOverlay
	// never re-converts.
	ConvertToOverlay(id WindowID, profile OverlayProfile) error
	// ApplyOverlay re-asserts the overlay profile. Idempotent: safe to call
	// any number of times in any window state.
	ApplyOverlay(id WindowID, profile OverlayProfile) error
	InspectWindow(id WindowID) (WindowInfo, error)
	// EventLoop runs the platform event loop (blocking).
	EventLoop()
	Disconnect()
}
