//go:build darwin

package platform

/*
#cgo CFLAGS: -x objective-c -fmodules -fobjc-arc
#cgo LDFLAGS: -framework Cocoa -framework Carbon

#include <stdlib.h>
#import <Cocoa/Cocoa.h>
#import <Carbon/Carbon.h>

// Forward declaration for the Go hotkey callback
void goHotkeyTriggered(void);

static NSPanel *g_panel = nil;

static const CGFloat kPanelWidth = 400.0;
static const CGFloat kPanelHeight = 300.0;

// Cocoa's origin is bottom-left; the driver API uses top-left global
// coordinates, so Y values are flipped against the primary screen height.
static CGFloat primaryScreenHeight(void) {
    NSArray<NSScreen *> *screens = [NSScreen screens];
    if (screens.count == 0) {
        return 0;
    }
    return screens[0].frame.size.height;
}

static void createPanel(const char *title) {
    if (g_panel != nil) {
        return;
    }

    @autoreleasepool {
        [NSApplication sharedApplication];
        [NSApp setActivationPolicy:NSApplicationActivationPolicyAccessory];

        // NSWindowStyleMaskNonactivatingPanel is the one-time class
        // substitution: the panel accepts mouse events but showing it never
        // makes it the key window.
        NSRect frame = NSMakeRect(0, 0, kPanelWidth, kPanelHeight);
        g_panel = [[NSPanel alloc] initWithContentRect:frame
                                             styleMask:NSWindowStyleMaskBorderless | NSWindowStyleMaskNonactivatingPanel
                                               backing:NSBackingStoreBuffered
                                                 defer:NO];

        g_panel.title = [NSString stringWithUTF8String:title];
        g_panel.opaque = NO;
        g_panel.hasShadow = YES;
        g_panel.backgroundColor = [NSColor clearColor];
        g_panel.becomesKeyOnlyIfNeeded = YES;
        g_panel.hidesOnDeactivate = NO;

        NSView *content = [[NSView alloc] initWithFrame:NSMakeRect(0, 0, kPanelWidth, kPanelHeight)];
        content.wantsLayer = YES;
        content.layer.cornerRadius = 10.0;
        content.layer.backgroundColor = [NSColor colorWithRed:0.12 green:0.12 blue:0.13 alpha:0.92].CGColor;
        g_panel.contentView = content;
    }
}

static int panelExists(void) {
    return g_panel != nil ? 1 : 0;
}

static void applyOverlayProfile(long level, int allSpaces) {
    if (g_panel == nil) {
        return;
    }
    g_panel.level = level;
    NSWindowCollectionBehavior behavior = NSWindowCollectionBehaviorStationary |
                                          NSWindowCollectionBehaviorFullScreenAuxiliary |
                                          NSWindowCollectionBehaviorIgnoresCycle;
    if (allSpaces) {
        behavior |= NSWindowCollectionBehaviorCanJoinAllSpaces;
    }
    g_panel.collectionBehavior = behavior;
}

static void showPanel(void) {
    if (g_panel != nil) {
        [g_panel orderFrontRegardless];
    }
}

static void hidePanel(void) {
    if (g_panel != nil) {
        [g_panel orderOut:nil];
    }
}

static int panelVisible(void) {
    return (g_panel != nil && g_panel.isVisible) ? 1 : 0;
}

static void movePanel(double x, double topY) {
    if (g_panel == nil) {
        return;
    }
    CGFloat cocoaY = primaryScreenHeight() - topY - g_panel.frame.size.height;
    [g_panel setFrameOrigin:NSMakePoint(x, cocoaY)];
}

static void panelFrame(double *x, double *topY, double *w, double *h) {
    if (g_panel == nil) {
        *x = *topY = *w = *h = 0;
        return;
    }
    NSRect frame = g_panel.frame;
    *x = frame.origin.x;
    *topY = primaryScreenHeight() - frame.origin.y - frame.size.height;
    *w = frame.size.width;
    *h = frame.size.height;
}

static int screenCount(void) {
    return (int)[NSScreen screens].count;
}

static void screenFrame(int index, double *x, double *topY, double *w, double *h) {
    NSArray<NSScreen *> *screens = [NSScreen screens];
    if (index < 0 || index >= (int)screens.count) {
        *x = *topY = *w = *h = 0;
        return;
    }
    NSRect frame = screens[index].frame;
    *x = frame.origin.x;
    *topY = primaryScreenHeight() - frame.origin.y - frame.size.height;
    *w = frame.size.width;
    *h = frame.size.height;
}

static OSStatus hotkeyHandler(EventHandlerCallRef nextHandler, EventRef event, void *userData) {
    goHotkeyTriggered();
    return noErr;
}

static int registerHotkey(UInt32 keyCode, UInt32 modifiers) {
    EventTypeSpec eventType = { kEventClassKeyboard, kEventHotKeyPressed };
    InstallApplicationEventHandler(&hotkeyHandler, 1, &eventType, NULL, NULL);

    EventHotKeyID hotkeyID = { 'hvpd', 1 };
    EventHotKeyRef ref;
    return (int)RegisterEventHotKey(keyCode, modifiers, hotkeyID, GetApplicationEventTarget(), 0, &ref);
}

static void runEventLoop(void) {
    @autoreleasepool {
        [NSApp run];
    }
}

static void stopEventLoop(void) {
    if (g_panel != nil) {
        [g_panel orderOut:nil];
        g_panel = nil;
    }
    [NSApp stop:nil];
}
*/
import "C"
import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"
)

// CocoaDriver implements Driver with an in-process non-activating panel.
// macOS offers no protocol for converting another application's window, so
// the managed window is owned by the daemon itself; the panel handle is a
// fixed synthetic id.
type CocoaDriver struct {
	mu       sync.Mutex
	callback func()
}

const panelHandle WindowID = 1

var (
	globalDriver   *CocoaDriver
	globalDriverMu sync.RWMutex
)

var _ Driver = (*CocoaDriver)(nil)

// NewDriver creates the macOS driver. The panel itself is created lazily on
// the first FindWindow call; the X11 options do not apply here.
func NewDriver(opts Options) (Driver, error) {
	d := &CocoaDriver{}

	globalDriverMu.Lock()
	globalDriver = d
	globalDriverMu.Unlock()

	// AppKit requires the main thread for all window operations.
	runtime.LockOSThread()
	return d, nil
}

//export goHotkeyTriggered
func goHotkeyTriggered() {
	globalDriverMu.RLock()
	d := globalDriver
	globalDriverMu.RUnlock()
	if d == nil {
		return
	}

	d.mu.Lock()
	cb := d.callback
	d.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// Carbon modifier masks.
const (
	carbonCmdKey     = 0x0100
	carbonShiftKey   = 0x0200
	carbonOptionKey  = 0x0800
	carbonControlKey = 0x1000
)

// carbonKeyCodes maps canonical key names to kVK_ANSI virtual keycodes.
var carbonKeyCodes = map[string]uint32{
	"a": 0, "s": 1, "d": 2, "f": 3, "h": 4, "g": 5, "z": 6, "x": 7,
	"c": 8, "v": 9, "b": 11, "q": 12, "w": 13, "e": 14, "r": 15,
	"y": 16, "t": 17, "1": 18, "2": 19, "3": 20, "4": 21, "6": 22,
	"5": 23, "equal": 24, "9": 25, "7": 26, "minus": 27, "8": 28,
	"0": 29, "bracketright": 30, "o": 31, "u": 32, "bracketleft": 33,
	"i": 34, "p": 35, "return": 36, "l": 37, "j": 38, "apostrophe": 39,
	"k": 40, "semicolon": 41, "backslash": 42, "comma": 43, "slash": 44,
	"n": 45, "m": 46, "period": 47, "tab": 48, "space": 49, "grave": 50,
	"escape": 53,
}

// RegisterHotkey registers a global hotkey with Carbon. Satisfies the
// optional registrar interface checked by the hotkeys package.
func (d *CocoaDriver) RegisterHotkey(modifiers []string, key string, callback func()) error {
	keyCode, ok := carbonKeyCodes[key]
	if !ok {
		return fmt.Errorf("unsupported hotkey key %q", key)
	}

	var mask uint32
	for _, mod := range modifiers {
		switch mod {
		case "cmd":
			mask |= carbonCmdKey
		case "shift":
			mask |= carbonShiftKey
		case "alt":
			mask |= carbonOptionKey
		case "ctrl":
			mask |= carbonControlKey
		default:
			return fmt.Errorf("unsupported hotkey modifier %q", mod)
		}
	}

	d.mu.Lock()
	d.callback = callback
	d.mu.Unlock()

	if status := C.registerHotkey(C.UInt32(keyCode), C.UInt32(mask)); status != 0 {
		return fmt.Errorf("RegisterEventHotKey failed with status %d", int(status))
	}
	return nil
}

// Displays enumerates NSScreens in top-left-origin global coordinates.
// AppKit lists the primary screen first.
func (d *CocoaDriver) Displays() ([]Display, error) {
	count := int(C.screenCount())
	if count == 0 {
		return nil, nil
	}

	displays := make([]Display, 0, count)
	for i := 0; i < count; i++ {
		var x, y, w, h C.double
		C.screenFrame(C.int(i), &x, &y, &w, &h)
		displays = append(displays, Display{
			ID:      i,
			Name:    fmt.Sprintf("Screen%d", i),
			Primary: i == 0,
			Bounds: Rect{
				X:      int(x),
				Y:      int(y),
				Width:  int(w),
				Height: int(h),
			},
		})
	}
	return displays, nil
}

// FindWindow returns the managed panel, creating it on first use. The class
// argument becomes the panel title; there is nothing to search.
func (d *CocoaDriver) FindWindow(class, titleSubstring string) (WindowID, error) {
	title := class
	if title == "" {
		title = titleSubstring
	}
	cTitle := C.CString(title)
	defer C.free(unsafe.Pointer(cTitle))

	C.createPanel(cTitle)
	if C.panelExists() == 0 {
		return 0, fmt.Errorf("failed to create overlay panel")
	}
	return panelHandle, nil
}

// WindowGeometry returns the panel frame in top-left-origin coordinates.
func (d *CocoaDriver) WindowGeometry(id WindowID) (Rect, error) {
	if err := d.checkHandle(id); err != nil {
		return Rect{}, err
	}
	var x, y, w, h C.double
	C.panelFrame(&x, &y, &w, &h)
	return Rect{X: int(x), Y: int(y), Width: int(w), Height: int(h)}, nil
}

func (d *CocoaDriver) ShowWindow(id WindowID) error {
	if err := d.checkHandle(id); err != nil {
		return err
	}
	C.showPanel()
	return nil
}

func (d *CocoaDriver) HideWindow(id WindowID) error {
	if err := d.checkHandle(id); err != nil {
		return err
	}
	C.hidePanel()
	return nil
}

func (d *CocoaDriver) IsVisible(id WindowID) (bool, error) {
	if err := d.checkHandle(id); err != nil {
		return false, err
	}
	return C.panelVisible() == 1, nil
}

func (d *CocoaDriver) MoveWindow(id WindowID, x, y int) error {
	if err := d.checkHandle(id); err != nil {
		return err
	}
	C.movePanel(C.double(x), C.double(y))
	return nil
}

func (d *CocoaDriver) RaiseWindow(id WindowID) error {
	if err := d.checkHandle(id); err != nil {
		return err
	}
	C.showPanel()
	return nil
}

// ConvertToOverlay is a no-op beyond profile assertion: the panel is born
// converted (non-activating style mask at creation).
func (d *CocoaDriver) ConvertToOverlay(id WindowID, profile OverlayProfile) error {
	return d.ApplyOverlay(id, profile)
}

// ApplyOverlay re-asserts level and collection behavior. macOS drops these
// on space transitions for ordinary windows, so repeated application is the
// point.
func (d *CocoaDriver) ApplyOverlay(id WindowID, profile OverlayProfile) error {
	if err := d.checkHandle(id); err != nil {
		return err
	}

	level := int64(profile.Level)
	if !profile.AlwaysOnTop {
		level = 0
	}
	allSpaces := 0
	if profile.AllWorkspaces {
		allSpaces = 1
	}
	C.applyOverlayProfile(C.long(level), C.int(allSpaces))
	return nil
}

func (d *CocoaDriver) InspectWindow(id WindowID) (WindowInfo, error) {
	if err := d.checkHandle(id); err != nil {
		return WindowInfo{}, err
	}

	bounds, err := d.WindowGeometry(id)
	if err != nil {
		return WindowInfo{}, err
	}
	visible, _ := d.IsVisible(id)

	return WindowInfo{
		ID:      id,
		Class:   "hoverpad-panel",
		Bounds:  bounds,
		Visible: visible,
		Desktop: -1,
		States:  []string{"NSWindowCollectionBehaviorCanJoinAllSpaces", "NSWindowCollectionBehaviorFullScreenAuxiliary"},
	}, nil
}

// EventLoop runs the AppKit run loop (blocking). Must be called from the
// thread that created the driver.
func (d *CocoaDriver) EventLoop() {
	C.runEventLoop()
}

func (d *CocoaDriver) Disconnect() {
	C.stopEventLoop()

	globalDriverMu.Lock()
	globalDriver = nil
	globalDriverMu.Unlock()
}

func (d *CocoaDriver) checkHandle(id WindowID) error {
	if id != panelHandle || C.panelExists() == 0 {
		return fmt.Errorf("invalid window handle %d", id)
	}
	return nil
}
