package hotkeys

import (
	"fmt"
	"log"
	"sync"

	"github.com/1broseidon/hoverpad/internal/platform"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Toggler receives hotkey triggers. HandleTrigger must not block: it runs
// on the platform event loop.
type Toggler interface {
	HandleTrigger()
}

// x11Accessor is an optional interface for drivers that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// hotkeyRegistrar is an optional interface for drivers that register global
// hotkeys natively (the macOS driver registers through Carbon).
type hotkeyRegistrar interface {
	RegisterHotkey(modifiers []string, key string, callback func()) error
}

// Handler manages the global toggle shortcut
type Handler struct {
	xu        *xgbutil.XUtil
	root      xproto.Window
	registrar hotkeyRegistrar
	toggler   Toggler
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler.
func NewHandler(driver platform.Driver, toggler Toggler) *Handler {
	h := &Handler{toggler: toggler}

	if registrar, ok := driver.(hotkeyRegistrar); ok {
		h.registrar = registrar
		return h
	}

	if accessor, ok := driver.(x11Accessor); ok {
		h.xu = accessor.XUtil()
		h.root = accessor.RootWindow()
		ignoreModsOnce.Do(func() {
			configureIgnoreMods(h.xu)
		})
	}

	return h
}

// Register registers the toggle hotkey. The binding is given in config form
// ("Cmd+Shift+`"); registration failure is fatal for the caller because the
// hotkey is the overlay's only entry point.
func (h *Handler) Register(binding string) error {
	b, err := ParseBinding(binding)
	if err != nil {
		return err
	}

	callback := func() {
		log.Println("Toggle hotkey triggered")
		h.toggler.HandleTrigger()
	}

	if h.registrar != nil {
		if err := h.registrar.RegisterHotkey(b.Modifiers, b.Key, callback); err != nil {
			return fmt.Errorf("failed to register hotkey %s: %w", b, err)
		}
		return nil
	}

	if err := h.RegisterFunc(b.X11Sequence(), callback); err != nil {
		return fmt.Errorf("failed to register hotkey %s: %w", b, err)
	}
	return nil
}

// RegisterFunc registers an arbitrary hotkey callback by X11 key sequence.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	if h.xu == nil {
		return fmt.Errorf("driver exposes no hotkey backend")
	}
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
