package overlay

import (
	"fmt"

	"github.com/1broseidon/hoverpad/internal/platform"
)

// EnforceError reports a failed enforcement pass on a window. The window
// system may still have applied part of the profile; the caller decides
// whether to try again.
type EnforceError struct {
	Window platform.WindowID
	Err    error
}

func (e *EnforceError) Error() string {
	return fmt.Sprintf("overlay enforcement failed for window %d: %v", e.Window, e.Err)
}

func (e *EnforceError) Unwrap() error {
	return e.Err
}

// Enforcer re-asserts the overlay profile on a window. A single pass makes
// one set of platform calls and reports the outcome; retry policy belongs to
// the caller.
type Enforcer struct {
	driver  platform.Driver
	profile platform.OverlayProfile
}

// NewEnforcer creates an enforcer that asserts the given profile.
func NewEnforcer(driver platform.Driver, profile platform.OverlayProfile) *Enforcer {
	return &Enforcer{driver: driver, profile: profile}
}

// Enforce applies the overlay profile to the window once. Idempotent: the
// platform calls set absolute state, so repeated passes converge on the same
// result regardless of what the window system did in between.
func (e *Enforcer) Enforce(win platform.WindowID) error {
	if err := e.driver.ApplyOverlay(win, e.profile); err != nil {
		return &EnforceError{Window: win, Err: err}
	}
	return nil
}

// Profile returns the profile this enforcer asserts.
func (e *Enforcer) Profile() platform.OverlayProfile {
	return e.profile
}
