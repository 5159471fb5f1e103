package placement

import (
	"errors"

	"github.com/1broseidon/hoverpad/internal/platform"
)

// ErrNoMonitorFound indicates the display set was empty. Callers skip
// placement and leave the window where it is.
var ErrNoMonitorFound = errors.New("no monitor found")

// Position is a top-left window origin in root coordinates.
type Position struct {
	X int
	Y int
}

// TopRight computes the window origin that pins the window to the top-right
// corner of the screen with the given margins. The screen origin offsets
// make this correct on monitors that do not start at (0,0).
func TopRight(screen, window platform.Rect, marginX, marginY int) Position {
	return Position{
		X: screen.X + screen.Width - window.Width - marginX,
		Y: screen.Y + marginY,
	}
}

// Primary picks the primary display, falling back to the first one listed.
func Primary(displays []platform.Display) (platform.Display, error) {
	if len(displays) == 0 {
		return platform.Display{}, ErrNoMonitorFound
	}

	for _, d := range displays {
		if d.Primary {
			return d, nil
		}
	}
	return displays[0], nil
}

// TopRightOnPrimary resolves the primary display and computes the top-right
// position for the window on it.
func TopRightOnPrimary(displays []platform.Display, window platform.Rect, marginX, marginY int) (Position, error) {
	primary, err := Primary(displays)
	if err != nil {
		return Position{}, err
	}
	return TopRight(primary.Bounds, window, marginX, marginY), nil
}
