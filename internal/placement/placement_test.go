package placement

import (
	"errors"
	"testing"

	"github.com/1broseidon/hoverpad/internal/platform"
)

func TestTopRight_StandardScreen(t *testing.T) {
	screen := platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	window := platform.Rect{Width: 400, Height: 300}

	pos := TopRight(screen, window, 20, 40)

	// x = 1920 - 400 - 20 = 1500, y = 40
	if pos.X != 1500 {
		t.Fatalf("expected X=1500, got %d", pos.X)
	}
	if pos.Y != 40 {
		t.Fatalf("expected Y=40, got %d", pos.Y)
	}
}

func TestTopRight_OffsetMonitor(t *testing.T) {
	// A secondary monitor to the right of a 1920-wide primary.
	screen := platform.Rect{X: 1920, Y: 0, Width: 2560, Height: 1440}
	window := platform.Rect{Width: 400, Height: 300}

	pos := TopRight(screen, window, 20, 40)

	// x = 1920 + 2560 - 400 - 20 = 4060
	if pos.X != 4060 {
		t.Fatalf("expected X=4060, got %d", pos.X)
	}
	if pos.Y != 40 {
		t.Fatalf("expected Y=40, got %d", pos.Y)
	}
}

func TestTopRight_ZeroMargins(t *testing.T) {
	screen := platform.Rect{X: 0, Y: 0, Width: 800, Height: 600}
	window := platform.Rect{Width: 200, Height: 100}

	pos := TopRight(screen, window, 0, 0)

	if pos.X != 600 || pos.Y != 0 {
		t.Fatalf("expected (600, 0), got (%d, %d)", pos.X, pos.Y)
	}
}

func TestPrimary_PrefersPrimaryFlag(t *testing.T) {
	displays := []platform.Display{
		{ID: 0, Name: "HDMI-1", Bounds: platform.Rect{Width: 1920, Height: 1080}},
		{ID: 1, Name: "eDP-1", Primary: true, Bounds: platform.Rect{X: 1920, Width: 2560, Height: 1440}},
	}

	primary, err := Primary(displays)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if primary.Name != "eDP-1" {
		t.Fatalf("expected primary eDP-1, got %s", primary.Name)
	}
}

func TestPrimary_FallsBackToFirst(t *testing.T) {
	displays := []platform.Display{
		{ID: 0, Name: "DP-1", Bounds: platform.Rect{Width: 1920, Height: 1080}},
		{ID: 1, Name: "DP-2", Bounds: platform.Rect{X: 1920, Width: 1920, Height: 1080}},
	}

	primary, err := Primary(displays)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if primary.Name != "DP-1" {
		t.Fatalf("expected fallback to DP-1, got %s", primary.Name)
	}
}

func TestPrimary_EmptyDisplaySet(t *testing.T) {
	_, err := Primary(nil)
	if !errors.Is(err, ErrNoMonitorFound) {
		t.Fatalf("expected ErrNoMonitorFound, got %v", err)
	}
}

func TestTopRightOnPrimary_UsesPrimaryBounds(t *testing.T) {
	displays := []platform.Display{
		{ID: 0, Name: "DP-1", Bounds: platform.Rect{Width: 1280, Height: 720}},
		{ID: 1, Name: "DP-2", Primary: true, Bounds: platform.Rect{X: 1280, Y: 0, Width: 1920, Height: 1080}},
	}
	window := platform.Rect{Width: 400, Height: 300}

	pos, err := TopRightOnPrimary(displays, window, 20, 40)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// x = 1280 + 1920 - 400 - 20 = 2780
	if pos.X != 2780 || pos.Y != 40 {
		t.Fatalf("expected (2780, 40), got (%d, %d)", pos.X, pos.Y)
	}
}

func TestTopRightOnPrimary_EmptyDisplaySet(t *testing.T) {
	_, err := TopRightOnPrimary(nil, platform.Rect{Width: 400, Height: 300}, 20, 40)
	if !errors.Is(err, ErrNoMonitorFound) {
		t.Fatalf("expected ErrNoMonitorFound, got %v", err)
	}
}
