package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
)

// Monitor represents a physical display
type Monitor struct {
	ID      int
	Name    string
	Primary bool
	X       int
	Y       int
	Width   int
	Height  int
}

// GetMonitors retrieves all active monitors using XRandR. The monitor
// driving the primary output is flagged; when RandR reports no primary
// the first monitor is flagged instead.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	// Initialize RandR if not already done
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	// Get screen resources
	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var primaryOutput randr.Output
	if reply, err := randr.GetOutputPrimary(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		primaryOutput = reply.Output
	}

	var monitors []Monitor

	// Query each CRTC for active monitors
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		primary := false
		for _, output := range crtcInfo.Outputs {
			if output == primaryOutput && primaryOutput != 0 {
				primary = true
			}
		}
		if outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			outputName = string(outputInfo.Name)
		}

		monitors = append(monitors, Monitor{
			ID:      i,
			Name:    outputName,
			Primary: primary,
			X:       int(crtcInfo.X),
			Y:       int(crtcInfo.Y),
			Width:   int(crtcInfo.Width),
			Height:  int(crtcInfo.Height),
		})
	}

	if len(monitors) > 0 {
		hasPrimary := false
		for i := range monitors {
			if monitors[i].Primary {
				hasPrimary = true
				break
			}
		}
		if !hasPrimary {
			monitors[0].Primary = true
		}
	}

	return monitors, nil
}
