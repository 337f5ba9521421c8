package x11

import (
	"fmt"

	"github.com/1broseidon/tagwm/internal/tiling"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xinerama"
)

// ScreenSize returns the root window size in pixels.
func (c *Connection) ScreenSize() (int, int) {
	screen := c.XUtil.Screen()
	return int(screen.WidthInPixels), int(screen.HeightInPixels)
}

// Monitors returns the geometry of every active output. RandR CRTCs are
// preferred; servers without RandR fall back to Xinerama, and a server
// with neither reports the whole screen.
func (c *Connection) Monitors() ([]tiling.Rect, error) {
	if rects, err := c.randrMonitors(); err == nil && len(rects) > 0 {
		return rects, nil
	} else if err != nil {
		c.logger.Debug("randr unavailable", "error", err)
	}

	if rects, err := c.xineramaMonitors(); err == nil && len(rects) > 0 {
		return rects, nil
	} else if err != nil {
		c.logger.Debug("xinerama unavailable", "error", err)
	}

	w, h := c.ScreenSize()
	return []tiling.Rect{{Width: w, Height: h}}, nil
}

func (c *Connection) randrMonitors() ([]tiling.Rect, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var rects []tiling.Rect
	for _, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		rects = append(rects, tiling.Rect{
			X:      int(info.X),
			Y:      int(info.Y),
			Width:  int(info.Width),
			Height: int(info.Height),
		})
	}
	return rects, nil
}

func (c *Connection) xineramaMonitors() ([]tiling.Rect, error) {
	if err := xinerama.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("xinerama init failed: %w", err)
	}

	reply, err := xinerama.QueryScreens(c.XUtil.Conn()).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to query screens: %w", err)
	}

	rects := make([]tiling.Rect, 0, len(reply.ScreenInfo))
	for _, s := range reply.ScreenInfo {
		rects = append(rects, tiling.Rect{
			X:      int(s.XOrg),
			Y:      int(s.YOrg),
			Width:  int(s.Width),
			Height: int(s.Height),
		})
	}
	return rects, nil
}
