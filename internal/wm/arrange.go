package wm

import (
	"github.com/1broseidon/tagwm/internal/platform"
	"github.com/1broseidon/tagwm/internal/tiling"
)

func rectOf(x, y, w, h int) tiling.Rect {
	return tiling.Rect{X: x, Y: y, Width: w, Height: h}
}

// arrange shows and hides clients and re-runs the layout of m, or of every
// monitor when m is nil. Only a single monitor is restacked.
func (w *WM) arrange(m *Monitor) {
	if m != nil {
		w.showHide(m)
		w.arrangeMonitor(m)
		w.restack(m)
		return
	}
	for _, mon := range w.mons {
		w.showHide(mon)
	}
	for _, mon := range w.mons {
		w.arrangeMonitor(mon)
	}
}

func (w *WM) arrangeMonitor(m *Monitor) {
	kind := m.Layout()
	tiled := w.tiled(m)
	borders := make([]int, len(tiled))
	for i, c := range tiled {
		borders[i] = c.BW
	}
	params := tiling.Params{
		Area:        m.Work,
		MFact:       m.MFact,
		NMaster:     m.NMaster,
		BorderWidth: w.cfg.BorderWidth,
		Borders:     borders,
	}
	res := tiling.Apply(kind, params, len(tiled), w.visibleCount(m), func(i int, r tiling.Rect) tiling.Rect {
		c := tiled[i]
		w.resize(c, r.X, r.Y, r.Width, r.Height, false)
		return c.Rect()
	})
	m.Symbol = truncateBytes(res.Symbol, MaxSymbolBytes)
}

// showHide moves visible clients into place top-down along the focus
// stack, then parks hidden ones off screen bottom-up.
func (w *WM) showHide(m *Monitor) {
	arranges := m.Layout().Arranges()
	for _, id := range m.stack {
		c := w.clients[id]
		if c == nil || !w.isVisible(c) {
			continue
		}
		w.backend.Move(c.Win, c.X, c.Y)
		if (!arranges || c.IsFloating) && !c.IsFullscreen {
			w.resize(c, c.X, c.Y, c.W, c.H, false)
		}
	}
	for i := len(m.stack) - 1; i >= 0; i-- {
		c := w.clients[m.stack[i]]
		if c == nil || w.isVisible(c) {
			continue
		}
		w.backend.Move(c.Win, -2*c.Width(), c.Y)
	}
}

// restack raises the selected client when it floats and stacks the tiled
// clients below the bar in focus order.
func (w *WM) restack(m *Monitor) {
	sel := w.Client(m.Sel)
	if sel == nil {
		return
	}
	arranges := m.Layout().Arranges()
	if sel.IsFloating || !arranges {
		w.backend.Raise(sel.Win)
	}
	if arranges {
		var wins []platform.WindowID
		for _, id := range m.stack {
			c := w.clients[id]
			if c != nil && !c.IsFloating && w.isVisible(c) {
				wins = append(wins, c.Win)
			}
		}
		w.backend.RestackBelow(m.BarWin, wins)
	}
	w.backend.Sync()
	w.backend.DiscardEnterEvents()
}

// resize applies size hints to the requested geometry and moves c only
// when something changed.
func (w *WM) resize(c *Client, x, y, width, height int, interact bool) {
	if x, y, width, height, changed := w.applySizeHints(c, x, y, width, height, interact); changed {
		w.resizeClient(c, x, y, width, height)
	}
}

func (w *WM) resizeClient(c *Client, x, y, width, height int) {
	c.OldX, c.X = c.X, x
	c.OldY, c.Y = c.Y, y
	c.OldW, c.W = c.W, width
	c.OldH, c.H = c.H, height
	w.backend.MoveResize(c.Win, c.Rect(), c.BW)
	w.configure(c)
	w.backend.Sync()
}

// applySizeHints clamps a requested geometry to the screen (interactive)
// or the monitor work area, then to the client's size hints when they
// apply. It reports whether the result differs from the current geometry.
func (w *WM) applySizeHints(c *Client, x, y, width, height int, interact bool) (int, int, int, int, bool) {
	m := c.Mon
	width = max(1, width)
	height = max(1, height)

	if interact {
		if x > w.sw {
			x = w.sw - c.Width()
		}
		if y > w.sh {
			y = w.sh - c.Height()
		}
		if x+width+2*c.BW < 0 {
			x = 0
		}
		if y+height+2*c.BW < 0 {
			y = 0
		}
	} else {
		work := m.Work
		if x >= work.X+work.Width {
			x = work.X + work.Width - c.Width()
		}
		if y >= work.Y+work.Height {
			y = work.Y + work.Height - c.Height()
		}
		if x+width+2*c.BW <= work.X {
			x = work.X
		}
		if y+height+2*c.BW <= work.Y {
			y = work.Y
		}
	}
	height = max(height, w.barHeight)
	width = max(width, w.barHeight)

	if w.cfg.ResizeHints || c.IsFloating || !m.Layout().Arranges() {
		if !c.HintsValid {
			w.updateSizeHints(c)
		}
		width, height = c.Hints.Constrain(width, height)
	}
	changed := x != c.X || y != c.Y || width != c.W || height != c.H
	return x, y, width, height, changed
}
