package wm

import (
	"github.com/1broseidon/tagwm/internal/platform"
	"github.com/1broseidon/tagwm/internal/tiling"
)

func (w *WM) createMonitor() *Monitor {
	kinds := w.layoutKinds()
	m := &Monitor{
		TagSet:  [2]uint32{1, 1},
		MFact:   w.cfg.MFact,
		NMaster: w.cfg.NMaster,
		ShowBar: w.cfg.ShowBar,
		TopBar:  w.cfg.TopBar,
	}
	m.Layouts[0] = kinds[0]
	m.Layouts[1] = kinds[1%len(kinds)]
	m.Symbol = truncateBytes(m.Layouts[0].Symbol(), MaxSymbolBytes)
	return m
}

// layoutKinds resolves the configured layout names; validation guarantees
// at least one parses.
func (w *WM) layoutKinds() []tiling.Kind {
	var kinds []tiling.Kind
	for _, name := range w.cfg.Layouts {
		if k, err := tiling.ParseKind(name); err == nil {
			kinds = append(kinds, k)
		}
	}
	if len(kinds) == 0 {
		kinds = []tiling.Kind{tiling.KindTile}
	}
	return kinds
}

// updateBarPos recomputes the work area of m around its bar.
func (w *WM) updateBarPos(m *Monitor) {
	m.Work, m.BarY = tiling.BarRegion(m.Screen, w.barHeight, m.ShowBar, m.TopBar)
}

func (w *WM) barRect(m *Monitor) tiling.Rect {
	return tiling.Rect{X: m.Work.X, Y: m.BarY, Width: m.Work.Width, Height: w.barHeight}
}

// updateBars creates the bar windows monitors are missing.
func (w *WM) updateBars() {
	for _, m := range w.mons {
		if m.BarWin != 0 {
			continue
		}
		win, err := w.backend.CreateBar(w.barRect(m))
		if err != nil {
			w.logger.Error("failed to create bar", "monitor", m.Num, "error", err)
			continue
		}
		m.BarWin = win
	}
}

func uniqueRects(rects []tiling.Rect) []tiling.Rect {
	out := make([]tiling.Rect, 0, len(rects))
	for _, r := range rects {
		dup := false
		for _, o := range out {
			if o == r {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, r)
		}
	}
	return out
}

// updateGeometry reconciles the monitor set with the outputs the backend
// reports. Clients of vanished monitors move to the first monitor. It
// reports whether anything changed.
func (w *WM) updateGeometry() bool {
	rects, err := w.backend.Monitors()
	if err != nil {
		w.logger.Warn("failed to query monitors, using the whole screen", "error", err)
	}
	rects = uniqueRects(rects)
	if len(rects) == 0 {
		rects = []tiling.Rect{{Width: w.sw, Height: w.sh}}
	}

	dirty := false
	known := len(w.mons)
	for i, r := range rects {
		if i >= known {
			w.mons = append(w.mons, w.createMonitor())
		}
		m := w.mons[i]
		if i >= known || m.Screen != r {
			dirty = true
			m.Num = i
			m.Screen = r
			w.updateBarPos(m)
		}
	}

	for len(w.mons) > len(rects) {
		m := w.mons[len(w.mons)-1]
		first := w.mons[0]
		for len(m.clients) > 0 {
			c := w.clients[m.clients[0]]
			dirty = true
			w.detach(c)
			w.detachStack(c)
			c.Mon = first
			w.attach(c)
			w.attachStack(c)
		}
		if m == w.selmon {
			w.selmon = first
		}
		if m == w.motionMon {
			w.motionMon = nil
		}
		if m.BarWin != 0 {
			w.backend.DestroyBar(m.BarWin)
		}
		w.mons = w.mons[:len(w.mons)-1]
	}

	if dirty || w.selmon == nil {
		w.selmon = w.mons[0]
		w.selmon = w.windowToMonitor(w.backend.Root())
	}
	return dirty
}

// rectToMonitor returns the monitor whose work area overlaps r the most,
// defaulting to the selected monitor.
func (w *WM) rectToMonitor(r tiling.Rect) *Monitor {
	best := w.selmon
	area := 0
	for _, m := range w.mons {
		if a := r.Overlap(m.Work); a > area {
			area = a
			best = m
		}
	}
	return best
}

// windowToMonitor maps the root window to the monitor under the pointer,
// a bar to its monitor and a client to its owner. Anything else is the
// selected monitor.
func (w *WM) windowToMonitor(win platform.WindowID) *Monitor {
	if win == w.backend.Root() {
		if x, y, ok := w.backend.PointerPosition(); ok {
			return w.rectToMonitor(tiling.Rect{X: x, Y: y, Width: 1, Height: 1})
		}
	}
	for _, m := range w.mons {
		if m.BarWin != 0 && win == m.BarWin {
			return m
		}
	}
	if c := w.windowToClient(win); c != nil {
		return c.Mon
	}
	return w.selmon
}

// dirToMonitor returns the next (dir > 0) or previous monitor, wrapping.
func (w *WM) dirToMonitor(dir int) *Monitor {
	n := len(w.mons)
	i := indexOfMonitor(w.mons, w.selmon)
	if dir > 0 {
		return w.mons[(i+1)%n]
	}
	return w.mons[(i-1+n)%n]
}

func indexOfMonitor(mons []*Monitor, m *Monitor) int {
	for i, o := range mons {
		if o == m {
			return i
		}
	}
	return 0
}
