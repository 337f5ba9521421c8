package wm

import (
	"github.com/1broseidon/tagwm/internal/platform"
)

// Motion events during a drag are applied at most this often.
const dragFrameMillis = 1000 / 60

type dragKind int

const (
	dragMove dragKind = iota
	dragResize
)

// drag is an interactive move or resize in progress. The pointer stays
// grabbed until the button is released.
type drag struct {
	kind   dragKind
	client ClientID
	// Client origin and pointer position when the drag started.
	ocx, ocy int
	px, py   int
	lastTime uint32
}

// MoveMouse starts dragging the selected client with the pointer.
func (w *WM) MoveMouse(Arg) {
	c := w.Selected()
	if c == nil || c.IsFullscreen || w.drag != nil {
		return
	}
	w.restack(w.selmon)
	if !w.backend.GrabPointer(platform.CursorMove) {
		return
	}
	x, y, ok := w.backend.PointerPosition()
	if !ok {
		w.backend.UngrabPointer()
		return
	}
	w.drag = &drag{kind: dragMove, client: c.ID, ocx: c.X, ocy: c.Y, px: x, py: y}
}

// ResizeMouse starts resizing the selected client from its bottom right
// corner.
func (w *WM) ResizeMouse(Arg) {
	c := w.Selected()
	if c == nil || c.IsFullscreen || w.drag != nil {
		return
	}
	w.restack(w.selmon)
	if !w.backend.GrabPointer(platform.CursorResize) {
		return
	}
	w.backend.WarpPointer(c.Win, c.W+c.BW-1, c.H+c.BW-1)
	w.drag = &drag{kind: dragResize, client: c.ID, ocx: c.X, ocy: c.Y}
}

// dragMotion applies one throttled pointer motion to the drag.
func (w *WM) dragMotion(e platform.MotionNotify) {
	d := w.drag
	c := w.Client(d.client)
	if c == nil {
		w.cancelDrag()
		return
	}
	if e.Time-d.lastTime <= dragFrameMillis {
		return
	}
	d.lastTime = e.Time

	m := w.selmon
	arranges := m.Layout().Arranges()
	snap := w.cfg.Snap

	switch d.kind {
	case dragMove:
		nx := d.ocx + (e.RootX - d.px)
		ny := d.ocy + (e.RootY - d.py)
		work := m.Work
		if abs(work.X-nx) < snap {
			nx = work.X
		} else if abs(work.X+work.Width-(nx+c.Width())) < snap {
			nx = work.X + work.Width - c.Width()
		}
		if abs(work.Y-ny) < snap {
			ny = work.Y
		} else if abs(work.Y+work.Height-(ny+c.Height())) < snap {
			ny = work.Y + work.Height - c.Height()
		}
		if !c.IsFloating && arranges && (abs(nx-c.X) > snap || abs(ny-c.Y) > snap) {
			w.ToggleFloating(Arg{})
		}
		if !arranges || c.IsFloating {
			w.resize(c, nx, ny, c.W, c.H, true)
		}
	case dragResize:
		nw := max(e.RootX-d.ocx-2*c.BW+1, 1)
		nh := max(e.RootY-d.ocy-2*c.BW+1, 1)
		cw, sw := c.Mon.Work, m.Work
		if cw.X+nw >= sw.X && cw.X+nw <= sw.X+sw.Width &&
			cw.Y+nh >= sw.Y && cw.Y+nh <= sw.Y+sw.Height {
			if !c.IsFloating && arranges && (abs(nw-c.W) > snap || abs(nh-c.H) > snap) {
				w.ToggleFloating(Arg{})
			}
		}
		if !arranges || c.IsFloating {
			w.resize(c, c.X, c.Y, nw, nh, true)
		}
	}
}

// endDrag releases the pointer and hands the client to the monitor it was
// dropped on.
func (w *WM) endDrag() {
	d := w.drag
	w.drag = nil
	c := w.Client(d.client)
	if c != nil && d.kind == dragResize {
		w.backend.WarpPointer(c.Win, c.W+c.BW-1, c.H+c.BW-1)
	}
	w.backend.UngrabPointer()
	if d.kind == dragResize {
		w.backend.DiscardEnterEvents()
	}
	if c == nil {
		return
	}
	if m := w.rectToMonitor(c.Rect()); m != w.selmon {
		w.sendToMonitor(c, m)
		w.selmon = m
		w.focus(nil)
	}
}

func (w *WM) cancelDrag() {
	w.drag = nil
	w.backend.UngrabPointer()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
