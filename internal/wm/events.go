package wm

import (
	"github.com/1broseidon/tagwm/internal/config"
	"github.com/1broseidon/tagwm/internal/platform"
)

// handle dispatches one event to its handler. Unknown kinds are ignored.
func (w *WM) handle(ev platform.Event) {
	switch e := ev.(type) {
	case platform.ButtonPress:
		w.buttonPress(e)
	case platform.ButtonRelease:
		w.buttonRelease(e)
	case platform.ClientMessage:
		w.clientMessage(e)
	case platform.ConfigureRequest:
		w.configureRequest(e)
	case platform.ConfigureNotify:
		w.configureNotify(e)
	case platform.DestroyNotify:
		w.destroyNotify(e)
	case platform.EnterNotify:
		w.enterNotify(e)
	case platform.Expose:
		w.expose(e)
	case platform.FocusIn:
		w.focusIn(e)
	case platform.KeyPress:
		w.keyPress(e)
	case platform.MappingNotify:
		w.mappingNotify(e)
	case platform.MapRequest:
		w.mapRequest(e)
	case platform.MotionNotify:
		w.motionNotify(e)
	case platform.PropertyNotify:
		w.propertyNotify(e)
	case platform.UnmapNotify:
		w.unmapNotify(e)
	default:
		w.logger.Debug("ignoring event", "type", ev)
	}
}

func (w *WM) buttonPress(e platform.ButtonPress) {
	if w.drag != nil {
		return
	}
	click := config.ClickRootWin
	var arg Arg

	if m := w.windowToMonitor(e.Window); m != nil && m != w.selmon {
		w.unfocus(w.Selected(), true)
		w.selmon = m
		w.focus(nil)
	}

	m := w.selmon
	if m.BarWin != 0 && e.Window == m.BarWin {
		x, i := 0, 0
		for ; i < len(w.cfg.Tags); i++ {
			x += w.backend.TextWidth(w.cfg.Tags[i])
			if e.X < x {
				break
			}
		}
		switch {
		case i < len(w.cfg.Tags):
			click = config.ClickTagBar
			arg.UInt = 1 << i
		case e.X < x+w.backend.TextWidth(m.Symbol):
			click = config.ClickLtSymbol
		case e.X > m.Work.Width-w.backend.TextWidth(w.statusText()):
			click = config.ClickStatusText
		default:
			click = config.ClickWinTitle
		}
	} else if c := w.windowToClient(e.Window); c != nil {
		w.focus(c)
		w.restack(w.selmon)
		w.backend.ReplayPointer()
		click = config.ClickClientWin
	}

	for _, b := range w.buttons {
		if b.click != click || b.button != e.Button || b.mods != e.Mods {
			continue
		}
		a := b.arg
		if b.fromClick {
			a = arg
		}
		b.run(w, a)
	}
}

func (w *WM) buttonRelease(platform.ButtonRelease) {
	if w.drag != nil {
		w.endDrag()
	}
}

func (w *WM) clientMessage(e platform.ClientMessage) {
	c := w.windowToClient(e.Window)
	if c == nil {
		return
	}
	switch e.Type {
	case "_NET_WM_STATE":
		if e.Properties[0] == "_NET_WM_STATE_FULLSCREEN" || e.Properties[1] == "_NET_WM_STATE_FULLSCREEN" {
			on := e.Data[0] == platform.StateAdd ||
				(e.Data[0] == platform.StateToggle && !c.IsFullscreen)
			w.setFullscreen(c, on)
		}
	case "_NET_ACTIVE_WINDOW":
		if c != w.Selected() && !c.IsUrgent {
			w.setUrgent(c, true)
		}
	}
}

// configureRequest honours geometry requests of floating clients, clamped
// into their monitor, answers tiled ones with their current geometry and
// forwards requests of unmanaged windows untouched.
func (w *WM) configureRequest(e platform.ConfigureRequest) {
	c := w.windowToClient(e.Window)
	if c == nil {
		w.backend.ForwardConfigure(e)
		w.backend.Sync()
		return
	}

	switch {
	case e.Mask&platform.ConfigBorderWidth != 0:
		c.BW = e.BorderWidth
	case c.IsFloating || !w.selmon.Layout().Arranges():
		s := c.Mon.Screen
		if e.Mask&platform.ConfigX != 0 {
			c.OldX = c.X
			c.X = s.X + e.X
		}
		if e.Mask&platform.ConfigY != 0 {
			c.OldY = c.Y
			c.Y = s.Y + e.Y
		}
		if e.Mask&platform.ConfigWidth != 0 {
			c.OldW = c.W
			c.W = e.Width
		}
		if e.Mask&platform.ConfigHeight != 0 {
			c.OldH = c.H
			c.H = e.Height
		}
		if c.X+c.W > s.X+s.Width && c.IsFloating {
			c.X = s.X + (s.Width/2 - c.Width()/2)
		}
		if c.Y+c.H > s.Y+s.Height && c.IsFloating {
			c.Y = s.Y + (s.Height/2 - c.Height()/2)
		}
		moved := e.Mask&(platform.ConfigX|platform.ConfigY) != 0
		resized := e.Mask&(platform.ConfigWidth|platform.ConfigHeight) != 0
		if moved && !resized {
			w.configure(c)
		}
		if w.isVisible(c) {
			w.backend.MoveResize(c.Win, c.Rect(), c.BW)
		}
	default:
		w.configure(c)
	}
	w.backend.Sync()
}

// configureNotify on the root window signals a screen size change.
func (w *WM) configureNotify(e platform.ConfigureNotify) {
	if e.Window != w.backend.Root() {
		return
	}
	dirty := w.sw != e.Width || w.sh != e.Height
	w.sw, w.sh = e.Width, e.Height
	if !w.updateGeometry() && !dirty {
		return
	}
	w.updateBars()
	for _, m := range w.mons {
		for _, id := range m.clients {
			if c := w.clients[id]; c != nil && c.IsFullscreen {
				s := m.Screen
				w.resizeClient(c, s.X, s.Y, s.Width, s.Height)
			}
		}
		if m.BarWin != 0 {
			w.backend.MoveBar(m.BarWin, w.barRect(m))
		}
	}
	w.focus(nil)
	w.arrange(nil)
	w.logger.Info("screen geometry changed", "width", w.sw, "height", w.sh, "monitors", len(w.mons))
}

func (w *WM) destroyNotify(e platform.DestroyNotify) {
	if c := w.windowToClient(e.Window); c != nil {
		w.unmanage(c, true)
	}
}

// enterNotify implements focus-follows-mouse across clients and monitors.
func (w *WM) enterNotify(e platform.EnterNotify) {
	if w.drag != nil {
		return
	}
	if (!e.Normal || e.Inferior) && e.Window != w.backend.Root() {
		return
	}
	c := w.windowToClient(e.Window)
	m := w.windowToMonitor(e.Window)
	if c != nil {
		m = c.Mon
	}
	if m != w.selmon {
		w.unfocus(w.Selected(), true)
		w.selmon = m
	} else if c == nil || c == w.Selected() {
		return
	}
	w.focus(c)
}

func (w *WM) expose(e platform.Expose) {
	if e.Count != 0 {
		return
	}
	if m := w.windowToMonitor(e.Window); m != nil {
		w.drawBar(m)
	}
}

// focusIn takes focus back from clients that grabbed it without asking.
func (w *WM) focusIn(e platform.FocusIn) {
	if sel := w.Selected(); sel != nil && e.Window != sel.Win {
		w.setFocus(sel)
	}
}

func (w *WM) keyPress(e platform.KeyPress) {
	for _, i := range w.keyTable.Lookup(e.Mods, e.Key) {
		k := w.keys[i]
		k.run(w, k.arg)
	}
}

func (w *WM) mappingNotify(e platform.MappingNotify) {
	if e.Pointer {
		return
	}
	w.backend.RefreshKeyboardMapping()
	w.grabKeys()
}

func (w *WM) mapRequest(e platform.MapRequest) {
	attrs, err := w.backend.Attributes(e.Window)
	if err != nil || attrs.OverrideRedirect {
		return
	}
	if w.windowToClient(e.Window) == nil {
		w.manage(e.Window, attrs)
	}
}

// motionNotify feeds drags and switches monitors as the pointer crosses
// the root window.
func (w *WM) motionNotify(e platform.MotionNotify) {
	if w.drag != nil {
		w.dragMotion(e)
		return
	}
	if e.Window != w.backend.Root() {
		return
	}
	m := w.rectToMonitor(rectOf(e.RootX, e.RootY, 1, 1))
	if m != w.motionMon && w.motionMon != nil {
		w.unfocus(w.Selected(), true)
		w.selmon = m
		w.focus(nil)
	}
	w.motionMon = m
}

func (w *WM) propertyNotify(e platform.PropertyNotify) {
	if e.Window == w.backend.Root() && e.Atom == "WM_NAME" {
		w.rootStatus = w.backend.RootName()
		return
	}
	if e.Deleted {
		return
	}
	c := w.windowToClient(e.Window)
	if c == nil {
		return
	}
	switch e.Atom {
	case "WM_TRANSIENT_FOR":
		if parent, ok := w.backend.TransientFor(c.Win); ok && !c.IsFloating {
			if w.windowToClient(parent) != nil {
				c.IsFloating = true
				w.arrange(c.Mon)
			}
		}
	case "WM_NORMAL_HINTS":
		c.HintsValid = false
	case "WM_HINTS":
		w.updateWMHints(c)
	case "WM_NAME", "_NET_WM_NAME":
		w.updateTitle(c)
	case "_NET_WM_WINDOW_TYPE":
		w.updateWindowType(c)
	}
}

func (w *WM) unmapNotify(e platform.UnmapNotify) {
	c := w.windowToClient(e.Window)
	if c == nil {
		return
	}
	if e.Synthetic {
		w.backend.SetWindowState(c.Win, platform.StateWithdrawn)
		return
	}
	w.unmanage(c, false)
}
