package wm

import (
	"strings"

	"github.com/1broseidon/tagwm/internal/platform"
	"github.com/1broseidon/tagwm/internal/tiling"
)

// Scan manages the windows that already exist: ordinary windows first,
// transients in a second pass so their parents are known by then.
func (w *WM) Scan() error {
	wins, err := w.backend.QueryTree()
	if err != nil {
		return err
	}

	var transients []platform.WindowID
	for _, win := range wins {
		attrs, err := w.backend.Attributes(win)
		if err != nil || attrs.OverrideRedirect {
			continue
		}
		if _, ok := w.backend.TransientFor(win); ok {
			transients = append(transients, win)
			continue
		}
		if attrs.Viewable || w.backend.WindowState(win) == platform.StateIconic {
			w.manage(win, attrs)
		}
	}
	for _, win := range transients {
		attrs, err := w.backend.Attributes(win)
		if err != nil {
			continue
		}
		if attrs.Viewable || w.backend.WindowState(win) == platform.StateIconic {
			w.manage(win, attrs)
		}
	}
	w.logger.Info("scanned existing windows", "found", len(wins), "managed", len(w.clients))
	return nil
}

// manage starts managing win.
func (w *WM) manage(win platform.WindowID, attrs platform.Attributes) *Client {
	c := &Client{
		ID:    w.nextID,
		Win:   win,
		X:     attrs.X,
		Y:     attrs.Y,
		W:     attrs.Width,
		H:     attrs.Height,
		OldBW: attrs.BorderWidth,
	}
	w.nextID++
	c.OldX, c.OldY, c.OldW, c.OldH = c.X, c.Y, c.W, c.H
	w.clients[c.ID] = c

	w.updateTitle(c)
	parentWin, transient := w.backend.TransientFor(win)
	if parent := w.windowToClient(parentWin); transient && parent != nil {
		c.Mon = parent.Mon
		c.Tags = parent.Tags
	} else {
		c.Mon = w.selmon
		w.applyRules(c)
	}

	work := c.Mon.Work
	if c.X+c.Width() > work.X+work.Width {
		c.X = work.X + work.Width - c.Width()
	}
	if c.Y+c.Height() > work.Y+work.Height {
		c.Y = work.Y + work.Height - c.Height()
	}
	c.X = max(c.X, work.X)
	c.Y = max(c.Y, work.Y)
	c.BW = w.cfg.BorderWidth

	w.backend.SetBorderWidth(win, c.BW)
	w.backend.SetBorderScheme(win, platform.SchemeNormal)
	w.configure(c)
	w.updateWindowType(c)
	w.updateSizeHints(c)
	w.updateWMHints(c)
	w.backend.SelectClientInput(win)
	w.grabButtons(c, false)
	if !c.IsFloating {
		c.IsFloating = transient || c.IsFixed
		c.OldState = c.IsFloating
	}
	if c.IsFloating {
		w.backend.Raise(win)
	}
	w.attach(c)
	w.attachStack(c)
	w.updateClientList()
	// Park the window off screen until the first arrange places it.
	w.backend.MoveResize(win, rectOf(c.X+2*w.sw, c.Y, c.W, c.H), c.BW)
	w.backend.SetWindowState(win, platform.StateNormal)
	// A client ruled onto a hidden tag leaves its monitor's selection alone.
	if w.isVisible(c) {
		if c.Mon == w.selmon {
			w.unfocus(w.Selected(), false)
		}
		c.Mon.Sel = c.ID
	}
	w.arrange(c.Mon)
	w.backend.Map(win)
	w.focus(nil)

	w.logger.Debug("client managed",
		"window", win,
		"name", c.Name,
		"monitor", c.Mon.Num,
		"tags", c.Tags,
		"floating", c.IsFloating)
	return c
}

// unmanage forgets c. When the window still exists its border width and
// withdrawn state are restored.
func (w *WM) unmanage(c *Client, destroyed bool) {
	m := c.Mon
	if w.drag != nil && w.drag.client == c.ID {
		w.cancelDrag()
	}
	w.detach(c)
	w.detachStack(c)
	if !destroyed {
		w.backend.SetBorderWidth(c.Win, c.OldBW)
		w.backend.UngrabButtons(c.Win)
		w.backend.SetWindowState(c.Win, platform.StateWithdrawn)
		w.backend.Sync()
	}
	delete(w.clients, c.ID)
	w.focus(nil)
	w.updateClientList()
	w.arrange(m)
	w.logger.Debug("client unmanaged", "window", c.Win, "destroyed", destroyed)
}

// applyRules assigns tags, floating state and monitor from the first and
// every further matching rule.
func (w *WM) applyRules(c *Client) {
	c.IsFloating = false
	c.Tags = 0

	class, instance := w.backend.Class(c.Win)
	if class == "" {
		class = brokenName
	}
	if instance == "" {
		instance = brokenName
	}

	for _, r := range w.cfg.Rules {
		if (r.Title == "" || strings.Contains(c.Name, r.Title)) &&
			(r.Class == "" || strings.Contains(class, r.Class)) &&
			(r.Instance == "" || strings.Contains(instance, r.Instance)) {
			c.IsFloating = r.Floating
			c.Tags |= r.TagMask()
			if r.Monitor > 0 && r.Monitor <= len(w.mons) {
				c.Mon = w.mons[r.Monitor-1]
			}
		}
	}

	if masked := c.Tags & w.tagMask(); masked != 0 {
		c.Tags = masked
	} else {
		c.Tags = c.Mon.TagSet[c.Mon.SelTags]
	}
}

func (w *WM) updateTitle(c *Client) {
	name := w.backend.Title(c.Win)
	if name == "" {
		name = brokenName
	}
	c.Name = truncateBytes(name, MaxNameBytes)
}

func (w *WM) updateSizeHints(c *Client) {
	hints, ok := w.backend.NormalHints(c.Win)
	if !ok {
		hints = tiling.SizeHints{}
	}
	c.Hints = hints
	c.IsFixed = hints.Fixed()
	c.HintsValid = true
}

func (w *WM) updateWMHints(c *Client) {
	hints, ok := w.backend.WMHints(c.Win)
	if !ok {
		return
	}
	if c == w.Selected() && hints.Urgent {
		w.backend.SetUrgencyHint(c.Win, false)
	} else {
		c.IsUrgent = hints.Urgent
	}
	if hints.InputSet {
		c.NeverFocus = !hints.Input
	} else {
		c.NeverFocus = false
	}
}

func (w *WM) updateWindowType(c *Client) {
	fullscreen, dialog := w.backend.WindowType(c.Win)
	if fullscreen {
		w.setFullscreen(c, true)
	}
	if dialog {
		c.IsFloating = true
	}
}

// setFullscreen switches c to cover its whole monitor, borderless and
// floating, or restores its previous geometry, border and floating state.
func (w *WM) setFullscreen(c *Client, on bool) {
	switch {
	case on && !c.IsFullscreen:
		w.backend.SetFullscreenState(c.Win, true)
		c.IsFullscreen = true
		c.OldState = c.IsFloating
		c.OldBW = c.BW
		c.BW = 0
		c.IsFloating = true
		s := c.Mon.Screen
		w.resizeClient(c, s.X, s.Y, s.Width, s.Height)
		w.backend.Raise(c.Win)
	case !on && c.IsFullscreen:
		w.backend.SetFullscreenState(c.Win, false)
		c.IsFullscreen = false
		c.IsFloating = c.OldState
		c.BW = c.OldBW
		c.X, c.Y, c.W, c.H = c.OldX, c.OldY, c.OldW, c.OldH
		w.resizeClient(c, c.X, c.Y, c.W, c.H)
		w.arrange(c.Mon)
	}
}

// configure tells c its geometry with a synthetic ConfigureNotify.
func (w *WM) configure(c *Client) {
	w.backend.SendConfigureNotify(c.Win, c.Rect(), c.BW)
}
