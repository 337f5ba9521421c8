package wm

import "github.com/1broseidon/tagwm/internal/platform"

// attachStack pushes c onto the head of its monitor's focus stack.
func (w *WM) attachStack(c *Client) {
	m := c.Mon
	m.stack = append(m.stack, 0)
	copy(m.stack[1:], m.stack)
	m.stack[0] = c.ID
}

// detachStack removes c from the focus stack. When c was selected the
// most recently focused visible client takes over, or none.
func (w *WM) detachStack(c *Client) {
	m := c.Mon
	m.stack = removeID(m.stack, c.ID)
	if m.Sel == c.ID {
		m.Sel = 0
		if t := w.firstVisibleInStack(m); t != nil {
			m.Sel = t.ID
		}
	}
}

func (w *WM) firstVisibleInStack(m *Monitor) *Client {
	for _, id := range m.stack {
		if c := w.clients[id]; c != nil && w.isVisible(c) {
			return c
		}
	}
	return nil
}

// focus gives c the input focus. A nil or hidden c means "pick the most
// recently focused visible client of the selected monitor"; with none the
// root window takes focus.
func (w *WM) focus(c *Client) {
	if c == nil || !w.isVisible(c) {
		c = w.firstVisibleInStack(w.selmon)
	}
	if sel := w.Selected(); sel != nil && sel != c {
		w.unfocus(sel, false)
	}
	if c != nil {
		if c.Mon != w.selmon {
			w.selmon = c.Mon
		}
		if c.IsUrgent {
			w.setUrgent(c, false)
		}
		w.detachStack(c)
		w.attachStack(c)
		w.grabButtons(c, true)
		w.backend.SetBorderScheme(c.Win, platform.SchemeSelected)
		w.setFocus(c)
		w.selmon.Sel = c.ID
		return
	}
	w.backend.FocusRoot()
	w.selmon.Sel = 0
}

// unfocus drops the visual focus of c and, with setFocus, hands input focus
// to the root window.
func (w *WM) unfocus(c *Client, setFocus bool) {
	if c == nil {
		return
	}
	w.grabButtons(c, false)
	w.backend.SetBorderScheme(c.Win, platform.SchemeNormal)
	if setFocus {
		w.backend.FocusRoot()
	}
}

func (w *WM) setFocus(c *Client) {
	if !c.NeverFocus {
		w.backend.Focus(c.Win)
	}
	w.backend.TakeFocus(c.Win)
}

func (w *WM) setUrgent(c *Client, urgent bool) {
	c.IsUrgent = urgent
	w.backend.SetUrgencyHint(c.Win, urgent)
}

// sendToMonitor moves c to m with m's active tags, attaching it at the
// head of both orderings there and selecting it.
func (w *WM) sendToMonitor(c *Client, m *Monitor) {
	if c.Mon == m {
		return
	}
	w.unfocus(c, true)
	w.detach(c)
	w.detachStack(c)
	c.Mon = m
	c.Tags = m.TagSet[m.SelTags]
	w.attach(c)
	w.attachStack(c)
	m.Sel = c.ID
	w.focus(nil)
	w.arrange(nil)
	w.logger.Debug("client sent to monitor", "window", c.Win, "monitor", m.Num)
}
