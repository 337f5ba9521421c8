package wm

import "github.com/1broseidon/tagwm/internal/platform"

const defaultStatus = "tagwm"

// statusText is the IPC override when set, else the root window name.
func (w *WM) statusText() string {
	if w.hasOverride {
		return w.statusOverride
	}
	if w.rootStatus != "" {
		return w.rootStatus
	}
	return defaultStatus
}

// SetStatus overrides the root window name as the bar status. An empty
// text clears the override.
func (w *WM) SetStatus(text string) {
	w.statusOverride = truncateBytes(text, MaxNameBytes)
	w.hasOverride = text != ""
}

// barContent composes what the bar of m shows. Status text only appears on
// the selected monitor.
func (w *WM) barContent(m *Monitor) platform.BarContent {
	var occupied, urgent uint32
	for _, id := range m.clients {
		c := w.clients[id]
		if c == nil {
			continue
		}
		occupied |= c.Tags
		if c.IsUrgent {
			urgent |= c.Tags
		}
	}

	sel := w.Client(m.Sel)
	content := platform.BarContent{
		Tags:   make([]platform.TagCell, len(w.cfg.Tags)),
		Symbol: m.Symbol,
		Active: m == w.selmon,
	}
	for i, label := range w.cfg.Tags {
		bit := uint32(1) << i
		content.Tags[i] = platform.TagCell{
			Label:    label,
			Selected: m.TagSet[m.SelTags]&bit != 0,
			Occupied: occupied&bit != 0,
			Urgent:   urgent&bit != 0,
			Focused:  sel != nil && sel.Tags&bit != 0,
		}
	}
	if m == w.selmon {
		content.Status = w.statusText()
	}
	if sel != nil {
		content.HasClient = true
		content.Title = sel.Name
		content.Floating = sel.IsFloating
		content.Fixed = sel.IsFixed
	}
	return content
}

func (w *WM) drawBar(m *Monitor) {
	if m.BarWin == 0 || !m.ShowBar {
		return
	}
	if err := w.backend.DrawBar(m.BarWin, m.Work.Width, w.barContent(m)); err != nil {
		w.logger.Debug("failed to draw bar", "monitor", m.Num, "error", err)
	}
}

func (w *WM) drawBars() {
	for _, m := range w.mons {
		w.drawBar(m)
	}
}
