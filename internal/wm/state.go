package wm

import (
	"github.com/1broseidon/tagwm/internal/platform"
	"github.com/1broseidon/tagwm/internal/tiling"
)

// ClientState is a read-only view of one client.
type ClientState struct {
	Window     platform.WindowID
	Name       string
	Tags       uint32
	Geometry   tiling.Rect
	Floating   bool
	Fullscreen bool
	Urgent     bool
	Fixed      bool
}

// MonitorState is a read-only view of one monitor. Clients are in list
// order; Stack holds windows most recently focused first.
type MonitorState struct {
	Num      int
	Screen   tiling.Rect
	Work     tiling.Rect
	TagSet   uint32
	Layout   string
	Symbol   string
	MFact    float64
	NMaster  int
	ShowBar  bool
	Clients  []ClientState
	Stack    []platform.WindowID
	Selected platform.WindowID
}

// State is a snapshot of the whole window manager.
type State struct {
	Monitors        []MonitorState
	SelectedMonitor int
	Tags            []string
	Status          string
}

// Snapshot copies the current state. Call it on the dispatcher.
func (w *WM) Snapshot() State {
	st := State{
		Tags:   append([]string(nil), w.cfg.Tags...),
		Status: w.statusText(),
	}
	for _, m := range w.mons {
		ms := MonitorState{
			Num:     m.Num,
			Screen:  m.Screen,
			Work:    m.Work,
			TagSet:  m.Tagset(),
			Layout:  m.Layout().String(),
			Symbol:  m.Symbol,
			MFact:   m.MFact,
			NMaster: m.NMaster,
			ShowBar: m.ShowBar,
		}
		for _, id := range m.clients {
			c := w.clients[id]
			if c == nil {
				continue
			}
			ms.Clients = append(ms.Clients, ClientState{
				Window:     c.Win,
				Name:       c.Name,
				Tags:       c.Tags,
				Geometry:   c.Rect(),
				Floating:   c.IsFloating,
				Fullscreen: c.IsFullscreen,
				Urgent:     c.IsUrgent,
				Fixed:      c.IsFixed,
			})
		}
		for _, id := range m.stack {
			if c := w.clients[id]; c != nil {
				ms.Stack = append(ms.Stack, c.Win)
			}
		}
		if sel := w.Client(m.Sel); sel != nil {
			ms.Selected = sel.Win
		}
		if m == w.selmon {
			st.SelectedMonitor = m.Num
		}
		st.Monitors = append(st.Monitors, ms)
	}
	return st
}
