package wm

import "github.com/1broseidon/tagwm/internal/platform"

// attach inserts c at the head of its monitor's client list.
func (w *WM) attach(c *Client) {
	m := c.Mon
	m.clients = append(m.clients, 0)
	copy(m.clients[1:], m.clients)
	m.clients[0] = c.ID
}

// detach removes c from its monitor's client list. Detaching a client that
// is not in the list is a no-op.
func (w *WM) detach(c *Client) {
	m := c.Mon
	m.clients = removeID(m.clients, c.ID)
}

func removeID(ids []ClientID, id ClientID) []ClientID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// windowToClient finds the client managing win, scanning monitor by
// monitor. Foreign windows yield nil.
func (w *WM) windowToClient(win platform.WindowID) *Client {
	for _, m := range w.mons {
		for _, id := range m.clients {
			if c := w.clients[id]; c != nil && c.Win == win {
				return c
			}
		}
	}
	return nil
}

// tiled returns the visible, non-floating clients of m in list order.
func (w *WM) tiled(m *Monitor) []*Client {
	var out []*Client
	for _, id := range m.clients {
		c := w.clients[id]
		if c != nil && !c.IsFloating && w.isVisible(c) {
			out = append(out, c)
		}
	}
	return out
}

// nextTiled returns the first tiled client at or after position i of the
// client list, with its position, or nil.
func (w *WM) nextTiled(m *Monitor, i int) (*Client, int) {
	for ; i < len(m.clients); i++ {
		c := w.clients[m.clients[i]]
		if c != nil && !c.IsFloating && w.isVisible(c) {
			return c, i
		}
	}
	return nil, -1
}

func indexOf(ids []ClientID, id ClientID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// updateClientList publishes _NET_CLIENT_LIST in monitor then list order.
func (w *WM) updateClientList() {
	var wins []platform.WindowID
	for _, m := range w.mons {
		for _, id := range m.clients {
			if c := w.clients[id]; c != nil {
				wins = append(wins, c.Win)
			}
		}
	}
	w.backend.SetClientList(wins)
}
