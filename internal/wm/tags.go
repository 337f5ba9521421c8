package wm

// isVisible reports whether c shares a tag with its monitor's active tagset.
func (w *WM) isVisible(c *Client) bool {
	return c.Tags&c.Mon.TagSet[c.Mon.SelTags] != 0
}

// IsVisible is the exported form of the visibility filter.
func (w *WM) IsVisible(c *Client) bool { return w.isVisible(c) }

// visibleCount counts every visible client on m, floating ones included.
func (w *WM) visibleCount(m *Monitor) int {
	n := 0
	for _, id := range m.clients {
		if c := w.clients[id]; c != nil && w.isVisible(c) {
			n++
		}
	}
	return n
}
