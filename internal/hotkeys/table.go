package hotkeys

// Table maps key chords to binding indexes. Several bindings may share a
// chord; all of them fire, in configuration order.
type Table struct {
	index map[Combo][]int
	order []Combo
}

// NewTable builds a lookup table over combos, where combos[i] belongs to
// binding i.
func NewTable(combos []Combo) *Table {
	t := &Table{index: make(map[Combo][]int, len(combos))}
	for i, c := range combos {
		if _, seen := t.index[c]; !seen {
			t.order = append(t.order, c)
		}
		t.index[c] = append(t.index[c], i)
	}
	return t
}

// Lookup returns the binding indexes for a pressed chord.
func (t *Table) Lookup(mods uint16, key string) []int {
	if t == nil {
		return nil
	}
	return t.index[Combo{Mods: mods, Key: key}]
}

// Combos returns every distinct chord in first-seen order, ready to grab.
func (t *Table) Combos() []Combo {
	if t == nil {
		return nil
	}
	out := make([]Combo, len(t.order))
	copy(out, t.order)
	return out
}
