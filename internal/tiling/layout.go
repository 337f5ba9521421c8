package tiling

import (
	"fmt"
	"math"
	"strings"
)

// Rect represents a window position and size
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Overlap returns the area shared by r and o, or 0 when they are disjoint.
func (r Rect) Overlap(o Rect) int {
	w := min(r.X+r.Width, o.X+o.Width) - max(r.X, o.X)
	h := min(r.Y+r.Height, o.Y+o.Height) - max(r.Y, o.Y)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Kind identifies one of the built-in arrangement algorithms.
type Kind int

const (
	KindTile Kind = iota
	KindMonocle
	KindGrid
	KindFloat
)

// Kinds lists every layout in declaration order.
var Kinds = []Kind{KindTile, KindMonocle, KindGrid, KindFloat}

var kindNames = map[Kind]string{
	KindTile:    "tile",
	KindMonocle: "monocle",
	KindGrid:    "grid",
	KindFloat:   "float",
}

var kindSymbols = map[Kind]string{
	KindTile:    "[]=",
	KindMonocle: "[M]",
	KindGrid:    "###",
	KindFloat:   "><>",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Symbol is the default bar indicator for the layout.
func (k Kind) Symbol() string {
	return kindSymbols[k]
}

// Arranges reports whether the layout positions tiled clients at all.
// The float layout leaves every client where it is.
func (k Kind) Arranges() bool {
	return k != KindFloat
}

// ParseKind resolves a layout name as written in the config file.
func ParseKind(name string) (Kind, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, k := range Kinds {
		if kindNames[k] == needle {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown layout %q", name)
}

// Params carries the per-monitor inputs of an arrangement.
type Params struct {
	Area        Rect
	MFact       float64
	NMaster     int
	BorderWidth int
	// Borders holds the border width of each tiled client by index.
	// Clients past its end use BorderWidth.
	Borders []int
}

func (p Params) border(i int) int {
	if i < len(p.Borders) {
		return p.Borders[i]
	}
	return p.BorderWidth
}

// Placer applies the client-area rectangle computed for the i-th tiled
// client and returns the rectangle the client actually took. Size hints may
// shrink it; the tile layout carries the difference into later clients.
type Placer func(i int, r Rect) Rect

// Result is the outcome of an arrangement.
type Result struct {
	Symbol string
	Rects  []Rect
}

// Apply runs the layout identified by kind over tiled clients. visible is
// the number of visible clients on the monitor, floating ones included,
// and only feeds the monocle indicator.
func Apply(kind Kind, p Params, tiled, visible int, place Placer) Result {
	if place == nil {
		place = func(_ int, r Rect) Rect { return r }
	}

	res := Result{Symbol: kind.Symbol()}
	switch kind {
	case KindTile:
		res.Rects = Tile(p, tiled, place)
	case KindMonocle:
		if visible > 0 {
			res.Symbol = MonocleSymbol(visible)
		}
		res.Rects = Monocle(p, tiled, place)
	case KindGrid:
		res.Rects = Grid(p, tiled, place)
	case KindFloat:
		// Nothing to position.
	}
	return res
}

// MonocleSymbol renders the visible client counter shown by monocle.
func MonocleSymbol(visible int) string {
	return fmt.Sprintf("[%d]", visible)
}

// Tile splits the area into a master column holding the first NMaster
// clients and a stack column holding the rest. Each column hands out
// (remaining height / remaining clients) in order, so rounding remainders
// and size hint shortfalls flow into later clients.
func Tile(p Params, n int, place Placer) []Rect {
	if n == 0 {
		return nil
	}
	area := p.Area

	var mw int
	if n > p.NMaster {
		if p.NMaster > 0 {
			mw = int(float64(area.Width) * p.MFact)
		}
	} else {
		mw = area.Width
	}
	masters := min(n, p.NMaster)

	rects := make([]Rect, 0, n)
	my, ty := 0, 0
	for i := 0; i < n; i++ {
		bw := p.border(i)
		if i < p.NMaster {
			h := (area.Height - my) / (masters - i)
			r := place(i, Rect{
				X:      area.X,
				Y:      area.Y + my,
				Width:  mw - 2*bw,
				Height: h - 2*bw,
			})
			if my+r.Height+2*bw < area.Height {
				my += r.Height + 2*bw
			}
			rects = append(rects, r)
			continue
		}

		h := (area.Height - ty) / (n - i)
		r := place(i, Rect{
			X:      area.X + mw,
			Y:      area.Y + ty,
			Width:  area.Width - mw - 2*bw,
			Height: h - 2*bw,
		})
		if ty+r.Height+2*bw < area.Height {
			ty += r.Height + 2*bw
		}
		rects = append(rects, r)
	}
	return rects
}

// Monocle gives every tiled client the whole area.
func Monocle(p Params, n int, place Placer) []Rect {
	if n == 0 {
		return nil
	}
	rects := make([]Rect, 0, n)
	for i := 0; i < n; i++ {
		bw := p.border(i)
		rects = append(rects, place(i, Rect{
			X:      p.Area.X,
			Y:      p.Area.Y,
			Width:  p.Area.Width - 2*bw,
			Height: p.Area.Height - 2*bw,
		}))
	}
	return rects
}

// CalculateGrid determines the optimal grid dimensions for the given number of windows
func CalculateGrid(numWindows int) (rows, cols int) {
	if numWindows == 0 {
		return 0, 0
	}

	// Calculate columns first (ceiling of square root)
	cols = int(math.Ceil(math.Sqrt(float64(numWindows))))

	// Calculate rows needed
	rows = int(math.Ceil(float64(numWindows) / float64(cols)))

	return rows, cols
}

// Grid arranges clients in a near-square grid. A short last row stretches
// its cells across the full width so no hole is left behind.
func Grid(p Params, n int, place Placer) []Rect {
	if n == 0 {
		return nil
	}
	area := p.Area
	rows, cols := CalculateGrid(n)

	cellWidth := area.Width / cols
	cellHeight := area.Height / rows

	lastRow := rows - 1
	inLastRow := n - lastRow*cols
	lastWidth := cellWidth
	if inLastRow > 0 && inLastRow < cols {
		lastWidth = area.Width / inLastRow
	}

	rects := make([]Rect, 0, n)
	for i := 0; i < n; i++ {
		bw := p.border(i)
		row := i / cols
		col := i % cols
		w := cellWidth
		if row == lastRow {
			w = lastWidth
			col = i - lastRow*cols
		}
		h := cellHeight
		// The bottom row absorbs the division remainder.
		if row == lastRow {
			h = area.Height - row*cellHeight
		}
		rects = append(rects, place(i, Rect{
			X:      area.X + col*w,
			Y:      area.Y + row*cellHeight,
			Width:  max(w-2*bw, 1),
			Height: max(h-2*bw, 1),
		}))
	}
	return rects
}

// BarRegion splits a monitor rectangle into the work area left for clients
// and the y coordinate of the bar. A hidden bar is parked above the
// monitor at -barHeight.
func BarRegion(screen Rect, barHeight int, show, top bool) (Rect, int) {
	work := screen
	if !show {
		return work, -barHeight
	}

	work.Height -= barHeight
	barY := work.Y + work.Height
	if top {
		barY = work.Y
		work.Y += barHeight
	}

	if work.Height < 1 {
		work.Height = 1
	}
	return work, barY
}
