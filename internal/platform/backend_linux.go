package platform

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/1broseidon/tagwm/internal/tiling"
	"github.com/1broseidon/tagwm/internal/x11"
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// LinuxBackend wraps an X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection

	// bar window heights, and the last painted content per bar to skip
	// identical redraws.
	heights map[WindowID]int
	painted map[WindowID]paintedBar
}

type paintedBar struct {
	width   int
	content BarContent
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{
		conn:    conn,
		heights: make(map[WindowID]int),
		painted: make(map[WindowID]paintedBar),
	}
}

// NewLinuxBackendFromDisplay opens the display named by $DISPLAY and takes
// over window management on it.
func NewLinuxBackendFromDisplay(logger *slog.Logger) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	if err := conn.BecomeWM(); err != nil {
		conn.Close()
		return nil, err
	}
	return NewLinuxBackend(conn), nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

func (b *LinuxBackend) PollEvent() (Event, error) {
	for {
		xev, err := b.conn.NextEvent()
		if err != nil || xev == nil {
			return nil, err
		}
		if ev := b.translate(xev); ev != nil {
			return ev, nil
		}
	}
}

func (b *LinuxBackend) translate(xev xgb.Event) Event {
	switch e := xev.(type) {
	case xproto.ButtonPressEvent:
		return ButtonPress{
			Window: WindowID(e.Event),
			Button: uint8(e.Detail),
			Mods:   b.conn.CleanMods(e.State),
			X:      int(e.EventX),
			Y:      int(e.EventY),
			RootX:  int(e.RootX),
			RootY:  int(e.RootY),
			Time:   uint32(e.Time),
		}
	case xproto.ButtonReleaseEvent:
		return ButtonRelease{Window: WindowID(e.Event), Button: uint8(e.Detail), Time: uint32(e.Time)}
	case xproto.MotionNotifyEvent:
		return MotionNotify{Window: WindowID(e.Event), RootX: int(e.RootX), RootY: int(e.RootY), Time: uint32(e.Time)}
	case xproto.ClientMessageEvent:
		msg := ClientMessage{Window: WindowID(e.Window), Type: b.conn.AtomName(e.Type)}
		copy(msg.Data[:], e.Data.Data32)
		if msg.Type == "_NET_WM_STATE" {
			msg.Properties[0] = b.conn.AtomName(xproto.Atom(msg.Data[1]))
			msg.Properties[1] = b.conn.AtomName(xproto.Atom(msg.Data[2]))
		}
		return msg
	case xproto.ConfigureRequestEvent:
		return ConfigureRequest{
			Window:      WindowID(e.Window),
			Mask:        e.ValueMask,
			X:           int(e.X),
			Y:           int(e.Y),
			Width:       int(e.Width),
			Height:      int(e.Height),
			BorderWidth: int(e.BorderWidth),
			Sibling:     WindowID(e.Sibling),
			StackMode:   e.StackMode,
		}
	case xproto.ConfigureNotifyEvent:
		return ConfigureNotify{Window: WindowID(e.Window), Width: int(e.Width), Height: int(e.Height)}
	case xproto.DestroyNotifyEvent:
		return DestroyNotify{Window: WindowID(e.Window)}
	case xproto.EnterNotifyEvent:
		return EnterNotify{
			Window:   WindowID(e.Event),
			Normal:   e.Mode == xproto.NotifyModeNormal,
			Inferior: e.Detail == xproto.NotifyDetailInferior,
		}
	case xproto.ExposeEvent:
		return Expose{Window: WindowID(e.Window), Count: int(e.Count)}
	case xproto.FocusInEvent:
		return FocusIn{Window: WindowID(e.Event)}
	case xproto.KeyPressEvent:
		name, ok := b.conn.KeyName(e.State, e.Detail)
		if !ok {
			return nil
		}
		return KeyPress{Key: name, Mods: b.conn.CleanMods(e.State)}
	case xproto.MappingNotifyEvent:
		return MappingNotify{Pointer: e.Request == xproto.MappingPointer}
	case xproto.MapRequestEvent:
		return MapRequest{Window: WindowID(e.Window)}
	case xproto.PropertyNotifyEvent:
		return PropertyNotify{
			Window:  WindowID(e.Window),
			Atom:    b.conn.AtomName(e.Atom),
			Deleted: e.State == xproto.PropertyDelete,
		}
	case xproto.UnmapNotifyEvent:
		return UnmapNotify{Window: WindowID(e.Window)}
	case x11.SyntheticUnmap:
		return UnmapNotify{Window: WindowID(e.Window), Synthetic: true}
	}
	return nil
}

func (b *LinuxBackend) Sync()               { b.conn.Sync() }
func (b *LinuxBackend) DiscardEnterEvents() { b.conn.DiscardEnterEvents() }
func (b *LinuxBackend) Root() WindowID      { return WindowID(b.conn.Root) }

func (b *LinuxBackend) ScreenSize() (int, int)            { return b.conn.ScreenSize() }
func (b *LinuxBackend) Monitors() ([]Rect, error)         { return b.conn.Monitors() }
func (b *LinuxBackend) PointerPosition() (int, int, bool) { return b.conn.PointerPosition() }

func (b *LinuxBackend) SetAppearance(a Appearance) {
	b.conn.SetSchemes(scheme(a.Normal), scheme(a.Selected))
	clear(b.painted)
}

// scheme converts validated #rrggbb colours; anything else paints black.
func scheme(c Colors) x11.Scheme {
	fg, _ := x11.ParseColor(c.Foreground)
	bg, _ := x11.ParseColor(c.Background)
	border, _ := x11.ParseColor(c.Border)
	return x11.Scheme{Foreground: fg, Background: bg, Border: border}
}

// BarHeight is the font height plus one pixel above and below.
func (b *LinuxBackend) BarHeight() int {
	return b.conn.FontHeight() + 2
}

// TextWidth includes the horizontal padding of a bar cell.
func (b *LinuxBackend) TextWidth(text string) int {
	return b.conn.TextWidth(text) + b.conn.FontHeight()
}

func (b *LinuxBackend) CreateBar(r Rect) (WindowID, error) {
	win, err := b.conn.CreateBar(r)
	if err != nil {
		return 0, err
	}
	b.heights[WindowID(win)] = r.Height
	return WindowID(win), nil
}

func (b *LinuxBackend) MoveBar(bar WindowID, r Rect) {
	b.conn.MoveBar(xproto.Window(bar), r)
	b.heights[bar] = r.Height
	delete(b.painted, bar)
}

func (b *LinuxBackend) DestroyBar(bar WindowID) {
	b.conn.DestroyBar(xproto.Window(bar))
	delete(b.heights, bar)
	delete(b.painted, bar)
}

// DrawBar paints tags, layout symbol, status and title left to right. The
// status is right-aligned and the title takes the space in between.
func (b *LinuxBackend) DrawBar(bar WindowID, width int, content BarContent) error {
	if last, ok := b.painted[bar]; ok && last.width == width && sameContent(last.content, content) {
		return nil
	}

	height, ok := b.heights[bar]
	if !ok {
		height = b.BarHeight()
	}
	cv, err := b.conn.Canvas(xproto.Window(bar), width, height)
	if err != nil {
		return err
	}

	lrpad := b.conn.FontHeight()
	boxs := lrpad / 9
	boxw := lrpad/6 + 2
	normal, selected := b.conn.Scheme(false), b.conn.Scheme(true)

	x := 0
	for _, tag := range content.Tags {
		s := normal
		if tag.Selected {
			s = selected
		}
		w := b.TextWidth(tag.Label)
		cv.Text(x, w, lrpad/2, tag.Label, s, tag.Urgent)
		if tag.Occupied {
			box := s.Foreground
			if tag.Urgent {
				box = s.Background
			}
			cv.Rect(x+boxs, boxs, boxw, boxw, box, content.Active && tag.Focused)
		}
		x += w
	}
	x = cv.Text(x, b.TextWidth(content.Symbol), lrpad/2, content.Symbol, normal, false)

	tw := 0
	if content.Active {
		tw = b.conn.TextWidth(content.Status) + 2
		cv.Text(width-tw, tw, 0, content.Status, normal, false)
	}

	if w := width - tw - x; w > height {
		if content.HasClient {
			s := normal
			if content.Active {
				s = selected
			}
			cv.Text(x, w, lrpad/2, content.Title, s, false)
			if content.Floating {
				cv.Rect(x+boxs, boxs, boxw, boxw, s.Foreground, content.Fixed)
			}
		} else {
			cv.Rect(x, 0, w, height, normal.Background, true)
		}
	}

	cv.Flush()
	b.painted[bar] = paintedBar{width: width, content: content}
	return nil
}

func sameContent(a, b BarContent) bool {
	return a.Symbol == b.Symbol && a.Status == b.Status && a.Title == b.Title &&
		a.Active == b.Active && a.HasClient == b.HasClient &&
		a.Floating == b.Floating && a.Fixed == b.Fixed &&
		slices.Equal(a.Tags, b.Tags)
}

func (b *LinuxBackend) RootName() string { return b.conn.RootName() }

func (b *LinuxBackend) QueryTree() ([]WindowID, error) {
	children, err := b.conn.QueryTree()
	if err != nil {
		return nil, err
	}
	wins := make([]WindowID, len(children))
	for i, w := range children {
		wins[i] = WindowID(w)
	}
	return wins, nil
}

func (b *LinuxBackend) Attributes(win WindowID) (Attributes, error) {
	a, err := b.conn.Attributes(xproto.Window(win))
	if err != nil {
		return Attributes{}, err
	}
	return Attributes{
		X:                a.Geometry.X,
		Y:                a.Geometry.Y,
		Width:            a.Geometry.Width,
		Height:           a.Geometry.Height,
		BorderWidth:      a.BorderWidth,
		OverrideRedirect: a.OverrideRedirect,
		Viewable:         a.Viewable,
	}, nil
}

func (b *LinuxBackend) WindowState(win WindowID) WMState {
	return WMState(b.conn.WindowState(xproto.Window(win)))
}

func (b *LinuxBackend) SetWindowState(win WindowID, state WMState) {
	b.conn.SetWindowState(xproto.Window(win), int(state))
}

func (b *LinuxBackend) TransientFor(win WindowID) (WindowID, bool) {
	parent, ok := b.conn.TransientFor(xproto.Window(win))
	return WindowID(parent), ok
}

func (b *LinuxBackend) NormalHints(win WindowID) (tiling.SizeHints, bool) {
	return b.conn.NormalHints(xproto.Window(win))
}

func (b *LinuxBackend) WMHints(win WindowID) (WMHints, bool) {
	h, ok := b.conn.WMHints(xproto.Window(win))
	return WMHints{Urgent: h.Urgent, InputSet: h.InputSet, Input: h.Input}, ok
}

func (b *LinuxBackend) SetUrgencyHint(win WindowID, urgent bool) {
	b.conn.SetUrgencyHint(xproto.Window(win), urgent)
}

func (b *LinuxBackend) Title(win WindowID) string { return b.conn.Title(xproto.Window(win)) }

func (b *LinuxBackend) Class(win WindowID) (string, string) {
	return b.conn.Class(xproto.Window(win))
}

func (b *LinuxBackend) WindowType(win WindowID) (bool, bool) {
	return b.conn.WindowType(xproto.Window(win))
}

func (b *LinuxBackend) SelectClientInput(win WindowID) {
	b.conn.SelectClientInput(xproto.Window(win))
}

func (b *LinuxBackend) MoveResize(win WindowID, r Rect, borderWidth int) {
	b.conn.MoveResize(xproto.Window(win), r, borderWidth)
}

func (b *LinuxBackend) Move(win WindowID, x, y int) { b.conn.Move(xproto.Window(win), x, y) }

func (b *LinuxBackend) SendConfigureNotify(win WindowID, r Rect, borderWidth int) {
	b.conn.SendConfigureNotify(xproto.Window(win), r, borderWidth)
}

func (b *LinuxBackend) ForwardConfigure(req ConfigureRequest) {
	b.conn.ForwardConfigure(x11.ConfigureRequest{
		Window:      xproto.Window(req.Window),
		Mask:        req.Mask,
		X:           req.X,
		Y:           req.Y,
		Width:       req.Width,
		Height:      req.Height,
		BorderWidth: req.BorderWidth,
		Sibling:     xproto.Window(req.Sibling),
		StackMode:   req.StackMode,
	})
}

func (b *LinuxBackend) SetBorderWidth(win WindowID, width int) {
	b.conn.SetBorderWidth(xproto.Window(win), width)
}

func (b *LinuxBackend) SetBorderScheme(win WindowID, s Scheme) {
	b.conn.SetBorderColor(xproto.Window(win), b.conn.Scheme(s == SchemeSelected).Border)
}

func (b *LinuxBackend) Map(win WindowID)   { b.conn.Map(xproto.Window(win)) }
func (b *LinuxBackend) Raise(win WindowID) { b.conn.Raise(xproto.Window(win)) }

func (b *LinuxBackend) RestackBelow(sibling WindowID, wins []WindowID) {
	b.conn.RestackBelow(xproto.Window(sibling), toX(wins))
}

func (b *LinuxBackend) SetFullscreenState(win WindowID, on bool) {
	b.conn.SetFullscreenState(xproto.Window(win), on)
}

func (b *LinuxBackend) Focus(win WindowID)          { b.conn.Focus(xproto.Window(win)) }
func (b *LinuxBackend) FocusRoot()                  { b.conn.FocusRoot() }
func (b *LinuxBackend) TakeFocus(win WindowID) bool { return b.conn.TakeFocus(xproto.Window(win)) }
func (b *LinuxBackend) Close(win WindowID) bool     { return b.conn.CloseWindow(xproto.Window(win)) }
func (b *LinuxBackend) Kill(win WindowID)           { b.conn.Kill(xproto.Window(win)) }

func (b *LinuxBackend) SetClientList(wins []WindowID) { b.conn.SetClientList(toX(wins)) }

func (b *LinuxBackend) ReplayPointer() { b.conn.ReplayPointer() }

func (b *LinuxBackend) GrabKeys(keys []KeyCombo) {
	if len(keys) == 0 {
		b.conn.UngrabKeys()
		return
	}
	combos := make([]x11.KeyCombo, len(keys))
	for i, k := range keys {
		combos[i] = x11.KeyCombo{Mods: k.Mods, Key: k.Key}
	}
	b.conn.GrabKeys(combos)
}

func (b *LinuxBackend) GrabButtons(win WindowID, focused bool, buttons []ButtonCombo) {
	combos := make([]x11.ButtonCombo, len(buttons))
	for i, bc := range buttons {
		combos[i] = x11.ButtonCombo{Mods: bc.Mods, Button: bc.Button}
	}
	b.conn.GrabButtons(xproto.Window(win), focused, combos)
}

func (b *LinuxBackend) UngrabButtons(win WindowID) { b.conn.UngrabButtons(xproto.Window(win)) }

func (b *LinuxBackend) RefreshKeyboardMapping() { b.conn.RefreshKeyboardMapping() }

func (b *LinuxBackend) GrabPointer(cursor Cursor) bool {
	glyph := x11.CursorNormal
	switch cursor {
	case CursorMove:
		glyph = x11.CursorMove
	case CursorResize:
		glyph = x11.CursorResize
	}
	return b.conn.GrabPointer(glyph)
}

func (b *LinuxBackend) UngrabPointer() { b.conn.UngrabPointer() }

func (b *LinuxBackend) WarpPointer(win WindowID, x, y int) {
	b.conn.WarpPointer(xproto.Window(win), x, y)
}

func toX(wins []WindowID) []xproto.Window {
	out := make([]xproto.Window, len(wins))
	for i, w := range wins {
		out[i] = xproto.Window(w)
	}
	return out
}
