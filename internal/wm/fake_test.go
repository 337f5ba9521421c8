package wm

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/1broseidon/tagwm/internal/config"
	"github.com/1broseidon/tagwm/internal/platform"
	"github.com/1broseidon/tagwm/internal/tiling"
)

const fakeRoot platform.WindowID = 1

type fakeWindow struct {
	attrs       platform.Attributes
	state       platform.WMState
	transient   platform.WindowID
	title       string
	class       string
	instance    string
	hints       *tiling.SizeHints
	wmHints     *platform.WMHints
	fullscreen  bool
	dialog      bool
	deletable   bool
	urgencyHint bool
}

// fakeBackend is an in-memory display that records what the window
// manager asks of it.
type fakeBackend struct {
	width, height int
	monitors      []tiling.Rect
	barHeight     int

	windows map[platform.WindowID]*fakeWindow
	order   []platform.WindowID
	events  []platform.Event
	pollErr error

	pointerX, pointerY int
	pointerOK          bool

	nextBar    platform.WindowID
	bars       map[platform.WindowID]tiling.Rect
	barContent map[platform.WindowID]platform.BarContent

	geometry     map[platform.WindowID]tiling.Rect
	borders      map[platform.WindowID]int
	schemes      map[platform.WindowID]platform.Scheme
	focused      platform.WindowID
	rootFocused  int
	clientList   []platform.WindowID
	restacked    []platform.WindowID
	raised       []platform.WindowID
	mapped       map[platform.WindowID]bool
	configured   map[platform.WindowID]int
	forwarded    []platform.ConfigureRequest
	closed       []platform.WindowID
	killed       []platform.WindowID
	grabbedKeys  []platform.KeyCombo
	keyRefreshes int
	pointerGrab  bool
	fullscreen   map[platform.WindowID]bool
	appearance   platform.Appearance
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		width:      1280,
		height:     800,
		barHeight:  20,
		windows:    make(map[platform.WindowID]*fakeWindow),
		nextBar:    1000,
		bars:       make(map[platform.WindowID]tiling.Rect),
		barContent: make(map[platform.WindowID]platform.BarContent),
		geometry:   make(map[platform.WindowID]tiling.Rect),
		borders:    make(map[platform.WindowID]int),
		schemes:    make(map[platform.WindowID]platform.Scheme),
		mapped:     make(map[platform.WindowID]bool),
		configured: make(map[platform.WindowID]int),
		fullscreen: make(map[platform.WindowID]bool),
	}
}

// addWindow registers a viewable top-level window.
func (f *fakeBackend) addWindow(win platform.WindowID, r tiling.Rect) *fakeWindow {
	fw := &fakeWindow{
		attrs: platform.Attributes{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height, Viewable: true},
		state: platform.StateNormal,
		title: "window",
		class: "App",
	}
	f.windows[win] = fw
	f.order = append(f.order, win)
	return fw
}

func (f *fakeBackend) push(events ...platform.Event) { f.events = append(f.events, events...) }

func (f *fakeBackend) PollEvent() (platform.Event, error) {
	if f.pollErr != nil {
		return nil, f.pollErr
	}
	if len(f.events) == 0 {
		return nil, nil
	}
	ev := f.events[0]
	f.events = f.events[1:]
	return ev, nil
}

func (f *fakeBackend) Sync()               {}
func (f *fakeBackend) DiscardEnterEvents() {}
func (f *fakeBackend) Root() platform.WindowID {
	return fakeRoot
}
func (f *fakeBackend) ScreenSize() (int, int) { return f.width, f.height }
func (f *fakeBackend) Monitors() ([]tiling.Rect, error) {
	return append([]tiling.Rect(nil), f.monitors...), nil
}
func (f *fakeBackend) PointerPosition() (int, int, bool) {
	return f.pointerX, f.pointerY, f.pointerOK
}
func (f *fakeBackend) SetAppearance(a platform.Appearance) { f.appearance = a }

func (f *fakeBackend) BarHeight() int { return f.barHeight }

// TextWidth is ten pixels per byte plus ten pixels of padding.
func (f *fakeBackend) TextWidth(text string) int { return 10*len(text) + 10 }
func (f *fakeBackend) CreateBar(r tiling.Rect) (platform.WindowID, error) {
	f.nextBar++
	f.bars[f.nextBar] = r
	return f.nextBar, nil
}
func (f *fakeBackend) MoveBar(bar platform.WindowID, r tiling.Rect) { f.bars[bar] = r }
func (f *fakeBackend) DrawBar(bar platform.WindowID, width int, content platform.BarContent) error {
	f.barContent[bar] = content
	return nil
}
func (f *fakeBackend) DestroyBar(bar platform.WindowID) { delete(f.bars, bar) }
func (f *fakeBackend) RootName() string                 { return "" }

func (f *fakeBackend) QueryTree() ([]platform.WindowID, error) {
	return append([]platform.WindowID(nil), f.order...), nil
}
func (f *fakeBackend) Attributes(win platform.WindowID) (platform.Attributes, error) {
	fw, ok := f.windows[win]
	if !ok {
		return platform.Attributes{}, errors.New("bad window")
	}
	return fw.attrs, nil
}
func (f *fakeBackend) WindowState(win platform.WindowID) platform.WMState {
	if fw, ok := f.windows[win]; ok {
		return fw.state
	}
	return platform.StateUnknown
}
func (f *fakeBackend) TransientFor(win platform.WindowID) (platform.WindowID, bool) {
	if fw, ok := f.windows[win]; ok && fw.transient != 0 {
		return fw.transient, true
	}
	return 0, false
}
func (f *fakeBackend) NormalHints(win platform.WindowID) (tiling.SizeHints, bool) {
	if fw, ok := f.windows[win]; ok && fw.hints != nil {
		return *fw.hints, true
	}
	return tiling.SizeHints{}, false
}
func (f *fakeBackend) WMHints(win platform.WindowID) (platform.WMHints, bool) {
	if fw, ok := f.windows[win]; ok && fw.wmHints != nil {
		return *fw.wmHints, true
	}
	return platform.WMHints{}, false
}
func (f *fakeBackend) SetUrgencyHint(win platform.WindowID, urgent bool) {
	if fw, ok := f.windows[win]; ok {
		fw.urgencyHint = urgent
	}
}
func (f *fakeBackend) Title(win platform.WindowID) string {
	if fw, ok := f.windows[win]; ok {
		return fw.title
	}
	return ""
}
func (f *fakeBackend) Class(win platform.WindowID) (string, string) {
	if fw, ok := f.windows[win]; ok {
		return fw.class, fw.instance
	}
	return "", ""
}
func (f *fakeBackend) WindowType(win platform.WindowID) (bool, bool) {
	if fw, ok := f.windows[win]; ok {
		return fw.fullscreen, fw.dialog
	}
	return false, false
}

func (f *fakeBackend) SelectClientInput(platform.WindowID) {}
func (f *fakeBackend) MoveResize(win platform.WindowID, r tiling.Rect, bw int) {
	f.geometry[win] = r
	f.borders[win] = bw
}
func (f *fakeBackend) Move(win platform.WindowID, x, y int) {
	r := f.geometry[win]
	r.X, r.Y = x, y
	f.geometry[win] = r
}
func (f *fakeBackend) SendConfigureNotify(win platform.WindowID, r tiling.Rect, bw int) {
	f.configured[win]++
}
func (f *fakeBackend) ForwardConfigure(req platform.ConfigureRequest) {
	f.forwarded = append(f.forwarded, req)
}
func (f *fakeBackend) SetBorderWidth(win platform.WindowID, width int) { f.borders[win] = width }
func (f *fakeBackend) SetBorderScheme(win platform.WindowID, s platform.Scheme) {
	f.schemes[win] = s
}
func (f *fakeBackend) Map(win platform.WindowID)   { f.mapped[win] = true }
func (f *fakeBackend) Raise(win platform.WindowID) { f.raised = append(f.raised, win) }
func (f *fakeBackend) RestackBelow(sibling platform.WindowID, wins []platform.WindowID) {
	f.restacked = append([]platform.WindowID(nil), wins...)
}
func (f *fakeBackend) SetWindowState(win platform.WindowID, state platform.WMState) {
	if fw, ok := f.windows[win]; ok {
		fw.state = state
	}
}
func (f *fakeBackend) SetFullscreenState(win platform.WindowID, on bool) { f.fullscreen[win] = on }
func (f *fakeBackend) Focus(win platform.WindowID)                       { f.focused = win }
func (f *fakeBackend) FocusRoot() {
	f.focused = fakeRoot
	f.rootFocused++
}
func (f *fakeBackend) TakeFocus(platform.WindowID) bool { return false }
func (f *fakeBackend) Close(win platform.WindowID) bool {
	fw, ok := f.windows[win]
	if !ok || !fw.deletable {
		return false
	}
	f.closed = append(f.closed, win)
	return true
}
func (f *fakeBackend) Kill(win platform.WindowID) { f.killed = append(f.killed, win) }
func (f *fakeBackend) SetClientList(wins []platform.WindowID) {
	f.clientList = append([]platform.WindowID(nil), wins...)
}
func (f *fakeBackend) ReplayPointer() {}

func (f *fakeBackend) GrabKeys(keys []platform.KeyCombo) {
	f.grabbedKeys = append([]platform.KeyCombo(nil), keys...)
}
func (f *fakeBackend) GrabButtons(platform.WindowID, bool, []platform.ButtonCombo) {}
func (f *fakeBackend) UngrabButtons(platform.WindowID)                             {}
func (f *fakeBackend) RefreshKeyboardMapping()                                     { f.keyRefreshes++ }
func (f *fakeBackend) GrabPointer(platform.Cursor) bool {
	f.pointerGrab = true
	return true
}
func (f *fakeBackend) UngrabPointer()                     { f.pointerGrab = false }
func (f *fakeBackend) WarpPointer(platform.WindowID, int, int) {}
func (f *fakeBackend) Disconnect()                        {}

var _ platform.Backend = (*fakeBackend)(nil)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestWM builds a window manager over a fresh fake backend. The default
// config gets the given tweaks before validation.
func newTestWM(t *testing.T, tweak func(*config.Config), setup func(*fakeBackend)) (*WM, *fakeBackend) {
	t.Helper()
	cfg := config.DefaultConfig()
	if tweak != nil {
		tweak(cfg)
	}
	fb := newFakeBackend()
	if setup != nil {
		setup(fb)
	}
	w, err := New(Options{Backend: fb, Config: cfg, Logger: quietLogger(), Spawn: func([]string, []string) error { return nil }})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w, fb
}

// mapWindow creates a window on the fake display and delivers its map
// request.
func mapWindow(t *testing.T, w *WM, fb *fakeBackend, win platform.WindowID) *Client {
	t.Helper()
	fb.addWindow(win, tiling.Rect{X: 10, Y: 10, Width: 300, Height: 200})
	w.handle(platform.MapRequest{Window: win})
	c := w.windowToClient(win)
	if c == nil {
		t.Fatalf("window %d was not managed", win)
	}
	return c
}

func windowsOf(w *WM, ids []ClientID) []platform.WindowID {
	out := make([]platform.WindowID, 0, len(ids))
	for _, id := range ids {
		out = append(out, w.clients[id].Win)
	}
	return out
}

// checkMembership asserts that every client sits in exactly one client
// list and one focus stack, on the monitor it points to.
func checkMembership(t *testing.T, w *WM) {
	t.Helper()
	if err := membershipError(w); err != nil {
		t.Fatal(err)
	}
}

func membershipError(w *WM) error {
	inList := map[ClientID]int{}
	inStack := map[ClientID]int{}
	for _, m := range w.mons {
		for _, id := range m.clients {
			inList[id]++
			if c := w.clients[id]; c == nil || c.Mon != m {
				return fmt.Errorf("client %d listed on monitor %d it does not belong to", id, m.Num)
			}
		}
		for _, id := range m.stack {
			inStack[id]++
			if c := w.clients[id]; c == nil || c.Mon != m {
				return fmt.Errorf("client %d stacked on monitor %d it does not belong to", id, m.Num)
			}
		}
		if sel := w.Client(m.Sel); sel != nil && !w.isVisible(sel) {
			return fmt.Errorf("monitor %d selects invisible client %d", m.Num, sel.ID)
		}
	}
	for id := range w.clients {
		if inList[id] != 1 || inStack[id] != 1 {
			return fmt.Errorf("client %d in %d lists and %d stacks", id, inList[id], inStack[id])
		}
	}
	if len(inList) != len(w.clients) || len(inStack) != len(w.clients) {
		return fmt.Errorf("orderings reference unknown clients")
	}
	return nil
}
