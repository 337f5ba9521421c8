package platform

import "github.com/1broseidon/tagwm/internal/tiling"

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect = tiling.Rect

// Modifier masks, bit compatible with the X11 core protocol.
const (
	ModShift   uint16 = 1 << 0
	ModLock    uint16 = 1 << 1
	ModControl uint16 = 1 << 2
	Mod1       uint16 = 1 << 3
	Mod2       uint16 = 1 << 4
	Mod3       uint16 = 1 << 5
	Mod4       uint16 = 1 << 6
	Mod5       uint16 = 1 << 7
)

// WMState mirrors the ICCCM WM_STATE values.
type WMState int

const (
	StateWithdrawn WMState = 0
	StateNormal    WMState = 1
	StateIconic    WMState = 3
	StateUnknown   WMState = -1
)

// Scheme selects the colour set used for a border or bar segment.
type Scheme int

const (
	SchemeNormal Scheme = iota
	SchemeSelected
)

// Cursor selects the pointer shape while the pointer is grabbed.
type Cursor int

const (
	CursorNormal Cursor = iota
	CursorMove
	CursorResize
)

// Colors is one foreground/background/border triple in #rrggbb form.
type Colors struct {
	Foreground string
	Background string
	Border     string
}

// Appearance is the visual configuration pushed into the backend.
type Appearance struct {
	Normal   Colors
	Selected Colors
}

// Attributes describes a top-level window as found by the server.
type Attributes struct {
	X                int
	Y                int
	Width            int
	Height           int
	BorderWidth      int
	OverrideRedirect bool
	Viewable         bool
}

// WMHints carries the parts of WM_HINTS the window manager acts on.
type WMHints struct {
	Urgent   bool
	InputSet bool
	Input    bool
}

// KeyCombo is a key grab request. Key is a keysym name such as "Return".
type KeyCombo struct {
	Mods uint16
	Key  string
}

// ButtonCombo is a pointer button grab request.
type ButtonCombo struct {
	Mods   uint16
	Button uint8
}

// TagCell is one tag label in the bar.
type TagCell struct {
	Label    string
	Selected bool
	Occupied bool
	Urgent   bool
	// Focused marks tags of the client holding input focus.
	Focused bool
}

// BarContent is everything needed to paint one monitor's bar.
type BarContent struct {
	Tags   []TagCell
	Symbol string
	Status string
	Title  string
	// Active is set on the bar of the selected monitor.
	Active    bool
	HasClient bool
	Floating  bool
	Fixed     bool
}

// Backend is the display-server surface the window manager drives. All
// methods are called from the dispatcher goroutine only.
type Backend interface {
	PollEvent() (Event, error)
	Sync()
	DiscardEnterEvents()

	Root() WindowID
	ScreenSize() (int, int)
	Monitors() ([]Rect, error)
	PointerPosition() (int, int, bool)
	SetAppearance(Appearance)

	BarHeight() int
	TextWidth(text string) int
	CreateBar(r Rect) (WindowID, error)
	MoveBar(bar WindowID, r Rect)
	DrawBar(bar WindowID, width int, content BarContent) error
	DestroyBar(bar WindowID)
	RootName() string

	QueryTree() ([]WindowID, error)
	Attributes(win WindowID) (Attributes, error)
	WindowState(win WindowID) WMState
	TransientFor(win WindowID) (WindowID, bool)
	NormalHints(win WindowID) (tiling.SizeHints, bool)
	WMHints(win WindowID) (WMHints, bool)
	SetUrgencyHint(win WindowID, urgent bool)
	Title(win WindowID) string
	Class(win WindowID) (class, instance string)
	WindowType(win WindowID) (fullscreen, dialog bool)

	SelectClientInput(win WindowID)
	MoveResize(win WindowID, r Rect, borderWidth int)
	Move(win WindowID, x, y int)
	SendConfigureNotify(win WindowID, r Rect, borderWidth int)
	ForwardConfigure(req ConfigureRequest)
	SetBorderWidth(win WindowID, width int)
	SetBorderScheme(win WindowID, scheme Scheme)
	Map(win WindowID)
	Raise(win WindowID)
	RestackBelow(sibling WindowID, wins []WindowID)
	SetWindowState(win WindowID, state WMState)
	SetFullscreenState(win WindowID, on bool)
	Focus(win WindowID)
	FocusRoot()
	TakeFocus(win WindowID) bool
	Close(win WindowID) bool
	Kill(win WindowID)
	SetClientList(wins []WindowID)
	ReplayPointer()

	// GrabKeys replaces every key grab. Keys the keyboard lacks are skipped.
	GrabKeys(keys []KeyCombo)
	GrabButtons(win WindowID, focused bool, buttons []ButtonCombo)
	UngrabButtons(win WindowID)
	RefreshKeyboardMapping()
	GrabPointer(cursor Cursor) bool
	UngrabPointer()
	WarpPointer(win WindowID, x, y int)

	Disconnect()
}
