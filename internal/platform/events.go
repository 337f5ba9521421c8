package platform

// Event is one display-server notification. The set of implementations is
// closed; the dispatcher switches over all of them.
type Event interface {
	event()
}

// ConfigureRequest value mask bits.
const (
	ConfigX           uint16 = 1 << 0
	ConfigY           uint16 = 1 << 1
	ConfigWidth       uint16 = 1 << 2
	ConfigHeight      uint16 = 1 << 3
	ConfigBorderWidth uint16 = 1 << 4
	ConfigSibling     uint16 = 1 << 5
	ConfigStackMode   uint16 = 1 << 6
)

// ClientMessage actions for _NET_WM_STATE.
const (
	StateRemove uint32 = 0
	StateAdd    uint32 = 1
	StateToggle uint32 = 2
)

// ButtonPress carries the modifier state with lock and num-lock removed,
// like KeyPress.
type ButtonPress struct {
	Window WindowID
	Button uint8
	Mods   uint16
	// X and Y are relative to Window.
	X     int
	Y     int
	RootX int
	RootY int
	Time  uint32
}

type ButtonRelease struct {
	Window WindowID
	Button uint8
	Time   uint32
}

type MotionNotify struct {
	Window WindowID
	RootX  int
	RootY  int
	Time   uint32
}

// ClientMessage carries the resolved message type name. For
// _NET_WM_STATE, Properties holds the names of data[1] and data[2].
type ClientMessage struct {
	Window     WindowID
	Type       string
	Data       [5]uint32
	Properties [2]string
}

type ConfigureRequest struct {
	Window      WindowID
	Mask        uint16
	X           int
	Y           int
	Width       int
	Height      int
	BorderWidth int
	Sibling     WindowID
	StackMode   byte
}

type ConfigureNotify struct {
	Window WindowID
	Width  int
	Height int
}

type DestroyNotify struct {
	Window WindowID
}

type EnterNotify struct {
	Window WindowID
	// Normal is false for grab/ungrab crossings.
	Normal   bool
	Inferior bool
}

type Expose struct {
	Window WindowID
	Count  int
}

type FocusIn struct {
	Window WindowID
}

// KeyPress reports the keysym name of column 0 and the modifier state with
// lock and num-lock bits removed.
type KeyPress struct {
	Key  string
	Mods uint16
}

// MappingNotify reports a keyboard, modifier or pointer mapping change.
// Pointer is set only for pointer button remaps.
type MappingNotify struct {
	Pointer bool
}

type MapRequest struct {
	Window WindowID
}

type PropertyNotify struct {
	Window  WindowID
	Atom    string
	Deleted bool
}

type UnmapNotify struct {
	Window    WindowID
	Synthetic bool
}

func (ButtonPress) event()      {}
func (ButtonRelease) event()    {}
func (MotionNotify) event()     {}
func (ClientMessage) event()    {}
func (ConfigureRequest) event() {}
func (ConfigureNotify) event()  {}
func (DestroyNotify) event()    {}
func (EnterNotify) event()      {}
func (Expose) event()           {}
func (FocusIn) event()          {}
func (KeyPress) event()         {}
func (MappingNotify) event()    {}
func (MapRequest) event()       {}
func (PropertyNotify) event()   {}
func (UnmapNotify) event()      {}
