package x11

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xcursor"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// ErrOtherWM is returned by BecomeWM when another window manager already
// selected substructure redirection on the root window.
var ErrOtherWM = errors.New("another window manager is already running")

// ErrClosed is returned by NextEvent once the server connection is gone.
var ErrClosed = errors.New("x11 connection closed")

// SyntheticUnmap is an UnmapNotify that a client sent itself, as ICCCM
// 4.1.4 asks clients to do when withdrawing.
type SyntheticUnmap struct {
	xproto.UnmapNotifyEvent
}

var hookUnmap sync.Once

// installUnmapHook keeps the send_event bit of UnmapNotify, which xgb
// strips before decoding.
func installUnmapHook() {
	hookUnmap.Do(func() {
		xgb.NewEventFuncs[xproto.UnmapNotify] = func(buf []byte) xgb.Event {
			ev := xproto.UnmapNotifyEventNew(buf).(xproto.UnmapNotifyEvent)
			if buf[0]&0x80 != 0 {
				return SyntheticUnmap{ev}
			}
			return ev
		}
	})
}

type pending struct {
	ev  xgb.Event
	err xgb.Error
}

// Connection manages the X11 connection and the resources the window
// manager owns on it.
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	logger *slog.Logger

	events eventQueue

	numLock    uint16
	ignoreMods []uint16

	cursors map[int]xproto.Cursor
	check   *xwindow.Window

	// keycode grabs resolved to the key name they were requested with.
	keyNames map[keyGrab]string

	bars map[xproto.Window]*barSurface
	look appearance
}

type keyGrab struct {
	mods uint16
	code xproto.Keycode
}

// NewConnection establishes a connection to the X11 server and starts
// reading events in the background.
func NewConnection(logger *slog.Logger) (*Connection, error) {
	if logger == nil {
		logger = slog.Default()
	}
	installUnmapHook()

	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}

	// Initialize keybind module (required for key grabs)
	keybind.Initialize(xu)

	c := &Connection{
		XUtil:    xu,
		Root:     xu.RootWin(),
		logger:   logger,
		cursors:  make(map[int]xproto.Cursor),
		keyNames: make(map[keyGrab]string),
		bars:     make(map[xproto.Window]*barSurface),
	}
	c.configureIgnoreMods()
	go c.readEvents()
	return c, nil
}

func (c *Connection) readEvents() {
	conn := c.XUtil.Conn()
	for {
		ev, err := conn.WaitForEvent()
		if ev == nil && err == nil {
			c.events.close()
			return
		}
		c.events.push(pending{ev: ev, err: err})
	}
}

// NextEvent returns the next queued event without blocking, or nil when
// none is pending. X protocol errors the window manager provokes in
// normal operation are swallowed; any other error is returned.
func (c *Connection) NextEvent() (xgb.Event, error) {
	for {
		p, ok, closed := c.events.pop()
		if !ok {
			if closed {
				return nil, ErrClosed
			}
			return nil, nil
		}
		if p.err != nil {
			if isBenign(p.err) {
				c.logger.Debug("ignoring x11 error", "error", p.err)
				continue
			}
			return nil, fmt.Errorf("x11 request failed: %w", p.err)
		}
		return p.ev, nil
	}
}

// DiscardEnterEvents drops EnterNotify events already received, keeping
// everything else in order.
func (c *Connection) DiscardEnterEvents() {
	c.Sync()
	c.events.filter(func(p pending) bool {
		_, enter := p.ev.(xproto.EnterNotifyEvent)
		return !enter
	})
}

// Sync waits until the server processed every request sent so far.
func (c *Connection) Sync() {
	c.XUtil.Sync()
}

// BecomeWM selects the root window events only one client may hold and
// sets up the cursors and EWMH support window.
func (c *Connection) BecomeWM() error {
	err := xproto.ChangeWindowAttributesChecked(c.XUtil.Conn(), c.Root, xproto.CwEventMask,
		[]uint32{xproto.EventMaskSubstructureRedirect}).Check()
	if err != nil {
		var access xproto.AccessError
		if errors.As(err, &access) {
			return ErrOtherWM
		}
		return fmt.Errorf("failed to select root events: %w", err)
	}

	for _, glyph := range []int{xcursor.LeftPtr, xcursor.Fleur, xcursor.Sizing} {
		cur, err := xcursor.CreateCursor(c.XUtil, uint16(glyph))
		if err != nil {
			return fmt.Errorf("failed to create cursor: %w", err)
		}
		c.cursors[glyph] = cur
	}

	if err := c.setupEWMH(); err != nil {
		return err
	}

	mask := uint32(xproto.EventMaskSubstructureRedirect | xproto.EventMaskSubstructureNotify |
		xproto.EventMaskButtonPress | xproto.EventMaskPointerMotion |
		xproto.EventMaskEnterWindow | xproto.EventMaskLeaveWindow |
		xproto.EventMaskStructureNotify | xproto.EventMaskPropertyChange)
	return xproto.ChangeWindowAttributesChecked(c.XUtil.Conn(), c.Root,
		xproto.CwEventMask|xproto.CwCursor,
		[]uint32{mask, uint32(c.cursors[xcursor.LeftPtr])}).Check()
}

// Atom interns name, returning 0 when the server refuses.
func (c *Connection) Atom(name string) xproto.Atom {
	atom, err := xprop.Atm(c.XUtil, name)
	if err != nil {
		c.logger.Debug("failed to intern atom", "name", name, "error", err)
		return 0
	}
	return atom
}

// AtomName resolves an atom, returning "" for unknown ones.
func (c *Connection) AtomName(atom xproto.Atom) string {
	if atom == 0 {
		return ""
	}
	name, err := xprop.AtomName(c.XUtil, atom)
	if err != nil {
		return ""
	}
	return name
}

// Close releases everything the window manager created and disconnects.
func (c *Connection) Close() {
	for win := range c.bars {
		c.DestroyBar(win)
	}
	if c.check != nil {
		c.check.Destroy()
	}
	for _, cur := range c.cursors {
		xproto.FreeCursor(c.XUtil.Conn(), cur)
	}
	xproto.SetInputFocus(c.XUtil.Conn(), xproto.InputFocusPointerRoot, xproto.InputFocusPointerRoot, xproto.TimeCurrentTime)
	xproto.DeleteProperty(c.XUtil.Conn(), c.Root, c.Atom("_NET_ACTIVE_WINDOW"))
	c.Sync()
	c.XUtil.Conn().Close()
}
