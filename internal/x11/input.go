package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xcursor"
	"github.com/BurntSushi/xgbutil/xevent"
)

const (
	buttonMask  = xproto.EventMaskButtonPress | xproto.EventMaskButtonRelease
	pointerMask = buttonMask | xproto.EventMaskPointerMotion

	modifierBits = xproto.ModMaskShift | xproto.ModMaskControl | xproto.ModMask1 |
		xproto.ModMask2 | xproto.ModMask3 | xproto.ModMask4 | xproto.ModMask5
)

// KeyCombo names a key grab by keysym name.
type KeyCombo struct {
	Mods uint16
	Key  string
}

// ButtonCombo is a pointer button grab.
type ButtonCombo struct {
	Mods   uint16
	Button byte
}

// configureIgnoreMods works out which lock modifiers are bound on this
// server so grabs fire regardless of CapsLock, NumLock or ScrollLock.
func (c *Connection) configureIgnoreMods() {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := c.modMaskForKeysym("Num_Lock")
	scrollLock := c.modMaskForKeysym("Scroll_Lock")

	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	ignore := []uint16{0}
	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		ignore = append(ignore, mask)
	}

	c.numLock = numLock | scrollLock
	c.ignoreMods = ignore
	xevent.IgnoreMods = ignore
}

func (c *Connection) modMaskForKeysym(keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(c.XUtil, keysym) {
		if mask := keybind.ModGet(c.XUtil, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}

// CleanMods strips lock modifiers from an event state.
func (c *Connection) CleanMods(state uint16) uint16 {
	return state &^ (c.numLock | xproto.ModMaskLock) & modifierBits
}

// RefreshKeyboardMapping reloads the keyboard and modifier maps after a
// MappingNotify.
func (c *Connection) RefreshKeyboardMapping() {
	keyMap, modMap := keybind.MapsGet(c.XUtil)
	keybind.KeyMapSet(c.XUtil, keyMap)
	keybind.ModMapSet(c.XUtil, modMap)
	c.configureIgnoreMods()
}

// GrabKeys replaces every key grab on the root window. Keys without a
// keycode on this keyboard are skipped.
func (c *Connection) GrabKeys(keys []KeyCombo) {
	xproto.UngrabKey(c.XUtil.Conn(), xproto.GrabAny, c.Root, xproto.ModMaskAny)
	clear(c.keyNames)
	for _, k := range keys {
		codes := keybind.StrToKeycodes(c.XUtil, k.Key)
		if len(codes) == 0 {
			c.logger.Warn("no keycode for key", "key", k.Key)
			continue
		}
		for _, code := range codes {
			keybind.Grab(c.XUtil, c.Root, k.Mods, code)
			c.keyNames[keyGrab{mods: k.Mods, code: code}] = k.Key
		}
	}
}

// UngrabKeys releases all key grabs on the root window.
func (c *Connection) UngrabKeys() {
	xproto.UngrabKey(c.XUtil.Conn(), xproto.GrabAny, c.Root, xproto.ModMaskAny)
	clear(c.keyNames)
}

// KeyName resolves a key press back to the name it was grabbed with.
func (c *Connection) KeyName(state uint16, code xproto.Keycode) (string, bool) {
	name, ok := c.keyNames[keyGrab{mods: c.CleanMods(state), code: code}]
	return name, ok
}

// GrabButtons installs the button grabs of a client window. Unfocused
// windows additionally get a synchronous grab on every button so a click
// can focus them before it is replayed.
func (c *Connection) GrabButtons(win xproto.Window, focused bool, buttons []ButtonCombo) {
	conn := c.XUtil.Conn()
	xproto.UngrabButton(conn, xproto.ButtonIndexAny, win, xproto.ModMaskAny)
	if !focused {
		xproto.GrabButton(conn, false, win, buttonMask, xproto.GrabModeSync, xproto.GrabModeSync,
			xproto.WindowNone, xproto.CursorNone, xproto.ButtonIndexAny, xproto.ModMaskAny)
	}
	for _, b := range buttons {
		for _, ignore := range c.ignoreMods {
			xproto.GrabButton(conn, false, win, buttonMask, xproto.GrabModeAsync, xproto.GrabModeSync,
				xproto.WindowNone, xproto.CursorNone, b.Button, b.Mods|ignore)
		}
	}
}

// UngrabButtons releases all button grabs of a client window.
func (c *Connection) UngrabButtons(win xproto.Window) {
	xproto.UngrabButton(c.XUtil.Conn(), xproto.ButtonIndexAny, win, xproto.ModMaskAny)
}

// ReplayPointer releases a frozen synchronous button grab.
func (c *Connection) ReplayPointer() {
	xproto.AllowEvents(c.XUtil.Conn(), xproto.AllowReplayPointer, xproto.TimeCurrentTime)
}

// Cursor glyphs used while the pointer is grabbed.
const (
	CursorNormal = xcursor.LeftPtr
	CursorMove   = xcursor.Fleur
	CursorResize = xcursor.Sizing
)

// GrabPointer grabs the pointer on the root window with the given cursor
// glyph.
func (c *Connection) GrabPointer(glyph int) bool {
	reply, err := xproto.GrabPointer(c.XUtil.Conn(), false, c.Root, pointerMask,
		xproto.GrabModeAsync, xproto.GrabModeAsync, xproto.WindowNone,
		c.cursors[glyph], xproto.TimeCurrentTime).Reply()
	if err != nil {
		c.logger.Debug("pointer grab failed", "error", err)
		return false
	}
	return reply.Status == xproto.GrabStatusSuccess
}

func (c *Connection) UngrabPointer() {
	xproto.UngrabPointer(c.XUtil.Conn(), xproto.TimeCurrentTime)
}

// WarpPointer moves the pointer to x, y relative to win.
func (c *Connection) WarpPointer(win xproto.Window, x, y int) {
	xproto.WarpPointer(c.XUtil.Conn(), xproto.WindowNone, win, 0, 0, 0, 0, int16(x), int16(y))
}

// PointerPosition reports the pointer location on the root window.
func (c *Connection) PointerPosition() (int, int, bool) {
	reply, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return 0, 0, false
	}
	return int(reply.RootX), int(reply.RootY), true
}
