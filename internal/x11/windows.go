package x11

import (
	"slices"

	"github.com/1broseidon/tagwm/internal/tiling"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

const clientEventMask = xproto.EventMaskEnterWindow | xproto.EventMaskFocusChange |
	xproto.EventMaskPropertyChange | xproto.EventMaskStructureNotify

// WindowAttributes is the server's view of a window at scan or map time.
type WindowAttributes struct {
	Geometry         tiling.Rect
	BorderWidth      int
	OverrideRedirect bool
	Viewable         bool
}

// Hints is the subset of WM_HINTS the window manager reads.
type Hints struct {
	Urgent   bool
	InputSet bool
	Input    bool
}

func coord(v int) uint32 {
	return uint32(int32(v))
}

// QueryTree lists the children of the root window, bottom to top.
func (c *Connection) QueryTree() ([]xproto.Window, error) {
	reply, err := xproto.QueryTree(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, err
	}
	return reply.Children, nil
}

// Attributes reads the attributes and geometry of a window.
func (c *Connection) Attributes(win xproto.Window) (WindowAttributes, error) {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), win).Reply()
	if err != nil {
		return WindowAttributes{}, err
	}
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return WindowAttributes{}, err
	}
	return WindowAttributes{
		Geometry: tiling.Rect{
			X:      int(geom.X),
			Y:      int(geom.Y),
			Width:  int(geom.Width),
			Height: int(geom.Height),
		},
		BorderWidth:      int(geom.BorderWidth),
		OverrideRedirect: attrs.OverrideRedirect,
		Viewable:         attrs.MapState == xproto.MapStateViewable,
	}, nil
}

// WindowState reads WM_STATE, returning -1 when it is absent.
func (c *Connection) WindowState(win xproto.Window) int {
	state, err := icccm.WmStateGet(c.XUtil, win)
	if err != nil {
		return -1
	}
	return int(state.State)
}

// SetWindowState writes WM_STATE.
func (c *Connection) SetWindowState(win xproto.Window, state int) {
	if err := icccm.WmStateSet(c.XUtil, win, &icccm.WmState{State: uint(state)}); err != nil {
		c.logger.Debug("failed to set WM_STATE", "window", win, "error", err)
	}
}

// TransientFor reads WM_TRANSIENT_FOR.
func (c *Connection) TransientFor(win xproto.Window) (xproto.Window, bool) {
	parent, err := icccm.WmTransientForGet(c.XUtil, win)
	if err != nil || parent == 0 {
		return 0, false
	}
	return parent, true
}

// NormalHints reads WM_NORMAL_HINTS. Missing base sizes fall back to the
// minimum and the other way round.
func (c *Connection) NormalHints(win xproto.Window) (tiling.SizeHints, bool) {
	nh, err := icccm.WmNormalHintsGet(c.XUtil, win)
	if err != nil {
		return tiling.SizeHints{}, false
	}

	var h tiling.SizeHints
	switch {
	case nh.Flags&icccm.SizeHintPBaseSize != 0:
		h.BaseWidth, h.BaseHeight = int(nh.BaseWidth), int(nh.BaseHeight)
	case nh.Flags&icccm.SizeHintPMinSize != 0:
		h.BaseWidth, h.BaseHeight = int(nh.MinWidth), int(nh.MinHeight)
	}
	if nh.Flags&icccm.SizeHintPResizeInc != 0 {
		h.IncWidth, h.IncHeight = int(nh.WidthInc), int(nh.HeightInc)
	}
	if nh.Flags&icccm.SizeHintPMaxSize != 0 {
		h.MaxWidth, h.MaxHeight = int(nh.MaxWidth), int(nh.MaxHeight)
	}
	switch {
	case nh.Flags&icccm.SizeHintPMinSize != 0:
		h.MinWidth, h.MinHeight = int(nh.MinWidth), int(nh.MinHeight)
	case nh.Flags&icccm.SizeHintPBaseSize != 0:
		h.MinWidth, h.MinHeight = int(nh.BaseWidth), int(nh.BaseHeight)
	}
	if nh.Flags&icccm.SizeHintPAspect != 0 && nh.MinAspectNum > 0 && nh.MaxAspectDen > 0 {
		h.MinAspect = float64(nh.MinAspectDen) / float64(nh.MinAspectNum)
		h.MaxAspect = float64(nh.MaxAspectNum) / float64(nh.MaxAspectDen)
	}
	return h, true
}

// WMHints reads WM_HINTS.
func (c *Connection) WMHints(win xproto.Window) (Hints, bool) {
	wh, err := icccm.WmHintsGet(c.XUtil, win)
	if err != nil {
		return Hints{}, false
	}
	return Hints{
		Urgent:   wh.Flags&icccm.HintUrgency != 0,
		InputSet: wh.Flags&icccm.HintInput != 0,
		Input:    wh.Input != 0,
	}, true
}

// SetUrgencyHint sets or clears the urgency flag in WM_HINTS.
func (c *Connection) SetUrgencyHint(win xproto.Window, urgent bool) {
	wh, err := icccm.WmHintsGet(c.XUtil, win)
	if err != nil {
		return
	}
	if urgent {
		wh.Flags |= icccm.HintUrgency
	} else {
		wh.Flags &^= icccm.HintUrgency
	}
	if err := icccm.WmHintsSet(c.XUtil, win, wh); err != nil {
		c.logger.Debug("failed to set WM_HINTS", "window", win, "error", err)
	}
}

// Title prefers _NET_WM_NAME and falls back to WM_NAME.
func (c *Connection) Title(win xproto.Window) string {
	if name, err := ewmh.WmNameGet(c.XUtil, win); err == nil && name != "" {
		return name
	}
	name, _ := icccm.WmNameGet(c.XUtil, win)
	return name
}

// RootName returns WM_NAME of the root window, the conventional status
// text channel.
func (c *Connection) RootName() string {
	name, _ := icccm.WmNameGet(c.XUtil, c.Root)
	return name
}

// Class reads WM_CLASS.
func (c *Connection) Class(win xproto.Window) (class, instance string) {
	wc, err := icccm.WmClassGet(c.XUtil, win)
	if err != nil {
		return "", ""
	}
	return wc.Class, wc.Instance
}

// WindowType reports whether a window asks to start fullscreen or is a
// dialog.
func (c *Connection) WindowType(win xproto.Window) (fullscreen, dialog bool) {
	if states, err := ewmh.WmStateGet(c.XUtil, win); err == nil {
		fullscreen = slices.Contains(states, "_NET_WM_STATE_FULLSCREEN")
	}
	if types, err := ewmh.WmWindowTypeGet(c.XUtil, win); err == nil {
		dialog = slices.Contains(types, "_NET_WM_WINDOW_TYPE_DIALOG")
	}
	return fullscreen, dialog
}

// SetFullscreenState writes _NET_WM_STATE.
func (c *Connection) SetFullscreenState(win xproto.Window, on bool) {
	var states []string
	if on {
		states = []string{"_NET_WM_STATE_FULLSCREEN"}
	}
	if err := ewmh.WmStateSet(c.XUtil, win, states); err != nil {
		c.logger.Debug("failed to set _NET_WM_STATE", "window", win, "error", err)
	}
}

// SelectClientInput subscribes to the events the window manager tracks on
// managed windows.
func (c *Connection) SelectClientInput(win xproto.Window) {
	xproto.ChangeWindowAttributes(c.XUtil.Conn(), win, xproto.CwEventMask, []uint32{clientEventMask})
}

// MoveResize sets position, size and border width in one request.
func (c *Connection) MoveResize(win xproto.Window, r tiling.Rect, borderWidth int) {
	xproto.ConfigureWindow(c.XUtil.Conn(), win,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|
			xproto.ConfigWindowHeight|xproto.ConfigWindowBorderWidth,
		[]uint32{coord(r.X), coord(r.Y), uint32(r.Width), uint32(r.Height), uint32(borderWidth)})
}

func (c *Connection) Move(win xproto.Window, x, y int) {
	xproto.ConfigureWindow(c.XUtil.Conn(), win, xproto.ConfigWindowX|xproto.ConfigWindowY,
		[]uint32{coord(x), coord(y)})
}

func (c *Connection) SetBorderWidth(win xproto.Window, width int) {
	xproto.ConfigureWindow(c.XUtil.Conn(), win, xproto.ConfigWindowBorderWidth, []uint32{uint32(width)})
}

// SetBorderColor sets the border pixel of a window.
func (c *Connection) SetBorderColor(win xproto.Window, pixel uint32) {
	xproto.ChangeWindowAttributes(c.XUtil.Conn(), win, xproto.CwBorderPixel, []uint32{pixel})
}

// SendConfigureNotify tells a client its current geometry without
// changing it.
func (c *Connection) SendConfigureNotify(win xproto.Window, r tiling.Rect, borderWidth int) {
	ev := xproto.ConfigureNotifyEvent{
		Event:            win,
		Window:           win,
		AboveSibling:     xproto.WindowNone,
		X:                int16(r.X),
		Y:                int16(r.Y),
		Width:            uint16(r.Width),
		Height:           uint16(r.Height),
		BorderWidth:      uint16(borderWidth),
		OverrideRedirect: false,
	}
	xproto.SendEvent(c.XUtil.Conn(), false, win, xproto.EventMaskStructureNotify, string(ev.Bytes()))
}

// ConfigureRequest is a client's configure request passed through
// unchanged.
type ConfigureRequest struct {
	Window      xproto.Window
	Mask        uint16
	X           int
	Y           int
	Width       int
	Height      int
	BorderWidth int
	Sibling     xproto.Window
	StackMode   byte
}

// ForwardConfigure grants a configure request for an unmanaged window.
func (c *Connection) ForwardConfigure(req ConfigureRequest) {
	var values []uint32
	if req.Mask&xproto.ConfigWindowX != 0 {
		values = append(values, coord(req.X))
	}
	if req.Mask&xproto.ConfigWindowY != 0 {
		values = append(values, coord(req.Y))
	}
	if req.Mask&xproto.ConfigWindowWidth != 0 {
		values = append(values, uint32(req.Width))
	}
	if req.Mask&xproto.ConfigWindowHeight != 0 {
		values = append(values, uint32(req.Height))
	}
	if req.Mask&xproto.ConfigWindowBorderWidth != 0 {
		values = append(values, uint32(req.BorderWidth))
	}
	if req.Mask&xproto.ConfigWindowSibling != 0 {
		values = append(values, uint32(req.Sibling))
	}
	if req.Mask&xproto.ConfigWindowStackMode != 0 {
		values = append(values, uint32(req.StackMode))
	}
	xproto.ConfigureWindow(c.XUtil.Conn(), req.Window, req.Mask, values)
}

func (c *Connection) Map(win xproto.Window) {
	xproto.MapWindow(c.XUtil.Conn(), win)
}

func (c *Connection) Raise(win xproto.Window) {
	xproto.ConfigureWindow(c.XUtil.Conn(), win, xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})
}

// RestackBelow stacks wins top to bottom directly under sibling.
func (c *Connection) RestackBelow(sibling xproto.Window, wins []xproto.Window) {
	for _, win := range wins {
		if sibling == xproto.WindowNone {
			xproto.ConfigureWindow(c.XUtil.Conn(), win, xproto.ConfigWindowStackMode,
				[]uint32{xproto.StackModeBelow})
		} else {
			xproto.ConfigureWindow(c.XUtil.Conn(), win,
				xproto.ConfigWindowSibling|xproto.ConfigWindowStackMode,
				[]uint32{uint32(sibling), xproto.StackModeBelow})
		}
		sibling = win
	}
}

// Focus gives input focus to win and publishes it as the active window.
func (c *Connection) Focus(win xproto.Window) {
	xproto.SetInputFocus(c.XUtil.Conn(), xproto.InputFocusPointerRoot, win, xproto.TimeCurrentTime)
	if err := ewmh.ActiveWindowSet(c.XUtil, win); err != nil {
		c.logger.Debug("failed to set _NET_ACTIVE_WINDOW", "error", err)
	}
}

// FocusRoot returns focus to the root window.
func (c *Connection) FocusRoot() {
	xproto.SetInputFocus(c.XUtil.Conn(), xproto.InputFocusPointerRoot, c.Root, xproto.TimeCurrentTime)
	xproto.DeleteProperty(c.XUtil.Conn(), c.Root, c.Atom("_NET_ACTIVE_WINDOW"))
}

// TakeFocus sends WM_TAKE_FOCUS when the client supports it.
func (c *Connection) TakeFocus(win xproto.Window) bool {
	return c.sendProtocol(win, "WM_TAKE_FOCUS")
}

// Close asks a client to close via WM_DELETE_WINDOW. It reports false when
// the client does not take part in that protocol.
func (c *Connection) CloseWindow(win xproto.Window) bool {
	return c.sendProtocol(win, "WM_DELETE_WINDOW")
}

func (c *Connection) sendProtocol(win xproto.Window, protocol string) bool {
	protocols, err := icccm.WmProtocolsGet(c.XUtil, win)
	if err != nil || !slices.Contains(protocols, protocol) {
		return false
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   c.Atom("WM_PROTOCOLS"),
		Data: xproto.ClientMessageDataUnionData32New([]uint32{
			uint32(c.Atom(protocol)),
			uint32(xproto.TimeCurrentTime),
			0, 0, 0,
		}),
	}
	err = xproto.SendEventChecked(c.XUtil.Conn(), false, win, xproto.EventMaskNoEvent, string(ev.Bytes())).Check()
	if err != nil {
		c.logger.Debug("failed to send protocol message", "window", win, "protocol", protocol, "error", err)
		return false
	}
	return true
}

// Kill disconnects the client owning win.
func (c *Connection) Kill(win xproto.Window) {
	conn := c.XUtil.Conn()
	xproto.GrabServer(conn)
	xproto.SetCloseDownMode(conn, xproto.CloseDownDestroyAll)
	xproto.KillClient(conn, uint32(win))
	xproto.UngrabServer(conn)
	c.Sync()
}
