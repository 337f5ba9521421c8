package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// Name is published on the EWMH supporting window.
const Name = "tagwm"

var supportedAtoms = []string{
	"_NET_SUPPORTED",
	"_NET_WM_NAME",
	"_NET_WM_STATE",
	"_NET_SUPPORTING_WM_CHECK",
	"_NET_WM_STATE_FULLSCREEN",
	"_NET_ACTIVE_WINDOW",
	"_NET_WM_WINDOW_TYPE",
	"_NET_WM_WINDOW_TYPE_DIALOG",
	"_NET_CLIENT_LIST",
}

// setupEWMH creates the supporting window that tells EWMH pagers and
// clients a compliant window manager is running.
func (c *Connection) setupEWMH() error {
	check, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return fmt.Errorf("failed to allocate check window: %w", err)
	}
	if err := check.CreateChecked(c.Root, 0, 0, 1, 1, 0); err != nil {
		return fmt.Errorf("failed to create check window: %w", err)
	}
	c.check = check

	if err := ewmh.SupportingWmCheckSet(c.XUtil, check.Id, check.Id); err != nil {
		return err
	}
	if err := ewmh.WmNameSet(c.XUtil, check.Id, Name); err != nil {
		return err
	}
	if err := ewmh.SupportingWmCheckSet(c.XUtil, c.Root, check.Id); err != nil {
		return err
	}
	if err := ewmh.SupportedSet(c.XUtil, supportedAtoms); err != nil {
		return err
	}
	xproto.DeleteProperty(c.XUtil.Conn(), c.Root, c.Atom("_NET_CLIENT_LIST"))
	return nil
}

// SetClientList publishes the managed windows in _NET_CLIENT_LIST.
func (c *Connection) SetClientList(wins []xproto.Window) {
	if len(wins) == 0 {
		xproto.DeleteProperty(c.XUtil.Conn(), c.Root, c.Atom("_NET_CLIENT_LIST"))
		return
	}
	if err := ewmh.ClientListSet(c.XUtil, wins); err != nil {
		c.logger.Debug("failed to set _NET_CLIENT_LIST", "error", err)
	}
}
