package x11

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// Core protocol error codes.
const (
	badWindow   = 3
	badMatch    = 8
	badDrawable = 9
	badAccess   = 10
)

// Request opcodes whose failures are expected while windows come and go.
const (
	opConfigureWindow = 12
	opGrabButton      = 28
	opGrabKey         = 33
	opSetInputFocus   = 42
	opCopyArea        = 62
	opPolySegment     = 66
	opPolyFillRect    = 70
	opPolyText8       = 74
)

type benignError struct {
	request byte
	code    byte
}

var benignErrors = map[benignError]bool{
	{opSetInputFocus, badMatch}:   true,
	{opPolyText8, badDrawable}:    true,
	{opPolyFillRect, badDrawable}: true,
	{opPolySegment, badDrawable}:  true,
	{opConfigureWindow, badMatch}: true,
	{opGrabButton, badAccess}:     true,
	{opGrabKey, badAccess}:        true,
	{opCopyArea, badDrawable}:     true,
}

// classify extracts the request opcode and error code of an X error.
func classify(err xgb.Error) (request, code byte, ok bool) {
	switch e := err.(type) {
	case xproto.WindowError:
		return e.MajorOpcode, badWindow, true
	case xproto.MatchError:
		return e.MajorOpcode, badMatch, true
	case xproto.DrawableError:
		return e.MajorOpcode, badDrawable, true
	case xproto.AccessError:
		return e.MajorOpcode, badAccess, true
	}
	return 0, 0, false
}

// isBenign reports whether an error is one the window manager provokes
// in normal operation. BadWindow is always benign: clients may destroy
// their windows at any moment.
func isBenign(err xgb.Error) bool {
	request, code, ok := classify(err)
	if !ok {
		return false
	}
	if code == badWindow {
		return true
	}
	return benignErrors[benignError{request: request, code: code}]
}
