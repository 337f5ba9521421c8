package wm

import (
	"testing"

	"github.com/1broseidon/tagwm/internal/config"
	"github.com/1broseidon/tagwm/internal/platform"
	"github.com/1broseidon/tagwm/internal/tiling"
	"github.com/google/go-cmp/cmp"
)

func noBar(bw int) func(*config.Config) {
	return func(c *config.Config) {
		c.BorderWidth = bw
		c.ShowBar = false
	}
}

func TestArrangeTile(t *testing.T) {
	w, fb := newTestWM(t, noBar(2), nil)
	mapWindow(t, w, fb, 10)
	mapWindow(t, w, fb, 11)
	mapWindow(t, w, fb, 12)

	want := map[platform.WindowID]tiling.Rect{
		12: {X: 0, Y: 0, Width: 700, Height: 796},
		11: {X: 704, Y: 0, Width: 572, Height: 396},
		10: {X: 704, Y: 400, Width: 572, Height: 396},
	}
	for win, r := range want {
		c := w.windowToClient(win)
		if diff := cmp.Diff(r, c.Rect()); diff != "" {
			t.Fatalf("window %d geometry mismatch (-want +got):\n%s", win, diff)
		}
		if diff := cmp.Diff(r, fb.geometry[win]); diff != "" {
			t.Fatalf("window %d backend geometry mismatch (-want +got):\n%s", win, diff)
		}
	}
	if got := w.selmon.Symbol; got != "[]=" {
		t.Fatalf("expected tile symbol, got %q", got)
	}
	if diff := cmp.Diff([]platform.WindowID{12, 11, 10}, fb.restacked); diff != "" {
		t.Fatalf("restack order mismatch (-want +got):\n%s", diff)
	}
}

func TestArrangeTileWithBar(t *testing.T) {
	w, fb := newTestWM(t, nil, nil)
	c := mapWindow(t, w, fb, 10)

	// A single client fills the work area below the bar.
	want := tiling.Rect{X: 0, Y: 20, Width: 1278, Height: 778}
	if diff := cmp.Diff(want, c.Rect()); diff != "" {
		t.Fatalf("geometry mismatch (-want +got):\n%s", diff)
	}
}

func TestArrangeMonocleCountsFloating(t *testing.T) {
	w, fb := newTestWM(t, noBar(2), nil)
	mapWindow(t, w, fb, 10)
	mapWindow(t, w, fb, 11)
	f := mapWindow(t, w, fb, 12)
	w.ToggleFloating(Arg{})
	if !f.IsFloating {
		t.Fatalf("expected selected client to float")
	}

	w.SetLayout(Arg{Layout: tiling.KindMonocle, HasLayout: true})

	if got := w.selmon.Symbol; got != "[3]" {
		t.Fatalf("expected monocle symbol [3], got %q", got)
	}
	full := tiling.Rect{X: 0, Y: 0, Width: 1276, Height: 796}
	for _, win := range []platform.WindowID{10, 11} {
		if diff := cmp.Diff(full, w.windowToClient(win).Rect()); diff != "" {
			t.Fatalf("window %d geometry mismatch (-want +got):\n%s", win, diff)
		}
	}
	if f.Rect() == full {
		t.Fatalf("floating client must keep its own geometry")
	}
}

func TestArrangeFloatLayoutLeavesGeometry(t *testing.T) {
	w, fb := newTestWM(t, noBar(1), nil)
	c := mapWindow(t, w, fb, 10)
	w.SetLayout(Arg{Layout: tiling.KindFloat, HasLayout: true})

	before := c.Rect()
	mapWindow(t, w, fb, 11)
	if c.Rect() != before {
		t.Fatalf("float layout moved a client: %v -> %v", before, c.Rect())
	}
	if w.selmon.Symbol != "><>" {
		t.Fatalf("unexpected symbol %q", w.selmon.Symbol)
	}
}

func TestShowHideParksHiddenClients(t *testing.T) {
	w, fb := newTestWM(t, nil, nil)
	c := mapWindow(t, w, fb, 10)

	w.View(Arg{UInt: 1 << 1})

	got := fb.geometry[10]
	if got.X != -2*c.Width() || got.Y != c.Y {
		t.Fatalf("expected client parked at (%d,%d), got (%d,%d)", -2*c.Width(), c.Y, got.X, got.Y)
	}
	if w.selmon.Sel != 0 {
		t.Fatalf("expected no selection on an empty tag")
	}

	w.View(Arg{})
	if fb.geometry[10].X != c.X {
		t.Fatalf("expected client back in place after returning to the previous tagset")
	}
}

func TestSizeHintsApplyWhenTiled(t *testing.T) {
	w, fb := newTestWM(t, noBar(0), nil)
	fb.addWindow(10, tiling.Rect{Width: 100, Height: 100}).hints = &tiling.SizeHints{IncWidth: 7, IncHeight: 9}
	w.handle(platform.MapRequest{Window: 10})

	c := w.windowToClient(10)
	if c.W%7 != 0 || c.H%9 != 0 {
		t.Fatalf("expected increments honoured, got %dx%d", c.W, c.H)
	}
	if c.W > 1280 || c.H > 800 {
		t.Fatalf("client grew beyond the work area: %dx%d", c.W, c.H)
	}
}

func TestArrangeUsesClientBorderWidth(t *testing.T) {
	w, fb := newTestWM(t, noBar(1), nil)
	c := mapWindow(t, w, fb, 10)
	w.handle(platform.ConfigureRequest{Window: 10, Mask: platform.ConfigBorderWidth, BorderWidth: 0})
	w.arrange(w.selmon)

	full := tiling.Rect{Width: 1280, Height: 800}
	if diff := cmp.Diff(full, c.Rect()); diff != "" {
		t.Fatalf("borderless client geometry mismatch (-want +got):\n%s", diff)
	}

	other := mapWindow(t, w, fb, 11)
	w.SetLayout(Arg{Layout: tiling.KindMonocle, HasLayout: true})
	if diff := cmp.Diff(full, c.Rect()); diff != "" {
		t.Fatalf("borderless monocle geometry mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(tiling.Rect{Width: 1278, Height: 798}, other.Rect()); diff != "" {
		t.Fatalf("bordered monocle geometry mismatch (-want +got):\n%s", diff)
	}
}

func TestSizeHintsIgnoredWhenDisabled(t *testing.T) {
	w, fb := newTestWM(t, func(c *config.Config) {
		c.BorderWidth = 0
		c.ShowBar = false
		c.ResizeHints = false
	}, nil)
	fb.addWindow(10, tiling.Rect{Width: 100, Height: 100}).hints = &tiling.SizeHints{IncWidth: 7, IncHeight: 9}
	w.handle(platform.MapRequest{Window: 10})

	c := w.windowToClient(10)
	if diff := cmp.Diff(tiling.Rect{Width: 1280, Height: 800}, c.Rect()); diff != "" {
		t.Fatalf("geometry mismatch (-want +got):\n%s", diff)
	}
}

func TestFixedClientFloats(t *testing.T) {
	w, fb := newTestWM(t, nil, nil)
	fb.addWindow(10, tiling.Rect{X: 50, Y: 60, Width: 200, Height: 100}).hints = &tiling.SizeHints{
		MinWidth: 200, MinHeight: 100, MaxWidth: 200, MaxHeight: 100,
	}
	w.handle(platform.MapRequest{Window: 10})

	c := w.windowToClient(10)
	if !c.IsFixed || !c.IsFloating {
		t.Fatalf("expected fixed floating client, fixed=%v floating=%v", c.IsFixed, c.IsFloating)
	}
	w.ToggleFloating(Arg{})
	if !c.IsFloating {
		t.Fatalf("fixed client must stay floating")
	}
	if c.W != 200 || c.H != 100 {
		t.Fatalf("fixed client resized to %dx%d", c.W, c.H)
	}
}
