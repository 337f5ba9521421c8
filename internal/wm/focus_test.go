package wm

import (
	"testing"

	"github.com/1broseidon/tagwm/internal/platform"
	"github.com/1broseidon/tagwm/internal/tiling"
	"github.com/google/go-cmp/cmp"
)

func twoMonitors(fb *fakeBackend) {
	fb.width = 2560
	fb.monitors = []tiling.Rect{
		{X: 0, Y: 0, Width: 1280, Height: 800},
		{X: 1280, Y: 0, Width: 1280, Height: 800},
	}
}

func TestManageAttachesAtHeadAndFocuses(t *testing.T) {
	w, fb := newTestWM(t, nil, nil)
	mapWindow(t, w, fb, 10)
	mapWindow(t, w, fb, 11)
	c := mapWindow(t, w, fb, 12)

	m := w.selmon
	if diff := cmp.Diff([]platform.WindowID{12, 11, 10}, windowsOf(w, m.clients)); diff != "" {
		t.Fatalf("client list mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]platform.WindowID{12, 11, 10}, windowsOf(w, m.stack)); diff != "" {
		t.Fatalf("stack mismatch (-want +got):\n%s", diff)
	}
	if m.Sel != c.ID || fb.focused != 12 {
		t.Fatalf("expected newest client focused, sel=%d focused=%d", m.Sel, fb.focused)
	}
	if fb.schemes[10] != platform.SchemeNormal || fb.schemes[12] != platform.SchemeSelected {
		t.Fatalf("unexpected border schemes %v", fb.schemes)
	}
	if diff := cmp.Diff([]platform.WindowID{12, 11, 10}, fb.clientList); diff != "" {
		t.Fatalf("client list property mismatch (-want +got):\n%s", diff)
	}
	checkMembership(t, w)
}

func TestFocusMovesClientToStackHeadOnly(t *testing.T) {
	w, fb := newTestWM(t, nil, nil)
	a := mapWindow(t, w, fb, 10)
	mapWindow(t, w, fb, 11)
	mapWindow(t, w, fb, 12)

	w.focus(a)
	m := w.selmon
	if diff := cmp.Diff([]platform.WindowID{10, 12, 11}, windowsOf(w, m.stack)); diff != "" {
		t.Fatalf("stack mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]platform.WindowID{12, 11, 10}, windowsOf(w, m.clients)); diff != "" {
		t.Fatalf("client list must not change on focus (-want +got):\n%s", diff)
	}
}

func TestDetachSelectedPicksMostRecentVisible(t *testing.T) {
	w, fb := newTestWM(t, nil, nil)
	a := mapWindow(t, w, fb, 10)
	b := mapWindow(t, w, fb, 11)
	c := mapWindow(t, w, fb, 12)

	// Stack: a, c, b. Hide c on tag 2, then drop a.
	w.focus(a)
	c.Tags = 1 << 1
	w.handle(platform.DestroyNotify{Window: 10})

	m := w.selmon
	if m.Sel != b.ID {
		t.Fatalf("expected successor %d (b), got %d", b.ID, m.Sel)
	}
	if fb.focused != 11 {
		t.Fatalf("expected input focus on b, got %d", fb.focused)
	}
	checkMembership(t, w)
}

func TestUnmanageSoleSelectedClient(t *testing.T) {
	w, fb := newTestWM(t, nil, nil)
	c := mapWindow(t, w, fb, 10)
	fb.windows[10].attrs.BorderWidth = 3
	c.OldBW = 3

	w.handle(platform.UnmapNotify{Window: 10})

	m := w.selmon
	if m.Sel != 0 {
		t.Fatalf("expected no selection, got %d", m.Sel)
	}
	if len(m.clients) != 0 || len(m.stack) != 0 || len(w.clients) != 0 {
		t.Fatalf("expected empty monitor, got clients=%v stack=%v", m.clients, m.stack)
	}
	if fb.windows[10].state != platform.StateWithdrawn {
		t.Fatalf("expected withdrawn state, got %v", fb.windows[10].state)
	}
	if fb.borders[10] != 3 {
		t.Fatalf("expected original border restored, got %d", fb.borders[10])
	}

	before := fb.rootFocused
	w.focus(nil)
	if m.Sel != 0 || fb.rootFocused != before+1 {
		t.Fatalf("focus(nil) on an empty monitor should focus root and select nothing")
	}
}

func TestSyntheticUnmapOnlyWithdraws(t *testing.T) {
	w, fb := newTestWM(t, nil, nil)
	mapWindow(t, w, fb, 10)

	w.handle(platform.UnmapNotify{Window: 10, Synthetic: true})
	if w.windowToClient(10) == nil {
		t.Fatalf("synthetic unmap must not unmanage")
	}
	if fb.windows[10].state != platform.StateWithdrawn {
		t.Fatalf("expected withdrawn state")
	}
}

func TestSendToMonitor(t *testing.T) {
	w, fb := newTestWM(t, nil, twoMonitors)
	if len(w.mons) != 2 {
		t.Fatalf("expected 2 monitors, got %d", len(w.mons))
	}
	a, b := w.mons[0], w.mons[1]
	b.TagSet[b.SelTags] = 0b010

	other := mapWindow(t, w, fb, 10)
	c := mapWindow(t, w, fb, 11)
	if c.Mon != a || c.Tags != 0b001 {
		t.Fatalf("expected client on monitor 0 with tag 1, got mon=%d tags=%b", c.Mon.Num, c.Tags)
	}

	w.sendToMonitor(c, b)

	if c.Tags != 0b010 {
		t.Fatalf("expected tags 0b010, got %b", c.Tags)
	}
	if c.Mon != b {
		t.Fatalf("expected client owned by monitor 1")
	}
	if indexOf(a.clients, c.ID) >= 0 || indexOf(a.stack, c.ID) >= 0 {
		t.Fatalf("client still ordered on monitor 0")
	}
	if b.clients[0] != c.ID || b.stack[0] != c.ID {
		t.Fatalf("client not at the head of monitor 1 orderings")
	}
	if b.Sel != c.ID {
		t.Fatalf("expected client selected on monitor 1")
	}
	if a.Sel != other.ID {
		t.Fatalf("expected monitor 0 to fall back to the remaining client")
	}
	checkMembership(t, w)
}

func TestSendToMonitorLeavesEmptySource(t *testing.T) {
	w, fb := newTestWM(t, nil, twoMonitors)
	c := mapWindow(t, w, fb, 10)

	w.TagMonitor(Arg{Int: 1})

	if c.Mon != w.mons[1] {
		t.Fatalf("expected client on monitor 1")
	}
	if len(w.mons[0].clients) != 0 || w.mons[0].Sel != 0 {
		t.Fatalf("expected monitor 0 empty")
	}
	checkMembership(t, w)
}

func TestMembershipInvariantAcrossOperations(t *testing.T) {
	w, fb := newTestWM(t, nil, twoMonitors)

	steps := []func(){
		func() { mapWindow(t, w, fb, 10) },
		func() { mapWindow(t, w, fb, 11) },
		func() { w.TagMonitor(Arg{Int: 1}) },
		func() { mapWindow(t, w, fb, 12) },
		func() { w.FocusMonitor(Arg{Int: 1}) },
		func() { mapWindow(t, w, fb, 13) },
		func() { w.Tag(Arg{UInt: 1 << 3}) },
		func() { w.handle(platform.DestroyNotify{Window: 11}) },
		func() { w.TagMonitor(Arg{Int: -1}) },
		func() { w.Zoom(Arg{}) },
		func() { w.handle(platform.UnmapNotify{Window: 10}) },
		func() { w.handle(platform.DestroyNotify{Window: 10}) },
		func() { w.View(Arg{UInt: 1 << 3}) },
		func() { w.handle(platform.DestroyNotify{Window: 13}) },
		func() { w.handle(platform.DestroyNotify{Window: 12}) },
	}
	for i, step := range steps {
		step()
		if err := membershipError(w); err != nil {
			t.Fatalf("after step %d: %v", i, err)
		}
	}
	if len(w.clients) != 0 {
		t.Fatalf("expected every client gone, have %d", len(w.clients))
	}
}

func TestUrgentClientClearedOnFocus(t *testing.T) {
	w, fb := newTestWM(t, nil, nil)
	a := mapWindow(t, w, fb, 10)
	mapWindow(t, w, fb, 11)

	w.handle(platform.ClientMessage{Window: 10, Type: "_NET_ACTIVE_WINDOW"})
	if !a.IsUrgent || !fb.windows[10].urgencyHint {
		t.Fatalf("expected activation request to mark urgent")
	}
	w.focus(a)
	if a.IsUrgent || fb.windows[10].urgencyHint {
		t.Fatalf("expected focus to clear urgency")
	}
}

func TestNeverFocusSkipsInputFocus(t *testing.T) {
	w, fb := newTestWM(t, nil, nil)
	fb.addWindow(10, tiling.Rect{Width: 100, Height: 100}).wmHints = &platform.WMHints{InputSet: true, Input: false}
	w.handle(platform.MapRequest{Window: 10})

	c := w.windowToClient(10)
	if c == nil || !c.NeverFocus {
		t.Fatalf("expected never-focus client")
	}
	if fb.focused == 10 {
		t.Fatalf("input focus must not be set on a never-focus client")
	}
	if w.selmon.Sel != c.ID {
		t.Fatalf("client should still be selected")
	}
}

func TestFocusMonitorWraps(t *testing.T) {
	w, _ := newTestWM(t, nil, twoMonitors)
	start := w.selmon
	w.FocusMonitor(Arg{Int: -1})
	if w.selmon == start {
		t.Fatalf("expected monitor change")
	}
	w.FocusMonitor(Arg{Int: -1})
	if w.selmon != start {
		t.Fatalf("expected wrap back to the first monitor")
	}
}
