package wm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/1broseidon/tagwm/internal/config"
	"github.com/1broseidon/tagwm/internal/platform"
)

func TestRunStopsOnQuitKey(t *testing.T) {
	w, fb := newTestWM(t, nil, nil)
	fb.push(keyPress(t, "mod-shift-q"))

	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := fb.barContent[w.selmon.BarWin]; !ok {
		t.Fatalf("expected bars drawn before exit")
	}
	if err := w.Do(context.Background(), func(*WM) error { return nil }); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped after exit, got %v", err)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	w, _ := newTestWM(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := w.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if w.Running() {
		t.Fatalf("expected running flag cleared")
	}
}

func TestRunReturnsBackendError(t *testing.T) {
	w, fb := newTestWM(t, nil, nil)
	boom := errors.New("connection lost")
	fb.pollErr = boom

	if err := w.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestDoRunsOnDispatcher(t *testing.T) {
	w, _ := newTestWM(t, func(c *config.Config) { c.PollInterval = time.Millisecond }, nil)

	errc := make(chan error, 1)
	go func() { errc <- w.Run(context.Background()) }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := w.Do(ctx, func(w *WM) error {
		w.SetStatus("from ipc")
		return nil
	}); err != nil {
		t.Fatalf("Do: %v", err)
	}

	var status string
	if err := w.Do(ctx, func(w *WM) error {
		status = w.Snapshot().Status
		return nil
	}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if status != "from ipc" {
		t.Fatalf("expected status override, got %q", status)
	}

	want := errors.New("rejected")
	if err := w.Do(ctx, func(*WM) error { return want }); !errors.Is(err, want) {
		t.Fatalf("expected call error, got %v", err)
	}

	if err := w.Do(ctx, func(*WM) error { panic("bad call") }); err == nil {
		t.Fatalf("expected panic turned into an error")
	}

	if err := w.Do(ctx, func(w *WM) error { return w.Exec("quit", "", nil) }); err != nil {
		t.Fatalf("quit: %v", err)
	}
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-ctx.Done():
		t.Fatalf("dispatcher did not stop")
	}

	if err := w.Do(ctx, func(*WM) error { return nil }); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}

func TestSnapshot(t *testing.T) {
	w, fb := newTestWM(t, nil, nil)
	mapWindow(t, w, fb, 10)
	mapWindow(t, w, fb, 11)

	st := w.Snapshot()
	if len(st.Monitors) != 1 || st.SelectedMonitor != 0 {
		t.Fatalf("unexpected monitors %+v", st.Monitors)
	}
	m := st.Monitors[0]
	if m.Layout != "tile" || m.Symbol != "[]=" || m.TagSet != 1 {
		t.Fatalf("unexpected monitor state %+v", m)
	}
	if len(m.Clients) != 2 || m.Clients[0].Window != 11 || m.Selected != 11 {
		t.Fatalf("unexpected clients %+v selected %d", m.Clients, m.Selected)
	}
	if len(st.Tags) != 9 || st.Status != defaultStatus {
		t.Fatalf("unexpected tags %v status %q", st.Tags, st.Status)
	}

	// Snapshots are copies.
	st.Tags[0] = "changed"
	if w.Config().Tags[0] == "changed" {
		t.Fatalf("snapshot aliases the config")
	}
}

func TestReload(t *testing.T) {
	w, fb := newTestWM(t, nil, nil)
	c := mapWindow(t, w, fb, 10)
	w.View(Arg{UInt: 1 << 6})
	w.selmon.MFact = 0.7

	cfg, err := config.BuildEffectiveConfig(config.RawConfig{Tags: []string{"www", "dev", "chat"}})
	if err != nil {
		t.Fatalf("BuildEffectiveConfig: %v", err)
	}
	cfg.BorderWidth = 4

	if err := w.Reload(cfg); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if w.Config() != cfg {
		t.Fatalf("expected new config in effect")
	}
	if got := w.selmon.Tagset(); got != 1 {
		t.Fatalf("expected tagset masked back to tag 1, got %b", got)
	}
	if c.BW != 4 || fb.borders[10] != 4 {
		t.Fatalf("expected border width 4, got %d/%d", c.BW, fb.borders[10])
	}
	if w.selmon.MFact != 0.7 {
		t.Fatalf("reload must keep monitor state, mfact=%v", w.selmon.MFact)
	}
	if len(w.barContent(w.selmon).Tags) != 3 {
		t.Fatalf("expected bar to show three tags")
	}
	if w.Selected() != c {
		t.Fatalf("expected client visible and selected again")
	}
}

func TestReloadRejectsBadBindings(t *testing.T) {
	w, fb := newTestWM(t, nil, nil)
	old := w.Config()
	grabs := len(fb.grabbedKeys)

	cfg := config.DefaultConfig()
	cfg.Keys = append(cfg.Keys, config.KeyBinding{Key: "mod-x", Command: "selfdestruct"})
	err := w.Reload(cfg)

	var verr *config.ValidationError
	if !errors.As(err, &verr) || verr.Path != fmt.Sprintf("keys.%d", len(cfg.Keys)-1) {
		t.Fatalf("expected validation error for the new key, got %v", err)
	}
	if w.Config() != old || len(fb.grabbedKeys) != grabs {
		t.Fatalf("a rejected reload must leave the running config alone")
	}
}

func TestCleanupReleasesClients(t *testing.T) {
	w, fb := newTestWM(t, nil, nil)
	mapWindow(t, w, fb, 10)
	hidden := mapWindow(t, w, fb, 11)
	w.Tag(Arg{UInt: 1 << 3})
	if w.isVisible(hidden) {
		t.Fatalf("expected client hidden")
	}
	fb.windows[11].attrs.BorderWidth = 2
	hidden.OldBW = 2

	w.Cleanup()

	if len(w.clients) != 0 {
		t.Fatalf("expected all clients released, have %d", len(w.clients))
	}
	for _, win := range []platform.WindowID{10, 11} {
		if fb.windows[win].state != platform.StateWithdrawn {
			t.Fatalf("window %d not withdrawn", win)
		}
	}
	if fb.borders[11] != 2 {
		t.Fatalf("expected original border restored, got %d", fb.borders[11])
	}
	if len(fb.bars) != 0 || len(fb.grabbedKeys) != 0 || len(fb.clientList) != 0 {
		t.Fatalf("expected bars, grabs and client list cleared")
	}
	if fb.focused != fakeRoot {
		t.Fatalf("expected focus on the root window")
	}
}
