package daemon

import (
	"context"
	"errors"
	"testing"

	"github.com/1broseidon/tagwm/internal/config"
	"github.com/1broseidon/tagwm/internal/ipc"
	"github.com/1broseidon/tagwm/internal/platform"
	"github.com/1broseidon/tagwm/internal/tiling"
	"github.com/1broseidon/tagwm/internal/wm"
	"github.com/google/go-cmp/cmp"
)

// stoppedWM is a dispatcher whose loop has exited.
type stoppedWM struct {
	calls int
}

func (s *stoppedWM) Do(context.Context, func(*wm.WM) error) error {
	s.calls++
	return wm.ErrStopped
}

func TestStateData(t *testing.T) {
	st := wm.State{
		SelectedMonitor: 1,
		Tags:            []string{"1", "2", "3"},
		Status:          "12:00",
		Monitors: []wm.MonitorState{
			{
				Num:     0,
				Screen:  tiling.Rect{Width: 1280, Height: 800},
				Work:    tiling.Rect{Y: 20, Width: 1280, Height: 780},
				TagSet:  1,
				Layout:  "tile",
				Symbol:  "[]=",
				MFact:   0.55,
				NMaster: 1,
				ShowBar: true,
			},
			{
				Num:     1,
				Screen:  tiling.Rect{X: 1280, Width: 1920, Height: 1080},
				Work:    tiling.Rect{X: 1280, Width: 1920, Height: 1080},
				TagSet:  6,
				Layout:  "monocle",
				Symbol:  "[2]",
				MFact:   0.5,
				NMaster: 2,
				Clients: []wm.ClientState{
					{Window: 10, Name: "term", Tags: 2, Geometry: tiling.Rect{X: 1280, Width: 1918, Height: 1078}},
					{Window: 11, Name: "mpv", Tags: 4, Floating: true, Fixed: true},
				},
				Stack:    []platform.WindowID{11, 10},
				Selected: 11,
			},
		},
	}

	want := &ipc.StateData{
		SelectedMonitor: 1,
		Tags:            []string{"1", "2", "3"},
		Status:          "12:00",
		Monitors: []ipc.MonitorInfo{
			{
				ID:      0,
				Screen:  ipc.Rect{Width: 1280, Height: 800},
				Work:    ipc.Rect{Y: 20, Width: 1280, Height: 780},
				TagSet:  1,
				Layout:  "tile",
				Symbol:  "[]=",
				MFact:   0.55,
				NMaster: 1,
				ShowBar: true,
				Clients: []ipc.ClientInfo{},
				Stack:   []uint32{},
			},
			{
				ID:      1,
				Screen:  ipc.Rect{X: 1280, Width: 1920, Height: 1080},
				Work:    ipc.Rect{X: 1280, Width: 1920, Height: 1080},
				TagSet:  6,
				Layout:  "monocle",
				Symbol:  "[2]",
				MFact:   0.5,
				NMaster: 2,
				Clients: []ipc.ClientInfo{
					{Window: 10, Name: "term", Tags: 2, Geometry: ipc.Rect{X: 1280, Width: 1918, Height: 1078}},
					{Window: 11, Name: "mpv", Tags: 4, Floating: true, Fixed: true},
				},
				Stack:    []uint32{11, 10},
				Selected: 11,
			},
		},
	}

	if diff := cmp.Diff(want, StateData(st)); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestControllerReloadRejectsBrokenConfig(t *testing.T) {
	d := &stoppedWM{}
	broken := errors.New("colors.normal.fg: invalid colour")
	c := NewController(ControllerConfig{
		ConfigPath: "/nonexistent/config.yaml",
		Load:       func(string) (*config.Config, error) { return nil, broken },
	}, d)

	if err := c.Reload(context.Background()); !errors.Is(err, broken) {
		t.Fatalf("expected load error, got %v", err)
	}
	if d.calls != 0 {
		t.Fatalf("a broken config must not reach the dispatcher")
	}
}

func TestControllerPropagatesStoppedDispatcher(t *testing.T) {
	d := &stoppedWM{}
	var loadedFrom string
	c := NewController(ControllerConfig{
		ConfigPath: "/etc/tagwm.yaml",
		Load: func(path string) (*config.Config, error) {
			loadedFrom = path
			return config.DefaultConfig(), nil
		},
	}, d)
	ctx := context.Background()

	checks := []struct {
		name string
		call func() error
	}{
		{name: "state", call: func() error { _, err := c.State(ctx); return err }},
		{name: "exec", call: func() error { return c.Exec(ctx, ipc.ExecPayload{Command: "view", Arg: "2"}) }},
		{name: "set_status", call: func() error { return c.SetStatus(ctx, "x") }},
		{name: "reload", call: func() error { return c.Reload(ctx) }},
		{name: "quit", call: func() error { return c.Quit(ctx) }},
	}
	for _, tt := range checks {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, wm.ErrStopped) {
				t.Fatalf("expected ErrStopped, got %v", err)
			}
		})
	}
	if d.calls != len(checks) {
		t.Fatalf("expected %d dispatched calls, got %d", len(checks), d.calls)
	}
	if loadedFrom != "/etc/tagwm.yaml" {
		t.Fatalf("reload read %q", loadedFrom)
	}
}
