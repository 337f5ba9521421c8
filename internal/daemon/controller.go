package daemon

import (
	"context"
	"log/slog"

	"github.com/1broseidon/tagwm/internal/config"
	"github.com/1broseidon/tagwm/internal/ipc"
	"github.com/1broseidon/tagwm/internal/tiling"
	"github.com/1broseidon/tagwm/internal/wm"
)

// Dispatcher runs closures on the window manager's event loop.
type Dispatcher interface {
	Do(ctx context.Context, fn func(*wm.WM) error) error
}

// LoadFunc loads the configuration file at path.
type LoadFunc func(path string) (*config.Config, error)

// ControllerConfig holds configuration for the controller.
type ControllerConfig struct {
	// ConfigPath is reread on reload.
	ConfigPath string
	Load       LoadFunc
	Logger     *slog.Logger
}

// Controller carries out remote requests on the dispatcher goroutine. It
// implements ipc.Handler.
type Controller struct {
	wm         Dispatcher
	configPath string
	load       LoadFunc
	logger     *slog.Logger
}

var _ ipc.Handler = (*Controller)(nil)

// NewController creates a controller driving d.
func NewController(cfg ControllerConfig, d Dispatcher) *Controller {
	load := cfg.Load
	if load == nil {
		load = loadConfig
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		wm:         d,
		configPath: cfg.ConfigPath,
		load:       load,
		logger:     logger,
	}
}

func loadConfig(path string) (*config.Config, error) {
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// State returns a snapshot of monitors and clients.
func (c *Controller) State(ctx context.Context) (*ipc.StateData, error) {
	var st wm.State
	err := c.wm.Do(ctx, func(w *wm.WM) error {
		st = w.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return StateData(st), nil
}

// Exec runs a named command as if it came from a key binding.
func (c *Controller) Exec(ctx context.Context, p ipc.ExecPayload) error {
	return c.wm.Do(ctx, func(w *wm.WM) error {
		return w.Exec(p.Command, p.Arg, p.Args)
	})
}

// SetStatus overrides the bar status text and redraws the bars.
func (c *Controller) SetStatus(ctx context.Context, text string) error {
	return c.wm.Do(ctx, func(w *wm.WM) error {
		w.SetStatus(text)
		return nil
	})
}

// Reload rereads the configuration file and applies it. The file is parsed
// off the dispatcher; a broken file leaves the running config untouched.
func (c *Controller) Reload(ctx context.Context) error {
	cfg, err := c.load(c.configPath)
	if err != nil {
		return err
	}
	if err := c.wm.Do(ctx, func(w *wm.WM) error { return w.Reload(cfg) }); err != nil {
		return err
	}
	c.logger.Info("config reloaded", "path", c.configPath)
	return nil
}

// Quit stops the event loop.
func (c *Controller) Quit(ctx context.Context) error {
	return c.wm.Do(ctx, func(w *wm.WM) error {
		w.Quit(wm.Arg{})
		return nil
	})
}

// StateData converts a window manager snapshot to its wire form.
func StateData(st wm.State) *ipc.StateData {
	out := &ipc.StateData{
		SelectedMonitor: st.SelectedMonitor,
		Tags:            st.Tags,
		Status:          st.Status,
		Monitors:        make([]ipc.MonitorInfo, 0, len(st.Monitors)),
	}
	for _, m := range st.Monitors {
		mi := ipc.MonitorInfo{
			ID:       m.Num,
			Screen:   wireRect(m.Screen),
			Work:     wireRect(m.Work),
			TagSet:   m.TagSet,
			Layout:   m.Layout,
			Symbol:   m.Symbol,
			MFact:    m.MFact,
			NMaster:  m.NMaster,
			ShowBar:  m.ShowBar,
			Selected: uint32(m.Selected),
			Clients:  make([]ipc.ClientInfo, 0, len(m.Clients)),
			Stack:    make([]uint32, 0, len(m.Stack)),
		}
		for _, cl := range m.Clients {
			mi.Clients = append(mi.Clients, ipc.ClientInfo{
				Window:     uint32(cl.Window),
				Name:       cl.Name,
				Tags:       cl.Tags,
				Geometry:   wireRect(cl.Geometry),
				Floating:   cl.Floating,
				Fullscreen: cl.Fullscreen,
				Urgent:     cl.Urgent,
				Fixed:      cl.Fixed,
			})
		}
		for _, win := range m.Stack {
			mi.Stack = append(mi.Stack, uint32(win))
		}
		out.Monitors = append(out.Monitors, mi)
	}
	return out
}

func wireRect(r tiling.Rect) ipc.Rect {
	return ipc.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}
