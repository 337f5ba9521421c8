// Package wm holds the window manager state machine: the client registry,
// per-monitor client lists and focus stacks, tag visibility, layout
// application, and the dispatcher that feeds display events into them.
//
// All exported methods except Do must be called from the goroutine running
// Run (or, before Run starts, from the goroutine that called New).
package wm

import (
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/1broseidon/tagwm/internal/config"
	"github.com/1broseidon/tagwm/internal/hotkeys"
	"github.com/1broseidon/tagwm/internal/platform"
	"github.com/1broseidon/tagwm/internal/tiling"
)

const (
	// MaxNameBytes bounds client titles and the status text. Longer text
	// is cut on a rune boundary. The limit matches the 256 byte
	// NUL-terminated buffers status scripts and rules were written against.
	MaxNameBytes = 255
	// MaxSymbolBytes bounds the layout indicator shown in the bar.
	MaxSymbolBytes = 15

	brokenName = "broken"
)

// ErrStopped is returned by Do once the dispatcher has exited.
var ErrStopped = errors.New("window manager stopped")

// ClientID is the stable arena key of a managed client. Zero means none.
type ClientID uint32

// Client is a managed top-level window.
type Client struct {
	ID   ClientID
	Win  platform.WindowID
	Name string

	X, Y, W, H             int
	OldX, OldY, OldW, OldH int
	BW, OldBW              int

	Hints      tiling.SizeHints
	HintsValid bool
	IsFixed    bool

	Tags         uint32
	IsFloating   bool
	IsUrgent     bool
	IsFullscreen bool
	NeverFocus   bool
	// OldState is the floating state saved while fullscreen.
	OldState bool

	Mon *Monitor
}

// Width is the outer width including both borders.
func (c *Client) Width() int { return c.W + 2*c.BW }

// Height is the outer height including both borders.
func (c *Client) Height() int { return c.H + 2*c.BW }

// Rect is the client area.
func (c *Client) Rect() tiling.Rect {
	return tiling.Rect{X: c.X, Y: c.Y, Width: c.W, Height: c.H}
}

// Monitor is one physical output and the clients it owns.
type Monitor struct {
	Num    int
	Screen tiling.Rect
	Work   tiling.Rect
	BarY   int

	TagSet  [2]uint32
	SelTags int

	Layouts   [2]tiling.Kind
	SelLayout int
	Symbol    string
	MFact     float64
	NMaster   int

	ShowBar bool
	TopBar  bool
	BarWin  platform.WindowID

	clients []ClientID
	stack   []ClientID
	Sel     ClientID
}

// Tagset is the active tag mask.
func (m *Monitor) Tagset() uint32 { return m.TagSet[m.SelTags] }

// Layout is the active layout.
func (m *Monitor) Layout() tiling.Kind { return m.Layouts[m.SelLayout] }

// Clients returns the client list in tiling order.
func (m *Monitor) Clients() []ClientID { return append([]ClientID(nil), m.clients...) }

// Stack returns the focus stack, most recently focused first.
func (m *Monitor) Stack() []ClientID { return append([]ClientID(nil), m.stack...) }

// Options configures a window manager instance.
type Options struct {
	Backend platform.Backend
	Config  *config.Config
	Logger  *slog.Logger
	// Spawn starts a detached program. Defaults to a setsid'd exec.
	Spawn func(argv []string, env []string) error
}

// WM is the single owner of all window manager state.
type WM struct {
	backend platform.Backend
	cfg     *config.Config
	logger  *slog.Logger
	spawn   func(argv []string, env []string) error

	clients map[ClientID]*Client
	nextID  ClientID

	mons      []*Monitor
	selmon    *Monitor
	motionMon *Monitor

	sw, sh    int
	barHeight int

	running        bool
	rootStatus     string
	statusOverride string
	hasOverride    bool

	keys     []binding
	keyTable *hotkeys.Table
	buttons  []buttonBinding

	drag *drag

	calls   chan call
	stopped chan struct{}
}

// New takes over the display through backend: it pushes the appearance,
// discovers monitors, creates bars, grabs keys and focuses the root. It
// does not manage existing windows; call Scan for that.
func New(opts Options) (*WM, error) {
	if opts.Backend == nil {
		return nil, fmt.Errorf("wm: backend is required")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("wm: invalid config: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	spawn := opts.Spawn
	if spawn == nil {
		spawn = execSpawn
	}

	w := &WM{
		backend: opts.Backend,
		cfg:     cfg,
		logger:  logger,
		spawn:   spawn,
		clients: make(map[ClientID]*Client),
		nextID:  1,
		running: true,
		calls:   make(chan call, 16),
		stopped: make(chan struct{}),
	}

	keys, buttons, table, err := w.compileBindings(cfg)
	if err != nil {
		return nil, err
	}
	w.keys, w.buttons, w.keyTable = keys, buttons, table

	w.backend.SetAppearance(appearance(cfg))
	w.sw, w.sh = w.backend.ScreenSize()
	w.barHeight = w.resolveBarHeight(cfg)

	w.updateGeometry()
	w.updateBars()
	w.rootStatus = w.backend.RootName()
	w.grabKeys()
	w.updateClientList()
	w.focus(nil)

	w.logger.Info("window manager initialised",
		"monitors", len(w.mons),
		"screen_width", w.sw,
		"screen_height", w.sh)
	return w, nil
}

func (w *WM) resolveBarHeight(cfg *config.Config) int {
	if cfg.BarHeight > 0 {
		return cfg.BarHeight
	}
	return w.backend.BarHeight()
}

func appearance(cfg *config.Config) platform.Appearance {
	return platform.Appearance{
		Normal: platform.Colors{
			Foreground: cfg.Colors.Normal.Foreground,
			Background: cfg.Colors.Normal.Background,
			Border:     cfg.Colors.Normal.Border,
		},
		Selected: platform.Colors{
			Foreground: cfg.Colors.Selected.Foreground,
			Background: cfg.Colors.Selected.Background,
			Border:     cfg.Colors.Selected.Border,
		},
	}
}

// Config returns the active configuration.
func (w *WM) Config() *config.Config { return w.cfg }

// Monitors returns the monitor set in index order.
func (w *WM) Monitors() []*Monitor { return append([]*Monitor(nil), w.mons...) }

// SelectedMonitor returns the monitor holding keyboard focus.
func (w *WM) SelectedMonitor() *Monitor { return w.selmon }

// Client resolves an arena key; nil for zero or unknown ids.
func (w *WM) Client(id ClientID) *Client {
	if id == 0 {
		return nil
	}
	return w.clients[id]
}

// Selected is the focused client of the selected monitor, or nil.
func (w *WM) Selected() *Client {
	if w.selmon == nil {
		return nil
	}
	return w.Client(w.selmon.Sel)
}

// Running reports whether the dispatcher should keep going.
func (w *WM) Running() bool { return w.running }

func (w *WM) tagMask() uint32 { return w.cfg.TagMask() }

// truncateBytes cuts s to at most n bytes without splitting a rune.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
