package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/1broseidon/tagwm/internal/hotkeys"
	"github.com/1broseidon/tagwm/internal/tiling"
	"gopkg.in/yaml.v3"
)

// MaxTags is the number of tag bits available in a client's tag mask.
const MaxTags = 31

// ColorScheme is one foreground/background/border triple.
type ColorScheme struct {
	Foreground string `yaml:"fg"`
	Background string `yaml:"bg"`
	Border     string `yaml:"border"`
}

// Colors holds the normal and selected schemes.
type Colors struct {
	Normal   ColorScheme `yaml:"normal"`
	Selected ColorScheme `yaml:"selected"`
}

// Rule assigns tags, floating state or a monitor to matching new clients.
// Class, Instance and Title match as substrings; empty fields match anything.
type Rule struct {
	Class    string `yaml:"class,omitempty"`
	Instance string `yaml:"instance,omitempty"`
	Title    string `yaml:"title,omitempty"`
	// Tags are 1-based tag numbers.
	Tags     []int `yaml:"tags,omitempty"`
	Floating bool  `yaml:"floating,omitempty"`
	// Monitor is the 1-based target monitor; 0 keeps the selected one.
	Monitor int `yaml:"monitor,omitempty"`
}

// KeyBinding binds a key chord to a window manager command.
type KeyBinding struct {
	Key     string   `yaml:"key"`
	Command string   `yaml:"command"`
	Arg     string   `yaml:"arg,omitempty"`
	Args    []string `yaml:"args,omitempty"`
}

// Click regions a button binding can target.
const (
	ClickTagBar     = "tagbar"
	ClickLtSymbol   = "ltsymbol"
	ClickStatusText = "status"
	ClickWinTitle   = "title"
	ClickClientWin  = "client"
	ClickRootWin    = "root"
)

// ButtonBinding binds a pointer button in a click region to a command.
type ButtonBinding struct {
	Click   string   `yaml:"click"`
	Button  int      `yaml:"button"`
	Mods    string   `yaml:"mods,omitempty"`
	Command string   `yaml:"command"`
	Arg     string   `yaml:"arg,omitempty"`
	Args    []string `yaml:"args,omitempty"`
}

// Config is the effective window manager configuration.
type Config struct {
	Tags           []string        `yaml:"tags"`
	ModKey         string          `yaml:"mod_key"`
	BorderWidth    int             `yaml:"border_width"`
	Snap           int             `yaml:"snap"`
	ShowBar        bool            `yaml:"show_bar"`
	TopBar         bool            `yaml:"top_bar"`
	BarHeight      int             `yaml:"bar_height"`
	MFact          float64         `yaml:"mfact"`
	NMaster        int             `yaml:"nmaster"`
	ResizeHints    bool            `yaml:"resize_hints"`
	LockFullscreen bool            `yaml:"lock_fullscreen"`
	Colors         Colors          `yaml:"colors"`
	Layouts        []string        `yaml:"layouts"`
	Rules          []Rule          `yaml:"rules"`
	Keys           []KeyBinding    `yaml:"keys"`
	Buttons        []ButtonBinding `yaml:"buttons"`
	Terminal       []string        `yaml:"terminal"`
	Launcher       []string        `yaml:"launcher"`
	PollInterval   time.Duration   `yaml:"poll_interval"`
	LogLevel       string          `yaml:"log_level"`
	Watch          bool            `yaml:"watch"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	cfg := &Config{
		Tags:           []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"},
		ModKey:         "mod1",
		BorderWidth:    1,
		Snap:           32,
		ShowBar:        true,
		TopBar:         true,
		MFact:          0.55,
		NMaster:        1,
		ResizeHints:    true,
		LockFullscreen: true,
		Colors: Colors{
			Normal:   ColorScheme{Foreground: "#bbbbbb", Background: "#222222", Border: "#444444"},
			Selected: ColorScheme{Foreground: "#eeeeee", Background: "#005577", Border: "#005577"},
		},
		Layouts: []string{"tile", "float", "monocle", "grid"},
		Rules: []Rule{
			{Class: "Gimp", Floating: true},
			{Class: "Firefox", Tags: []int{9}},
		},
		Terminal:     []string{"st"},
		Launcher:     []string{"dmenu_run"},
		PollInterval: 10 * time.Millisecond,
		LogLevel:     "info",
		Watch:        true,
	}
	cfg.Keys = defaultKeys(len(cfg.Tags))
	cfg.Buttons = defaultButtons()
	return cfg
}

func defaultKeys(tags int) []KeyBinding {
	keys := []KeyBinding{
		{Key: "mod-p", Command: "spawn", Arg: "launcher"},
		{Key: "mod-shift-Return", Command: "spawn", Arg: "terminal"},
		{Key: "mod-b", Command: "togglebar"},
		{Key: "mod-j", Command: "focusstack", Arg: "+1"},
		{Key: "mod-k", Command: "focusstack", Arg: "-1"},
		{Key: "mod-i", Command: "incnmaster", Arg: "+1"},
		{Key: "mod-d", Command: "incnmaster", Arg: "-1"},
		{Key: "mod-h", Command: "setmfact", Arg: "-0.05"},
		{Key: "mod-l", Command: "setmfact", Arg: "+0.05"},
		{Key: "mod-Return", Command: "zoom"},
		{Key: "mod-Tab", Command: "view"},
		{Key: "mod-shift-c", Command: "killclient"},
		{Key: "mod-t", Command: "setlayout", Arg: "tile"},
		{Key: "mod-f", Command: "setlayout", Arg: "float"},
		{Key: "mod-m", Command: "setlayout", Arg: "monocle"},
		{Key: "mod-g", Command: "setlayout", Arg: "grid"},
		{Key: "mod-space", Command: "setlayout"},
		{Key: "mod-shift-space", Command: "togglefloating"},
		{Key: "mod-shift-f", Command: "togglefullscreen"},
		{Key: "mod-0", Command: "view", Arg: "all"},
		{Key: "mod-shift-0", Command: "tag", Arg: "all"},
		{Key: "mod-comma", Command: "focusmon", Arg: "-1"},
		{Key: "mod-period", Command: "focusmon", Arg: "+1"},
		{Key: "mod-shift-comma", Command: "tagmon", Arg: "-1"},
		{Key: "mod-shift-period", Command: "tagmon", Arg: "+1"},
	}
	for i := 1; i <= tags && i <= 9; i++ {
		n := strconv.Itoa(i)
		keys = append(keys,
			KeyBinding{Key: "mod-" + n, Command: "view", Arg: n},
			KeyBinding{Key: "mod-control-" + n, Command: "toggleview", Arg: n},
			KeyBinding{Key: "mod-shift-" + n, Command: "tag", Arg: n},
			KeyBinding{Key: "mod-control-shift-" + n, Command: "toggletag", Arg: n},
		)
	}
	keys = append(keys, KeyBinding{Key: "mod-shift-q", Command: "quit"})
	return keys
}

func defaultButtons() []ButtonBinding {
	return []ButtonBinding{
		{Click: ClickLtSymbol, Button: 1, Command: "setlayout"},
		{Click: ClickLtSymbol, Button: 3, Command: "setlayout", Arg: "monocle"},
		{Click: ClickWinTitle, Button: 2, Command: "zoom"},
		{Click: ClickStatusText, Button: 2, Command: "spawn", Arg: "terminal"},
		{Click: ClickClientWin, Button: 1, Mods: "mod", Command: "movemouse"},
		{Click: ClickClientWin, Button: 2, Mods: "mod", Command: "togglefloating"},
		{Click: ClickClientWin, Button: 3, Mods: "mod", Command: "resizemouse"},
		{Click: ClickTagBar, Button: 1, Command: "view"},
		{Click: ClickTagBar, Button: 3, Command: "toggleview"},
		{Click: ClickTagBar, Button: 1, Mods: "mod", Command: "tag"},
		{Click: ClickTagBar, Button: 3, Mods: "mod", Command: "toggletag"},
	}
}

// TagMask returns the mask covering every configured tag.
func (c *Config) TagMask() uint32 {
	return uint32(1)<<len(c.Tags) - 1
}

// TagMask converts a rule's 1-based tag numbers into a mask.
func (r Rule) TagMask() uint32 {
	var mask uint32
	for _, t := range r.Tags {
		if t >= 1 && t <= MaxTags {
			mask |= 1 << (t - 1)
		}
	}
	return mask
}

// DefaultLayout is the layout every monitor starts with.
func (c *Config) DefaultLayout() tiling.Kind {
	if len(c.Layouts) == 0 {
		return tiling.KindTile
	}
	kind, err := tiling.ParseKind(c.Layouts[0])
	if err != nil {
		return tiling.KindTile
	}
	return kind
}

// Save writes the configuration to the default config path.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo validates and writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

var validClicks = map[string]bool{
	ClickTagBar:     true,
	ClickLtSymbol:   true,
	ClickStatusText: true,
	ClickWinTitle:   true,
	ClickClientWin:  true,
	ClickRootWin:    true,
}

// Validate checks structural constraints. Command names and arguments are
// checked when the window manager compiles its bindings.
func (c *Config) Validate() error {
	if len(c.Tags) == 0 || len(c.Tags) > MaxTags {
		return &ValidationError{Path: "tags", Err: fmt.Errorf("between 1 and %d tags are required", MaxTags)}
	}
	for i, tag := range c.Tags {
		if strings.TrimSpace(tag) == "" {
			return &ValidationError{Path: fmt.Sprintf("tags.%d", i), Err: fmt.Errorf("tag label must not be empty")}
		}
	}
	if _, err := hotkeys.ParseModifier(c.ModKey); err != nil {
		return &ValidationError{Path: "mod_key", Err: err}
	}
	if c.BorderWidth < 0 {
		return &ValidationError{Path: "border_width", Err: fmt.Errorf("border_width must be >= 0")}
	}
	if c.Snap < 0 {
		return &ValidationError{Path: "snap", Err: fmt.Errorf("snap must be >= 0")}
	}
	if c.BarHeight < 0 {
		return &ValidationError{Path: "bar_height", Err: fmt.Errorf("bar_height must be >= 0")}
	}
	if c.MFact < 0.05 || c.MFact > 0.95 {
		return &ValidationError{Path: "mfact", Err: fmt.Errorf("mfact must be between 0.05 and 0.95")}
	}
	if c.NMaster < 0 {
		return &ValidationError{Path: "nmaster", Err: fmt.Errorf("nmaster must be >= 0")}
	}
	if err := validateScheme("colors.normal", c.Colors.Normal); err != nil {
		return err
	}
	if err := validateScheme("colors.selected", c.Colors.Selected); err != nil {
		return err
	}
	if len(c.Layouts) == 0 {
		return &ValidationError{Path: "layouts", Err: fmt.Errorf("layouts must not be empty")}
	}
	for i, name := range c.Layouts {
		if _, err := tiling.ParseKind(name); err != nil {
			return &ValidationError{Path: fmt.Sprintf("layouts.%d", i), Err: err}
		}
	}
	for i, rule := range c.Rules {
		for _, tag := range rule.Tags {
			if tag < 1 || tag > len(c.Tags) {
				return &ValidationError{Path: fmt.Sprintf("rules.%d.tags", i), Err: fmt.Errorf("tag %d out of range 1-%d", tag, len(c.Tags))}
			}
		}
		if rule.Monitor < 0 {
			return &ValidationError{Path: fmt.Sprintf("rules.%d.monitor", i), Err: fmt.Errorf("monitor must be >= 0")}
		}
	}
	for i, key := range c.Keys {
		if _, err := hotkeys.ParseKey(key.Key, c.ModKey); err != nil {
			return &ValidationError{Path: fmt.Sprintf("keys.%d.key", i), Err: err}
		}
		if strings.TrimSpace(key.Command) == "" {
			return &ValidationError{Path: fmt.Sprintf("keys.%d.command", i), Err: fmt.Errorf("command is required")}
		}
	}
	for i, btn := range c.Buttons {
		if !validClicks[btn.Click] {
			return &ValidationError{Path: fmt.Sprintf("buttons.%d.click", i), Err: fmt.Errorf("click must be one of: tagbar, ltsymbol, status, title, client, root")}
		}
		if btn.Button < 1 || btn.Button > 5 {
			return &ValidationError{Path: fmt.Sprintf("buttons.%d.button", i), Err: fmt.Errorf("button must be between 1 and 5")}
		}
		if _, err := hotkeys.ParseMods(btn.Mods, c.ModKey); err != nil {
			return &ValidationError{Path: fmt.Sprintf("buttons.%d.mods", i), Err: err}
		}
		if strings.TrimSpace(btn.Command) == "" {
			return &ValidationError{Path: fmt.Sprintf("buttons.%d.command", i), Err: fmt.Errorf("command is required")}
		}
	}
	if c.PollInterval <= 0 {
		return &ValidationError{Path: "poll_interval", Err: fmt.Errorf("poll_interval must be > 0")}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	return nil
}

func validateScheme(path string, s ColorScheme) error {
	for _, field := range []struct {
		name  string
		value string
	}{
		{"fg", s.Foreground},
		{"bg", s.Background},
		{"border", s.Border},
	} {
		if !hexColor.MatchString(field.value) {
			return &ValidationError{Path: path + "." + field.name, Err: fmt.Errorf("color %q must be #rrggbb", field.value)}
		}
	}
	return nil
}
