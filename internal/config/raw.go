package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawColorScheme struct {
	Foreground *string `yaml:"fg"`
	Background *string `yaml:"bg"`
	Border     *string `yaml:"border"`
}

type RawColors struct {
	Normal   *RawColorScheme `yaml:"normal"`
	Selected *RawColorScheme `yaml:"selected"`
}

// RawConfig mirrors Config with optional fields so that included files can
// be layered: a nil field leaves the lower layer untouched, a set list
// replaces the lower list wholesale.
type RawConfig struct {
	Include        IncludeList     `yaml:"include"`
	Tags           []string        `yaml:"tags"`
	ModKey         *string         `yaml:"mod_key"`
	BorderWidth    *int            `yaml:"border_width"`
	Snap           *int            `yaml:"snap"`
	ShowBar        *bool           `yaml:"show_bar"`
	TopBar         *bool           `yaml:"top_bar"`
	BarHeight      *int            `yaml:"bar_height"`
	MFact          *float64        `yaml:"mfact"`
	NMaster        *int            `yaml:"nmaster"`
	ResizeHints    *bool           `yaml:"resize_hints"`
	LockFullscreen *bool           `yaml:"lock_fullscreen"`
	Colors         *RawColors      `yaml:"colors"`
	Layouts        []string        `yaml:"layouts"`
	Rules          []Rule          `yaml:"rules"`
	Keys           []KeyBinding    `yaml:"keys"`
	ExtraKeys      []KeyBinding    `yaml:"extra_keys"`
	Buttons        []ButtonBinding `yaml:"buttons"`
	Terminal       []string        `yaml:"terminal"`
	Launcher       []string        `yaml:"launcher"`
	PollInterval   *time.Duration  `yaml:"poll_interval"`
	LogLevel       *string         `yaml:"log_level"`
	Watch          *bool           `yaml:"watch"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.Tags != nil {
		out.Tags = overlay.Tags
	}
	if overlay.ModKey != nil {
		out.ModKey = overlay.ModKey
	}
	if overlay.BorderWidth != nil {
		out.BorderWidth = overlay.BorderWidth
	}
	if overlay.Snap != nil {
		out.Snap = overlay.Snap
	}
	if overlay.ShowBar != nil {
		out.ShowBar = overlay.ShowBar
	}
	if overlay.TopBar != nil {
		out.TopBar = overlay.TopBar
	}
	if overlay.BarHeight != nil {
		out.BarHeight = overlay.BarHeight
	}
	if overlay.MFact != nil {
		out.MFact = overlay.MFact
	}
	if overlay.NMaster != nil {
		out.NMaster = overlay.NMaster
	}
	if overlay.ResizeHints != nil {
		out.ResizeHints = overlay.ResizeHints
	}
	if overlay.LockFullscreen != nil {
		out.LockFullscreen = overlay.LockFullscreen
	}
	if overlay.Colors != nil {
		if out.Colors == nil {
			out.Colors = &RawColors{}
		}
		merged := *out.Colors
		merged.Normal = mergeRawColorScheme(merged.Normal, overlay.Colors.Normal)
		merged.Selected = mergeRawColorScheme(merged.Selected, overlay.Colors.Selected)
		out.Colors = &merged
	}
	if overlay.Layouts != nil {
		out.Layouts = overlay.Layouts
	}
	if overlay.Rules != nil {
		out.Rules = overlay.Rules
	}
	if overlay.Keys != nil {
		out.Keys = overlay.Keys
	}
	// extra_keys accumulate across files.
	if overlay.ExtraKeys != nil {
		out.ExtraKeys = append(append([]KeyBinding(nil), out.ExtraKeys...), overlay.ExtraKeys...)
	}
	if overlay.Buttons != nil {
		out.Buttons = overlay.Buttons
	}
	if overlay.Terminal != nil {
		out.Terminal = overlay.Terminal
	}
	if overlay.Launcher != nil {
		out.Launcher = overlay.Launcher
	}
	if overlay.PollInterval != nil {
		out.PollInterval = overlay.PollInterval
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.Watch != nil {
		out.Watch = overlay.Watch
	}
	return out
}

func mergeRawColorScheme(base *RawColorScheme, overlay *RawColorScheme) *RawColorScheme {
	if overlay == nil {
		return base
	}
	out := RawColorScheme{}
	if base != nil {
		out = *base
	}
	if overlay.Foreground != nil {
		out.Foreground = overlay.Foreground
	}
	if overlay.Background != nil {
		out.Background = overlay.Background
	}
	if overlay.Border != nil {
		out.Border = overlay.Border
	}
	return &out
}
