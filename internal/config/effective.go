package config

import (
	"fmt"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig layers raw settings over DefaultConfig. The default
// tag key bindings follow the configured tag count unless keys are given.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.Tags != nil {
		cfg.Tags = raw.Tags
		cfg.Keys = defaultKeys(len(cfg.Tags))
		cfg.Rules = rulesWithinTags(cfg.Rules, len(cfg.Tags))
	}
	if raw.ModKey != nil {
		cfg.ModKey = *raw.ModKey
	}
	if raw.BorderWidth != nil {
		cfg.BorderWidth = *raw.BorderWidth
	}
	if raw.Snap != nil {
		cfg.Snap = *raw.Snap
	}
	if raw.ShowBar != nil {
		cfg.ShowBar = *raw.ShowBar
	}
	if raw.TopBar != nil {
		cfg.TopBar = *raw.TopBar
	}
	if raw.BarHeight != nil {
		cfg.BarHeight = *raw.BarHeight
	}
	if raw.MFact != nil {
		cfg.MFact = *raw.MFact
	}
	if raw.NMaster != nil {
		cfg.NMaster = *raw.NMaster
	}
	if raw.ResizeHints != nil {
		cfg.ResizeHints = *raw.ResizeHints
	}
	if raw.LockFullscreen != nil {
		cfg.LockFullscreen = *raw.LockFullscreen
	}
	if raw.Colors != nil {
		applyColorScheme(&cfg.Colors.Normal, raw.Colors.Normal)
		applyColorScheme(&cfg.Colors.Selected, raw.Colors.Selected)
	}
	if raw.Layouts != nil {
		cfg.Layouts = raw.Layouts
	}
	if raw.Rules != nil {
		cfg.Rules = raw.Rules
	}
	if raw.Keys != nil {
		cfg.Keys = raw.Keys
	}
	cfg.Keys = append(cfg.Keys, raw.ExtraKeys...)
	if raw.Buttons != nil {
		cfg.Buttons = raw.Buttons
	}
	if raw.Terminal != nil {
		cfg.Terminal = raw.Terminal
	}
	if raw.Launcher != nil {
		cfg.Launcher = raw.Launcher
	}
	if raw.PollInterval != nil {
		cfg.PollInterval = *raw.PollInterval
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if raw.Watch != nil {
		cfg.Watch = *raw.Watch
	}

	if len(cfg.Terminal) == 0 {
		return nil, &ValidationError{Path: "terminal", Err: fmt.Errorf("terminal must not be empty")}
	}
	return cfg, nil
}

// rulesWithinTags drops default rules that name tags a shorter tag list no
// longer has.
func rulesWithinTags(rules []Rule, tags int) []Rule {
	out := rules[:0:0]
	for _, r := range rules {
		ok := true
		for _, t := range r.Tags {
			if t > tags {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, r)
		}
	}
	return out
}

func applyColorScheme(dst *ColorScheme, patch *RawColorScheme) {
	if patch == nil {
		return
	}
	if patch.Foreground != nil {
		dst.Foreground = *patch.Foreground
	}
	if patch.Background != nil {
		dst.Background = *patch.Background
	}
	if patch.Border != nil {
		dst.Border = *patch.Border
	}
}
