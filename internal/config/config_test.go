package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.TagMask() != 0x1ff {
		t.Fatalf("expected tag mask 0x1ff, got %#x", cfg.TagMask())
	}
	if got := cfg.DefaultLayout().String(); got != "tile" {
		t.Fatalf("expected default layout tile, got %q", got)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), res.Config); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files, got %v", res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.MFact != 0.55 || res.Config.NMaster != 1 {
		t.Fatalf("expected default master settings, got mfact=%v nmaster=%d", res.Config.MFact, res.Config.NMaster)
	}
}

func TestLoadFromPath_OverridesScalars(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"mod_key: mod4",
		"border_width: 2",
		"mfact: 0.6",
		"poll_interval: 25ms",
		"colors:",
		"  selected:",
		"    border: \"#ff0000\"",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.ModKey != "mod4" || cfg.BorderWidth != 2 || cfg.MFact != 0.6 {
		t.Fatalf("unexpected scalars: %+v", cfg)
	}
	if cfg.PollInterval != 25*time.Millisecond {
		t.Fatalf("expected 25ms poll interval, got %v", cfg.PollInterval)
	}
	want := ColorScheme{Foreground: "#eeeeee", Background: "#005577", Border: "#ff0000"}
	if diff := cmp.Diff(want, cfg.Colors.Selected); diff != "" {
		t.Fatalf("selected scheme mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFromPath_TagsRegenerateDefaultKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "tags: [web, code, chat]\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var views int
	for _, k := range res.Config.Keys {
		if k.Command == "view" && k.Arg != "" && k.Arg != "all" {
			views++
		}
	}
	if views != 3 {
		t.Fatalf("expected 3 view bindings, got %d", views)
	}
	for _, r := range res.Config.Rules {
		if r.Class == "Firefox" {
			t.Fatalf("expected rule on tag 9 to be dropped with 3 tags")
		}
	}
}

func TestLoadFromPath_ExtraKeysAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"extra_keys:",
		"  - key: mod-shift-x",
		"    command: spawn",
		"    args: [xlock]",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	keys := res.Config.Keys
	last := keys[len(keys)-1]
	if last.Key != "mod-shift-x" || last.Command != "spawn" {
		t.Fatalf("expected extra key last, got %+v", last)
	}
	if len(keys) != len(DefaultConfig().Keys)+1 {
		t.Fatalf("expected defaults plus one key, got %d", len(keys))
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "unknown_key: 1\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown_key") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSourceContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "nmaster: 2\nmfact: 0.99\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	if verr.Path != "mfact" {
		t.Fatalf("expected path mfact, got %q", verr.Path)
	}
	if verr.Source.Line != 2 {
		t.Fatalf("expected line 2, got %#v", verr.Source)
	}
	if !strings.HasPrefix(err.Error(), path+":2:") {
		t.Fatalf("expected file:line prefix, got %v", err)
	}
}

func TestLoadFromPath_NestedValidationErrorFindsListEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"keys:",
		"  - key: mod-j",
		"    command: focusstack",
		"  - key: hyper-k",
		"    command: focusstack",
		"",
	}, "\n"))

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "keys.1.key" || verr.Source.Line != 4 {
		t.Fatalf("expected keys.1.key at line 4, got %q %#v", verr.Path, verr.Source)
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()

	configD := filepath.Join(dir, "config.d")
	if err := os.MkdirAll(configD, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(configD, "10-base.yaml"), "snap: 5\nnmaster: 2\n")
	writeFile(t, filepath.Join(configD, "20-override.yaml"), "snap: 6\n")
	writeFile(t, filepath.Join(configD, "README.txt"), "ignored\n")

	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "include:\n  - config.d\nsnap: 7\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Snap != 7 {
		t.Fatalf("expected snap 7, got %d", res.Config.Snap)
	}
	if res.Config.NMaster != 2 {
		t.Fatalf("expected nmaster 2 from include, got %d", res.Config.NMaster)
	}
	if len(res.Files) != 3 || filepath.Base(res.Files[2]) != "config.yaml" {
		t.Fatalf("expected includes then main file, got %v", res.Files)
	}
}

func TestLoadFromPath_IncludeMissingPathHasContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "include:\n  - missing.yaml\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "include") || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected include error, got %v", err)
	}
	if !strings.Contains(err.Error(), path+":") {
		t.Fatalf("expected error to include file:line:col prefix, got %v", err)
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	writeFile(t, a, "include: b.yaml\n")
	writeFile(t, b, "include: a.yaml\n")

	_, err := LoadFromPath(a)
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestExplain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "border_width: 3\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	tests := []struct {
		path     string
		want     any
		wantKind SourceKind
	}{
		{path: "border_width", want: 3, wantKind: SourceFile},
		{path: "mod_key", want: "mod1", wantKind: SourceDefault},
		{path: "colors.normal.bg", want: "#222222", wantKind: SourceDefault},
		{path: "layouts.2", want: "monocle", wantKind: SourceDefault},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			val, src, err := Explain(res, tt.path)
			if err != nil {
				t.Fatalf("explain: %v", err)
			}
			if val != tt.want {
				t.Fatalf("expected %#v, got %#v", tt.want, val)
			}
			if src.Kind != tt.wantKind {
				t.Fatalf("expected source %q, got %#v", tt.wantKind, src)
			}
		})
	}

	if _, _, err := Explain(res, "layouts.99"); err == nil {
		t.Fatalf("expected error for out of range index")
	}
	if _, _, err := Explain(res, "nope"); err == nil {
		t.Fatalf("expected error for unknown path")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		wantPath string
	}{
		{name: "no tags", mutate: func(c *Config) { c.Tags = nil }, wantPath: "tags"},
		{name: "blank tag", mutate: func(c *Config) { c.Tags[1] = " " }, wantPath: "tags.1"},
		{name: "bad mod key", mutate: func(c *Config) { c.ModKey = "hyper" }, wantPath: "mod_key"},
		{name: "mfact low", mutate: func(c *Config) { c.MFact = 0.01 }, wantPath: "mfact"},
		{name: "negative nmaster", mutate: func(c *Config) { c.NMaster = -1 }, wantPath: "nmaster"},
		{name: "bad color", mutate: func(c *Config) { c.Colors.Normal.Border = "red" }, wantPath: "colors.normal.border"},
		{name: "unknown layout", mutate: func(c *Config) { c.Layouts = []string{"spiral"} }, wantPath: "layouts.0"},
		{name: "rule tag out of range", mutate: func(c *Config) { c.Rules = []Rule{{Tags: []int{10}}} }, wantPath: "rules.0.tags"},
		{name: "button out of range", mutate: func(c *Config) { c.Buttons[0].Button = 9 }, wantPath: "buttons.0.button"},
		{name: "bad click", mutate: func(c *Config) { c.Buttons[0].Click = "menu" }, wantPath: "buttons.0.click"},
		{name: "zero poll", mutate: func(c *Config) { c.PollInterval = 0 }, wantPath: "poll_interval"},
		{name: "log level", mutate: func(c *Config) { c.LogLevel = "trace" }, wantPath: "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.wantPath {
				t.Fatalf("expected path %q, got %q (%v)", tt.wantPath, verr.Path, err)
			}
		})
	}
}

func TestRuleTagMask(t *testing.T) {
	r := Rule{Tags: []int{1, 3, 9, 40}}
	if got := r.TagMask(); got != 0x105 {
		t.Fatalf("expected 0x105, got %#x", got)
	}
}

func TestSaveToRoundTripsThroughLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.NMaster = 3
	cfg.Rules = append(cfg.Rules, Rule{Class: "mpv", Floating: true, Monitor: 2})
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(cfg, res.Config); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultConfigPathHonoursXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	got, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if want := filepath.Join(dir, "tagwm", "config.yaml"); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
