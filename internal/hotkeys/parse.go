package hotkeys

import (
	"fmt"
	"strings"

	"github.com/1broseidon/tagwm/internal/platform"
)

// ModPlaceholder in a key spec stands for the configured mod_key.
const ModPlaceholder = "mod"

// Combo is a parsed key or button chord.
type Combo struct {
	Mods uint16
	Key  string
}

var modifierNames = map[string]uint16{
	"shift":   platform.ModShift,
	"lock":    platform.ModLock,
	"control": platform.ModControl,
	"ctrl":    platform.ModControl,
	"mod1":    platform.Mod1,
	"alt":     platform.Mod1,
	"mod2":    platform.Mod2,
	"mod3":    platform.Mod3,
	"mod4":    platform.Mod4,
	"super":   platform.Mod4,
	"mod5":    platform.Mod5,
}

// ParseModifier resolves a single modifier name.
func ParseModifier(name string) (uint16, error) {
	mask, ok := modifierNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown modifier %q", name)
	}
	return mask, nil
}

// ParseMods parses a dash separated modifier list such as "mod-shift".
// An empty string means no modifiers.
func ParseMods(spec, modKey string) (uint16, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0, nil
	}
	var mods uint16
	for _, part := range strings.Split(spec, "-") {
		mask, err := resolveModifier(part, modKey)
		if err != nil {
			return 0, err
		}
		mods |= mask
	}
	return mods, nil
}

// ParseKey parses a key spec of the form '[Mod[-Mod[...]]]-KEY', the same
// shape xgbutil's keybind.ParseString accepts, e.g. "mod-shift-Return".
// KEY keeps its case since keysym names are case sensitive. Unlike
// ParseString it needs no display connection, so configs validate offline.
func ParseKey(spec, modKey string) (Combo, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Combo{}, fmt.Errorf("key is empty")
	}

	// The minus key is spelled "minus".
	parts := strings.Split(spec, "-")
	key := parts[len(parts)-1]
	if key == "" {
		return Combo{}, fmt.Errorf("key spec %q has no key", spec)
	}

	var mods uint16
	for _, part := range parts[:len(parts)-1] {
		mask, err := resolveModifier(part, modKey)
		if err != nil {
			return Combo{}, fmt.Errorf("key spec %q: %w", spec, err)
		}
		mods |= mask
	}
	return Combo{Mods: mods, Key: key}, nil
}

func resolveModifier(part, modKey string) (uint16, error) {
	if strings.EqualFold(strings.TrimSpace(part), ModPlaceholder) {
		if modKey == "" {
			return 0, fmt.Errorf("%q used but mod_key is not set", ModPlaceholder)
		}
		return ParseModifier(modKey)
	}
	return ParseModifier(part)
}

// String renders a combo back into spec form.
func (c Combo) String() string {
	var parts []string
	for _, m := range []struct {
		mask uint16
		name string
	}{
		{platform.ModControl, "control"},
		{platform.ModShift, "shift"},
		{platform.Mod1, "mod1"},
		{platform.Mod2, "mod2"},
		{platform.Mod3, "mod3"},
		{platform.Mod4, "mod4"},
		{platform.Mod5, "mod5"},
		{platform.ModLock, "lock"},
	} {
		if c.Mods&m.mask != 0 {
			parts = append(parts, m.name)
		}
	}
	parts = append(parts, c.Key)
	return strings.Join(parts, "-")
}
