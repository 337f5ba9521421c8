package wm

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/1broseidon/tagwm/internal/config"
	"github.com/1broseidon/tagwm/internal/hotkeys"
	"github.com/1broseidon/tagwm/internal/platform"
	"github.com/1broseidon/tagwm/internal/tiling"
)

// Arg is the argument of a user command. Which field is read depends on
// the command.
type Arg struct {
	Int   int
	UInt  uint32
	Float float64
	// Layout is meaningful only with HasLayout; otherwise setlayout toggles.
	Layout    tiling.Kind
	HasLayout bool
	Argv      []string
}

type argKind int

const (
	argNone argKind = iota
	argInt
	argTags
	argFloat
	argLayout
	argSpawn
)

type command struct {
	run  func(*WM, Arg)
	kind argKind
}

var commands = map[string]command{
	"view":             {(*WM).View, argTags},
	"toggleview":       {(*WM).ToggleView, argTags},
	"tag":              {(*WM).Tag, argTags},
	"toggletag":        {(*WM).ToggleTag, argTags},
	"zoom":             {(*WM).Zoom, argNone},
	"focusstack":       {(*WM).FocusStack, argInt},
	"incnmaster":       {(*WM).IncNMaster, argInt},
	"setmfact":         {(*WM).SetMFact, argFloat},
	"setlayout":        {(*WM).SetLayout, argLayout},
	"togglefloating":   {(*WM).ToggleFloating, argNone},
	"togglefullscreen": {(*WM).ToggleFullscreen, argNone},
	"togglebar":        {(*WM).ToggleBar, argNone},
	"killclient":       {(*WM).KillClient, argNone},
	"focusmon":         {(*WM).FocusMonitor, argInt},
	"tagmon":           {(*WM).TagMonitor, argInt},
	"spawn":            {(*WM).Spawn, argSpawn},
	"quit":             {(*WM).Quit, argNone},
	"movemouse":        {(*WM).MoveMouse, argNone},
	"resizemouse":      {(*WM).ResizeMouse, argNone},
}

// CommandNames lists every command a binding or remote call may name.
func CommandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseArg converts the textual argument of a binding into an Arg for the
// named command. Tag arguments are 1-based tag numbers or "all"; spawn
// accepts "terminal", "launcher", an explicit argv or a shell command.
func ParseArg(cfg *config.Config, name, raw string, argv []string) (Arg, error) {
	cmd, ok := commands[name]
	if !ok {
		return Arg{}, fmt.Errorf("unknown command %q", name)
	}
	raw = strings.TrimSpace(raw)

	switch cmd.kind {
	case argNone:
		return Arg{}, nil
	case argInt:
		if raw == "" {
			return Arg{}, fmt.Errorf("%s: integer argument required", name)
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Arg{}, fmt.Errorf("%s: invalid integer %q: %w", name, raw, err)
		}
		return Arg{Int: n}, nil
	case argTags:
		switch raw {
		case "":
			return Arg{}, nil
		case "all":
			return Arg{UInt: ^uint32(0)}, nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > len(cfg.Tags) {
			return Arg{}, fmt.Errorf("%s: tag must be 1-%d or all, got %q", name, len(cfg.Tags), raw)
		}
		return Arg{UInt: 1 << (n - 1)}, nil
	case argFloat:
		if raw == "" {
			return Arg{}, fmt.Errorf("%s: float argument required", name)
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Arg{}, fmt.Errorf("%s: invalid float %q: %w", name, raw, err)
		}
		return Arg{Float: f}, nil
	case argLayout:
		if raw == "" {
			return Arg{}, nil
		}
		k, err := tiling.ParseKind(raw)
		if err != nil {
			return Arg{}, fmt.Errorf("%s: %w", name, err)
		}
		return Arg{Layout: k, HasLayout: true}, nil
	case argSpawn:
		if len(argv) > 0 {
			return Arg{Argv: append([]string(nil), argv...)}, nil
		}
		switch raw {
		case "":
			return Arg{}, fmt.Errorf("%s: command required", name)
		case "terminal":
			return Arg{Argv: append([]string(nil), cfg.Terminal...)}, nil
		case "launcher":
			return Arg{Argv: append([]string(nil), cfg.Launcher...)}, nil
		}
		return Arg{Argv: []string{"/bin/sh", "-c", raw}}, nil
	}
	return Arg{}, nil
}

// Exec runs a named command with a textual argument, as a key binding
// would.
func (w *WM) Exec(name, raw string, argv []string) error {
	arg, err := ParseArg(w.cfg, name, raw, argv)
	if err != nil {
		return err
	}
	commands[name].run(w, arg)
	return nil
}

type binding struct {
	name string
	run  func(*WM, Arg)
	arg  Arg
}

type buttonBinding struct {
	binding
	click  string
	button uint8
	mods   uint16
	// fromClick lets a tag bar click supply the tag.
	fromClick bool
}

func (w *WM) compileBindings(cfg *config.Config) ([]binding, []buttonBinding, *hotkeys.Table, error) {
	keys := make([]binding, 0, len(cfg.Keys))
	combos := make([]hotkeys.Combo, 0, len(cfg.Keys))
	for i, kb := range cfg.Keys {
		combo, err := hotkeys.ParseKey(kb.Key, cfg.ModKey)
		if err != nil {
			return nil, nil, nil, &config.ValidationError{Path: fmt.Sprintf("keys.%d.key", i), Err: err}
		}
		arg, err := ParseArg(cfg, kb.Command, kb.Arg, kb.Args)
		if err != nil {
			return nil, nil, nil, &config.ValidationError{Path: fmt.Sprintf("keys.%d", i), Err: err}
		}
		keys = append(keys, binding{name: kb.Command, run: commands[kb.Command].run, arg: arg})
		combos = append(combos, combo)
	}

	buttons := make([]buttonBinding, 0, len(cfg.Buttons))
	for i, bb := range cfg.Buttons {
		mods, err := hotkeys.ParseMods(bb.Mods, cfg.ModKey)
		if err != nil {
			return nil, nil, nil, &config.ValidationError{Path: fmt.Sprintf("buttons.%d.mods", i), Err: err}
		}
		arg, err := ParseArg(cfg, bb.Command, bb.Arg, bb.Args)
		if err != nil {
			return nil, nil, nil, &config.ValidationError{Path: fmt.Sprintf("buttons.%d", i), Err: err}
		}
		buttons = append(buttons, buttonBinding{
			binding:   binding{name: bb.Command, run: commands[bb.Command].run, arg: arg},
			click:     bb.Click,
			button:    uint8(bb.Button),
			mods:      mods,
			fromClick: bb.Click == config.ClickTagBar && strings.TrimSpace(bb.Arg) == "",
		})
	}
	return keys, buttons, hotkeys.NewTable(combos), nil
}

func (w *WM) grabKeys() {
	combos := w.keyTable.Combos()
	grabs := make([]platform.KeyCombo, 0, len(combos))
	for _, c := range combos {
		grabs = append(grabs, platform.KeyCombo{Mods: c.Mods, Key: c.Key})
	}
	w.backend.GrabKeys(grabs)
}

// grabButtons grabs the client-window bindings on c. An unfocused client
// additionally grabs every button so a click focuses it.
func (w *WM) grabButtons(c *Client, focused bool) {
	var grabs []platform.ButtonCombo
	for _, b := range w.buttons {
		if b.click == config.ClickClientWin {
			grabs = append(grabs, platform.ButtonCombo{Mods: b.mods, Button: b.button})
		}
	}
	w.backend.GrabButtons(c.Win, focused, grabs)
}

// View switches the selected monitor to the tags in a.UInt. An empty mask
// swaps back to the previous tagset.
func (w *WM) View(a Arg) {
	m := w.selmon
	mask := a.UInt & w.tagMask()
	if mask == m.TagSet[m.SelTags] {
		return
	}
	m.SelTags ^= 1
	if mask != 0 {
		m.TagSet[m.SelTags] = mask
	}
	w.focus(nil)
	w.arrange(m)
}

// ToggleView adds or removes tags from the active tagset; the last tag is
// never removed.
func (w *WM) ToggleView(a Arg) {
	m := w.selmon
	newTags := m.TagSet[m.SelTags] ^ (a.UInt & w.tagMask())
	if newTags == 0 {
		return
	}
	m.TagSet[m.SelTags] = newTags
	w.focus(nil)
	w.arrange(m)
}

// Tag moves the selected client to the tags in a.UInt.
func (w *WM) Tag(a Arg) {
	sel := w.Selected()
	mask := a.UInt & w.tagMask()
	if sel == nil || mask == 0 {
		return
	}
	sel.Tags = mask
	w.focus(nil)
	w.arrange(w.selmon)
}

// ToggleTag flips tags of the selected client, keeping at least one.
func (w *WM) ToggleTag(a Arg) {
	sel := w.Selected()
	if sel == nil {
		return
	}
	newTags := sel.Tags ^ (a.UInt & w.tagMask())
	if newTags == 0 {
		return
	}
	sel.Tags = newTags
	w.focus(nil)
	w.arrange(w.selmon)
}

// Zoom swaps the selected tiled client with the master, or promotes the
// next tiled client when the master is already selected.
func (w *WM) Zoom(Arg) {
	m := w.selmon
	c := w.Selected()
	if c == nil || c.IsFloating || !m.Layout().Arranges() {
		return
	}
	if first, _ := w.nextTiled(m, 0); c == first {
		next, _ := w.nextTiled(m, indexOf(m.clients, c.ID)+1)
		if next == nil {
			return
		}
		c = next
	}
	w.pop(c)
}

func (w *WM) pop(c *Client) {
	w.detach(c)
	w.attach(c)
	w.focus(c)
	w.arrange(c.Mon)
}

// FocusStack moves focus to the next (a.Int > 0) or previous visible
// client in list order, wrapping around.
func (w *WM) FocusStack(a Arg) {
	m := w.selmon
	sel := w.Selected()
	if sel == nil || (sel.IsFullscreen && w.cfg.LockFullscreen) {
		return
	}
	pos := indexOf(m.clients, sel.ID)
	var target *Client
	if a.Int > 0 {
		for i := 1; i <= len(m.clients) && target == nil; i++ {
			c := w.clients[m.clients[(pos+i)%len(m.clients)]]
			if c != nil && w.isVisible(c) {
				target = c
			}
		}
	} else {
		n := len(m.clients)
		for i := 1; i <= n && target == nil; i++ {
			c := w.clients[m.clients[(pos-i+n)%n]]
			if c != nil && w.isVisible(c) {
				target = c
			}
		}
	}
	if target != nil {
		w.focus(target)
		w.restack(m)
	}
}

// IncNMaster changes the master count, never below zero.
func (w *WM) IncNMaster(a Arg) {
	m := w.selmon
	m.NMaster = max(m.NMaster+a.Int, 0)
	w.arrange(m)
}

// SetMFact adjusts the master fraction: values below 1 are relative,
// values of 1 and above set f-1 absolutely. Results outside 0.05-0.95 are
// ignored.
func (w *WM) SetMFact(a Arg) {
	m := w.selmon
	if !m.Layout().Arranges() {
		return
	}
	f := a.Float + m.MFact
	if a.Float >= 1.0 {
		f = a.Float - 1.0
	}
	if f < 0.05 || f > 0.95 {
		return
	}
	m.MFact = f
	w.arrange(m)
}

// SetLayout selects a layout, or toggles to the previous one when none is
// given or it is already the other slot's.
func (w *WM) SetLayout(a Arg) {
	m := w.selmon
	if !a.HasLayout || a.Layout != m.Layout() {
		m.SelLayout ^= 1
	}
	if a.HasLayout {
		m.Layouts[m.SelLayout] = a.Layout
	}
	m.Symbol = truncateBytes(m.Layout().Symbol(), MaxSymbolBytes)
	if m.Sel != 0 {
		w.arrange(m)
	}
}

// ToggleFloating flips the selected client between tiled and floating.
// Fixed-size clients stay floating.
func (w *WM) ToggleFloating(Arg) {
	sel := w.Selected()
	if sel == nil || sel.IsFullscreen {
		return
	}
	sel.IsFloating = !sel.IsFloating || sel.IsFixed
	if sel.IsFloating {
		w.resize(sel, sel.X, sel.Y, sel.W, sel.H, false)
	}
	w.arrange(w.selmon)
}

func (w *WM) ToggleFullscreen(Arg) {
	if sel := w.Selected(); sel != nil {
		w.setFullscreen(sel, !sel.IsFullscreen)
	}
}

func (w *WM) ToggleBar(Arg) {
	m := w.selmon
	m.ShowBar = !m.ShowBar
	w.updateBarPos(m)
	if m.BarWin != 0 {
		w.backend.MoveBar(m.BarWin, w.barRect(m))
	}
	w.arrange(m)
}

// KillClient asks the selected client to close, killing its connection
// when it does not speak WM_DELETE_WINDOW.
func (w *WM) KillClient(Arg) {
	sel := w.Selected()
	if sel == nil {
		return
	}
	if !w.backend.Close(sel.Win) {
		w.backend.Kill(sel.Win)
	}
}

// FocusMonitor moves focus to the next or previous monitor.
func (w *WM) FocusMonitor(a Arg) {
	if len(w.mons) <= 1 {
		return
	}
	m := w.dirToMonitor(a.Int)
	if m == w.selmon {
		return
	}
	w.unfocus(w.Selected(), false)
	w.selmon = m
	w.focus(nil)
}

// TagMonitor sends the selected client to the next or previous monitor.
func (w *WM) TagMonitor(a Arg) {
	sel := w.Selected()
	if sel == nil || len(w.mons) <= 1 {
		return
	}
	w.sendToMonitor(sel, w.dirToMonitor(a.Int))
}

// Spawn starts a.Argv detached from the window manager. TAGWM_MONITOR
// carries the selected monitor for launchers that place themselves.
func (w *WM) Spawn(a Arg) {
	if len(a.Argv) == 0 {
		return
	}
	env := append(os.Environ(), "TAGWM_MONITOR="+strconv.Itoa(w.selmon.Num))
	if err := w.spawn(a.Argv, env); err != nil {
		w.logger.Error("spawn failed", "argv", a.Argv, "error", err)
	}
}

// Quit stops the dispatcher after the current iteration.
func (w *WM) Quit(Arg) {
	w.running = false
}
