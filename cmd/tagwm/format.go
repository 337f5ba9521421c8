package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/1broseidon/tagwm/internal/ipc"
)

const defaultWidth = 100

// outputWidth is the terminal width of f, or defaultWidth when f is not a
// terminal.
func outputWidth(f *os.File) int {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return defaultWidth
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

// tagLabels renders the tag names selected by mask, e.g. "1,3".
func tagLabels(mask uint32, names []string) string {
	var out []string
	for i, name := range names {
		if mask&(1<<uint(i)) != 0 {
			out = append(out, name)
		}
	}
	if len(out) == 0 {
		return "-"
	}
	return strings.Join(out, ",")
}

func clientFlags(c ipc.ClientInfo) string {
	var b strings.Builder
	for _, f := range []struct {
		on   bool
		mark byte
	}{{c.Floating, 'F'}, {c.Fullscreen, 'S'}, {c.Urgent, 'U'}, {c.Fixed, 'X'}} {
		if f.on {
			b.WriteByte(f.mark)
		}
	}
	if b.Len() == 0 {
		return "-"
	}
	return b.String()
}

// formatState renders the state as one header per monitor followed by a
// client table whose title column is truncated to fit width.
func formatState(st *ipc.StateData, width int) string {
	var b strings.Builder
	if st.Status != "" {
		fmt.Fprintf(&b, "status: %s\n", st.Status)
	}
	for _, m := range st.Monitors {
		sel := " "
		if m.ID == st.SelectedMonitor {
			sel = "*"
		}
		fmt.Fprintf(&b, "%smonitor %d  %dx%d+%d+%d  tags %s  %s  mfact %.2f  nmaster %d\n",
			sel, m.ID, m.Screen.Width, m.Screen.Height, m.Screen.X, m.Screen.Y,
			tagLabels(m.TagSet, st.Tags), m.Symbol, m.MFact, m.NMaster)
		if len(m.Clients) == 0 {
			b.WriteString("   (no clients)\n")
			continue
		}

		const fixed = 3 + 10 + 2 + 10 + 2 + 22 + 2 + 5 + 2
		titleWidth := max(width-fixed, 10)
		fmt.Fprintf(&b, "   %-10s  %-10s  %-22s  %-5s  %s\n", "WINDOW", "TAGS", "GEOMETRY", "FLAGS", "TITLE")
		for _, c := range m.Clients {
			cur := " "
			if c.Window == m.Selected {
				cur = ">"
			}
			geom := fmt.Sprintf("%dx%d+%d+%d", c.Geometry.Width, c.Geometry.Height, c.Geometry.X, c.Geometry.Y)
			fmt.Fprintf(&b, " %s %-10s  %-10s  %-22s  %-5s  %s\n",
				cur, fmt.Sprintf("0x%x", c.Window), tagLabels(c.Tags, st.Tags), geom, clientFlags(c),
				runewidth.Truncate(c.Name, titleWidth, "…"))
		}
	}
	return b.String()
}
