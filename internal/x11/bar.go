package x11

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/1broseidon/tagwm/internal/tiling"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xgraphics"
	"github.com/BurntSushi/xgbutil/xwindow"
	"github.com/mattn/go-runewidth"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var face = basicfont.Face7x13

// Scheme is a colour set as 0xRRGGBB pixels.
type Scheme struct {
	Foreground uint32
	Background uint32
	Border     uint32
}

type appearance struct {
	normal   Scheme
	selected Scheme
}

// ParseColor parses a #rrggbb colour into a TrueColor pixel.
func ParseColor(s string) (uint32, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || len(hex) != 6 {
		return 0, fmt.Errorf("invalid colour %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return uint32(v), nil
}

// SetSchemes replaces the colour schemes used for borders and bars.
func (c *Connection) SetSchemes(normal, selected Scheme) {
	c.look = appearance{normal: normal, selected: selected}
}

// Scheme returns the normal or selected scheme.
func (c *Connection) Scheme(selected bool) Scheme {
	if selected {
		return c.look.selected
	}
	return c.look.normal
}

// FontHeight is the pixel height of the bar font.
func (c *Connection) FontHeight() int {
	return face.Metrics().Height.Ceil()
}

// TextWidth is the width of text in the bar font, without padding.
func (c *Connection) TextWidth(text string) int {
	return runewidth.StringWidth(text) * face.Advance
}

type barSurface struct {
	img    *xgraphics.Image
	width  int
	height int
}

// CreateBar creates an override-redirect bar window and maps it.
func (c *Connection) CreateBar(r tiling.Rect) (xproto.Window, error) {
	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate bar window: %w", err)
	}
	err = win.CreateChecked(c.Root, r.X, r.Y, r.Width, r.Height,
		xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
		c.look.normal.Background, 1, xproto.EventMaskButtonPress|xproto.EventMaskExposure)
	if err != nil {
		return 0, fmt.Errorf("failed to create bar window: %w", err)
	}
	if err := icccm.WmClassSet(c.XUtil, win.Id, &icccm.WmClass{Instance: Name, Class: Name}); err != nil {
		c.logger.Debug("failed to set bar WM_CLASS", "error", err)
	}
	win.Map()
	c.Raise(win.Id)
	c.bars[win.Id] = &barSurface{}
	return win.Id, nil
}

func (c *Connection) MoveBar(win xproto.Window, r tiling.Rect) {
	xwindow.New(c.XUtil, win).MoveResize(r.X, r.Y, r.Width, r.Height)
}

func (c *Connection) DestroyBar(win xproto.Window) {
	if s, ok := c.bars[win]; ok && s.img != nil {
		s.img.Destroy()
	}
	delete(c.bars, win)
	xproto.DestroyWindow(c.XUtil.Conn(), win)
}

// Canvas paints one bar. Nothing reaches the screen before Flush.
type Canvas struct {
	conn   *Connection
	win    xproto.Window
	img    *xgraphics.Image
	height int
}

// Canvas returns a canvas covering the bar window at the given size.
func (c *Connection) Canvas(win xproto.Window, width, height int) (*Canvas, error) {
	s, ok := c.bars[win]
	if !ok {
		return nil, fmt.Errorf("unknown bar window %d", win)
	}
	if s.img == nil || s.width != width || s.height != height {
		if s.img != nil {
			s.img.Destroy()
		}
		s.img = xgraphics.New(c.XUtil, image.Rect(0, 0, width, height))
		if err := s.img.XSurfaceSet(win); err != nil {
			s.img = nil
			return nil, fmt.Errorf("failed to create bar surface: %w", err)
		}
		s.width, s.height = width, height
	}
	return &Canvas{conn: c, win: win, img: s.img, height: height}, nil
}

func bgra(pixel uint32) xgraphics.BGRA {
	return xgraphics.BGRA{B: uint8(pixel), G: uint8(pixel >> 8), R: uint8(pixel >> 16), A: 0xff}
}

// Rect fills or outlines a rectangle.
func (cv *Canvas) Rect(x, y, w, h int, pixel uint32, filled bool) {
	col := bgra(pixel)
	for py := y; py < y+h; py++ {
		for px := x; px < x+w; px++ {
			if filled || py == y || py == y+h-1 || px == x || px == x+w-1 {
				cv.img.SetBGRA(px, py, col)
			}
		}
	}
}

// Text fills a cell of width w and draws text into it after pad pixels,
// truncating with an ellipsis when it does not fit. It returns the x
// coordinate after the cell.
func (cv *Canvas) Text(x, w, pad int, text string, s Scheme, invert bool) int {
	fg, bg := s.Foreground, s.Background
	if invert {
		fg, bg = bg, fg
	}
	cv.Rect(x, 0, w, cv.height, bg, true)
	if w <= 2*pad {
		return x + w
	}

	cells := (w - 2*pad) / face.Advance
	if runewidth.StringWidth(text) > cells {
		text = runewidth.Truncate(text, cells, "...")
	}
	ascent := face.Metrics().Ascent.Ceil()
	d := font.Drawer{
		Dst:  cv.img,
		Src:  image.NewUniform(color.RGBA{R: uint8(fg >> 16), G: uint8(fg >> 8), B: uint8(fg), A: 0xff}),
		Face: face,
		Dot:  fixed.P(x+pad, (cv.height-cv.conn.FontHeight())/2+ascent),
	}
	d.DrawString(text)
	return x + w
}

// Flush copies the canvas to the bar window.
func (cv *Canvas) Flush() {
	cv.img.XDraw()
	cv.img.XPaint(cv.win)
}
