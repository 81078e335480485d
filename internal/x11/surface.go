package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
)

// fontNames are tried in order; every X server ships at least one of them.
var fontNames = []string{"fixed", "9x15", "8x13", "6x13"}

// maxImageText is the longest string a single ImageText8 request can carry.
const maxImageText = 255

// Surface paints into an off-screen pixmap with a core-font GC and copies the
// pixmap to the window on Present. Text uses the server-side fixed-width font,
// so no font rendering happens client side.
type Surface struct {
	conn   *Connection
	window xproto.Window
	depth  byte

	pixmap xproto.Pixmap
	gc     xproto.Gcontext
	font   xproto.Font

	width      int
	height     int
	charWidth  int
	ascent     int
	lineHeight int
	background uint32
}

// NewSurface opens a font, creates the GC and a back buffer of the given size
// for window.
func (c *Connection) NewSurface(window xproto.Window, width, height int) (*Surface, error) {
	conn := c.XUtil.Conn()
	s := &Surface{
		conn:   c,
		window: window,
		depth:  c.XUtil.Screen().RootDepth,
	}

	font, err := xproto.NewFontId(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate font id: %w", err)
	}
	opened := false
	for _, name := range fontNames {
		if err = xproto.OpenFontChecked(conn, font, uint16(len(name)), name).Check(); err == nil {
			opened = true
			break
		}
	}
	if !opened {
		return nil, fmt.Errorf("failed to open any core font: %w", err)
	}
	s.font = font

	info, err := xproto.QueryFont(conn, xproto.Fontable(font)).Reply()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to query font: %w", err)
	}
	s.charWidth = maxInt(1, int(info.MaxBounds.CharacterWidth))
	s.ascent = int(info.FontAscent)
	s.lineHeight = maxInt(1, int(info.FontAscent)+int(info.FontDescent)+2)

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to allocate gc id: %w", err)
	}
	err = xproto.CreateGCChecked(
		conn,
		gc,
		xproto.Drawable(window),
		xproto.GcForeground|xproto.GcBackground|xproto.GcFont|xproto.GcGraphicsExposures,
		[]uint32{
			0xffffff,     // foreground
			0,            // background
			uint32(font), // font
			0,            // graphics_exposures=false
		},
	).Check()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create gc: %w", err)
	}
	s.gc = gc

	if err := s.Resize(width, height); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Resize replaces the back buffer with one of the new size.
func (s *Surface) Resize(width, height int) error {
	width, height = maxInt(1, width), maxInt(1, height)
	if s.pixmap != 0 && width == s.width && height == s.height {
		return nil
	}

	conn := s.conn.XUtil.Conn()
	pixmap, err := xproto.NewPixmapId(conn)
	if err != nil {
		return fmt.Errorf("failed to allocate pixmap id: %w", err)
	}
	err = xproto.CreatePixmapChecked(conn, s.depth, pixmap, xproto.Drawable(s.window), uint16(width), uint16(height)).Check()
	if err != nil {
		return fmt.Errorf("failed to create %dx%d back buffer: %w", width, height, err)
	}

	if s.pixmap != 0 {
		xproto.FreePixmap(conn, s.pixmap)
	}
	s.pixmap = pixmap
	s.width = width
	s.height = height
	return nil
}

// Size returns the back buffer size.
func (s *Surface) Size() (width, height int) {
	return s.width, s.height
}

// Clear fills the whole buffer with color and makes it the text background.
func (s *Surface) Clear(color uint32) {
	s.background = color
	s.FillRect(0, 0, s.width, s.height, color)
}

// FillRect fills a rectangle with color.
func (s *Surface) FillRect(x, y, width, height int, color uint32) {
	if width <= 0 || height <= 0 {
		return
	}
	conn := s.conn.XUtil.Conn()
	xproto.ChangeGC(conn, s.gc, xproto.GcForeground, []uint32{color})
	xproto.PolyFillRectangle(conn, xproto.Drawable(s.pixmap), s.gc, []xproto.Rectangle{{
		X:      int16(x),
		Y:      int16(y),
		Width:  uint16(width),
		Height: uint16(height),
	}})
}

// Text draws s with the top of the line box at y.
func (s *Surface) Text(x, y int, text string, color uint32) {
	line := latin1(text)
	if line == "" {
		return
	}
	conn := s.conn.XUtil.Conn()
	xproto.ChangeGC(conn, s.gc, xproto.GcForeground|xproto.GcBackground, []uint32{color, s.background})
	xproto.ImageText8(
		conn,
		byte(len(line)),
		xproto.Drawable(s.pixmap),
		s.gc,
		int16(x),
		int16(y+s.ascent),
		line,
	)
}

// TextWidth returns the width of text in pixels.
func (s *Surface) TextWidth(text string) int {
	return len(latin1(text)) * s.charWidth
}

// LineHeight returns the height of one text line in pixels.
func (s *Surface) LineHeight() int {
	return s.lineHeight
}

// Present copies the back buffer onto the window.
func (s *Surface) Present() error {
	if s.pixmap == 0 {
		return fmt.Errorf("surface has no back buffer")
	}
	return xproto.CopyAreaChecked(
		s.conn.XUtil.Conn(),
		xproto.Drawable(s.pixmap),
		xproto.Drawable(s.window),
		s.gc,
		0, 0,
		0, 0,
		uint16(s.width), uint16(s.height),
	).Check()
}

// Close frees the server-side resources.
func (s *Surface) Close() {
	conn := s.conn.XUtil.Conn()
	if s.pixmap != 0 {
		xproto.FreePixmap(conn, s.pixmap)
	}
	if s.gc != 0 {
		xproto.FreeGC(conn, s.gc)
	}
	if s.font != 0 {
		xproto.CloseFont(conn, s.font)
	}
	s.pixmap = 0
	s.gc = 0
	s.font = 0
}

// latin1 converts text to the single-byte encoding core fonts use. Runes
// outside Latin-1 become '?' and the result is capped at one request.
func latin1(text string) string {
	var b strings.Builder
	for _, r := range text {
		if b.Len() >= maxImageText {
			break
		}
		if r > 0xff {
			r = '?'
		}
		b.WriteByte(byte(r))
	}
	return b.String()
}
