package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/motif"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// HostWindowOptions describe the widget window.
type HostWindowOptions struct {
	Title      string
	Class      string
	X, Y       int
	Width      int
	Height     int
	Background uint32
}

// HostWindow is the borderless widget window pinned to every desktop.
type HostWindow struct {
	conn *Connection
	win  *xwindow.Window

	width  int
	height int
}

// hostEventMask lists the events the widget reacts to.
const hostEventMask = xproto.EventMaskExposure |
	xproto.EventMaskStructureNotify |
	xproto.EventMaskButtonPress |
	xproto.EventMaskPointerMotion |
	xproto.EventMaskKeyPress

// CreateHostWindow creates and maps the widget window. The window is a
// utility window without decorations that skips the taskbar and pager and
// starts below every other client.
func (c *Connection) CreateHostWindow(opts HostWindowOptions) (*HostWindow, error) {
	if opts.Width < 1 || opts.Height < 1 {
		return nil, fmt.Errorf("invalid host window size %dx%d", opts.Width, opts.Height)
	}

	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate window id: %w", err)
	}

	// Value list order follows the bit positions of the mask (low to high).
	err = win.CreateChecked(
		c.Root,
		opts.X, opts.Y,
		opts.Width, opts.Height,
		xproto.CwBackPixel|xproto.CwEventMask,
		opts.Background,
		hostEventMask,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Window manager hints must be in place before the first map.
	if err := ewmh.WmWindowTypeSet(c.XUtil, win.Id, []string{"_NET_WM_WINDOW_TYPE_UTILITY"}); err != nil {
		win.Destroy()
		return nil, fmt.Errorf("failed to set window type: %w", err)
	}
	_ = ewmh.WmStateSet(c.XUtil, win.Id, []string{
		"_NET_WM_STATE_SKIP_TASKBAR",
		"_NET_WM_STATE_SKIP_PAGER",
		"_NET_WM_STATE_STICKY",
		"_NET_WM_STATE_BELOW",
	})
	_ = ewmh.WmDesktopSet(c.XUtil, win.Id, 0xFFFFFFFF)
	_ = ewmh.WmNameSet(c.XUtil, win.Id, opts.Title)
	_ = icccm.WmNameSet(c.XUtil, win.Id, opts.Title)
	_ = icccm.WmClassSet(c.XUtil, win.Id, &icccm.WmClass{
		Instance: opts.Class,
		Class:    opts.Class,
	})
	_ = icccm.WmProtocolsSet(c.XUtil, win.Id, []string{"WM_DELETE_WINDOW"})
	_ = icccm.WmNormalHintsSet(c.XUtil, win.Id, &icccm.NormalHints{
		Flags:  icccm.SizeHintUSPosition | icccm.SizeHintPPosition | icccm.SizeHintPSize,
		X:      opts.X,
		Y:      opts.Y,
		Width:  uint(opts.Width),
		Height: uint(opts.Height),
	})
	_ = motif.WmHintsSet(c.XUtil, win.Id, &motif.Hints{
		Flags:      motif.HintDecorations,
		Decoration: motif.DecorationNone,
	})

	win.Map()

	return &HostWindow{
		conn:   c,
		win:    win,
		width:  opts.Width,
		height: opts.Height,
	}, nil
}

// ID returns the X window id.
func (w *HostWindow) ID() xproto.Window {
	return w.win.Id
}

// Size returns the current inner size of the window. The last known size is
// returned when the geometry cannot be queried.
func (w *HostWindow) Size() (width, height int) {
	geom, err := xproto.GetGeometry(w.conn.XUtil.Conn(), xproto.Drawable(w.win.Id)).Reply()
	if err != nil {
		return w.width, w.height
	}
	return int(geom.Width), int(geom.Height)
}

// IsDeleteMessage reports whether a ClientMessage on this window is the
// WM_DELETE_WINDOW protocol message.
func (w *HostWindow) IsDeleteMessage(messageType xproto.Atom, data []uint32) bool {
	protocols, err := w.conn.Atom("WM_PROTOCOLS")
	if err != nil || messageType != protocols || len(data) == 0 {
		return false
	}
	deleteAtom, err := w.conn.Atom("WM_DELETE_WINDOW")
	if err != nil {
		return false
	}
	return xproto.Atom(data[0]) == deleteAtom
}

// Destroy unmaps and destroys the window.
func (w *HostWindow) Destroy() {
	w.win.Destroy()
}
