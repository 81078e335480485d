package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"
)

const windowTypeDesktop = "_NET_WM_WINDOW_TYPE_DESKTOP"

// GetActiveWindow returns the window named by _NET_ACTIVE_WINDOW. Zero means
// nothing has focus, which on most window managers is the bare desktop.
func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// IsDesktopWindow reports whether window is the desktop itself: no window,
// the root window, or a client typed _NET_WM_WINDOW_TYPE_DESKTOP (the icon
// layer drawn by file managers).
func (c *Connection) IsDesktopWindow(window xproto.Window) bool {
	if window == 0 || window == c.Root {
		return true
	}
	types, err := ewmh.WmWindowTypeGet(c.XUtil, window)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == windowTypeDesktop {
			return true
		}
	}
	return false
}

// WindowClass returns the class half of WM_CLASS for window.
func (c *Connection) WindowClass(window xproto.Window) (string, error) {
	wmClass, err := icccm.WmClassGet(c.XUtil, window)
	if err != nil {
		return "", fmt.Errorf("failed to get WM_CLASS of 0x%x: %w", uint32(window), err)
	}
	return strings.TrimSpace(wmClass.Class), nil
}

// WatchActiveWindow calls fn from the event loop goroutine every time
// _NET_ACTIVE_WINDOW changes on the root window.
func (c *Connection) WatchActiveWindow(fn func(active xproto.Window)) error {
	activeAtom, err := c.Atom("_NET_ACTIVE_WINDOW")
	if err != nil {
		return err
	}

	root := xwindow.New(c.XUtil, c.Root)
	if err := root.Listen(xproto.EventMaskPropertyChange); err != nil {
		return fmt.Errorf("failed to listen on root window: %w", err)
	}

	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		if ev.Atom != activeAtom {
			return
		}
		active, err := ewmh.ActiveWindowGet(xu)
		if err != nil {
			active = 0
		}
		fn(active)
	}).Connect(c.XUtil, c.Root)

	return nil
}
