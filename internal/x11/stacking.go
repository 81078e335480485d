package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// _NET_WM_STATE actions.
const (
	wmStateRemove = 0
	wmStateAdd    = 1
)

// sourcePager marks requests as direct user actions so window managers
// honour them even for unfocused windows.
const sourcePager = 2

// ErrNotStacked is returned when the window is missing from
// _NET_CLIENT_LIST_STACKING.
var ErrNotStacked = errors.New("window is not in the stacking list")

// SetAbove asks the window manager to keep the window in the above layer
// (above=true) or the below layer (above=false).
func (w *HostWindow) SetAbove(above bool) error {
	add, remove := "_NET_WM_STATE_BELOW", "_NET_WM_STATE_ABOVE"
	if above {
		add, remove = remove, add
	}
	if err := w.changeState(wmStateRemove, remove); err != nil {
		return err
	}
	return w.changeState(wmStateAdd, add)
}

func (w *HostWindow) changeState(action uint32, state string) error {
	atom, err := w.conn.Atom(state)
	if err != nil {
		return err
	}
	return w.conn.sendRootMessage(w.win.Id, "_NET_WM_STATE", action, uint32(atom), 0, sourcePager)
}

// RaiseTop puts the window on top of its siblings. Only the stack mode is
// sent, so position and size never change.
func (w *HostWindow) RaiseTop() error {
	return w.configureStack(0, xproto.StackModeAbove)
}

// LowerBottom puts the window below all of its siblings.
func (w *HostWindow) LowerBottom() error {
	return w.configureStack(0, xproto.StackModeBelow)
}

// PlaceBelow puts the window directly below sibling.
func (w *HostWindow) PlaceBelow(sibling xproto.Window) error {
	return w.configureStack(sibling, xproto.StackModeBelow)
}

func (w *HostWindow) configureStack(sibling xproto.Window, mode uint32) error {
	mask := uint16(xproto.ConfigWindowStackMode)
	values := []uint32{mode}
	if sibling != 0 {
		mask |= xproto.ConfigWindowSibling
		values = []uint32{uint32(sibling), mode}
	}
	return xproto.ConfigureWindowChecked(w.conn.XUtil.Conn(), w.win.Id, mask, values).Check()
}

// WindowAbove returns the client stacked directly above the window
// according to _NET_CLIENT_LIST_STACKING. ok is false when the window is on
// top or the list cannot be read.
func (w *HostWindow) WindowAbove() (xproto.Window, bool) {
	stacking, err := ewmh.ClientListStackingGet(w.conn.XUtil)
	if err != nil {
		return 0, false
	}
	above, err := windowAbove(stacking, w.win.Id)
	if err != nil {
		return 0, false
	}
	return above, above != 0
}

// windowAbove finds target in a bottom-to-top stacking list and returns its
// upper neighbour, or 0 when target is last.
func windowAbove(stacking []xproto.Window, target xproto.Window) (xproto.Window, error) {
	for i, win := range stacking {
		if win != target {
			continue
		}
		if i+1 < len(stacking) {
			return stacking[i+1], nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("%w: 0x%x", ErrNotStacked, uint32(target))
}
