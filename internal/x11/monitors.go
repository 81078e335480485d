package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display
type Monitor struct {
	ID      int
	Name    string
	Primary bool
	X       int
	Y       int
	Width   int
	Height  int
}

func (m Monitor) contains(x, y int) bool {
	return x >= m.X && x < m.X+m.Width && y >= m.Y && y < m.Y+m.Height
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var primary randr.Output
	if reply, err := randr.GetOutputPrimary(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		primary = reply.Output
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Disabled CRTC.
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		isPrimary := false
		for _, o := range info.Outputs {
			if primary != 0 && o == primary {
				isPrimary = true
			}
		}

		monitors = append(monitors, Monitor{
			ID:      i,
			Name:    name,
			Primary: isPrimary,
			X:       int(info.X),
			Y:       int(info.Y),
			Width:   int(info.Width),
			Height:  int(info.Height),
		})
	}

	return monitors, nil
}

// PlacementArea returns the usable area of the monitor the widget should
// live on: the RandR primary output, else the monitor under the pointer,
// else the first monitor. Panels and docks are excluded from the area.
func (c *Connection) PlacementArea() (Monitor, error) {
	monitors, err := c.GetMonitors()
	if err != nil {
		return Monitor{}, err
	}
	if len(monitors) == 0 {
		return Monitor{}, fmt.Errorf("no monitors found")
	}

	pointerX, pointerY, pointerOK := c.pointer()
	mon := choosePlacementMonitor(monitors, pointerX, pointerY, pointerOK)

	if !c.applyDockStruts(&mon) {
		c.clipToWorkArea(&mon)
	}
	return mon, nil
}

func choosePlacementMonitor(monitors []Monitor, pointerX, pointerY int, pointerOK bool) Monitor {
	for _, m := range monitors {
		if m.Primary {
			return m
		}
	}
	if pointerOK {
		for _, m := range monitors {
			if m.contains(pointerX, pointerY) {
				return m
			}
		}
	}
	return monitors[0]
}

func (c *Connection) pointer() (x, y int, ok bool) {
	reply, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return 0, 0, false
	}
	return int(reply.RootX), int(reply.RootY), true
}

// clipToWorkArea intersects mon with _NET_WORKAREA of the current desktop.
func (c *Connection) clipToWorkArea(mon *Monitor) {
	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return
	}
	index := 0
	if current, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(current) < len(workArea) {
		index = int(current)
	}
	wa := workArea[index]

	isect := intersectionOf(
		mon.X, mon.Y, mon.X+mon.Width, mon.Y+mon.Height,
		int(wa.X), int(wa.Y), int(wa.X)+int(wa.Width), int(wa.Y)+int(wa.Height),
	)
	if isect.w > 0 && isect.h > 0 {
		mon.X, mon.Y = isect.x, isect.y
		mon.Width, mon.Height = isect.w, isect.h
	}
}

type dockStruts struct {
	left   int
	right  int
	top    int
	bottom int
}

func (c *Connection) applyDockStruts(mon *Monitor) bool {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return false
	}
	rootWidth := int(rootGeom.Width)
	rootHeight := int(rootGeom.Height)

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return false
	}

	var struts dockStruts
	for _, windowID := range clients {
		if !c.isDock(windowID) {
			continue
		}
		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, windowID); err == nil {
			accumulateStruts(*mon, rootWidth, rootHeight, sp, &struts)
			continue
		}
		// Some docks only set _NET_WM_STRUT (no partial ranges).
		if s, err := ewmh.WmStrutGet(c.XUtil, windowID); err == nil {
			accumulateStruts(*mon, rootWidth, rootHeight, &ewmh.WmStrutPartial{
				Left:       s.Left,
				Right:      s.Right,
				Top:        s.Top,
				Bottom:     s.Bottom,
				LeftEndY:   uint(rootHeight - 1),
				RightEndY:  uint(rootHeight - 1),
				TopEndX:    uint(rootWidth - 1),
				BottomEndX: uint(rootWidth - 1),
			}, &struts)
		}
	}

	if struts == (dockStruts{}) {
		return false
	}

	mon.X += struts.left
	mon.Y += struts.top
	mon.Width = maxInt(1, mon.Width-struts.left-struts.right)
	mon.Height = maxInt(1, mon.Height-struts.top-struts.bottom)
	return true
}

func (c *Connection) isDock(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DOCK" {
			return true
		}
	}
	return false
}

// accumulateStruts widens acc by the parts of sp that overlap mon.
func accumulateStruts(mon Monitor, rootWidth, rootHeight int, sp *ewmh.WmStrutPartial, acc *dockStruts) {
	mx1, my1 := mon.X, mon.Y
	mx2, my2 := mon.X+mon.Width, mon.Y+mon.Height

	if sp.Top > 0 {
		isect := intersectionOf(mx1, my1, mx2, my2, int(sp.TopStartX), 0, int(sp.TopEndX)+1, int(sp.Top))
		if isect.w > 0 && isect.h > 0 {
			acc.top = maxInt(acc.top, isect.h)
		}
	}
	if sp.Bottom > 0 {
		isect := intersectionOf(mx1, my1, mx2, my2, int(sp.BottomStartX), rootHeight-int(sp.Bottom), int(sp.BottomEndX)+1, rootHeight)
		if isect.w > 0 && isect.h > 0 {
			acc.bottom = maxInt(acc.bottom, isect.h)
		}
	}
	if sp.Left > 0 {
		isect := intersectionOf(mx1, my1, mx2, my2, 0, int(sp.LeftStartY), int(sp.Left), int(sp.LeftEndY)+1)
		if isect.w > 0 && isect.h > 0 {
			acc.left = maxInt(acc.left, isect.w)
		}
	}
	if sp.Right > 0 {
		isect := intersectionOf(mx1, my1, mx2, my2, rootWidth-int(sp.Right), int(sp.RightStartY), rootWidth, int(sp.RightEndY)+1)
		if isect.w > 0 && isect.h > 0 {
			acc.right = maxInt(acc.right, isect.w)
		}
	}
}

type intersection struct {
	x, y int
	w, h int
}

func intersectionOf(ax1, ay1, ax2, ay2, bx1, by1, bx2, by2 int) intersection {
	x1 := maxInt(ax1, bx1)
	y1 := maxInt(ay1, by1)
	x2 := minInt(ax2, bx2)
	y2 := minInt(ay2, by2)

	if x2 <= x1 || y2 <= y1 {
		return intersection{}
	}
	return intersection{x: x1, y: y1, w: x2 - x1, h: y2 - y1}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
