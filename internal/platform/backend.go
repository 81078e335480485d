package platform

import (
	"errors"
	"log/slog"

	"github.com/1broseidon/deskminder/internal/config"
	"github.com/1broseidon/deskminder/internal/desktophost"
)

// ErrUnsupportedPlatform is returned by CreateWindow on operating systems
// without a desktop host backend.
var ErrUnsupportedPlatform = errors.New("desktop host is not supported on this platform")

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Options configure a backend.
type Options struct {
	// DesktopClass is the class name reported for the desktop itself on
	// window systems that have no native desktop class.
	DesktopClass string
	// Anchor and Margin place the host window inside the usable area of
	// the chosen display.
	Anchor     config.Anchor
	Margin     int
	Background uint32
	Logger     *slog.Logger
}

// Backend abstracts the window system the host runs on.
type Backend interface {
	desktophost.WindowSystem
	// Painter creates the render state for windows of this backend.
	Painter() desktophost.Painter
	// Close releases the window system connection.
	Close()
}

// Place positions a width x height window in area at the given anchor,
// keeping margin pixels from the anchored edges. Windows larger than the
// area are clamped to its origin.
func Place(area Rect, width, height, margin int, anchor config.Anchor) Rect {
	if margin < 0 {
		margin = 0
	}

	left := area.X + margin
	top := area.Y + margin
	right := area.X + area.Width - margin - width
	bottom := area.Y + area.Height - margin - height

	r := Rect{Width: width, Height: height}
	switch anchor {
	case config.AnchorTopLeft:
		r.X, r.Y = left, top
	case config.AnchorBottomLeft:
		r.X, r.Y = left, bottom
	case config.AnchorBottomRight:
		r.X, r.Y = right, bottom
	default:
		r.X, r.Y = right, top
	}

	if r.X < area.X {
		r.X = area.X
	}
	if r.Y < area.Y {
		r.Y = area.Y
	}
	return r
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// postWindowEvent forwards a native event into the loop. A full or closed
// queue drops the event.
func postWindowEvent(proxy *desktophost.Proxy, logger *slog.Logger, ev desktophost.WindowEvent) {
	if err := proxy.Send(ev); err != nil {
		logger.Debug("dropped window event", "kind", ev.Kind, "error", err)
	}
}

// wheelSteps converts a Win32 wheel delta (120 per notch, positive away from
// the user) into scroll steps, positive towards the end of the content.
// High resolution wheels send partial deltas; each still counts as one step.
func wheelSteps(delta int16) int {
	steps := -int(delta) / 120
	switch {
	case steps != 0:
		return steps
	case delta > 0:
		return -1
	case delta < 0:
		return 1
	}
	return 0
}
