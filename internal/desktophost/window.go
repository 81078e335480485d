package desktophost

// WindowHandle is the opaque OS identity of a window (an HWND on Windows, an
// X window ID on X11).
type WindowHandle uintptr

// Special insert-after handles for Stacker.Reposition. The values match the
// Win32 HWND_TOPMOST and HWND_BOTTOM constants; other backends translate them.
const (
	InsertTopmost WindowHandle = ^WindowHandle(0)
	InsertBottom  WindowHandle = 1
)

// WindowLevel is the coarse stacking band requested from the window manager.
type WindowLevel int

const (
	LevelAlwaysOnBottom WindowLevel = iota
	LevelAlwaysOnTop
)

// String returns the string representation of the level
func (l WindowLevel) String() string {
	if l == LevelAlwaysOnTop {
		return "always_on_top"
	}
	return "always_on_bottom"
}

// PositionFlags mirror the Win32 SWP_* flags. Backends translate them.
type PositionFlags uint32

const (
	PosNoSize         PositionFlags = 0x0001
	PosNoMove         PositionFlags = 0x0002
	PosNoActivate     PositionFlags = 0x0010
	PosNoOwnerZOrder  PositionFlags = 0x0200
	PosNoSendChanging PositionFlags = 0x0400
	PosAsync          PositionFlags = 0x4000
)

// StackingFlags are the only flags the enforcer ever passes: stacking order
// changes without moving, resizing, or activating the window.
const StackingFlags = PosAsync | PosNoActivate | PosNoMove | PosNoSize | PosNoOwnerZOrder | PosNoSendChanging

// Has reports whether all bits of want are set.
func (f PositionFlags) Has(want PositionFlags) bool {
	return f&want == want
}

// Stacker is the set of window-manager calls the z-order enforcer needs.
type Stacker interface {
	// SetLevel requests a stacking band for the host window.
	SetLevel(level WindowLevel) error
	// Reposition places the host window directly after insertAfter in the
	// z-order. insertAfter may be InsertTopmost, InsertBottom or a window.
	Reposition(insertAfter WindowHandle, flags PositionFlags) error
	// PrevWindow returns the window immediately preceding the host window in
	// the current z-order, or false when the host is first.
	PrevWindow() (WindowHandle, bool)
}

// Window is the host window owned by the main loop.
type Window interface {
	Stacker
	Handle() WindowHandle
	Size() (width, height int)
}

// WindowOptions describe the host window.
type WindowOptions struct {
	Title  string
	X, Y   int
	Width  int
	Height int
}

// ClassNameReader reads the window class name of an arbitrary window.
type ClassNameReader interface {
	ClassName(h WindowHandle) (string, error)
}

// WindowSystem creates the host window and installs the global foreground
// hook. Native window events are posted through the given proxy.
type WindowSystem interface {
	ClassNameReader
	CreateWindow(opts WindowOptions, proxy *Proxy) (Window, error)
	InstallForegroundHook(l *ForegroundListener) error
}

// Canvas is the drawing surface handed to the UI each frame. Colors are
// 0xRRGGBB. Text is drawn with y at the top of the line box.
type Canvas interface {
	Size() (width, height int)
	Clear(color uint32)
	FillRect(x, y, width, height int, color uint32)
	Text(x, y int, s string, color uint32)
	TextWidth(s string) int
	LineHeight() int
}

// RenderState is the lazily created graphics state for the host window.
type RenderState interface {
	Resize(width, height int) error
	Canvas() Canvas
	Present() error
	Close()
}

// Painter creates the render state for a window.
type Painter interface {
	Init(w Window) (RenderState, error)
}

// PainterFunc adapts a function to Painter.
type PainterFunc func(w Window) (RenderState, error)

// Init calls f(w).
func (f PainterFunc) Init(w Window) (RenderState, error) {
	return f(w)
}

// UI is the external UI layer driven by the main loop.
type UI interface {
	// HandleEvent processes a native window event and reports whether a
	// repaint is needed.
	HandleEvent(ev WindowEvent) bool
	// Render draws one frame.
	Render(c Canvas)
}
