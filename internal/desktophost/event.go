package desktophost

// Event is anything the main loop can dequeue: a HookEvent posted from the
// foreground hook or the render backend, or a WindowEvent from the native
// window system.
type Event interface {
	isEvent()
}

// HookEvent is a user event posted into the main loop from outside it.
type HookEvent int

const (
	// RequestRepaint asks the loop to redraw the host window.
	RequestRepaint HookEvent = iota
	// DesktopShown means the desktop background container took the foreground.
	DesktopShown
	// DesktopHidden means any other window took the foreground.
	DesktopHidden
)

func (HookEvent) isEvent() {}

// String returns the string representation of the hook event
func (e HookEvent) String() string {
	switch e {
	case RequestRepaint:
		return "request_repaint"
	case DesktopShown:
		return "desktop_shown"
	case DesktopHidden:
		return "desktop_hidden"
	default:
		return "unknown"
	}
}

// WindowEventKind classifies native window events.
type WindowEventKind int

const (
	// WindowExposed means part of the surface must be repainted.
	WindowExposed WindowEventKind = iota
	// WindowResized carries the new surface size in Width/Height.
	WindowResized
	// WindowCloseRequested asks the loop to exit.
	WindowCloseRequested
	// WindowPointerPressed carries the pointer position in X/Y.
	WindowPointerPressed
	// WindowPointerMoved carries the pointer position in X/Y.
	WindowPointerMoved
	// WindowKeyPressed carries the key name in Key.
	WindowKeyPressed
	// WindowScrolled carries wheel steps in Scroll, positive towards the
	// end of the content.
	WindowScrolled
)

// String returns the string representation of the event kind
func (k WindowEventKind) String() string {
	switch k {
	case WindowExposed:
		return "exposed"
	case WindowResized:
		return "resized"
	case WindowCloseRequested:
		return "close_requested"
	case WindowPointerPressed:
		return "pointer_pressed"
	case WindowPointerMoved:
		return "pointer_moved"
	case WindowKeyPressed:
		return "key_pressed"
	case WindowScrolled:
		return "scrolled"
	default:
		return "unknown"
	}
}

// WindowEvent is a native event for the host window, already converted
// from the platform representation.
type WindowEvent struct {
	Kind   WindowEventKind
	X, Y   int
	Width  int
	Height int
	Button int
	Scroll int
	Key    string
}

func (WindowEvent) isEvent() {}

// Visibility is the main loop's view of whether the desktop is showing.
type Visibility int

const (
	Hidden Visibility = iota
	Shown
)

// String returns the string representation of the visibility
func (v Visibility) String() string {
	if v == Shown {
		return "shown"
	}
	return "hidden"
}

// Phase is the host state machine: a pre-init phase before the render state
// exists, then one phase per Visibility.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseHidden
	PhaseShown
)

// String returns the string representation of the phase
func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseHidden:
		return "hidden"
	case PhaseShown:
		return "shown"
	default:
		return "unknown"
	}
}

func phaseFor(v Visibility) Phase {
	if v == Shown {
		return PhaseShown
	}
	return PhaseHidden
}
