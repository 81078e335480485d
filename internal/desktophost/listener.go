package desktophost

import (
	"log/slog"
	"unicode/utf8"
)

// EventSystemForeground is the hook event code for a foreground window
// change (EVENT_SYSTEM_FOREGROUND on Windows). Backends without native codes
// report foreground changes with this value.
const EventSystemForeground uint32 = 0x0003

// DefaultDesktopClass is the class name of the Windows desktop icon layer.
const DefaultDesktopClass = "WorkerW"

// Classify maps the class name of the new foreground window to a hook event.
// The comparison is exact and case-sensitive.
func Classify(className, desktopClass string) HookEvent {
	if className == desktopClass {
		return DesktopShown
	}
	return DesktopHidden
}

// ForegroundListener is invoked by the window system whenever the foreground
// window changes, on a thread the application does not control. It only
// classifies and posts; it never touches loop-owned state.
type ForegroundListener struct {
	classes      ClassNameReader
	desktopClass string
	registry     *Registry
	logger       *slog.Logger
}

// NewForegroundListener creates a listener posting through registry.
func NewForegroundListener(classes ClassNameReader, desktopClass string, registry *Registry, logger *slog.Logger) *ForegroundListener {
	if desktopClass == "" {
		desktopClass = DefaultDesktopClass
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ForegroundListener{
		classes:      classes,
		desktopClass: desktopClass,
		registry:     registry,
		logger:       logger,
	}
}

// HandleEvent processes one hook notification. Safe for concurrent and
// reentrant calls; it never panics and never blocks.
func (l *ForegroundListener) HandleEvent(event uint32, h WindowHandle) {
	if event != EventSystemForeground {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("foreground hook panic recovered", "error", r)
		}
	}()

	className, err := l.classes.ClassName(h)
	if err != nil {
		l.logger.Warn("failed to get class name", "hwnd", uintptr(h), "error", err)
		return
	}
	if !utf8.ValidString(className) {
		l.logger.Warn("class name is not valid UTF-8", "hwnd", uintptr(h))
		return
	}

	ev := Classify(className, l.desktopClass)
	l.logger.Debug("foreground changed", "class_name", className, "event", ev)

	proxy, ok := l.registry.Lookup()
	if !ok {
		return
	}
	if err := proxy.Send(ev); err != nil {
		l.logger.Warn("failed to post hook event", "event", ev, "error", err)
	}
}
