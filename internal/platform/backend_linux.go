//go:build linux

package platform

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/deskminder/internal/desktophost"
	"github.com/1broseidon/deskminder/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// LinuxBackend runs the host on X11 through an EWMH-compliant window manager.
type LinuxBackend struct {
	conn   *x11.Connection
	opts   Options
	logger *slog.Logger

	loopOnce sync.Once

	mu     sync.Mutex
	window *x11.HostWindow
}

var _ Backend = (*LinuxBackend)(nil)

// New opens an X11 connection for the backend.
func New(opts Options) (Backend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn, opts: opts, logger: opts.logger()}, nil
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	return b.conn.Root
}

// Close destroys the host window and disconnects.
func (b *LinuxBackend) Close() {
	b.mu.Lock()
	win := b.window
	b.window = nil
	b.mu.Unlock()

	if win != nil {
		win.Destroy()
	}
	b.conn.Quit()
	b.conn.Close()
}

// ClassName returns the WM_CLASS class of h. The desktop itself (no active
// window, the root window or a desktop-typed client) reports the configured
// desktop class.
func (b *LinuxBackend) ClassName(h desktophost.WindowHandle) (string, error) {
	win := xproto.Window(h)
	if b.conn.IsDesktopWindow(win) {
		return b.opts.DesktopClass, nil
	}
	class, err := b.conn.WindowClass(win)
	if err != nil {
		return "", fmt.Errorf("%w: %v", desktophost.ErrClassName, err)
	}
	return class, nil
}

// CreateWindow creates the host window at its anchored position and forwards
// its X events through proxy.
func (b *LinuxBackend) CreateWindow(opts desktophost.WindowOptions, proxy *desktophost.Proxy) (desktophost.Window, error) {
	rect := Rect{X: opts.X, Y: opts.Y, Width: opts.Width, Height: opts.Height}
	if area, err := b.conn.PlacementArea(); err == nil {
		rect = Place(Rect{X: area.X, Y: area.Y, Width: area.Width, Height: area.Height}, opts.Width, opts.Height, b.opts.Margin, b.opts.Anchor)
	} else {
		b.logger.Warn("failed to detect monitor, using configured position", "error", err)
	}

	hw, err := b.conn.CreateHostWindow(x11.HostWindowOptions{
		Title:      opts.Title,
		Class:      opts.Title,
		X:          rect.X,
		Y:          rect.Y,
		Width:      rect.Width,
		Height:     rect.Height,
		Background: b.opts.Background,
	})
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.window = hw
	b.mu.Unlock()

	b.connectWindowEvents(hw, proxy, rect.Width, rect.Height)
	b.startEventLoop()

	b.logger.Debug("host window created", "window", uint32(hw.ID()), "x", rect.X, "y", rect.Y, "width", rect.Width, "height", rect.Height)
	return &linuxWindow{hw: hw}, nil
}

func (b *LinuxBackend) connectWindowEvents(hw *x11.HostWindow, proxy *desktophost.Proxy, width, height int) {
	xu := b.conn.XUtil
	id := hw.ID()
	send := func(ev desktophost.WindowEvent) {
		postWindowEvent(proxy, b.logger, ev)
	}

	xevent.ExposeFun(func(xu *xgbutil.XUtil, ev xevent.ExposeEvent) {
		// Only the last event of an expose series.
		if ev.Count == 0 {
			send(desktophost.WindowEvent{Kind: desktophost.WindowExposed})
		}
	}).Connect(xu, id)

	// Runs on the event loop goroutine only.
	lastWidth, lastHeight := width, height
	xevent.ConfigureNotifyFun(func(xu *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		w, h := int(ev.Width), int(ev.Height)
		if w == lastWidth && h == lastHeight {
			return
		}
		lastWidth, lastHeight = w, h
		send(desktophost.WindowEvent{Kind: desktophost.WindowResized, Width: w, Height: h})
	}).Connect(xu, id)

	xevent.ButtonPressFun(func(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		// Core protocol wheel: 4 is up, 5 is down.
		switch ev.Detail {
		case 4, 5:
			step := 1
			if ev.Detail == 4 {
				step = -1
			}
			send(desktophost.WindowEvent{
				Kind:   desktophost.WindowScrolled,
				X:      int(ev.EventX),
				Y:      int(ev.EventY),
				Scroll: step,
			})
			return
		}
		send(desktophost.WindowEvent{
			Kind:   desktophost.WindowPointerPressed,
			X:      int(ev.EventX),
			Y:      int(ev.EventY),
			Button: int(ev.Detail),
		})
	}).Connect(xu, id)

	xevent.MotionNotifyFun(func(xu *xgbutil.XUtil, ev xevent.MotionNotifyEvent) {
		send(desktophost.WindowEvent{
			Kind: desktophost.WindowPointerMoved,
			X:    int(ev.EventX),
			Y:    int(ev.EventY),
		})
	}).Connect(xu, id)

	xevent.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		send(desktophost.WindowEvent{
			Kind: desktophost.WindowKeyPressed,
			Key:  keybind.LookupString(xu, ev.State, ev.Detail),
		})
	}).Connect(xu, id)

	xevent.ClientMessageFun(func(xu *xgbutil.XUtil, ev xevent.ClientMessageEvent) {
		if ev.Format == 32 && hw.IsDeleteMessage(ev.Type, ev.Data.Data32) {
			send(desktophost.WindowEvent{Kind: desktophost.WindowCloseRequested})
		}
	}).Connect(xu, id)

	xevent.DestroyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.DestroyNotifyEvent) {
		send(desktophost.WindowEvent{Kind: desktophost.WindowCloseRequested})
	}).Connect(xu, id)
}

// InstallForegroundHook reports every _NET_ACTIVE_WINDOW change to l, then
// reports the current active window once so the host starts in the right
// state. Activations of the host window itself are ignored.
func (b *LinuxBackend) InstallForegroundHook(l *desktophost.ForegroundListener) error {
	notify := func(active xproto.Window) {
		if b.isHostWindow(active) {
			return
		}
		l.HandleEvent(desktophost.EventSystemForeground, desktophost.WindowHandle(active))
	}

	if err := b.conn.WatchActiveWindow(notify); err != nil {
		return err
	}
	b.startEventLoop()

	if active, err := b.conn.GetActiveWindow(); err == nil {
		notify(active)
	}
	return nil
}

func (b *LinuxBackend) isHostWindow(win xproto.Window) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.window != nil && b.window.ID() == win
}

func (b *LinuxBackend) startEventLoop() {
	b.loopOnce.Do(func() {
		go b.conn.EventLoop()
	})
}

// Painter paints host windows with a core-font GC.
func (b *LinuxBackend) Painter() desktophost.Painter {
	return desktophost.PainterFunc(func(w desktophost.Window) (desktophost.RenderState, error) {
		lw, ok := w.(*linuxWindow)
		if !ok {
			return nil, fmt.Errorf("window %T does not belong to the X11 backend", w)
		}
		width, height := lw.Size()
		surface, err := b.conn.NewSurface(lw.hw.ID(), width, height)
		if err != nil {
			return nil, err
		}
		return linuxRender{surface}, nil
	})
}

// linuxWindow adapts an X11 host window to the host's stacking calls.
type linuxWindow struct {
	hw *x11.HostWindow
}

func (w *linuxWindow) Handle() desktophost.WindowHandle {
	return desktophost.WindowHandle(w.hw.ID())
}

func (w *linuxWindow) Size() (width, height int) {
	return w.hw.Size()
}

func (w *linuxWindow) SetLevel(level desktophost.WindowLevel) error {
	return w.hw.SetAbove(level == desktophost.LevelAlwaysOnTop)
}

// Reposition maps the insert-after handle onto an X stack mode. Only the
// stack mode is ever configured, so flags without NoMove|NoSize are refused.
func (w *linuxWindow) Reposition(insertAfter desktophost.WindowHandle, flags desktophost.PositionFlags) error {
	if !flags.Has(desktophost.PosNoMove | desktophost.PosNoSize) {
		return fmt.Errorf("reposition supports stacking changes only (flags 0x%x)", uint32(flags))
	}
	switch insertAfter {
	case desktophost.InsertTopmost:
		return w.hw.RaiseTop()
	case desktophost.InsertBottom:
		return w.hw.LowerBottom()
	default:
		return w.hw.PlaceBelow(xproto.Window(insertAfter))
	}
}

func (w *linuxWindow) PrevWindow() (desktophost.WindowHandle, bool) {
	above, ok := w.hw.WindowAbove()
	if !ok {
		return 0, false
	}
	return desktophost.WindowHandle(above), true
}

type linuxRender struct {
	*x11.Surface
}

func (r linuxRender) Canvas() desktophost.Canvas {
	return r.Surface
}
