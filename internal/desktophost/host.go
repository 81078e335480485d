package desktophost

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

const (
	DefaultTickInterval = time.Second
	DefaultQueueSize    = 64
)

// Config holds configuration for the host.
type Config struct {
	Window         WindowOptions
	DesktopClass   string
	TickInterval   time.Duration
	MaxZOrderSteps int
	QueueSize      int
	Logger         *slog.Logger

	// Registry defaults to the process-wide registry.
	Registry *Registry

	// OnVisibilityChange is called on the loop goroutine after each real
	// transition (redundant events never reach it).
	OnVisibilityChange func(v Visibility)
}

// Host runs the single-threaded main loop that owns the host window, the
// desktop visibility and the render state.
type Host struct {
	ws       WindowSystem
	painter  Painter
	registry *Registry
	logger   *slog.Logger

	desktopClass       string
	tickInterval       time.Duration
	maxZOrderSteps     int
	windowOpts         WindowOptions
	onVisibilityChange func(v Visibility)

	queue chan Event
	proxy *Proxy

	// Loop-owned; no locking.
	window          Window
	enforcer        *ZOrderEnforcer
	visibility      Visibility
	phase           Phase
	render          RenderState
	redrawRequested bool
	resizeRequested bool

	status atomic.Value // Status
}

// Status is a snapshot of the loop state safe to read from other goroutines.
type Status struct {
	Phase        Phase
	Visibility   Visibility
	ZOrderPasses uint64
}

// New creates a host for the given window system and painter.
func New(cfg Config, ws WindowSystem, painter Painter) *Host {
	tick := cfg.TickInterval
	if tick <= 0 {
		tick = DefaultTickInterval
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	registry := cfg.Registry
	if registry == nil {
		registry = ProcessRegistry()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h := &Host{
		ws:                 ws,
		painter:            painter,
		registry:           registry,
		logger:             logger,
		desktopClass:       cfg.DesktopClass,
		tickInterval:       tick,
		maxZOrderSteps:     cfg.MaxZOrderSteps,
		windowOpts:         cfg.Window,
		onVisibilityChange: cfg.OnVisibilityChange,
		queue:              make(chan Event, queueSize),
	}
	h.status.Store(Status{})
	return h
}

// Status returns the latest published loop state.
func (h *Host) Status() Status {
	return h.status.Load().(Status)
}

// Run registers the event proxy, creates the host window, installs the
// foreground hook and runs the loop until the window is closed, ctx is done,
// or the render state cannot be created.
func (h *Host) Run(ctx context.Context, ui UI) error {
	proxy := NewProxy(h.queue)
	if err := h.registry.Register(proxy); err != nil {
		return fmt.Errorf("%w: %w", ErrEventLoopAlreadyCreated, err)
	}
	h.proxy = proxy
	defer proxy.Close()

	win, err := h.ws.CreateWindow(h.windowOpts, proxy)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWindowCreation, err)
	}
	h.window = win
	h.enforcer = NewZOrderEnforcer(win, h.maxZOrderSteps, h.logger)

	listener := NewForegroundListener(h.ws, h.desktopClass, h.registry, h.logger)
	if err := h.ws.InstallForegroundHook(listener); err != nil {
		// The widget still works, it just stays on the bottom.
		h.logger.Warn("failed to install foreground hook", "error", err)
	}

	defer func() {
		if h.render != nil {
			h.render.Close()
		}
	}()

	h.logger.Info("host started", "hwnd", uintptr(win.Handle()), "tick", h.tickInterval)

	timer := time.NewTimer(h.tickInterval)
	defer timer.Stop()

	for {
		var ev Event
		select {
		case <-ctx.Done():
			h.logger.Info("host stopped")
			return nil
		case ev = <-h.queue:
		case <-proxy.wake:
		case <-timer.C:
		}

		// Wake at least once per interval even when idle.
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(h.tickInterval)

		exit, err := h.tick(ev, ui)
		if err != nil {
			return err
		}
		if exit {
			h.logger.Info("close requested")
			return nil
		}
	}
}

// tick runs one loop iteration for ev (nil on timeout or visibility wake).
// The pending visibility is drained first so a backlog of native events
// never delays a stacking change.
func (h *Host) tick(ev Event, ui UI) (exit bool, err error) {
	if h.render == nil {
		h.logger.Info("initializing render state")
		render, err := h.painter.Init(h.window)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrRenderInit, err)
		}
		h.render = render
		h.phase = phaseFor(h.visibility)
		h.redrawRequested = true
		h.resizeRequested = true
	}

	if vis, ok := h.proxy.takeVisibility(); ok {
		h.applyVisibility(vis)
	}
	if hook, ok := ev.(HookEvent); ok {
		h.applyVisibility(hook)
	}

	h.enforcer.Enforce(h.visibility)

	switch e := ev.(type) {
	case HookEvent:
		if e == RequestRepaint {
			h.requestRedraw()
		}
	case WindowEvent:
		if h.dispatch(e, ui) {
			return true, nil
		}
	}

	if len(h.queue) == 0 && h.redrawRequested {
		h.paint(ui)
	}

	h.status.Store(Status{
		Phase:        h.phase,
		Visibility:   h.visibility,
		ZOrderPasses: h.enforcer.Passes(),
	})
	return false, nil
}

// applyVisibility performs the idempotent Hidden<->Shown transitions.
func (h *Host) applyVisibility(ev HookEvent) {
	var next Visibility
	switch ev {
	case DesktopShown:
		next = Shown
	case DesktopHidden:
		next = Hidden
	default:
		return
	}
	if next == h.visibility {
		return
	}

	h.visibility = next
	h.phase = phaseFor(next)
	h.logger.Info("desktop " + next.String())
	if h.onVisibilityChange != nil {
		h.onVisibilityChange(next)
	}
}

func (h *Host) dispatch(ev WindowEvent, ui UI) (exit bool) {
	switch ev.Kind {
	case WindowCloseRequested:
		return true
	case WindowResized:
		h.resizeRequested = true
		h.requestRedraw()
	case WindowExposed:
		h.requestRedraw()
	}
	if ui != nil && ui.HandleEvent(ev) {
		h.requestRedraw()
	}
	return false
}

func (h *Host) requestRedraw() {
	h.redrawRequested = true
}

func (h *Host) paint(ui UI) {
	if h.resizeRequested {
		w, ht := h.window.Size()
		if err := h.render.Resize(w, ht); err != nil {
			h.logger.Warn("resize failed", "width", w, "height", ht, "error", err)
		}
		h.resizeRequested = false
	}

	canvas := h.render.Canvas()
	if ui != nil {
		ui.Render(canvas)
	}
	if err := h.render.Present(); err != nil {
		h.logger.Warn("present failed", "error", err)
	}
	h.redrawRequested = false
}
