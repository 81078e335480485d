package desktophost

import (
	"errors"
	"io"
	"log/slog"
	"sync"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type repositionCall struct {
	after WindowHandle
	flags PositionFlags
}

// fakeWindow records every stacking call. PrevWindow returns prevs in order,
// or cycles over them forever when cycle is set.
type fakeWindow struct {
	handle      WindowHandle
	width       int
	height      int
	levels      []WindowLevel
	repositions []repositionCall
	prevs       []WindowHandle
	cycle       bool
	failAfter   map[WindowHandle]bool
	prevCalls   int
}

func (w *fakeWindow) Handle() WindowHandle { return w.handle }
func (w *fakeWindow) Size() (int, int) { return w.width, w.height }

func (w *fakeWindow) SetLevel(l WindowLevel) error {
	w.levels = append(w.levels, l)
	return nil
}

func (w *fakeWindow) Reposition(after WindowHandle, flags PositionFlags) error {
	w.repositions = append(w.repositions, repositionCall{after: after, flags: flags})
	if w.failAfter[after] {
		return errors.New("SetWindowPos failed")
	}
	return nil
}

func (w *fakeWindow) PrevWindow() (WindowHandle, bool) {
	if len(w.prevs) == 0 {
		return 0, false
	}
	i := w.prevCalls
	w.prevCalls++
	if w.cycle {
		return w.prevs[i%len(w.prevs)], true
	}
	if i >= len(w.prevs) {
		return 0, false
	}
	return w.prevs[i], true
}

type fakeClassNames map[WindowHandle]string

func (f fakeClassNames) ClassName(h WindowHandle) (string, error) {
	name, ok := f[h]
	if !ok {
		return "", ErrClassName
	}
	return name, nil
}

type fakeWindowSystem struct {
	fakeClassNames
	window    *fakeWindow
	createErr error

	mu       sync.Mutex
	listener *ForegroundListener
	proxy    *Proxy
	hooked   chan struct{}
}

func newFakeWindowSystem(classes fakeClassNames) *fakeWindowSystem {
	return &fakeWindowSystem{
		fakeClassNames: classes,
		window:         &fakeWindow{handle: 0x100, width: 300, height: 200},
		hooked:         make(chan struct{}),
	}
}

func (f *fakeWindowSystem) CreateWindow(opts WindowOptions, proxy *Proxy) (Window, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.mu.Lock()
	f.proxy = proxy
	f.mu.Unlock()
	return f.window, nil
}

func (f *fakeWindowSystem) InstallForegroundHook(l *ForegroundListener) error {
	f.mu.Lock()
	f.listener = l
	f.mu.Unlock()
	close(f.hooked)
	return nil
}

func (f *fakeWindowSystem) hook() (*ForegroundListener, *Proxy) {
	<-f.hooked
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listener, f.proxy
}

type fakeCanvas struct {
	width, height int
	texts         []string
}

func (c *fakeCanvas) Size() (int, int) { return c.width, c.height }
func (c *fakeCanvas) Clear(uint32) {}
func (c *fakeCanvas) FillRect(int, int, int, int, uint32) {}
func (c *fakeCanvas) Text(_, _ int, s string, _ uint32) { c.texts = append(c.texts, s) }
func (c *fakeCanvas) TextWidth(s string) int { return 7 * len(s) }
func (c *fakeCanvas) LineHeight() int { return 16 }

type fakeRender struct {
	canvas   fakeCanvas
	resizes  int
	presents int
	closed   bool
}

func (r *fakeRender) Resize(w, h int) error {
	r.resizes++
	r.canvas.width, r.canvas.height = w, h
	return nil
}

func (r *fakeRender) Canvas() Canvas { return &r.canvas }

func (r *fakeRender) Present() error {
	r.presents++
	return nil
}

func (r *fakeRender) Close() { r.closed = true }

type fakeUI struct {
	events  []WindowEvent
	renders int
	repaint bool
}

func (u *fakeUI) HandleEvent(ev WindowEvent) bool {
	u.events = append(u.events, ev)
	return u.repaint
}

func (u *fakeUI) Render(c Canvas) {
	u.renders++
	c.Text(0, 0, "frame", 0)
}
