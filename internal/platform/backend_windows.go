//go:build windows

package platform

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"syscall"
	"unsafe"

	"github.com/1broseidon/deskminder/internal/desktophost"
	"golang.org/x/sys/windows"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	gdi32    = windows.NewLazySystemDLL("gdi32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procRegisterClassExW     = user32.NewProc("RegisterClassExW")
	procCreateWindowExW      = user32.NewProc("CreateWindowExW")
	procDefWindowProcW       = user32.NewProc("DefWindowProcW")
	procDestroyWindow        = user32.NewProc("DestroyWindow")
	procGetMessageW          = user32.NewProc("GetMessageW")
	procTranslateMessage     = user32.NewProc("TranslateMessage")
	procDispatchMessageW     = user32.NewProc("DispatchMessageW")
	procPostMessageW         = user32.NewProc("PostMessageW")
	procPostQuitMessage      = user32.NewProc("PostQuitMessage")
	procLoadCursorW          = user32.NewProc("LoadCursorW")
	procSetWinEventHook      = user32.NewProc("SetWinEventHook")
	procUnhookWinEvent       = user32.NewProc("UnhookWinEvent")
	procGetForegroundWindow  = user32.NewProc("GetForegroundWindow")
	procGetClassNameW        = user32.NewProc("GetClassNameW")
	procGetWindow            = user32.NewProc("GetWindow")
	procSetWindowPos         = user32.NewProc("SetWindowPos")
	procGetClientRect        = user32.NewProc("GetClientRect")
	procBeginPaint           = user32.NewProc("BeginPaint")
	procEndPaint             = user32.NewProc("EndPaint")
	procGetDC                = user32.NewProc("GetDC")
	procReleaseDC            = user32.NewProc("ReleaseDC")
	procFillRect             = user32.NewProc("FillRect")
	procSystemParametersInfo = user32.NewProc("SystemParametersInfoW")

	procCreateCompatibleDC     = gdi32.NewProc("CreateCompatibleDC")
	procCreateCompatibleBitmap = gdi32.NewProc("CreateCompatibleBitmap")
	procSelectObject           = gdi32.NewProc("SelectObject")
	procDeleteObject           = gdi32.NewProc("DeleteObject")
	procDeleteDC               = gdi32.NewProc("DeleteDC")
	procBitBlt                 = gdi32.NewProc("BitBlt")
	procCreateSolidBrush       = gdi32.NewProc("CreateSolidBrush")
	procSetTextColor           = gdi32.NewProc("SetTextColor")
	procSetBkMode              = gdi32.NewProc("SetBkMode")
	procTextOutW               = gdi32.NewProc("TextOutW")
	procGetTextExtentPoint32W  = gdi32.NewProc("GetTextExtentPoint32W")
	procGetStockObject         = gdi32.NewProc("GetStockObject")

	procGetModuleHandleW = kernel32.NewProc("GetModuleHandleW")
)

const (
	wsPopup          = 0x80000000
	wsVisible        = 0x10000000
	wsExToolWindow   = 0x00000080
	wsExNoActivate   = 0x08000000
	csHRedraw        = 0x0002
	csVRedraw        = 0x0001
	idcArrow         = 32512
	spiGetWorkArea   = 0x0030
	gwHwndPrev       = 3
	srcCopy          = 0x00CC0020
	bkTransparent    = 1
	defaultGUIFont   = 17
	maNoActivate     = 3
	hwndNoTopmost    = ^uintptr(1)
	errClassExists   = 1410
	winEventOutOfCtx = 0x0000
	winEventSkipOwn  = 0x0002

	wmDestroy       = 0x0002
	wmSize          = 0x0005
	wmPaint         = 0x000F
	wmClose         = 0x0010
	wmMouseActivate = 0x0021
	wmKeyDown       = 0x0100
	wmMouseMove     = 0x0200
	wmLButtonDown   = 0x0201
	wmRButtonDown   = 0x0204
	wmMButtonDown   = 0x0207
	wmMouseWheel    = 0x020A
	wmApp           = 0x8000

	wmInstallHook   = wmApp + 1
	wmDestroyWindow = wmApp + 2
)

const windowClassName = "DeskminderHost"

type wndClassEx struct {
	Size       uint32
	Style      uint32
	WndProc    uintptr
	ClsExtra   int32
	WndExtra   int32
	Instance   uintptr
	Icon       uintptr
	Cursor     uintptr
	Background uintptr
	MenuName   *uint16
	ClassName  *uint16
	IconSm     uintptr
}

type msg struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      struct{ X, Y int32 }
}

type paintStruct struct {
	Hdc         uintptr
	Erase       int32
	RcPaint     windows.Rect
	Restore     int32
	IncUpdate   int32
	RgbReserved [32]byte
}

type size struct {
	CX, CY int32
}

// The OS calls back into these with no context pointer, so they reach the
// running host through package state. The event proxy registry guarantees
// one host per process.
var (
	wndProcCallback  = syscall.NewCallback(wndProc)
	winEventCallback = syscall.NewCallback(winEventProc)

	currentWindow atomic.Pointer[windowsWindow]
	hookListener  atomic.Pointer[desktophost.ForegroundListener]
)

// WindowsBackend runs the host on the Win32 desktop.
type WindowsBackend struct {
	opts   Options
	logger *slog.Logger

	mu     sync.Mutex
	window *windowsWindow
}

var _ Backend = (*WindowsBackend)(nil)

// New returns the Win32 backend.
func New(opts Options) (Backend, error) {
	if opts.DesktopClass == "" {
		opts.DesktopClass = desktophost.DefaultDesktopClass
	}
	return &WindowsBackend{opts: opts, logger: opts.logger()}, nil
}

// ClassName returns the window class of h via GetClassNameW.
func (b *WindowsBackend) ClassName(h desktophost.WindowHandle) (string, error) {
	return className(uintptr(h))
}

func className(hwnd uintptr) (string, error) {
	var buf [256]uint16
	n, _, err := procGetClassNameW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return "", fmt.Errorf("%w: hwnd 0x%x: %v", desktophost.ErrClassName, hwnd, err)
	}
	return windows.UTF16ToString(buf[:n]), nil
}

type createResult struct {
	window *windowsWindow
	err    error
}

// CreateWindow starts the UI thread, which creates the host window and then
// pumps its messages until the window is destroyed.
func (b *WindowsBackend) CreateWindow(opts desktophost.WindowOptions, proxy *desktophost.Proxy) (desktophost.Window, error) {
	rect := Place(workArea(), opts.Width, opts.Height, b.opts.Margin, b.opts.Anchor)

	ready := make(chan createResult, 1)
	go b.uiThread(opts.Title, rect, proxy, ready)

	res := <-ready
	if res.err != nil {
		return nil, res.err
	}

	b.mu.Lock()
	b.window = res.window
	b.mu.Unlock()
	return res.window, nil
}

func (b *WindowsBackend) uiThread(title string, rect Rect, proxy *desktophost.Proxy, ready chan<- createResult) {
	// Win32 windows receive messages only on the creating thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	w, err := b.createWindow(title, rect, proxy)
	if err != nil {
		ready <- createResult{err: err}
		return
	}
	ready <- createResult{window: w}

	var m msg
	for {
		ret, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if ret == 0 || int32(ret) == -1 {
			break
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}
	b.logger.Debug("ui thread exited")
}

func (b *WindowsBackend) createWindow(title string, rect Rect, proxy *desktophost.Proxy) (*windowsWindow, error) {
	instance, _, _ := procGetModuleHandleW.Call(0)
	classPtr, err := windows.UTF16PtrFromString(windowClassName)
	if err != nil {
		return nil, err
	}
	titlePtr, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return nil, err
	}

	cursor, _, _ := procLoadCursorW.Call(0, idcArrow)
	wc := wndClassEx{
		Size:      uint32(unsafe.Sizeof(wndClassEx{})),
		Style:     csHRedraw | csVRedraw,
		WndProc:   wndProcCallback,
		Instance:  instance,
		Cursor:    cursor,
		ClassName: classPtr,
	}
	if atom, _, err := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc))); atom == 0 {
		var errno syscall.Errno
		if !errors.As(err, &errno) || errno != errClassExists {
			return nil, fmt.Errorf("RegisterClassExW: %v", err)
		}
	}

	w := &windowsWindow{proxy: proxy, logger: b.logger, hookDone: make(chan error, 1)}
	// WndProc runs during CreateWindowExW already.
	currentWindow.Store(w)

	hwnd, _, err := procCreateWindowExW.Call(
		wsExToolWindow|wsExNoActivate,
		uintptr(unsafe.Pointer(classPtr)),
		uintptr(unsafe.Pointer(titlePtr)),
		wsPopup|wsVisible,
		uintptr(rect.X), uintptr(rect.Y), uintptr(rect.Width), uintptr(rect.Height),
		0, 0, instance, 0,
	)
	if hwnd == 0 {
		currentWindow.Store(nil)
		return nil, fmt.Errorf("CreateWindowExW: %v", err)
	}
	w.hwnd = hwnd
	return w, nil
}

// InstallForegroundHook installs an out-of-context EVENT_SYSTEM_FOREGROUND
// hook on the UI thread. Foreground changes inside this process are skipped.
func (b *WindowsBackend) InstallForegroundHook(l *desktophost.ForegroundListener) error {
	b.mu.Lock()
	w := b.window
	b.mu.Unlock()
	if w == nil {
		return fmt.Errorf("host window not created")
	}

	hookListener.Store(l)
	if ok, _, err := procPostMessageW.Call(w.hwnd, wmInstallHook, 0, 0); ok == 0 {
		return fmt.Errorf("PostMessageW: %v", err)
	}
	if err := <-w.hookDone; err != nil {
		return err
	}

	if fg, _, _ := procGetForegroundWindow.Call(); fg != 0 && fg != w.hwnd {
		l.HandleEvent(desktophost.EventSystemForeground, desktophost.WindowHandle(fg))
	}
	return nil
}

// Close destroys the host window, which ends the UI thread.
func (b *WindowsBackend) Close() {
	b.mu.Lock()
	w := b.window
	b.window = nil
	b.mu.Unlock()
	if w != nil {
		procPostMessageW.Call(w.hwnd, wmDestroyWindow, 0, 0)
	}
}

// Painter paints host windows with GDI into a memory DC.
func (b *WindowsBackend) Painter() desktophost.Painter {
	return desktophost.PainterFunc(func(w desktophost.Window) (desktophost.RenderState, error) {
		ww, ok := w.(*windowsWindow)
		if !ok {
			return nil, fmt.Errorf("window %T does not belong to the Win32 backend", w)
		}
		width, height := ww.Size()
		return newGDISurface(ww.hwnd, width, height)
	})
}

func winEventProc(hook, event, hwnd, idObject, idChild, eventThread, eventTime uintptr) uintptr {
	if l := hookListener.Load(); l != nil {
		l.HandleEvent(uint32(event), desktophost.WindowHandle(hwnd))
	}
	return 0
}

func wndProc(hwnd uintptr, message uint32, wParam, lParam uintptr) uintptr {
	w := currentWindow.Load()
	if w == nil {
		ret, _, _ := procDefWindowProcW.Call(hwnd, uintptr(message), wParam, lParam)
		return ret
	}

	switch message {
	case wmPaint:
		// Validate the region here and let the loop repaint.
		var ps paintStruct
		procBeginPaint.Call(hwnd, uintptr(unsafe.Pointer(&ps)))
		procEndPaint.Call(hwnd, uintptr(unsafe.Pointer(&ps)))
		w.post(desktophost.WindowEvent{Kind: desktophost.WindowExposed})
		return 0

	case wmSize:
		w.post(desktophost.WindowEvent{
			Kind:   desktophost.WindowResized,
			Width:  int(lParam & 0xFFFF),
			Height: int((lParam >> 16) & 0xFFFF),
		})
		return 0

	case wmMouseActivate:
		return maNoActivate

	case wmLButtonDown, wmRButtonDown, wmMButtonDown, wmMouseMove:
		ev := desktophost.WindowEvent{
			Kind: desktophost.WindowPointerPressed,
			X:    int(int16(lParam & 0xFFFF)),
			Y:    int(int16((lParam >> 16) & 0xFFFF)),
		}
		switch message {
		case wmLButtonDown:
			ev.Button = 1
		case wmMButtonDown:
			ev.Button = 2
		case wmRButtonDown:
			ev.Button = 3
		default:
			ev.Kind = desktophost.WindowPointerMoved
		}
		w.post(ev)
		return 0

	case wmMouseWheel:
		w.post(desktophost.WindowEvent{
			Kind:   desktophost.WindowScrolled,
			Scroll: wheelSteps(int16(uint16(wParam >> 16))),
		})
		return 0

	case wmKeyDown:
		w.post(desktophost.WindowEvent{Kind: desktophost.WindowKeyPressed, Key: virtualKeyName(wParam)})
		return 0

	case wmClose:
		w.post(desktophost.WindowEvent{Kind: desktophost.WindowCloseRequested})
		return 0

	case wmInstallHook:
		w.hookDone <- w.installHook()
		return 0

	case wmDestroyWindow:
		procDestroyWindow.Call(hwnd)
		return 0

	case wmDestroy:
		if w.hook != 0 {
			procUnhookWinEvent.Call(w.hook)
			w.hook = 0
		}
		currentWindow.Store(nil)
		procPostQuitMessage.Call(0)
		return 0
	}

	ret, _, _ := procDefWindowProcW.Call(hwnd, uintptr(message), wParam, lParam)
	return ret
}

// virtualKeyName names the keys the board reacts to; letters and digits map
// to themselves.
func virtualKeyName(vk uintptr) string {
	switch {
	case vk >= '0' && vk <= '9', vk >= 'A' && vk <= 'Z':
		return string(rune(vk))
	case vk == 0x1B:
		return "Escape"
	case vk == 0x0D:
		return "Return"
	case vk == 0x20:
		return "space"
	case vk >= 0x70 && vk <= 0x7B:
		return fmt.Sprintf("F%d", vk-0x70+1)
	default:
		return fmt.Sprintf("vk_%02x", vk)
	}
}

// windowsWindow is the Win32 host window. Stacking calls are safe from any
// thread; SetWindowPos is always asynchronous.
type windowsWindow struct {
	hwnd   uintptr
	proxy  *desktophost.Proxy
	logger *slog.Logger

	// UI thread only.
	hook     uintptr
	hookDone chan error
}

func (w *windowsWindow) post(ev desktophost.WindowEvent) {
	postWindowEvent(w.proxy, w.logger, ev)
}

func (w *windowsWindow) installHook() error {
	if w.hook != 0 {
		return nil
	}
	hook, _, err := procSetWinEventHook.Call(
		uintptr(desktophost.EventSystemForeground),
		uintptr(desktophost.EventSystemForeground),
		0,
		winEventCallback,
		0, 0,
		winEventOutOfCtx|winEventSkipOwn,
	)
	if hook == 0 {
		return fmt.Errorf("SetWinEventHook: %v", err)
	}
	w.hook = hook
	return nil
}

func (w *windowsWindow) Handle() desktophost.WindowHandle {
	return desktophost.WindowHandle(w.hwnd)
}

func (w *windowsWindow) Size() (width, height int) {
	var r windows.Rect
	if ok, _, _ := procGetClientRect.Call(w.hwnd, uintptr(unsafe.Pointer(&r))); ok == 0 {
		return 0, 0
	}
	return int(r.Right - r.Left), int(r.Bottom - r.Top)
}

func (w *windowsWindow) SetLevel(level desktophost.WindowLevel) error {
	insertAfter := hwndNoTopmost
	if level == desktophost.LevelAlwaysOnTop {
		insertAfter = uintptr(desktophost.InsertTopmost)
	}
	return w.setWindowPos(insertAfter, desktophost.StackingFlags)
}

func (w *windowsWindow) Reposition(insertAfter desktophost.WindowHandle, flags desktophost.PositionFlags) error {
	return w.setWindowPos(uintptr(insertAfter), flags)
}

func (w *windowsWindow) setWindowPos(insertAfter uintptr, flags desktophost.PositionFlags) error {
	ok, _, err := procSetWindowPos.Call(w.hwnd, insertAfter, 0, 0, 0, 0, uintptr(flags))
	if ok == 0 {
		return fmt.Errorf("SetWindowPos: %v", err)
	}
	return nil
}

func (w *windowsWindow) PrevWindow() (desktophost.WindowHandle, bool) {
	prev, _, _ := procGetWindow.Call(w.hwnd, gwHwndPrev)
	if prev == 0 {
		return 0, false
	}
	return desktophost.WindowHandle(prev), true
}

func workArea() Rect {
	var r windows.Rect
	if ok, _, _ := procSystemParametersInfo.Call(spiGetWorkArea, 0, uintptr(unsafe.Pointer(&r)), 0); ok == 0 {
		return Rect{Width: 1280, Height: 720}
	}
	return Rect{X: int(r.Left), Y: int(r.Top), Width: int(r.Right - r.Left), Height: int(r.Bottom - r.Top)}
}

// gdiSurface draws into a memory DC and blits it to the window on Present.
type gdiSurface struct {
	hwnd   uintptr
	memDC  uintptr
	bitmap uintptr
	font   uintptr

	width      int
	height     int
	lineHeight int
}

func newGDISurface(hwnd uintptr, width, height int) (*gdiSurface, error) {
	memDC, _, err := procCreateCompatibleDC.Call(0)
	if memDC == 0 {
		return nil, fmt.Errorf("CreateCompatibleDC: %v", err)
	}
	s := &gdiSurface{hwnd: hwnd, memDC: memDC}

	s.font, _, _ = procGetStockObject.Call(defaultGUIFont)
	if s.font != 0 {
		procSelectObject.Call(memDC, s.font)
	}
	procSetBkMode.Call(memDC, bkTransparent)

	if err := s.Resize(width, height); err != nil {
		s.Close()
		return nil, err
	}
	s.lineHeight = int(s.extent("Ag").CY) + 2
	return s, nil
}

func (s *gdiSurface) Resize(width, height int) error {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if s.bitmap != 0 && width == s.width && height == s.height {
		return nil
	}

	screenDC, _, _ := procGetDC.Call(s.hwnd)
	bitmap, _, err := procCreateCompatibleBitmap.Call(screenDC, uintptr(width), uintptr(height))
	procReleaseDC.Call(s.hwnd, screenDC)
	if bitmap == 0 {
		return fmt.Errorf("CreateCompatibleBitmap %dx%d: %v", width, height, err)
	}

	procSelectObject.Call(s.memDC, bitmap)
	if s.bitmap != 0 {
		procDeleteObject.Call(s.bitmap)
	}
	s.bitmap = bitmap
	s.width = width
	s.height = height
	return nil
}

func (s *gdiSurface) Canvas() desktophost.Canvas {
	return s
}

func (s *gdiSurface) Size() (width, height int) {
	return s.width, s.height
}

func (s *gdiSurface) Clear(color uint32) {
	s.FillRect(0, 0, s.width, s.height, color)
}

func (s *gdiSurface) FillRect(x, y, width, height int, color uint32) {
	if width <= 0 || height <= 0 {
		return
	}
	brush, _, _ := procCreateSolidBrush.Call(colorRef(color))
	if brush == 0 {
		return
	}
	r := windows.Rect{Left: int32(x), Top: int32(y), Right: int32(x + width), Bottom: int32(y + height)}
	procFillRect.Call(s.memDC, uintptr(unsafe.Pointer(&r)), brush)
	procDeleteObject.Call(brush)
}

func (s *gdiSurface) Text(x, y int, text string, color uint32) {
	utf16, err := windows.UTF16FromString(text)
	if err != nil || len(utf16) <= 1 {
		return
	}
	procSetTextColor.Call(s.memDC, colorRef(color))
	procTextOutW.Call(s.memDC, uintptr(x), uintptr(y), uintptr(unsafe.Pointer(&utf16[0])), uintptr(len(utf16)-1))
}

func (s *gdiSurface) TextWidth(text string) int {
	return int(s.extent(text).CX)
}

func (s *gdiSurface) LineHeight() int {
	return s.lineHeight
}

func (s *gdiSurface) extent(text string) size {
	var sz size
	utf16, err := windows.UTF16FromString(text)
	if err != nil || len(utf16) <= 1 {
		return sz
	}
	procGetTextExtentPoint32W.Call(s.memDC, uintptr(unsafe.Pointer(&utf16[0])), uintptr(len(utf16)-1), uintptr(unsafe.Pointer(&sz)))
	return sz
}

func (s *gdiSurface) Present() error {
	hdc, _, err := procGetDC.Call(s.hwnd)
	if hdc == 0 {
		return fmt.Errorf("GetDC: %v", err)
	}
	defer procReleaseDC.Call(s.hwnd, hdc)

	ok, _, err := procBitBlt.Call(hdc, 0, 0, uintptr(s.width), uintptr(s.height), s.memDC, 0, 0, srcCopy)
	if ok == 0 {
		return fmt.Errorf("BitBlt: %v", err)
	}
	return nil
}

func (s *gdiSurface) Close() {
	if s.bitmap != 0 {
		procDeleteObject.Call(s.bitmap)
		s.bitmap = 0
	}
	if s.memDC != 0 {
		procDeleteDC.Call(s.memDC)
		s.memDC = 0
	}
}

// colorRef converts 0xRRGGBB to a GDI COLORREF (0x00BBGGRR).
func colorRef(rgb uint32) uintptr {
	r := (rgb >> 16) & 0xff
	g := (rgb >> 8) & 0xff
	b := rgb & 0xff
	return uintptr(b<<16 | g<<8 | r)
}
