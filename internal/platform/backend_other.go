//go:build !linux && !windows

package platform

import (
	"github.com/1broseidon/deskminder/internal/desktophost"
)

// otherBackend lets the CLI run on systems without a window backend. Every
// window operation fails with ErrUnsupportedPlatform.
type otherBackend struct{}

var _ Backend = otherBackend{}

// New returns a backend that cannot create windows.
func New(opts Options) (Backend, error) {
	return otherBackend{}, nil
}

func (otherBackend) ClassName(desktophost.WindowHandle) (string, error) {
	return "", ErrUnsupportedPlatform
}

func (otherBackend) CreateWindow(desktophost.WindowOptions, *desktophost.Proxy) (desktophost.Window, error) {
	return nil, ErrUnsupportedPlatform
}

func (otherBackend) InstallForegroundHook(*desktophost.ForegroundListener) error {
	return ErrUnsupportedPlatform
}

func (otherBackend) Painter() desktophost.Painter {
	return desktophost.PainterFunc(func(desktophost.Window) (desktophost.RenderState, error) {
		return nil, ErrUnsupportedPlatform
	})
}

func (otherBackend) Close() {}
