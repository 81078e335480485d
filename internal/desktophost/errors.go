package desktophost

import "errors"

var (
	// ErrEventLoopAlreadyCreated is returned by Run when a proxy is already
	// registered for this process.
	ErrEventLoopAlreadyCreated = errors.New("event loop has already been created")
	// ErrWindowCreation is returned by Run when the host window cannot be created.
	ErrWindowCreation = errors.New("failed to create window")
	// ErrRenderInit is returned by Run when the render state cannot be
	// initialized after the loop started. Callers treat it as fatal.
	ErrRenderInit = errors.New("failed to initialize render state")

	// ErrAlreadyRegistered is returned by Registry.Register on every call after the first.
	ErrAlreadyRegistered = errors.New("event proxy already registered")
	// ErrProxyClosed is returned when posting to a loop that has exited.
	ErrProxyClosed = errors.New("event proxy closed")
	// ErrQueueFull is returned when the loop queue has no free slot.
	ErrQueueFull = errors.New("event queue full")
	// ErrClassName is returned by class name readers when the handle is gone.
	ErrClassName = errors.New("failed to read window class name")
)
