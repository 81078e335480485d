package desktophost

import (
	"sync"
	"sync/atomic"
)

// Proxy posts events into a main loop queue from any goroutine or OS thread.
// Send never blocks: a full queue or a closed loop is reported as an error and
// the event is dropped. DesktopShown and DesktopHidden bypass the queue and
// land in a single latest-wins slot, so they survive a flood of native events.
type Proxy struct {
	mu     sync.Mutex
	queue  chan<- Event
	closed bool

	// Pending visibility as HookEvent+1; zero means empty.
	visibility atomic.Int32
	wake       chan struct{}
}

// NewProxy returns a proxy for the given queue.
func NewProxy(queue chan<- Event) *Proxy {
	return &Proxy{queue: queue, wake: make(chan struct{}, 1)}
}

// Send enqueues ev without blocking.
func (p *Proxy) Send(ev Event) error {
	if p == nil {
		return ErrProxyClosed
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrProxyClosed
	}
	if hook, ok := ev.(HookEvent); ok && (hook == DesktopShown || hook == DesktopHidden) {
		p.visibility.Store(int32(hook) + 1)
		select {
		case p.wake <- struct{}{}:
		default:
		}
		return nil
	}
	select {
	case p.queue <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

// takeVisibility returns and clears the pending visibility event.
func (p *Proxy) takeVisibility() (HookEvent, bool) {
	if p == nil {
		return 0, false
	}
	v := p.visibility.Swap(0)
	if v == 0 {
		return 0, false
	}
	return HookEvent(v - 1), true
}

// Close marks the receiving loop as gone. Subsequent sends fail with
// ErrProxyClosed. The queue channel itself is owned by the loop and is never
// closed here.
func (p *Proxy) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}

// Registry is a write-once slot holding the proxy of the running main loop.
// The foreground hook has no context pointer back to the loop, so it finds
// the proxy through a process-wide Registry.
type Registry struct {
	proxy atomic.Pointer[Proxy]
}

// Register stores p if nothing is registered yet. The first registration
// always wins; later calls return ErrAlreadyRegistered and change nothing.
func (r *Registry) Register(p *Proxy) error {
	if p == nil {
		return ErrProxyClosed
	}
	if !r.proxy.CompareAndSwap(nil, p) {
		return ErrAlreadyRegistered
	}
	return nil
}

// Lookup returns the registered proxy, if any. It never blocks.
func (r *Registry) Lookup() (*Proxy, bool) {
	p := r.proxy.Load()
	return p, p != nil
}

// Post sends ev through the registered proxy. Returns false when nothing is
// registered or the send failed.
func (r *Registry) Post(ev Event) bool {
	p, ok := r.Lookup()
	if !ok {
		return false
	}
	return p.Send(ev) == nil
}

var processRegistry Registry

// ProcessRegistry returns the process-wide registry used by the OS hook
// trampolines.
func ProcessRegistry() *Registry {
	return &processRegistry
}
