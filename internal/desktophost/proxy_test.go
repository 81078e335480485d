package desktophost

import (
	"errors"
	"sync"
	"testing"
)

func TestRegistry_FirstRegistrationWins(t *testing.T) {
	var r Registry
	if _, ok := r.Lookup(); ok {
		t.Fatal("Lookup() before Register returned a proxy")
	}

	first := NewProxy(make(chan Event, 1))
	second := NewProxy(make(chan Event, 1))

	if err := r.Register(first); err != nil {
		t.Fatalf("first Register() error: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := r.Register(second); !errors.Is(err, ErrAlreadyRegistered) {
			t.Fatalf("Register() #%d = %v, want ErrAlreadyRegistered", i+2, err)
		}
	}

	got, ok := r.Lookup()
	if !ok || got != first {
		t.Fatalf("Lookup() = %p, want first proxy %p", got, first)
	}
	if !r.Post(DesktopShown) {
		t.Fatal("Post() through first proxy failed")
	}
}

func TestRegistry_RegisterFromTwoGoroutines(t *testing.T) {
	var r Registry
	a := NewProxy(make(chan Event, 1))
	b := NewProxy(make(chan Event, 1))

	var errA, errB error
	aDone := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		errA = r.Register(a)
		close(aDone)
	}()
	go func() {
		defer wg.Done()
		<-aDone
		errB = r.Register(b)
	}()
	wg.Wait()

	if errA != nil {
		t.Fatalf("first goroutine Register() error: %v", errA)
	}
	if !errors.Is(errB, ErrAlreadyRegistered) {
		t.Fatalf("second goroutine Register() = %v, want ErrAlreadyRegistered", errB)
	}
	if got, _ := r.Lookup(); got != a {
		t.Fatal("registered proxy is not the first one")
	}
}

func TestRegistry_ConcurrentRegisterExactlyOneSucceeds(t *testing.T) {
	var r Registry
	const n = 16

	errs := make([]error, n)
	proxies := make([]*Proxy, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		proxies[i] = NewProxy(make(chan Event, 1))
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = r.Register(proxies[i])
		}(i)
	}
	wg.Wait()

	winners := 0
	var winner *Proxy
	for i, err := range errs {
		if err == nil {
			winners++
			winner = proxies[i]
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want 1", winners)
	}
	if got, _ := r.Lookup(); got != winner {
		t.Fatal("Lookup() does not return the winning proxy")
	}
}

func TestProxy_SendNeverBlocks(t *testing.T) {
	queue := make(chan Event, 1)
	p := NewProxy(queue)

	if err := p.Send(RequestRepaint); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if err := p.Send(WindowEvent{Kind: WindowPointerMoved}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("Send() on full queue = %v, want ErrQueueFull", err)
	}
	if got := <-queue; got != RequestRepaint {
		t.Fatalf("queued = %v, want %v", got, RequestRepaint)
	}

	p.Close()
	if err := p.Send(RequestRepaint); !errors.Is(err, ErrProxyClosed) {
		t.Fatalf("Send() after Close = %v, want ErrProxyClosed", err)
	}
	if err := p.Send(DesktopShown); !errors.Is(err, ErrProxyClosed) {
		t.Fatalf("Send(DesktopShown) after Close = %v, want ErrProxyClosed", err)
	}

	var nilProxy *Proxy
	if err := nilProxy.Send(RequestRepaint); !errors.Is(err, ErrProxyClosed) {
		t.Fatalf("nil Send() = %v, want ErrProxyClosed", err)
	}
}

func TestProxy_PreservesPostOrder(t *testing.T) {
	queue := make(chan Event, 8)
	p := NewProxy(queue)

	want := []Event{
		WindowEvent{Kind: WindowPointerMoved, X: 1, Y: 1},
		WindowEvent{Kind: WindowPointerPressed, X: 4, Y: 2},
		RequestRepaint,
		WindowEvent{Kind: WindowExposed},
	}
	for _, ev := range want {
		if err := p.Send(ev); err != nil {
			t.Fatalf("Send(%v) error: %v", ev, err)
		}
	}
	for i, w := range want {
		if got := <-queue; got != w {
			t.Fatalf("event %d = %v, want %v", i, got, w)
		}
	}
}

func TestProxy_VisibilitySurvivesFullQueue(t *testing.T) {
	queue := make(chan Event, 1)
	p := NewProxy(queue)

	if err := p.Send(RequestRepaint); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	for _, ev := range []HookEvent{DesktopShown, DesktopHidden, DesktopShown} {
		if err := p.Send(ev); err != nil {
			t.Fatalf("Send(%v) with full queue = %v, want nil", ev, err)
		}
	}

	select {
	case <-p.wake:
	default:
		t.Fatal("visibility send did not signal the loop")
	}
	got, ok := p.takeVisibility()
	if !ok || got != DesktopShown {
		t.Fatalf("takeVisibility() = %v, %v; want %v, true", got, ok, DesktopShown)
	}
	if _, ok := p.takeVisibility(); ok {
		t.Fatal("takeVisibility() after drain returned an event")
	}
	if len(queue) != 1 {
		t.Fatalf("queue length = %d, want 1", len(queue))
	}
}
