package desktophost

import (
	"sync"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		className string
		want      HookEvent
	}{
		{"WorkerW", DesktopShown},
		{"Chrome_WidgetWin_1", DesktopHidden},
		{"workerw", DesktopHidden},
		{"WorkerW ", DesktopHidden},
		{"Progman", DesktopHidden},
		{"", DesktopHidden},
	}
	for _, tt := range tests {
		if got := Classify(tt.className, DefaultDesktopClass); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.className, got, tt.want)
		}
	}
}

func newListenerFixture(classes fakeClassNames) (*ForegroundListener, *Registry, chan Event) {
	reg := &Registry{}
	queue := make(chan Event, 8)
	_ = reg.Register(NewProxy(queue))
	return NewForegroundListener(classes, "", reg, discardLogger()), reg, queue
}

func TestForegroundListener_PostsClassifiedEvent(t *testing.T) {
	l, _, queue := newListenerFixture(fakeClassNames{1: "WorkerW", 2: "Chrome_WidgetWin_1"})

	l.HandleEvent(EventSystemForeground, 1)
	l.HandleEvent(EventSystemForeground, 2)

	if got := <-queue; got != DesktopShown {
		t.Fatalf("first event = %v, want %v", got, DesktopShown)
	}
	if got := <-queue; got != DesktopHidden {
		t.Fatalf("second event = %v, want %v", got, DesktopHidden)
	}
}

func TestForegroundListener_IgnoresOtherEventCodes(t *testing.T) {
	l, _, queue := newListenerFixture(fakeClassNames{1: "WorkerW"})

	l.HandleEvent(0x8005, 1) // EVENT_OBJECT_FOCUS
	l.HandleEvent(0x0016, 1) // EVENT_SYSTEM_MINIMIZESTART

	if n := len(queue); n != 0 {
		t.Fatalf("queued %d events, want 0", n)
	}
}

func TestForegroundListener_DestroyedWindowEnqueuesNothing(t *testing.T) {
	l, _, queue := newListenerFixture(fakeClassNames{})

	l.HandleEvent(EventSystemForeground, 0xdead)

	if n := len(queue); n != 0 {
		t.Fatalf("queued %d events, want 0", n)
	}
}

func TestForegroundListener_InvalidUTF8Dropped(t *testing.T) {
	l, _, queue := newListenerFixture(fakeClassNames{1: "Worker\xffW"})

	l.HandleEvent(EventSystemForeground, 1)

	if n := len(queue); n != 0 {
		t.Fatalf("queued %d events, want 0", n)
	}
}

func TestForegroundListener_NoProxyRegistered(t *testing.T) {
	l := NewForegroundListener(fakeClassNames{1: "WorkerW"}, "", &Registry{}, discardLogger())

	// Startup race: must simply drop the event.
	l.HandleEvent(EventSystemForeground, 1)
}

func TestForegroundListener_ClosedAndFullProxyAreSwallowed(t *testing.T) {
	reg := &Registry{}
	queue := make(chan Event, 1)
	proxy := NewProxy(queue)
	_ = reg.Register(proxy)
	l := NewForegroundListener(fakeClassNames{1: "WorkerW"}, "", reg, discardLogger())

	l.HandleEvent(EventSystemForeground, 1)
	l.HandleEvent(EventSystemForeground, 1) // queue full
	proxy.Close()
	l.HandleEvent(EventSystemForeground, 1) // receiver gone

	if n := len(queue); n != 1 {
		t.Fatalf("queued %d events, want 1", n)
	}
}

type panickingClassNames struct{}

func (panickingClassNames) ClassName(WindowHandle) (string, error) {
	panic("boom")
}

func TestForegroundListener_RecoversPanics(t *testing.T) {
	reg := &Registry{}
	_ = reg.Register(NewProxy(make(chan Event, 1)))
	l := NewForegroundListener(panickingClassNames{}, "", reg, discardLogger())

	l.HandleEvent(EventSystemForeground, 1)
}

func TestForegroundListener_CustomDesktopClass(t *testing.T) {
	reg := &Registry{}
	queue := make(chan Event, 2)
	_ = reg.Register(NewProxy(queue))
	l := NewForegroundListener(fakeClassNames{1: "desktop_window", 2: "WorkerW"}, "desktop_window", reg, discardLogger())

	l.HandleEvent(EventSystemForeground, 1)
	l.HandleEvent(EventSystemForeground, 2)

	if got := <-queue; got != DesktopShown {
		t.Fatalf("first event = %v, want %v", got, DesktopShown)
	}
	if got := <-queue; got != DesktopHidden {
		t.Fatalf("second event = %v, want %v", got, DesktopHidden)
	}
}

func TestForegroundListener_ConcurrentInvocations(t *testing.T) {
	reg := &Registry{}
	queue := make(chan Event, 256)
	_ = reg.Register(NewProxy(queue))
	l := NewForegroundListener(fakeClassNames{1: "WorkerW", 2: "Notepad"}, "", reg, discardLogger())

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.HandleEvent(EventSystemForeground, WindowHandle(1+i%2))
		}(i)
	}
	wg.Wait()

	if n := len(queue); n != 100 {
		t.Fatalf("queued %d events, want 100", n)
	}
}
