package desktophost

import "testing"

func TestZOrderEnforcer_HiddenGoesToBottom(t *testing.T) {
	w := &fakeWindow{prevs: []WindowHandle{10, 11}}
	e := NewZOrderEnforcer(w, 0, discardLogger())

	if steps := e.Enforce(Hidden); steps != 0 {
		t.Fatalf("Enforce(Hidden) steps = %d, want 0", steps)
	}
	if len(w.levels) != 1 || w.levels[0] != LevelAlwaysOnBottom {
		t.Fatalf("levels = %v, want [%v]", w.levels, LevelAlwaysOnBottom)
	}
	if len(w.repositions) != 1 || w.repositions[0].after != InsertBottom {
		t.Fatalf("repositions = %+v, want single InsertBottom", w.repositions)
	}
	if w.prevCalls != 0 {
		t.Fatalf("PrevWindow called %d times while hidden", w.prevCalls)
	}
}

func TestZOrderEnforcer_ShownWalksPreviousWindows(t *testing.T) {
	w := &fakeWindow{prevs: []WindowHandle{10, 11, 12}}
	e := NewZOrderEnforcer(w, 0, discardLogger())

	if steps := e.Enforce(Shown); steps != 3 {
		t.Fatalf("Enforce(Shown) steps = %d, want 3", steps)
	}
	if len(w.levels) != 1 || w.levels[0] != LevelAlwaysOnTop {
		t.Fatalf("levels = %v, want [%v]", w.levels, LevelAlwaysOnTop)
	}

	want := []WindowHandle{InsertTopmost, 10, 11, 12}
	if len(w.repositions) != len(want) {
		t.Fatalf("got %d repositions, want %d", len(w.repositions), len(want))
	}
	for i, h := range want {
		if w.repositions[i].after != h {
			t.Errorf("reposition %d after = %#x, want %#x", i, w.repositions[i].after, h)
		}
	}
}

func TestZOrderEnforcer_NeverMovesOrResizes(t *testing.T) {
	w := &fakeWindow{prevs: []WindowHandle{10, 11}}
	e := NewZOrderEnforcer(w, 0, discardLogger())

	e.Enforce(Shown)
	e.Enforce(Hidden)
	e.Enforce(Shown)

	for i, c := range w.repositions {
		if !c.flags.Has(PosNoMove) || !c.flags.Has(PosNoSize) {
			t.Errorf("reposition %d flags = %#x, missing NoMove|NoSize", i, uint32(c.flags))
		}
		if c.flags != StackingFlags {
			t.Errorf("reposition %d flags = %#x, want %#x", i, uint32(c.flags), uint32(StackingFlags))
		}
	}
}

func TestZOrderEnforcer_CycleTerminates(t *testing.T) {
	w := &fakeWindow{prevs: []WindowHandle{10, 11, 12}, cycle: true}
	e := NewZOrderEnforcer(w, 1000, discardLogger())

	steps := e.Enforce(Shown)
	if steps != 3 {
		t.Fatalf("steps = %d, want 3 (distinct windows)", steps)
	}
	if w.prevCalls != 4 {
		t.Fatalf("PrevWindow calls = %d, want 4", w.prevCalls)
	}
}

func TestZOrderEnforcer_FailureStopsWalk(t *testing.T) {
	w := &fakeWindow{
		prevs:     []WindowHandle{10, 11, 12},
		failAfter: map[WindowHandle]bool{11: true},
	}
	e := NewZOrderEnforcer(w, 0, discardLogger())

	if steps := e.Enforce(Shown); steps != 2 {
		t.Fatalf("steps = %d, want 2", steps)
	}
	last := w.repositions[len(w.repositions)-1]
	if last.after != 11 {
		t.Fatalf("last reposition after = %#x, want 0xb", last.after)
	}
}

func TestZOrderEnforcer_RespectsMaxSteps(t *testing.T) {
	prevs := make([]WindowHandle, 100)
	for i := range prevs {
		prevs[i] = WindowHandle(1000 + i)
	}
	w := &fakeWindow{prevs: prevs}
	e := NewZOrderEnforcer(w, 5, discardLogger())

	if steps := e.Enforce(Shown); steps != 5 {
		t.Fatalf("steps = %d, want 5", steps)
	}
}

func TestZOrderEnforcer_CountsPasses(t *testing.T) {
	w := &fakeWindow{}
	e := NewZOrderEnforcer(w, 0, discardLogger())

	for i := 0; i < 4; i++ {
		e.Enforce(Visibility(i % 2))
	}
	if got := e.Passes(); got != 4 {
		t.Fatalf("Passes() = %d, want 4", got)
	}
}
