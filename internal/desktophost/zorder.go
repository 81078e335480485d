package desktophost

import "log/slog"

// DefaultMaxZOrderSteps caps the Shown-state walk when no limit is configured.
const DefaultMaxZOrderSteps = 64

// ZOrderEnforcer forces the host window's stacking position to match the
// desktop visibility. It runs once per loop tick because no window system
// offers a persistent "pin to background" primitive.
type ZOrderEnforcer struct {
	win      Stacker
	maxSteps int
	logger   *slog.Logger

	passes uint64
}

// NewZOrderEnforcer creates an enforcer for win.
func NewZOrderEnforcer(win Stacker, maxSteps int, logger *slog.Logger) *ZOrderEnforcer {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxZOrderSteps
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ZOrderEnforcer{win: win, maxSteps: maxSteps, logger: logger}
}

// Passes returns how many times Enforce has run.
func (e *ZOrderEnforcer) Passes() uint64 {
	return e.passes
}

// Enforce repositions the window for visibility v and returns the number of
// walk steps taken (always 0 when hidden).
func (e *ZOrderEnforcer) Enforce(v Visibility) int {
	e.passes++

	if v != Shown {
		if err := e.win.SetLevel(LevelAlwaysOnBottom); err != nil {
			e.logger.Debug("set window level failed", "level", LevelAlwaysOnBottom, "error", err)
		}
		if err := e.win.Reposition(InsertBottom, StackingFlags); err != nil {
			e.logger.Debug("reposition to bottom failed", "error", err)
		}
		return 0
	}

	if err := e.win.SetLevel(LevelAlwaysOnTop); err != nil {
		e.logger.Debug("set window level failed", "level", LevelAlwaysOnTop, "error", err)
	}
	if err := e.win.Reposition(InsertTopmost, StackingFlags); err != nil {
		e.logger.Debug("reposition to topmost failed", "error", err)
	}

	// Each step must see a window it has not seen before, so the walk ends
	// within the number of open windows even if every reposition succeeds.
	visited := make(map[WindowHandle]struct{})
	steps := 0
	for steps < e.maxSteps {
		prev, ok := e.win.PrevWindow()
		if !ok {
			break
		}
		if _, seen := visited[prev]; seen {
			break
		}
		visited[prev] = struct{}{}
		steps++

		if err := e.win.Reposition(prev, StackingFlags); err != nil {
			// Lost the stacking race against another window.
			e.logger.Debug("z-order walk stopped", "after", uintptr(prev), "steps", steps, "error", err)
			break
		}
	}
	return steps
}
