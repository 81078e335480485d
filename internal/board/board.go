// Package board renders the reminder list inside the desktop host window.
package board

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/1broseidon/deskminder/internal/desktophost"
	"github.com/1broseidon/deskminder/internal/reminder"
)

const (
	padding     = 12
	rowGap      = 6
	checkboxW   = 24
	ellipsis    = "..."
	refreshTick = time.Minute
)

// Store is the subset of the reminder store the board needs.
type Store interface {
	List(ctx context.Context) ([]*reminder.Reminder, error)
	SetCompleted(id string, completed bool) (*reminder.Reminder, error)
}

// Poster posts events into the host loop. *desktophost.Registry satisfies it.
type Poster interface {
	Post(ev desktophost.Event) bool
}

// Theme holds the board colors as 0xRRGGBB.
type Theme struct {
	Background uint32
	Foreground uint32
	Accent     uint32
	Muted      uint32
}

// row is the hit box of one rendered reminder.
type row struct {
	id        string
	completed bool
	top       int
	bottom    int
}

// Board implements desktophost.UI. Render and HandleEvent run on the host
// loop; Reload may run on any goroutine.
type Board struct {
	store  Store
	theme  Theme
	logger *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	reminders []*reminder.Reminder
	loadErr   error
	rows      []row
	hover     string

	// First visible row and its upper bound from the last frame.
	scroll    int
	maxScroll int
}

// New creates a board over store. Call Reload before the first frame.
func New(store Store, theme Theme, logger *slog.Logger) *Board {
	if logger == nil {
		logger = slog.Default()
	}
	return &Board{
		store:  store,
		theme:  theme,
		logger: logger,
		now:    time.Now,
	}
}

// Reload re-reads the reminders from the store.
func (b *Board) Reload(ctx context.Context) error {
	list, err := b.store.List(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.loadErr = err
	if err != nil {
		return fmt.Errorf("failed to load reminders: %w", err)
	}
	b.reminders = list
	return nil
}

// Count returns the number of loaded reminders.
func (b *Board) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.reminders)
}

// Run keeps the board fresh until ctx is done: relative times are refreshed
// every minute and the list is reloaded on each store change. Both post
// RequestRepaint through poster.
func (b *Board) Run(ctx context.Context, poster Poster, changes <-chan struct{}) {
	ticker := time.NewTicker(refreshTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			poster.Post(desktophost.RequestRepaint)
		case _, ok := <-changes:
			if !ok {
				// Watcher gone; keep the minute refresh.
				changes = nil
				continue
			}
			if err := b.Reload(ctx); err != nil {
				b.logger.Warn("reload after store change failed", "error", err)
			}
			poster.Post(desktophost.RequestRepaint)
		}
	}
}

// HandleEvent toggles completion on click, scrolls on the wheel and tracks
// the hovered row.
func (b *Board) HandleEvent(ev desktophost.WindowEvent) bool {
	switch ev.Kind {
	case desktophost.WindowScrolled:
		b.mu.Lock()
		defer b.mu.Unlock()
		next := min(max(b.scroll+ev.Scroll, 0), b.maxScroll)
		if next == b.scroll {
			return false
		}
		b.scroll = next
		return true
	case desktophost.WindowPointerPressed:
		if ev.Button != 0 && ev.Button != 1 {
			return false
		}
		r, ok := b.rowAt(ev.Y)
		if !ok {
			return false
		}
		return b.toggle(r)
	case desktophost.WindowPointerMoved:
		id := ""
		if r, ok := b.rowAt(ev.Y); ok {
			id = r.id
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		if id == b.hover {
			return false
		}
		b.hover = id
		return true
	}
	return false
}

func (b *Board) rowAt(y int) (row, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range b.rows {
		if y >= r.top && y < r.bottom {
			return r, true
		}
	}
	return row{}, false
}

func (b *Board) toggle(r row) bool {
	updated, err := b.store.SetCompleted(r.id, !r.completed)
	if err != nil {
		b.logger.Warn("failed to toggle reminder", "id", r.id, "error", err)
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, rem := range b.reminders {
		if rem.ID == updated.ID {
			b.reminders[i] = updated
		}
	}
	b.logger.Info("reminder toggled", "id", updated.ID, "completed", updated.Completed)
	return true
}

// Render draws the title and the visible slice of the list, pending
// reminders first and completed ones last.
func (b *Board) Render(c desktophost.Canvas) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	width, height := c.Size()
	lh := c.LineHeight()
	maxText := width - 2*padding - checkboxW

	c.Clear(b.theme.Background)

	y := padding
	c.Text(padding, y, now.Format("Monday, Jan 2"), b.theme.Accent)
	y += lh + rowGap
	c.FillRect(padding, y, width-2*padding, 1, b.theme.Muted)
	y += rowGap

	b.rows = b.rows[:0]
	b.maxScroll = 0
	if b.loadErr != nil {
		c.Text(padding, y, truncate(c, "reminders unavailable: "+b.loadErr.Error(), width-2*padding), b.theme.Muted)
		return
	}
	if len(b.reminders) == 0 {
		c.Text(padding, y, "No reminders", b.theme.Muted)
		return
	}

	ordered := make([]*reminder.Reminder, 0, len(b.reminders))
	for _, completed := range []bool{false, true} {
		for _, rem := range b.reminders {
			if rem.Completed == completed {
				ordered = append(ordered, rem)
			}
		}
	}

	bottom := height - padding
	fit := rowsFitting(y, bottom, lh)
	if len(ordered) > fit {
		// Leave a line for the overflow note.
		fit = rowsFitting(y, bottom-lh, lh)
	}
	b.maxScroll = max(len(ordered)-fit, 0)
	b.scroll = min(max(b.scroll, 0), b.maxScroll)
	end := min(b.scroll+fit, len(ordered))

	for _, rem := range ordered[b.scroll:end] {
		top := y

		fg, sub := b.theme.Foreground, b.theme.Muted
		mark := "[ ]"
		if rem.Completed {
			fg = b.theme.Muted
			mark = "[x]"
		}
		markColor := fg
		if rem.ID == b.hover {
			markColor = b.theme.Accent
		}

		c.Text(padding, y, mark, markColor)
		c.Text(padding+checkboxW, y, truncate(c, rem.Message, maxText), fg)
		y += lh
		c.Text(padding+checkboxW, y, truncate(c, Describe(rem, now), maxText), sub)
		y += lh + rowGap

		b.rows = append(b.rows, row{id: rem.ID, completed: rem.Completed, top: top, bottom: y})
	}

	if note := overflowNote(b.scroll, len(ordered)-end); note != "" {
		c.Text(padding, y, note, b.theme.Muted)
	}
}

// rowsFitting returns how many two-line rows fit between top and bottom.
func rowsFitting(top, bottom, lh int) int {
	if bottom-top < 2*lh {
		return 0
	}
	return (bottom-top-2*lh)/(2*lh+rowGap) + 1
}

func overflowNote(above, below int) string {
	switch {
	case above > 0 && below > 0:
		return fmt.Sprintf("+%d more, %d above", below, above)
	case below > 0:
		return fmt.Sprintf("+%d more", below)
	case above > 0:
		return fmt.Sprintf("%d above", above)
	}
	return ""
}

// Describe returns the frequency and the humanized next occurrence.
func Describe(r *reminder.Reminder, now time.Time) string {
	freq := r.Frequency.String()
	if r.Completed {
		return freq + " - done"
	}
	next, ok := r.Next(now)
	if !ok {
		return freq + " - past"
	}
	return freq + " - " + When(next, r.Frequency.Time.Kind, now)
}

// When formats an occurrence relative to now.
func When(next time.Time, kind reminder.TimeKind, now time.Time) string {
	if sameDay(next, now) {
		if kind == reminder.TimeAllDay || kind == "" {
			return "today"
		}
		return humanize.RelTime(now, next, "from now", "ago")
	}
	if sameDay(next, now.AddDate(0, 0, 1)) {
		return "tomorrow"
	}
	return humanize.RelTime(now, next, "from now", "ago")
}

func sameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func truncate(c desktophost.Canvas, s string, max int) string {
	if max <= 0 || c.TextWidth(s) <= max {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		out := string(runes) + ellipsis
		if c.TextWidth(out) <= max {
			return out
		}
	}
	return ellipsis
}
