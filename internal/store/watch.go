package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDelay coalesces bursts of writes (a diskv write is create+rename) into
// one change signal.
const watchDelay = 100 * time.Millisecond

// Watch signals on the returned channel whenever the reminder documents
// change. Signals are coalesced: a pending signal absorbs later ones. The
// channel is closed once ctx is done or the watcher fails.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	if err := watcher.Add(s.basePath); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("store: watch %s: %w", s.basePath, err)
	}

	changes := make(chan struct{}, 1)
	var mu sync.Mutex
	closed := false
	send := func() {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			// A timer fired after shutdown.
			return
		}
		select {
		case changes <- struct{}{}:
		default:
			// A signal is already pending; the consumer reloads everything.
		}
	}

	go func() {
		defer func() {
			mu.Lock()
			closed = true
			close(changes)
			mu.Unlock()
		}()
		defer func() {
			if err := watcher.Close(); err != nil {
				s.logger.Debug("store watcher close", "error", err)
			}
		}()

		throttle := newThrottle(watchDelay, send)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Surface as a change so the consumer resyncs.
				s.logger.Warn("store watcher error", "error", err)
				throttle.Trigger()
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op == fsnotify.Chmod {
					continue
				}
				s.logger.Debug("store changed", "path", evt.Name, "op", evt.Op.String())
				throttle.Trigger()
			}
		}
	}()

	return changes, nil
}

// throttle calls fn once per burst of Trigger calls, delay after the first.
type throttle struct {
	mu    sync.Mutex
	timer *time.Timer
	delay time.Duration
	fn    func()
}

func newThrottle(delay time.Duration, fn func()) *throttle {
	return &throttle{delay: delay, fn: fn}
}

func (t *throttle) Trigger() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		return
	}
	t.timer = time.AfterFunc(t.delay, func() {
		t.mu.Lock()
		t.timer = nil
		t.mu.Unlock()
		t.fn()
	})
}

func (t *throttle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
