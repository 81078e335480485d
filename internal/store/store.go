// Package store persists reminders as one JSON document per reminder.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/peterbourgon/diskv/v3"

	"github.com/1broseidon/deskminder/internal/reminder"
)

var (
	ErrNotFound  = errors.New("reminder not found")
	ErrAmbiguous = errors.New("reminder id prefix is ambiguous")
)

// Store is a diskv-backed reminder store. Several processes (the widget, the
// CLI, the MCP server) may share one base path.
type Store struct {
	d        *diskv.Diskv
	basePath string
	logger   *slog.Logger
	now      func() time.Time
}

// Open creates the base path if needed and returns a store over it.
func Open(basePath string, logger *slog.Logger) (*Store, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, errors.New("store: base path is empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	basePath = filepath.Clean(basePath)
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}

	return &Store{
		d: diskv.New(diskv.Options{
			BasePath:  basePath,
			Transform: func(string) []string { return nil },
			// Writes land through a sibling temp dir so readers and the
			// watcher never see a partial document.
			TempDir: basePath + ".tmp",
			// No cache: other processes write the same directory.
			CacheSizeMax: 0,
		}),
		basePath: basePath,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// BasePath returns the directory holding the reminder documents.
func (s *Store) BasePath() string {
	return s.basePath
}

func (s *Store) read(key string) (*reminder.Reminder, error) {
	val, err := s.d.Read(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, err
	}
	var r reminder.Reminder
	if err := json.Unmarshal(val, &r); err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	r.ID = key
	return &r, nil
}

// List returns every reminder ordered by next occurrence, then ID. Reminders
// without a next occurrence come last. Unreadable documents are logged and
// skipped.
func (s *Store) List(ctx context.Context) ([]*reminder.Reminder, error) {
	var all []*reminder.Reminder
	for key := range s.d.Keys(ctx.Done()) {
		if !validKey(key) {
			continue
		}
		r, err := s.read(key)
		if err != nil {
			s.logger.Warn("skipping unreadable reminder", "key", key, "error", err)
			continue
		}
		all = append(all, r)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sortReminders(all, s.now())
	return all, nil
}

// Get returns the reminder with the given ID.
func (s *Store) Get(id string) (*reminder.Reminder, error) {
	if !validKey(id) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.read(id)
}

// Put validates and writes r, replacing any reminder with the same ID.
func (s *Store) Put(r *reminder.Reminder) error {
	if r == nil {
		return errors.New("store: nil reminder")
	}
	if err := r.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	if err := s.d.Write(r.ID, data); err != nil {
		return fmt.Errorf("store: write %s: %w", r.ID, err)
	}
	return nil
}

// Delete removes the reminder with the given ID.
func (s *Store) Delete(id string) error {
	if !validKey(id) || !s.d.Has(id) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := s.d.Erase(id); err != nil {
		return fmt.Errorf("store: erase %s: %w", id, err)
	}
	return nil
}

// SetCompleted marks the reminder completed or pending and returns it.
func (s *Store) SetCompleted(id string, completed bool) (*reminder.Reminder, error) {
	r, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if r.Completed == completed {
		return r, nil
	}
	r.Completed = completed
	if err := s.Put(r); err != nil {
		return nil, err
	}
	return r, nil
}

// Resolve expands a case-insensitive ID prefix to a full ID.
func (s *Store) Resolve(ctx context.Context, prefix string) (string, error) {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		return "", fmt.Errorf("%w: empty id", ErrNotFound)
	}
	if validKey(prefix) && s.d.Has(prefix) {
		return prefix, nil
	}

	var matches []string
	for key := range s.d.KeysPrefix(prefix, ctx.Done()) {
		if validKey(key) {
			matches = append(matches, key)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, prefix)
	case 1:
		return matches[0], nil
	default:
		sort.Strings(matches)
		return "", fmt.Errorf("%w: %s matches %s", ErrAmbiguous, prefix, strings.Join(matches, ", "))
	}
}

func validKey(key string) bool {
	_, err := ulid.ParseStrict(key)
	return err == nil
}

func sortReminders(all []*reminder.Reminder, now time.Time) {
	type keyed struct {
		r    *reminder.Reminder
		next time.Time
		ok   bool
	}
	keys := make([]keyed, len(all))
	for i, r := range all {
		next, ok := r.Next(now)
		keys[i] = keyed{r: r, next: next, ok: ok}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.ok != b.ok {
			return a.ok
		}
		if a.ok && !a.next.Equal(b.next) {
			return a.next.Before(b.next)
		}
		return a.r.ID < b.r.ID
	})
	for i := range keys {
		all[i] = keys[i].r
	}
}
