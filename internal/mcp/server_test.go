package mcp

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/1broseidon/deskminder/internal/reminder"
	"github.com/1broseidon/deskminder/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "reminders"), nil)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	s := NewServer(st, nil)
	s.now = func() time.Time {
		return time.Date(2026, time.October, 17, 9, 0, 0, 0, time.UTC)
	}
	return s
}

func addReminder(t *testing.T, s *Server, in AddReminderInput) ReminderInfo {
	t.Helper()
	_, info, err := s.handleAddReminder(context.Background(), nil, in)
	if err != nil {
		t.Fatalf("add_reminder(%+v): %v", in, err)
	}
	return info
}

func TestAddReminderDefaultsToOnceToday(t *testing.T) {
	s := newTestServer(t)

	info := addReminder(t, s, AddReminderInput{Message: "call the bank"})
	if info.ID == "" {
		t.Fatalf("expected an id")
	}
	if info.Frequency != "Once on 2026-10-17" {
		t.Fatalf("expected a one-off reminder for today, got %q", info.Frequency)
	}
	if !info.DueToday || info.When != "today" {
		t.Fatalf("expected due today, got %+v", info)
	}
}

func TestAddReminderWithFrequencyAndTime(t *testing.T) {
	s := newTestServer(t)

	info := addReminder(t, s, AddReminderInput{Message: "standup", Frequency: "weekly:weekdays", At: "09:30"})
	// 2026-10-17 is a Saturday; the next weekday is Monday.
	if info.DueToday {
		t.Fatalf("weekday reminder should not be due on a Saturday: %+v", info)
	}
	if info.Next == "" {
		t.Fatalf("expected a next occurrence, got %+v", info)
	}
	next, err := time.Parse(time.RFC3339, info.Next)
	if err != nil {
		t.Fatalf("parse next: %v", err)
	}
	if next.Weekday() != time.Monday || next.Hour() != 9 || next.Minute() != 30 {
		t.Fatalf("expected Monday 09:30, got %v", next)
	}
}

func TestAddReminderRejectsBadInput(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		in   AddReminderInput
		want error
	}{
		{"empty message", AddReminderInput{Message: "  "}, reminder.ErrEmptyMessage},
		{"unknown kind", AddReminderInput{Message: "x", Frequency: "hourly"}, reminder.ErrUnknownKind},
		{"at with range", AddReminderInput{Message: "x", At: "09:00", From: "10:00", To: "11:00"}, reminder.ErrInvalidTime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := s.handleAddReminder(context.Background(), nil, tt.in)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestListRemindersHidesCompletedByDefault(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	done := addReminder(t, s, AddReminderInput{Message: "done already", Frequency: "daily"})
	addReminder(t, s, AddReminderInput{Message: "still pending", Frequency: "daily"})

	if _, _, err := s.handleCompleteReminder(ctx, nil, CompleteReminderInput{ID: done.ID}); err != nil {
		t.Fatalf("complete_reminder: %v", err)
	}

	_, out, err := s.handleListReminders(ctx, nil, ListRemindersInput{})
	if err != nil {
		t.Fatalf("list_reminders: %v", err)
	}
	if len(out.Reminders) != 1 || out.Reminders[0].Message != "still pending" {
		t.Fatalf("expected only the pending reminder, got %+v", out.Reminders)
	}

	_, out, err = s.handleListReminders(ctx, nil, ListRemindersInput{IncludeCompleted: true})
	if err != nil {
		t.Fatalf("list_reminders: %v", err)
	}
	if len(out.Reminders) != 2 {
		t.Fatalf("expected both reminders, got %+v", out.Reminders)
	}
}

func TestListRemindersDueToday(t *testing.T) {
	s := newTestServer(t)

	addReminder(t, s, AddReminderInput{Message: "weekend chores", Frequency: "weekly:weekends"})
	addReminder(t, s, AddReminderInput{Message: "weekday standup", Frequency: "weekly:weekdays"})

	_, out, err := s.handleListReminders(context.Background(), nil, ListRemindersInput{DueToday: true})
	if err != nil {
		t.Fatalf("list_reminders: %v", err)
	}
	if len(out.Reminders) != 1 || out.Reminders[0].Message != "weekend chores" {
		t.Fatalf("expected only the weekend reminder on a Saturday, got %+v", out.Reminders)
	}
}

func TestCompleteReminderUndoAndPrefix(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	info := addReminder(t, s, AddReminderInput{Message: "stretch", Frequency: "daily"})
	prefix := info.ID[:20]

	_, got, err := s.handleCompleteReminder(ctx, nil, CompleteReminderInput{ID: prefix})
	if err != nil {
		t.Fatalf("complete_reminder: %v", err)
	}
	if !got.Completed {
		t.Fatalf("expected completed, got %+v", got)
	}

	_, got, err = s.handleCompleteReminder(ctx, nil, CompleteReminderInput{ID: info.ID, Undo: true})
	if err != nil {
		t.Fatalf("complete_reminder undo: %v", err)
	}
	if got.Completed {
		t.Fatalf("expected pending after undo, got %+v", got)
	}
}

func TestRemoveReminder(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	info := addReminder(t, s, AddReminderInput{Message: "temporary", Frequency: "daily"})

	_, out, err := s.handleRemoveReminder(ctx, nil, RemoveReminderInput{ID: info.ID})
	if err != nil {
		t.Fatalf("remove_reminder: %v", err)
	}
	if !out.Removed || out.ID != info.ID {
		t.Fatalf("unexpected output %+v", out)
	}

	_, _, err = s.handleRemoveReminder(ctx, nil, RemoveReminderInput{ID: info.ID})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second removal, got %v", err)
	}
}
