package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/deskminder/internal/board"
	"github.com/1broseidon/deskminder/internal/reminder"
)

func (s *Server) handleListReminders(ctx context.Context, _ *mcpsdk.CallToolRequest, args ListRemindersInput) (*mcpsdk.CallToolResult, ListRemindersOutput, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, ListRemindersOutput{}, fmt.Errorf("failed to list reminders: %w", err)
	}

	now := s.now()
	out := ListRemindersOutput{Reminders: make([]ReminderInfo, 0, len(all))}
	for _, r := range all {
		if r.Completed && !args.IncludeCompleted {
			continue
		}
		if args.DueToday && !r.DueToday(now) {
			continue
		}
		out.Reminders = append(out.Reminders, infoFor(r, now))
	}
	return nil, out, nil
}

func (s *Server) handleAddReminder(_ context.Context, _ *mcpsdk.CallToolRequest, args AddReminderInput) (*mcpsdk.CallToolResult, ReminderInfo, error) {
	now := s.now()

	spec := strings.TrimSpace(args.Frequency)
	if spec == "" {
		spec = string(reminder.KindOnce) + ":" + now.Format(reminder.DateLayout)
	}
	freq, err := reminder.ParseFrequency(spec)
	if err != nil {
		return nil, ReminderInfo{}, err
	}
	freq.Time, err = reminder.ParseTimeOfDay(args.At, args.From, args.To)
	if err != nil {
		return nil, ReminderInfo{}, err
	}

	r, err := reminder.New(args.Message, freq, now)
	if err != nil {
		return nil, ReminderInfo{}, err
	}
	if err := s.store.Put(r); err != nil {
		return nil, ReminderInfo{}, err
	}

	s.logger.Info("reminder added", "id", r.ID, "frequency", freq.String())
	return nil, infoFor(r, now), nil
}

func (s *Server) handleCompleteReminder(ctx context.Context, _ *mcpsdk.CallToolRequest, args CompleteReminderInput) (*mcpsdk.CallToolResult, ReminderInfo, error) {
	id, err := s.store.Resolve(ctx, args.ID)
	if err != nil {
		return nil, ReminderInfo{}, err
	}
	r, err := s.store.SetCompleted(id, !args.Undo)
	if err != nil {
		return nil, ReminderInfo{}, err
	}

	s.logger.Info("reminder completion changed", "id", id, "completed", r.Completed)
	return nil, infoFor(r, s.now()), nil
}

func (s *Server) handleRemoveReminder(ctx context.Context, _ *mcpsdk.CallToolRequest, args RemoveReminderInput) (*mcpsdk.CallToolResult, RemoveReminderOutput, error) {
	id, err := s.store.Resolve(ctx, args.ID)
	if err != nil {
		return nil, RemoveReminderOutput{}, err
	}
	if err := s.store.Delete(id); err != nil {
		return nil, RemoveReminderOutput{}, err
	}

	s.logger.Info("reminder removed", "id", id)
	return nil, RemoveReminderOutput{ID: id, Removed: true}, nil
}

func infoFor(r *reminder.Reminder, now time.Time) ReminderInfo {
	info := ReminderInfo{
		ID:        r.ID,
		Message:   r.Message,
		Completed: r.Completed,
		Frequency: r.Frequency.String(),
		DueToday:  r.DueToday(now),
		When:      "past",
	}
	if next, ok := r.Next(now); ok {
		info.Next = next.Format(time.RFC3339)
		info.When = board.When(next, r.Frequency.Time.Kind, now)
	}
	return info
}
