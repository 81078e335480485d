// Package reminder defines the reminder data model and its recurrence rules.
package reminder

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Validation errors.
var (
	ErrEmptyID       = errors.New("id cannot be empty")
	ErrEmptyMessage  = errors.New("message cannot be empty")
	ErrUnknownKind   = errors.New("unknown frequency kind")
	ErrInvalidDate   = errors.New("invalid date")
	ErrNoDays        = errors.New("weekly frequency needs at least one day")
	ErrNoDates       = errors.New("frequency needs at least one date")
	ErrInvalidTime   = errors.New("invalid time of day")
	ErrInvalidFormat = errors.New("invalid frequency")
)

// Reminder is a potentially recurring reminder.
type Reminder struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Completed bool      `json:"completed"`
	Frequency Frequency `json:"frequency"`
	CreatedAt time.Time `json:"created_at"`
}

// New creates a reminder with a generated ULID.
func New(message string, freq Frequency, now time.Time) (*Reminder, error) {
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ULID: %w", err)
	}

	r := &Reminder{
		ID:        id.String(),
		Message:   strings.TrimSpace(message),
		Frequency: freq,
		CreatedAt: now.UTC(),
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks that the reminder has all required fields.
func (r *Reminder) Validate() error {
	if r.ID == "" {
		return ErrEmptyID
	}
	if _, err := ulid.ParseStrict(r.ID); err != nil {
		return fmt.Errorf("invalid id %q: %w", r.ID, err)
	}
	if strings.TrimSpace(r.Message) == "" {
		return ErrEmptyMessage
	}
	return r.Frequency.Validate()
}

// Next returns the next occurrence at or after the start of now's day.
func (r *Reminder) Next(now time.Time) (time.Time, bool) {
	return r.Frequency.Next(now)
}

// DueToday reports whether the reminder occurs on now's calendar day.
func (r *Reminder) DueToday(now time.Time) bool {
	next, ok := r.Next(now)
	if !ok {
		return false
	}
	y1, m1, d1 := next.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
