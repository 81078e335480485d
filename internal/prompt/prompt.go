// Package prompt collects reminder fields interactively on a terminal.
package prompt

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/1broseidon/deskminder/internal/reminder"
)

// ErrNotTerminal is returned when stdin or stdout is not a terminal.
var ErrNotTerminal = errors.New("interactive mode requires a terminal")

// ErrAborted is returned when the user cancels the form.
var ErrAborted = errors.New("aborted")

// Time modes offered by the form.
const (
	TimeModeAllDay = "all_day"
	TimeModeAt     = "at"
	TimeModeRange  = "range"
)

// Answers holds the raw form values.
type Answers struct {
	Message  string
	Kind     string
	Arg      string
	TimeMode string
	At       string
	From     string
	To       string
}

// FrequencySpec renders the answers in the frequency grammar accepted by
// reminder.ParseFrequency.
func (a Answers) FrequencySpec() string {
	kind := strings.TrimSpace(a.Kind)
	arg := strings.TrimSpace(a.Arg)
	if kind == string(reminder.KindDaily) || arg == "" {
		return kind
	}
	return kind + ":" + arg
}

// Frequency builds the frequency, including its time of day, from the answers.
func (a Answers) Frequency() (reminder.Frequency, error) {
	freq, err := reminder.ParseFrequency(a.FrequencySpec())
	if err != nil {
		return reminder.Frequency{}, err
	}
	var at, from, to string
	switch a.TimeMode {
	case TimeModeAt:
		at = a.At
	case TimeModeRange:
		from, to = a.From, a.To
	}
	freq.Time, err = reminder.ParseTimeOfDay(at, from, to)
	if err != nil {
		return reminder.Frequency{}, err
	}
	return freq, nil
}

// IsInteractive reports whether both stdin and stdout are terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// AskReminder runs the add form. initial pre-fills the fields; an empty kind
// defaults to a one-off reminder for today.
func AskReminder(initial Answers, now time.Time) (Answers, error) {
	if !IsInteractive() {
		return Answers{}, ErrNotTerminal
	}

	a := initial
	if a.Kind == "" {
		a.Kind = string(reminder.KindOnce)
		if a.Arg == "" {
			a.Arg = now.Format(reminder.DateLayout)
		}
	}
	if a.TimeMode == "" {
		a.TimeMode = TimeModeAllDay
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Reminder").
				Placeholder("water the plants").
				Value(&a.Message).
				Validate(validateMessage),
			huh.NewSelect[string]().
				Title("Repeats").
				Options(
					huh.NewOption("Once", string(reminder.KindOnce)),
					huh.NewOption("Daily", string(reminder.KindDaily)),
					huh.NewOption("Weekly", string(reminder.KindWeekly)),
					huh.NewOption("Monthly", string(reminder.KindMonthly)),
					huh.NewOption("Yearly", string(reminder.KindYearly)),
				).
				Value(&a.Kind),
		),
		huh.NewGroup(
			huh.NewInput().
				TitleFunc(func() string { return argTitle(a.Kind) }, &a.Kind).
				Value(&a.Arg).
				Validate(func(s string) error { return validateArg(a.Kind, s) }),
		).WithHideFunc(func() bool { return a.Kind == string(reminder.KindDaily) }),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Time of day").
				Options(
					huh.NewOption("All day", TimeModeAllDay),
					huh.NewOption("At a time", TimeModeAt),
					huh.NewOption("Between two times", TimeModeRange),
				).
				Value(&a.TimeMode),
		),
		huh.NewGroup(
			huh.NewInput().Title("At (HH:MM)").Value(&a.At).Validate(validateClock),
		).WithHideFunc(func() bool { return a.TimeMode != TimeModeAt }),
		huh.NewGroup(
			huh.NewInput().Title("From (HH:MM)").Value(&a.From).Validate(validateClock),
			huh.NewInput().Title("To (HH:MM)").Value(&a.To).Validate(validateClock),
		).WithHideFunc(func() bool { return a.TimeMode != TimeModeRange }),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return Answers{}, ErrAborted
		}
		return Answers{}, fmt.Errorf("prompt failed: %w", err)
	}
	if a.Kind == string(reminder.KindDaily) {
		a.Arg = ""
	}
	return a, nil
}

func argTitle(kind string) string {
	switch reminder.Kind(kind) {
	case reminder.KindOnce:
		return "Date (YYYY-MM-DD)"
	case reminder.KindWeekly:
		return "Days (mon,wed or weekdays, weekends, mwf, tth)"
	case reminder.KindMonthly:
		return "Days of the month (1,15)"
	case reminder.KindYearly:
		return "Dates (jan-1,jul-4)"
	default:
		return "Argument"
	}
}

func validateMessage(s string) error {
	if strings.TrimSpace(s) == "" {
		return reminder.ErrEmptyMessage
	}
	return nil
}

func validateArg(kind, arg string) error {
	_, err := reminder.ParseFrequency(Answers{Kind: kind, Arg: arg}.FrequencySpec())
	return err
}

func validateClock(s string) error {
	_, err := reminder.ParseTimeOfDay(s, "", "")
	return err
}
