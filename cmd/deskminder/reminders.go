package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/deskminder/internal/board"
	"github.com/1broseidon/deskminder/internal/prompt"
	"github.com/1broseidon/deskminder/internal/reminder"
)

func runAdd(args []string) int {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskminder add [--freq F] [--at HH:MM | --from HH:MM --to HH:MM] <message>")
		fmt.Fprintln(os.Stderr, "       deskminder add --interactive")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Frequencies:")
		fmt.Fprintln(os.Stderr, "  once:2026-10-20  daily  weekly:mon,wed  weekly:weekdays|weekends|mwf|tth")
		fmt.Fprintln(os.Stderr, "  monthly:1,15  yearly:jan-1,jul-4")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	freqSpec := fs.String("freq", "", "Frequency (default: once today)")
	at := fs.String("at", "", "Time of day (HH:MM)")
	from := fs.String("from", "", "Start of a time range (HH:MM)")
	to := fs.String("to", "", "End of a time range (HH:MM)")
	interactive := fs.Bool("interactive", false, "Fill in the reminder with a form")
	fs.BoolVar(interactive, "i", false, "Shorthand for --interactive")
	configPath := fs.String("config", "", "Config file path")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	now := time.Now()
	message := strings.Join(fs.Args(), " ")

	var freq reminder.Frequency
	if *interactive {
		answers, err := prompt.AskReminder(prompt.Answers{Message: message}, now)
		if err != nil {
			if errors.Is(err, prompt.ErrAborted) {
				return 1
			}
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		freq, err = answers.Frequency()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		message = answers.Message
	} else {
		if strings.TrimSpace(message) == "" {
			fmt.Fprintln(os.Stderr, "add requires <message>")
			fs.Usage()
			return 2
		}
		spec := *freqSpec
		if strings.TrimSpace(spec) == "" {
			spec = string(reminder.KindOnce) + ":" + now.Format(reminder.DateLayout)
		}
		var err error
		freq, err = reminder.ParseFrequency(spec)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		freq.Time, err = reminder.ParseTimeOfDay(*at, *from, *to)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
	}

	st, _, err := openStore(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	r, err := reminder.New(message, freq, now)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if err := st.Put(r); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	fmt.Printf("added %s  %s\n", shortID(r.ID), board.Describe(r, now))
	return 0
}

func runList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskminder list [--all] [--today]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List reminders ordered by their next occurrence.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	all := fs.Bool("all", false, "Include completed reminders")
	today := fs.Bool("today", false, "Only reminders due today")
	configPath := fs.String("config", "", "Config file path")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "list takes no arguments")
		fs.Usage()
		return 2
	}

	st, _, err := openStore(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	list, err := st.List(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	now := time.Now()
	var shown []*reminder.Reminder
	for _, r := range list {
		if r.Completed && !*all {
			continue
		}
		if *today && !r.DueToday(now) {
			continue
		}
		shown = append(shown, r)
	}
	printReminders(os.Stdout, shown, now)
	return 0
}

var (
	idStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	msgStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	doneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true)
	dueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
)

func printReminders(w io.Writer, list []*reminder.Reminder, now time.Time) {
	if len(list) == 0 {
		fmt.Fprintln(w, infoStyle.Render("no reminders"))
		return
	}
	for _, r := range list {
		msg := msgStyle.Render(r.Message)
		if r.Completed {
			msg = doneStyle.Render(r.Message)
		}
		info := infoStyle.Render(board.Describe(r, now))
		if !r.Completed && r.DueToday(now) {
			info = dueStyle.Render(board.Describe(r, now))
		}
		fmt.Fprintf(w, "%s  %s\n    %s\n", idStyle.Render(shortID(r.ID)), msg, info)
	}
}

// shortID keeps the ULID timestamp and four random characters, which is
// enough to resolve as a prefix in practice.
func shortID(id string) string {
	if len(id) <= 14 {
		return id
	}
	return id[:14]
}

func runSetCompleted(name string, completed bool, args []string) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: deskminder %s <id>\n", name)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "<id> may be any unique prefix of a reminder ID.")
	}
	configPath := fs.String("config", "", "Config file path")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "%s requires <id>\n", name)
		fs.Usage()
		return 2
	}

	st, _, err := openStore(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	id, err := st.Resolve(context.Background(), fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	r, err := st.SetCompleted(id, completed)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	state := "pending"
	if r.Completed {
		state = "done"
	}
	fmt.Printf("%s  %s: %s\n", shortID(r.ID), r.Message, state)
	return 0
}

func runRemove(args []string) int {
	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskminder remove <id>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "<id> may be any unique prefix of a reminder ID.")
	}
	configPath := fs.String("config", "", "Config file path")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "remove requires <id>")
		fs.Usage()
		return 2
	}

	st, _, err := openStore(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	id, err := st.Resolve(context.Background(), fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := st.Delete(id); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("removed %s\n", shortID(id))
	return 0
}
