package reminder

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseFrequency parses the CLI frequency grammar:
//
//	once:2026-10-20
//	daily
//	weekly:mon,wed | weekly:weekdays | weekly:weekends | weekly:mwf | weekly:tth
//	monthly:1,15
//	yearly:jan-1,jul-4
//
// The time of day is AllDay; see ParseTimeOfDay.
func ParseFrequency(spec string) (Frequency, error) {
	spec = strings.ToLower(strings.TrimSpace(spec))
	kind, arg, _ := strings.Cut(spec, ":")

	f := Frequency{Kind: Kind(kind), Time: AllDay}
	switch f.Kind {
	case KindOnce:
		if arg == "" {
			return Frequency{}, fmt.Errorf("%w: once needs a date, e.g. once:2026-10-20", ErrInvalidFormat)
		}
		f.Date = arg
	case KindDaily:
		if arg != "" {
			return Frequency{}, fmt.Errorf("%w: daily takes no argument", ErrInvalidFormat)
		}
	case KindWeekly:
		days, err := ParseDays(arg)
		if err != nil {
			return Frequency{}, err
		}
		f.Days = days
	case KindMonthly:
		dates, err := parseMonthDays(arg)
		if err != nil {
			return Frequency{}, err
		}
		f.Dates = dates
	case KindYearly:
		dates, err := parseYearlyDates(arg)
		if err != nil {
			return Frequency{}, err
		}
		f.Yearly = dates
	default:
		return Frequency{}, fmt.Errorf("%w: %q (want once, daily, weekly, monthly or yearly)", ErrUnknownKind, kind)
	}

	if err := f.Validate(); err != nil {
		return Frequency{}, err
	}
	return f, nil
}

// ParseDays parses a comma separated day list or a named set.
func ParseDays(s string) (DaysOfWeek, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return 0, ErrNoDays
	case "weekdays":
		return Weekdays, nil
	case "weekends":
		return Weekends, nil
	case "mwf":
		return MWF, nil
	case "tth":
		return TTH, nil
	}

	var days DaysOfWeek
	for _, part := range strings.Split(s, ",") {
		day, ok := parseDay(strings.TrimSpace(part))
		if !ok {
			return 0, fmt.Errorf("%w: unknown day %q", ErrInvalidFormat, part)
		}
		days |= day
	}
	return days, nil
}

func parseDay(s string) (DaysOfWeek, bool) {
	for w := time.Sunday; w <= time.Saturday; w++ {
		full := strings.ToLower(w.String())
		if s == full || s == full[:3] {
			return DayOf(w), true
		}
	}
	return 0, false
}

func parseMonthDays(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, ErrNoDates
	}
	var dates []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("%w: day %q is not a number", ErrInvalidFormat, part)
		}
		dates = append(dates, n)
	}
	return dates, nil
}

func parseYearlyDates(s string) ([]YearlyDate, error) {
	if strings.TrimSpace(s) == "" {
		return nil, ErrNoDates
	}
	var dates []YearlyDate
	for _, part := range strings.Split(s, ",") {
		month, day, ok := strings.Cut(strings.TrimSpace(part), "-")
		if !ok {
			return nil, fmt.Errorf("%w: %q (want mon-day, e.g. jul-4)", ErrInvalidFormat, part)
		}
		m, err := parseMonth(month)
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(day)
		if err != nil {
			return nil, fmt.Errorf("%w: day %q is not a number", ErrInvalidFormat, day)
		}
		dates = append(dates, YearlyDate{Month: m, Day: n})
	}
	return dates, nil
}

func parseMonth(s string) (time.Month, error) {
	if len(s) >= 3 {
		for m := time.January; m <= time.December; m++ {
			if strings.HasPrefix(strings.ToLower(m.String()), s) {
				return m, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: unknown month %q", ErrInvalidFormat, s)
}

// ParseTimeOfDay builds a TimeOfDay from the --at, --from and --to flags.
// All empty means all day; at excludes from/to.
func ParseTimeOfDay(at, from, to string) (TimeOfDay, error) {
	at, from, to = strings.TrimSpace(at), strings.TrimSpace(from), strings.TrimSpace(to)
	var t TimeOfDay
	switch {
	case at == "" && from == "" && to == "":
		return AllDay, nil
	case at != "" && (from != "" || to != ""):
		return TimeOfDay{}, fmt.Errorf("%w: use either --at or --from/--to", ErrInvalidTime)
	case at != "":
		t = TimeOfDay{Kind: TimeAt, Start: at}
	case from == "" || to == "":
		return TimeOfDay{}, fmt.Errorf("%w: --from and --to must be given together", ErrInvalidTime)
	default:
		t = TimeOfDay{Kind: TimeRange, Start: from, End: to}
	}
	if err := t.Validate(); err != nil {
		return TimeOfDay{}, err
	}
	return t, nil
}
