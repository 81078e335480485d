package reminder

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind is the recurrence kind of a reminder.
type Kind string

const (
	KindOnce    Kind = "once"
	KindDaily   Kind = "daily"
	KindWeekly  Kind = "weekly"
	KindMonthly Kind = "monthly"
	KindYearly  Kind = "yearly"
)

// DateLayout is the layout of once dates.
const DateLayout = "2006-01-02"

// ClockLayout is the layout of times of day.
const ClockLayout = "15:04"

// DaysOfWeek is a set of weekdays, Monday in the lowest bit.
type DaysOfWeek uint8

const (
	Monday DaysOfWeek = 1 << iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday

	Weekdays = Monday | Tuesday | Wednesday | Thursday | Friday
	Weekends = Saturday | Sunday
	MWF      = Monday | Wednesday | Friday
	TTH      = Tuesday | Thursday
)

var dayNames = []struct {
	day  DaysOfWeek
	name string
}{
	{Monday, "Mon"},
	{Tuesday, "Tue"},
	{Wednesday, "Wed"},
	{Thursday, "Thu"},
	{Friday, "Fri"},
	{Saturday, "Sat"},
	{Sunday, "Sun"},
}

// DayOf returns the set containing only w.
func DayOf(w time.Weekday) DaysOfWeek {
	return DaysOfWeek(1) << ((int(w) + 6) % 7)
}

// Has reports whether all days of o are in d.
func (d DaysOfWeek) Has(o DaysOfWeek) bool {
	return o != 0 && d&o == o
}

// String returns the named set (Weekdays, Weekends, MWF, TTH) or a comma
// separated list of short day names.
func (d DaysOfWeek) String() string {
	switch d {
	case Weekdays:
		return "Weekdays"
	case Weekends:
		return "Weekends"
	case MWF:
		return "MWF"
	case TTH:
		return "TTH"
	}
	var names []string
	for _, dn := range dayNames {
		if d.Has(dn.day) {
			names = append(names, dn.name)
		}
	}
	return strings.Join(names, ", ")
}

// YearlyDate is a day of the year. The day might not exist in every year.
type YearlyDate struct {
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

func (y YearlyDate) String() string {
	return fmt.Sprintf("%s %d", y.Month.String()[:3], y.Day)
}

// TimeKind describes when during the day a reminder applies.
type TimeKind string

const (
	TimeAllDay TimeKind = "all_day"
	TimeAt     TimeKind = "time"
	TimeRange  TimeKind = "range"
)

// TimeOfDay is the time of day a reminder is set for. Start and End use
// ClockLayout.
type TimeOfDay struct {
	Kind  TimeKind `json:"kind"`
	Start string   `json:"start,omitempty"`
	End   string   `json:"end,omitempty"`
}

// AllDay is the default time of day.
var AllDay = TimeOfDay{Kind: TimeAllDay}

func (t TimeOfDay) String() string {
	switch t.Kind {
	case TimeAt:
		return "at " + t.Start
	case TimeRange:
		return t.Start + "-" + t.End
	default:
		return "all day"
	}
}

// Validate checks the clock fields required by the kind.
func (t TimeOfDay) Validate() error {
	switch t.Kind {
	case TimeAllDay, "":
		return nil
	case TimeAt:
		if _, err := parseClock(t.Start); err != nil {
			return err
		}
		return nil
	case TimeRange:
		start, err := parseClock(t.Start)
		if err != nil {
			return err
		}
		end, err := parseClock(t.End)
		if err != nil {
			return err
		}
		if !end.After(start) {
			return fmt.Errorf("%w: range end %s is not after start %s", ErrInvalidTime, t.End, t.Start)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidTime, t.Kind)
	}
}

// offset returns the start of the window as a duration since midnight.
func (t TimeOfDay) offset() time.Duration {
	if t.Kind != TimeAt && t.Kind != TimeRange {
		return 0
	}
	clock, err := parseClock(t.Start)
	if err != nil {
		return 0
	}
	return time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute
}

func parseClock(s string) (time.Time, error) {
	clock, err := time.Parse(ClockLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q (want HH:MM)", ErrInvalidTime, s)
	}
	return clock, nil
}

// Frequency is the recurrence rule of a reminder. Only the fields of the
// selected Kind are meaningful.
type Frequency struct {
	Kind   Kind         `json:"kind"`
	Date   string       `json:"date,omitempty"`
	Days   DaysOfWeek   `json:"days,omitempty"`
	Dates  []int        `json:"dates,omitempty"`
	Yearly []YearlyDate `json:"yearly,omitempty"`
	Time   TimeOfDay    `json:"time"`
}

// Validate checks the fields required by the kind.
func (f Frequency) Validate() error {
	switch f.Kind {
	case KindOnce:
		if _, err := time.Parse(DateLayout, f.Date); err != nil {
			return fmt.Errorf("%w: %q (want YYYY-MM-DD)", ErrInvalidDate, f.Date)
		}
	case KindDaily:
	case KindWeekly:
		if f.Days&(Weekdays|Weekends) == 0 {
			return ErrNoDays
		}
	case KindMonthly:
		if len(f.Dates) == 0 {
			return ErrNoDates
		}
		for _, d := range f.Dates {
			if d < 1 || d > 31 {
				return fmt.Errorf("%w: day %d out of range", ErrInvalidDate, d)
			}
		}
	case KindYearly:
		if len(f.Yearly) == 0 {
			return ErrNoDates
		}
		for _, y := range f.Yearly {
			if y.Month < time.January || y.Month > time.December {
				return fmt.Errorf("%w: month %d out of range", ErrInvalidDate, y.Month)
			}
			if y.Day < 1 || y.Day > maxDaysIn(y.Month) {
				return fmt.Errorf("%w: %s %d does not exist", ErrInvalidDate, y.Month, y.Day)
			}
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, f.Kind)
	}
	return f.Time.Validate()
}

// maxDaysIn returns the largest day number month has in any year.
func maxDaysIn(m time.Month) int {
	switch m {
	case time.February:
		return 29
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

func (f Frequency) String() string {
	var s string
	switch f.Kind {
	case KindOnce:
		s = "Once on " + f.Date
	case KindDaily:
		s = "Daily"
	case KindWeekly:
		s = "Weekly on " + f.Days.String()
	case KindMonthly:
		dates := append([]int(nil), f.Dates...)
		sort.Ints(dates)
		parts := make([]string, len(dates))
		for i, d := range dates {
			parts[i] = strconv.Itoa(d)
		}
		s = "Monthly on " + strings.Join(parts, ", ")
	case KindYearly:
		parts := make([]string, len(f.Yearly))
		for i, y := range f.Yearly {
			parts[i] = y.String()
		}
		s = "Yearly on " + strings.Join(parts, ", ")
	default:
		s = string(f.Kind)
	}
	if f.Time.Kind == TimeAt || f.Time.Kind == TimeRange {
		s += " " + f.Time.String()
	}
	return s
}
