package reminder

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestNew_AssignsULIDAndValidates(t *testing.T) {
	now := date(2026, time.October, 17, 9, 0)
	r, err := New("  water plants  ", Frequency{Kind: KindDaily, Time: AllDay}, now)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if len(r.ID) != 26 {
		t.Fatalf("ID = %q, want 26-char ULID", r.ID)
	}
	if r.Message != "water plants" {
		t.Fatalf("Message = %q, want trimmed", r.Message)
	}
	if !r.CreatedAt.Equal(now) {
		t.Fatalf("CreatedAt = %v, want %v", r.CreatedAt, now)
	}

	if _, err := New("   ", Frequency{Kind: KindDaily}, now); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("New(empty) error = %v, want ErrEmptyMessage", err)
	}
}

func TestNew_IDsSortByCreationTime(t *testing.T) {
	a, err := New("a", Frequency{Kind: KindDaily}, date(2026, time.October, 17, 9, 0))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	b, err := New("b", Frequency{Kind: KindDaily}, date(2026, time.October, 17, 9, 1))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if a.ID >= b.ID {
		t.Fatalf("IDs not time ordered: %q >= %q", a.ID, b.ID)
	}
}

func TestReminderValidate(t *testing.T) {
	r := &Reminder{ID: "not-a-ulid", Message: "x", Frequency: Frequency{Kind: KindDaily}}
	if err := r.Validate(); err == nil {
		t.Fatal("Validate() accepted a malformed id")
	}
	r.ID = ""
	if err := r.Validate(); !errors.Is(err, ErrEmptyID) {
		t.Fatalf("Validate() = %v, want ErrEmptyID", err)
	}
}

func TestDaysOfWeekString(t *testing.T) {
	tests := []struct {
		days DaysOfWeek
		want string
	}{
		{Weekdays, "Weekdays"},
		{Weekends, "Weekends"},
		{MWF, "MWF"},
		{TTH, "TTH"},
		{Monday | Sunday, "Mon, Sun"},
		{Wednesday, "Wed"},
		{0, ""},
	}
	for _, tt := range tests {
		if got := tt.days.String(); got != tt.want {
			t.Errorf("DaysOfWeek(%d).String() = %q, want %q", tt.days, got, tt.want)
		}
	}
}

func TestDayOf(t *testing.T) {
	if DayOf(time.Monday) != Monday {
		t.Fatalf("DayOf(Monday) = %d, want %d", DayOf(time.Monday), Monday)
	}
	if DayOf(time.Sunday) != Sunday {
		t.Fatalf("DayOf(Sunday) = %d, want %d", DayOf(time.Sunday), Sunday)
	}
}

func TestFrequencyNext(t *testing.T) {
	// Saturday.
	now := date(2026, time.October, 17, 15, 30)

	tests := []struct {
		name   string
		freq   Frequency
		want   time.Time
		wantOK bool
	}{
		{
			name:   "daily all day is today",
			freq:   Frequency{Kind: KindDaily, Time: AllDay},
			want:   date(2026, time.October, 17, 0, 0),
			wantOK: true,
		},
		{
			name:   "earlier time today still counts",
			freq:   Frequency{Kind: KindDaily, Time: TimeOfDay{Kind: TimeAt, Start: "09:00"}},
			want:   date(2026, time.October, 17, 9, 0),
			wantOK: true,
		},
		{
			name:   "weekly weekdays skips to monday",
			freq:   Frequency{Kind: KindWeekly, Days: Weekdays, Time: AllDay},
			want:   date(2026, time.October, 19, 0, 0),
			wantOK: true,
		},
		{
			name:   "weekly weekends is today",
			freq:   Frequency{Kind: KindWeekly, Days: Weekends, Time: TimeOfDay{Kind: TimeRange, Start: "18:00", End: "19:00"}},
			want:   date(2026, time.October, 17, 18, 0),
			wantOK: true,
		},
		{
			name:   "monthly 31 later this month",
			freq:   Frequency{Kind: KindMonthly, Dates: []int{31}, Time: AllDay},
			want:   date(2026, time.October, 31, 0, 0),
			wantOK: true,
		},
		{
			name:   "monthly picks earliest upcoming",
			freq:   Frequency{Kind: KindMonthly, Dates: []int{1, 20}, Time: AllDay},
			want:   date(2026, time.October, 20, 0, 0),
			wantOK: true,
		},
		{
			name:   "yearly feb 29 waits for leap year",
			freq:   Frequency{Kind: KindYearly, Yearly: []YearlyDate{{Month: time.February, Day: 29}}, Time: AllDay},
			want:   date(2028, time.February, 29, 0, 0),
			wantOK: true,
		},
		{
			name:   "yearly wraps to next year",
			freq:   Frequency{Kind: KindYearly, Yearly: []YearlyDate{{Month: time.July, Day: 4}}, Time: AllDay},
			want:   date(2027, time.July, 4, 0, 0),
			wantOK: true,
		},
		{
			name:   "once in future",
			freq:   Frequency{Kind: KindOnce, Date: "2026-10-20", Time: TimeOfDay{Kind: TimeAt, Start: "08:15"}},
			want:   date(2026, time.October, 20, 8, 15),
			wantOK: true,
		},
		{
			name:   "once today",
			freq:   Frequency{Kind: KindOnce, Date: "2026-10-17", Time: AllDay},
			want:   date(2026, time.October, 17, 0, 0),
			wantOK: true,
		},
		{
			name:   "once in past",
			freq:   Frequency{Kind: KindOnce, Date: "2026-10-16", Time: AllDay},
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.freq.Next(now)
			if ok != tt.wantOK {
				t.Fatalf("Next() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Fatalf("Next() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFrequencyNext_SkipsMissingMonthDays(t *testing.T) {
	f := Frequency{Kind: KindMonthly, Dates: []int{31}, Time: AllDay}
	got, ok := f.Next(date(2026, time.November, 2, 8, 0))
	if !ok {
		t.Fatal("Next() found no occurrence")
	}
	if want := date(2026, time.December, 31, 0, 0); !got.Equal(want) {
		t.Fatalf("Next() = %v, want %v", got, want)
	}
}

func TestDueToday(t *testing.T) {
	now := date(2026, time.October, 17, 15, 30)
	sat := &Reminder{Frequency: Frequency{Kind: KindWeekly, Days: Saturday}}
	mon := &Reminder{Frequency: Frequency{Kind: KindWeekly, Days: Monday}}
	if !sat.DueToday(now) {
		t.Fatal("saturday reminder not due on saturday")
	}
	if mon.DueToday(now) {
		t.Fatal("monday reminder due on saturday")
	}
}

func TestFrequencyValidate(t *testing.T) {
	tests := []struct {
		name string
		freq Frequency
		want error
	}{
		{"unknown kind", Frequency{Kind: "hourly"}, ErrUnknownKind},
		{"once bad date", Frequency{Kind: KindOnce, Date: "2026-13-01"}, ErrInvalidDate},
		{"weekly no days", Frequency{Kind: KindWeekly}, ErrNoDays},
		{"monthly no dates", Frequency{Kind: KindMonthly}, ErrNoDates},
		{"monthly 32", Frequency{Kind: KindMonthly, Dates: []int{32}}, ErrInvalidDate},
		{"yearly feb 30", Frequency{Kind: KindYearly, Yearly: []YearlyDate{{Month: time.February, Day: 30}}}, ErrInvalidDate},
		{"bad time", Frequency{Kind: KindDaily, Time: TimeOfDay{Kind: TimeAt, Start: "25:00"}}, ErrInvalidTime},
		{"inverted range", Frequency{Kind: KindDaily, Time: TimeOfDay{Kind: TimeRange, Start: "10:00", End: "09:00"}}, ErrInvalidTime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.freq.Validate(); !errors.Is(err, tt.want) {
				t.Fatalf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFrequencyString(t *testing.T) {
	tests := []struct {
		freq Frequency
		want string
	}{
		{Frequency{Kind: KindDaily, Time: AllDay}, "Daily"},
		{Frequency{Kind: KindWeekly, Days: MWF, Time: TimeOfDay{Kind: TimeAt, Start: "07:30"}}, "Weekly on MWF at 07:30"},
		{Frequency{Kind: KindMonthly, Dates: []int{15, 1}}, "Monthly on 1, 15"},
		{Frequency{Kind: KindYearly, Yearly: []YearlyDate{{Month: time.January, Day: 1}, {Month: time.July, Day: 4}}}, "Yearly on Jan 1, Jul 4"},
		{Frequency{Kind: KindOnce, Date: "2026-10-20", Time: TimeOfDay{Kind: TimeRange, Start: "09:00", End: "10:00"}}, "Once on 2026-10-20 09:00-10:00"},
	}
	for _, tt := range tests {
		if got := tt.freq.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
