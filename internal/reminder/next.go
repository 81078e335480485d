package reminder

import "time"

// searchDays bounds the day-by-day scan. Feb 29 can be eight years away
// across a skipped century leap year.
const searchDays = 8*366 + 1

// Next returns the next occurrence at or after the start of now's day, in
// now's location. Recurring dates that do not exist in a given month or year
// are skipped. A once reminder dated in the past has no next occurrence.
func (f Frequency) Next(now time.Time) (time.Time, bool) {
	day := startOfDay(now)

	if f.Kind == KindOnce {
		date, err := time.ParseInLocation(DateLayout, f.Date, now.Location())
		if err != nil || date.Before(day) {
			return time.Time{}, false
		}
		return date.Add(f.Time.offset()), true
	}

	for i := 0; i < searchDays; i++ {
		d := day.AddDate(0, 0, i)
		if f.occursOn(d) {
			return d.Add(f.Time.offset()), true
		}
	}
	return time.Time{}, false
}

func (f Frequency) occursOn(d time.Time) bool {
	switch f.Kind {
	case KindDaily:
		return true
	case KindWeekly:
		return f.Days.Has(DayOf(d.Weekday()))
	case KindMonthly:
		for _, n := range f.Dates {
			if d.Day() == n {
				return true
			}
		}
	case KindYearly:
		for _, y := range f.Yearly {
			if d.Month() == y.Month && d.Day() == y.Day {
				return true
			}
		}
	}
	return false
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
