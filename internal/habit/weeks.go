package habit

import "time"

// WeekStart returns midnight of the Sunday that starts t's week, in t's
// location.
func WeekStart(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// Week is a Sunday to Saturday span. Number is 1-based within a month.
type Week struct {
	Number int
	Start  time.Time
	End    time.Time
}

// Contains reports whether t falls on any day of the week.
func (w Week) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End.AddDate(0, 0, 1))
}

// WeeksInMonth returns every Sunday-started week that overlaps the month,
// including partial weeks at either end.
func WeeksInMonth(year int, month time.Month, loc *time.Location) []Week {
	if loc == nil {
		loc = time.Local
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)

	var weeks []Week
	for start := WeekStart(first); !start.After(last); start = start.AddDate(0, 0, 7) {
		weeks = append(weeks, Week{
			Number: len(weeks) + 1,
			Start:  start,
			End:    start.AddDate(0, 0, 6),
		})
	}
	return weeks
}

// WeekKey names the week starting at start, e.g. "week_2025-01-05".
func WeekKey(start time.Time) string {
	return "week_" + start.Format("2006-01-02")
}
