// Package composer builds the diary's views on top of the API client. It
// owns the session cache and batched loading, tracks which navigation
// request is current, and debounces autosave.
package composer

import (
	"strconv"
	"time"

	"yeardiary/internal/diary"
)

// DateKey formats t as YYYY-MM-DD in t's own location.
func DateKey(t time.Time) string {
	return t.Format(diary.DateLayout)
}

// MonthDayKey formats t as MM-DD in t's own location.
func MonthDayKey(t time.Time) string {
	return t.Format("01-02")
}

// SameDayIn returns t's month and day in another year. ok is false when
// that date does not exist, which only happens for Feb 29.
func SameDayIn(t time.Time, year int) (time.Time, bool) {
	_, m, d := t.Date()
	moved := time.Date(year, m, d, 0, 0, 0, 0, t.Location())
	return moved, moved.Month() == m && moved.Day() == d
}

// CrossYearKeys returns t's month-day in year(t), year(t)-1, ... for n
// years, newest first. Years where the month-day does not exist are left
// out rather than rolled to a neighboring day.
func CrossYearKeys(t time.Time, n int) []string {
	return crossYearKeys(t, t.Year(), n)
}

// crossYearKeys counts back from newest instead of t's own year.
func crossYearKeys(t time.Time, newest, n int) []string {
	keys := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if moved, ok := SameDayIn(t, newest-i); ok {
			keys = append(keys, DateKey(moved))
		}
	}
	return keys
}

// yearKey is the key for year-MM-DD without checking that it exists.
func yearKey(year int, monthDay string) string {
	return strconv.Itoa(year) + "-" + monthDay
}
