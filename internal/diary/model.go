package diary

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the canonical entry key format.
const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date")

// Entry is one day of one owner's diary. Content is the raw stored string,
// see ParseContent for how it is interpreted.
type Entry struct {
	Date    string `json:"date"`
	Content string `json:"content"`
}

// YearStat summarizes one calendar year of an owner's entries.
// TotalEntries counts every year, the date bounds are the year's own.
type YearStat struct {
	Year           string `json:"year"`
	EntriesPerYear int64  `json:"entries_per_year"`
	TotalEntries   int64  `json:"total_entries"`
	FirstEntryDate string `json:"first_entry_date"`
	LastEntryDate  string `json:"last_entry_date"`
}

// Range filters List. Empty bounds are open; both are inclusive.
type Range struct {
	Start string
	End   string
}

// Contains reports whether date falls inside the range.
func (r Range) Contains(date string) bool {
	if r.Start != "" && date < r.Start {
		return false
	}
	if r.End != "" && date > r.End {
		return false
	}
	return true
}

// NormalizeContent trims content. An empty result means "delete".
func NormalizeContent(content string) string {
	return strings.TrimSpace(content)
}

// ValidDate reports whether s is an existing calendar date in DateLayout.
func ValidDate(s string) bool {
	t, err := time.Parse(DateLayout, s)
	return err == nil && t.Format(DateLayout) == s
}

// CheckDate returns ErrInvalidDate for keys that are not calendar dates.
func CheckDate(s string) error {
	if !ValidDate(s) {
		return ErrInvalidDate
	}
	return nil
}

// TotalStats fills TotalEntries on rows that only carry per-year counts.
func TotalStats(rows []YearStat) []YearStat {
	var total int64
	for _, r := range rows {
		total += r.EntriesPerYear
	}
	for i := range rows {
		rows[i].TotalEntries = total
	}
	return rows
}
