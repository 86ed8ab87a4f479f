package composer

import (
	"context"
	"time"

	"yeardiary/internal/diary"
	"yeardiary/internal/habit"
)

// Years is how many years each cross-year view spans, the current one
// included.
const Years = 3

// Cell is one date in one year. Exists is false when the month-day does not
// occur that year; such cells are never fetched.
type Cell struct {
	Year    int
	Key     string
	Date    time.Time
	Exists  bool
	Current bool
	Content diary.Content
}

// HasEntry reports whether the cell has anything to show.
func (c Cell) HasEntry() bool {
	return c.Exists && !c.Content.Empty()
}

type TodayView struct {
	Date    time.Time
	Key     string
	Entry   diary.Content
	History []Cell // one year ago first

	// PastSelf is last year's note to this year, "" when none was left.
	PastSelf     string
	PastSelfYear int
}

// DailyView shows one month-day across years, oldest first.
type DailyView struct {
	Date  time.Time
	Cells []Cell
}

type WeeklyRow struct {
	Date  time.Time
	Today bool
	Cells []Cell // oldest first
}

type WeeklyView struct {
	Start time.Time
	End   time.Time
	Years []int // column years shared by every row, oldest first
	Rows  []WeeklyRow
}

type MonthlyView struct {
	Year       int
	Month      time.Month
	Category   habit.Category
	Categories []habit.Category
	Weeks      []habit.WeekCard
}

// Composer assembles view models. Habits may be nil when the monthly view
// is not used.
type Composer struct {
	Loader *Loader
	Habits *habit.Tracker
}

// cells lays out t's month-day for the Years years ending at newest,
// oldest first. A year is only fetched when CrossYearKeys lists it.
func cells(t time.Time, newest int) []Cell {
	exists := make(map[string]bool, Years)
	for _, k := range crossYearKeys(t, newest, Years) {
		exists[k] = true
	}

	md := MonthDayKey(t)
	out := make([]Cell, 0, Years)
	for i := Years - 1; i >= 0; i-- {
		year := newest - i
		c := Cell{Year: year, Key: yearKey(year, md), Current: i == 0}
		if exists[c.Key] {
			c.Exists = true
			c.Date, _ = SameDayIn(t, year)
		}
		out = append(out, c)
	}
	return out
}

func keysOf(cs []Cell) []string {
	keys := make([]string, 0, len(cs))
	for _, c := range cs {
		if c.Exists {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

func fillCells(cs []Cell, loaded map[string]string) {
	for i := range cs {
		if cs[i].Exists {
			cs[i].Content = diary.ParseContent(loaded[cs[i].Key])
		}
	}
}

func (c *Composer) Today(ctx context.Context, today time.Time) TodayView {
	cs := cells(today, today.Year())
	loaded := c.Loader.LoadMany(ctx, keysOf(cs))
	fillCells(cs, loaded)

	v := TodayView{Date: today, Key: DateKey(today)}
	for i := len(cs) - 1; i >= 0; i-- {
		if cs[i].Current {
			v.Entry = cs[i].Content
			continue
		}
		v.History = append(v.History, cs[i])
	}
	if len(v.History) > 0 {
		last := v.History[0]
		v.PastSelfYear = last.Year
		if last.Exists {
			v.PastSelf = last.Content.FutureNote()
		}
	}
	return v
}

func (c *Composer) Daily(ctx context.Context, date time.Time) DailyView {
	cs := cells(date, date.Year())
	fillCells(cs, c.Loader.LoadMany(ctx, keysOf(cs)))
	return DailyView{Date: date, Cells: cs}
}

// Weekly shows the Sunday-started week around date. Every row is laid out
// in the header years, which end at date's year, so the columns of a week
// spanning New Year stay aligned. All cells are loaded in a single batch.
func (c *Composer) Weekly(ctx context.Context, date, today time.Time) WeeklyView {
	start := habit.WeekStart(date)
	v := WeeklyView{Start: start, End: start.AddDate(0, 0, 6)}
	for i := Years - 1; i >= 0; i-- {
		v.Years = append(v.Years, date.Year()-i)
	}

	var keys []string
	for d := 0; d < 7; d++ {
		day := start.AddDate(0, 0, d)
		row := WeeklyRow{Date: day, Today: DateKey(day) == DateKey(today), Cells: cells(day, date.Year())}
		keys = append(keys, keysOf(row.Cells)...)
		v.Rows = append(v.Rows, row)
	}

	loaded := c.Loader.LoadMany(ctx, keys)
	for i := range v.Rows {
		fillCells(v.Rows[i].Cells, loaded)
	}
	return v
}

// Monthly builds the habit grid for the month containing date. An empty or
// hidden category falls back to the first visible one.
func (c *Composer) Monthly(ctx context.Context, date, today time.Time, categoryID string) (MonthlyView, error) {
	v := MonthlyView{Year: date.Year(), Month: date.Month()}
	if c.Habits == nil {
		return v, nil
	}

	cats, err := c.Habits.Categories(ctx, false)
	if err != nil {
		return MonthlyView{}, err
	}
	v.Categories = cats
	if len(cats) == 0 {
		return v, nil
	}

	v.Category = cats[0]
	for _, cat := range cats {
		if cat.ID == categoryID {
			v.Category = cat
			break
		}
	}

	v.Weeks, err = c.Habits.Month(ctx, v.Category.ID, v.Year, v.Month, today)
	if err != nil {
		return MonthlyView{}, err
	}
	return v, nil
}
