package composer

import (
	"fmt"
	"io"
	"strings"

	"yeardiary/internal/diary"
)

type field struct {
	icon  string
	label string
	value func(diary.Reflection) string
}

var fields = []field{
	{"✨", "Good moments", func(r diary.Reflection) string { return r.GoodMoments }},
	{"🏆", "Achievements", func(r diary.Reflection) string { return r.Achievements }},
	{"🙏", "Gratitude", func(r diary.Reflection) string { return r.Gratitude }},
	{"📚", "Learnings", func(r diary.Reflection) string { return r.Learnings }},
	{"🔮", "Note to next year", func(r diary.Reflection) string { return r.FutureNote }},
}

// TextRenderer writes views as plain text.
type TextRenderer struct {
	W io.Writer
}

func (t TextRenderer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(t.W, format, args...)
}

func (t TextRenderer) RenderToday(v TodayView) {
	t.printf("Today, %s\n\n", v.Date.Format("Monday, January 2, 2006"))
	t.full(v.Entry, "  (nothing written yet)")

	for _, c := range v.History {
		t.printf("\n%s\n", c.Key)
		switch {
		case !c.Exists:
			t.printf("  (no such date in %d)\n", c.Year)
		case c.Content.Empty():
			t.printf("  (no entry)\n")
		default:
			t.history(c.Content)
		}
	}

	t.printf("\nFrom %d\n", v.PastSelfYear)
	if v.PastSelf == "" {
		t.printf("  (no message for this year)\n")
	} else {
		t.printf("  %s\n", v.PastSelf)
	}
}

func (t TextRenderer) RenderDaily(v DailyView) {
	t.printf("%s\n", v.Date.Format("January 2"))
	for _, c := range v.Cells {
		marker := ""
		if c.Current {
			marker = " *"
		}
		t.printf("\n%d%s\n", c.Year, marker)
		switch {
		case !c.Exists:
			t.printf("  (no such date)\n")
		case c.Content.Empty():
			t.printf("  (no entry)\n")
		default:
			t.preview(c.Content, 50, 100)
		}
	}
}

func (t TextRenderer) RenderWeekly(v WeeklyView) {
	t.printf("%s - %s\n", v.Start.Format("January 2"), v.End.Format("January 2"))
	for _, row := range v.Rows {
		marker := ""
		if row.Today {
			marker = " (today)"
		}
		t.printf("\n%s %d%s\n", row.Date.Format("Mon"), row.Date.Day(), marker)
		for _, c := range row.Cells {
			switch {
			case !c.Exists:
				t.printf("  %d: -\n", c.Year)
			case c.Content.Empty():
				t.printf("  %d: no entry\n", c.Year)
			default:
				t.printf("  %d:\n", c.Year)
				t.preview(c.Content, 30, 60)
			}
		}
	}
}

func (t TextRenderer) RenderMonthly(v MonthlyView) {
	t.printf("%s %d", v.Month, v.Year)
	if v.Category.ID != "" {
		t.printf(" · %s", v.Category.Name)
	}
	t.printf("\n")
	for _, w := range v.Weeks {
		marker := ""
		if w.Current {
			marker = " (this week)"
		}
		t.printf("\nWeek %d  %s - %s  %s%s\n", w.Number,
			w.Start.Format("1/2"), w.End.Format("1/2"), Stars(w.Record.Rating), marker)
		t.printf("  🎯 %s\n", orDefault(w.Record.Goals, "no goals set"))
		t.printf("  ✅ %s\n", orDefault(w.Record.Achievements, "nothing recorded"))
		if w.Record.Notes != "" {
			t.printf("  💭 %s\n", w.Record.Notes)
		}
	}
}

func (t TextRenderer) full(c diary.Content, empty string) {
	if c.Empty() {
		t.printf("%s\n", empty)
		return
	}
	r := c.Fields()
	for _, f := range fields {
		t.printf("%s %s\n  %s\n", f.icon, f.label, f.value(r))
	}
}

// history leaves out the note to next year, which Today shows separately.
func (t TextRenderer) history(c diary.Content) {
	if c.Legacy {
		t.printf("  %s\n", c.Text)
		return
	}
	for _, f := range fields[:4] {
		if v := strings.TrimSpace(f.value(c.Reflection)); v != "" {
			t.printf("  %s %s\n", f.icon, v)
		}
	}
}

func (t TextRenderer) preview(c diary.Content, fieldLimit, legacyLimit int) {
	if c.Legacy {
		t.printf("    %s\n", Truncate(c.Text, legacyLimit))
		return
	}
	for _, f := range fields {
		if v := strings.TrimSpace(f.value(c.Reflection)); v != "" {
			t.printf("    %s %s\n", f.icon, Truncate(v, fieldLimit))
		}
	}
}

// Truncate shortens s to n characters followed by "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// Stars draws a 0-5 rating.
func Stars(rating int) string {
	var b strings.Builder
	for i := 1; i <= 5; i++ {
		if i <= rating {
			b.WriteString("★")
		} else {
			b.WriteString("☆")
		}
	}
	return b.String()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
