package cli

import (
	"context"
	"fmt"
	"time"

	"yeardiary/internal/composer"
	"yeardiary/internal/habit"
)

type HabitListCmd struct {
	All bool `help:"Include hidden categories."`
}

func (c *HabitListCmd) Run(ctx *Context) error {
	return ctx.withHabits(func(tr *habit.Tracker) error {
		cats, err := tr.Categories(context.Background(), c.All)
		if err != nil {
			return err
		}
		for _, cat := range cats {
			flags := ""
			if cat.Custom {
				flags += " custom"
			}
			if cat.Hidden {
				flags += " hidden"
			}
			ctx.printf("%-32s %s  %s%s\n", cat.ID, cat.Color, cat.Name, flags)
		}
		return nil
	})
}

type HabitAddCmd struct {
	Name  string `arg:"" help:"Category name, emoji welcome."`
	Color string `help:"Color as #rrggbb." default:"#007bff"`
}

func (c *HabitAddCmd) Run(ctx *Context) error {
	return ctx.withHabits(func(tr *habit.Tracker) error {
		cat, err := tr.AddCategory(context.Background(), c.Name, c.Color)
		if err != nil {
			return err
		}
		ctx.printf("added %s (%s)\n", cat.Name, cat.ID)
		return nil
	})
}

type HabitEditCmd struct {
	ID    string `arg:"" help:"Custom category id."`
	Name  string `help:"New name." required:""`
	Color string `help:"New color as #rrggbb."`
}

func (c *HabitEditCmd) Run(ctx *Context) error {
	return ctx.withHabits(func(tr *habit.Tracker) error {
		cat, err := tr.UpdateCategory(context.Background(), c.ID, c.Name, c.Color)
		if err != nil {
			return err
		}
		ctx.printf("updated %s\n", cat.Name)
		return nil
	})
}

type HabitDeleteCmd struct {
	ID string `arg:"" help:"Custom category id. Its weekly records are deleted too."`
}

func (c *HabitDeleteCmd) Run(ctx *Context) error {
	return ctx.withHabits(func(tr *habit.Tracker) error {
		if err := tr.DeleteCategory(context.Background(), c.ID); err != nil {
			return err
		}
		ctx.printf("deleted %s\n", c.ID)
		return nil
	})
}

type HabitHideCmd struct {
	ID string `arg:"" help:"Category id."`
}

func (c *HabitHideCmd) Run(ctx *Context) error {
	return ctx.setHidden(c.ID, true)
}

type HabitUnhideCmd struct {
	ID string `arg:"" help:"Category id."`
}

func (c *HabitUnhideCmd) Run(ctx *Context) error {
	return ctx.setHidden(c.ID, false)
}

func (c *Context) setHidden(id string, hidden bool) error {
	return c.withHabits(func(tr *habit.Tracker) error {
		if err := tr.SetHidden(context.Background(), id, hidden); err != nil {
			return err
		}
		state := "shown"
		if hidden {
			state = "hidden"
		}
		c.printf("%s is now %s\n", id, state)
		return nil
	})
}

type HabitRecordCmd struct {
	Category     string `arg:"" help:"Category id."`
	Week         string `help:"Any day of the week (YYYY-MM-DD or 'today')." default:"today"`
	Goals        string `help:"Goals for the week."`
	Achievements string `help:"What actually got done."`
	Notes        string `help:"Anything else."`
	Rating       int    `help:"Satisfaction from 0 to 5." default:"0"`
}

func (c *HabitRecordCmd) Validate() error {
	if c.Rating < 0 || c.Rating > 5 {
		return fmt.Errorf("rating must be between 0 and 5")
	}
	return nil
}

func (c *HabitRecordCmd) Run(ctx *Context) error {
	week, err := ctx.parseDate(c.Week)
	if err != nil {
		return err
	}
	return ctx.withHabits(func(tr *habit.Tracker) error {
		r := habit.Record{Goals: c.Goals, Achievements: c.Achievements, Notes: c.Notes, Rating: c.Rating}
		if err := tr.SaveRecord(context.Background(), c.Category, week, r); err != nil {
			return err
		}
		ctx.printf("saved %s for %s\n", c.Category, habit.WeekKey(habit.WeekStart(week)))
		return nil
	})
}

type HabitMonthCmd struct {
	Month    string `arg:"" optional:"" help:"Month to show (YYYY-MM). Defaults to the current month."`
	Category string `short:"c" help:"Category id. Defaults to the first visible category."`
}

func (c *HabitMonthCmd) Run(ctx *Context) error {
	date := ctx.now()
	if c.Month != "" {
		t, err := time.ParseInLocation("2006-01", c.Month, time.Local)
		if err != nil {
			return fmt.Errorf("invalid month, use YYYY-MM: %w", err)
		}
		date = t
	}
	return ctx.show(composer.ViewMonthly, composer.DateKey(date), c.Category)
}

func (c *Context) withHabits(fn func(*habit.Tracker) error) error {
	tr, err := c.Habits()
	if err != nil {
		return err
	}
	defer tr.Close()
	return fn(tr)
}
