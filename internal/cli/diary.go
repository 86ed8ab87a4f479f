package cli

import (
	"context"
	"fmt"

	"yeardiary/internal/composer"
	"yeardiary/internal/diary"
)

type LoginCmd struct {
	Credential string `arg:"" help:"Provider credential, e.g. a Google ID token."`
	Provider   string `help:"Identity provider." default:"google"`
}

func (c *LoginCmd) Run(ctx *Context) error {
	api := ctx.newClient()
	profile, err := api.Login(context.Background(), c.Provider, c.Credential)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := ctx.saveToken(api.Token()); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	ctx.printf("logged in as %s <%s>\n", profile.Name, profile.Email)
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *Context) error {
	if err := ctx.removeToken(); err != nil {
		return err
	}
	ctx.printf("logged out\n")
	return nil
}

type TodayCmd struct{}

func (c *TodayCmd) Run(ctx *Context) error {
	return ctx.show(composer.ViewToday, "", "")
}

type DailyCmd struct {
	Date string `arg:"" help:"Date to show (YYYY-MM-DD or 'today')." default:"today"`
}

func (c *DailyCmd) Run(ctx *Context) error {
	return ctx.show(composer.ViewDaily, c.Date, "")
}

type WeekCmd struct {
	Date string `arg:"" help:"Any day of the week to show (YYYY-MM-DD or 'today')." default:"today"`
}

func (c *WeekCmd) Run(ctx *Context) error {
	return ctx.show(composer.ViewWeekly, c.Date, "")
}

// ShowCmd picks the view by name, e.g. from a shell alias or script.
type ShowCmd struct {
	View     string `arg:"" enum:"today,daily,weekly,monthly" help:"View to render: today, daily, weekly or monthly."`
	Date     string `arg:"" optional:"" help:"Date to show (YYYY-MM-DD or 'today')." default:"today"`
	Category string `short:"c" help:"Habit category for the monthly view."`
}

func (c *ShowCmd) Run(ctx *Context) error {
	kind, err := composer.ParseViewKind(c.View)
	if err != nil {
		return err
	}
	return ctx.show(kind, c.Date, c.Category)
}

// show renders one view through the controller, the same path the
// interactive client takes.
func (c *Context) show(kind composer.ViewKind, dateArg, category string) error {
	date, err := c.parseDate(dateArg)
	if err != nil {
		return err
	}

	// The habit grid is local; only the diary views need a session.
	var comp *composer.Composer
	if kind == composer.ViewMonthly {
		habits, err := c.Habits()
		if err != nil {
			return err
		}
		defer habits.Close()
		comp = &composer.Composer{Habits: habits}
	} else {
		api, err := c.Client()
		if err != nil {
			return err
		}
		comp = c.composer(api)
	}

	ctl := composer.NewController(comp, composer.TextRenderer{W: c.out()}, c.now)
	ctl.SetCategory(category)
	return ctl.Open(context.Background(), kind, date)
}

type WriteCmd struct {
	Date         string `arg:"" optional:"" help:"Date to write (YYYY-MM-DD or 'today')." default:"today"`
	GoodMoments  string `help:"Good moments." short:"g"`
	Achievements string `help:"Achievements." short:"a"`
	Gratitude    string `help:"Gratitude." short:"t"`
	Learnings    string `help:"Learnings." short:"l"`
	FutureNote   string `help:"A note to yourself one year from now." short:"f"`
	Replace      bool   `help:"Replace the whole entry instead of only the given fields."`
}

func (c *WriteCmd) Run(ctx *Context) error {
	date, err := ctx.parseDate(c.Date)
	if err != nil {
		return err
	}
	api, err := ctx.Client()
	if err != nil {
		return err
	}
	bg := context.Background()
	key := composer.DateKey(date)

	cache := composer.NewCache()
	loader := composer.NewLoader(api, cache, ctx.Log)
	// A failed read must abort: merging into an empty entry would wipe the
	// fields not given on the command line.
	raw, err := loader.Fetch(bg, key)
	if err != nil {
		return fmt.Errorf("load %s before writing: %w", key, err)
	}
	current := diary.ParseContent(raw)

	r := diary.Reflection{}
	if !c.Replace {
		r = current.Fields()
	}
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&r.GoodMoments, c.GoodMoments)
	set(&r.Achievements, c.Achievements)
	set(&r.Gratitude, c.Gratitude)
	set(&r.Learnings, c.Learnings)
	set(&r.FutureNote, c.FutureNote)

	ed := composer.NewEditor(api, cache, composer.NotifierFunc(func(msg string) {
		ctx.printf("%s\n", msg)
	}), ctx.Log)
	ed.Open(key, current)
	ed.Edit(r)
	return ed.SaveNow(bg)
}

type StatsCmd struct{}

func (c *StatsCmd) Run(ctx *Context) error {
	api, err := ctx.Client()
	if err != nil {
		return err
	}
	stats, err := api.Stats(context.Background())
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		ctx.printf("no entries yet\n")
		return nil
	}
	ctx.printf("%d entries\n\n", stats[0].TotalEntries)
	for _, s := range stats {
		ctx.printf("%s  %4d  %s .. %s\n", s.Year, s.EntriesPerYear, s.FirstEntryDate, s.LastEntryDate)
	}
	return nil
}
