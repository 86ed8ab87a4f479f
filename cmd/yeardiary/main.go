package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"yeardiary/internal/cli"
	"yeardiary/internal/logger"
)

var CLI struct {
	Version  kong.VersionFlag
	Server   string        `help:"Diary server URL." env:"YEARDIARY_SERVER" default:"http://localhost:3000"`
	Home     string        `help:"Directory for the session token and habit data." type:"path" env:"YEARDIARY_HOME" default:"~/.config/yeardiary"`
	EnvFile  []string      `help:"Extra .env files to load for server commands." type:"path"`
	LogLevel string        `help:"Log level for client commands." env:"LOG_LEVEL" default:"warn"`
	Timeout  time.Duration `help:"Timeout for each request to the server." default:"15s"`

	Serve   cli.ServeCmd   `cmd:"" help:"Run the diary HTTP server."`
	Migrate cli.MigrateCmd `cmd:"" help:"Create or update the database schema."`

	Login  cli.LoginCmd  `cmd:"" help:"Log in and save the session token."`
	Logout cli.LogoutCmd `cmd:"" help:"Forget the saved session token."`
	Today  cli.TodayCmd  `cmd:"" help:"Show today next to the same day in past years." default:"1"`
	Daily  cli.DailyCmd  `cmd:"" help:"Show one day across three years."`
	Week   cli.WeekCmd   `cmd:"" help:"Show a week across three years."`
	Show   cli.ShowCmd   `cmd:"" help:"Render a view by name."`
	Write  cli.WriteCmd  `cmd:"" help:"Write or update an entry."`
	Stats  cli.StatsCmd  `cmd:"" help:"Show entry counts per year."`

	Habit struct {
		List   cli.HabitListCmd   `cmd:"" help:"List categories." default:"1"`
		Add    cli.HabitAddCmd    `cmd:"" help:"Add a custom category."`
		Edit   cli.HabitEditCmd   `cmd:"" help:"Rename or recolor a custom category."`
		Delete cli.HabitDeleteCmd `cmd:"" help:"Delete a custom category and its records."`
		Hide   cli.HabitHideCmd   `cmd:"" help:"Hide a category."`
		Unhide cli.HabitUnhideCmd `cmd:"" help:"Show a hidden category again."`
		Record cli.HabitRecordCmd `cmd:"" help:"Save a weekly record."`
		Month  cli.HabitMonthCmd  `cmd:"" help:"Show a month of weekly records."`
	} `cmd:"" help:"Track weekly habits."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("yeardiary"),
		kong.Description("A diary that puts each day next to the same day in past years"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	lg, err := logger.New(logger.Config{Level: CLI.LogLevel})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	appCtx := &cli.Context{
		Server:  CLI.Server,
		Home:    CLI.Home,
		EnvFile: CLI.EnvFile,
		Log:     lg,
		Timeout: CLI.Timeout,
	}

	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
