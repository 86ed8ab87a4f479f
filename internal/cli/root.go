package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"yeardiary/internal/client"
	"yeardiary/internal/composer"
	"yeardiary/internal/habit"

	"github.com/charmbracelet/log"
)

// Context is shared by every command.
type Context struct {
	Server  string
	Home    string
	EnvFile []string
	Log     *log.Logger
	Out     io.Writer
	Now     func() time.Time
	// Timeout bounds each API request. Zero keeps the client default.
	Timeout time.Duration
}

const tokenFile = "token"

func (c *Context) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Context) out() io.Writer {
	if c.Out != nil {
		return c.Out
	}
	return os.Stdout
}

func (c *Context) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) saveToken(token string) error {
	if err := os.MkdirAll(c.Home, 0o700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.Home, tokenFile), []byte(token+"\n"), 0o600)
}

func (c *Context) removeToken() error {
	err := os.Remove(filepath.Join(c.Home, tokenFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Client returns an API client using the token saved by the login command.
func (c *Context) Client() (*client.Client, error) {
	b, err := os.ReadFile(filepath.Join(c.Home, tokenFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: run `yeardiary login` first", client.ErrNotLoggedIn)
	}
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	return c.newClient(client.WithToken(strings.TrimSpace(string(b)))), nil
}

func (c *Context) newClient(opts ...client.Option) *client.Client {
	if c.Timeout > 0 {
		opts = append(opts, client.WithHTTPClient(&http.Client{Timeout: c.Timeout}))
	}
	return client.New(c.Server, opts...)
}

// Habits opens the local habit database under Home.
func (c *Context) Habits() (*habit.Tracker, error) {
	if err := os.MkdirAll(c.Home, 0o700); err != nil {
		return nil, err
	}
	return habit.Open(filepath.Join(c.Home, "habits"), c.Log)
}

func (c *Context) composer(api *client.Client) *composer.Composer {
	return &composer.Composer{
		Loader: composer.NewLoader(api, composer.NewCache(), c.Log),
	}
}

// parseDate accepts YYYY-MM-DD or "today", interpreted in local time.
func (c *Context) parseDate(s string) (time.Time, error) {
	if s == "" || s == "today" {
		return c.now(), nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, use YYYY-MM-DD or 'today': %w", err)
	}
	return t, nil
}
