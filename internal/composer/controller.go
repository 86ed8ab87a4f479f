package composer

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type ViewKind int

const (
	ViewToday ViewKind = iota
	ViewDaily
	ViewWeekly
	ViewMonthly
)

func (k ViewKind) String() string {
	switch k {
	case ViewToday:
		return "today"
	case ViewDaily:
		return "daily"
	case ViewWeekly:
		return "weekly"
	case ViewMonthly:
		return "monthly"
	default:
		return fmt.Sprintf("view(%d)", int(k))
	}
}

// ParseViewKind accepts the names produced by String.
func ParseViewKind(s string) (ViewKind, error) {
	for k := ViewToday; k <= ViewMonthly; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown view %q", s)
}

// Renderer receives finished view models.
type Renderer interface {
	RenderToday(TodayView)
	RenderDaily(DailyView)
	RenderWeekly(WeeklyView)
	RenderMonthly(MonthlyView)
}

// Controller holds navigation state and renders the current view. Only the
// latest navigation request is rendered; a request overtaken while loading
// is dropped.
type Controller struct {
	composer *Composer
	renderer Renderer
	now      func() time.Time
	epoch    Epoch

	mu       sync.Mutex
	view     ViewKind
	date     time.Time
	category string

	renderMu sync.Mutex
}

func NewController(c *Composer, r Renderer, now func() time.Time) *Controller {
	if now == nil {
		now = time.Now
	}
	return &Controller{composer: c, renderer: r, now: now, date: now()}
}

func (c *Controller) View() ViewKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Date is the navigable date shared by the daily, weekly and monthly views.
func (c *Controller) Date() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.date
}

// Show switches view and renders it.
func (c *Controller) Show(ctx context.Context, kind ViewKind) error {
	c.mu.Lock()
	c.view = kind
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// Open switches to kind at date and renders once.
func (c *Controller) Open(ctx context.Context, kind ViewKind, date time.Time) error {
	c.mu.Lock()
	c.view = kind
	c.date = date
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// GoTo moves the navigable date and renders.
func (c *Controller) GoTo(ctx context.Context, date time.Time) error {
	c.mu.Lock()
	c.date = date
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// SetCategory picks the habit category for the monthly view without
// rendering.
func (c *Controller) SetCategory(id string) {
	c.mu.Lock()
	c.category = id
	c.mu.Unlock()
}

func (c *Controller) Next(ctx context.Context) error { return c.page(ctx, 1) }
func (c *Controller) Prev(ctx context.Context) error { return c.page(ctx, -1) }

// page moves one day, one week or one month depending on the view. The
// today view always shows the current date and does not page.
func (c *Controller) page(ctx context.Context, dir int) error {
	c.mu.Lock()
	switch c.view {
	case ViewDaily:
		c.date = c.date.AddDate(0, 0, dir)
	case ViewWeekly:
		c.date = c.date.AddDate(0, 0, 7*dir)
	case ViewMonthly:
		c.date = AddMonths(c.date, dir)
	}
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// Refresh rebuilds and renders the current view.
func (c *Controller) Refresh(ctx context.Context) error {
	n := c.epoch.Next()

	c.mu.Lock()
	view, date, category := c.view, c.date, c.category
	c.mu.Unlock()
	today := c.now()

	var render func()
	switch view {
	case ViewToday:
		v := c.composer.Today(ctx, today)
		render = func() { c.renderer.RenderToday(v) }
	case ViewDaily:
		v := c.composer.Daily(ctx, date)
		render = func() { c.renderer.RenderDaily(v) }
	case ViewWeekly:
		v := c.composer.Weekly(ctx, date, today)
		render = func() { c.renderer.RenderWeekly(v) }
	case ViewMonthly:
		v, err := c.composer.Monthly(ctx, date, today, category)
		if err != nil {
			return fmt.Errorf("monthly view: %w", err)
		}
		render = func() { c.renderer.RenderMonthly(v) }
	default:
		return fmt.Errorf("unknown view %d", view)
	}

	c.renderMu.Lock()
	defer c.renderMu.Unlock()
	if !c.epoch.Valid(n) {
		return nil
	}
	render()
	return nil
}

// AddMonths moves t by n months, clamping the day to the last day of the
// target month instead of overflowing into the next one.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}
