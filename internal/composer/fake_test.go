package composer

import (
	"context"
	"sync"
	"time"

	"yeardiary/internal/diary"
)

type fakeAPI struct {
	mu      sync.Mutex
	entries map[string]string
	calls   map[string]int
	fail    map[string]error
	gate    map[string]chan struct{}
	saveErr error
	saves   []diary.Entry
	deletes []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		entries: map[string]string{},
		calls:   map[string]int{},
		fail:    map[string]error{},
		gate:    map[string]chan struct{}{},
	}
}

func (f *fakeAPI) Entry(ctx context.Context, date string) (string, error) {
	f.mu.Lock()
	f.calls[date]++
	g := f.gate[date]
	f.mu.Unlock()

	if g != nil {
		select {
		case <-g:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[date]; err != nil {
		return "", err
	}
	return f.entries[date], nil
}

func (f *fakeAPI) Save(_ context.Context, date, content string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.saves = append(f.saves, diary.Entry{Date: date, Content: content})
	f.entries[date] = content
	return content, nil
}

func (f *fakeAPI) Delete(_ context.Context, date string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.deletes = append(f.deletes, date)
	delete(f.entries, date)
	return nil
}

func (f *fakeAPI) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeAPI) callsFor(date string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[date]
}

func (f *fakeAPI) savesSnapshot() []diary.Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]diary.Entry(nil), f.saves...)
}

type recordingRenderer struct {
	mu     sync.Mutex
	daily  []DailyView
	weekly []WeeklyView
	today  []TodayView
	month  []MonthlyView
}

func (r *recordingRenderer) RenderToday(v TodayView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.today = append(r.today, v)
}

func (r *recordingRenderer) RenderDaily(v DailyView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.daily = append(r.daily, v)
}

func (r *recordingRenderer) RenderWeekly(v WeeklyView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.weekly = append(r.weekly, v)
}

func (r *recordingRenderer) RenderMonthly(v MonthlyView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.month = append(r.month, v)
}

func (r *recordingRenderer) dailyDates() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.daily))
	for _, v := range r.daily {
		out = append(out, DateKey(v.Date))
	}
	return out
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
