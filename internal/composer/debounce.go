package composer

import (
	"sync"
	"time"
)

// PendingTask holds at most one delayed function. Scheduling again replaces
// whatever was waiting.
type PendingTask struct {
	mu    sync.Mutex
	timer *time.Timer
	fn    func()
	gen   uint64
}

// Schedule runs fn after d unless it is replaced, cancelled or flushed first.
func (p *PendingTask) Schedule(d time.Duration, fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.resetLocked()
	gen := p.gen
	p.fn = fn
	p.timer = time.AfterFunc(d, func() { p.fire(gen) })
}

func (p *PendingTask) fire(gen uint64) {
	p.mu.Lock()
	if gen != p.gen || p.fn == nil {
		p.mu.Unlock()
		return
	}
	fn := p.fn
	p.fn = nil
	p.timer = nil
	p.mu.Unlock()

	fn()
}

// Flush runs the pending function now, on the caller's goroutine. It reports
// whether anything was pending.
func (p *PendingTask) Flush() bool {
	p.mu.Lock()
	fn := p.fn
	p.resetLocked()
	p.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

// Cancel drops the pending function. It reports whether anything was pending.
func (p *PendingTask) Cancel() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	pending := p.fn != nil
	p.resetLocked()
	return pending
}

func (p *PendingTask) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fn != nil
}

// resetLocked stops the timer and invalidates any callback already racing
// to run.
func (p *PendingTask) resetLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.fn = nil
	p.gen++
}
