package composer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"yeardiary/internal/diary"

	"github.com/charmbracelet/log"
)

// ErrNoDate is returned when saving before Open.
var ErrNoDate = errors.New("no date open")

// AutosaveDelay is how long the editor waits after the last edit.
const AutosaveDelay = 3 * time.Second

// Saver writes entries. *client.Client satisfies it.
type Saver interface {
	Save(ctx context.Context, date, content string) (string, error)
	Delete(ctx context.Context, date string) error
}

// Notifier shows short-lived status messages.
type Notifier interface {
	Notify(msg string)
}

type NotifierFunc func(msg string)

func (f NotifierFunc) Notify(msg string) { f(msg) }

const (
	MsgSaved      = "entry saved"
	MsgDeleted    = "empty entry deleted"
	MsgSaveFailed = "save failed, please retry"
)

// Editor holds the draft for one date and writes it back, either after the
// autosave delay or when SaveNow is called.
type Editor struct {
	saver  Saver
	cache  *Cache
	notify Notifier
	log    *log.Logger

	Delay   time.Duration
	Timeout time.Duration

	pending PendingTask

	mu    sync.Mutex
	date  string
	draft diary.Content
}

func NewEditor(saver Saver, cache *Cache, notify Notifier, logger *log.Logger) *Editor {
	if notify == nil {
		notify = NotifierFunc(func(string) {})
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Editor{
		saver:   saver,
		cache:   cache,
		notify:  notify,
		log:     logger,
		Delay:   AutosaveDelay,
		Timeout: 30 * time.Second,
	}
}

// Open starts editing date. A save still pending for the previous date is
// written first.
func (e *Editor) Open(date string, content diary.Content) {
	e.pending.Flush()

	e.mu.Lock()
	e.date = date
	e.draft = content
	e.mu.Unlock()
}

// Draft returns the date and content being edited.
func (e *Editor) Draft() (string, diary.Content) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.date, e.draft
}

// Edit replaces the draft and restarts the autosave delay.
func (e *Editor) Edit(r diary.Reflection) {
	e.mu.Lock()
	e.draft = diary.Structured(r)
	date, draft := e.date, e.draft
	e.mu.Unlock()

	e.pending.Schedule(e.Delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.Timeout)
		defer cancel()
		_ = e.save(ctx, date, draft)
	})
}

// Pending reports whether an autosave is waiting.
func (e *Editor) Pending() bool {
	return e.pending.Pending()
}

// SaveNow cancels any pending autosave and saves the current draft.
func (e *Editor) SaveNow(ctx context.Context) error {
	e.pending.Cancel()
	date, draft := e.Draft()
	return e.save(ctx, date, draft)
}

// Close writes any pending autosave.
func (e *Editor) Close() {
	e.pending.Flush()
}

// save writes content for date. Empty content deletes the entry. The cache
// only changes once the server has accepted the write.
func (e *Editor) save(ctx context.Context, date string, content diary.Content) error {
	if date == "" {
		return ErrNoDate
	}

	encoded := content.Encode()
	if encoded == "" {
		if err := e.saver.Delete(ctx, date); err != nil {
			e.log.Warn("delete entry failed", "date", date, "err", err)
			e.notify.Notify(MsgSaveFailed)
			return fmt.Errorf("delete %s: %w", date, err)
		}
		e.cache.Set(date, "")
		e.notify.Notify(MsgDeleted)
		return nil
	}

	stored, err := e.saver.Save(ctx, date, encoded)
	if err != nil {
		e.log.Warn("save entry failed", "date", date, "err", err)
		e.notify.Notify(MsgSaveFailed)
		return fmt.Errorf("save %s: %w", date, err)
	}
	e.cache.Set(date, stored)
	e.notify.Notify(MsgSaved)
	return nil
}
