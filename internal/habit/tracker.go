// Package habit tracks weekly goals per category. State is local to the
// device and kept in a Badger database, separate from the diary server.
package habit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v4"
)

const (
	customKey    = "categories/custom"
	hiddenKey    = "categories/hidden"
	recordPrefix = "weekly/"
)

// Record is one category's notes for one week.
type Record struct {
	Goals        string `json:"goals"`
	Achievements string `json:"achievements"`
	Notes        string `json:"notes"`
	Rating       int    `json:"rating"`
}

// HasContent reports whether goals or achievements were written.
func (r Record) HasContent() bool {
	return r.Goals != "" || r.Achievements != ""
}

// WeekCard is a week of a month together with its record.
type WeekCard struct {
	Week
	Record  Record
	Current bool
}

type Tracker struct {
	db  *badger.DB
	log *log.Logger
}

// Open opens the tracker database at path. An empty path keeps everything in
// memory.
func Open(path string, logger *log.Logger) (*Tracker, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil
	opts.SyncWrites = path != ""

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open habit db: %w", err)
	}
	if logger != nil {
		logger.Debug("habit db opened", "path", path, "in_memory", path == "")
	}
	return &Tracker{db: db, log: logger}, nil
}

func (t *Tracker) Close() error {
	return t.db.Close()
}

func recordKey(categoryID string, weekStart time.Time) []byte {
	return []byte(recordPrefix + categoryID + "/" + WeekKey(WeekStart(weekStart)))
}

func getJSON(txn *badger.Txn, key string, v any) error {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func setJSON(txn *badger.Txn, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return txn.Set([]byte(key), data)
}

type state struct {
	custom []Category
	hidden []string
}

func loadState(txn *badger.Txn) (state, error) {
	var st state
	if err := getJSON(txn, customKey, &st.custom); err != nil {
		return state{}, fmt.Errorf("read custom categories: %w", err)
	}
	if err := getJSON(txn, hiddenKey, &st.hidden); err != nil {
		return state{}, fmt.Errorf("read hidden categories: %w", err)
	}
	return st, nil
}

func (st state) isHidden(id string) bool {
	for _, h := range st.hidden {
		if h == id {
			return true
		}
	}
	return false
}

func (st state) customIndex(id string) int {
	for i, c := range st.custom {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (st state) exists(id string) bool {
	return isBuiltin(id) || st.customIndex(id) >= 0
}

// Categories lists built-ins followed by custom categories in creation
// order. Hidden ones are left out unless includeHidden is set.
func (t *Tracker) Categories(ctx context.Context, includeHidden bool) ([]Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var st state
	err := t.db.View(func(txn *badger.Txn) error {
		var err error
		st, err = loadState(txn)
		return err
	})
	if err != nil {
		return nil, err
	}

	all := Builtins()
	for _, c := range st.custom {
		c.Custom = true
		all = append(all, c)
	}

	out := make([]Category, 0, len(all))
	for _, c := range all {
		c.Hidden = st.isHidden(c.ID)
		if c.Hidden && !includeHidden {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (t *Tracker) AddCategory(ctx context.Context, name, color string) (Category, error) {
	if err := ctx.Err(); err != nil {
		return Category{}, err
	}
	name, color, err := normalize(name, color)
	if err != nil {
		return Category{}, err
	}
	id, err := newCategoryID()
	if err != nil {
		return Category{}, err
	}

	c := Category{ID: id, Name: name, Color: color, Custom: true}
	err = t.db.Update(func(txn *badger.Txn) error {
		st, err := loadState(txn)
		if err != nil {
			return err
		}
		return setJSON(txn, customKey, append(st.custom, c))
	})
	if err != nil {
		return Category{}, err
	}
	t.debug("category added", "id", c.ID)
	return c, nil
}

// UpdateCategory renames or recolors a custom category.
func (t *Tracker) UpdateCategory(ctx context.Context, id, name, color string) (Category, error) {
	if err := ctx.Err(); err != nil {
		return Category{}, err
	}
	if isBuiltin(id) {
		return Category{}, ErrBuiltinCategory
	}
	name, color, err := normalize(name, color)
	if err != nil {
		return Category{}, err
	}

	var out Category
	err = t.db.Update(func(txn *badger.Txn) error {
		st, err := loadState(txn)
		if err != nil {
			return err
		}
		i := st.customIndex(id)
		if i < 0 {
			return ErrCategoryNotFound
		}
		st.custom[i].Name = name
		st.custom[i].Color = color
		out = st.custom[i]
		out.Custom = true
		out.Hidden = st.isHidden(id)
		return setJSON(txn, customKey, st.custom)
	})
	if err != nil {
		return Category{}, err
	}
	return out, nil
}

// DeleteCategory removes a custom category along with all of its weekly
// records and its hidden flag.
func (t *Tracker) DeleteCategory(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if isBuiltin(id) {
		return ErrBuiltinCategory
	}

	removed := 0
	err := t.db.Update(func(txn *badger.Txn) error {
		st, err := loadState(txn)
		if err != nil {
			return err
		}
		i := st.customIndex(id)
		if i < 0 {
			return ErrCategoryNotFound
		}
		st.custom = append(st.custom[:i], st.custom[i+1:]...)
		if err := setJSON(txn, customKey, st.custom); err != nil {
			return err
		}
		if err := setJSON(txn, hiddenKey, without(st.hidden, id)); err != nil {
			return err
		}

		prefix := []byte(recordPrefix + id + "/")
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		var keys [][]byte
		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		removed = len(keys)
		return nil
	})
	if err != nil {
		return err
	}
	t.debug("category deleted", "id", id, "records", removed)
	return nil
}

// SetHidden hides or shows any category, built-in or custom.
func (t *Tracker) SetHidden(ctx context.Context, id string, hidden bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.db.Update(func(txn *badger.Txn) error {
		st, err := loadState(txn)
		if err != nil {
			return err
		}
		if !st.exists(id) {
			return ErrCategoryNotFound
		}
		next := without(st.hidden, id)
		if hidden {
			next = append(next, id)
		}
		return setJSON(txn, hiddenKey, next)
	})
}

// SaveRecord stores the record for the week containing weekOf.
func (t *Tracker) SaveRecord(ctx context.Context, categoryID string, weekOf time.Time, r Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.Rating < 0 || r.Rating > 5 {
		return ErrInvalidRating
	}
	r.Goals = strings.TrimSpace(r.Goals)
	r.Achievements = strings.TrimSpace(r.Achievements)
	r.Notes = strings.TrimSpace(r.Notes)

	return t.db.Update(func(txn *badger.Txn) error {
		st, err := loadState(txn)
		if err != nil {
			return err
		}
		if !st.exists(categoryID) {
			return ErrCategoryNotFound
		}
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		return txn.Set(recordKey(categoryID, weekOf), data)
	})
}

// Record returns the record for the week containing weekOf, or a zero
// Record when nothing was saved.
func (t *Tracker) Record(ctx context.Context, categoryID string, weekOf time.Time) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	var r Record
	err := t.db.View(func(txn *badger.Txn) error {
		return readRecord(txn, categoryID, weekOf, &r)
	})
	return r, err
}

func readRecord(txn *badger.Txn, categoryID string, weekOf time.Time, r *Record) error {
	item, err := txn.Get(recordKey(categoryID, weekOf))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, r)
	})
}

// Month returns one card per week overlapping the month. The week holding
// today is flagged as current.
func (t *Tracker) Month(ctx context.Context, categoryID string, year int, month time.Month, today time.Time) ([]WeekCard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	weeks := WeeksInMonth(year, month, today.Location())
	cards := make([]WeekCard, len(weeks))
	err := t.db.View(func(txn *badger.Txn) error {
		for i, w := range weeks {
			cards[i] = WeekCard{Week: w, Current: w.Contains(today)}
			if err := readRecord(txn, categoryID, w.Start, &cards[i].Record); err != nil {
				return fmt.Errorf("read %s: %w", WeekKey(w.Start), err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cards, nil
}

func (t *Tracker) debug(msg string, kv ...any) {
	if t.log != nil {
		t.log.Debug(msg, kv...)
	}
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
