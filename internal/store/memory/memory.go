// Package memory keeps users and entries in process memory. Nothing
// survives a restart; it backs tests and STORE_BACKEND=memory.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"yeardiary/internal/auth"
	"yeardiary/internal/diary"

	"github.com/google/uuid"
)

type entry struct {
	content   string
	createdAt time.Time
	updatedAt time.Time
}

type Store struct {
	mu      sync.RWMutex
	users   []auth.User
	entries map[string]map[string]entry // owner -> date -> entry
	now     func() time.Time
}

func New() *Store {
	return &Store{
		entries: map[string]map[string]entry{},
		now:     time.Now,
	}
}

func (s *Store) FindByIdentity(_ context.Context, externalID, email string) (auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ExternalID == externalID || (email != "" && u.Email == email) {
			return u, nil
		}
	}
	return auth.User{}, auth.ErrUserNotFound
}

func (s *Store) Create(_ context.Context, u *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.ExternalID == u.ExternalID || (u.Email != "" && existing.Email == u.Email) {
			return auth.ErrUserExists
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = s.now()
	s.users = append(s.users, *u)
	return nil
}

func (s *Store) Get(_ context.Context, owner, date string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[owner][date].content, nil
}

func (s *Store) List(_ context.Context, owner string, r diary.Range) ([]diary.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]diary.Entry, 0, len(s.entries[owner]))
	for date, e := range s.entries[owner] {
		if r.Contains(date) {
			out = append(out, diary.Entry{Date: date, Content: e.content})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (s *Store) Upsert(ctx context.Context, owner, date, content string) (string, error) {
	content = diary.NormalizeContent(content)
	if content == "" {
		return "", s.Delete(ctx, owner, date)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	byDate, ok := s.entries[owner]
	if !ok {
		byDate = map[string]entry{}
		s.entries[owner] = byDate
	}
	now := s.now()
	e, ok := byDate[date]
	if !ok {
		e.createdAt = now
	}
	e.content = content
	e.updatedAt = now
	byDate[date] = e
	return content, nil
}

func (s *Store) Delete(_ context.Context, owner, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries[owner], date)
	return nil
}

func (s *Store) YearlyStats(_ context.Context, owner string) ([]diary.YearStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byYear := map[string]*diary.YearStat{}
	for date := range s.entries[owner] {
		year := date
		if len(year) > 4 {
			year = year[:4]
		}
		st, ok := byYear[year]
		if !ok {
			st = &diary.YearStat{Year: year, FirstEntryDate: date, LastEntryDate: date}
			byYear[year] = st
		}
		st.EntriesPerYear++
		if date < st.FirstEntryDate {
			st.FirstEntryDate = date
		}
		if date > st.LastEntryDate {
			st.LastEntryDate = date
		}
	}

	out := make([]diary.YearStat, 0, len(byYear))
	for _, st := range byYear {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year > out[j].Year })
	return diary.TotalStats(out), nil
}
