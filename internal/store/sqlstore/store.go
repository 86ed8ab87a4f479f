// Package sqlstore implements the stores on database/sql with hand-written
// SQL. The same statements run on SQLite (modernc) and Postgres (lib/pq);
// only placeholders and the schema differ.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"yeardiary/internal/auth"
	"yeardiary/internal/config"
	"yeardiary/internal/diary"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type Store struct {
	db     *sql.DB
	driver string
}

// New wraps an open handle. driver is config.DriverPostgres or
// config.DriverSQLite.
func New(db *sql.DB, driver string) (*Store, error) {
	if driver != config.DriverPostgres && driver != config.DriverSQLite {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	return &Store{db: db, driver: driver}, nil
}

// Migrate creates tables and indexes when missing.
func (s *Store) Migrate(ctx context.Context) error {
	schema := sqliteSchema
	if s.driver == config.DriverPostgres {
		schema = postgresSchema
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("exec schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *Store) rebind(q string) string {
	if s.driver != config.DriverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) FindByIdentity(ctx context.Context, externalID, email string) (auth.User, error) {
	var (
		u       auth.User
		picture sql.NullString
	)
	err := s.db.QueryRowContext(ctx, s.rebind(`
		select id, external_id, email, name, picture
		from users
		where external_id = ? or (? <> '' and email = ?)
		order by created_at asc
		limit 1
	`), externalID, email, email).Scan(&u.ID, &u.ExternalID, &u.Email, &u.Name, &picture)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.User{}, auth.ErrUserNotFound
	}
	if err != nil {
		return auth.User{}, err
	}
	u.Picture = picture.String
	return u, nil
}

func (s *Store) Create(ctx context.Context, u *auth.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()
	var picture sql.NullString
	if u.Picture != "" {
		picture = sql.NullString{String: u.Picture, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`
		insert into users (id, external_id, email, name, picture, created_at)
		values (?, ?, ?, ?, ?, ?)
	`), u.ID, u.ExternalID, u.Email, u.Name, picture, u.CreatedAt)
	if isUniqueViolation(err) {
		return auth.ErrUserExists
	}
	return err
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

func (s *Store) Get(ctx context.Context, owner, date string) (string, error) {
	var content string
	err := s.db.QueryRowContext(ctx, s.rebind(
		`select content from entries where user_id = ? and date = ?`,
	), owner, date).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return content, err
}

func (s *Store) List(ctx context.Context, owner string, r diary.Range) ([]diary.Entry, error) {
	q := `select date, content from entries where user_id = ?`
	args := []any{owner}
	if r.Start != "" {
		q += ` and date >= ?`
		args = append(args, r.Start)
	}
	if r.End != "" {
		q += ` and date <= ?`
		args = append(args, r.End)
	}
	q += ` order by date desc`

	rows, err := s.db.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []diary.Entry{}
	for rows.Next() {
		var e diary.Entry
		if err := rows.Scan(&e.Date, &e.Content); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Upsert(ctx context.Context, owner, date, content string) (string, error) {
	content = diary.NormalizeContent(content)
	if content == "" {
		return "", s.Delete(ctx, owner, date)
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, s.rebind(`
		insert into entries (user_id, date, content, created_at, updated_at)
		values (?, ?, ?, ?, ?)
		on conflict (user_id, date)
		do update set content = excluded.content, updated_at = excluded.updated_at
	`), owner, date, content, now, now)
	if err != nil {
		return "", fmt.Errorf("upsert entry: %w", err)
	}
	return content, nil
}

func (s *Store) Delete(ctx context.Context, owner, date string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		`delete from entries where user_id = ? and date = ?`,
	), owner, date)
	return err
}

func (s *Store) YearlyStats(ctx context.Context, owner string) ([]diary.YearStat, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		select substr(date, 1, 4) as year, count(*), min(date), max(date)
		from entries
		where user_id = ?
		group by substr(date, 1, 4)
		order by year desc
	`), owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []diary.YearStat{}
	for rows.Next() {
		var st diary.YearStat
		if err := rows.Scan(&st.Year, &st.EntriesPerYear, &st.FirstEntryDate, &st.LastEntryDate); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return diary.TotalStats(out), nil
}
