package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"yeardiary/internal/auth"
	"yeardiary/internal/diary"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) FindByIdentity(ctx context.Context, externalID, email string) (auth.User, error) {
	q := s.DB.WithContext(ctx).Where("external_id = ?", externalID)
	if email != "" {
		q = q.Or("email = ?", email)
	}
	var row UserRow
	if err := q.Order("created_at asc").First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return auth.User{}, auth.ErrUserNotFound
		}
		return auth.User{}, err
	}
	return toUser(row), nil
}

func (s *Store) Create(ctx context.Context, u *auth.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()
	row := UserRow{
		ID:         u.ID,
		ExternalID: u.ExternalID,
		Email:      u.Email,
		Name:       u.Name,
		CreatedAt:  u.CreatedAt,
	}
	if u.Picture != "" {
		row.Picture = &u.Picture
	}

	// Insert only when neither identity column is taken; a zero row count
	// means another login got there first.
	res := s.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return auth.ErrUserExists
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return auth.ErrUserExists
	}
	return nil
}

func toUser(row UserRow) auth.User {
	u := auth.User{
		ID:         row.ID,
		ExternalID: row.ExternalID,
		Email:      row.Email,
		Name:       row.Name,
		CreatedAt:  row.CreatedAt,
	}
	if row.Picture != nil {
		u.Picture = *row.Picture
	}
	return u
}

func (s *Store) Get(ctx context.Context, owner, date string) (string, error) {
	var rows []EntryRow
	if err := s.DB.WithContext(ctx).
		Select("content").
		Where("user_id = ? AND date = ?", owner, date).
		Limit(1).
		Find(&rows).Error; err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", nil
	}
	return rows[0].Content, nil
}

func (s *Store) List(ctx context.Context, owner string, r diary.Range) ([]diary.Entry, error) {
	q := s.DB.WithContext(ctx).Model(&EntryRow{}).Where("user_id = ?", owner)
	if r.Start != "" {
		q = q.Where("date >= ?", r.Start)
	}
	if r.End != "" {
		q = q.Where("date <= ?", r.End)
	}

	var rows []EntryRow
	if err := q.Select("date", "content").Order("date desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]diary.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, diary.Entry{Date: row.Date, Content: row.Content})
	}
	return out, nil
}

func (s *Store) Upsert(ctx context.Context, owner, date, content string) (string, error) {
	content = diary.NormalizeContent(content)
	if content == "" {
		return "", s.Delete(ctx, owner, date)
	}

	now := time.Now().UTC()
	row := EntryRow{
		UserID:    owner,
		Date:      date,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return "", fmt.Errorf("upsert entry: %w", err)
	}
	return content, nil
}

func (s *Store) Delete(ctx context.Context, owner, date string) error {
	return s.DB.WithContext(ctx).
		Where("user_id = ? AND date = ?", owner, date).
		Delete(&EntryRow{}).Error
}

func (s *Store) YearlyStats(ctx context.Context, owner string) ([]diary.YearStat, error) {
	var out []diary.YearStat
	if err := s.DB.WithContext(ctx).Raw(`
		select substr(date, 1, 4) as year,
		       count(*) as entries_per_year,
		       min(date) as first_entry_date,
		       max(date) as last_entry_date
		from entries
		where user_id = ?
		group by substr(date, 1, 4)
		order by year desc
	`, owner).Scan(&out).Error; err != nil {
		return nil, err
	}
	if out == nil {
		out = []diary.YearStat{}
	}
	return diary.TotalStats(out), nil
}
