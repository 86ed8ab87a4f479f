package gormstore

import "time"

// UserRow is the users table.
type UserRow struct {
	ID         string    `gorm:"primaryKey;size:64"`
	ExternalID string    `gorm:"column:external_id;uniqueIndex;size:255;not null"`
	Email      string    `gorm:"uniqueIndex;size:320;not null"`
	Name       string    `gorm:"not null"`
	Picture    *string   `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"not null"`
}

func (UserRow) TableName() string { return "users" }

// EntryRow is the entries table. (user_id, date) is unique; date is the
// YYYY-MM-DD key, stored as text so ordering is lexical.
type EntryRow struct {
	ID        uint64    `gorm:"primaryKey"`
	UserID    string    `gorm:"size:64;not null;uniqueIndex:uq_entries_user_date,priority:1"`
	Date      string    `gorm:"size:10;not null;uniqueIndex:uq_entries_user_date,priority:2"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (EntryRow) TableName() string { return "entries" }

// Models lists every table for AutoMigrate.
func Models() []any {
	return []any{&UserRow{}, &EntryRow{}}
}
