package diary

import "context"

// Store persists diary entries. Every method is scoped to an owner and
// owners never see each other's rows.
//
// Upsert trims content; when nothing is left it behaves exactly like Delete
// and returns "". Otherwise it atomically inserts or replaces the row for
// (owner, date) and returns the stored content.
type Store interface {
	Get(ctx context.Context, owner, date string) (string, error)
	List(ctx context.Context, owner string, r Range) ([]Entry, error)
	Upsert(ctx context.Context, owner, date, content string) (string, error)
	Delete(ctx context.Context, owner, date string) error
	YearlyStats(ctx context.Context, owner string) ([]YearStat, error)
}
