// Package storetest is the behavior every backend must share. Backend
// packages call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"yeardiary/internal/auth"
	"yeardiary/internal/diary"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Backend is what a storage implementation provides.
type Backend interface {
	diary.Store
	auth.UserStore
}

// Run exercises a fresh backend per subtest.
func Run(t *testing.T, newBackend func(t *testing.T) Backend) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, s Backend)
	}{
		{"GetMissingIsEmpty", testGetMissingIsEmpty},
		{"UpsertTrimsAndReturns", testUpsertTrims},
		{"UpsertReplaces", testUpsertReplaces},
		{"UpsertIdempotent", testUpsertIdempotent},
		{"UpsertEmptyDeletes", testUpsertEmptyDeletes},
		{"DeleteMissingIsNoop", testDeleteMissing},
		{"ListOrderAndRange", testListOrderAndRange},
		{"OwnerIsolation", testOwnerIsolation},
		{"YearlyStats", testYearlyStats},
		{"ConcurrentUpsertsSameKey", testConcurrentUpserts},
		{"Users", testUsers},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newBackend(t))
		})
	}
}

func testGetMissingIsEmpty(t *testing.T, s Backend) {
	got, err := s.Get(context.Background(), "owner-a", "2025-01-01")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func testUpsertTrims(t *testing.T, s Backend) {
	ctx := context.Background()
	stored, err := s.Upsert(ctx, "owner-a", "2025-01-01", "  hello world \n")
	require.NoError(t, err)
	assert.Equal(t, "hello world", stored)

	got, err := s.Get(ctx, "owner-a", "2025-01-01")
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
}

func testUpsertReplaces(t *testing.T, s Backend) {
	ctx := context.Background()
	_, err := s.Upsert(ctx, "owner-a", "2025-01-01", "first")
	require.NoError(t, err)
	_, err = s.Upsert(ctx, "owner-a", "2025-01-01", "second")
	require.NoError(t, err)

	got, err := s.Get(ctx, "owner-a", "2025-01-01")
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	list, err := s.List(ctx, "owner-a", diary.Range{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func testUpsertIdempotent(t *testing.T, s Backend) {
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := s.Upsert(ctx, "owner-a", "2025-01-01", `{"goodMoments":"tea"}`)
		require.NoError(t, err)
	}
	list, err := s.List(ctx, "owner-a", diary.Range{})
	require.NoError(t, err)
	assert.Equal(t, []diary.Entry{{Date: "2025-01-01", Content: `{"goodMoments":"tea"}`}}, list)
}

func testUpsertEmptyDeletes(t *testing.T, s Backend) {
	ctx := context.Background()
	_, err := s.Upsert(ctx, "owner-a", "2025-01-01", "hello")
	require.NoError(t, err)

	stored, err := s.Upsert(ctx, "owner-a", "2025-01-01", "   ")
	require.NoError(t, err)
	assert.Equal(t, "", stored)

	got, err := s.Get(ctx, "owner-a", "2025-01-01")
	require.NoError(t, err)
	assert.Equal(t, "", got)

	list, err := s.List(ctx, "owner-a", diary.Range{})
	require.NoError(t, err)
	assert.Empty(t, list)

	// Empty save of a date that never existed does not create anything.
	_, err = s.Upsert(ctx, "owner-a", "2025-01-02", "")
	require.NoError(t, err)
	list, err = s.List(ctx, "owner-a", diary.Range{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func testDeleteMissing(t *testing.T, s Backend) {
	assert.NoError(t, s.Delete(context.Background(), "owner-a", "2025-01-01"))
}

func testListOrderAndRange(t *testing.T, s Backend) {
	ctx := context.Background()
	for _, d := range []string{"2024-03-15", "2025-01-01", "2023-12-31", "2024-12-31", "2024-01-01"} {
		_, err := s.Upsert(ctx, "owner-a", d, "entry "+d)
		require.NoError(t, err)
	}

	all, err := s.List(ctx, "owner-a", diary.Range{})
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-01", "2024-12-31", "2024-03-15", "2024-01-01", "2023-12-31"}, dates(all))

	in2024, err := s.List(ctx, "owner-a", diary.Range{Start: "2024-01-01", End: "2024-12-31"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-12-31", "2024-03-15", "2024-01-01"}, dates(in2024))
	assert.Equal(t, "entry 2024-12-31", in2024[0].Content)

	from, err := s.List(ctx, "owner-a", diary.Range{Start: "2024-12-31"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-01", "2024-12-31"}, dates(from))

	until, err := s.List(ctx, "owner-a", diary.Range{End: "2024-01-01"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2023-12-31"}, dates(until))
}

func testOwnerIsolation(t *testing.T, s Backend) {
	ctx := context.Background()
	_, err := s.Upsert(ctx, "owner-a", "2025-01-01", "mine")
	require.NoError(t, err)
	_, err = s.Upsert(ctx, "owner-b", "2025-01-01", "theirs")
	require.NoError(t, err)

	got, err := s.Get(ctx, "owner-b", "2025-01-01")
	require.NoError(t, err)
	assert.Equal(t, "theirs", got)

	list, err := s.List(ctx, "owner-a", diary.Range{})
	require.NoError(t, err)
	assert.Equal(t, []diary.Entry{{Date: "2025-01-01", Content: "mine"}}, list)

	require.NoError(t, s.Delete(ctx, "owner-b", "2025-01-01"))
	got, err = s.Get(ctx, "owner-a", "2025-01-01")
	require.NoError(t, err)
	assert.Equal(t, "mine", got)

	stats, err := s.YearlyStats(ctx, "owner-b")
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func testYearlyStats(t *testing.T, s Backend) {
	ctx := context.Background()
	for _, d := range []string{"2023-05-01", "2024-02-29", "2024-11-30", "2024-07-04", "2025-01-01"} {
		_, err := s.Upsert(ctx, "owner-a", d, "x")
		require.NoError(t, err)
	}

	stats, err := s.YearlyStats(ctx, "owner-a")
	require.NoError(t, err)
	assert.Equal(t, []diary.YearStat{
		{Year: "2025", EntriesPerYear: 1, TotalEntries: 5, FirstEntryDate: "2025-01-01", LastEntryDate: "2025-01-01"},
		{Year: "2024", EntriesPerYear: 3, TotalEntries: 5, FirstEntryDate: "2024-02-29", LastEntryDate: "2024-11-30"},
		{Year: "2023", EntriesPerYear: 1, TotalEntries: 5, FirstEntryDate: "2023-05-01", LastEntryDate: "2023-05-01"},
	}, stats)
}

func testConcurrentUpserts(t *testing.T, s Backend) {
	ctx := context.Background()
	const writers = 8

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := s.Upsert(ctx, "owner-a", "2025-01-01", "writer"); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	list, err := s.List(ctx, "owner-a", diary.Range{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func testUsers(t *testing.T, s Backend) {
	ctx := context.Background()

	_, err := s.FindByIdentity(ctx, "g-1", "a@example.com")
	assert.True(t, errors.Is(err, auth.ErrUserNotFound))

	u := auth.User{ExternalID: "g-1", Email: "a@example.com", Name: "Alice", Picture: "http://pic"}
	require.NoError(t, s.Create(ctx, &u))
	assert.NotEmpty(t, u.ID)

	byExt, err := s.FindByIdentity(ctx, "g-1", "other@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byExt.ID)
	assert.Equal(t, "Alice", byExt.Name)
	assert.Equal(t, "http://pic", byExt.Picture)

	byEmail, err := s.FindByIdentity(ctx, "g-other", "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	dup := auth.User{ExternalID: "g-1", Email: "b@example.com", Name: "Dup"}
	assert.ErrorIs(t, s.Create(ctx, &dup), auth.ErrUserExists)

	noPic := auth.User{ExternalID: "g-2", Email: "c@example.com", Name: "Carol"}
	require.NoError(t, s.Create(ctx, &noPic))
	got, err := s.FindByIdentity(ctx, "g-2", "")
	require.NoError(t, err)
	assert.Equal(t, "", got.Picture)
	assert.NotEqual(t, u.ID, got.ID)
}

func dates(entries []diary.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Date)
	}
	return out
}
