package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"yeardiary/internal/auth"
	"yeardiary/internal/client"
	"yeardiary/internal/config"
	apihttp "yeardiary/internal/http"
	"yeardiary/internal/logger"
	"yeardiary/internal/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T) (*Context, *bytes.Buffer) {
	t.Helper()
	return newTestContextWith(t, nil)
}

// newTestContextWith lets a test wrap the API handler to inject failures.
func newTestContextWith(t *testing.T, wrap func(http.Handler) http.Handler) (*Context, *bytes.Buffer) {
	t.Helper()
	st := memory.New()
	gate := &auth.Gate{
		Users: st,
		JWT:   auth.NewJWT("secret", 0),
		Verifiers: map[string]auth.Verifier{
			"google": auth.VerifierFunc(func(context.Context, string) (auth.ExternalIdentity, error) {
				return auth.ExternalIdentity{}, errors.New("rejected")
			}),
		},
		TestMode: true,
	}
	cfg := config.Config{LoginRatePerMinute: 1000, LoginRateBurst: 1000}
	var h http.Handler = apihttp.NewRouter(cfg, apihttp.Deps{Gate: gate, Store: st, Log: logger.Discard()})
	if wrap != nil {
		h = wrap(h)
	}
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	return &Context{
		Server:  srv.URL,
		Home:    t.TempDir(),
		Log:     logger.Discard(),
		Out:     &out,
		Now:     func() time.Time { return time.Date(2026, 10, 14, 12, 0, 0, 0, time.Local) },
		Timeout: 5 * time.Second,
	}, &out
}

func TestLoginWriteShowLogout(t *testing.T) {
	ctx, out := newTestContext(t)

	require.NoError(t, (&LoginCmd{Credential: auth.TestCredential, Provider: "google"}).Run(ctx))
	assert.Contains(t, out.String(), "logged in as")
	info, err := os.Stat(filepath.Join(ctx.Home, tokenFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	out.Reset()
	require.NoError(t, (&WriteCmd{Date: "today", GoodMoments: "long walk"}).Run(ctx))
	assert.Contains(t, out.String(), "entry saved")

	// Only the given field changes; the rest of the entry is kept.
	out.Reset()
	require.NoError(t, (&WriteCmd{Date: "2026-10-14", Gratitude: "friends"}).Run(ctx))
	require.NoError(t, (&WriteCmd{Date: "2025-10-14", Learnings: "patience"}).Run(ctx))

	out.Reset()
	require.NoError(t, (&DailyCmd{Date: "today"}).Run(ctx))
	daily := out.String()
	assert.Contains(t, daily, "October 14")
	assert.Contains(t, daily, "2026 *")
	assert.Contains(t, daily, "long walk")
	assert.Contains(t, daily, "friends")
	assert.Contains(t, daily, "patience")

	out.Reset()
	require.NoError(t, (&TodayCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "Today, Wednesday, October 14, 2026")
	assert.Contains(t, out.String(), "2025-10-14")

	out.Reset()
	require.NoError(t, (&WeekCmd{Date: "today"}).Run(ctx))
	assert.Contains(t, out.String(), "October 11 - October 17")
	assert.Contains(t, out.String(), "Wed 14 (today)")

	out.Reset()
	require.NoError(t, (&ShowCmd{View: "daily", Date: "2025-10-14"}).Run(ctx))
	assert.Contains(t, out.String(), "2025 *")
	assert.Contains(t, out.String(), "patience")
	assert.Error(t, (&ShowCmd{View: "yearly", Date: "today"}).Run(ctx))

	out.Reset()
	require.NoError(t, (&StatsCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "2 entries")

	require.NoError(t, (&LogoutCmd{}).Run(ctx))
	err = (&TodayCmd{}).Run(ctx)
	assert.ErrorIs(t, err, client.ErrNotLoggedIn)
	// Logging out twice is fine.
	require.NoError(t, (&LogoutCmd{}).Run(ctx))
}

func TestWriteEmptyReplaceDeletes(t *testing.T) {
	ctx, out := newTestContext(t)
	require.NoError(t, (&LoginCmd{Credential: auth.TestCredential, Provider: "google"}).Run(ctx))
	require.NoError(t, (&WriteCmd{Date: "today", Achievements: "shipped"}).Run(ctx))

	out.Reset()
	require.NoError(t, (&WriteCmd{Date: "today", Replace: true}).Run(ctx))
	assert.Contains(t, out.String(), "empty entry deleted")

	out.Reset()
	require.NoError(t, (&StatsCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "no entries yet")
}

func TestWriteAbortsWhenExistingEntryCannotBeRead(t *testing.T) {
	var failReads atomic.Bool
	var posts atomic.Int32
	ctx, out := newTestContextWith(t, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/entries" && r.Method == http.MethodPost {
				posts.Add(1)
			}
			if failReads.Load() && r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/entries/") {
				http.Error(w, `{"error":"server error"}`, http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r)
		})
	})
	require.NoError(t, (&LoginCmd{Credential: auth.TestCredential, Provider: "google"}).Run(ctx))
	require.NoError(t, (&WriteCmd{Date: "2025-01-01", GoodMoments: "sunrise", Gratitude: "family"}).Run(ctx))
	require.Equal(t, int32(1), posts.Load())

	failReads.Store(true)
	out.Reset()
	err := (&WriteCmd{Date: "2025-01-01", Achievements: "ran 5k"}).Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2025-01-01")
	assert.Equal(t, int32(1), posts.Load(), "nothing may be saved after a failed read")
	assert.NotContains(t, out.String(), "entry saved")

	failReads.Store(false)
	out.Reset()
	require.NoError(t, (&DailyCmd{Date: "2025-01-01"}).Run(ctx))
	assert.Contains(t, out.String(), "sunrise")
	assert.Contains(t, out.String(), "family")
	assert.NotContains(t, out.String(), "ran 5k")
}

func TestLoginRejected(t *testing.T) {
	ctx, _ := newTestContext(t)
	err := (&LoginCmd{Credential: "forged", Provider: "google"}).Run(ctx)
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(ctx.Home, tokenFile))
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestParseDate(t *testing.T) {
	ctx, _ := newTestContext(t)

	d, err := ctx.parseDate("today")
	require.NoError(t, err)
	assert.Equal(t, 14, d.Day())

	d, err = ctx.parseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.February, d.Month())

	_, err = ctx.parseDate("2023-02-29")
	assert.Error(t, err)
	_, err = ctx.parseDate("yesterday")
	assert.Error(t, err)
}

func TestHabitCommands(t *testing.T) {
	ctx, out := newTestContext(t)

	require.NoError(t, (&HabitAddCmd{Name: "🎨 Drawing", Color: "#AABBCC"}).Run(ctx))
	assert.Contains(t, out.String(), "added 🎨 Drawing (custom_")

	out.Reset()
	require.NoError(t, (&HabitHideCmd{ID: "music"}).Run(ctx))
	assert.Contains(t, out.String(), "music is now hidden")

	out.Reset()
	require.NoError(t, (&HabitListCmd{}).Run(ctx))
	list := out.String()
	assert.Contains(t, list, "🎨 Drawing custom")
	assert.Contains(t, list, "#aabbcc")
	assert.NotContains(t, list, "Music")

	out.Reset()
	require.NoError(t, (&HabitListCmd{All: true}).Run(ctx))
	assert.Contains(t, out.String(), "🥁 Music hidden")

	out.Reset()
	require.NoError(t, (&HabitRecordCmd{Category: "exercise", Week: "today", Goals: "run 3x", Rating: 4}).Run(ctx))
	assert.Contains(t, out.String(), "saved exercise for week_2026-10-11")

	out.Reset()
	require.NoError(t, (&ShowCmd{View: "monthly", Date: "2026-10-01", Category: "reading"}).Run(ctx))
	assert.Contains(t, out.String(), "October 2026 · 📚 Reading")

	out.Reset()
	require.NoError(t, (&HabitMonthCmd{}).Run(ctx))
	month := out.String()
	assert.Contains(t, month, "October 2026 · 🏃 Exercise")
	assert.Contains(t, month, "★★★★☆ (this week)")
	assert.Contains(t, month, "run 3x")

	err := (&HabitRecordCmd{Category: "nope", Week: "today", Goals: "x"}).Run(ctx)
	assert.Error(t, err)
	assert.Error(t, (&HabitRecordCmd{Rating: 6}).Validate())
	assert.Error(t, (&HabitDeleteCmd{ID: "exercise"}).Run(ctx))
	assert.Error(t, (&HabitMonthCmd{Month: "2026/10"}).Run(ctx))
}
