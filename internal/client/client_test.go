package client

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"yeardiary/internal/auth"
	"yeardiary/internal/config"
	"yeardiary/internal/diary"
	apihttp "yeardiary/internal/http"
	"yeardiary/internal/logger"
	"yeardiary/internal/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	st := memory.New()
	gate := &auth.Gate{
		Users:     st,
		JWT:       auth.NewJWT("secret", 0),
		Verifiers: map[string]auth.Verifier{"google": nil},
		TestMode:  true,
	}
	h := apihttp.NewRouter(config.Config{LoginRatePerMinute: 100, LoginRateBurst: 100},
		apihttp.Deps{Gate: gate, Store: st, Log: logger.Discard()})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_EndToEnd(t *testing.T) {
	srv := newServer(t)
	c := New(srv.URL)
	ctx := context.Background()

	_, err := c.Entries(ctx, diary.Range{})
	require.ErrorIs(t, err, ErrNotLoggedIn)

	profile, err := c.Login(ctx, "google", auth.TestCredential)
	require.NoError(t, err)
	assert.Equal(t, "Test User", profile.Name)
	assert.NotEmpty(t, c.Token())

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, me.ID)

	entries, err := c.Entries(ctx, diary.Range{})
	require.NoError(t, err)
	assert.Empty(t, entries)

	stored, err := c.Save(ctx, "2025-01-01", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", stored)

	content, err := c.Entry(ctx, "2025-01-01")
	require.NoError(t, err)
	assert.Equal(t, "hello", content)

	stored, err = c.Save(ctx, "2025-01-01", "  ")
	require.NoError(t, err)
	assert.Empty(t, stored)

	content, err = c.Entry(ctx, "2025-01-01")
	require.NoError(t, err)
	assert.Empty(t, content)

	_, err = c.Save(ctx, "2024-07-04", "fireworks")
	require.NoError(t, err)
	_, err = c.Save(ctx, "2023-07-04", "rain")
	require.NoError(t, err)

	entries, err = c.Entries(ctx, diary.Range{Start: "2024-01-01"})
	require.NoError(t, err)
	assert.Equal(t, []diary.Entry{{Date: "2024-07-04", Content: "fireworks"}}, entries)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "2024", stats[0].Year)
	assert.EqualValues(t, 2, stats[0].TotalEntries)

	require.NoError(t, c.Delete(ctx, "2023-07-04"))
	content, err = c.Entry(ctx, "2023-07-04")
	require.NoError(t, err)
	assert.Empty(t, content)
}

func TestClient_Errors(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()

	c := New(srv.URL)
	_, err := c.Login(ctx, "google", "")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Status)
	assert.Equal(t, "credential required", apiErr.Message)

	bad := New(srv.URL, WithToken("forged"))
	_, err = bad.Entry(ctx, "2025-01-01")
	require.ErrorIs(t, err, ErrNotLoggedIn)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Status)
	assert.Empty(t, bad.Token())

	ok := New(srv.URL, WithToken(auth.TestToken))
	_, err = ok.Entry(ctx, "not-a-date")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Status)
	assert.False(t, errors.Is(err, ErrNotLoggedIn))
}
