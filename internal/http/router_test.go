package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"yeardiary/internal/auth"
	"yeardiary/internal/config"
	"yeardiary/internal/diary"
	"yeardiary/internal/logger"
	"yeardiary/internal/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	handler http.Handler
	store   *memory.Store
}

func newTestServer(t *testing.T, storeOverride diary.Store) *testServer {
	t.Helper()
	st := memory.New()
	var entries diary.Store = st
	if storeOverride != nil {
		entries = storeOverride
	}
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
	h := NewRouter(cfg, Deps{Gate: gate, Store: entries, Log: logger.Discard()})
	return &testServer{handler: h, store: st}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/googleLogin", "", map[string]string{"credential": auth.TestCredential})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[struct {
		Token string       `json:"token"`
		User  auth.Profile `json:"user"`
	}](t, rec)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, "test@example.com", resp.User.Email)
	return resp.Token
}

func TestScenario_TestModeRoundTrip(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login(t)

	rec := s.do(t, http.MethodGet, "/api/entries", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/entries", token, map[string]string{"date": "2025-01-01", "content": "hello"})
	require.Equal(t, http.StatusOK, rec.Code)
	saved := decode[map[string]string](t, rec)
	assert.Equal(t, "2025-01-01", saved["date"])
	assert.Equal(t, "hello", saved["content"])
	assert.NotEmpty(t, saved["message"])

	rec = s.do(t, http.MethodGet, "/api/entries/2025-01-01", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"content":"hello"}`, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/entries", token, map[string]string{"date": "2025-01-01", "content": "  "})
	require.Equal(t, http.StatusOK, rec.Code)
	deleted := decode[map[string]string](t, rec)
	assert.NotEmpty(t, deleted["message"])
	assert.NotContains(t, deleted, "content")

	rec = s.do(t, http.MethodGet, "/api/entries/2025-01-01", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"content":""}`, rec.Body.String())
}

func TestLogin_Variants(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/auth/google", "", map[string]string{"credential": auth.TestCredential})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/googleLogin", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/googleLogin", "", map[string]string{"credential": "forged"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotContains(t, rec.Body.String(), "rejected")

	req := httptest.NewRequest(http.MethodPost, "/api/auth/googleLogin", strings.NewReader("{"))
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/githubLogin", "", map[string]string{"credential": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogin_RateLimited(t *testing.T) {
	st := memory.New()
	gate := &auth.Gate{Users: st, JWT: auth.NewJWT("secret", 0), Verifiers: map[string]auth.Verifier{"google": nil}, TestMode: true}
	h := NewRouter(config.Config{LoginRatePerMinute: 1, LoginRateBurst: 1}, Deps{Gate: gate, Store: st, Log: logger.Discard()})

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/google", strings.NewReader(`{"credential":"test_credential"}`))
		req.RemoteAddr = "192.0.2.1:4000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestAuthStatuses(t *testing.T) {
	s := newTestServer(t, nil)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/entries", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/entries", "bogus", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/entries", auth.TestToken, nil).Code)
}

func TestEntries_ListRangeAndIsolation(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login(t)

	for _, d := range []string{"2023-06-01", "2024-06-01", "2025-06-01"} {
		rec := s.do(t, http.MethodPost, "/api/entries", token, map[string]string{"date": d, "content": "on " + d})
		require.Equal(t, http.StatusOK, rec.Code)
	}
	_, err := s.store.Upsert(context.Background(), "someone-else", "2024-06-02", "not yours")
	require.NoError(t, err)

	rec := s.do(t, http.MethodGet, "/api/entries?startDate=2024-01-01&endDate=2025-12-31", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []diary.Entry{
		{Date: "2025-06-01", Content: "on 2025-06-01"},
		{Date: "2024-06-01", Content: "on 2024-06-01"},
	}, decode[[]diary.Entry](t, rec))

	rec = s.do(t, http.MethodGet, "/api/entries?startDate=junk", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEntries_Validation(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login(t)

	rec := s.do(t, http.MethodPost, "/api/entries", token, map[string]string{"content": "no date"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "date")

	rec = s.do(t, http.MethodPost, "/api/entries", token, map[string]string{"date": "2023-02-29", "content": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/entries/yesterday", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/entries/2025-13-01", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEntries_DeleteAndStats(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login(t)

	for _, d := range []string{"2024-01-05", "2024-03-01", "2025-02-02"} {
		require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/entries", token, map[string]string{"date": d, "content": "x"}).Code)
	}

	rec := s.do(t, http.MethodDelete, "/api/entries/2024-03-01", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "message")

	rec = s.do(t, http.MethodDelete, "/api/entries/2020-01-01", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/stats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []diary.YearStat{
		{Year: "2025", EntriesPerYear: 1, TotalEntries: 2, FirstEntryDate: "2025-02-02", LastEntryDate: "2025-02-02"},
		{Year: "2024", EntriesPerYear: 1, TotalEntries: 2, FirstEntryDate: "2024-01-05", LastEntryDate: "2024-01-05"},
	}, decode[[]diary.YearStat](t, rec))
}

type failingStore struct{ diary.Store }

func (failingStore) List(context.Context, string, diary.Range) ([]diary.Entry, error) {
	return nil, errors.New("connection refused: secret-host:5432")
}

func (failingStore) Get(context.Context, string, string) (string, error) {
	panic("driver exploded")
}

func TestStoreFailuresAreGeneric(t *testing.T) {
	s := newTestServer(t, failingStore{Store: memory.New()})

	rec := s.do(t, http.MethodGet, "/api/entries", auth.TestToken, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret-host")

	rec = s.do(t, http.MethodGet, "/api/entries/2025-01-01", auth.TestToken, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"server error"}`, rec.Body.String())
}

func TestMeHealthAndNotFound(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/api/me", auth.TestToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"test_user_123","email":"test@example.com"}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"OK"`)

	rec = s.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"not found"}`, rec.Body.String())
}
