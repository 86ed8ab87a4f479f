// Package client talks to the diary HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"yeardiary/internal/auth"
	"yeardiary/internal/diary"
)

// ErrNotLoggedIn is returned by protected calls made before Login or after
// the server rejected the session.
var ErrNotLoggedIn = errors.New("not logged in")

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// Client is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

// WithHTTPClient replaces the default client, which has a 30s timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken starts the client with an existing session token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Logout forgets the session token.
func (c *Client) Logout() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// Login exchanges a provider credential for a session and keeps the token.
func (c *Client) Login(ctx context.Context, provider, credential string) (auth.Profile, error) {
	var resp struct {
		Token string       `json:"token"`
		User  auth.Profile `json:"user"`
	}
	body := map[string]string{"credential": credential}
	if err := c.do(ctx, http.MethodPost, "/api/auth/"+url.PathEscape(provider)+"Login", false, body, &resp); err != nil {
		return auth.Profile{}, err
	}
	c.mu.Lock()
	c.token = resp.Token
	c.mu.Unlock()
	return resp.User, nil
}

type Me struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (c *Client) Me(ctx context.Context) (Me, error) {
	var me Me
	err := c.do(ctx, http.MethodGet, "/api/me", true, nil, &me)
	return me, err
}

// Entries lists entries in the inclusive range; empty bounds are open.
func (c *Client) Entries(ctx context.Context, r diary.Range) ([]diary.Entry, error) {
	q := url.Values{}
	if r.Start != "" {
		q.Set("startDate", r.Start)
	}
	if r.End != "" {
		q.Set("endDate", r.End)
	}
	path := "/api/entries"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []diary.Entry
	if err := c.do(ctx, http.MethodGet, path, true, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Entry returns the stored content for date, "" when there is none.
func (c *Client) Entry(ctx context.Context, date string) (string, error) {
	var resp struct {
		Content string `json:"content"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/entries/"+url.PathEscape(date), true, nil, &resp); err != nil {
		return "", err
	}
	return resp.Content, nil
}

// Save stores content for date and returns what the server kept. An empty
// result means the entry was deleted.
func (c *Client) Save(ctx context.Context, date, content string) (string, error) {
	var resp struct {
		Content string `json:"content"`
	}
	body := map[string]string{"date": date, "content": content}
	if err := c.do(ctx, http.MethodPost, "/api/entries", true, body, &resp); err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (c *Client) Delete(ctx context.Context, date string) error {
	return c.do(ctx, http.MethodDelete, "/api/entries/"+url.PathEscape(date), true, nil, nil)
}

func (c *Client) Stats(ctx context.Context) ([]diary.YearStat, error) {
	var out []diary.YearStat
	if err := c.do(ctx, http.MethodGet, "/api/stats", true, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, authed bool, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		token := c.Token()
		if token == "" {
			return ErrNotLoggedIn
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&e)
		apiErr := &APIError{Status: resp.StatusCode, Message: e.Error}
		if authed && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			c.Logout()
			return fmt.Errorf("%w: %w", ErrNotLoggedIn, apiErr)
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
