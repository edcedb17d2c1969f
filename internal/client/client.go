// Package client talks to the taskdeck REST API and keeps the session.
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

	"taskdeck/internal/models"
)

type Client struct {
	baseURL string
	http    *http.Client
	store   *SessionStore

	mu      sync.RWMutex
	session *Session
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithSessionStore persists login/logout and restores a saved session.
func WithSessionStore(s *SessionStore) Option {
	return func(c *Client) { c.store = s }
}

// New builds a client for baseURL, e.g. http://localhost:8080/api.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}
	c := &Client{
		baseURL: u.String(),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store != nil {
		sess, err := c.store.Load()
		switch {
		case err == nil:
			c.session = sess
		case errors.Is(err, ErrNotAuthenticated):
		default:
			return nil, err
		}
	}
	return c, nil
}

// Session returns the current session or nil.
func (c *Client) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

func (c *Client) setSession(s *Session) error {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
	if c.store == nil {
		return nil
	}
	if s == nil {
		return c.store.Clear()
	}
	return c.store.Save(*s)
}

func (c *Client) token() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil || c.session.Token == "" {
		return "", ErrNotAuthenticated
	}
	return c.session.Token, nil
}

// do sends in as JSON and decodes a 2xx body into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, auth bool, in, out any) error {
	resp, err := c.send(ctx, method, path, auth, in)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: method + " " + path, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiErrorFrom(resp.StatusCode, body)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrMalformedResponse, method, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, auth bool, in any) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if auth {
		tok, err := c.token()
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: method + " " + path, Err: err}
	}
	return resp, nil
}

// ===== auth =====

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/register", false, req, nil)
}

func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	var resp models.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", false, models.LoginRequest{Username: username, Password: password}, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("%w: login without access_token", ErrMalformedResponse)
	}
	sess := &Session{Username: username, Token: resp.AccessToken}
	if err := c.setSession(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Logout revokes the token on the service and always drops the local
// session; the revoke error, if any, is returned after clearing.
func (c *Client) Logout(ctx context.Context) error {
	var revokeErr error
	if _, err := c.token(); err == nil {
		revokeErr = c.do(ctx, http.MethodPost, "/auth/logout", true, nil, nil)
	}
	if err := c.setSession(nil); err != nil {
		return err
	}
	return revokeErr
}

// ===== todos =====

func (c *Client) ListTodos(ctx context.Context) ([]models.Todo, error) {
	var todos []models.Todo
	if err := c.do(ctx, http.MethodGet, "/todos", true, nil, &todos); err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []models.Todo{}
	}
	return todos, nil
}

func (c *Client) GetTodo(ctx context.Context, id string) (*models.Todo, error) {
	var t models.Todo
	if err := c.do(ctx, http.MethodGet, "/todos/"+url.PathEscape(id), true, nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) CreateTodo(ctx context.Context, in models.TodoInput) (*models.Todo, error) {
	var t models.Todo
	if err := c.do(ctx, http.MethodPost, "/todos", true, in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) UpdateTodo(ctx context.Context, id string, in models.TodoInput) (*models.Todo, error) {
	var t models.Todo
	if err := c.do(ctx, http.MethodPut, "/todos/"+url.PathEscape(id), true, in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/todos/"+url.PathEscape(id), true, nil, nil)
}

// ===== profile =====

func (c *Client) Profile(ctx context.Context) (*models.ProfileResponse, error) {
	var p models.ProfileResponse
	if err := c.do(ctx, http.MethodGet, "/users/profile", true, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.Profile, error) {
	var p models.Profile
	if err := c.do(ctx, http.MethodPut, "/users/profile", true, req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	return c.do(ctx, http.MethodPut, "/users/change-password", true,
		models.ChangePasswordRequest{CurrentPassword: current, NewPassword: next}, nil)
}

// DownloadReport streams the PDF report into w.
func (c *Client) DownloadReport(ctx context.Context, w io.Writer) error {
	const path = "/users/profile/report"
	resp, err := c.send(ctx, http.MethodGet, path, true, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return apiErrorFrom(resp.StatusCode, body)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return &TransportError{Op: "GET " + path, Err: err}
	}
	return nil
}

// ===== telegram =====

func (c *Client) TelegramStatus(ctx context.Context) (*models.TelegramStatus, error) {
	var st models.TelegramStatus
	if err := c.do(ctx, http.MethodGet, "/telegram/status", true, nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) LinkTelegram(ctx context.Context, token string) (*models.TelegramStatus, error) {
	var st models.TelegramStatus
	if err := c.do(ctx, http.MethodPost, "/telegram/link", true, models.TelegramLinkRequest{Token: token}, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) UnlinkTelegram(ctx context.Context) (*models.TelegramStatus, error) {
	var st models.TelegramStatus
	if err := c.do(ctx, http.MethodPost, "/telegram/unlink", true, nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}
