package backend

import (
	"context"
	"fmt"
	"sync"

	"dance-admin/internal/models"
)

// Session is an authenticated connection to the backend. It lives from Login to Close.
type Session struct {
	c *Client

	mu    sync.RWMutex
	token string
}

type loginResponse struct {
	Login bool   `json:"Login"`
	Token string `json:"token"`
}

// Login exchanges credentials for a token and checks it against /api/user.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	body, err := jsonBody(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	var lr loginResponse
	if err := c.do(ctx, request{method: "POST", path: "/login", body: body, contentType: "application/json"}, &lr); err != nil {
		return nil, err
	}
	if !lr.Login || lr.Token == "" {
		return nil, ErrLoginFailed
	}

	s := c.Resume(lr.Token)
	u, err := s.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	c.log.Info("logged in", "email", u.Email)
	return s, nil
}

// Resume wraps a token obtained earlier, without a network call.
func (c *Client) Resume(token string) *Session {
	return &Session{c: c, token: token}
}

// Close logs out. Later calls on the session fail with ErrNoSession.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}

func (s *Session) do(ctx context.Context, r request, out any) error {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()
	if token == "" {
		return ErrNoSession
	}
	r.token = token
	return s.c.do(ctx, r, out)
}

func (s *Session) get(ctx context.Context, path string, out any) error {
	return s.do(ctx, request{method: "GET", path: path}, out)
}

func (s *Session) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := jsonBody(in)
	if err != nil {
		return err
	}
	return s.do(ctx, request{method: "POST", path: path, body: body, contentType: "application/json"}, out)
}

func (s *Session) CurrentUser(ctx context.Context) (*models.User, error) {
	var resp struct {
		User *models.User `json:"user"`
	}
	if err := s.get(ctx, "/api/user", &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, ErrUnauthorized
	}
	return resp.User, nil
}
