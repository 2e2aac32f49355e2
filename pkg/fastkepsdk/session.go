package fastkepsdk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"sync"
	"time"
)

// expiryBuffer refreshes access tokens a little before they actually expire.
const expiryBuffer = 30 * time.Second

// Session holds a token pair and refreshes the access token when it is about
// to expire. Safe for concurrent use.
type Session struct {
	client *Client

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

// NewSessionFromTokens wraps tokens obtained elsewhere, e.g. from Register.
func (c *Client) NewSessionFromTokens(accessToken, refreshToken string, expiresIn int) *Session {
	return &Session{
		client:       c,
		accessToken:  accessToken,
		refreshToken: refreshToken,
		expiresAt:    time.Now().Add(time.Duration(expiresIn)*time.Second - expiryBuffer),
	}
}

// AccessToken returns the current access token without checking expiration.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the refresh token. It never changes for a session.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// getValidToken returns a valid access token, refreshing it first if expired.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have refreshed while we waited.
	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}
	if s.refreshToken == "" {
		return "", errors.New("access token expired and no refresh token available")
	}

	out, err := s.client.Refresh(ctx, s.refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}

	s.accessToken = out.AccessToken
	s.expiresAt = time.Now().Add(time.Duration(out.ExpiresIn)*time.Second - expiryBuffer)
	return s.accessToken, nil
}

func (s *Session) doAuthRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.doRequest(ctx, method, path, token, body)
}

// Me returns the identity behind the session.
func (s *Session) Me(ctx context.Context) (*Identity, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/auth/me", nil)
	if err != nil {
		return nil, err
	}

	var out MeResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.Identity, nil
}

// Logout revokes the current access token. The session is unusable
// afterwards until a new access token is obtained.
func (s *Session) Logout(ctx context.Context) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/auth/logout", nil)
	if err != nil {
		return err
	}

	var out MessageResponse
	return decodeJSON(resp, &out, http.StatusOK)
}

// Generate renders a document of docType from fields.
func (s *Session) Generate(ctx context.Context, docType string, fields GenerateRequest) (*Document, error) {
	if fields == nil {
		fields = GenerateRequest{}
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/documents/generate/"+docType, fields)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, parseErrorResponse(resp, body)
	}

	doc := &Document{
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		doc.Filename = params["filename"]
	}
	return doc, nil
}
