package fastkepsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Client talks to the public endpoints of a FastKEP server and opens
// authenticated Sessions.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client with a 10s request timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Register creates an account and returns its first token pair.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/register", "", req)
	if err != nil {
		return nil, err
	}

	var out AuthResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/login", "", LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	var out AuthResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh mints a new access token from a refresh token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*AccessTokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/refresh", "", RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, err
	}

	var out AccessTokenResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Templates lists the document types the server can generate.
func (c *Client) Templates(ctx context.Context) (TemplatesResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/documents/templates", "", nil)
	if err != nil {
		return nil, err
	}

	var out TemplatesResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// AuthenticateWithPassword logs in and wraps the tokens in a Session.
func (c *Client) AuthenticateWithPassword(ctx context.Context, email, password string) (*Session, error) {
	out, err := c.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return c.NewSessionFromTokens(out.AccessToken, out.RefreshToken, out.ExpiresIn), nil
}

// GetLiveness checks if the service is alive.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/livez")
}

// GetReadiness checks if the service can reach its dependencies.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *Client) health(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}
