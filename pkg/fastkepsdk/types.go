package fastkepsdk

import "time"

// ============================================================================
// Auth Types
// ============================================================================

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest is the body of POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Identity is the public view of a user.
type Identity struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	FullName  string    `json:"full_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Message string `json:"message"`

	// AccessToken is the short-lived bearer token
	AccessToken string `json:"access_token"`

	// RefreshToken exchanges for new access tokens until it expires
	RefreshToken string `json:"refresh_token"`

	// TokenType is always "Bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token
	ExpiresIn int `json:"expires_in"`

	Identity Identity `json:"identity"`
}

// AccessTokenResponse is returned by refresh. The refresh token is not
// rotated, so only a new access token comes back.
type AccessTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// MeResponse is returned by GET /auth/me.
type MeResponse struct {
	Identity Identity `json:"identity"`
}

// MessageResponse carries a human readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ============================================================================
// Document Types
// ============================================================================

// TemplateInfo describes one entry of GET /documents/templates.
type TemplateInfo struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	RequiredFields []string `json:"required_fields"`
}

// TemplatesResponse maps doc_type to its description.
type TemplatesResponse map[string]TemplateInfo

// GenerateRequest is the body of POST /documents/generate/{doc_type}: a flat
// map of template fields.
type GenerateRequest map[string]string

// Document is a generated artifact as received by the client.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string            `json:"status"`
	Uptime  string            `json:"uptime,omitempty"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}
