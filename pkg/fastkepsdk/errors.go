package fastkepsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/fastkep/pkg/httpx"
)

// ============================================================================
// Error Codes
// ============================================================================

const (
	ErrorCodeInvalidRequest         = "invalid_request"
	ErrorCodeWeakPassword           = "weak_password"
	ErrorCodeMissingFields          = "missing_fields"
	ErrorCodeInvalidCredentials     = "invalid_credentials"
	ErrorCodeInvalidToken           = "invalid_token"
	ErrorCodeUnknownDocType         = "unknown_doc_type"
	ErrorCodeEmailTaken             = "email_taken"
	ErrorCodeTemporarilyUnavailable = "temporarily_unavailable"
	ErrorCodeServerError            = "server_error"
	ErrorCodeRateLimited            = "rate_limit_exceeded"
)

// ============================================================================
// APIError
// ============================================================================

// APIError is the error body returned by every endpoint. It implements the
// error interface and is used both by the server (to write responses) and by
// the client (to surface them).
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the machine readable error code (e.g., "invalid_token")
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`

	// MissingFields lists absent document fields, only for missing_fields
	MissingFields []string `json:"missing_fields,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches on status and code so callers can use errors.Is against the
// predefined errors even after the description was customised.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.StatusCode == t.StatusCode && e.Code == t.Code
}

// WriteError writes the error as a JSON response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	if e.StatusCode == http.StatusUnauthorized && e.Code == ErrorCodeInvalidToken {
		httpx.WriteBearerChallenge(w, e.Description)
	}
	httpx.WriteJSON(w, e.StatusCode, e)
}

// WithDescription returns a copy of e carrying a different description.
func (e *APIError) WithDescription(desc string) *APIError {
	cp := *e
	cp.Description = desc
	return &cp
}

// ============================================================================
// Predefined Errors
// ============================================================================

var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	// ErrWeakPassword carries the first violated password rule as its
	// description.
	ErrWeakPassword = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeWeakPassword,
		Description: "password does not meet the policy",
	}

	ErrMissingFields = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeMissingFields,
		Description: "required fields are missing",
	}

	ErrInvalidCredentials = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidCredentials,
		Description: "Invalid email or password",
	}

	// ErrInvalidToken is returned when the bearer or refresh token is missing,
	// malformed, expired, revoked, of the wrong kind or names an unknown user.
	ErrInvalidToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidToken,
		Description: "the token is missing, invalid, expired or revoked",
	}

	ErrUnknownDocType = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeUnknownDocType,
		Description: "unknown document type",
	}

	ErrEmailTaken = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeEmailTaken,
		Description: "Email already registered",
	}

	// ErrTemporarilyUnavailable is returned when a backing store could not be
	// consulted. Token checks fail closed with this error.
	ErrTemporarilyUnavailable = &APIError{
		StatusCode:  http.StatusServiceUnavailable,
		Code:        ErrorCodeTemporarilyUnavailable,
		Description: "service temporarily unavailable, try again later",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}

	ErrMethodNotAllowed = &APIError{
		StatusCode:  http.StatusMethodNotAllowed,
		Code:        ErrorCodeInvalidRequest,
		Description: "method not allowed",
	}
)

// NewMissingFieldsError lists the absent document fields.
func NewMissingFieldsError(fields []string) *APIError {
	e := *ErrMissingFields
	e.MissingFields = fields
	return &e
}

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// parseErrorResponse turns a non-2xx response into an *APIError. Returns nil
// for success statuses.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
