package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/fastkep/internal/fastkep/documents"
	"github.com/aussiebroadwan/fastkep/internal/fastkep/service"
	"github.com/aussiebroadwan/fastkep/pkg/fastkepsdk"
	"github.com/aussiebroadwan/fastkep/pkg/slogx"
)

// writeError maps a service error onto its API error. Token failures all
// share one response so callers cannot tell which check rejected them.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed", "err", err, "code", apiErr.Code)
	}
	apiErr.WriteError(w)
}

func toAPIError(err error) *fastkepsdk.APIError {
	var (
		apiErr    *fastkepsdk.APIError
		violation *service.PolicyViolation
		missing   *documents.MissingFieldsError
	)

	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, service.ErrMissingCredentials):
		return fastkepsdk.ErrInvalidRequest.WithDescription("Email and password are required")
	case errors.As(err, &violation):
		return fastkepsdk.ErrWeakPassword.WithDescription(violation.Error())
	case errors.Is(err, service.ErrEmailTaken):
		return fastkepsdk.ErrEmailTaken
	case errors.Is(err, service.ErrInvalidCredentials):
		return fastkepsdk.ErrInvalidCredentials
	case errors.Is(err, service.ErrTokenMalformed),
		errors.Is(err, service.ErrTokenBadSignature),
		errors.Is(err, service.ErrTokenExpired),
		errors.Is(err, service.ErrTokenWrongKind),
		errors.Is(err, service.ErrTokenRevoked),
		errors.Is(err, service.ErrUnknownSubject):
		return fastkepsdk.ErrInvalidToken
	case errors.Is(err, service.ErrRevocationUnavailable),
		errors.Is(err, service.ErrIdentityUnavailable):
		return fastkepsdk.ErrTemporarilyUnavailable
	case errors.Is(err, documents.ErrUnknownDocType):
		return fastkepsdk.ErrUnknownDocType
	case errors.As(err, &missing):
		return fastkepsdk.NewMissingFieldsError(missing.Fields)
	default:
		return fastkepsdk.ErrServerError
	}
}
