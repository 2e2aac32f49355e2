package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/fastkep/internal/fastkep/domain"
	"github.com/aussiebroadwan/fastkep/internal/fastkep/revocation"
	"github.com/aussiebroadwan/fastkep/internal/fastkep/store"
	"github.com/aussiebroadwan/fastkep/pkg/idx"
	"github.com/aussiebroadwan/fastkep/pkg/jwtx"
	"github.com/aussiebroadwan/fastkep/pkg/metricsx"
)

// Verification failures, in the order they are checked.
var (
	ErrTokenMalformed        = errors.New("token_malformed")
	ErrTokenBadSignature     = errors.New("token_bad_signature")
	ErrTokenExpired          = errors.New("token_expired")
	ErrTokenWrongKind        = errors.New("token_wrong_kind")
	ErrTokenRevoked          = errors.New("token_revoked")
	ErrRevocationUnavailable = errors.New("revocation_unavailable")
	ErrUnknownSubject        = errors.New("unknown_subject")
	ErrIdentityUnavailable   = errors.New("identity_unavailable")
)

// DefaultLookupTimeout bounds a single revocation store round trip.
const DefaultLookupTimeout = 2 * time.Second

// UserLookup resolves a token subject. store.Users satisfies it.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
}

// TokenVerifier turns a raw token into a Principal. Checks run cheapest first
// and stop at the first failure: signature, expiry, kind, revocation, subject.
// An unreachable revocation store rejects the token.
type TokenVerifier struct {
	Verifier      jwtx.Verifier
	Revocations   revocation.Store
	Users         UserLookup
	LookupTimeout time.Duration
	Metrics       *metricsx.Metrics

	Now func() time.Time
}

func NewTokenVerifier(v jwtx.Verifier, revocations revocation.Store, users UserLookup, lookupTimeout time.Duration) *TokenVerifier {
	if lookupTimeout <= 0 {
		lookupTimeout = DefaultLookupTimeout
	}
	return &TokenVerifier{
		Verifier:      v,
		Revocations:   revocations,
		Users:         users,
		LookupTimeout: lookupTimeout,
		Now:           time.Now,
	}
}

func (v *TokenVerifier) Verify(ctx context.Context, raw string, expected domain.TokenKind) (domain.Principal, error) {
	p, err := v.verify(ctx, raw, expected)
	v.Metrics.TokenVerified(verificationResult(err))
	return p, err
}

func (v *TokenVerifier) verify(ctx context.Context, raw string, expected domain.TokenKind) (domain.Principal, error) {
	claims, err := v.Verifier.Verify(raw)
	if err != nil {
		if errors.Is(err, jwtx.ErrInvalidSig) {
			return domain.Principal{}, fmt.Errorf("%w: %w", ErrTokenBadSignature, err)
		}
		return domain.Principal{}, fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	}

	if err := claims.ValidateExpiryAt(v.Now()); err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return domain.Principal{}, ErrTokenExpired
		}
		return domain.Principal{}, fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	}

	if domain.TokenKind(claims.Type) != expected {
		return domain.Principal{}, ErrTokenWrongKind
	}

	lookupCtx, cancel := context.WithTimeout(ctx, v.LookupTimeout)
	revoked, err := v.Revocations.IsRevoked(lookupCtx, claims.ID)
	cancel()
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %w", ErrRevocationUnavailable, err)
	}
	if revoked {
		return domain.Principal{}, ErrTokenRevoked
	}

	// Subjects are always idx IDs; anything else cannot name a user.
	if _, err := idx.Parse(claims.Subject); err != nil {
		return domain.Principal{}, ErrUnknownSubject
	}

	user, err := v.Users.GetUserByID(ctx, claims.Subject)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.Principal{}, ErrUnknownSubject
	case err != nil:
		return domain.Principal{}, fmt.Errorf("%w: %w", ErrIdentityUnavailable, err)
	case !user.IsActive:
		return domain.Principal{}, ErrUnknownSubject
	}

	return domain.Principal{User: user, Claims: claims}, nil
}

func verificationResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTokenBadSignature):
		return "bad_signature"
	case errors.Is(err, ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrTokenWrongKind):
		return "wrong_kind"
	case errors.Is(err, ErrTokenRevoked):
		return "revoked"
	case errors.Is(err, ErrRevocationUnavailable):
		return "revocation_unavailable"
	case errors.Is(err, ErrUnknownSubject):
		return "unknown_subject"
	default:
		return "identity_unavailable"
	}
}
