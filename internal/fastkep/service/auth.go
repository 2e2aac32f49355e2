package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/fastkep/internal/fastkep/domain"
	"github.com/aussiebroadwan/fastkep/internal/fastkep/revocation"
	"github.com/aussiebroadwan/fastkep/internal/fastkep/store"
	"github.com/aussiebroadwan/fastkep/pkg/cryptox"
	"github.com/aussiebroadwan/fastkep/pkg/idx"
	"github.com/aussiebroadwan/fastkep/pkg/metricsx"
	"github.com/aussiebroadwan/fastkep/pkg/slogx"
)

var (
	ErrMissingCredentials = errors.New("missing_credentials")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrEmailTaken         = errors.New("email_taken")
)

// RegisterInput is a validated registration request.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AuthResult is what register and login hand back to the boundary.
type AuthResult struct {
	User   domain.User
	Tokens domain.TokenPair
}

// AuthService ties credentials, issuance, verification and revocation into
// the register, login, refresh and logout flows.
type AuthService struct {
	Store       store.Store
	Policy      PasswordPolicy
	Issuer      *TokenIssuer
	Verifier    *TokenVerifier
	Revocations revocation.Store
	Metrics     *metricsx.Metrics

	// WriteTimeout bounds a revocation write on logout.
	WriteTimeout time.Duration

	Now func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	l := slogx.FromContext(ctx)

	email := domain.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return AuthResult{}, ErrMissingCredentials
	}

	if err := s.Policy.Validate(in.Password); err != nil {
		return AuthResult{}, err
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := domain.User{
		ID:           idx.NewAt(now).String(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Users().GetUserByEmail(ctx, email); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		return AuthResult{}, err
	}

	tokens, err := s.Issuer.Issue(user.ID)
	if err != nil {
		return AuthResult{}, err
	}

	l.Info("user registered", slog.String("user_id", user.ID))
	return AuthResult{User: user, Tokens: tokens}, nil
}

// Login fails with ErrInvalidCredentials for an unknown email, an inactive
// account and a wrong password alike.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	l := slogx.FromContext(ctx)

	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return AuthResult{}, ErrMissingCredentials
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return AuthResult{}, err
		}
		_, _ = VerifyCredential(password, dummyHash)
		return AuthResult{}, ErrInvalidCredentials
	}

	ok, err := VerifyCredential(password, user.PasswordHash)
	if err != nil {
		return AuthResult{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok || !user.IsActive {
		l.Info("login rejected", slog.String("user_id", user.ID), slog.Bool("active", user.IsActive))
		return AuthResult{}, ErrInvalidCredentials
	}

	tokens, err := s.Issuer.Issue(user.ID)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: user, Tokens: tokens}, nil
}

// Refresh verifies a refresh token and mints exactly one access token. The
// refresh token itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, raw string) (domain.IssuedToken, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.IssuedToken{}, ErrMissingCredentials
	}

	p, err := s.Verifier.Verify(ctx, raw, domain.TokenKindRefresh)
	if err != nil {
		return domain.IssuedToken{}, err
	}
	return s.Issuer.IssueAccess(p.User.ID)
}

// Logout revokes the access token that authenticated the request. Other
// tokens of the same user stay valid.
func (s *AuthService) Logout(ctx context.Context, p domain.Principal) error {
	timeout := s.WriteTimeout
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := s.Revocations.Revoke(ctx, domain.RevokedToken{
		JTI:       p.Claims.ID,
		UserID:    p.User.ID,
		Kind:      p.Kind(),
		ExpiresAt: p.ExpiresAt(),
		RevokedAt: s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRevocationUnavailable, err)
	}

	s.Metrics.TokenRevoked()
	slogx.FromContext(ctx).Info("token revoked", slog.String("user_id", p.User.ID), slog.String("jti", p.Claims.ID))
	return nil
}
