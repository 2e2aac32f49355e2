package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aussiebroadwan/fastkep/internal/fastkep/domain"
	"github.com/aussiebroadwan/fastkep/internal/fastkep/revocation"
	"github.com/aussiebroadwan/fastkep/internal/fastkep/store/drivers/sqlstore"
	"github.com/aussiebroadwan/fastkep/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestVerifyAccepts(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "maria@example.gr")

	p, err := f.verifier.Verify(context.Background(), reg.Tokens.AccessToken, domain.TokenKindAccess)
	require.NoError(t, err)
	require.Equal(t, reg.User.ID, p.User.ID)
	require.Equal(t, "maria@example.gr", p.User.Email)
	require.Equal(t, domain.TokenKindAccess, p.Kind())
	require.True(t, reg.Tokens.AccessExpiresAt.Equal(p.ExpiresAt()))
}

func TestVerifyWrongKind(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "maria@example.gr")
	ctx := context.Background()

	_, err := f.verifier.Verify(ctx, reg.Tokens.RefreshToken, domain.TokenKindAccess)
	require.ErrorIs(t, err, ErrTokenWrongKind)

	_, err = f.verifier.Verify(ctx, reg.Tokens.AccessToken, domain.TokenKindRefresh)
	require.ErrorIs(t, err, ErrTokenWrongKind)
}

func TestVerifyExpiry(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "maria@example.gr")
	ctx := context.Background()

	f.clock.Advance(time.Hour - time.Second)
	_, err := f.verifier.Verify(ctx, reg.Tokens.AccessToken, domain.TokenKindAccess)
	require.NoError(t, err)

	// now == exp is already expired.
	f.clock.Advance(time.Second)
	_, err = f.verifier.Verify(ctx, reg.Tokens.AccessToken, domain.TokenKindAccess)
	require.ErrorIs(t, err, ErrTokenExpired)

	// Expiry is checked before kind.
	_, err = f.verifier.Verify(ctx, reg.Tokens.AccessToken, domain.TokenKindRefresh)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyStructuralFailures(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "maria@example.gr")

	other, err := jwtx.NewKeyManager(jwtx.KeyManagerOptions{Issuer: testIssuer})
	require.NoError(t, err)
	foreign, err := other.Signer.Sign(jwtx.NewClaims(reg.User.ID, "access", time.Hour, testIssuer, f.clock.Now()))
	require.NoError(t, err)

	wrongIssuer, err := f.keys.Signer.Sign(jwtx.NewClaims(reg.User.ID, "access", time.Hour, "https://evil.example", f.clock.Now()))
	require.NoError(t, err)

	parts := strings.Split(reg.Tokens.AccessToken, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "not-a-jwt", ErrTokenMalformed},
		{"empty", "", ErrTokenMalformed},
		{"tampered signature", tampered, ErrTokenBadSignature},
		{"foreign key", foreign, ErrTokenBadSignature},
		{"wrong issuer", wrongIssuer, ErrTokenMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.verifier.Verify(context.Background(), tt.token, domain.TokenKindAccess)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestVerifyRevoked(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "maria@example.gr")
	ctx := context.Background()

	p, err := f.verifier.Verify(ctx, reg.Tokens.AccessToken, domain.TokenKindAccess)
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(ctx, p))
	require.NoError(t, f.auth.Logout(ctx, p), "second logout is a no-op")

	_, err = f.verifier.Verify(ctx, reg.Tokens.AccessToken, domain.TokenKindAccess)
	require.ErrorIs(t, err, ErrTokenRevoked)

	// The refresh token is a separate jti and stays usable.
	_, err = f.verifier.Verify(ctx, reg.Tokens.RefreshToken, domain.TokenKindRefresh)
	require.NoError(t, err)
}

func TestVerifyUnknownOrInactiveSubject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ghost, err := f.issuer.Issue("01JQ0000000000000000000000")
	require.NoError(t, err)
	_, err = f.verifier.Verify(ctx, ghost.AccessToken, domain.TokenKindAccess)
	require.ErrorIs(t, err, ErrUnknownSubject)

	reg := f.register(t, "maria@example.gr")
	require.NoError(t, f.store.Users().SetActive(ctx, reg.User.ID, false))
	_, err = f.verifier.Verify(ctx, reg.Tokens.AccessToken, domain.TokenKindAccess)
	require.ErrorIs(t, err, ErrUnknownSubject)
}

type forbiddenLookup struct{ t *testing.T }

func (l forbiddenLookup) GetUserByID(context.Context, string) (domain.User, error) {
	l.t.Fatal("user lookup must not run for a non-ID subject")
	return domain.User{}, nil
}

func TestVerifyRejectsNonIDSubjectWithoutLookup(t *testing.T) {
	f := newFixture(t)

	raw, err := f.keys.Signer.Sign(jwtx.NewClaims("admin", "access", time.Hour, testIssuer, f.clock.Now()))
	require.NoError(t, err)

	v := NewTokenVerifier(f.keys.Verifier, revocation.NewMemory(), forbiddenLookup{t}, time.Second)
	v.Now = f.clock.Now

	_, err = v.Verify(context.Background(), raw, domain.TokenKindAccess)
	require.ErrorIs(t, err, ErrUnknownSubject)
}

func TestVerifyFailsClosed(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "maria@example.gr")

	t.Run("store error", func(t *testing.T) {
		v := NewTokenVerifier(f.keys.Verifier, failingRevocations{err: errors.New("connection refused")}, f.store.Users(), time.Second)
		v.Now = f.clock.Now

		_, err := v.Verify(context.Background(), reg.Tokens.AccessToken, domain.TokenKindAccess)
		require.ErrorIs(t, err, ErrRevocationUnavailable)
	})

	t.Run("timeout", func(t *testing.T) {
		v := NewTokenVerifier(f.keys.Verifier, slowRevocations{}, f.store.Users(), 20*time.Millisecond)
		v.Now = f.clock.Now

		start := time.Now()
		_, err := v.Verify(context.Background(), reg.Tokens.AccessToken, domain.TokenKindAccess)
		require.ErrorIs(t, err, ErrRevocationUnavailable)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		require.Less(t, time.Since(start), time.Second)
	})

	t.Run("sql backend error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })

		mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM revoked_tokens")).
			WillReturnError(errors.New("database is locked"))

		revocations := revocation.NewSQL(sqlstore.New(db, sqlstore.Dialect{}))
		v := NewTokenVerifier(f.keys.Verifier, revocations, f.store.Users(), time.Second)
		v.Now = f.clock.Now

		_, err = v.Verify(context.Background(), reg.Tokens.AccessToken, domain.TokenKindAccess)
		require.ErrorIs(t, err, ErrRevocationUnavailable)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("skips store for trivially bad tokens", func(t *testing.T) {
		v := NewTokenVerifier(f.keys.Verifier, failingRevocations{err: errors.New("unreachable")}, f.store.Users(), time.Second)
		v.Now = f.clock.Now

		_, err := v.Verify(context.Background(), reg.Tokens.RefreshToken, domain.TokenKindAccess)
		require.ErrorIs(t, err, ErrTokenWrongKind)
	})
}
