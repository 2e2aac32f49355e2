package sqlstore

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aussiebroadwan/fastkep/internal/fastkep/domain"
	"github.com/aussiebroadwan/fastkep/internal/fastkep/store"
	"github.com/stretchr/testify/require"
)

var errUnique = errors.New("unique violation")

func newMockStore(t *testing.T, dialect Dialect) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return New(db, dialect), mock
}

func TestDollarRebind(t *testing.T) {
	require.Equal(t,
		"SELECT a FROM t WHERE x = $1 AND y = $2",
		DollarRebind("SELECT a FROM t WHERE x = ? AND y = ?"))
	require.Equal(t, "SELECT 1", DollarRebind("SELECT 1"))
}

func TestCreateUserMapsUniqueViolation(t *testing.T) {
	s, mock := newMockStore(t, Dialect{IsUniqueViolation: func(err error) bool { return errors.Is(err, errUnique) }})

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(errUnique)

	err := s.Users().CreateUser(context.Background(), domain.User{ID: "u1", Email: "a@b.com"})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestRevokeUsesDialectPlaceholders(t *testing.T) {
	s, mock := newMockStore(t, Dialect{Rebind: DollarRebind})

	exp := time.Unix(1_700_000_000, 0)
	mock.ExpectExec(regexp.QuoteMeta("VALUES ($1, $2, $3, $4, $5)")).
		WithArgs("jti", "u1", "access", exp.Unix(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.RevokedTokens().RevokeToken(context.Background(), domain.RevokedToken{
		JTI: "jti", UserID: "u1", Kind: domain.TokenKindAccess, ExpiresAt: exp,
	})
	require.NoError(t, err)
}

func TestIsTokenRevokedPropagatesErrors(t *testing.T) {
	s, mock := newMockStore(t, Dialect{})

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM revoked_tokens")).
		WithArgs("jti").
		WillReturnError(errors.New("connection reset"))

	_, err := s.RevokedTokens().IsTokenRevoked(context.Background(), "jti")
	require.EqualError(t, err, "connection reset")
}

func TestGetUserNotFound(t *testing.T) {
	s, mock := newMockStore(t, Dialect{})

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = ?")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.Users().GetUserByID(context.Background(), "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTxCommits(t *testing.T) {
	s, mock := newMockStore(t, Dialect{})

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users")).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.WithTx(context.Background(), func(tx store.Tx) error {
		return tx.Users().DeleteUser(context.Background(), "u1")
	})
	require.NoError(t, err)
}
