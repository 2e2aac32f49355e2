package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/fastkep/internal/fastkep/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this and expose sub-repositories so a Tx-scoped store can hand out
// the same repos without nesting transactions.
type Store interface {
	Users() Users
	RevokedTokens() RevokedTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail expects an already normalised email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID). A taken
	// email is reported as ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// SetActive flips is_active and bumps updated_at.
	SetActive(ctx context.Context, userID string, active bool) error

	DeleteUser(ctx context.Context, userID string) error
}

type RevokedTokens interface {
	// RevokeToken records a revocation. Recording the same jti again is a no-op.
	RevokeToken(ctx context.Context, t domain.RevokedToken) error

	// IsTokenRevoked reports whether jti has a revocation record.
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)

	// DeleteExpiredRevokedTokens drops records whose token expired before now.
	DeleteExpiredRevokedTokens(ctx context.Context, now time.Time) (int64, error)
}
