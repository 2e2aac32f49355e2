// Package sqlstore implements store.Store over database/sql. The sqlite and
// postgres drivers wrap it with their own connection setup, dialect and
// migrations.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/fastkep/internal/fastkep/store"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Dialect captures what differs between drivers. Queries are written with
// '?' placeholders and rebound per dialect.
type Dialect struct {
	Name              string
	Rebind            func(query string) string
	IsUniqueViolation func(err error) bool
}

// QuestionRebind leaves '?' placeholders as they are.
func QuestionRebind(query string) string { return query }

// DollarRebind rewrites '?' placeholders to $1, $2, ... Queries in this
// package never contain a literal '?'.
func DollarRebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type Store struct {
	db      *sql.DB
	dialect Dialect
}

func New(db *sql.DB, dialect Dialect) *Store {
	if dialect.Rebind == nil {
		dialect.Rebind = QuestionRebind
	}
	if dialect.IsUniqueViolation == nil {
		dialect.IsUniqueViolation = func(error) bool { return false }
	}
	return &Store{db: db, dialect: dialect}
}

// DB exposes the pool for migration drivers.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ApplyMigrations is a no-op here; drivers override it with their embedded
// migration sets.
func (s *Store) ApplyMigrations() error { return nil }

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &txStore{tx: tx, dialect: s.dialect}, nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Users() store.Users {
	return &usersRepo{db: s.db, dialect: s.dialect}
}

func (s *Store) RevokedTokens() store.RevokedTokens {
	return &revokedTokensRepo{db: s.db, dialect: s.dialect}
}

type txStore struct {
	tx      *sql.Tx
	dialect Dialect
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // outer DB stays open

// Ping is a no-op; the connection is held by the transaction.
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) ApplyMigrations() error { return nil }

func (t *txStore) Users() store.Users {
	return &usersRepo{db: t.tx, dialect: t.dialect}
}

func (t *txStore) RevokedTokens() store.RevokedTokens {
	return &revokedTokensRepo{db: t.tx, dialect: t.dialect}
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func unixTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
