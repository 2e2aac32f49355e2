package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aussiebroadwan/fastkep/internal/fastkep/store"
	"github.com/aussiebroadwan/fastkep/internal/fastkep/store/drivers/sqlstore"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Store is the SQLite driver: the shared SQL repos plus SQLite migrations.
type Store struct {
	*sqlstore.Store
}

var _ store.Store = (*Store)(nil)

var Dialect = sqlstore.Dialect{
	Name:              "sqlite",
	Rebind:            sqlstore.QuestionRebind,
	IsUniqueViolation: isUniqueViolation,
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Enforce FKs and wait on writer locks instead of failing fast.
	for _, pragma := range []string{`PRAGMA foreign_keys = ON;`, `PRAGMA busy_timeout = 5000;`} {
		if _, err := db.ExecContext(context.Background(), pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return &Store{Store: sqlstore.New(db, Dialect)}, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
