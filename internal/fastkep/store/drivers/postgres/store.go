package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/fastkep/internal/fastkep/store"
	"github.com/aussiebroadwan/fastkep/internal/fastkep/store/drivers/sqlstore"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Store is the PostgreSQL driver, registered through pgx's database/sql
// adapter.
type Store struct {
	*sqlstore.Store
}

var _ store.Store = (*Store)(nil)

var Dialect = sqlstore.Dialect{
	Name:              "postgres",
	Rebind:            sqlstore.DollarRebind,
	IsUniqueViolation: isUniqueViolation,
}

// NewStore opens a pool for a postgres:// URL and checks it is reachable.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{Store: sqlstore.New(db, Dialect)}, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
