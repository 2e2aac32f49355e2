package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/fastkep/internal/fastkep/domain"
	"github.com/aussiebroadwan/fastkep/internal/fastkep/store"
)

type revokedTokensRepo struct {
	db      DBTX
	dialect Dialect
}

func (r *revokedTokensRepo) RevokeToken(ctx context.Context, t domain.RevokedToken) error {
	if t.RevokedAt.IsZero() {
		t.RevokedAt = time.Now().UTC()
	}

	q := r.dialect.Rebind(`INSERT INTO revoked_tokens (jti, user_id, kind, expires_at, revoked_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (jti) DO NOTHING`)
	_, err := r.db.ExecContext(ctx, q, t.JTI, t.UserID, string(t.Kind), t.ExpiresAt.Unix(), t.RevokedAt.Unix())
	return err
}

func (r *revokedTokensRepo) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	q := r.dialect.Rebind(`SELECT 1 FROM revoked_tokens WHERE jti = ?`)

	var one int
	err := r.db.QueryRowContext(ctx, q, jti).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

func (r *revokedTokensRepo) DeleteExpiredRevokedTokens(ctx context.Context, now time.Time) (int64, error) {
	q := r.dialect.Rebind(`DELETE FROM revoked_tokens WHERE expires_at <= ?`)
	res, err := r.db.ExecContext(ctx, q, now.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
