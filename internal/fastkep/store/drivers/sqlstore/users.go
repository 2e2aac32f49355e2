package sqlstore

import (
	"context"
	"time"

	"github.com/aussiebroadwan/fastkep/internal/fastkep/domain"
	"github.com/aussiebroadwan/fastkep/internal/fastkep/store"
)

const userColumns = `id, email, password_hash, first_name, last_name, is_active, created_at, updated_at`

type usersRepo struct {
	db      DBTX
	dialect Dialect
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u                domain.User
		active           int64
		created, updated int64
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &active, &created, &updated); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.IsActive = active != 0
	u.CreatedAt = unixTime(created)
	u.UpdatedAt = unixTime(updated)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	q := r.dialect.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	q := r.dialect.Rebind(`SELECT ` + userColumns + ` FROM users WHERE email = ?`)
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}

	q := r.dialect.Rebind(`INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, q,
		u.ID,
		u.Email,
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		boolToInt(u.IsActive),
		u.CreatedAt.Unix(),
		u.UpdatedAt.Unix(),
	)
	if err != nil && r.dialect.IsUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *usersRepo) SetActive(ctx context.Context, userID string, active bool) error {
	q := r.dialect.Rebind(`UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, q, boolToInt(active), time.Now().UTC().Unix(), userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	q := r.dialect.Rebind(`DELETE FROM users WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, q, userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
