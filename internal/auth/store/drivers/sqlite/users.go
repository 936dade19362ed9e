package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/internal/auth/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, name, email, password_hash, role, crm, phone,
	two_factor_enabled, two_factor_secret, is_active, last_login, created_at, updated_at`

func (r *usersRepo) scanUser(row *sql.Row) (domain.User, error) {
	var (
		u         domain.User
		role      string
		crm       sql.NullString
		phone     sql.NullString
		secret    sql.NullString
		lastLogin sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &crm, &phone,
		&u.TwoFactorEnabled, &secret, &u.IsActive, &lastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.Role = domain.Role(role)
	u.CRM = mapNullStringPtr(crm)
	u.Phone = mapNullStringPtr(phone)
	u.TwoFactorSecret = mapNullStringPtr(secret)
	u.LastLogin = mapNullTimePtr(lastLogin)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return r.scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return r.scanUser(row)
}

func (r *usersRepo) GetUserByCRM(ctx context.Context, crm string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE crm = ?`, crm)
	return r.scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, crm, phone,
			two_factor_enabled, two_factor_secret, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, NULL, 1, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role),
		mapOptionalString(u.CRM), mapOptionalString(u.Phone), now, now,
	)
	return mapConstraint(err)
}

func (r *usersRepo) UpdateLastLogin(ctx context.Context, userID string) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_login = ?, updated_at = ? WHERE id = ?`,
		now, now, userID)
	return err
}

func (r *usersRepo) SetUserActive(ctx context.Context, userID string, active bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?`,
		active, time.Now().UTC(), userID)
	return err
}

func (r *usersRepo) UpdateTwoFactorSecret(ctx context.Context, userID string, secret string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET two_factor_secret = ?, updated_at = ? WHERE id = ?`,
		secret, time.Now().UTC(), userID)
	return err
}

func (r *usersRepo) EnableTwoFactor(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET two_factor_enabled = 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), userID)
	return err
}

func (r *usersRepo) DisableTwoFactor(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET two_factor_enabled = 0, two_factor_secret = NULL, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), userID)
	return err
}
