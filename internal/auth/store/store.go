package store

import (
	"context"
	"errors"

	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
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
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail looks up a user by email (stored lowercase).
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetUserByCRM looks up a user by professional registration number.
	GetUserByCRM(ctx context.Context, crm string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists on email or CRM collision.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateLastLogin stamps last_login and bumps updated_at.
	UpdateLastLogin(ctx context.Context, userID string) error

	// SetUserActive toggles the is_active flag. Inactive users cannot log in
	// or refresh.
	SetUserActive(ctx context.Context, userID string, active bool) error

	// UpdateTwoFactorSecret stores a pending TOTP secret without enabling 2FA.
	UpdateTwoFactorSecret(ctx context.Context, userID string, secret string) error

	// EnableTwoFactor flips two_factor_enabled on, keeping the stored secret.
	EnableTwoFactor(ctx context.Context, userID string) error

	// DisableTwoFactor clears both the enabled flag and the secret.
	DisableTwoFactor(ctx context.Context, userID string) error
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByValue returns the record matching the exact token string.
	GetRefreshTokenByValue(ctx context.Context, token string) (domain.RefreshToken, error)

	// DeleteRefreshToken removes the record matching the exact token string.
	// Deleting a missing token is not an error.
	DeleteRefreshToken(ctx context.Context, token string) error

	// DeleteAllUserRefreshTokens removes every session for a user
	// (e.g., when 2FA is disabled or the account is deactivated).
	DeleteAllUserRefreshTokens(ctx context.Context, userID string) error

	// DeleteExpiredRefreshTokens is periodic housekeeping.
	DeleteExpiredRefreshTokens(ctx context.Context) (int64, error)
}
