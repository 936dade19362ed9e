package sqlite

import (
	"context"
	"time"

	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/internal/auth/domain"
)

type refreshTokensRepo struct {
	db dbtx
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (id, token, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.Token, t.UserID, t.ExpiresAt.UTC(), time.Now().UTC(),
	)
	return mapConstraint(err)
}

func (r *refreshTokensRepo) GetRefreshTokenByValue(ctx context.Context, token string) (domain.RefreshToken, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, token, user_id, expires_at, created_at
		FROM refresh_tokens WHERE token = ?`, token)

	var t domain.RefreshToken
	if err := row.Scan(&t.ID, &t.Token, &t.UserID, &t.ExpiresAt, &t.CreatedAt); err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	return t, nil
}

func (r *refreshTokensRepo) DeleteRefreshToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE token = ?`, token)
	return err
}

func (r *refreshTokensRepo) DeleteAllUserRefreshTokens(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE user_id = ?`, userID)
	return err
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < ?`, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
