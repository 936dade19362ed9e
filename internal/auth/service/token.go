package service

import (
	"context"
	"errors"
	"time"

	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/internal/auth/domain"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/internal/auth/store"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/idx"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/jwtx"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/slogx"
)

var (
	ErrInvalidRefresh = errors.New("invalid_refresh_token")
	ErrRefreshExpired = errors.New("refresh_token_expired")
)

// TokenService issues and redeems the access/refresh token pair. Access and
// refresh tokens are signed with independent secrets so one can never be
// presented in place of the other.
type TokenService struct {
	Store         store.Store
	AccessSigner  *jwtx.Signer
	RefreshSigner *jwtx.Signer
	Issuer        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// IssuePair signs a new access/refresh pair for the user and persists the
// refresh token so it can be revoked later. Issuing a new pair never touches
// existing sessions; a user may hold several at once.
func (s *TokenService) IssuePair(ctx context.Context, u domain.User) (*domain.TokenPair, error) {
	now := time.Now()

	access, err := s.AccessSigner.Sign(
		jwtx.NewAccessClaims(u.ID, u.Email, u.Role.String(), s.AccessTTL, s.Issuer, now))
	if err != nil {
		return nil, err
	}

	refresh, err := s.RefreshSigner.Sign(
		jwtx.NewRefreshClaims(u.ID, s.RefreshTTL, s.Issuer, now))
	if err != nil {
		return nil, err
	}

	rt := domain.RefreshToken{
		ID:        idx.New().String(),
		Token:     refresh,
		UserID:    u.ID,
		ExpiresAt: now.Add(s.RefreshTTL),
	}
	if err := s.Store.RefreshTokens().CreateRefreshToken(ctx, rt); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.AccessTTL.Seconds()),
	}, nil
}

// Refresh redeems a refresh token for a fresh access token. The presented
// token must both verify as a JWT and match a stored session row exactly; the
// row is what makes logout effective before the JWT's own expiry. The
// refresh token itself is returned unchanged, so the session keeps its
// original lifetime.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)
	now := time.Now()

	claims, err := s.RefreshSigner.VerifyRefresh(refreshToken)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			// Expired signature also means the row is dead weight.
			_ = s.Store.RefreshTokens().DeleteRefreshToken(ctx, refreshToken)
			return nil, ErrRefreshExpired
		}
		return nil, ErrInvalidRefresh
	}

	rt, err := s.Store.RefreshTokens().GetRefreshTokenByValue(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Valid signature but no row: the session was logged out.
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}

	if rt.Expired(now) {
		// Lazy cleanup; the housekeeping worker catches the rest.
		_ = s.Store.RefreshTokens().DeleteRefreshToken(ctx, refreshToken)
		return nil, ErrRefreshExpired
	}

	if rt.UserID != claims.Subject {
		l.Warn("refresh token row/claims subject mismatch", "row_user", rt.UserID)
		return nil, ErrInvalidRefresh
	}

	u, err := s.Store.Users().GetUserByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrAccountDisabled
	}

	access, err := s.AccessSigner.Sign(
		jwtx.NewAccessClaims(u.ID, u.Email, u.Role.String(), s.AccessTTL, s.Issuer, now))
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.AccessTTL.Seconds()),
	}, nil
}

// Revoke deletes the stored session for the given refresh token. Revoking a
// token that is unknown or already revoked is a no-op, so logout is
// idempotent.
func (s *TokenService) Revoke(ctx context.Context, refreshToken string) error {
	return s.Store.RefreshTokens().DeleteRefreshToken(ctx, refreshToken)
}

// RevokeAllForUser drops every active session for a user.
func (s *TokenService) RevokeAllForUser(ctx context.Context, userID string) error {
	return s.Store.RefreshTokens().DeleteAllUserRefreshTokens(ctx, userID)
}
