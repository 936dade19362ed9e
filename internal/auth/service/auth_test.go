package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/internal/auth/domain"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/internal/auth/store"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/internal/auth/store/drivers/sqlite"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/cryptox"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "auth-service-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func newTokenService(s store.Store) *TokenService {
	return &TokenService{
		Store:         s,
		AccessSigner:  jwtx.NewSigner("test-access-secret", "test-issuer"),
		RefreshSigner: jwtx.NewSigner("test-refresh-secret", "test-issuer"),
		Issuer:        "test-issuer",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	}
}

func registerTestUser(t *testing.T, svc *AuthService, email string) domain.User {
	t.Helper()

	u, err := svc.Register(context.Background(), RegisterParams{
		Name:     "Dr. Ana Souza",
		Email:    email,
		Password: "S3nha!forte",
		Role:     domain.RoleClinician,
	})
	require.NoError(t, err)
	return u
}

func TestRegisterNormalisesEmail(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	svc := &AuthService{Store: s}

	u, err := svc.Register(ctx, RegisterParams{
		Name:     "Dr. Ana Souza",
		Email:    "Ana.Souza@Clinic.Example",
		Password: "S3nha!forte",
		Role:     domain.RoleClinician,
	})
	require.NoError(t, err)
	require.Equal(t, "ana.souza@clinic.example", u.Email)
	require.NotEmpty(t, u.ID)
	require.True(t, u.IsActive)

	// Same address with different casing is a conflict.
	_, err = svc.Register(ctx, RegisterParams{
		Name:     "Impostor",
		Email:    "ANA.SOUZA@clinic.example",
		Password: "Outr4!senha",
		Role:     domain.RoleStaff,
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterRejectsDuplicateCRM(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	svc := &AuthService{Store: s}

	crm := "CRM/PE 12345"
	_, err := svc.Register(ctx, RegisterParams{
		Name:     "Dr. Ana Souza",
		Email:    "ana@clinic.example",
		Password: "S3nha!forte",
		Role:     domain.RoleClinician,
		CRM:      &crm,
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterParams{
		Name:     "Dr. Beto Lima",
		Email:    "beto@clinic.example",
		Password: "S3nha!forte",
		Role:     domain.RoleClinician,
		CRM:      &crm,
	})
	require.ErrorIs(t, err, ErrCRMTaken)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	s := newTestStore(t)
	svc := &AuthService{Store: s}

	_, err := svc.Register(context.Background(), RegisterParams{
		Name:     "Eve",
		Email:    "eve@clinic.example",
		Password: "S3nha!forte",
		Role:     domain.Role("superuser"),
	})
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestLoginPasswordChecks(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	svc := &AuthService{Store: s}
	registerTestUser(t, svc, "ana@clinic.example")

	t.Run("correct password succeeds", func(t *testing.T) {
		res, err := svc.Login(ctx, "ana@clinic.example", "S3nha!forte", "")
		require.NoError(t, err)
		require.False(t, res.TwoFactorRequired)
		require.Equal(t, "ana@clinic.example", res.User.Email)
	})

	t.Run("uppercased email still matches", func(t *testing.T) {
		_, err := svc.Login(ctx, "ANA@CLINIC.EXAMPLE", "S3nha!forte", "")
		require.NoError(t, err)
	})

	t.Run("wrong password and unknown email return the same error", func(t *testing.T) {
		_, errWrongPw := svc.Login(ctx, "ana@clinic.example", "wrong-password", "")
		_, errNoUser := svc.Login(ctx, "nobody@clinic.example", "S3nha!forte", "")

		require.ErrorIs(t, errWrongPw, ErrInvalidCredentials)
		require.ErrorIs(t, errNoUser, ErrInvalidCredentials)
	})

	t.Run("login stamps last_login", func(t *testing.T) {
		u, err := s.Users().GetUserByEmail(ctx, "ana@clinic.example")
		require.NoError(t, err)
		require.NotNil(t, u.LastLogin)
	})
}

func TestLoginDisabledAccount(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	svc := &AuthService{Store: s}
	u := registerTestUser(t, svc, "ana@clinic.example")

	require.NoError(t, s.Users().SetUserActive(ctx, u.ID, false))

	_, err := svc.Login(ctx, "ana@clinic.example", "S3nha!forte", "")
	require.ErrorIs(t, err, ErrAccountDisabled)
}

func TestIssuePairAndRefresh(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	authSvc := &AuthService{Store: s}
	tokenSvc := newTokenService(s)
	u := registerTestUser(t, authSvc, "ana@clinic.example")

	pair, err := tokenSvc.IssuePair(ctx, u)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, "Bearer", pair.TokenType)
	require.EqualValues(t, 60, pair.ExpiresIn)

	// The refresh token must be stored verbatim for later revocation.
	rt, err := s.RefreshTokens().GetRefreshTokenByValue(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, u.ID, rt.UserID)

	t.Run("refresh returns a fresh access token and the same refresh token", func(t *testing.T) {
		refreshed, err := tokenSvc.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		require.NotEmpty(t, refreshed.AccessToken)
		require.Equal(t, pair.RefreshToken, refreshed.RefreshToken)

		// The session row must survive the refresh.
		_, err = s.RefreshTokens().GetRefreshTokenByValue(ctx, pair.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("access token cannot be used as a refresh token", func(t *testing.T) {
		_, err := tokenSvc.Refresh(ctx, pair.AccessToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := tokenSvc.Refresh(ctx, "not-a-token")
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})
}

func TestRefreshAfterLogout(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	authSvc := &AuthService{Store: s}
	tokenSvc := newTokenService(s)
	u := registerTestUser(t, authSvc, "ana@clinic.example")

	pair, err := tokenSvc.IssuePair(ctx, u)
	require.NoError(t, err)

	require.NoError(t, tokenSvc.Revoke(ctx, pair.RefreshToken))

	// Logout is idempotent.
	require.NoError(t, tokenSvc.Revoke(ctx, pair.RefreshToken))
	require.NoError(t, tokenSvc.Revoke(ctx, "never-issued"))

	// The JWT is still cryptographically valid, but its session is gone.
	_, err = tokenSvc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestRefreshExpiredSessionIsDeleted(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	authSvc := &AuthService{Store: s}
	tokenSvc := newTokenService(s)
	u := registerTestUser(t, authSvc, "ana@clinic.example")

	// Sign a refresh JWT that is still valid, but store its session row with
	// an expiry already in the past.
	raw, err := tokenSvc.RefreshSigner.Sign(
		jwtx.NewRefreshClaims(u.ID, time.Hour, "test-issuer", time.Now()))
	require.NoError(t, err)

	require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		ID:        "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV",
		Token:     raw,
		UserID:    u.ID,
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	_, err = tokenSvc.Refresh(ctx, raw)
	require.ErrorIs(t, err, ErrRefreshExpired)

	// The dead row was removed on the way out.
	_, err = s.RefreshTokens().GetRefreshTokenByValue(ctx, raw)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRefreshDisabledAccount(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	authSvc := &AuthService{Store: s}
	tokenSvc := newTokenService(s)
	u := registerTestUser(t, authSvc, "ana@clinic.example")

	pair, err := tokenSvc.IssuePair(ctx, u)
	require.NoError(t, err)

	require.NoError(t, s.Users().SetUserActive(ctx, u.ID, false))

	_, err = tokenSvc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrAccountDisabled)
}

func TestConcurrentSessions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	authSvc := &AuthService{Store: s}
	tokenSvc := newTokenService(s)
	u := registerTestUser(t, authSvc, "ana@clinic.example")

	first, err := tokenSvc.IssuePair(ctx, u)
	require.NoError(t, err)
	second, err := tokenSvc.IssuePair(ctx, u)
	require.NoError(t, err)

	// Revoking one session leaves the other intact.
	require.NoError(t, tokenSvc.Revoke(ctx, first.RefreshToken))

	_, err = tokenSvc.Refresh(ctx, first.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)

	_, err = tokenSvc.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)
}

func TestHousekeepingDeletesExpiredSessions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	authSvc := &AuthService{Store: s}
	tokenSvc := newTokenService(s)
	u := registerTestUser(t, authSvc, "ana@clinic.example")

	live, err := tokenSvc.IssuePair(ctx, u)
	require.NoError(t, err)

	require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		ID:        "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZW",
		Token:     "stale-session",
		UserID:    u.ID,
		ExpiresAt: time.Now().Add(-time.Hour),
	}))

	deleted, err := s.RefreshTokens().DeleteExpiredRefreshTokens(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	// The live session survives.
	_, err = s.RefreshTokens().GetRefreshTokenByValue(ctx, live.RefreshToken)
	require.NoError(t, err)
}
