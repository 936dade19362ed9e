package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/internal/auth/domain"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/internal/auth/store"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/cryptox"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/idx"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/slogx"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// responses cannot be used to probe which addresses are registered.
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrAccountDisabled    = errors.New("account_disabled")
	ErrEmailTaken         = errors.New("email_taken")
	ErrCRMTaken           = errors.New("crm_taken")
	ErrInvalidRole        = errors.New("invalid_role")
)

type AuthService struct {
	Store store.Store
}

// RegisterParams carries the already-validated registration input.
type RegisterParams struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
	CRM      *string
	Phone    *string
}

// LoginResult is what Login returns. When the account has 2FA enabled and no
// code was supplied, TwoFactorRequired is set and the token pair is empty.
type LoginResult struct {
	User              domain.User
	TwoFactorRequired bool
}

// Register creates a new account. Email is normalised to lowercase before the
// uniqueness check so the same address cannot be registered twice with
// different casing.
func (s *AuthService) Register(ctx context.Context, p RegisterParams) (domain.User, error) {
	l := slogx.FromContext(ctx)

	if !p.Role.Valid() {
		return domain.User{}, ErrInvalidRole
	}

	email := strings.ToLower(strings.TrimSpace(p.Email))

	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := domain.User{
		ID:           idx.New().String(),
		Name:         strings.TrimSpace(p.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         p.Role,
		CRM:          p.CRM,
		Phone:        p.Phone,
		IsActive:     true,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// Distinguish which unique column collides so the handler can report
		// a useful conflict message.
		if _, err := tx.Users().GetUserByEmail(ctx, email); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if p.CRM != nil {
			if _, err := tx.Users().GetUserByCRM(ctx, *p.CRM); err == nil {
				return ErrCRMTaken
			} else if !errors.Is(err, store.ErrNotFound) {
				return err
			}
		}

		return tx.Users().CreateUser(ctx, u)
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Concurrent insert won the race; report it as an email conflict.
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}

	l.Info("user registered",
		slog.String("user_id", u.ID),
		slog.String("role", u.Role.String()),
	)

	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	return u, nil
}

// Login verifies the credentials and reports whether a TOTP code is still
// needed. Token issuance is the TokenService's job; handlers call it once
// Login (and the optional second factor) has passed.
//
// When 2FA is enabled, totpCode must be a currently valid code. An empty
// code yields TwoFactorRequired instead of an error.
func (s *AuthService) Login(ctx context.Context, email, password, totpCode string) (LoginResult, error) {
	l := slogx.FromContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn a hash comparison anyway so the timing matches the
			// wrong-password path.
			_ = cryptox.VerifyPassword(password, dummyHash)
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		l.Info("login failed", slog.String("user_id", u.ID))
		return LoginResult{}, ErrInvalidCredentials
	}

	if !u.IsActive {
		return LoginResult{}, ErrAccountDisabled
	}

	if u.TwoFactorEnabled {
		if totpCode == "" {
			return LoginResult{User: u, TwoFactorRequired: true}, nil
		}
		if !validTOTP(totpCode, *u.TwoFactorSecret, time.Now()) {
			return LoginResult{}, ErrInvalidTwoFactorCode
		}
	}

	if err := s.Store.Users().UpdateLastLogin(ctx, u.ID); err != nil {
		// Not worth failing the login over.
		l.Warn("failed to stamp last_login", "err", err)
	}

	l.Info("login succeeded", slog.String("user_id", u.ID))
	return LoginResult{User: u}, nil
}

// dummyHash is a valid argon2id encoding of a throwaway password, used to
// equalise timing on the unknown-email path.
const dummyHash = "$argon2id$v=19$m=19456,t=2,p=1$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
