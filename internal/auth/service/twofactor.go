package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/internal/auth/domain"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/internal/auth/store"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/cryptox"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/slogx"
)

const (
	totpPeriod = 30
	// totpSkew accepts codes from adjacent time steps to absorb clock drift
	// between the server and the authenticator device.
	totpSkew = 2
)

var (
	ErrInvalidTwoFactorCode = errors.New("invalid_two_factor_code")
	ErrTwoFactorNotEnrolled = errors.New("two_factor_not_enrolled")
	ErrTwoFactorAlreadyOn   = errors.New("two_factor_already_enabled")
	ErrTwoFactorNotEnabled  = errors.New("two_factor_not_enabled")
)

// TwoFactorService manages TOTP enrollment: generating the shared secret,
// confirming the first code, and tearing the whole thing down again.
type TwoFactorService struct {
	Store  store.Store
	Issuer string // Issuer name shown in the authenticator app
}

// Enroll generates a TOTP secret for the user and returns it along with the
// otpauth URL. This does NOT enable 2FA yet; the user must verify a code
// first. Re-enrolling while a previous enrollment is still pending replaces
// the old secret.
func (s *TwoFactorService) Enroll(ctx context.Context, userID string) (domain.TwoFactorEnrollment, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.TwoFactorEnrollment{}, fmt.Errorf("load user: %w", err)
	}
	if u.TwoFactorEnabled {
		return domain.TwoFactorEnrollment{}, ErrTwoFactorAlreadyOn
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: u.Email,
		Period:      totpPeriod,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return domain.TwoFactorEnrollment{}, fmt.Errorf("generate TOTP key: %w", err)
	}

	if err := s.Store.Users().UpdateTwoFactorSecret(ctx, userID, key.Secret()); err != nil {
		return domain.TwoFactorEnrollment{}, fmt.Errorf("store TOTP secret: %w", err)
	}

	return domain.TwoFactorEnrollment{
		Secret:  key.Secret(),
		QRCode:  key.URL(),
		Issuer:  s.Issuer,
		Account: u.Email,
	}, nil
}

// Verify confirms a pending enrollment with a current TOTP code and turns
// 2FA on for the account.
func (s *TwoFactorService) Verify(ctx context.Context, userID string, code string) error {
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	if u.TwoFactorSecret == nil || *u.TwoFactorSecret == "" {
		return ErrTwoFactorNotEnrolled
	}
	if u.TwoFactorEnabled {
		return ErrTwoFactorAlreadyOn
	}

	if !validTOTP(code, *u.TwoFactorSecret, time.Now()) {
		return ErrInvalidTwoFactorCode
	}

	if err := s.Store.Users().EnableTwoFactor(ctx, userID); err != nil {
		return fmt.Errorf("enable 2FA: %w", err)
	}

	l.Info("two-factor enabled", "user_id", userID)
	return nil
}

// Disable turns 2FA off and discards the secret. The caller must prove
// possession of the account password again; a stolen access token alone must
// not be enough to weaken the account.
func (s *TwoFactorService) Disable(ctx context.Context, userID string, password string) error {
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	if !u.TwoFactorEnabled {
		return ErrTwoFactorNotEnabled
	}

	if err := s.Store.Users().DisableTwoFactor(ctx, userID); err != nil {
		return fmt.Errorf("disable 2FA: %w", err)
	}

	l.Info("two-factor disabled", "user_id", userID)
	return nil
}

// validTOTP checks a six-digit code against the secret, accepting totpSkew
// steps either side of now.
func validTOTP(code, secret string, now time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, now, totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      totpSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
