package service

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func testCode(t *testing.T, secret string, at time.Time) string {
	t.Helper()

	code, err := totp.GenerateCodeCustom(secret, at, totp.ValidateOpts{
		Period:    totpPeriod,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)
	return code
}

func TestTwoFactorEnrollAndVerify(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	authSvc := &AuthService{Store: s}
	tfaSvc := &TwoFactorService{Store: s, Issuer: "Clinica Test"}
	u := registerTestUser(t, authSvc, "ana@clinic.example")

	enrollment, err := tfaSvc.Enroll(ctx, u.ID)
	require.NoError(t, err)
	require.NotEmpty(t, enrollment.Secret)
	require.Contains(t, enrollment.QRCode, "otpauth://totp/")
	require.Equal(t, "ana@clinic.example", enrollment.Account)

	// Secret stored but 2FA not yet on.
	stored, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, stored.TwoFactorEnabled)
	require.Equal(t, domain.TwoFactorPending, stored.TwoFactorState())

	t.Run("wrong code does not enable", func(t *testing.T) {
		err := tfaSvc.Verify(ctx, u.ID, "000000")
		require.ErrorIs(t, err, ErrInvalidTwoFactorCode)
	})

	t.Run("valid code enables", func(t *testing.T) {
		require.NoError(t, tfaSvc.Verify(ctx, u.ID, testCode(t, enrollment.Secret, time.Now())))

		stored, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.True(t, stored.TwoFactorEnabled)
		require.Equal(t, domain.TwoFactorEnabled, stored.TwoFactorState())
	})

	t.Run("enroll again while enabled conflicts", func(t *testing.T) {
		_, err := tfaSvc.Enroll(ctx, u.ID)
		require.ErrorIs(t, err, ErrTwoFactorAlreadyOn)
	})

	t.Run("verify again while enabled conflicts", func(t *testing.T) {
		err := tfaSvc.Verify(ctx, u.ID, testCode(t, enrollment.Secret, time.Now()))
		require.ErrorIs(t, err, ErrTwoFactorAlreadyOn)
	})
}

func TestTwoFactorVerifyWithoutEnrollment(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	authSvc := &AuthService{Store: s}
	tfaSvc := &TwoFactorService{Store: s, Issuer: "Clinica Test"}
	u := registerTestUser(t, authSvc, "ana@clinic.example")

	err := tfaSvc.Verify(ctx, u.ID, "123456")
	require.ErrorIs(t, err, ErrTwoFactorNotEnrolled)
}

func TestTwoFactorReEnrollReplacesPendingSecret(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	authSvc := &AuthService{Store: s}
	tfaSvc := &TwoFactorService{Store: s, Issuer: "Clinica Test"}
	u := registerTestUser(t, authSvc, "ana@clinic.example")

	first, err := tfaSvc.Enroll(ctx, u.ID)
	require.NoError(t, err)

	second, err := tfaSvc.Enroll(ctx, u.ID)
	require.NoError(t, err)
	require.NotEqual(t, first.Secret, second.Secret)

	// Only the latest secret verifies.
	err = tfaSvc.Verify(ctx, u.ID, testCode(t, first.Secret, time.Now()))
	require.ErrorIs(t, err, ErrInvalidTwoFactorCode)
	require.NoError(t, tfaSvc.Verify(ctx, u.ID, testCode(t, second.Secret, time.Now())))
}

func TestLoginWithTwoFactor(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	authSvc := &AuthService{Store: s}
	tfaSvc := &TwoFactorService{Store: s, Issuer: "Clinica Test"}
	u := registerTestUser(t, authSvc, "ana@clinic.example")

	enrollment, err := tfaSvc.Enroll(ctx, u.ID)
	require.NoError(t, err)
	require.NoError(t, tfaSvc.Verify(ctx, u.ID, testCode(t, enrollment.Secret, time.Now())))

	t.Run("password alone asks for the second factor", func(t *testing.T) {
		res, err := authSvc.Login(ctx, "ana@clinic.example", "S3nha!forte", "")
		require.NoError(t, err)
		require.True(t, res.TwoFactorRequired)
	})

	t.Run("password plus current code succeeds", func(t *testing.T) {
		res, err := authSvc.Login(ctx, "ana@clinic.example", "S3nha!forte",
			testCode(t, enrollment.Secret, time.Now()))
		require.NoError(t, err)
		require.False(t, res.TwoFactorRequired)
	})

	t.Run("wrong code is rejected", func(t *testing.T) {
		_, err := authSvc.Login(ctx, "ana@clinic.example", "S3nha!forte", "000000")
		require.ErrorIs(t, err, ErrInvalidTwoFactorCode)
	})

	t.Run("wrong password is reported before the code is considered", func(t *testing.T) {
		_, err := authSvc.Login(ctx, "ana@clinic.example", "wrong-password",
			testCode(t, enrollment.Secret, time.Now()))
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestTOTPSkewWindow(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	authSvc := &AuthService{Store: s}
	tfaSvc := &TwoFactorService{Store: s, Issuer: "Clinica Test"}
	u := registerTestUser(t, authSvc, "ana@clinic.example")

	enrollment, err := tfaSvc.Enroll(ctx, u.ID)
	require.NoError(t, err)
	require.NoError(t, tfaSvc.Verify(ctx, u.ID, testCode(t, enrollment.Secret, time.Now())))

	t.Run("code from two steps ago is still accepted", func(t *testing.T) {
		code := testCode(t, enrollment.Secret, time.Now().Add(-2*totpPeriod*time.Second))
		_, err := authSvc.Login(ctx, "ana@clinic.example", "S3nha!forte", code)
		require.NoError(t, err)
	})

	t.Run("code from three steps ago is rejected", func(t *testing.T) {
		code := testCode(t, enrollment.Secret, time.Now().Add(-3*totpPeriod*time.Second))
		_, err := authSvc.Login(ctx, "ana@clinic.example", "S3nha!forte", code)
		require.ErrorIs(t, err, ErrInvalidTwoFactorCode)
	})
}

func TestTwoFactorDisable(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	authSvc := &AuthService{Store: s}
	tfaSvc := &TwoFactorService{Store: s, Issuer: "Clinica Test"}
	u := registerTestUser(t, authSvc, "ana@clinic.example")

	enrollment, err := tfaSvc.Enroll(ctx, u.ID)
	require.NoError(t, err)
	require.NoError(t, tfaSvc.Verify(ctx, u.ID, testCode(t, enrollment.Secret, time.Now())))

	t.Run("wrong password is refused", func(t *testing.T) {
		err := tfaSvc.Disable(ctx, u.ID, "wrong-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("correct password disables and clears the secret", func(t *testing.T) {
		require.NoError(t, tfaSvc.Disable(ctx, u.ID, "S3nha!forte"))

		stored, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.False(t, stored.TwoFactorEnabled)
		require.Nil(t, stored.TwoFactorSecret)
		require.Equal(t, domain.TwoFactorDisabled, stored.TwoFactorState())

		// Login no longer asks for a code.
		res, err := authSvc.Login(ctx, "ana@clinic.example", "S3nha!forte", "")
		require.NoError(t, err)
		require.False(t, res.TwoFactorRequired)
	})

	t.Run("disabling again is a conflict", func(t *testing.T) {
		err := tfaSvc.Disable(ctx, u.ID, "S3nha!forte")
		require.ErrorIs(t, err, ErrTwoFactorNotEnabled)
	})
}
