package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/internal/auth/domain"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/internal/auth/service"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/internal/auth/store"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/internal/auth/store/drivers/sqlite"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/authsdk"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/cryptox"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/httpx"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "auth-http-test")
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

func newTestTokenService(s store.Store) *service.TokenService {
	return &service.TokenService{
		Store:         s,
		AccessSigner:  jwtx.NewSigner("test-access-secret", "test-issuer"),
		RefreshSigner: jwtx.NewSigner("test-refresh-secret", "test-issuer"),
		Issuer:        "test-issuer",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	}
}

// requestWithUser mimics the authn middleware by placing the user id on the
// request context.
func requestWithUser(method, target, body, userID string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(context.WithValue(req.Context(), httpx.CtxKeyUserID, userID))
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) authsdk.ErrorResponse {
	t.Helper()

	var er authsdk.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &er))
	return er
}

func TestRegisterIssuesTokenPair(t *testing.T) {
	s := newTestStore(t)
	h := &RegisterHandler{
		AuthService:  &service.AuthService{Store: s},
		TokenService: newTestTokenService(s),
	}

	body := `{"name":"Dr. Ana Souza","email":"ana@clinic.example",` +
		`"password":"S3nha!forte","role":"clinician","crm":"CRM/PE 12345"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp authsdk.RegisterResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken, "registration must sign the account in")
	require.NotEmpty(t, resp.RefreshToken)
	require.Equal(t, "Bearer", resp.TokenType)
	require.Positive(t, resp.ExpiresIn)
	require.Equal(t, "ana@clinic.example", resp.User.Email)
	require.NotEmpty(t, resp.User.ID)

	// The refresh token is a revocable session from the start.
	rt, err := s.RefreshTokens().GetRefreshTokenByValue(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, resp.User.ID, rt.UserID)
}

func TestRegisterNameLengthBoundary(t *testing.T) {
	s := newTestStore(t)
	h := &RegisterHandler{
		AuthService:  &service.AuthService{Store: s},
		TokenService: newTestTokenService(s),
	}

	post := func(name, email string) *httptest.ResponseRecorder {
		body := `{"name":"` + name + `","email":"` + email + `",` +
			`"password":"S3nha!forte","role":"staff"}`
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body)))
		return rec
	}

	rec := post("Ab", "short@clinic.example")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, authsdk.ErrorCodeValidationFailed, decodeErrorBody(t, rec).Error)

	rec = post("Ana", "ana@clinic.example")
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestLogoutConfirmsWithMessage(t *testing.T) {
	s := newTestStore(t)
	h := &TokenHandler{TokenService: newTestTokenService(s)}

	// Revoking a token that was never issued is still a success.
	rec := httptest.NewRecorder()
	h.HandleLogout(rec, httptest.NewRequest(http.MethodPost, "/auth/logout",
		strings.NewReader(`{"refreshToken":"never-issued"}`)))

	require.Equal(t, http.StatusOK, rec.Code)

	var msg authsdk.MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	require.Equal(t, "session revoked", msg.Message)
}

func TestTwoFactorVerifyConfirmsWithMessage(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	authSvc := &service.AuthService{Store: s}
	twoFactorSvc := &service.TwoFactorService{Store: s, Issuer: "test-issuer"}
	h := &TwoFactorHandler{TwoFactorService: twoFactorSvc}

	u, err := authSvc.Register(ctx, service.RegisterParams{
		Name:     "Dr. Ana Souza",
		Email:    "ana@clinic.example",
		Password: "S3nha!forte",
		Role:     domain.RoleClinician,
	})
	require.NoError(t, err)

	enrollment, err := twoFactorSvc.Enroll(ctx, u.ID)
	require.NoError(t, err)

	code, err := totp.GenerateCode(enrollment.Secret, time.Now())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.HandleVerify(rec, requestWithUser(http.MethodPost, "/auth/2fa/verify",
		`{"code":"`+code+`"}`, u.ID))

	require.Equal(t, http.StatusOK, rec.Code)

	var msg authsdk.MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	require.Equal(t, "two-factor authentication enabled", msg.Message)

	stored, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, stored.TwoFactorEnabled)
}

func TestTwoFactorDisableConfirmsWithMessage(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	authSvc := &service.AuthService{Store: s}
	twoFactorSvc := &service.TwoFactorService{Store: s, Issuer: "test-issuer"}
	h := &TwoFactorHandler{TwoFactorService: twoFactorSvc}

	u, err := authSvc.Register(ctx, service.RegisterParams{
		Name:     "Dr. Ana Souza",
		Email:    "ana@clinic.example",
		Password: "S3nha!forte",
		Role:     domain.RoleClinician,
	})
	require.NoError(t, err)

	enrollment, err := twoFactorSvc.Enroll(ctx, u.ID)
	require.NoError(t, err)
	code, err := totp.GenerateCode(enrollment.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, twoFactorSvc.Verify(ctx, u.ID, code))

	rec := httptest.NewRecorder()
	h.HandleDisable(rec, requestWithUser(http.MethodPost, "/auth/2fa/disable",
		`{"password":"S3nha!forte"}`, u.ID))

	require.Equal(t, http.StatusOK, rec.Code)

	var msg authsdk.MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	require.Equal(t, "two-factor authentication disabled", msg.Message)
}

func TestMeRejectsTokenForDeletedUser(t *testing.T) {
	s := newTestStore(t)
	h := &MeHandler{UserService: &service.UserService{Store: s}}

	// A verified token whose account no longer exists must read as an invalid
	// token, not as a server error.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestWithUser(http.MethodGet, "/auth/me", "",
		"01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV"))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, authsdk.ErrorCodeInvalidToken, decodeErrorBody(t, rec).Error)
}
