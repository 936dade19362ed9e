package auth_test

import (
	"net/http"
	"testing"

	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestRegisterAndLogin tests the basic account flow:
// 1. Register a clinician account and use the issued tokens directly
// 2. Login with the new credentials
// 3. Fetch the profile with the issued access token
func TestRegisterAndLogin(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)

	reg := registerClinician(t, client)
	user := reg.User

	require.Equal(t, clinicianName, user.Name)
	require.Equal(t, clinicianEmail, user.Email)
	require.Equal(t, "clinician", user.Role)
	require.Equal(t, clinicianCRM, user.CRM)
	require.False(t, user.TwoFactorEnabled, "2FA should start disabled")
	require.True(t, user.IsActive, "New accounts should be active")
	require.Equal(t, "Bearer", reg.TokenType)

	// The token pair issued at registration works without a separate login.
	regSession := client.NewSessionFromTokens(reg.AccessToken, reg.RefreshToken, reg.ExpiresIn)
	regProfile, err := regSession.Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, user.ID, regProfile.ID)

	t.Logf("Registered user %s", user.ID)

	session := performLogin(t, client)
	require.NotEmpty(t, session.AccessToken())
	require.NotEmpty(t, session.RefreshToken())

	profile, err := session.Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, user.ID, profile.ID)
	require.Equal(t, clinicianEmail, profile.Email)
	require.NotNil(t, profile.LastLogin, "Login should record last_login")

	t.Logf("Profile fetched for %s", profile.Email)
}

// TestRegisterDuplicateEmail verifies the email uniqueness conflict, including
// case-insensitive matching.
func TestRegisterDuplicateEmail(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	registerClinician(t, client)

	_, err := client.Register(t.Context(), authsdk.RegisterRequest{
		Name:     "Other Person",
		Email:    "Ana.Souza@Clinica.Example",
		Password: "Outra!senha9",
		Role:     "staff",
	})
	assertAPIError(t, err, http.StatusConflict, authsdk.ErrorCodeConflict)

	t.Logf("Duplicate email correctly rejected")
}

// TestRegisterDuplicateCRM verifies the CRM uniqueness conflict.
func TestRegisterDuplicateCRM(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	registerClinician(t, client)

	_, err := client.Register(t.Context(), authsdk.RegisterRequest{
		Name:     "Dr. Carlos Lima",
		Email:    "carlos.lima@clinica.example",
		Password: "Outra!senha9",
		Role:     "clinician",
		CRM:      clinicianCRM,
	})
	assertAPIError(t, err, http.StatusConflict, authsdk.ErrorCodeConflict)

	t.Logf("Duplicate CRM correctly rejected")
}

// TestRegisterValidation verifies weak passwords and unknown roles are
// rejected before any account is created.
func TestRegisterValidation(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)

	t.Run("weak password", func(t *testing.T) {
		_, err := client.Register(t.Context(), authsdk.RegisterRequest{
			Name:     "Weak Password",
			Email:    "weak@clinica.example",
			Password: "alllowercase",
			Role:     "staff",
		})
		assertAPIError(t, err, http.StatusBadRequest, authsdk.ErrorCodeValidationFailed)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := client.Register(t.Context(), authsdk.RegisterRequest{
			Name:     "Bad Role",
			Email:    "badrole@clinica.example",
			Password: clinicianPassword,
			Role:     "superuser",
		})
		assertAPIError(t, err, http.StatusBadRequest, authsdk.ErrorCodeValidationFailed)
	})
}

// TestLoginWrongPassword verifies wrong passwords and unknown emails produce
// the same invalid_credentials error, so accounts cannot be enumerated.
func TestLoginWrongPassword(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	registerClinician(t, client)

	_, err := client.Login(t.Context(), authsdk.LoginRequest{
		Email:    clinicianEmail,
		Password: "Wrong!pass99",
	})
	assertAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials)

	_, err = client.Login(t.Context(), authsdk.LoginRequest{
		Email:    "nobody@clinica.example",
		Password: "Wrong!pass99",
	})
	assertAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials)

	t.Logf("Both failures returned the same error code")
}
