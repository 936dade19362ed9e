package auth_test

import (
	"net/http"
	"testing"

	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestLoginAndRefresh tests the session flow:
// 1. Register and login
// 2. Refresh the access token
// 3. Verify the refresh token is NOT rotated and keeps working
func TestLoginAndRefresh(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	registerClinician(t, client)

	session := performLogin(t, client)
	refreshToken := session.RefreshToken()

	tokenResp, err := client.Refresh(t.Context(), refreshToken)
	require.NoError(t, err)
	assertTokenResponse(t, tokenResp)
	require.Equal(t, refreshToken, tokenResp.RefreshToken, "Refresh token should not rotate")

	// The same refresh token can be redeemed again
	tokenResp2, err := client.Refresh(t.Context(), refreshToken)
	require.NoError(t, err)
	assertTokenResponse(t, tokenResp2)

	// The freshly issued access token is accepted
	fresh := client.NewSessionFromTokens(tokenResp2.AccessToken, tokenResp2.RefreshToken, tokenResp2.ExpiresIn)
	profile, err := fresh.Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, clinicianEmail, profile.Email)

	t.Logf("Refresh succeeded twice with the same token")
}

// TestRefreshInvalidToken verifies garbage and foreign tokens are rejected.
func TestRefreshInvalidToken(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	registerClinician(t, client)
	session := performLogin(t, client)

	t.Run("garbage token", func(t *testing.T) {
		_, err := client.Refresh(t.Context(), "not-a-jwt")
		assertAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken)
	})

	t.Run("access token as refresh token", func(t *testing.T) {
		_, err := client.Refresh(t.Context(), session.AccessToken())
		assertAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken)
	})
}

// TestLogoutRevokesSession tests the logout flow:
// 1. Logout deletes the stored refresh token
// 2. The refresh token can no longer be redeemed
// 3. Logging out again still succeeds
func TestLogoutRevokesSession(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	registerClinician(t, client)

	session := performLogin(t, client)
	refreshToken := session.RefreshToken()

	err := session.Logout(t.Context())
	require.NoError(t, err)

	_, err = client.Refresh(t.Context(), refreshToken)
	assertAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken)

	// Logout is idempotent; the access token is still valid until it expires
	err = session.Logout(t.Context())
	require.NoError(t, err, "Repeated logout should still succeed")

	t.Logf("Session revoked and logout confirmed idempotent")
}

// TestConcurrentSessions verifies that each login gets its own refresh token
// and revoking one session leaves the others alone.
func TestConcurrentSessions(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	registerClinician(t, client)

	first := performLogin(t, client)
	second := performLogin(t, client)
	require.NotEqual(t, first.RefreshToken(), second.RefreshToken(), "Each login should mint its own refresh token")

	require.NoError(t, first.Logout(t.Context()))

	_, err := client.Refresh(t.Context(), first.RefreshToken())
	assertAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken)

	tokenResp, err := client.Refresh(t.Context(), second.RefreshToken())
	require.NoError(t, err)
	assertTokenResponse(t, tokenResp)

	t.Logf("Second session survived revocation of the first")
}
