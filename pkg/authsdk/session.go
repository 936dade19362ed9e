package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Session represents an authenticated session with automatic token refresh.
// All Session methods handle access token expiration transparently.
type Session struct {
	client *SDKClient

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

// newSession creates a session from freshly issued tokens.
func newSession(client *SDKClient, accessToken, refreshToken string, expiresIn int64) *Session {
	expiresAt := time.Now().Add(time.Duration(expiresIn) * time.Second)

	// Subtract 30 seconds buffer to refresh before actual expiry
	expiresAt = expiresAt.Add(-30 * time.Second)

	return &Session{
		client:       client,
		accessToken:  accessToken,
		refreshToken: refreshToken,
		expiresAt:    expiresAt,
	}
}

// AccessToken returns the session's current access token. It may already be
// expired; Session methods refresh it on demand.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the session's current refresh token, e.g. so it can
// be persisted between runs.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// getValidToken returns a valid access token, refreshing it if expired.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock (another goroutine may have refreshed)
	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}

	if s.refreshToken == "" {
		return "", fmt.Errorf("access token expired and no refresh token available")
	}

	tokenResp, err := s.client.Refresh(ctx, s.refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}

	s.accessToken = tokenResp.AccessToken
	s.refreshToken = tokenResp.RefreshToken
	s.expiresAt = time.Now().
		Add(time.Duration(tokenResp.ExpiresIn) * time.Second).
		Add(-30 * time.Second)

	return s.accessToken, nil
}

// Logout revokes the session's refresh token. The session is unusable for
// refresh afterwards, though the access token stays valid until it expires.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.RLock()
	refreshToken := s.refreshToken
	s.mu.RUnlock()

	body, err := json.Marshal(LogoutRequest{RefreshToken: refreshToken})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/auth/logout", bytes.NewReader(body))
	if err != nil {
		return err
	}
	return checkStatusMessage(resp)
}

// Me returns the profile of the authenticated user.
func (s *Session) Me(ctx context.Context) (*UserResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/auth/me", nil)
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// TwoFactorEnroll starts TOTP enrollment and returns the secret and otpauth
// URL. 2FA is not active until TwoFactorVerify confirms a code.
func (s *Session) TwoFactorEnroll(ctx context.Context) (*TwoFactorEnrollResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/auth/2fa/enable", nil)
	if err != nil {
		return nil, err
	}

	var enrollment TwoFactorEnrollResponse
	if err := decodeJSON(resp, &enrollment, http.StatusOK); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// TwoFactorVerify confirms a pending enrollment with a current TOTP code.
func (s *Session) TwoFactorVerify(ctx context.Context, code string) error {
	body, err := json.Marshal(TwoFactorVerifyRequest{Code: code})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/auth/2fa/verify", bytes.NewReader(body))
	if err != nil {
		return err
	}
	return checkStatusMessage(resp)
}

// TwoFactorDisable turns 2FA off. The account password must be supplied
// again.
func (s *Session) TwoFactorDisable(ctx context.Context, password string) error {
	body, err := json.Marshal(TwoFactorDisableRequest{Password: password})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/auth/2fa/disable", bytes.NewReader(body))
	if err != nil {
		return err
	}
	return checkStatusMessage(resp)
}
