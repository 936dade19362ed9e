package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the authentication service. It provides the
// unauthenticated operations and can create authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new auth service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Register creates a new account. The account is signed in immediately; the
// response carries the created user and a token pair, which can be turned
// into a Session with NewSessionFromTokens.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/register", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var regResp RegisterResponse
	if err := decodeJSON(resp, &regResp, http.StatusCreated); err != nil {
		return nil, err
	}
	return &regResp, nil
}

// Login authenticates with email and password (plus a TOTP code when the
// account has 2FA enabled). On success it returns an authenticated Session.
// When the server answers that a second factor is required, it returns
// ErrTwoFactorRequired; retry with the TOTP code filled in.
func (c *SDKClient) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	loginResp, err := c.LoginRaw(ctx, req)
	if err != nil {
		return nil, err
	}
	if loginResp.Requires2FA {
		return nil, ErrTwoFactorRequired
	}

	return newSession(c, loginResp.AccessToken, loginResp.RefreshToken, loginResp.ExpiresIn), nil
}

// LoginRaw performs the login call and returns the raw response, letting the
// caller inspect Requires2FA and the user payload directly.
func (c *SDKClient) LoginRaw(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var loginResp LoginResponse
	if err := decodeJSON(resp, &loginResp, http.StatusOK); err != nil {
		return nil, err
	}
	return &loginResp, nil
}

// Refresh exchanges a refresh token for a fresh access token.
func (c *SDKClient) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	body, err := json.Marshal(RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/refresh", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp, http.StatusOK); err != nil {
		return nil, err
	}
	return &tokenResp, nil
}

// NewSessionFromTokens creates an authenticated session from existing tokens
// (e.g., restored from storage). The session still auto-refreshes when the
// access token expires.
func (c *SDKClient) NewSessionFromTokens(accessToken, refreshToken string, expiresIn int64) *Session {
	return newSession(c, accessToken, refreshToken, expiresIn)
}

// Livez checks the service liveness endpoint.
func (c *SDKClient) Livez(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/livez", nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}

// Readyz checks the service readiness endpoint.
func (c *SDKClient) Readyz(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/readyz", nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}
