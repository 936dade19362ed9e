package authsdk

import "time"

// ErrorResponse is the standard error envelope returned by every endpoint.
type ErrorResponse struct {
	// Error is the machine-readable error code (e.g., "invalid_credentials")
	Error string `json:"error"`

	// Message is a human-readable description of the error
	Message string `json:"message"`
}

// ============================================================================
// Registration
// ============================================================================

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"` // admin, clinician or staff

	// CRM is the professional registration number; required for clinicians.
	CRM   string `json:"crm,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// RegisterResponse is returned from POST /auth/register. The new account is
// signed in straight away, so the response carries a token pair alongside
// the created user.
type RegisterResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	TokenType    string       `json:"tokenType"`
	ExpiresIn    int64        `json:"expiresIn"`
}

// UserResponse is the public view of an account. The password hash and the
// TOTP secret never leave the server.
type UserResponse struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Role             string     `json:"role"`
	CRM              string     `json:"crm,omitempty"`
	Phone            string     `json:"phone,omitempty"`
	TwoFactorEnabled bool       `json:"twoFactorEnabled"`
	IsActive         bool       `json:"isActive"`
	LastLogin        *time.Time `json:"lastLogin,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// ============================================================================
// Login / tokens
// ============================================================================

// LoginRequest is the body for POST /auth/login. TOTPCode is only needed
// when the account has two-factor authentication enabled.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totpCode,omitempty"`
}

// LoginResponse is returned from POST /auth/login. When the account requires
// a second factor and no code was supplied, only Requires2FA is set and the
// client should retry with a TOTP code.
type LoginResponse struct {
	Requires2FA bool `json:"requires2FA,omitempty"`

	AccessToken  string        `json:"accessToken,omitempty"`
	RefreshToken string        `json:"refreshToken,omitempty"`
	TokenType    string        `json:"tokenType,omitempty"`
	ExpiresIn    int64         `json:"expiresIn,omitempty"`
	User         *UserResponse `json:"user,omitempty"`
}

// RefreshRequest is the body for POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenResponse is returned from POST /auth/refresh.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// LogoutRequest is the body for POST /auth/logout.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// MessageResponse is the confirmation body returned by endpoints that have no
// other payload, such as logout and the 2FA verify/disable operations.
type MessageResponse struct {
	Message string `json:"message"`
}

// ============================================================================
// Two-factor authentication
// ============================================================================

// TwoFactorEnrollResponse is returned from POST /auth/2fa/enable. The secret
// and otpauth URL are shown exactly once.
type TwoFactorEnrollResponse struct {
	Secret  string `json:"secret"`
	QRCode  string `json:"qrCode"` // otpauth:// URL
	Issuer  string `json:"issuer"`
	Account string `json:"account"`
}

// TwoFactorVerifyRequest is the body for POST /auth/2fa/verify.
type TwoFactorVerifyRequest struct {
	Code string `json:"code"`
}

// TwoFactorDisableRequest is the body for POST /auth/2fa/disable. The
// password is required again so a hijacked access token cannot weaken the
// account on its own.
type TwoFactorDisableRequest struct {
	Password string `json:"password"`
}

// ============================================================================
// Health
// ============================================================================

// HealthChecks reports the status of each critical dependency.
type HealthChecks struct {
	Database string `json:"database"`
}

// HealthResponse is returned from /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
