package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTLs. These are the values used when the corresponding
// environment variables are unset.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// AccessClaims are the claims embedded in access tokens. The subject is the
// user id; email and role ride along so resource handlers can authorize
// without a user lookup.
type AccessClaims struct {
	jwt.RegisteredClaims

	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// RefreshClaims carry the subject only. Refresh tokens are additionally
// persisted server-side, so nothing else belongs in them.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// NewAccessClaims builds minimally-correct access-token claims.
func NewAccessClaims(
	subject, email, role string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) AccessClaims {
	return AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Email: email,
		Role:  role,
	}
}

// NewRefreshClaims builds refresh-token claims for the given user id.
func NewRefreshClaims(subject string, ttl time.Duration, issuer string, now time.Time) RefreshClaims {
	return RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
