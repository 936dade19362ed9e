package domain

import "time"

// TokenPair is what login and refresh return: the short-lived access token
// and the long-lived refresh token, both signed JWTs.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType,omitempty"` // typically "Bearer"
	ExpiresIn    int64  `json:"expiresIn"`           // seconds until access token expiry
}

// RefreshToken models the stored refresh token record in the DB. A row is
// the server-side half of an active session; deleting it revokes the
// session regardless of the JWT's own expiry.
type RefreshToken struct {
	ID        string
	Token     string // the signed JWT, stored verbatim for exact lookup
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the stored record has passed its expiry.
func (rt *RefreshToken) Expired(now time.Time) bool {
	return now.After(rt.ExpiresAt)
}
