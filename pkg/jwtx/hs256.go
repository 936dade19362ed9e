package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
)

// Verifier validates an access token and gives back its claims if it's legit.
// Satisfied by *Signer; kept as an interface so middleware can be tested with
// fakes.
type Verifier interface {
	Verify(token string) (AccessClaims, error)
}

// Signer signs and verifies HS256 tokens with a single shared secret. The
// service holds two of these: one for access tokens, one for refresh tokens,
// each with an independent secret so one class of token can never pass as the
// other.
type Signer struct {
	secret []byte
	issuer string
}

func NewSigner(secret, issuer string) *Signer {
	return &Signer{secret: []byte(secret), issuer: issuer}
}

// Sign produces a compact HS256 JWT for the given claims.
func (s *Signer) Sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify implements Verifier for access tokens.
func (s *Signer) Verify(raw string) (AccessClaims, error) {
	var claims AccessClaims
	if err := s.parse(raw, &claims); err != nil {
		return AccessClaims{}, err
	}
	return claims, nil
}

// VerifyRefresh validates a refresh token's signature and registered claims.
func (s *Signer) VerifyRefresh(raw string) (RefreshClaims, error) {
	var claims RefreshClaims
	if err := s.parse(raw, &claims); err != nil {
		return RefreshClaims{}, err
	}
	return claims, nil
}

func (s *Signer) parse(raw string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return mapParseError(err)
	}
	return nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuer
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	default:
		return ErrMalformed
	}
}
