package http

import (
	"errors"
	"net/http"

	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/internal/auth/service"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/authsdk"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/httpx"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/slogx"
)

// LoginHandler handles credential verification and token issuance.
type LoginHandler struct {
	AuthService  *service.AuthService
	TokenService *service.TokenService
}

// ServeHTTP handles POST /auth/login
//
//	@Summary		Authenticate and obtain tokens
//	@Description	Verifies email and password and returns an access/refresh token pair. When the account has 2FA enabled and no code is supplied, responds 200 with requires2FA=true instead of tokens.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.LoginResponse	"Tokens, or requires2FA"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Validation failed"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Invalid credentials, disabled account or bad TOTP code"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.AuthService.Login(ctx, req.Email, req.Password, req.TOTPCode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			authsdk.ErrInvalidCredentials.WriteError(w)
		case errors.Is(err, service.ErrAccountDisabled):
			authsdk.ErrAccountDisabled.WriteError(w)
		case errors.Is(err, service.ErrInvalidTwoFactorCode):
			httpx.WriteError(w, http.StatusUnauthorized,
				authsdk.ErrorCodeInvalidCode, "invalid two-factor code")
		default:
			log.Error("login failed", "err", err)
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	if result.TwoFactorRequired {
		httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{Requires2FA: true})
		return
	}

	pair, err := h.TokenService.IssuePair(ctx, result.User)
	if err != nil {
		log.Error("token issuance failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	user := userResponse(result.User)
	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
		User:         &user,
	})
}
