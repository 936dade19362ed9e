package http

import (
	"errors"
	"net/http"

	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/internal/auth/service"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/authsdk"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/httpx"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/slogx"
)

// TokenHandler handles refresh and logout.
type TokenHandler struct {
	TokenService *service.TokenService
}

// HandleRefresh handles POST /auth/refresh
//
//	@Summary		Refresh the access token
//	@Description	Exchanges a valid refresh token for a fresh access token. The refresh token itself is returned unchanged and keeps its original expiry.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	authsdk.TokenResponse	"New access token"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Validation failed"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Invalid, revoked or expired refresh token"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/auth/refresh [post].
func (h *TokenHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req refreshRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	pair, err := h.TokenService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRefreshExpired):
			authsdk.ErrTokenExpired.WriteError(w)
		case errors.Is(err, service.ErrInvalidRefresh):
			authsdk.ErrInvalidToken.WriteError(w)
		case errors.Is(err, service.ErrAccountDisabled):
			authsdk.ErrAccountDisabled.WriteError(w)
		default:
			log.Error("refresh failed", "err", err)
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
	})
}

// HandleLogout handles POST /auth/logout
//
//	@Summary		Revoke a session
//	@Description	Deletes the stored refresh token so it can no longer be redeemed. Revoking an unknown or already revoked token still succeeds.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LogoutRequest	true	"Refresh token to revoke"
//	@Success		200		{object}	authsdk.MessageResponse	"Session revoked"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Validation failed"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/auth/logout [post].
func (h *TokenHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req logoutRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.TokenService.Revoke(ctx, req.RefreshToken); err != nil {
		log.Error("logout failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{
		Message: "session revoked",
	})
}
