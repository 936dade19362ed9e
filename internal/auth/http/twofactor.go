package http

import (
	"errors"
	"net/http"

	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/internal/auth/service"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/authsdk"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/httpx"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/slogx"
)

// TwoFactorHandler handles the TOTP enrollment endpoints.
type TwoFactorHandler struct {
	TwoFactorService *service.TwoFactorService
}

// HandleEnable handles POST /auth/2fa/enable
//
//	@Summary		Start TOTP enrollment
//	@Description	Generates a TOTP secret for the authenticated user and returns it with an otpauth URL. 2FA stays off until a code is verified. Re-enrolling while a previous attempt is pending replaces the old secret.
//	@Tags			TwoFactor
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.TwoFactorEnrollResponse	"Secret and otpauth URL (shown once)"
//	@Failure		401	{object}	authsdk.ErrorResponse			"Invalid or missing access token"
//	@Failure		409	{object}	authsdk.ErrorResponse			"2FA already enabled"
//	@Failure		500	{object}	authsdk.ErrorResponse			"Internal server error"
//	@Router			/auth/2fa/enable [post].
func (h *TwoFactorHandler) HandleEnable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok || userID == "" {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	enrollment, err := h.TwoFactorService.Enroll(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrTwoFactorAlreadyOn) {
			httpx.WriteError(w, http.StatusConflict,
				authsdk.ErrorCodeConflict, "two-factor authentication is already enabled")
			return
		}
		log.Error("2FA enrollment failed", "user_id", userID, "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.TwoFactorEnrollResponse{
		Secret:  enrollment.Secret,
		QRCode:  enrollment.QRCode,
		Issuer:  enrollment.Issuer,
		Account: enrollment.Account,
	})
}

// HandleVerify handles POST /auth/2fa/verify
//
//	@Summary		Confirm TOTP enrollment
//	@Description	Verifies a current TOTP code and turns 2FA on for the account.
//	@Tags			TwoFactor
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.TwoFactorVerifyRequest	true	"Six-digit TOTP code"
//	@Success		200		{object}	authsdk.MessageResponse			"2FA enabled"
//	@Failure		400		{object}	authsdk.ErrorResponse	"No pending enrollment or malformed request"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Invalid code or missing access token"
//	@Failure		409		{object}	authsdk.ErrorResponse	"2FA already enabled"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/auth/2fa/verify [post].
func (h *TwoFactorHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok || userID == "" {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req twoFactorVerifyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.TwoFactorService.Verify(ctx, userID, req.Code); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTwoFactorCode):
			httpx.WriteError(w, http.StatusUnauthorized,
				authsdk.ErrorCodeInvalidCode, "invalid two-factor code")
		case errors.Is(err, service.ErrTwoFactorNotEnrolled):
			httpx.WriteError(w, http.StatusBadRequest,
				authsdk.ErrorCodeInvalidRequest, "no pending enrollment; call enable first")
		case errors.Is(err, service.ErrTwoFactorAlreadyOn):
			httpx.WriteError(w, http.StatusConflict,
				authsdk.ErrorCodeConflict, "two-factor authentication is already enabled")
		default:
			log.Error("2FA verification failed", "user_id", userID, "err", err)
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{
		Message: "two-factor authentication enabled",
	})
}

// HandleDisable handles POST /auth/2fa/disable
//
//	@Summary		Disable 2FA
//	@Description	Turns 2FA off and discards the secret. The account password must be supplied again; a bearer token alone is not enough.
//	@Tags			TwoFactor
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.TwoFactorDisableRequest	true	"Account password"
//	@Success		200		{object}	authsdk.MessageResponse			"2FA disabled"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Malformed request"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Wrong password or missing access token"
//	@Failure		409		{object}	authsdk.ErrorResponse	"2FA not enabled"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/auth/2fa/disable [post].
func (h *TwoFactorHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok || userID == "" {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req twoFactorDisableRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.TwoFactorService.Disable(ctx, userID, req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			authsdk.ErrInvalidCredentials.WriteError(w)
		case errors.Is(err, service.ErrTwoFactorNotEnabled):
			httpx.WriteError(w, http.StatusConflict,
				authsdk.ErrorCodeConflict, "two-factor authentication is not enabled")
		default:
			log.Error("2FA disable failed", "user_id", userID, "err", err)
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{
		Message: "two-factor authentication disabled",
	})
}
