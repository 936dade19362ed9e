package http

import (
	"errors"
	"net/http"

	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/internal/auth/service"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/internal/auth/store"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/authsdk"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/httpx"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/slogx"
)

// MeHandler returns the authenticated user's profile.
type MeHandler struct {
	UserService *service.UserService
}

// ServeHTTP handles GET /auth/me
//
//	@Summary		Current user profile
//	@Description	Returns the profile of the user identified by the bearer access token. The password hash and TOTP secret are never included.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.UserResponse	"Profile"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		500	{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/auth/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok || userID == "" {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	user, err := h.UserService.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// The token outlived its account; treat it as no longer valid.
			authsdk.ErrInvalidToken.WriteError(w)
			return
		}
		log.Warn("failed to load user", "user_id", userID, "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userResponse(user))
}
