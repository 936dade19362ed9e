package http

import (
	"errors"
	"net/http"

	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/internal/auth/domain"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/internal/auth/service"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/authsdk"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/httpx"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/slogx"
)

// RegisterHandler handles account creation.
type RegisterHandler struct {
	AuthService  *service.AuthService
	TokenService *service.TokenService
}

// ServeHTTP handles POST /auth/register
//
//	@Summary		Register a new account
//	@Description	Creates a user account with the given role and signs it in immediately, returning the user together with an access/refresh token pair. Emails are case-insensitive and must be unique; the CRM registration number, when given, must be unique too.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest		true	"Account details"
//	@Success		201		{object}	authsdk.RegisterResponse	"Created account and token pair"
//	@Failure		400		{object}	authsdk.ErrorResponse		"Validation failed"
//	@Failure		409		{object}	authsdk.ErrorResponse		"Email or CRM already registered"
//	@Failure		500		{object}	authsdk.ErrorResponse		"Internal server error"
//	@Router			/auth/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req registerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.AuthService.Register(ctx, service.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
		CRM:      optional(req.CRM),
		Phone:    optional(req.Phone),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			httpx.WriteError(w, http.StatusConflict,
				authsdk.ErrorCodeConflict, "email is already registered")
		case errors.Is(err, service.ErrCRMTaken):
			httpx.WriteError(w, http.StatusConflict,
				authsdk.ErrorCodeConflict, "CRM is already registered")
		case errors.Is(err, service.ErrInvalidRole):
			httpx.WriteError(w, http.StatusBadRequest,
				authsdk.ErrorCodeValidationFailed, "unknown role")
		default:
			log.Error("register failed", "err", err)
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	pair, err := h.TokenService.IssuePair(ctx, user)
	if err != nil {
		log.Error("token issuance failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.RegisterResponse{
		User:         userResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
	})
}
