package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"unicode"

	"github.com/go-playground/validator"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/internal/auth/domain"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/authsdk"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/httpx"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Passwords need at least one upper, one lower, one digit and one
	// symbol. Length is enforced separately with the min tag.
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		var upper, lower, digit, symbol bool
		for _, r := range fl.Field().String() {
			switch {
			case unicode.IsUpper(r):
				upper = true
			case unicode.IsLower(r):
				lower = true
			case unicode.IsDigit(r):
				digit = true
			case unicode.IsPunct(r) || unicode.IsSymbol(r):
				symbol = true
			}
		}
		return upper && lower && digit && symbol
	})

	return v
}

type registerRequest struct {
	Name     string `json:"name"     validate:"required,min=3,max=120"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,strongpassword"`
	Role     string `json:"role"     validate:"required,oneof=admin clinician staff"`
	CRM      string `json:"crm"      validate:"omitempty,min=4,max=20"`
	Phone    string `json:"phone"    validate:"omitempty,min=8,max=20"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	TOTPCode string `json:"totpCode" validate:"omitempty,len=6,numeric"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type twoFactorVerifyRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

type twoFactorDisableRequest struct {
	Password string `json:"password" validate:"required"`
}

// decodeAndValidate parses the JSON body into dst and runs struct
// validation. On failure it writes the error response itself and reports
// false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			httpx.WriteError(w, http.StatusBadRequest,
				authsdk.ErrorCodeValidationFailed,
				"field "+ve[0].Field()+" failed on the "+ve[0].Tag()+" rule")
			return false
		}
		authsdk.ErrInvalidRequest.WriteError(w)
		return false
	}

	return true
}

// optional maps an empty string to nil for nullable columns.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func userResponse(u domain.User) authsdk.UserResponse {
	resp := authsdk.UserResponse{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		Role:             u.Role.String(),
		TwoFactorEnabled: u.TwoFactorEnabled,
		IsActive:         u.IsActive,
		LastLogin:        u.LastLogin,
		CreatedAt:        u.CreatedAt,
	}
	if u.CRM != nil {
		resp.CRM = *u.CRM
	}
	if u.Phone != nil {
		resp.Phone = *u.Phone
	}
	return resp
}
