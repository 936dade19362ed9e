package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/httpx"
)

// ErrTwoFactorRequired is returned by Login when the account has 2FA enabled
// and no TOTP code was supplied. Retry the login with the code filled in.
var ErrTwoFactorRequired = errors.New("authsdk: two-factor code required")

// Error codes shared between the server handlers and the SDK.
const (
	ErrorCodeInvalidRequest     = "invalid_request"
	ErrorCodeValidationFailed   = "validation_failed"
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeAccountDisabled    = "account_disabled"
	ErrorCodeInvalidToken       = "invalid_token"
	ErrorCodeTokenExpired       = "token_expired"
	ErrorCodeConflict           = "conflict"
	ErrorCodeInvalidCode        = "invalid_code"
	ErrorCodeRateLimited        = "rate_limit_exceeded"
	ErrorCodeServerError        = "server_error"
)

// APIError is the error envelope used by every endpoint. It implements the
// error interface so the SDK can return it directly, and it knows how to
// write itself as an HTTP response so handlers can reuse the same values.
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the machine-readable error code
	Code string `json:"error"`

	// Message is a human-readable description
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, map[string]string{
		"error":   e.Code,
		"message": e.Message,
	})
}

var (
	ErrInvalidRequest = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInvalidRequest,
		Message:    "the request is malformed or missing required parameters",
	}

	ErrInvalidCredentials = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeInvalidCredentials,
		Message:    "invalid email or password",
	}

	ErrAccountDisabled = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeAccountDisabled,
		Message:    "this account has been deactivated",
	}

	ErrInvalidToken = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeInvalidToken,
		Message:    "invalid or missing token",
	}

	ErrTokenExpired = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeTokenExpired,
		Message:    "token has expired",
	}

	ErrServerError = &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       ErrorCodeServerError,
		Message:    "an unexpected error occurred",
	}
)

// parseErrorResponse converts a non-2xx HTTP response body into an APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var er ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       er.Error,
			Message:    er.Message,
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       ErrorCodeServerError,
		Message:    fmt.Sprintf("unexpected status %d", resp.StatusCode),
	}
}
