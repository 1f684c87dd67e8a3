package handler

import (
	"errors"
	"go-shop-api/common"
	"go-shop-api/service"
	"net/http"
)

func ErrorHandlingMiddleware(next func(http.ResponseWriter, *http.Request) *common.AppError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := next(w, r); err != nil {
			err.Send(w)
		}
	}
}

// Fixed user-facing messages. They never reveal whether an email exists or
// why a token was rejected.
const (
	msgInternal           = "Something went wrong. Please try again later."
	msgDuplicateAccount   = "A user with this email already exists. Please log in or use a different email."
	msgInvalidCredentials = "Invalid credentials"
	msgMissingRefresh     = "Refresh token is missing. Please log in again."
	msgRevokedRefresh     = "Invalid refresh token. Please log in again."
	msgInvalidRefresh     = "Invalid or expired refresh token. Please log in again."
	msgInvalidAccess      = "Invalid or expired token"
)

// mapServiceError translates service errors into HTTP errors. Anything
// unrecognised, store failures included, becomes an opaque 500.
func mapServiceError(err error) *common.AppError {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		return common.NewValidationAppError(err)
	case errors.Is(err, service.ErrDuplicateAccount):
		return common.NewAppError(http.StatusConflict, msgDuplicateAccount, nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		return common.NewAppError(http.StatusUnauthorized, msgInvalidCredentials, nil)
	case errors.Is(err, service.ErrMissingToken):
		return common.NewAppError(http.StatusUnauthorized, msgMissingRefresh, nil)
	case errors.Is(err, service.ErrRevokedToken):
		return common.NewAppError(http.StatusForbidden, msgRevokedRefresh, nil)
	case errors.Is(err, service.ErrExpiredOrInvalidToken):
		return common.NewAppError(http.StatusForbidden, msgInvalidRefresh, nil)
	case errors.Is(err, service.ErrInvalidOrExpiredToken):
		return common.NewAppError(http.StatusUnauthorized, msgInvalidAccess, nil)
	case errors.Is(err, service.ErrUserNotFound):
		return common.NewAppError(http.StatusNotFound, "User not found", nil)
	case errors.Is(err, service.ErrProductNotFound):
		return common.NewAppError(http.StatusNotFound, "Product not found", nil)
	case errors.Is(err, service.ErrInvalidRole):
		return common.NewAppError(http.StatusBadRequest, err.Error(), nil)
	default:
		return common.NewAppError(http.StatusInternalServerError, msgInternal, err)
	}
}
