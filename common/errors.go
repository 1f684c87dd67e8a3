package common

import (
	"encoding/json"
	"errors"
	"go-shop-api/logger"
	"net/http"

	"github.com/sirupsen/logrus"
)

// AppError is the JSON error envelope every failing endpoint returns.
type AppError struct {
	Success bool         `json:"success"`
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"errors,omitempty"`
	Err     error        `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewValidationAppError turns a *ValidationError into a 400 carrying the
// field-level detail. Any other error becomes a plain 400.
func NewValidationAppError(err error) *AppError {
	appErr := NewAppError(http.StatusBadRequest, "Validation failed.", nil)
	var ve *ValidationError
	if errors.As(err, &ve) {
		appErr.Fields = ve.Fields
	}
	return appErr
}

func (e *AppError) Send(w http.ResponseWriter) {
	if e.Err != nil {
		logger.Log.WithFields(logrus.Fields{
			"status_code":    e.Code,
			"internal_error": e.Err.Error(),
		}).Error(e.Message)
	}

	WriteJSON(w, e.Code, e)
}

// WriteJSON writes payload with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.WithError(err).Warn("Failed to encode response body")
	}
}
