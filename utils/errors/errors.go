package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// APIError is the JSON error body every endpoint returns.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Details string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAPIError(code, message string, status int, details ...string) *APIError {
	err := &APIError{
		Code:    code,
		Message: message,
		Status:  status,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

var (
	ErrInvalidInput  = NewAPIError("INVALID_INPUT", "Invalid request data", http.StatusBadRequest)
	ErrUnauthorized  = NewAPIError("UNAUTHORIZED", "Authentication required", http.StatusUnauthorized)
	ErrNotFound      = NewAPIError("NOT_FOUND", "Resource not found", http.StatusNotFound)
	ErrInternal      = NewAPIError("INTERNAL_SERVER_ERROR", "Internal server error", http.StatusInternalServerError)
	ErrConflict      = NewAPIError("CONFLICT", "Resource conflict", http.StatusConflict)
	ErrLoading       = NewAPIError("LOADING", "Data is still loading", http.StatusServiceUnavailable)
	ErrMissingDevice = NewAPIError("MISSING_DEVICE_ID", "X-Device-ID header is required", http.StatusBadRequest)
)

// Wrap returns err unchanged when it already is (or wraps) an APIError,
// otherwise a new APIError carrying err's text as details.
func Wrap(err error, code, message string, status int) *APIError {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}
	return NewAPIError(code, message, status, err.Error())
}

// Validation builds a 400 whose message is shown to the admin as-is.
func Validation(err error) *APIError {
	return NewAPIError("VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
}
