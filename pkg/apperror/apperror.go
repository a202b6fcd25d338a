package apperror

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrUnauthorized      = errors.New("authentication credentials were not provided or are invalid")
	ErrForbidden         = errors.New("you do not have permission to perform this action")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConflict          = errors.New("resource already exists")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrDelivery          = errors.New("message delivery failed")
	ErrInternal          = errors.New("internal server error")
)

// AppError carries an HTTP status code and optional per-field messages.
// It unwraps to one of the sentinel errors above so callers can use errors.Is.
type AppError struct {
	Code    int
	Message string
	Fields  map[string][]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Validation reports a single invalid field.
func Validation(field, reason string) *AppError {
	return ValidationFields(map[string][]string{field: {reason}})
}

func ValidationFields(fields map[string][]string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: "validation failed",
		Fields:  fields,
		Err:     ErrInvalidInput,
	}
}

// Conflict reports a uniqueness violation on one or more fields.
func Conflict(fields map[string][]string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Message: ErrConflict.Error(),
		Fields:  fields,
		Err:     ErrConflict,
	}
}

func NotFound(what string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: what + " not found",
		Err:     ErrNotFound,
	}
}

func Unauthorized(reason string) *AppError {
	if reason == "" {
		reason = ErrUnauthorized.Error()
	}
	return &AppError{Code: http.StatusUnauthorized, Message: reason, Err: ErrUnauthorized}
}

func Forbidden(reason string) *AppError {
	if reason == "" {
		reason = ErrForbidden.Error()
	}
	return &AppError{Code: http.StatusForbidden, Message: reason, Err: ErrForbidden}
}

func Delivery(err error) *AppError {
	return &AppError{
		Code:    http.StatusBadGateway,
		Message: "could not send confirmation email",
		Err:     errors.Join(ErrDelivery, err),
	}
}

// FieldsOf returns the field errors carried by err, if any.
func FieldsOf(err error) map[string][]string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Fields
	}
	return nil
}

// MapErrorToStatus maps common errors to HTTP status codes
func MapErrorToStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrInvalidInput) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrConflict) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrRateLimitExceeded) {
		return http.StatusTooManyRequests
	}
	if errors.Is(err, ErrDelivery) {
		return http.StatusBadGateway
	}
	// Default to internal server error
	return http.StatusInternalServerError
}
