// utils/errors.go
package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the typed error returned by the content service and media
// pipeline. It carries an HTTP status code, a machine-readable type and a
// message safe to show to the client. Internal holds the underlying error
// for logging and is never serialized.
type AppError struct {
	Code     int    `json:"-"`
	Type     string `json:"type"`
	Message  string `json:"message"`
	Internal error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Internal
}

// WithInternal attaches an underlying error for logging and returns a copy.
func (e *AppError) WithInternal(err error) *AppError {
	clone := *e
	clone.Internal = err
	return &clone
}

// AsAppError extracts an *AppError from err, if it is one.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Machine-readable error types.
const (
	ErrTypeInvalidMediaType = "invalid_media_type"
	ErrTypeFileTooLarge     = "file_too_large"
	ErrTypeMissingMedia     = "missing_media"
	ErrTypeMediaTooLong     = "media_too_long"
	ErrTypeUnreadableMedia  = "unreadable_media"
)

// Intake and validation errors. All reject before (or after undoing) any
// durable state.

func ErrInvalidMediaType(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Type: ErrTypeInvalidMediaType, Message: message}
}

func ErrFileTooLarge(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Type: ErrTypeFileTooLarge, Message: message}
}

func ErrMissingMedia(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Type: ErrTypeMissingMedia, Message: message}
}

func ErrMediaTooLong(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Type: ErrTypeMediaTooLong, Message: message}
}

func ErrUnreadableMedia(message string) *AppError {
	return &AppError{Code: http.StatusUnprocessableEntity, Type: ErrTypeUnreadableMedia, Message: message}
}

// Access errors.

func NewNotFound(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Type: "not_found", Message: message}
}

func NewForbidden(message string) *AppError {
	return &AppError{Code: http.StatusForbidden, Type: "forbidden", Message: message}
}

func NewBadRequest(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Type: "bad_request", Message: message}
}

// NewInternal wraps an unexpected error without leaking its detail to the
// client.
func NewInternal(err error) *AppError {
	return &AppError{
		Code:     http.StatusInternalServerError,
		Type:     "internal_error",
		Message:  "Something went wrong",
		Internal: err,
	}
}
