// Package apperr provides typed errors for the dashboard.
//
// Every failure a user can trigger carries a code so the web layer can
// choose a status and a message without string matching:
//
//	err := apperr.Newf(apperr.ErrCodeInvalidTicker, "invalid ticker %q", raw)
//	if apperr.HasCode(err, apperr.ErrCodeNoData) { ... }
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies a class of failure.
type ErrorCode int

const (
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter ErrorCode = 100
	ErrCodeInvalidTicker    ErrorCode = 101
	ErrCodeInvalidConfig    ErrorCode = 102

	// Data errors (200-299)
	ErrCodeNoData           ErrorCode = 200
	ErrCodeInsufficientData ErrorCode = 201

	// Upstream errors (700-799)
	ErrCodeUpstream ErrorCode = 700

	// Internal errors (900-999)
	ErrCodeInternal ErrorCode = 900
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// GetCode returns the code of the first *Error in err's chain, or ErrCodeUnknown.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeUnknown
}

// HasCode reports whether err carries code.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// Message returns the user-facing message of the first *Error in the chain.
// Causes are left out: they may contain upstream bodies or URLs.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

// HTTPStatus maps an error to the status the web layer responds with.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidParameter, ErrCodeInvalidTicker:
		return http.StatusBadRequest
	case ErrCodeNoData:
		return http.StatusNotFound
	case ErrCodeInsufficientData:
		return http.StatusUnprocessableEntity
	case ErrCodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
