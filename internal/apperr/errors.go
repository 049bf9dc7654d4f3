package apperr

import (
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/pkg/errors"
)

// Kind tags an error by the condition that caused it.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindValidation   Kind = "validation"
	KindExpired      Kind = "expired"
	KindConflict     Kind = "conflict"
	KindUpstream     Kind = "upstream"
	KindInternal     Kind = "internal"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
)

// Error is the single structured failure surfaced by services to the HTTP layer.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsClient reports whether the failure was caused by the caller (4xx).
func (e *Error) IsClient() bool {
	return e.Status >= 400 && e.Status < 500
}

func New(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Status: statusFor(kind), Message: message, Err: cause}
}

func NotFound(message string) *Error {
	return New(KindNotFound, message, nil)
}

func Validation(message string) *Error {
	return New(KindValidation, message, nil)
}

func Expired(message string) *Error {
	return New(KindExpired, message, nil)
}

func Conflict(message string) *Error {
	return New(KindConflict, message, nil)
}

func Unauthorized(message string) *Error {
	return New(KindUnauthorized, message, nil)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, message, nil)
}

// Upstream wraps a payment-gateway or other third-party failure.
func Upstream(message string, cause error) *Error {
	return New(KindUpstream, message, cause)
}

// Internal wraps an unexpected failure and records a stack trace on the cause.
func Internal(message string, cause error) *Error {
	if cause != nil {
		cause = pkgerrors.WithStack(cause)
	}
	return New(KindInternal, message, cause)
}

// As extracts an *Error from err. Anything else is reported as internal.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("internal server error", err)
}

func statusFor(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindExpired:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUpstream:
		return http.StatusBadGateway
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
