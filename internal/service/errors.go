package service

import (
	"errors"
	"fmt"
)

// Kinds. Every error returned by AuthService matches exactly one of these
// through errors.Is.
var (
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrInternal     = errors.New("internal error")
)

// Reasons, for callers that need more than the kind.
var (
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidRefreshToken   = errors.New("invalid refresh token")
	ErrSupersededToken       = errors.New("refresh token expired or superseded")
	ErrInvalidOrExpiredToken = errors.New("token is invalid or expired")
)

type Error struct {
	Kind    error
	Message string
	Details []map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func validationError(msg string, details []map[string]string) *Error {
	return &Error{Kind: ErrValidation, Message: msg, Details: details}
}

func internalError(msg string, err error) *Error {
	return &Error{Kind: ErrInternal, Message: msg, Err: err}
}

// AsError returns the *Error in err's chain, or wraps err as an internal
// error.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return internalError("Internal Server Error", err)
}
