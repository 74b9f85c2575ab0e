package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeInvalid          ErrorCode = "INVALID"
	ErrCodeInvalidOperation ErrorCode = "INVALID_OPERATION"
	ErrCodeConflict         ErrorCode = "CONFLICT"
	ErrCodeForbidden        ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal         ErrorCode = "INTERNAL"
	ErrCodeRateLimited      ErrorCode = "RATE_LIMITED"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewInvalidValueError reports a value outside an enumerated set, naming the field and what is allowed.
func NewInvalidValueError[T ~string](field string, allowed []T) *Error {
	names := make([]string, len(allowed))
	for i, v := range allowed {
		names[i] = string(v)
	}
	return NewError(ErrCodeInvalid, fmt.Sprintf("invalid %s. Allowed: %s", field, strings.Join(names, ", ")))
}

// Common domain errors.
var (
	ErrUserNotFound       = NewError(ErrCodeNotFound, "user not found")
	ErrTaskNotFound       = NewError(ErrCodeNotFound, "task not found")
	ErrSessionNotFound    = NewError(ErrCodeNotFound, "session not found")
	ErrUnauthorized       = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrForbidden          = NewError(ErrCodeForbidden, "insufficient role")
	ErrInvalidCredentials = NewError(ErrCodeUnauthorized, "invalid email or password")
	ErrInvalidPayload     = NewError(ErrCodeInvalid, "invalid payload")
	ErrInvalidID          = NewError(ErrCodeInvalid, "invalid id")
	ErrInvalidPage        = NewError(ErrCodeInvalid, "page and limit must be positive integers")
	ErrSelfRoleChange     = NewError(ErrCodeInvalidOperation, "you cannot change your own role")
	ErrSelfDelete         = NewError(ErrCodeInvalidOperation, "you cannot delete your own account through admin panel")
	ErrUserExists         = NewError(ErrCodeConflict, "username or email already registered")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
