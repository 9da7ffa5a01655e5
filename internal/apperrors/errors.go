// Package apperrors provides the domain error taxonomy for the Reverie API.
// Services return typed errors; handlers map them to HTTP status codes and a
// user-facing message without leaking internals.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeUnauthorized     Code = "UNAUTHORIZED"      // no session at all
	CodeUserNotFound     Code = "USER_NOT_FOUND"    // session valid, no local user row
	CodeInvalidMood      Code = "INVALID_MOOD"      // unrecognized mood keyword
	CodeRateLimited      Code = "RATE_LIMITED"      // token bucket empty
	CodeRequestBlocked   Code = "REQUEST_BLOCKED"   // policy denial, not rate based
	CodeForbidden        Code = "FORBIDDEN"         // ownership mismatch
	CodeNotFound         Code = "NOT_FOUND"         // missing entity
	CodeValidationFailed Code = "VALIDATION_FAILED" // malformed input shape
	CodeExternalDegraded Code = "EXTERNAL_DEGRADED" // non-fatal provider failure
	CodeInternal         Code = "INTERNAL"
)

// HTTPStatus returns the HTTP status for a code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeUserNotFound, CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidMood, CodeValidationFailed:
		return http.StatusBadRequest
	case CodeRateLimited, CodeRequestBlocked:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code and a human-readable message.
// RetryAfter and Remaining are populated on rate-limit denials only.
type Error struct {
	Code       Code
	Message    string
	RetryAfter int // seconds until next refill
	Remaining  int // tokens left in the bucket
	cause      error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status for this error.
func (e *Error) HTTPStatus() int { return e.Code.HTTPStatus() }

// Sentinels for errors.Is checks.
var (
	ErrUnauthorized     = &Error{Code: CodeUnauthorized, Message: "Authentication required"}
	ErrUserNotFound     = &Error{Code: CodeUserNotFound, Message: "User not found"}
	ErrInvalidMood      = &Error{Code: CodeInvalidMood, Message: "Invalid mood"}
	ErrRateLimited      = &Error{Code: CodeRateLimited, Message: "Too many requests. Please try again later."}
	ErrRequestBlocked   = &Error{Code: CodeRequestBlocked, Message: "Request blocked"}
	ErrForbidden        = &Error{Code: CodeForbidden, Message: "You do not have access to this resource"}
	ErrNotFound         = &Error{Code: CodeNotFound, Message: "Not found"}
	ErrValidationFailed = &Error{Code: CodeValidationFailed, Message: "Invalid input"}
)

// Unauthorized returns an UNAUTHORIZED error with a custom message.
func Unauthorized(msg string) *Error { return &Error{Code: CodeUnauthorized, Message: msg} }

// UserNotFound returns a USER_NOT_FOUND error with a custom message.
func UserNotFound(msg string) *Error { return &Error{Code: CodeUserNotFound, Message: msg} }

// InvalidMood returns an INVALID_MOOD error naming the rejected keyword.
func InvalidMood(keyword string) *Error {
	return &Error{Code: CodeInvalidMood, Message: fmt.Sprintf("Invalid mood: %q", keyword)}
}

// RateLimited returns a RATE_LIMITED error carrying retry metadata.
func RateLimited(remaining, retryAfter int) *Error {
	return &Error{
		Code:       CodeRateLimited,
		Message:    "Too many requests. Please try again later.",
		Remaining:  remaining,
		RetryAfter: retryAfter,
	}
}

// RequestBlocked returns a REQUEST_BLOCKED policy denial.
func RequestBlocked(msg string) *Error { return &Error{Code: CodeRequestBlocked, Message: msg} }

// Forbidden returns a FORBIDDEN error with a custom message.
func Forbidden(msg string) *Error { return &Error{Code: CodeForbidden, Message: msg} }

// NotFound returns a NOT_FOUND error with a custom message.
func NotFound(msg string) *Error { return &Error{Code: CodeNotFound, Message: msg} }

// Validation returns a VALIDATION_FAILED error with a custom message.
func Validation(msg string) *Error { return &Error{Code: CodeValidationFailed, Message: msg} }

// Internal wraps an unexpected error behind a generic message.
func Internal(msg string, cause error) *Error {
	return &Error{Code: CodeInternal, Message: msg, cause: cause}
}
