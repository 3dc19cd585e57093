// Package apperr defines the error taxonomy surfaced at the transport
// boundary. Handlers and services return *Error values; the echo error
// handler renders them as structured {status, code, message} JSON. Credential
// and token failures deliberately carry no detail about which check failed.
package apperr

import (
	"fmt"
	"net/http"
)

// Stable machine-readable codes. Clients branch on these, not on messages.
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeValidation         = "VALIDATION_ERROR"
	CodeRateLimited        = "TOO_MANY_REQUESTS"
	CodeInternal           = "INTERNAL_SERVER_ERROR"
)

// Error is a caller-visible failure with an HTTP status, a stable code and a
// human-readable message. Details carries per-field validation messages and
// is omitted from JSON when empty.
type Error struct {
	Status  int      `json:"status"`
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// InvalidCredentials covers both an unknown identifier and a wrong password.
// The two cases must stay indistinguishable to prevent user enumeration.
func InvalidCredentials() *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeInvalidCredentials, Message: "invalid credentials"}
}

// InvalidToken covers bad signature, malformed and expired tokens alike.
func InvalidToken() *Error {
	return &Error{Status: http.StatusUnauthorized, Code: CodeInvalidToken, Message: "invalid token"}
}

func Unauthorized(msg string) *Error {
	if msg == "" {
		msg = "unauthorized"
	}
	return &Error{Status: http.StatusUnauthorized, Code: CodeUnauthorized, Message: msg}
}

func Forbidden(msg string) *Error {
	if msg == "" {
		msg = "insufficient permissions"
	}
	return &Error{Status: http.StatusForbidden, Code: CodeForbidden, Message: msg}
}

func NotFound(msg string) *Error {
	if msg == "" {
		msg = "not found"
	}
	return &Error{Status: http.StatusNotFound, Code: CodeNotFound, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Status: http.StatusConflict, Code: CodeConflict, Message: msg}
}

// Validation reports malformed input with a per-field detail list.
func Validation(msg string, details ...string) *Error {
	if msg == "" {
		msg = "payload validation failed"
	}
	return &Error{Status: http.StatusBadRequest, Code: CodeValidation, Message: msg, Details: details}
}

// RateLimited is returned by the token-bucket middleware; the handler layer
// sets the Retry-After header separately.
func RateLimited() *Error {
	return &Error{Status: http.StatusTooManyRequests, Code: CodeRateLimited, Message: "rate limit exceeded"}
}

func Internal(msg string) *Error {
	if msg == "" {
		msg = "internal server error"
	}
	return &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Message: msg}
}
