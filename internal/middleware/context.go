// Package middleware holds the Echo middleware chain: request identity,
// structured request logging, the auth gates, permission checks and the
// Redis token-bucket limiter in front of the auth routes.
package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/babyshop/api/internal/rbac"
	"github.com/babyshop/api/internal/repository"
)

// Context keys set by the gates and read by handlers.
const (
	CtxUser         = "user"
	CtxRole         = "role"
	CtxTokenExp     = "token_exp"
	CtxSessionID    = "session_id"
	CtxRefreshToken = "refresh_token"
	CtxRequestID    = "request_id"
)

// Cookie names shared with the handlers.
const (
	CookieAccessToken  = "x-access-token"
	CookieRefreshToken = "x-refresh-token"
	CookieSessionID    = "x-session-id"
)

// CurrentUser returns the authenticated user a gate stored on the context.
// The ok flag is false on routes that never passed through a gate.
func CurrentUser(c echo.Context) (repository.User, bool) {
	u, ok := c.Get(CtxUser).(repository.User)
	return u, ok
}

// CurrentRole returns the caller's resolved role, guest when absent.
func CurrentRole(c echo.Context) string {
	if r, ok := c.Get(CtxRole).(string); ok && r != "" {
		return r
	}
	return rbac.RoleGuest
}

// RequestID returns the request correlation id, empty when the identity
// middleware is not installed.
func RequestID(c echo.Context) string {
	if id, ok := c.Get(CtxRequestID).(string); ok {
		return id
	}
	return ""
}
