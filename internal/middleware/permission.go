package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/babyshop/api/internal/apperr"
	"github.com/babyshop/api/internal/rbac"
)

// RequirePermissions gates a route on the caller holding every listed
// permission. An empty list allows everyone through; routes that forget to
// declare permissions are open rather than dead, matching the longstanding
// behavior admin tooling depends on.
func RequirePermissions(resolver *rbac.Resolver, required ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if len(required) == 0 {
				return next(c)
			}
			if !resolver.HasAll(CurrentRole(c), required) {
				return apperr.Forbidden("insufficient permissions")
			}
			return next(c)
		}
	}
}
