package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/babyshop/api/internal/apperr"
	"github.com/babyshop/api/internal/repository"
	"github.com/babyshop/api/internal/utils"
)

// UserLoader is the user lookup the gates need; satisfied by the user repo.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (repository.User, error)
}

// RoleLoader resolves a user's role; satisfied by the user-role repo.
type RoleLoader interface {
	RoleForUser(ctx context.Context, userID string) (string, error)
}

// AccessGate validates the access token, loads the live user row and stores
// user, role and token expiry on the context. Tokens come from the
// Authorization header or, for browser clients, the access-token cookie.
func AccessGate(secret string, users UserLoader, roles RoleLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c)
			if raw == "" {
				return apperr.Unauthorized("missing access token")
			}
			claims, err := utils.VerifyToken(raw, secret)
			if err != nil {
				return apperr.InvalidToken()
			}

			ctx := c.Request().Context()
			user, err := users.GetByID(ctx, claims.Sub)
			if err != nil {
				if err == repository.ErrNotFound {
					return apperr.Unauthorized("user no longer exists")
				}
				return apperr.Internal("")
			}
			if !user.IsActive {
				return apperr.Forbidden("account is deactivated")
			}
			role, err := roles.RoleForUser(ctx, user.ID)
			if err != nil {
				return apperr.Internal("")
			}

			c.Set(CtxUser, user)
			c.Set(CtxRole, role)
			c.Set(CtxTokenExp, claims.Exp)
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) string {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if ck, err := c.Cookie(CookieAccessToken); err == nil && ck.Value != "" {
		return ck.Value
	}
	return ""
}
