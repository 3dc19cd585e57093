package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/babyshop/api/internal/apperr"
	"github.com/babyshop/api/internal/repository"
	"github.com/babyshop/api/internal/utils"
)

// SessionChecker answers whether a session row is live for a user; satisfied
// by the session repo.
type SessionChecker interface {
	IsActive(ctx context.Context, sessionID, userID string) (bool, error)
}

// RefreshGate guards the refresh endpoint. It verifies the refresh token with
// the refresh secret, loads the user, rejects dead sessions up front and
// stores the raw token and session id for the handler; the digest comparison
// against the session row happens in the service where rotation runs.
func RefreshGate(secret string, users UserLoader, sessions SessionChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := refreshTokenFrom(c)
			if raw == "" {
				return apperr.Unauthorized("missing refresh token")
			}
			sessionID := sessionIDFrom(c)
			if sessionID == "" {
				return apperr.Unauthorized("missing session id")
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
			active, err := sessions.IsActive(ctx, sessionID, user.ID)
			if err != nil {
				return apperr.Internal("")
			}
			if !active {
				return apperr.Unauthorized("session is not active")
			}

			c.Set(CtxUser, user)
			c.Set(CtxRefreshToken, raw)
			c.Set(CtxSessionID, sessionID)
			return next(c)
		}
	}
}

func refreshTokenFrom(c echo.Context) string {
	if ck, err := c.Cookie(CookieRefreshToken); err == nil && ck.Value != "" {
		return ck.Value
	}
	return c.Request().Header.Get(CookieRefreshToken)
}

func sessionIDFrom(c echo.Context) string {
	if ck, err := c.Cookie(CookieSessionID); err == nil && ck.Value != "" {
		return ck.Value
	}
	return c.Request().Header.Get(CookieSessionID)
}
