package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/babyshop/api/internal/apperr"
	"github.com/babyshop/api/internal/rbac"
	"github.com/babyshop/api/internal/repository"
	"github.com/babyshop/api/internal/utils"
)

type stubUsers struct {
	user repository.User
	err  error
}

func (s *stubUsers) GetByID(context.Context, string) (repository.User, error) {
	return s.user, s.err
}

type stubRoles struct{ role string }

func (s *stubRoles) RoleForUser(context.Context, string) (string, error) {
	return s.role, nil
}

const gateSecret = "gate-test-secret"

func runGate(t *testing.T, authorization string, users *stubUsers) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	gate := AccessGate(gateSecret, users, &stubRoles{role: rbac.RoleCustomer})
	err := gate(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c)
	return c, err
}

func TestAccessGateStoresUserAndRole(t *testing.T) {
	at, err := utils.NewAccessToken(gateSecret, "user-1", "alice", 15)
	require.NoError(t, err)
	users := &stubUsers{user: repository.User{ID: "user-1", Email: "alice@example.com", IsActive: true}}

	c, err := runGate(t, "Bearer "+at.Token, users)
	require.NoError(t, err)

	u, ok := CurrentUser(c)
	require.True(t, ok)
	require.Equal(t, "user-1", u.ID)
	require.Equal(t, rbac.RoleCustomer, CurrentRole(c))
}

func TestAccessGateMissingToken(t *testing.T) {
	_, err := runGate(t, "", &stubUsers{})
	appErr, ok := err.(*apperr.Error)
	require.True(t, ok)
	require.Equal(t, apperr.CodeUnauthorized, appErr.Code)
}

func TestAccessGateWrongSecret(t *testing.T) {
	at, err := utils.NewAccessToken("another-secret", "user-1", "alice", 15)
	require.NoError(t, err)

	_, err = runGate(t, "Bearer "+at.Token, &stubUsers{})
	appErr, ok := err.(*apperr.Error)
	require.True(t, ok)
	require.Equal(t, apperr.CodeInvalidToken, appErr.Code)
}

func TestAccessGateDeletedUser(t *testing.T) {
	at, err := utils.NewAccessToken(gateSecret, "user-1", "alice", 15)
	require.NoError(t, err)

	_, err = runGate(t, "Bearer "+at.Token, &stubUsers{err: repository.ErrNotFound})
	appErr, ok := err.(*apperr.Error)
	require.True(t, ok)
	require.Equal(t, apperr.CodeUnauthorized, appErr.Code)
}

func TestAccessGateInactiveUser(t *testing.T) {
	at, err := utils.NewAccessToken(gateSecret, "user-1", "alice", 15)
	require.NoError(t, err)
	users := &stubUsers{user: repository.User{ID: "user-1", IsActive: false}}

	_, err = runGate(t, "Bearer "+at.Token, users)
	appErr, ok := err.(*apperr.Error)
	require.True(t, ok)
	require.Equal(t, apperr.CodeForbidden, appErr.Code)
}

func TestAccessGateReadsCookieFallback(t *testing.T) {
	at, err := utils.NewAccessToken(gateSecret, "user-1", "alice", 15)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieAccessToken, Value: at.Token})
	c := e.NewContext(req, httptest.NewRecorder())

	users := &stubUsers{user: repository.User{ID: "user-1", IsActive: true}}
	gate := AccessGate(gateSecret, users, &stubRoles{role: rbac.RoleCustomer})
	require.NoError(t, gate(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c))
}
