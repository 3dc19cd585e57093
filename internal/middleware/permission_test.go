package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/babyshop/api/internal/apperr"
	"github.com/babyshop/api/internal/rbac"
)

func invoke(t *testing.T, role string, mw echo.MiddlewareFunc) error {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	if role != "" {
		c.Set(CtxRole, role)
	}
	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	return h(c)
}

func TestRequirePermissionsAllowsSufficientRole(t *testing.T) {
	resolver := rbac.NewResolver()
	mw := RequirePermissions(resolver, rbac.PermCategoryCreate)

	require.NoError(t, invoke(t, rbac.RoleAdmin, mw))
	require.NoError(t, invoke(t, rbac.RoleOwner, mw))
}

func TestRequirePermissionsDeniesMissingPermission(t *testing.T) {
	resolver := rbac.NewResolver()
	mw := RequirePermissions(resolver, rbac.PermPaymentRefundFull)

	err := invoke(t, rbac.RoleStaff, mw)
	appErr, ok := err.(*apperr.Error)
	require.True(t, ok)
	require.Equal(t, apperr.CodeForbidden, appErr.Code)
}

func TestRequirePermissionsAndSemantics(t *testing.T) {
	resolver := rbac.NewResolver()
	// Staff holds product.create but not payment.refund.full; one missing
	// permission denies the whole request.
	mw := RequirePermissions(resolver, rbac.PermProductCreate, rbac.PermPaymentRefundFull)

	err := invoke(t, rbac.RoleStaff, mw)
	require.Error(t, err)
	require.NoError(t, invoke(t, rbac.RoleOwner, mw))
}

func TestRequirePermissionsEmptyListAllowsEveryone(t *testing.T) {
	resolver := rbac.NewResolver()
	mw := RequirePermissions(resolver)

	require.NoError(t, invoke(t, rbac.RoleGuest, mw))
	require.NoError(t, invoke(t, "", mw))
}

func TestRequirePermissionsUnknownRoleDenied(t *testing.T) {
	resolver := rbac.NewResolver()
	mw := RequirePermissions(resolver, rbac.PermCategoryRead)

	err := invoke(t, "intruder", mw)
	require.Error(t, err)
}

func TestCurrentRoleDefaultsToGuest(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	require.Equal(t, rbac.RoleGuest, CurrentRole(c))
}
