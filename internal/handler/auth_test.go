package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/babyshop/api/internal/config"
	"github.com/babyshop/api/internal/middleware"
	"github.com/babyshop/api/internal/rbac"
	"github.com/babyshop/api/internal/repository"
)

func TestMeEchoesTokenExpiry(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	exp := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	c.Set(middleware.CtxUser, repository.User{ID: "user-1", Email: "alice@example.com", IsActive: true})
	c.Set(middleware.CtxRole, rbac.RoleCustomer)
	c.Set(middleware.CtxTokenExp, exp)

	h := NewAuthHandler(config.Config{Env: "test"}, nil)
	require.NoError(t, h.Me(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string `json:"status"`
		Data   struct {
			Role           string `json:"role"`
			TokenExpiresAt string `json:"tokenExpiresAt"`
			User           struct {
				ID string `json:"id"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "success", body.Status)
	require.Equal(t, rbac.RoleCustomer, body.Data.Role)
	require.Equal(t, "user-1", body.Data.User.ID)
	require.Equal(t, "2026-08-28T12:00:00Z", body.Data.TokenExpiresAt)
}

func TestMeWithoutGateRejected(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil), httptest.NewRecorder())

	h := NewAuthHandler(config.Config{Env: "test"}, nil)
	require.Error(t, h.Me(c))
}
