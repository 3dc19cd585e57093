package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/babyshop/api/internal/apperr"
	"github.com/babyshop/api/internal/config"
	"github.com/babyshop/api/internal/middleware"
	"github.com/babyshop/api/internal/service"
)

// AuthHandler exposes the login, registration, refresh, logout and session
// endpoints on top of the auth service.
type AuthHandler struct {
	Cfg  config.Config
	Auth *service.AuthService
}

func NewAuthHandler(cfg config.Config, auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Auth: auth}
}

type loginReq struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type registerReq struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	FullName        string `json:"fullName"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Login issues an access token and, with rememberMe, a refresh session.
// Tokens land in the body for API clients and in cookies for browsers.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("", "malformed request body")
	}
	if req.Identifier == "" || req.Password == "" {
		return apperr.Validation("", "identifier and password are required")
	}

	res, err := h.Auth.Login(c.Request().Context(), req.Identifier, req.Password, req.RememberMe, loginContext(c))
	if err != nil {
		return err
	}
	h.setAuthCookies(c, res)
	return respond(c, http.StatusOK, res)
}

// Register creates an account and assigns the customer role.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("", "malformed request body")
	}
	user, err := h.Auth.Register(c.Request().Context(), service.RegisterInput{
		Email:           req.Email,
		Username:        req.Username,
		FullName:        req.FullName,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	}, loginContext(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, user)
}

// Refresh rotates the session's refresh token and issues a new token pair.
// The refresh gate already verified the token signature and loaded the user.
func (h *AuthHandler) Refresh(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperr.Unauthorized("")
	}
	sessionID, _ := c.Get(middleware.CtxSessionID).(string)
	refreshToken, _ := c.Get(middleware.CtxRefreshToken).(string)

	res, err := h.Auth.Refresh(c.Request().Context(), sessionID, refreshToken, user, loginContext(c))
	if err != nil {
		h.clearAuthCookies(c)
		return err
	}
	h.setAuthCookies(c, res)
	return respond(c, http.StatusOK, res)
}

// Logout revokes the session named by the cookie or header. Revoking an
// already-gone session still succeeds.
func (h *AuthHandler) Logout(c echo.Context) error {
	sessionID := ""
	if ck, err := c.Cookie(middleware.CookieSessionID); err == nil {
		sessionID = ck.Value
	}
	if sessionID == "" {
		sessionID = c.Request().Header.Get(middleware.CookieSessionID)
	}
	if err := h.Auth.Logout(c.Request().Context(), sessionID, loginContext(c)); err != nil {
		return err
	}
	h.clearAuthCookies(c)
	return respond(c, http.StatusOK, echo.Map{"loggedOut": true})
}

// Me returns the authenticated user's profile, resolved role and the expiry
// of the access token the request was made with.
func (h *AuthHandler) Me(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperr.Unauthorized("")
	}
	payload := echo.Map{
		"user": service.NewSafeUser(user),
		"role": middleware.CurrentRole(c),
	}
	if exp, ok := c.Get(middleware.CtxTokenExp).(time.Time); ok {
		payload["tokenExpiresAt"] = exp.UTC().Format(time.RFC3339)
	}
	return respond(c, http.StatusOK, payload)
}

// Sessions pages the caller's active and expired sessions.
func (h *AuthHandler) Sessions(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperr.Unauthorized("")
	}
	page, limit := pageParams(c)
	sessions, total, err := h.Auth.ListSessions(c.Request().Context(), user.ID, page, limit)
	if err != nil {
		return err
	}
	return respondMeta(c, http.StatusOK, sessions, pageMeta{Page: page, Limit: limit, Total: total})
}

func loginContext(c echo.Context) service.LoginContext {
	return service.LoginContext{
		UserAgent: c.Request().UserAgent(),
		RequestID: middleware.RequestID(c),
	}
}

// setAuthCookies mirrors the token payload into HttpOnly cookies so browser
// clients never touch the tokens from script.
func (h *AuthHandler) setAuthCookies(c echo.Context, res service.LoginResult) {
	c.SetCookie(h.cookie(middleware.CookieAccessToken, res.AccessToken,
		time.Duration(res.AccessTokenExpiresIn)*time.Second))
	if res.RefreshToken != "" {
		ttl := time.Duration(res.RefreshTokenExpiresIn) * time.Second
		c.SetCookie(h.cookie(middleware.CookieRefreshToken, res.RefreshToken, ttl))
		c.SetCookie(h.cookie(middleware.CookieSessionID, res.SessionID, ttl))
	}
}

func (h *AuthHandler) clearAuthCookies(c echo.Context) {
	c.SetCookie(h.cookie(middleware.CookieAccessToken, "", -time.Hour))
	c.SetCookie(h.cookie(middleware.CookieRefreshToken, "", -time.Hour))
	c.SetCookie(h.cookie(middleware.CookieSessionID, "", -time.Hour))
}

func (h *AuthHandler) cookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   !h.Cfg.IsDev(),
		SameSite: http.SameSiteLaxMode,
	}
}
