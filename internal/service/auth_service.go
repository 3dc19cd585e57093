// Package service composes repositories, token helpers and the audit
// publisher into the application flows behind the HTTP handlers.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/babyshop/api/internal/apperr"
	"github.com/babyshop/api/internal/config"
	q "github.com/babyshop/api/internal/queue"
	"github.com/babyshop/api/internal/rbac"
	"github.com/babyshop/api/internal/repository"
	"github.com/babyshop/api/internal/utils"
)

// UserStore is the slice of the user repository the auth flows need. Declared
// here so tests can substitute in-memory fakes.
type UserStore interface {
	FindForAuth(ctx context.Context, identifier string) (*repository.User, error)
	FindByEmailOrUsername(ctx context.Context, email, username string) (*repository.User, error)
	Create(ctx context.Context, email, username, fullName, passwordHash string) (repository.User, error)
	GetByID(ctx context.Context, id string) (repository.User, error)
	UpdateLastLogin(ctx context.Context, id string) error
}

// SessionStore is the session-row surface consumed by the auth flows.
type SessionStore interface {
	Create(ctx context.Context, userID, refreshToken string, expiresAt time.Time, userAgent string) (repository.SessionSummary, error)
	ValidateRefreshToken(ctx context.Context, sessionID, refreshToken, userID string) (*repository.Session, error)
	RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiresAt time.Time) (repository.SessionSummary, error)
	Delete(ctx context.Context, sessionID string) error
	IsActive(ctx context.Context, sessionID, userID string) (bool, error)
	ListByUser(ctx context.Context, userID string, page, limit int) ([]repository.Session, int, error)
}

// RoleStore assigns and resolves user roles.
type RoleStore interface {
	Assign(ctx context.Context, userID, roleCode string) error
	RoleForUser(ctx context.Context, userID string) (string, error)
}

// SafeUser is the caller-visible user projection. It never carries the
// password hash.
type SafeUser struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Username    *string `json:"username"`
	FullName    string  `json:"fullName"`
	IsActive    bool    `json:"isActive"`
	LastLoginAt *string `json:"lastLoginAt"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

// LoginUser is the trimmed user block embedded in token responses.
type LoginUser struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Username    *string `json:"username"`
	LastLoginAt *string `json:"lastLoginAt"`
}

// LoginResult is the response shape shared by login and refresh. Refresh
// fields are present only when a session was created or rotated.
type LoginResult struct {
	TokenType             string    `json:"tokenType"`
	AccessToken           string    `json:"accessToken"`
	AccessTokenExpiresIn  int64     `json:"accessTokenExpiresIn"`
	RefreshToken          string    `json:"refreshToken,omitempty"`
	RefreshTokenExpiresIn int64     `json:"refreshTokenExpiresIn,omitempty"`
	SessionID             string    `json:"sessionId,omitempty"`
	SessionExpiresAt      string    `json:"sessionExpiresAt,omitempty"`
	User                  LoginUser `json:"user"`
}

// LoginContext carries request metadata into the auth flows.
type LoginContext struct {
	UserAgent string
	RequestID string
}

// RegisterInput is the registration payload after binding.
type RegisterInput struct {
	Email           string
	Username        string
	FullName        string
	Password        string
	ConfirmPassword string
}

// SessionInfo is one row of the caller's session listing. The token digest is
// intentionally absent.
type SessionInfo struct {
	ID        string  `json:"id"`
	UserAgent *string `json:"userAgent"`
	ExpiresAt string  `json:"expiresAt"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

// AuthService orchestrates login, refresh rotation, logout, registration and
// session listing.
type AuthService struct {
	cfg      config.Config
	users    UserStore
	sessions SessionStore
	roles    RoleStore
	audit    AuditPublisher
}

func NewAuthService(cfg config.Config, users UserStore, sessions SessionStore, roles RoleStore, audit AuditPublisher) *AuthService {
	return &AuthService{cfg: cfg, users: users, sessions: sessions, roles: roles, audit: audit}
}

// Login verifies credentials and issues tokens. A refresh token and session
// row are produced only when rememberMe is set. An unknown identifier and a
// wrong password fail identically so callers cannot enumerate users.
func (s *AuthService) Login(ctx context.Context, identifier, password string, rememberMe bool, lctx LoginContext) (LoginResult, error) {
	user, err := s.users.FindForAuth(ctx, identifier)
	if err != nil {
		return LoginResult{}, apperr.Internal("")
	}
	if user == nil || !user.IsActive {
		return LoginResult{}, apperr.InvalidCredentials()
	}
	if !utils.VerifyPassword(user.PasswordHash, password) {
		return LoginResult{}, apperr.InvalidCredentials()
	}

	// Best-effort: a failed timestamp update must not fail the login.
	_ = s.users.UpdateLastLogin(ctx, user.ID)

	access, err := utils.NewAccessToken(s.cfg.AccessTokenSecret, user.ID, payloadUsername(user), s.cfg.AccessTTLMin)
	if err != nil {
		return LoginResult{}, apperr.Internal("")
	}

	result := LoginResult{
		TokenType:            "Bearer",
		AccessToken:          access.Token,
		AccessTokenExpiresIn: int64(s.cfg.AccessTTLMin) * 60,
		User:                 loginUser(user),
	}

	if rememberMe {
		refresh, err := utils.NewRefreshToken(s.cfg.RefreshTokenSecret, user.ID, payloadUsername(user), s.cfg.RefreshTTLDays)
		if err != nil {
			return LoginResult{}, apperr.Internal("")
		}
		session, err := s.sessions.Create(ctx, user.ID, refresh.Token, refresh.Exp, lctx.UserAgent)
		if err != nil {
			return LoginResult{}, apperr.Internal("")
		}
		result.RefreshToken = refresh.Token
		result.RefreshTokenExpiresIn = int64(s.cfg.RefreshTTLDays) * 24 * 3600
		result.SessionID = session.ID
		result.SessionExpiresAt = session.ExpiresAt.Format(time.RFC3339)
	}

	_ = s.audit.Publish(ctx, q.AuthAuditEvent{
		Event:     q.EventUserLogin,
		UserID:    user.ID,
		Username:  payloadUsername(user),
		SessionID: result.SessionID,
		UserAgent: lctx.UserAgent,
		RequestID: lctx.RequestID,
	})
	return result, nil
}

// Refresh validates the presented session/token pair, rotates the session and
// returns a fresh token pair. On any validation failure the session is
// deleted before failing so a compromised token cannot be replayed.
func (s *AuthService) Refresh(ctx context.Context, sessionID, refreshToken string, user repository.User, lctx LoginContext) (LoginResult, error) {
	session, err := s.sessions.ValidateRefreshToken(ctx, sessionID, refreshToken, user.ID)
	if err != nil {
		return LoginResult{}, apperr.Internal("")
	}
	if session == nil {
		_ = s.sessions.Delete(ctx, sessionID)
		return LoginResult{}, apperr.Unauthorized("invalid session token")
	}

	access, err := utils.NewAccessToken(s.cfg.AccessTokenSecret, user.ID, payloadUsername(&user), s.cfg.AccessTTLMin)
	if err != nil {
		return LoginResult{}, apperr.Internal("")
	}
	// A session exists, so rotation is mandatory: refresh always issues a new
	// refresh token.
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshTokenSecret, user.ID, payloadUsername(&user), s.cfg.RefreshTTLDays)
	if err != nil {
		return LoginResult{}, apperr.Internal("")
	}
	if refresh.Token == "" || refresh.Exp.IsZero() {
		// Unreachable unless token minting breaks; kept as a hard stop so a
		// session is never rotated onto an unusable token.
		return LoginResult{}, apperr.Internal("could not issue session")
	}

	rotated, err := s.sessions.RotateRefreshToken(ctx, session.ID, refresh.Token, refresh.Exp)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return LoginResult{}, apperr.Unauthorized("invalid session token")
		}
		return LoginResult{}, apperr.Internal("")
	}

	_ = s.audit.Publish(ctx, q.AuthAuditEvent{
		Event:     q.EventSessionRefreshed,
		UserID:    user.ID,
		Username:  payloadUsername(&user),
		SessionID: rotated.ID,
		UserAgent: lctx.UserAgent,
		RequestID: lctx.RequestID,
	})

	return LoginResult{
		TokenType:             "Bearer",
		AccessToken:           access.Token,
		AccessTokenExpiresIn:  int64(s.cfg.AccessTTLMin) * 60,
		RefreshToken:          refresh.Token,
		RefreshTokenExpiresIn: int64(s.cfg.RefreshTTLDays) * 24 * 3600,
		SessionID:             rotated.ID,
		SessionExpiresAt:      rotated.ExpiresAt.Format(time.RFC3339),
		User:                  loginUser(&user),
	}, nil
}

// Logout deletes the session. It is idempotent: an empty or already-deleted
// session id succeeds silently.
func (s *AuthService) Logout(ctx context.Context, sessionID string, lctx LoginContext) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return apperr.Internal("")
	}
	_ = s.audit.Publish(ctx, q.AuthAuditEvent{
		Event:     q.EventSessionRevoked,
		SessionID: sessionID,
		RequestID: lctx.RequestID,
	})
	return nil
}

// Register creates a user with the default customer role and returns the safe
// projection.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, lctx LoginContext) (SafeUser, error) {
	if in.Password != in.ConfirmPassword {
		return SafeUser{}, apperr.Validation("", "confirm password does not match")
	}
	existing, err := s.users.FindByEmailOrUsername(ctx, in.Email, in.Username)
	if err != nil {
		return SafeUser{}, apperr.Internal("")
	}
	if existing != nil {
		return SafeUser{}, apperr.Conflict("registration details already in use")
	}

	hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return SafeUser{}, apperr.Internal("")
	}
	user, err := s.users.Create(ctx, in.Email, in.Username, in.FullName, hash)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return SafeUser{}, apperr.Conflict("email already in use")
		case errors.Is(err, repository.ErrDuplicateUsername):
			return SafeUser{}, apperr.Conflict("username already in use")
		}
		return SafeUser{}, apperr.Internal("could not create user")
	}
	if err := s.roles.Assign(ctx, user.ID, rbac.RoleCustomer); err != nil {
		return SafeUser{}, apperr.Internal("could not assign default role")
	}

	_ = s.audit.Publish(ctx, q.AuthAuditEvent{
		Event:     q.EventUserRegistered,
		UserID:    user.ID,
		Username:  payloadUsername(&user),
		RequestID: lctx.RequestID,
	})
	return safeUser(user), nil
}

// ListSessions pages the caller's sessions, newest expiry first.
func (s *AuthService) ListSessions(ctx context.Context, userID string, page, limit int) ([]SessionInfo, int, error) {
	rows, total, err := s.sessions.ListByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, apperr.Internal("")
	}
	out := make([]SessionInfo, 0, len(rows))
	for _, row := range rows {
		info := SessionInfo{
			ID:        row.ID,
			ExpiresAt: row.ExpiresAt.Format(time.RFC3339),
			CreatedAt: row.CreatedAt.Format(time.RFC3339),
			UpdatedAt: row.UpdatedAt.Format(time.RFC3339),
		}
		if row.UserAgent.Valid {
			ua := row.UserAgent.String
			info.UserAgent = &ua
		}
		out = append(out, info)
	}
	return out, total, nil
}

// payloadUsername picks the token username claim: username when present,
// email otherwise.
func payloadUsername(u *repository.User) string {
	if u.Username.Valid && u.Username.String != "" {
		return u.Username.String
	}
	return u.Email
}

func loginUser(u *repository.User) LoginUser {
	out := LoginUser{ID: u.ID, Email: u.Email}
	if u.Username.Valid {
		name := u.Username.String
		out.Username = &name
	}
	if u.LastLoginAt.Valid {
		ts := u.LastLoginAt.Time.UTC().Format(time.RFC3339)
		out.LastLoginAt = &ts
	}
	return out
}

// NewSafeUser projects a user row into its caller-visible shape.
func NewSafeUser(u repository.User) SafeUser { return safeUser(u) }

func safeUser(u repository.User) SafeUser {
	out := SafeUser{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if u.Username.Valid {
		name := u.Username.String
		out.Username = &name
	}
	if u.LastLoginAt.Valid {
		ts := u.LastLoginAt.Time.UTC().Format(time.RFC3339)
		out.LastLoginAt = &ts
	}
	return out
}
