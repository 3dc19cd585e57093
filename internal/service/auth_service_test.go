package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/babyshop/api/internal/apperr"
	"github.com/babyshop/api/internal/config"
	"github.com/babyshop/api/internal/queue"
	"github.com/babyshop/api/internal/rbac"
	"github.com/babyshop/api/internal/repository"
	"github.com/babyshop/api/internal/utils"
)

// ----- fakes -----

type fakeUsers struct {
	users      map[string]repository.User // by id
	lastLogins []string
}

func (f *fakeUsers) FindForAuth(_ context.Context, identifier string) (*repository.User, error) {
	for _, u := range f.users {
		if u.Email == utils.NormalizeEmail(identifier) {
			out := u
			return &out, nil
		}
		if u.Username.Valid && u.Username.String == identifier {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) FindByEmailOrUsername(_ context.Context, email, username string) (*repository.User, error) {
	for _, u := range f.users {
		if u.Email == utils.NormalizeEmail(email) || (username != "" && u.Username.Valid && u.Username.String == username) {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) Create(_ context.Context, email, username, fullName, passwordHash string) (repository.User, error) {
	u := repository.User{
		ID:           uuid.NewString(),
		Email:        utils.NormalizeEmail(email),
		FullName:     fullName,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if username != "" {
		u.Username.String = username
		u.Username.Valid = true
	}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (repository.User, error) {
	u, ok := f.users[id]
	if !ok {
		return repository.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) UpdateLastLogin(_ context.Context, id string) error {
	f.lastLogins = append(f.lastLogins, id)
	return nil
}

type fakeSessions struct {
	rows map[string]*repository.Session
}

func (f *fakeSessions) Create(_ context.Context, userID, refreshToken string, expiresAt time.Time, userAgent string) (repository.SessionSummary, error) {
	id, err := utils.NewSessionID()
	if err != nil {
		return repository.SessionSummary{}, err
	}
	row := &repository.Session{
		ID:            id,
		UserID:        userID,
		RfTokenHashed: utils.HashRefreshToken(refreshToken),
		ExpiresAt:     expiresAt,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	if userAgent != "" {
		row.UserAgent.String = userAgent
		row.UserAgent.Valid = true
	}
	f.rows[id] = row
	return repository.SessionSummary{ID: id, ExpiresAt: expiresAt}, nil
}

func (f *fakeSessions) ValidateRefreshToken(_ context.Context, sessionID, refreshToken, userID string) (*repository.Session, error) {
	row, ok := f.rows[sessionID]
	if !ok || row.UserID != userID {
		return nil, nil
	}
	if time.Now().After(row.ExpiresAt) {
		return nil, nil
	}
	if !utils.RefreshHashEqual(row.RfTokenHashed, refreshToken) {
		return nil, nil
	}
	out := *row
	return &out, nil
}

func (f *fakeSessions) RotateRefreshToken(_ context.Context, sessionID, newToken string, newExpiresAt time.Time) (repository.SessionSummary, error) {
	row, ok := f.rows[sessionID]
	if !ok {
		return repository.SessionSummary{}, repository.ErrNotFound
	}
	row.RfTokenHashed = utils.HashRefreshToken(newToken)
	row.ExpiresAt = newExpiresAt
	row.UpdatedAt = time.Now().UTC()
	return repository.SessionSummary{ID: sessionID, ExpiresAt: newExpiresAt}, nil
}

func (f *fakeSessions) Delete(_ context.Context, sessionID string) error {
	delete(f.rows, sessionID)
	return nil
}

func (f *fakeSessions) IsActive(_ context.Context, sessionID, userID string) (bool, error) {
	row, ok := f.rows[sessionID]
	return ok && row.UserID == userID && time.Now().Before(row.ExpiresAt), nil
}

func (f *fakeSessions) ListByUser(_ context.Context, userID string, page, limit int) ([]repository.Session, int, error) {
	var out []repository.Session
	for _, row := range f.rows {
		if row.UserID == userID {
			out = append(out, *row)
		}
	}
	return out, len(out), nil
}

type fakeRoles struct {
	byUser map[string]string
}

func (f *fakeRoles) Assign(_ context.Context, userID, roleCode string) error {
	f.byUser[userID] = roleCode
	return nil
}

func (f *fakeRoles) RoleForUser(_ context.Context, userID string) (string, error) {
	if r, ok := f.byUser[userID]; ok {
		return r, nil
	}
	return rbac.RoleGuest, nil
}

type fakeAudit struct {
	events []queue.AuthAuditEvent
}

func (f *fakeAudit) Publish(_ context.Context, ev queue.AuthAuditEvent) error {
	f.events = append(f.events, ev)
	return nil
}

// ----- fixture -----

type authFixture struct {
	svc      *AuthService
	users    *fakeUsers
	sessions *fakeSessions
	roles    *fakeRoles
	audit    *fakeAudit
	userID   string
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	cfg := config.Config{
		Env:                "test",
		AccessTokenSecret:  "test-access-secret",
		RefreshTokenSecret: "test-refresh-secret",
		AccessTTLMin:       15,
		RefreshTTLDays:     7,
		BcryptCost:         4,
	}
	f := &authFixture{
		users:    &fakeUsers{users: map[string]repository.User{}},
		sessions: &fakeSessions{rows: map[string]*repository.Session{}},
		roles:    &fakeRoles{byUser: map[string]string{}},
		audit:    &fakeAudit{},
	}

	hash, err := utils.HashPassword("correct horse", cfg.BcryptCost)
	require.NoError(t, err)
	u, err := f.users.Create(context.Background(), "alice@example.com", "alice", "Alice", hash)
	require.NoError(t, err)
	f.userID = u.ID
	f.roles.byUser[u.ID] = rbac.RoleCustomer

	f.svc = NewAuthService(cfg, f.users, f.sessions, f.roles, f.audit)
	return f
}

// ----- tests -----

func TestLoginWithoutRememberMe(t *testing.T) {
	f := newAuthFixture(t)

	res, err := f.svc.Login(context.Background(), "alice@example.com", "correct horse", false, LoginContext{})
	require.NoError(t, err)
	require.Equal(t, "Bearer", res.TokenType)
	require.Equal(t, int64(15*60), res.AccessTokenExpiresIn)
	require.Empty(t, res.RefreshToken)
	require.Empty(t, res.SessionID)
	require.Empty(t, f.sessions.rows)

	claims, err := utils.VerifyToken(res.AccessToken, "test-access-secret")
	require.NoError(t, err)
	require.Equal(t, f.userID, claims.Sub)
	require.Equal(t, "alice", claims.Username)

	require.Equal(t, []string{f.userID}, f.users.lastLogins)
	require.Len(t, f.audit.events, 1)
	require.Equal(t, queue.EventUserLogin, f.audit.events[0].Event)
}

func TestLoginByUsername(t *testing.T) {
	f := newAuthFixture(t)

	res, err := f.svc.Login(context.Background(), "alice", "correct horse", false, LoginContext{})
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", res.User.Email)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newAuthFixture(t)

	_, errWrongPass := f.svc.Login(context.Background(), "alice@example.com", "wrong", false, LoginContext{})
	_, errNoUser := f.svc.Login(context.Background(), "nobody@example.com", "whatever", false, LoginContext{})

	require.Equal(t, errWrongPass, errNoUser)
	appErr, ok := errWrongPass.(*apperr.Error)
	require.True(t, ok)
	require.Equal(t, apperr.CodeInvalidCredentials, appErr.Code)
}

func TestLoginInactiveUserRejected(t *testing.T) {
	f := newAuthFixture(t)
	u := f.users.users[f.userID]
	u.IsActive = false
	f.users.users[f.userID] = u

	_, err := f.svc.Login(context.Background(), "alice@example.com", "correct horse", false, LoginContext{})
	appErr, ok := err.(*apperr.Error)
	require.True(t, ok)
	require.Equal(t, apperr.CodeInvalidCredentials, appErr.Code)
}

func TestLoginRememberMeCreatesSession(t *testing.T) {
	f := newAuthFixture(t)

	res, err := f.svc.Login(context.Background(), "alice@example.com", "correct horse", true, LoginContext{UserAgent: "test-agent"})
	require.NoError(t, err)
	require.NotEmpty(t, res.RefreshToken)
	require.Len(t, res.SessionID, utils.SessionIDLength)
	require.Equal(t, int64(7*24*3600), res.RefreshTokenExpiresIn)

	row := f.sessions.rows[res.SessionID]
	require.NotNil(t, row)
	require.Equal(t, f.userID, row.UserID)
	// Only a digest of the refresh token is stored.
	require.NotEqual(t, res.RefreshToken, row.RfTokenHashed)
	require.True(t, utils.RefreshHashEqual(row.RfTokenHashed, res.RefreshToken))
}

func TestRefreshRotatesTokenInPlace(t *testing.T) {
	f := newAuthFixture(t)
	login, err := f.svc.Login(context.Background(), "alice@example.com", "correct horse", true, LoginContext{})
	require.NoError(t, err)
	user := f.users.users[f.userID]

	refreshed, err := f.svc.Refresh(context.Background(), login.SessionID, login.RefreshToken, user, LoginContext{})
	require.NoError(t, err)
	require.Equal(t, login.SessionID, refreshed.SessionID)
	require.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	require.NotEmpty(t, refreshed.AccessToken)

	// The rotated-in token is live: a second refresh with it succeeds.
	again, err := f.svc.Refresh(context.Background(), login.SessionID, refreshed.RefreshToken, user, LoginContext{})
	require.NoError(t, err)
	require.Equal(t, login.SessionID, again.SessionID)

	// The rotated-out token is dead: replaying it tears the session down.
	_, err = f.svc.Refresh(context.Background(), login.SessionID, login.RefreshToken, user, LoginContext{})
	appErr, ok := err.(*apperr.Error)
	require.True(t, ok)
	require.Equal(t, apperr.CodeUnauthorized, appErr.Code)
	require.Empty(t, f.sessions.rows)
}

func TestRefreshExpiredSessionRejected(t *testing.T) {
	f := newAuthFixture(t)
	login, err := f.svc.Login(context.Background(), "alice@example.com", "correct horse", true, LoginContext{})
	require.NoError(t, err)
	f.sessions.rows[login.SessionID].ExpiresAt = time.Now().Add(-time.Minute)

	user := f.users.users[f.userID]
	_, err = f.svc.Refresh(context.Background(), login.SessionID, login.RefreshToken, user, LoginContext{})
	appErr, ok := err.(*apperr.Error)
	require.True(t, ok)
	require.Equal(t, apperr.CodeUnauthorized, appErr.Code)
	// Failed validation tears the session down so the token cannot be retried.
	require.Empty(t, f.sessions.rows)
}

func TestLogoutIsIdempotent(t *testing.T) {
	f := newAuthFixture(t)
	login, err := f.svc.Login(context.Background(), "alice@example.com", "correct horse", true, LoginContext{})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(context.Background(), login.SessionID, LoginContext{}))
	require.Empty(t, f.sessions.rows)
	require.NoError(t, f.svc.Logout(context.Background(), login.SessionID, LoginContext{}))
	require.NoError(t, f.svc.Logout(context.Background(), "", LoginContext{}))
}

func TestRegisterAssignsCustomerRole(t *testing.T) {
	f := newAuthFixture(t)

	user, err := f.svc.Register(context.Background(), RegisterInput{
		Email:           "bob@example.com",
		Username:        "bob",
		FullName:        "Bob",
		Password:        "some password",
		ConfirmPassword: "some password",
	}, LoginContext{})
	require.NoError(t, err)
	require.Equal(t, "bob@example.com", user.Email)
	require.Equal(t, rbac.RoleCustomer, f.roles.byUser[user.ID])
	require.Equal(t, queue.EventUserRegistered, f.audit.events[len(f.audit.events)-1].Event)
}

func TestRegisterPasswordMismatch(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Register(context.Background(), RegisterInput{
		Email:           "bob@example.com",
		Password:        "one",
		ConfirmPassword: "two",
	}, LoginContext{})
	appErr, ok := err.(*apperr.Error)
	require.True(t, ok)
	require.Equal(t, apperr.CodeValidation, appErr.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Register(context.Background(), RegisterInput{
		Email:           "alice@example.com",
		Password:        "pw",
		ConfirmPassword: "pw",
	}, LoginContext{})
	appErr, ok := err.(*apperr.Error)
	require.True(t, ok)
	require.Equal(t, apperr.CodeConflict, appErr.Code)
}

func TestListSessions(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.Login(context.Background(), "alice@example.com", "correct horse", true, LoginContext{UserAgent: "agent-a"})
	require.NoError(t, err)
	_, err = f.svc.Login(context.Background(), "alice@example.com", "correct horse", true, LoginContext{UserAgent: "agent-b"})
	require.NoError(t, err)

	sessions, total, err := f.svc.ListSessions(context.Background(), f.userID, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, sessions, 2)
	for _, s := range sessions {
		require.NotEmpty(t, s.ID)
		require.NotNil(t, s.UserAgent)
	}
}
