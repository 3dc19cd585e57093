package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/babyshop/api/internal/utils"
)

// Session mirrors the 'user_sessions' table: one row per refresh-token
// lineage. The stored digest is replaced on every rotation while the id stays
// stable, so at most one refresh token validates per session at any time.
type Session struct {
	ID            string
	UserID        string
	RfTokenHashed string
	UserAgent     sql.NullString
	ExpiresAt     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SessionSummary is the caller-visible projection of a session row.
type SessionSummary struct {
	ID        string
	ExpiresAt time.Time
}

// maxUserAgentLen bounds the stored user agent.
const maxUserAgentLen = 255

type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Create persists a new session for a freshly issued refresh token. The
// plaintext token never reaches the database; only its digest is stored.
func (r *SessionRepo) Create(ctx context.Context, userID, refreshToken string, expiresAt time.Time, userAgent string) (SessionSummary, error) {
	id, err := utils.NewSessionID()
	if err != nil {
		return SessionSummary{}, err
	}
	if len(userAgent) > maxUserAgentLen {
		userAgent = userAgent[:maxUserAgentLen]
	}
	var ua any
	if userAgent != "" {
		ua = userAgent
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO user_sessions (id, user_id, rf_token_hashed, user_agent, expires_at) VALUES (?,?,?,?,?)",
		id, userID, utils.HashRefreshToken(refreshToken), ua, expiresAt.UTC())
	if err != nil {
		return SessionSummary{}, err
	}
	return SessionSummary{ID: id, ExpiresAt: expiresAt.UTC()}, nil
}

// ValidateRefreshToken returns the session when it exists, belongs to the
// user, has not expired, and the presented token's digest matches the stored
// one. Every failure returns (nil, nil); the caller decides the next action.
func (r *SessionRepo) ValidateRefreshToken(ctx context.Context, sessionID, refreshToken, userID string) (*Session, error) {
	if sessionID == "" || refreshToken == "" {
		return nil, nil
	}
	var s Session
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,rf_token_hashed,user_agent,expires_at,created_at,updated_at FROM user_sessions WHERE id=? AND user_id=? LIMIT 1",
		sessionID, userID).
		Scan(&s.ID, &s.UserID, &s.RfTokenHashed, &s.UserAgent, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !s.ExpiresAt.After(time.Now().UTC()) {
		return nil, nil
	}
	if !utils.RefreshHashEqual(s.RfTokenHashed, refreshToken) {
		return nil, nil
	}
	return &s, nil
}

// RotateRefreshToken overwrites the digest and expiry in place; the session
// id is stable across rotations. The update carries no optimistic lock: two
// concurrent refreshes can both validate the old digest and the second write
// wins, orphaning the first caller's new token. Known gap, kept as-is.
func (r *SessionRepo) RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiresAt time.Time) (SessionSummary, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE user_sessions SET rf_token_hashed=?, expires_at=? WHERE id=?",
		utils.HashRefreshToken(newToken), newExpiresAt.UTC(), sessionID)
	if err != nil {
		return SessionSummary{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return SessionSummary{}, ErrNotFound
	}
	return SessionSummary{ID: sessionID, ExpiresAt: newExpiresAt.UTC()}, nil
}

// Delete removes a session. Idempotent: deleting a missing session is fine.
func (r *SessionRepo) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	_, err := r.DB.ExecContext(ctx, "DELETE FROM user_sessions WHERE id=?", sessionID)
	return err
}

// IsActive checks existence, ownership and non-expiry. Distinct from refresh
// validation: the per-request gate does not see the token, so no digest check.
func (r *SessionRepo) IsActive(ctx context.Context, sessionID, userID string) (bool, error) {
	if sessionID == "" || userID == "" {
		return false, nil
	}
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM user_sessions WHERE id=? AND user_id=? AND expires_at > UTC_TIMESTAMP() LIMIT 1",
		sessionID, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByUser returns the user's sessions newest-expiry first plus the total
// row count for paging.
func (r *SessionRepo) ListByUser(ctx context.Context, userID string, page, limit int) ([]Session, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 15
	}
	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM user_sessions WHERE user_id=?", userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,user_id,rf_token_hashed,user_agent,expires_at,created_at,updated_at FROM user_sessions WHERE user_id=? ORDER BY expires_at DESC LIMIT ? OFFSET ?",
		userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.RfTokenHashed, &s.UserAgent, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}
