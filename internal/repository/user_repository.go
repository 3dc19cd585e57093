package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/babyshop/api/internal/utils"
)

// User mirrors the 'users' table. Users are never hard-deleted; IsActive
// false is the soft-deactivation flag.
type User struct {
	ID           string
	Email        string
	Username     sql.NullString
	FullName     string
	PasswordHash string
	IsActive     bool
	LastLoginAt  sql.NullTime
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,username,full_name,password_hash,is_active,last_login_at,created_at,updated_at"

// Create inserts a user with a fresh opaque id and returns the stored row.
// Unique violations are mapped to the field-specific duplicate sentinels.
func (r *UserRepo) Create(ctx context.Context, email, username, fullName, passwordHash string) (User, error) {
	id := uuid.NewString()
	email = utils.NormalizeEmail(email)
	username = strings.TrimSpace(username)
	if fullName = strings.TrimSpace(fullName); fullName == "" {
		fullName = username
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id, email, username, full_name, password_hash, is_active) VALUES (?,?,?,?,?,1)",
		id, email, username, fullName, passwordHash)
	if err != nil {
		if isDuplicateKey(err) {
			if strings.Contains(err.Error(), "username") {
				return User{}, ErrDuplicateUsername
			}
			return User{}, ErrDuplicateEmail
		}
		return User{}, err
	}
	return r.GetByID(ctx, id)
}

// FindForAuth resolves a login identifier to a user. The identifier is
// classified as email or username; no match returns (nil, nil) rather than an
// error so callers can collapse it with a wrong password.
func (r *UserRepo) FindForAuth(ctx context.Context, identifier string) (*User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, nil
	}
	column := "username"
	if utils.IsEmail(identifier) {
		column = "email"
		identifier = utils.NormalizeEmail(identifier)
	}
	u, err := r.scanOne(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+column+"=? LIMIT 1", identifier)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByEmailOrUsername returns any user holding either identity, nil when
// both are free. Used by registration to detect taken identities up front.
func (r *UserRepo) FindByEmailOrUsername(ctx context.Context, email, username string) (*User, error) {
	u, err := r.scanOne(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? OR username=? LIMIT 1",
		utils.NormalizeEmail(email), strings.TrimSpace(username))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID fetches a user by id. Missing rows return ErrNotFound.
func (r *UserRepo) GetByID(ctx context.Context, id string) (User, error) {
	u, err := r.scanOne(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	if err == sql.ErrNoRows {
		return User{}, ErrNotFound
	}
	return u, err
}

// UpdateLastLogin stamps the last-login timestamp. Callers treat failures as
// best-effort; a failed stamp never aborts a login.
func (r *UserRepo) UpdateLastLogin(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET last_login_at=UTC_TIMESTAMP() WHERE id=?", id)
	return err
}

func (r *UserRepo) scanOne(ctx context.Context, query string, args ...any) (User, error) {
	var u User
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(
		&u.ID, &u.Email, &u.Username, &u.FullName, &u.PasswordHash,
		&u.IsActive, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
