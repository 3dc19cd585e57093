package repository

import (
	"context"
	"database/sql"

	"github.com/babyshop/api/internal/rbac"
)

// UserRoleRepo assigns seeded roles to users. Roles themselves are static
// rows created at deployment; only the user_roles mapping mutates at runtime
// (registration assigns the default role, admins may reassign later).
type UserRoleRepo struct{ DB *sql.DB }

func NewUserRoleRepo(db *sql.DB) *UserRoleRepo { return &UserRoleRepo{DB: db} }

// Assign links a user to a role. The (user_id, role_code) pair is unique;
// re-assigning the same role is a no-op.
func (r *UserRoleRepo) Assign(ctx context.Context, userID, roleCode string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO user_roles (user_id, role_code) VALUES (?,?) ON DUPLICATE KEY UPDATE role_code=VALUES(role_code)",
		userID, roleCode)
	return err
}

// RoleForUser returns the user's active role. One active role per user in
// this implementation; users without a row fall back to guest.
func (r *UserRoleRepo) RoleForUser(ctx context.Context, userID string) (string, error) {
	var role string
	err := r.DB.QueryRowContext(ctx,
		"SELECT role_code FROM user_roles WHERE user_id=? LIMIT 1", userID).Scan(&role)
	if err == sql.ErrNoRows {
		return rbac.RoleGuest, nil
	}
	if err != nil {
		return "", err
	}
	return role, nil
}
