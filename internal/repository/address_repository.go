package repository

import (
	"context"
	"database/sql"
	"time"
)

// Address mirrors the 'addresses' table. Province and ward hold codes from
// the static location catalog, not free text.
type Address struct {
	ID                uint64
	UserID            string
	FullName          string
	Phone             string
	Label             sql.NullString
	Province          string
	Ward              string
	AddressLine1      string
	AddressLine2      sql.NullString
	PostalCode        sql.NullString
	IsDefaultShipping bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type AddressRepo struct{ DB *sql.DB }

func NewAddressRepo(db *sql.DB) *AddressRepo { return &AddressRepo{DB: db} }

const addressColumns = "id,user_id,full_name,phone,label,province,ward,address_line1,address_line2,postal_code,is_default_shipping,created_at,updated_at"

// ListByUser returns the user's addresses, default first, then most recently
// updated.
func (r *AddressRepo) ListByUser(ctx context.Context, userID string) ([]Address, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+addressColumns+" FROM addresses WHERE user_id=? ORDER BY is_default_shipping DESC, updated_at DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetByID fetches one address scoped to its owner; (nil, nil) when absent.
func (r *AddressRepo) GetByID(ctx context.Context, userID string, addressID uint64) (*Address, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+addressColumns+" FROM addresses WHERE id=? AND user_id=? LIMIT 1", addressID, userID)
	a, err := scanAddress(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CountByUser returns how many addresses the user holds.
func (r *AddressRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM addresses WHERE user_id=?", userID).Scan(&n)
	return n, err
}

// Create inserts an address. When the new address is the default shipping
// one, the previous default is cleared in the same transaction so at most one
// default exists per user.
func (r *AddressRepo) Create(ctx context.Context, a Address) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if a.IsDefaultShipping {
		if _, err := tx.ExecContext(ctx,
			"UPDATE addresses SET is_default_shipping=0 WHERE user_id=? AND is_default_shipping=1",
			a.UserID); err != nil {
			return 0, err
		}
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO addresses (user_id, full_name, phone, label, province, ward, address_line1, address_line2, postal_code, is_default_shipping) VALUES (?,?,?,?,?,?,?,?,?,?)",
		a.UserID, a.FullName, a.Phone, a.Label, a.Province, a.Ward,
		a.AddressLine1, a.AddressLine2, a.PostalCode, a.IsDefaultShipping)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update overwrites an address row, preserving default-exclusivity the same
// way Create does.
func (r *AddressRepo) Update(ctx context.Context, a Address) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if a.IsDefaultShipping {
		if _, err := tx.ExecContext(ctx,
			"UPDATE addresses SET is_default_shipping=0 WHERE user_id=? AND is_default_shipping=1 AND id<>?",
			a.UserID, a.ID); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx,
		"UPDATE addresses SET full_name=?, phone=?, label=?, province=?, ward=?, address_line1=?, address_line2=?, postal_code=?, is_default_shipping=? WHERE id=? AND user_id=?",
		a.FullName, a.Phone, a.Label, a.Province, a.Ward,
		a.AddressLine1, a.AddressLine2, a.PostalCode, a.IsDefaultShipping, a.ID, a.UserID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// RowsAffected is 0 both for a missing row and for an unchanged one;
		// existence was checked by the service first, so treat it as success.
		return tx.Commit()
	}
	return tx.Commit()
}

// Delete removes an address scoped to its owner. ErrNotFound when absent.
func (r *AddressRepo) Delete(ctx context.Context, userID string, addressID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM addresses WHERE id=? AND user_id=?", addressID, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanAddress(row rowScanner) (Address, error) {
	var a Address
	err := row.Scan(&a.ID, &a.UserID, &a.FullName, &a.Phone, &a.Label,
		&a.Province, &a.Ward, &a.AddressLine1, &a.AddressLine2, &a.PostalCode,
		&a.IsDefaultShipping, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}
