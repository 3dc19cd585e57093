package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Category mirrors the 'categories' table. Deleted rows stay in place with
// deleted_at set and tombstoned name/slug so live uniqueness checks ignore
// them.
type Category struct {
	ID          uint64
	Name        string
	Slug        string
	Description sql.NullString
	ParentID    sql.NullInt64
	Position    int
	IsActive    bool
	DeletedAt   sql.NullTime
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CategoryListQuery narrows and pages the admin listing.
type CategoryListQuery struct {
	Query    string // substring match on name
	IsActive *bool
	Page     int
	Limit    int
	Order    string // column name, validated by the caller
	Sort     string // asc | desc
}

type CategoryRepo struct{ DB *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{DB: db} }

const categoryColumns = "id,name,slug,description,parent_id,position,is_active,deleted_at,created_at,updated_at"

// PublicActive returns the live, active categories ordered for tree building
// (parents before their ordered children).
func (r *CategoryRepo) PublicActive(ctx context.Context) ([]Category, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE is_active=1 AND deleted_at IS NULL ORDER BY parent_id ASC, position ASC, name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCategories(rows)
}

// List pages the admin listing with optional name and is_active filters.
func (r *CategoryRepo) List(ctx context.Context, q CategoryListQuery) ([]Category, int, error) {
	where := "deleted_at IS NULL"
	args := []any{}
	if q.Query != "" {
		where += " AND name LIKE ?"
		args = append(args, "%"+q.Query+"%")
	}
	if q.IsActive != nil {
		where += " AND is_active=?"
		args = append(args, *q.IsActive)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM categories WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := "id"
	switch q.Order {
	case "name", "position", "created_at", "updated_at":
		order = q.Order
	}
	sort := "ASC"
	if q.Sort == "desc" {
		sort = "DESC"
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}
	query := fmt.Sprintf("SELECT %s FROM categories WHERE %s ORDER BY %s %s LIMIT ? OFFSET ?",
		categoryColumns, where, order, sort)
	rows, err := r.DB.QueryContext(ctx, query, append(args, q.Limit, (q.Page-1)*q.Limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	cats, err := collectCategories(rows)
	return cats, total, err
}

// GetLiveByID fetches one non-deleted category; (nil, nil) when absent.
func (r *CategoryRepo) GetLiveByID(ctx context.Context, id uint64) (*Category, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id=? AND deleted_at IS NULL LIMIT 1", id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindLiveByName detects duplicate display names among non-deleted rows.
func (r *CategoryRepo) FindLiveByName(ctx context.Context, name string) (*Category, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE name=? AND deleted_at IS NULL LIMIT 1", name)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// MaxPosition returns the highest position among live siblings of a parent
// (0 when the parent has no children yet).
func (r *CategoryRepo) MaxPosition(ctx context.Context, parentID sql.NullInt64) (int, error) {
	var max sql.NullInt64
	var err error
	if parentID.Valid {
		err = r.DB.QueryRowContext(ctx,
			"SELECT MAX(position) FROM categories WHERE parent_id=? AND deleted_at IS NULL",
			parentID.Int64).Scan(&max)
	} else {
		err = r.DB.QueryRowContext(ctx,
			"SELECT MAX(position) FROM categories WHERE parent_id IS NULL AND deleted_at IS NULL").Scan(&max)
	}
	if err != nil {
		return 0, err
	}
	return int(max.Int64), nil
}

// Create appends a category at the end of its sibling list.
func (r *CategoryRepo) Create(ctx context.Context, c Category) (Category, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO categories (name, slug, description, parent_id, position, is_active) VALUES (?,?,?,?,?,?)",
		c.Name, c.Slug, c.Description, c.ParentID, c.Position, c.IsActive)
	if err != nil {
		return Category{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Category{}, err
	}
	created, err := r.GetLiveByID(ctx, uint64(id))
	if err != nil {
		return Category{}, err
	}
	if created == nil {
		return Category{}, ErrNotFound
	}
	return *created, nil
}

// Update overwrites the mutable columns of a row.
func (r *CategoryRepo) Update(ctx context.Context, c Category) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE categories SET name=?, slug=?, description=?, parent_id=?, is_active=? WHERE id=?",
		c.Name, c.Slug, c.Description, c.ParentID, c.IsActive, c.ID)
	return err
}

// Reorder moves a category to a new position among its siblings. The sibling
// shift and the move itself run in one transaction so positions stay dense.
func (r *CategoryRepo) Reorder(ctx context.Context, c Category, newPosition int) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	parentCond := "parent_id IS NULL"
	args := []any{}
	if c.ParentID.Valid {
		parentCond = "parent_id=?"
		args = append(args, c.ParentID.Int64)
	}

	if newPosition > c.Position {
		// moving down: siblings in (old, new] shift up
		query := fmt.Sprintf(
			"UPDATE categories SET position=position-1 WHERE %s AND id<>? AND deleted_at IS NULL AND position > ? AND position <= ?",
			parentCond)
		if _, err := tx.ExecContext(ctx, query, append(args, c.ID, c.Position, newPosition)...); err != nil {
			return err
		}
	} else {
		// moving up: siblings in [new, old) shift down
		query := fmt.Sprintf(
			"UPDATE categories SET position=position+1 WHERE %s AND id<>? AND deleted_at IS NULL AND position >= ? AND position < ?",
			parentCond)
		if _, err := tx.ExecContext(ctx, query, append(args, c.ID, newPosition, c.Position)...); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE categories SET position=? WHERE id=?", newPosition, c.ID); err != nil {
		return err
	}
	return tx.Commit()
}

// SoftDeleteTree tombstones a category and its direct children: deleted_at
// set, position parked at -1, name and slug suffixed with a timestamp so the
// originals free up for reuse.
func (r *CategoryRepo) SoftDeleteTree(ctx context.Context, c Category) error {
	now := time.Now().UTC()
	stamp := now.UnixMilli()
	_, err := r.DB.ExecContext(ctx,
		`UPDATE categories
		 SET deleted_at=?, position=-1,
		     slug=CONCAT('deleted-', slug, '-', ?),
		     name=CONCAT('deleted-', name, '-', ?)
		 WHERE (id=? OR parent_id=?) AND deleted_at IS NULL`,
		now, stamp, stamp, c.ID, c.ID)
	return err
}

// SetActive flips the is_active flag; ErrNotFound when the row is missing or
// already in the requested state.
func (r *CategoryRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE categories SET is_active=? WHERE id=? AND is_active=? AND deleted_at IS NULL",
		active, id, !active)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCategory(row rowScanner) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.ParentID,
		&c.Position, &c.IsActive, &c.DeletedAt, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func collectCategories(rows *sql.Rows) ([]Category, error) {
	var out []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
