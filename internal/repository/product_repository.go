package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Product mirrors the 'products' table. Variants are loaded alongside for
// listing responses; a product is publicly visible only when published,
// live, and holding at least one active variant.
type Product struct {
	ID          uint64
	CategoryID  sql.NullInt64
	Name        string
	Slug        string
	Description sql.NullString
	IsPublished bool
	DeletedAt   sql.NullTime
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Variants    []ProductVariant
}

// ProductVariant mirrors the 'product_variants' table.
type ProductVariant struct {
	ID         uint64
	ProductID  uint64
	SKU        string
	PriceCents uint32
	IsActive   bool
}

// ProductListQuery narrows and pages product listings.
type ProductListQuery struct {
	Query string // substring match on name
	Page  int
	Limit int
	Sort  string // column name, validated here
	Order string // asc | desc
}

type ProductRepo struct{ DB *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{DB: db} }

const productColumns = "id,category_id,name,slug,description,is_published,deleted_at,created_at,updated_at"

// publicWhere limits rows to what guests may see.
const publicWhere = "p.deleted_at IS NULL AND p.is_published=1 AND EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id=p.id AND v.is_active=1)"

// PublicList pages the published products with their variants and returns
// the total matching row count.
func (r *ProductRepo) PublicList(ctx context.Context, q ProductListQuery) ([]Product, int, error) {
	where := publicWhere
	args := []any{}
	if q.Query != "" {
		where += " AND p.name LIKE ?"
		args = append(args, "%"+q.Query+"%")
	}

	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM products p WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sort := "created_at"
	switch q.Sort {
	case "name", "created_at", "updated_at":
		sort = q.Sort
	}
	order := "DESC"
	if strings.EqualFold(q.Order, "asc") {
		order = "ASC"
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}
	query := fmt.Sprintf(
		"SELECT %s FROM products p WHERE %s ORDER BY p.%s %s LIMIT ? OFFSET ?",
		prefixed(productColumns, "p"), where, sort, order)
	rows, err := r.DB.QueryContext(ctx, query, append(args, q.Limit, (q.Page-1)*q.Limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	products, err := collectProducts(rows)
	if err != nil {
		return nil, 0, err
	}
	if err := r.attachVariants(ctx, products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetPublicBySlug fetches one publicly visible product; (nil, nil) if absent.
func (r *ProductRepo) GetPublicBySlug(ctx context.Context, slug string) (*Product, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+prefixed(productColumns, "p")+" FROM products p WHERE p.slug=? AND "+publicWhere+" LIMIT 1", slug)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ps := []Product{p}
	if err := r.attachVariants(ctx, ps); err != nil {
		return nil, err
	}
	return &ps[0], nil
}

// GetLiveByID fetches one non-deleted product regardless of publish state
// (admin view); (nil, nil) when absent.
func (r *ProductRepo) GetLiveByID(ctx context.Context, id uint64) (*Product, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id=? AND deleted_at IS NULL LIMIT 1", id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ps := []Product{p}
	if err := r.attachVariants(ctx, ps); err != nil {
		return nil, err
	}
	return &ps[0], nil
}

// SlugExists reports whether any row (deleted included) holds the slug; slugs
// are globally unique.
func (r *ProductRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM products WHERE slug=? LIMIT 1", slug).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create inserts a product with its initial variants in one transaction.
func (r *ProductRepo) Create(ctx context.Context, p Product) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO products (category_id, name, slug, description, is_published) VALUES (?,?,?,?,?)",
		p.CategoryID, p.Name, p.Slug, p.Description, p.IsPublished)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, v := range p.Variants {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO product_variants (product_id, sku, price_cents, is_active) VALUES (?,?,?,?)",
			id, v.SKU, v.PriceCents, v.IsActive); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update overwrites the mutable columns of a product row.
func (r *ProductRepo) Update(ctx context.Context, p Product) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE products SET category_id=?, name=?, slug=?, description=? WHERE id=? AND deleted_at IS NULL",
		p.CategoryID, p.Name, p.Slug, p.Description, p.ID)
	return err
}

// SetPublished flips publish state; ErrNotFound when missing or unchanged.
func (r *ProductRepo) SetPublished(ctx context.Context, id uint64, published bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE products SET is_published=? WHERE id=? AND is_published=? AND deleted_at IS NULL",
		published, id, !published)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete tombstones a product; the slug is suffixed so it frees up.
func (r *ProductRepo) SoftDelete(ctx context.Context, p Product) error {
	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx,
		"UPDATE products SET deleted_at=?, is_published=0, slug=CONCAT('deleted-', slug, '-', ?) WHERE id=? AND deleted_at IS NULL",
		now, now.UnixMilli(), p.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// attachVariants loads variants for a page of products with one IN query.
func (r *ProductRepo) attachVariants(ctx context.Context, products []Product) error {
	if len(products) == 0 {
		return nil
	}
	idx := make(map[uint64]*Product, len(products))
	placeholders := make([]string, 0, len(products))
	args := make([]any, 0, len(products))
	for i := range products {
		idx[products[i].ID] = &products[i]
		placeholders = append(placeholders, "?")
		args = append(args, products[i].ID)
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,product_id,sku,price_cents,is_active FROM product_variants WHERE product_id IN ("+strings.Join(placeholders, ",")+") ORDER BY id ASC",
		args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var v ProductVariant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.PriceCents, &v.IsActive); err != nil {
			return err
		}
		if p, ok := idx[v.ProductID]; ok {
			p.Variants = append(p.Variants, v)
		}
	}
	return rows.Err()
}

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Slug, &p.Description,
		&p.IsPublished, &p.DeletedAt, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func collectProducts(rows *sql.Rows) ([]Product, error) {
	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// prefixed qualifies a comma-separated column list with a table alias.
func prefixed(columns, alias string) string {
	parts := strings.Split(columns, ",")
	for i, c := range parts {
		parts[i] = alias + "." + c
	}
	return strings.Join(parts, ",")
}
