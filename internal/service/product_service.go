package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/babyshop/api/internal/apperr"
	"github.com/babyshop/api/internal/cache"
	"github.com/babyshop/api/internal/repository"
	"github.com/babyshop/api/internal/utils"
)

// slugProbeLimit caps how many '-N' suffixes we try before giving up.
const slugProbeLimit = 50

// VariantInput is one variant row of a product create payload.
type VariantInput struct {
	SKU        string
	PriceCents uint32
	IsActive   bool
}

// CreateProductInput is the admin create payload after binding.
type CreateProductInput struct {
	Name        string
	Description string
	CategoryID  *uint64
	IsPublished bool
	Variants    []VariantInput
}

// UpdateProductInput carries only the fields the caller wants changed.
type UpdateProductInput struct {
	Name        *string
	Description *string
	CategoryID  *uint64
}

// productPage is the cached shape of one public listing page.
type productPage struct {
	Data  []repository.Product `json:"data"`
	Total int                  `json:"total"`
}

// ProductService serves the public catalog reads through Redis and keeps
// admin writes invalidating the affected keys.
type ProductService struct {
	repo       *repository.ProductRepo
	categories *repository.CategoryRepo
	cache      *cache.Store
}

func NewProductService(repo *repository.ProductRepo, categories *repository.CategoryRepo, store *cache.Store) *ProductService {
	return &ProductService{repo: repo, categories: categories, cache: store}
}

// PublicList pages published products. Each distinct query shape has its own
// cache key; writes clear them all by prefix.
func (s *ProductService) PublicList(ctx context.Context, q repository.ProductListQuery) ([]repository.Product, int, bool, error) {
	key := listCacheKey(q)
	if bs, ok := s.cache.Get(ctx, key); ok {
		var page productPage
		if err := json.Unmarshal(bs, &page); err == nil {
			return page.Data, page.Total, true, nil
		}
	}

	products, total, err := s.repo.PublicList(ctx, q)
	if err != nil {
		return nil, 0, false, apperr.Internal("")
	}
	if bs, err := json.Marshal(productPage{Data: products, Total: total}); err == nil {
		_ = s.cache.SetEx(ctx, key, bs, 0)
	}
	return products, total, false, nil
}

// PublicBySlug returns one publicly visible product.
func (s *ProductService) PublicBySlug(ctx context.Context, slug string) (repository.Product, bool, error) {
	key := "product:slug:" + slug
	if bs, ok := s.cache.Get(ctx, key); ok {
		var p repository.Product
		if err := json.Unmarshal(bs, &p); err == nil {
			return p, true, nil
		}
	}

	p, err := s.repo.GetPublicBySlug(ctx, slug)
	if err != nil {
		return repository.Product{}, false, apperr.Internal("")
	}
	if p == nil {
		return repository.Product{}, false, apperr.NotFound("product not found")
	}
	if bs, err := json.Marshal(p); err == nil {
		_ = s.cache.SetEx(ctx, key, bs, 0)
	}
	return *p, false, nil
}

// GetByID returns one live product for the admin view.
func (s *ProductService) GetByID(ctx context.Context, id uint64) (repository.Product, error) {
	p, err := s.repo.GetLiveByID(ctx, id)
	if err != nil {
		return repository.Product{}, apperr.Internal("")
	}
	if p == nil {
		return repository.Product{}, apperr.NotFound("product not found")
	}
	return *p, nil
}

// Create inserts a product with its variants. The slug derives from the name
// and is suffixed until unique.
func (s *ProductService) Create(ctx context.Context, in CreateProductInput) (repository.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return repository.Product{}, apperr.Validation("", "name is required")
	}
	if len(in.Variants) == 0 {
		return repository.Product{}, apperr.Validation("", "at least one variant is required")
	}

	slug, err := s.ensureUniqueSlug(ctx, utils.Slugify(name))
	if err != nil {
		return repository.Product{}, err
	}

	p := repository.Product{
		Name:        name,
		Slug:        slug,
		IsPublished: in.IsPublished,
	}
	if in.Description != "" {
		p.Description = sql.NullString{String: in.Description, Valid: true}
	}
	if in.CategoryID != nil {
		cat, err := s.categories.GetLiveByID(ctx, *in.CategoryID)
		if err != nil {
			return repository.Product{}, apperr.Internal("")
		}
		if cat == nil {
			return repository.Product{}, apperr.NotFound("category not found")
		}
		p.CategoryID = sql.NullInt64{Int64: int64(*in.CategoryID), Valid: true}
	}
	for _, v := range in.Variants {
		if strings.TrimSpace(v.SKU) == "" {
			return repository.Product{}, apperr.Validation("", "variant sku is required")
		}
		p.Variants = append(p.Variants, repository.ProductVariant{
			SKU:        strings.TrimSpace(v.SKU),
			PriceCents: v.PriceCents,
			IsActive:   v.IsActive,
		})
	}

	id, err := s.repo.Create(ctx, p)
	if err != nil {
		return repository.Product{}, apperr.Internal("could not create product")
	}
	s.invalidate(ctx, slug)
	return s.GetByID(ctx, id)
}

// Update applies partial changes to a live product. Renaming re-slugs.
func (s *ProductService) Update(ctx context.Context, id uint64, in UpdateProductInput) (repository.Product, error) {
	found, err := s.repo.GetLiveByID(ctx, id)
	if err != nil {
		return repository.Product{}, apperr.Internal("")
	}
	if found == nil {
		return repository.Product{}, apperr.NotFound("product not found")
	}

	p := *found
	oldSlug := p.Slug
	if in.Name != nil && strings.TrimSpace(*in.Name) != "" && strings.TrimSpace(*in.Name) != p.Name {
		p.Name = strings.TrimSpace(*in.Name)
		slug, err := s.ensureUniqueSlug(ctx, utils.Slugify(p.Name))
		if err != nil {
			return repository.Product{}, err
		}
		p.Slug = slug
	}
	if in.Description != nil {
		p.Description = sql.NullString{String: *in.Description, Valid: *in.Description != ""}
	}
	if in.CategoryID != nil {
		cat, err := s.categories.GetLiveByID(ctx, *in.CategoryID)
		if err != nil {
			return repository.Product{}, apperr.Internal("")
		}
		if cat == nil {
			return repository.Product{}, apperr.NotFound("category not found")
		}
		p.CategoryID = sql.NullInt64{Int64: int64(*in.CategoryID), Valid: true}
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return repository.Product{}, apperr.Internal("")
	}
	s.invalidate(ctx, oldSlug, p.Slug)
	return s.GetByID(ctx, id)
}

// SetPublished flips the publish flag.
func (s *ProductService) SetPublished(ctx context.Context, id uint64, published bool) error {
	found, err := s.repo.GetLiveByID(ctx, id)
	if err != nil {
		return apperr.Internal("")
	}
	if found == nil {
		return apperr.NotFound("product not found")
	}
	if found.IsPublished == published {
		return nil
	}
	if err := s.repo.SetPublished(ctx, id, published); err != nil {
		if err == repository.ErrNotFound {
			return apperr.NotFound("product not found")
		}
		return apperr.Internal("")
	}
	s.invalidate(ctx, found.Slug)
	return nil
}

// Delete soft-deletes a product.
func (s *ProductService) Delete(ctx context.Context, id uint64) error {
	found, err := s.repo.GetLiveByID(ctx, id)
	if err != nil {
		return apperr.Internal("")
	}
	if found == nil {
		return apperr.NotFound("product not found")
	}
	if err := s.repo.SoftDelete(ctx, *found); err != nil {
		if err == repository.ErrNotFound {
			return apperr.NotFound("product not found")
		}
		return apperr.Internal("")
	}
	s.invalidate(ctx, found.Slug)
	return nil
}

// ensureUniqueSlug probes '-2', '-3', ... until the slug is free.
func (s *ProductService) ensureUniqueSlug(ctx context.Context, base string) (string, error) {
	if base == "" {
		base = "product"
	}
	slug := base
	for i := 2; ; i++ {
		taken, err := s.repo.SlugExists(ctx, slug)
		if err != nil {
			return "", apperr.Internal("")
		}
		if !taken {
			return slug, nil
		}
		if i > slugProbeLimit {
			return "", apperr.Conflict("could not allocate a unique slug")
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// invalidate drops the listing pages and the given slug keys. Listing keys
// share a prefix so one Del per known page shape is not needed; the store
// scans by prefix.
func (s *ProductService) invalidate(ctx context.Context, slugs ...string) {
	keys := []string{}
	for _, slug := range slugs {
		if slug != "" {
			keys = append(keys, "product:slug:"+slug)
		}
	}
	if len(keys) > 0 {
		_ = s.cache.Del(ctx, keys...)
	}
	_ = s.cache.DelPrefix(ctx, "product:list:")
}

func listCacheKey(q repository.ProductListQuery) string {
	return fmt.Sprintf("product:list:q=%s&page=%d&limit=%d&sort=%s&order=%s",
		q.Query, q.Page, q.Limit, q.Sort, q.Order)
}
