package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/babyshop/api/internal/apperr"
	"github.com/babyshop/api/internal/cache"
	"github.com/babyshop/api/internal/repository"
	"github.com/babyshop/api/internal/utils"
)

// cacheKeyCategoryTree versions the public-tree payload so a shape change
// only needs a version bump, not a flush.
const cacheKeyCategoryTree = "category:public-tree:v1"

// CategoryNode is one node of the public category tree.
type CategoryNode struct {
	ID       uint64          `json:"id"`
	Name     string          `json:"name"`
	Slug     string          `json:"slug"`
	ParentID *uint64         `json:"parentId"`
	Children []*CategoryNode `json:"children"`
}

// CreateCategoryInput is the admin create payload after binding.
type CreateCategoryInput struct {
	Name        string
	Description string
	ParentID    *uint64
	IsActive    bool
}

// UpdateCategoryInput carries only the fields the caller wants changed.
type UpdateCategoryInput struct {
	Name        *string
	Description *string
	ParentID    *uint64
	IsActive    *bool
	Position    *int
}

// CategoryService implements the public tree endpoint and the admin CRUD.
// Reads go through the Redis cache; every write that can affect the public
// tree drops the cached payload.
type CategoryService struct {
	repo  *repository.CategoryRepo
	cache *cache.Store
}

func NewCategoryService(repo *repository.CategoryRepo, store *cache.Store) *CategoryService {
	return &CategoryService{repo: repo, cache: store}
}

// PublicTree returns the nested active-category tree. The cached flag tells
// handlers whether the payload came from Redis.
func (s *CategoryService) PublicTree(ctx context.Context) ([]*CategoryNode, bool, error) {
	if bs, ok := s.cache.Get(ctx, cacheKeyCategoryTree); ok {
		var tree []*CategoryNode
		if err := json.Unmarshal(bs, &tree); err == nil {
			return tree, true, nil
		}
		// Unreadable payload: fall through and rebuild.
	}

	cats, err := s.repo.PublicActive(ctx)
	if err != nil {
		return nil, false, apperr.Internal("")
	}
	tree := BuildCategoryTree(cats)

	// Best-effort population; concurrent rebuilds are tolerated and the last
	// serialized payload wins.
	if bs, err := json.Marshal(tree); err == nil {
		_ = s.cache.SetEx(ctx, cacheKeyCategoryTree, bs, 0)
	}
	return tree, false, nil
}

// BuildCategoryTree nests rows already ordered by parent, position, name.
// Rows whose parent is missing from the set (inactive or deleted parent)
// surface as roots rather than disappearing.
func BuildCategoryTree(cats []repository.Category) []*CategoryNode {
	nodes := make(map[uint64]*CategoryNode, len(cats))
	order := make([]*CategoryNode, 0, len(cats))
	for _, c := range cats {
		n := &CategoryNode{ID: c.ID, Name: c.Name, Slug: c.Slug}
		if c.ParentID.Valid {
			pid := uint64(c.ParentID.Int64)
			n.ParentID = &pid
		}
		nodes[c.ID] = n
		order = append(order, n)
	}
	roots := make([]*CategoryNode, 0)
	for _, n := range order {
		if n.ParentID != nil {
			if parent, ok := nodes[*n.ParentID]; ok {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots
}

// List pages the admin category listing.
func (s *CategoryService) List(ctx context.Context, q repository.CategoryListQuery) ([]repository.Category, int, error) {
	cats, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, 0, apperr.Internal("")
	}
	return cats, total, nil
}

// GetByID returns one live category or NotFound.
func (s *CategoryService) GetByID(ctx context.Context, id uint64) (repository.Category, error) {
	c, err := s.repo.GetLiveByID(ctx, id)
	if err != nil {
		return repository.Category{}, apperr.Internal("")
	}
	if c == nil {
		return repository.Category{}, apperr.NotFound("category not found")
	}
	return *c, nil
}

// Create inserts a category at the tail of its sibling list. Display names
// must be unique among live rows; the slug derives from the name.
func (s *CategoryService) Create(ctx context.Context, in CreateCategoryInput) (repository.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return repository.Category{}, apperr.Validation("", "name is required")
	}
	existing, err := s.repo.FindLiveByName(ctx, name)
	if err != nil {
		return repository.Category{}, apperr.Internal("")
	}
	if existing != nil {
		return repository.Category{}, apperr.Conflict("category already exists")
	}

	c := repository.Category{
		Name:     name,
		Slug:     utils.Slugify(name),
		IsActive: in.IsActive,
	}
	if in.Description != "" {
		c.Description = sql.NullString{String: in.Description, Valid: true}
	}
	if in.ParentID != nil {
		parent, err := s.repo.GetLiveByID(ctx, *in.ParentID)
		if err != nil {
			return repository.Category{}, apperr.Internal("")
		}
		if parent == nil {
			return repository.Category{}, apperr.NotFound("parent category not found")
		}
		c.ParentID = sql.NullInt64{Int64: int64(*in.ParentID), Valid: true}
	}

	maxPos, err := s.repo.MaxPosition(ctx, c.ParentID)
	if err != nil {
		return repository.Category{}, apperr.Internal("")
	}
	c.Position = maxPos + 1

	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return repository.Category{}, apperr.Internal("could not create category")
	}
	if created.IsActive {
		_ = s.cache.Del(ctx, cacheKeyCategoryTree)
	}
	return created, nil
}

// Update applies partial changes. A position change moves the category among
// its siblings in the same transaction as the sibling shift.
func (s *CategoryService) Update(ctx context.Context, id uint64, in UpdateCategoryInput) (repository.Category, error) {
	found, err := s.repo.GetLiveByID(ctx, id)
	if err != nil {
		return repository.Category{}, apperr.Internal("")
	}
	if found == nil {
		return repository.Category{}, apperr.NotFound("category not found")
	}

	c := *found
	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		c.Name = strings.TrimSpace(*in.Name)
		c.Slug = utils.Slugify(c.Name)
	}
	if in.Description != nil {
		c.Description = sql.NullString{String: *in.Description, Valid: *in.Description != ""}
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if in.ParentID != nil {
		if *in.ParentID == id {
			return repository.Category{}, apperr.Validation("", "category cannot be its own parent")
		}
		parent, err := s.repo.GetLiveByID(ctx, *in.ParentID)
		if err != nil {
			return repository.Category{}, apperr.Internal("")
		}
		if parent == nil {
			return repository.Category{}, apperr.NotFound("parent category not found")
		}
		c.ParentID = sql.NullInt64{Int64: int64(*in.ParentID), Valid: true}
	}

	if in.Position != nil && *in.Position != found.Position {
		if err := s.validatePosition(ctx, *found, *in.Position); err != nil {
			return repository.Category{}, err
		}
		if err := s.repo.Reorder(ctx, *found, *in.Position); err != nil {
			return repository.Category{}, apperr.Internal("")
		}
		c.Position = *in.Position
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return repository.Category{}, apperr.Internal("")
	}
	_ = s.cache.Del(ctx, cacheKeyCategoryTree)
	return c, nil
}

// Reorder moves a category to a new position among its siblings.
func (s *CategoryService) Reorder(ctx context.Context, id uint64, position int) error {
	found, err := s.repo.GetLiveByID(ctx, id)
	if err != nil {
		return apperr.Internal("")
	}
	if found == nil {
		return apperr.NotFound("category not found")
	}
	if position == found.Position {
		return nil
	}
	if err := s.validatePosition(ctx, *found, position); err != nil {
		return err
	}
	if err := s.repo.Reorder(ctx, *found, position); err != nil {
		return apperr.Internal("")
	}
	_ = s.cache.Del(ctx, cacheKeyCategoryTree)
	return nil
}

// Delete soft-deletes a category and its direct children.
func (s *CategoryService) Delete(ctx context.Context, id uint64) error {
	found, err := s.repo.GetLiveByID(ctx, id)
	if err != nil {
		return apperr.Internal("")
	}
	if found == nil {
		return apperr.NotFound("category not found")
	}
	if err := s.repo.SoftDeleteTree(ctx, *found); err != nil {
		return apperr.Internal("")
	}
	_ = s.cache.Del(ctx, cacheKeyCategoryTree)
	return nil
}

// SetActive activates or deactivates a category.
func (s *CategoryService) SetActive(ctx context.Context, id uint64, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		if err == repository.ErrNotFound {
			return apperr.NotFound("category not found")
		}
		return apperr.Internal("")
	}
	_ = s.cache.Del(ctx, cacheKeyCategoryTree)
	return nil
}

func (s *CategoryService) validatePosition(ctx context.Context, c repository.Category, position int) error {
	maxPos, err := s.repo.MaxPosition(ctx, c.ParentID)
	if err != nil {
		return apperr.Internal("")
	}
	if position < 1 || position > maxPos {
		return apperr.Validation("", "position out of range")
	}
	return nil
}
