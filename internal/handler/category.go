package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/babyshop/api/internal/apperr"
	"github.com/babyshop/api/internal/repository"
	"github.com/babyshop/api/internal/service"
)

// CategoryHandler exposes the public tree and the admin category CRUD.
type CategoryHandler struct {
	Categories *service.CategoryService
}

func NewCategoryHandler(categories *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{Categories: categories}
}

type categoryCreateReq struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ParentID    *uint64 `json:"parentId"`
	IsActive    *bool   `json:"isActive"`
}

type categoryUpdateReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ParentID    *uint64 `json:"parentId"`
	IsActive    *bool   `json:"isActive"`
	Position    *int    `json:"position"`
}

type categoryReorderReq struct {
	Position int `json:"position"`
}

type categoryDTO struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
	ParentID    *uint64 `json:"parentId"`
	Position    int     `json:"position"`
	IsActive    bool    `json:"isActive"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

// PublicTree serves the nested active-category tree, cached in Redis.
func (h *CategoryHandler) PublicTree(c echo.Context) error {
	tree, cached, err := h.Categories.PublicTree(c.Request().Context())
	if err != nil {
		return err
	}
	return respondMeta(c, http.StatusOK, tree, cacheMeta{Cached: cached})
}

// List pages the admin listing with optional name and active filters.
func (h *CategoryHandler) List(c echo.Context) error {
	page, limit := pageParams(c)
	q := repository.CategoryListQuery{
		Query: c.QueryParam("q"),
		Page:  page,
		Limit: limit,
		Order: c.QueryParam("order"),
		Sort:  c.QueryParam("sort"),
	}
	switch c.QueryParam("isActive") {
	case "true":
		v := true
		q.IsActive = &v
	case "false":
		v := false
		q.IsActive = &v
	}
	cats, total, err := h.Categories.List(c.Request().Context(), q)
	if err != nil {
		return err
	}
	out := make([]categoryDTO, 0, len(cats))
	for _, cat := range cats {
		out = append(out, toCategoryDTO(cat))
	}
	return respondMeta(c, http.StatusOK, out, pageMeta{Page: page, Limit: limit, Total: total})
}

func (h *CategoryHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	cat, err := h.Categories.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, toCategoryDTO(cat))
}

func (h *CategoryHandler) Create(c echo.Context) error {
	var req categoryCreateReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("", "malformed request body")
	}
	in := service.CreateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
		IsActive:    true,
	}
	if req.IsActive != nil {
		in.IsActive = *req.IsActive
	}
	cat, err := h.Categories.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, toCategoryDTO(cat))
}

func (h *CategoryHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req categoryUpdateReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("", "malformed request body")
	}
	cat, err := h.Categories.Update(c.Request().Context(), id, service.UpdateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
		IsActive:    req.IsActive,
		Position:    req.Position,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, toCategoryDTO(cat))
}

func (h *CategoryHandler) Reorder(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req categoryReorderReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("", "malformed request body")
	}
	if err := h.Categories.Reorder(c.Request().Context(), id, req.Position); err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"reordered": true})
}

func (h *CategoryHandler) Activate(c echo.Context) error   { return h.setActive(c, true) }
func (h *CategoryHandler) Deactivate(c echo.Context) error { return h.setActive(c, false) }

func (h *CategoryHandler) setActive(c echo.Context, active bool) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Categories.SetActive(c.Request().Context(), id, active); err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"isActive": active})
}

func (h *CategoryHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Categories.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"deleted": true})
}

func toCategoryDTO(cat repository.Category) categoryDTO {
	dto := categoryDTO{
		ID:        cat.ID,
		Name:      cat.Name,
		Slug:      cat.Slug,
		Position:  cat.Position,
		IsActive:  cat.IsActive,
		CreatedAt: cat.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: cat.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if cat.Description.Valid {
		v := cat.Description.String
		dto.Description = &v
	}
	if cat.ParentID.Valid {
		v := uint64(cat.ParentID.Int64)
		dto.ParentID = &v
	}
	return dto
}
