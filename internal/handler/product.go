package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/babyshop/api/internal/apperr"
	"github.com/babyshop/api/internal/repository"
	"github.com/babyshop/api/internal/service"
)

// ProductHandler exposes the public catalog reads and the admin product CRUD.
type ProductHandler struct {
	Products *service.ProductService
}

func NewProductHandler(products *service.ProductService) *ProductHandler {
	return &ProductHandler{Products: products}
}

type variantReq struct {
	SKU        string `json:"sku"`
	PriceCents uint32 `json:"priceCents"`
	IsActive   *bool  `json:"isActive"`
}

type productCreateReq struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	CategoryID  *uint64      `json:"categoryId"`
	IsPublished bool         `json:"isPublished"`
	Variants    []variantReq `json:"variants"`
}

type productUpdateReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	CategoryID  *uint64 `json:"categoryId"`
}

type variantDTO struct {
	ID         uint64 `json:"id"`
	SKU        string `json:"sku"`
	PriceCents uint32 `json:"priceCents"`
	IsActive   bool   `json:"isActive"`
}

type productDTO struct {
	ID          uint64       `json:"id"`
	CategoryID  *uint64      `json:"categoryId"`
	Name        string       `json:"name"`
	Slug        string       `json:"slug"`
	Description *string      `json:"description"`
	IsPublished bool         `json:"isPublished"`
	Variants    []variantDTO `json:"variants"`
	CreatedAt   string       `json:"createdAt"`
	UpdatedAt   string       `json:"updatedAt"`
}

// PublicList pages the published catalog.
func (h *ProductHandler) PublicList(c echo.Context) error {
	page, limit := pageParams(c)
	q := repository.ProductListQuery{
		Query: c.QueryParam("q"),
		Page:  page,
		Limit: limit,
		Sort:  c.QueryParam("sort"),
		Order: c.QueryParam("order"),
	}
	products, total, cached, err := h.Products.PublicList(c.Request().Context(), q)
	if err != nil {
		return err
	}
	out := make([]productDTO, 0, len(products))
	for _, p := range products {
		out = append(out, toProductDTO(p))
	}
	return respondMeta(c, http.StatusOK, out, pageMeta{Page: page, Limit: limit, Total: total, Cached: cached})
}

// PublicBySlug serves one published product by slug.
func (h *ProductHandler) PublicBySlug(c echo.Context) error {
	slug := c.Param("slug")
	if slug == "" {
		return apperr.Validation("", "invalid slug")
	}
	p, cached, err := h.Products.PublicBySlug(c.Request().Context(), slug)
	if err != nil {
		return err
	}
	return respondMeta(c, http.StatusOK, toProductDTO(p), cacheMeta{Cached: cached})
}

func (h *ProductHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.Products.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, toProductDTO(p))
}

func (h *ProductHandler) Create(c echo.Context) error {
	var req productCreateReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("", "malformed request body")
	}
	in := service.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		IsPublished: req.IsPublished,
	}
	for _, v := range req.Variants {
		active := true
		if v.IsActive != nil {
			active = *v.IsActive
		}
		in.Variants = append(in.Variants, service.VariantInput{SKU: v.SKU, PriceCents: v.PriceCents, IsActive: active})
	}
	p, err := h.Products.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, toProductDTO(p))
}

func (h *ProductHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req productUpdateReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("", "malformed request body")
	}
	p, err := h.Products.Update(c.Request().Context(), id, service.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, toProductDTO(p))
}

func (h *ProductHandler) Publish(c echo.Context) error   { return h.setPublished(c, true) }
func (h *ProductHandler) Unpublish(c echo.Context) error { return h.setPublished(c, false) }

func (h *ProductHandler) setPublished(c echo.Context, published bool) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Products.SetPublished(c.Request().Context(), id, published); err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"isPublished": published})
}

func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Products.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"deleted": true})
}

func toProductDTO(p repository.Product) productDTO {
	dto := productDTO{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		IsPublished: p.IsPublished,
		Variants:    make([]variantDTO, 0, len(p.Variants)),
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if p.CategoryID.Valid {
		v := uint64(p.CategoryID.Int64)
		dto.CategoryID = &v
	}
	if p.Description.Valid {
		v := p.Description.String
		dto.Description = &v
	}
	for _, v := range p.Variants {
		dto.Variants = append(dto.Variants, variantDTO{ID: v.ID, SKU: v.SKU, PriceCents: v.PriceCents, IsActive: v.IsActive})
	}
	return dto
}
