package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/babyshop/api/internal/apperr"
	"github.com/babyshop/api/internal/middleware"
	"github.com/babyshop/api/internal/repository"
	"github.com/babyshop/api/internal/service"
)

// AddressHandler exposes the authenticated user's address book.
type AddressHandler struct {
	Addresses *service.AddressService
}

func NewAddressHandler(addresses *service.AddressService) *AddressHandler {
	return &AddressHandler{Addresses: addresses}
}

type addressReq struct {
	FullName          string `json:"fullName"`
	Phone             string `json:"phone"`
	Label             string `json:"label"`
	Province          string `json:"province"`
	Ward              string `json:"ward"`
	AddressLine1      string `json:"addressLine1"`
	AddressLine2      string `json:"addressLine2"`
	PostalCode        string `json:"postalCode"`
	IsDefaultShipping bool   `json:"isDefaultShipping"`
}

type addressDTO struct {
	ID                uint64  `json:"id"`
	FullName          string  `json:"fullName"`
	Phone             string  `json:"phone"`
	Label             *string `json:"label"`
	Province          string  `json:"province"`
	Ward              string  `json:"ward"`
	AddressLine1      string  `json:"addressLine1"`
	AddressLine2      *string `json:"addressLine2"`
	PostalCode        *string `json:"postalCode"`
	IsDefaultShipping bool    `json:"isDefaultShipping"`
	CreatedAt         string  `json:"createdAt"`
	UpdatedAt         string  `json:"updatedAt"`
}

func (h *AddressHandler) List(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperr.Unauthorized("")
	}
	addrs, err := h.Addresses.List(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	out := make([]addressDTO, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, toAddressDTO(a))
	}
	return respond(c, http.StatusOK, out)
}

func (h *AddressHandler) Get(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperr.Unauthorized("")
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	a, err := h.Addresses.Get(c.Request().Context(), user.ID, id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, toAddressDTO(a))
}

func (h *AddressHandler) Create(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperr.Unauthorized("")
	}
	var req addressReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("", "malformed request body")
	}
	a, err := h.Addresses.Create(c.Request().Context(), user.ID, toAddressInput(req))
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, toAddressDTO(a))
}

func (h *AddressHandler) Update(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperr.Unauthorized("")
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req addressReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("", "malformed request body")
	}
	a, err := h.Addresses.Update(c.Request().Context(), user.ID, id, toAddressInput(req))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, toAddressDTO(a))
}

func (h *AddressHandler) Delete(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperr.Unauthorized("")
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Addresses.Delete(c.Request().Context(), user.ID, id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"deleted": true})
}

func toAddressInput(req addressReq) service.AddressInput {
	return service.AddressInput{
		FullName:          req.FullName,
		Phone:             req.Phone,
		Label:             req.Label,
		Province:          req.Province,
		Ward:              req.Ward,
		AddressLine1:      req.AddressLine1,
		AddressLine2:      req.AddressLine2,
		PostalCode:        req.PostalCode,
		IsDefaultShipping: req.IsDefaultShipping,
	}
}

func toAddressDTO(a repository.Address) addressDTO {
	dto := addressDTO{
		ID:                a.ID,
		FullName:          a.FullName,
		Phone:             a.Phone,
		Province:          a.Province,
		Ward:              a.Ward,
		AddressLine1:      a.AddressLine1,
		IsDefaultShipping: a.IsDefaultShipping,
		CreatedAt:         a.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:         a.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if a.Label.Valid {
		v := a.Label.String
		dto.Label = &v
	}
	if a.AddressLine2.Valid {
		v := a.AddressLine2.String
		dto.AddressLine2 = &v
	}
	if a.PostalCode.Valid {
		v := a.PostalCode.String
		dto.PostalCode = &v
	}
	return dto
}

// pathID parses a numeric :id path segment.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("", "invalid id")
	}
	return id, nil
}
