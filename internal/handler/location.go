package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/babyshop/api/internal/apperr"
	"github.com/babyshop/api/internal/location"
)

// LocationHandler serves the static province/ward catalog.
type LocationHandler struct {
	Locations *location.Index
}

func NewLocationHandler(locations *location.Index) *LocationHandler {
	return &LocationHandler{Locations: locations}
}

func (h *LocationHandler) Provinces(c echo.Context) error {
	return respond(c, http.StatusOK, h.Locations.Provinces())
}

func (h *LocationHandler) ProvinceWards(c echo.Context) error {
	code := c.Param("code")
	if _, ok := h.Locations.ProvinceByCode(code); !ok {
		return apperr.NotFound("province not found")
	}
	return respond(c, http.StatusOK, h.Locations.WardsByProvince(code))
}
