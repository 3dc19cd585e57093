// Package handler holds the HTTP surface: request DTOs, binding and the
// translation between transport concerns (cookies, paging params) and the
// service layer.
package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/babyshop/api/internal/middleware"
)

// envelope is the wire shape of every success response.
type envelope struct {
	Status    string `json:"status"`
	Data      any    `json:"data"`
	Meta      any    `json:"meta,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// pageMeta accompanies list responses.
type pageMeta struct {
	Page   int  `json:"page"`
	Limit  int  `json:"limit"`
	Total  int  `json:"total"`
	Cached bool `json:"cached,omitempty"`
}

// cacheMeta is the meta block for unpaged cached reads.
type cacheMeta struct {
	Cached bool `json:"cached"`
}

func respond(c echo.Context, status int, data any) error {
	return c.JSON(status, envelope{Status: "success", Data: data, RequestID: middleware.RequestID(c)})
}

func respondMeta(c echo.Context, status int, data, meta any) error {
	return c.JSON(status, envelope{Status: "success", Data: data, Meta: meta, RequestID: middleware.RequestID(c)})
}

func withTimeout(c echo.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), d)
}

// pageParams reads ?page and ?limit with sane defaults and a cap.
func pageParams(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
