// Package router wires handlers, gates and permission requirements onto the
// Echo instance. Route groups mirror the permission catalog: public catalog
// reads, authenticated self-service routes and permission-gated admin routes.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/babyshop/api/internal/config"
	"github.com/babyshop/api/internal/handler"
	"github.com/babyshop/api/internal/middleware"
	"github.com/babyshop/api/internal/rbac"
)

// Deps bundles everything route registration needs.
type Deps struct {
	Cfg      config.Config
	Resolver *rbac.Resolver
	Users    middleware.UserLoader
	Roles    middleware.RoleLoader
	Sessions middleware.SessionChecker
	RDB      *redis.Client

	Health     *handler.HealthHandler
	Auth       *handler.AuthHandler
	Addresses  *handler.AddressHandler
	Categories *handler.CategoryHandler
	Products   *handler.ProductHandler
	Locations  *handler.LocationHandler
}

// Register mounts every route.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", d.Health.Health)

	v1 := e.Group("/v1")

	// Public catalog and location reads.
	v1.GET("/categories/tree", d.Categories.PublicTree)
	v1.GET("/products", d.Products.PublicList)
	v1.GET("/products/:slug", d.Products.PublicBySlug)
	v1.GET("/locations/provinces", d.Locations.Provinces)
	v1.GET("/locations/provinces/:code/wards", d.Locations.ProvinceWards)

	// Credential endpoints sit behind the token bucket; login and refresh
	// are the routes worth brute-forcing.
	auth := v1.Group("/auth", middleware.RateLimit(config.LoadRateLimitConfig(), d.RDB))
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh,
		middleware.RefreshGate(d.Cfg.RefreshTokenSecret, d.Users, d.Sessions))
	auth.POST("/logout", d.Auth.Logout)

	// Self-service routes require a live access token.
	me := v1.Group("", middleware.AccessGate(d.Cfg.AccessTokenSecret, d.Users, d.Roles))
	me.GET("/auth/me", d.Auth.Me)
	me.GET("/auth/sessions", d.Auth.Sessions,
		middleware.RequirePermissions(d.Resolver, rbac.PermSessionReadOwn))
	me.GET("/me/addresses", d.Addresses.List)
	me.POST("/me/addresses", d.Addresses.Create)
	me.GET("/me/addresses/:id", d.Addresses.Get)
	me.PUT("/me/addresses/:id", d.Addresses.Update)
	me.DELETE("/me/addresses/:id", d.Addresses.Delete)

	// Admin routes layer permission checks on top of the access gate.
	admin := v1.Group("/admin", middleware.AccessGate(d.Cfg.AccessTokenSecret, d.Users, d.Roles))

	cat := admin.Group("/categories")
	cat.GET("", d.Categories.List,
		middleware.RequirePermissions(d.Resolver, rbac.PermCategoryRead))
	cat.GET("/:id", d.Categories.Get,
		middleware.RequirePermissions(d.Resolver, rbac.PermCategoryRead))
	cat.POST("", d.Categories.Create,
		middleware.RequirePermissions(d.Resolver, rbac.PermCategoryCreate))
	cat.PATCH("/:id", d.Categories.Update,
		middleware.RequirePermissions(d.Resolver, rbac.PermCategoryUpdate))
	cat.PATCH("/:id/reorder", d.Categories.Reorder,
		middleware.RequirePermissions(d.Resolver, rbac.PermCategoryReorder))
	cat.PATCH("/:id/activate", d.Categories.Activate,
		middleware.RequirePermissions(d.Resolver, rbac.PermCategoryUpdate))
	cat.PATCH("/:id/deactivate", d.Categories.Deactivate,
		middleware.RequirePermissions(d.Resolver, rbac.PermCategoryUpdate))
	cat.DELETE("/:id", d.Categories.Delete,
		middleware.RequirePermissions(d.Resolver, rbac.PermCategoryDelete))

	prod := admin.Group("/products")
	prod.GET("/:id", d.Products.Get,
		middleware.RequirePermissions(d.Resolver, rbac.PermProductRead))
	prod.POST("", d.Products.Create,
		middleware.RequirePermissions(d.Resolver, rbac.PermProductCreate))
	prod.PATCH("/:id", d.Products.Update,
		middleware.RequirePermissions(d.Resolver, rbac.PermProductUpdate))
	prod.PATCH("/:id/publish", d.Products.Publish,
		middleware.RequirePermissions(d.Resolver, rbac.PermProductPublish))
	prod.PATCH("/:id/unpublish", d.Products.Unpublish,
		middleware.RequirePermissions(d.Resolver, rbac.PermProductPublish))
	prod.DELETE("/:id", d.Products.Delete,
		middleware.RequirePermissions(d.Resolver, rbac.PermProductDelete))
}
