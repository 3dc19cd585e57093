package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/babyshop/api/internal/apperr"
	"github.com/babyshop/api/internal/cache"
	"github.com/babyshop/api/internal/config"
	"github.com/babyshop/api/internal/database"
	"github.com/babyshop/api/internal/handler"
	"github.com/babyshop/api/internal/location"
	"github.com/babyshop/api/internal/middleware"
	"github.com/babyshop/api/internal/queue"
	"github.com/babyshop/api/internal/rbac"
	"github.com/babyshop/api/internal/repository"
	"github.com/babyshop/api/internal/router"
	"github.com/babyshop/api/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "babyshop-api").Logger()
	if cfg.IsDev() {
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("database unreachable")
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn().Msg("redis unavailable; caching and rate limiting disabled")
	}
	store := cache.New(rdb, config.LoadCacheConfig())

	locations, err := location.New()
	if err != nil {
		log.Fatal().Err(err).Msg("location catalog failed to load")
	}
	resolver := rbac.NewResolver()

	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db)
	roles := repository.NewUserRoleRepo(db)
	addresses := repository.NewAddressRepo(db)
	categories := repository.NewCategoryRepo(db)
	products := repository.NewProductRepo(db)

	authSvc := service.NewAuthService(cfg, users, sessions, roles, service.NewAMQPAuditPublisher(log))
	addressSvc := service.NewAddressService(addresses, locations)
	categorySvc := service.NewCategoryService(categories, store)
	productSvc := service.NewProductService(products, categories, store)

	go queue.StartAuditConsumer()

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apperr.NewHTTPErrorHandler(log, cfg.IsDev())
	e.Use(echomw.Recover())
	e.Use(middleware.Identity())
	e.Use(middleware.RequestLogger(log))

	router.Register(e, router.Deps{
		Cfg:        cfg,
		Resolver:   resolver,
		Users:      users,
		Roles:      roles,
		Sessions:   sessions,
		RDB:        rdb,
		Health:     handler.NewHealthHandler(db, rdb),
		Auth:       handler.NewAuthHandler(cfg, authSvc),
		Addresses:  handler.NewAddressHandler(addressSvc),
		Categories: handler.NewCategoryHandler(categorySvc),
		Products:   handler.NewProductHandler(productSvc),
		Locations:  handler.NewLocationHandler(locations),
	})

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
	if err := e.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
