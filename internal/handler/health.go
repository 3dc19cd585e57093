package handler

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// HealthHandler reports process liveness and dependency reachability.
type HealthHandler struct {
	DB  *sql.DB
	RDB *redis.Client
}

func NewHealthHandler(db *sql.DB, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{DB: db, RDB: rdb}
}

func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := withTimeout(c, 2*time.Second)
	defer cancel()

	dbStatus := "up"
	if err := h.DB.PingContext(ctx); err != nil {
		dbStatus = "down"
	}
	redisStatus := "disabled"
	if h.RDB != nil {
		redisStatus = "up"
		if err := h.RDB.Ping(ctx).Err(); err != nil {
			redisStatus = "down"
		}
	}

	status := http.StatusOK
	if dbStatus == "down" {
		status = http.StatusServiceUnavailable
	}
	return respond(c, status, echo.Map{
		"db":    dbStatus,
		"redis": redisStatus,
		"time":  time.Now().UTC().Format(time.RFC3339),
	})
}
