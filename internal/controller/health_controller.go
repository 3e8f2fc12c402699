package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"carecompanion-be/internal/pkg/serverutils"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
	Ping(ctx *fiber.Ctx) error
}

type healthController struct {
	db    *gorm.DB
	cache *redis.Client
}

func NewHealthController(db *gorm.DB, cache *redis.Client) IHealthController {
	return &healthController{db: db, cache: cache}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/health/v1")
	h.Get("", c.Health)
	h.Get("ping", c.Ping)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	checks := map[string]string{}
	healthy := true

	if c.db != nil {
		if sqlDB, err := c.db.DB(); err != nil || sqlDB.PingContext(ctx.Context()) != nil {
			checks["database"] = "unreachable"
			healthy = false
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
		healthy = false
	}

	if c.cache != nil {
		if err := c.cache.Ping(ctx.Context()).Err(); err != nil {
			checks["cache"] = "unreachable" // degraded, search still works
		} else {
			checks["cache"] = "ok"
		}
	} else {
		checks["cache"] = "not configured"
	}

	status := "healthy"
	code := fiber.StatusOK
	if !healthy {
		status = "degraded"
		code = fiber.StatusServiceUnavailable
	}

	return ctx.Status(code).JSON(serverutils.SuccessResponse(status, checks))
}

func (c *healthController) Ping(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("pong", fiber.Map{}))
}
