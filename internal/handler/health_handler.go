package handler

import (
	"context"
	"time"

	"exam-express/internal/domain"
	"exam-express/internal/dto"
	"exam-express/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is satisfied by *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db    Pinger
	cache domain.Cache
}

func NewHealthHandler(db Pinger, cache domain.Cache) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Check reports whether the database and cache are reachable.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthCheckTimeout)
	defer cancel()

	resp := dto.HealthResponse{Status: "ok", Database: "ok", Cache: "ok"}
	status := fiber.StatusOK
	if err := h.db.PingContext(ctx); err != nil {
		logger.Get().Warn("Health check: database unreachable", zap.Error(err))
		resp.Database = "unavailable"
		resp.Status = "degraded"
		status = fiber.StatusServiceUnavailable
	}
	// the cache is optional, so an unreachable cache degrades but does not fail the check
	if err := h.cache.Ping(ctx); err != nil {
		logger.Get().Warn("Health check: cache unreachable", zap.Error(err))
		resp.Cache = "unavailable"
		resp.Status = "degraded"
	}
	return c.Status(status).JSON(resp)
}
