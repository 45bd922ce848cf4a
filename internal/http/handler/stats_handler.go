package handler

import (
	"github.com/Carlos20473736/monetag-tracker/internal/app/service"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// StatsHandler serves per-user counters keyed by email.
type StatsHandler struct {
	logger *zap.Logger
	stats  service.StatsService
}

// NewStatsHandler creates a stats handler.
func NewStatsHandler(logger *zap.Logger, stats service.StatsService) *StatsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsHandler{logger: logger, stats: stats}
}

// Register wires stats routes onto the provided router.
func (h *StatsHandler) Register(router fiber.Router) {
	router.Get("/monetag/stats", h.ForEmail)
}

// ForEmail handles GET /monetag/stats?email=
func (h *StatsHandler) ForEmail(c *fiber.Ctx) error {
	stats, err := h.stats.ForEmail(requestContext(c), c.Query("email"))
	if err != nil {
		return fail(c, h.logger, "failed to compute user stats", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    stats,
	})
}
