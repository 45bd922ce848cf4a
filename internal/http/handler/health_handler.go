package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const readyTimeout = 2 * time.Second

// Pinger reports whether the backing store answers.
type Pinger func(ctx context.Context) error

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	logger *zap.Logger
	ping   Pinger
}

// NewHealthHandler creates a health handler. A nil ping means no store is
// configured.
func NewHealthHandler(logger *zap.Logger, ping Pinger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{logger: logger, ping: ping}
}

// Register wires health routes onto the provided router.
func (h *HealthHandler) Register(router fiber.Router) {
	router.Get("/monetag/health", h.Health)
	router.Get("/ready", h.Ready)
}

// Health always answers 200 while the process is serving.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success":   true,
		"message":   "Monetag postback endpoint is healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready answers 503 unless the store responds to a ping.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	state := "up"
	if h.ping == nil {
		state = "unconfigured"
	} else {
		ctx, cancel := context.WithTimeout(requestContext(c), readyTimeout)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			h.logger.Warn("readiness ping failed", zap.Error(err))
			state = "down"
		}
	}

	status := fiber.StatusOK
	if state != "up" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{
		"success":  state == "up",
		"database": state,
	})
}
