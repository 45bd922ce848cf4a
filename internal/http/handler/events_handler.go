package handler

import (
	"strings"

	"github.com/Carlos20473736/monetag-tracker/internal/app/service"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// EventsDeps groups dependencies required by the events API.
type EventsDeps struct {
	Logger *zap.Logger
	Events service.EventService
	Stats  service.StatsService
	// Admin guards destructive routes.
	Admin fiber.Handler
}

// EventsHandler implements the dashboard-facing events API.
type EventsHandler struct {
	logger *zap.Logger
	events service.EventService
	stats  service.StatsService
	admin  fiber.Handler
}

// NewEventsHandler creates an events handler with the provided dependencies.
func NewEventsHandler(deps EventsDeps) *EventsHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventsHandler{
		logger: logger,
		events: deps.Events,
		stats:  deps.Stats,
		admin:  deps.Admin,
	}
}

// Register wires events routes onto the provided router.
func (h *EventsHandler) Register(router fiber.Router) {
	api := router.Group("/api")
	{
		events := api.Group("/events")
		{
			events.Get("/", h.List)
			events.Get("/user/:telegramId", h.ListByUser)
			events.Delete("/", h.admin, h.Purge)
		}
	}
}

// List handles GET /api/events
func (h *EventsHandler) List(c *fiber.Ctx) error {
	ctx := requestContext(c)

	events, err := h.events.ListAll(ctx, c.QueryInt("limit", 0))
	if err != nil {
		return fail(c, h.logger, "failed to list events", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"stats":   h.stats.Global(ctx),
		"events":  events,
	})
}

// ListByUser handles GET /api/events/user/:telegramId
func (h *EventsHandler) ListByUser(c *fiber.Ctx) error {
	telegramID := strings.TrimSpace(c.Params("telegramId"))

	events, err := h.events.ListByTelegramID(requestContext(c), telegramID, c.QueryInt("limit", 0))
	if err != nil {
		return fail(c, h.logger, "failed to list user events", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"events":  events,
		"count":   len(events),
	})
}

// Purge handles DELETE /api/events
func (h *EventsHandler) Purge(c *fiber.Ctx) error {
	ctx := requestContext(c)

	removed, err := h.events.Purge(ctx)
	if err != nil {
		return fail(c, h.logger, "failed to purge events", err)
	}
	h.stats.Invalidate(ctx)

	h.logger.Warn("all ad events purged", zap.Int64("removed", removed), zap.String("ip", c.IP()))
	return c.JSON(fiber.Map{
		"success": true,
		"message": "All events deleted",
		"removed": removed,
	})
}
