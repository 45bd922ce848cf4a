package handler

import (
	"github.com/Carlos20473736/monetag-tracker/internal/app/service"
	"github.com/Carlos20473736/monetag-tracker/internal/http/view"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const dashboardEventLimit = 50

// DashboardHandler renders the HTML summary page.
type DashboardHandler struct {
	logger *zap.Logger
	events service.EventService
	stats  service.StatsService
}

// NewDashboardHandler creates a dashboard handler.
func NewDashboardHandler(logger *zap.Logger, events service.EventService, stats service.StatsService) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{logger: logger, events: events, stats: stats}
}

// Register wires the dashboard route onto the provided router.
func (h *DashboardHandler) Register(router fiber.Router) {
	router.Get("/dashboard", h.Render)
}

// Render handles GET /dashboard. Store failures render as an empty table.
func (h *DashboardHandler) Render(c *fiber.Ctx) error {
	ctx := requestContext(c)

	events, err := h.events.ListAll(ctx, dashboardEventLimit)
	if err != nil {
		h.logger.Error("failed to load dashboard events", zap.Error(err))
		events = nil
	}

	html, err := view.RenderDashboardPage(view.DashboardPageData{
		Title:  "Monetag events",
		Stats:  h.stats.Global(ctx),
		Events: events,
	})
	if err != nil {
		h.logger.Error("failed to render dashboard", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   internalErrorMessage,
		})
	}

	return c.
		Type("html", "utf-8").
		SendString(html)
}
