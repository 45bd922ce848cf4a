package handler

import (
	"encoding/json"
	"strings"

	"github.com/Carlos20473736/monetag-tracker/internal/app/service"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SessionHandler lets the mini app announce who is about to see an ad.
type SessionHandler struct {
	logger   *zap.Logger
	sessions service.SessionService
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(logger *zap.Logger, sessions service.SessionService) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{logger: logger, sessions: sessions}
}

// Register wires session routes onto the provided router.
func (h *SessionHandler) Register(router fiber.Router) {
	sessions := router.Group("/monetag/session")
	{
		sessions.Post("/start", h.Start)
		sessions.Get("/active", h.Active)
		sessions.Delete("/cleanup", h.Cleanup)
	}
}

// looseString accepts a JSON string or number. Telegram user ids arrive as
// numbers from some clients.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = looseString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = looseString(num.String())
	return nil
}

func (s looseString) String() string {
	return strings.TrimSpace(string(s))
}

// StartSessionRequest is the body of POST /monetag/session/start.
type StartSessionRequest struct {
	UserID    looseString `json:"userId" form:"userId"`
	UserEmail string      `json:"userEmail" form:"userEmail"`
	ZoneID    looseString `json:"zoneId" form:"zoneId"`
}

// Start handles POST /monetag/session/start
func (h *SessionHandler) Start(c *fiber.Ctx) error {
	var req StartSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	session, err := h.sessions.Start(requestContext(c), service.StartSessionInput{
		UserID:    req.UserID.String(),
		UserEmail: strings.TrimSpace(req.UserEmail),
		ZoneID:    req.ZoneID.String(),
	})
	if err != nil {
		return fail(c, h.logger, "failed to start session", err)
	}

	h.logger.Info("ad session started",
		zap.String("zone_id", session.ZoneID),
		zap.String("user_id", session.UserID),
	)
	return c.JSON(fiber.Map{
		"success":      true,
		"sessionToken": session.SessionToken,
	})
}

// Active handles GET /monetag/session/active?zoneId=
func (h *SessionHandler) Active(c *fiber.Ctx) error {
	zoneID := strings.TrimSpace(c.Query("zoneId"))
	if zoneID == "" {
		return badRequest(c, "Missing required parameter: zoneId")
	}

	session, err := h.sessions.FindActive(requestContext(c), zoneID)
	if err != nil {
		return fail(c, h.logger, "failed to look up active session", err)
	}
	if session == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "No active session found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"session": fiber.Map{
			"userId":    session.UserID,
			"userEmail": session.UserEmail,
			"zoneId":    session.ZoneID,
		},
	})
}

// Cleanup handles DELETE /monetag/session/cleanup
func (h *SessionHandler) Cleanup(c *fiber.Ctx) error {
	removed, err := h.sessions.CleanupExpired(requestContext(c))
	if err != nil {
		return fail(c, h.logger, "failed to clean up sessions", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Expired sessions cleaned up",
		"removed": removed,
	})
}
