package middleware

import (
	"errors"

	"github.com/Carlos20473736/monetag-tracker/internal/http/util"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AdminOnly rejects requests that do not carry the admin bearer token.
func AdminOnly(verifier *util.AdminVerifier, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := verifier.Verify(c.Get(fiber.HeaderAuthorization)); err != nil {
			if errors.Is(err, util.ErrMissingSecret) {
				logger.Warn("admin route called but no admin token is configured", zap.String("path", c.Path()))
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "unauthorized",
			})
		}
		return c.Next()
	}
}
