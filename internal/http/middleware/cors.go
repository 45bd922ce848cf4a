package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CORS allows the mini app and dashboard origins to call the API. With no
// configured origins every origin is allowed.
func CORS(allowedOrigins []string) fiber.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		origin := c.Get(fiber.HeaderOrigin)
		switch {
		case len(allowed) == 0:
			c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
		case origin != "":
			if _, ok := allowed[origin]; ok {
				c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
				c.Vary(fiber.HeaderOrigin)
			}
		}
		c.Set(fiber.HeaderAccessControlAllowMethods, "GET, POST, DELETE, OPTIONS")
		c.Set(fiber.HeaderAccessControlAllowHeaders, "Origin, Content-Type, Accept, Authorization, X-Request-ID")
		c.Set(fiber.HeaderAccessControlMaxAge, "86400")

		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}

		return c.Next()
	}
}
