package handler

import (
	"context"
	"errors"

	"github.com/Carlos20473736/monetag-tracker/internal/app/repository"
	"github.com/Carlos20473736/monetag-tracker/internal/app/service"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const internalErrorMessage = "Internal server error"

// statusFor maps a service or repository error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, repository.ErrZoneNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, repository.ErrZoneExists):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// publicMessage returns the text shown to callers for err. Internal failures
// are never echoed back.
func publicMessage(err error) string {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	switch {
	case errors.Is(err, repository.ErrZoneNotFound):
		return "Zone not found"
	case errors.Is(err, repository.ErrZoneExists):
		return "Zone already exists"
	default:
		return internalErrorMessage
	}
}

// fail writes the JSON error body for err, logging anything that is not the
// caller's fault.
func fail(c *fiber.Ctx, logger *zap.Logger, msg string, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		logger.Error(msg, zap.Error(err), zap.String("path", c.Path()))
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   publicMessage(err),
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func requestContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}
