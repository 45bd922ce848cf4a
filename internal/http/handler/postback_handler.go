package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Carlos20473736/monetag-tracker/internal/app/service"
	"github.com/Carlos20473736/monetag-tracker/internal/http/middleware"
	"github.com/Carlos20473736/monetag-tracker/internal/metrics"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Reconciler turns postback parameters into a stored event.
type Reconciler interface {
	Reconcile(ctx context.Context, params service.PostbackParams) (service.PostbackResult, error)
}

// PostbackHandler accepts vendor postbacks over GET and POST.
type PostbackHandler struct {
	logger     *zap.Logger
	reconciler Reconciler
}

// NewPostbackHandler creates a postback handler.
func NewPostbackHandler(logger *zap.Logger, reconciler Reconciler) *PostbackHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostbackHandler{logger: logger, reconciler: reconciler}
}

// Register wires postback routes onto the provided router.
func (h *PostbackHandler) Register(router fiber.Router) {
	router.Get("/monetag/postback", h.Handle)
	router.Post("/monetag/postback", h.Handle)
}

// Handle runs one postback through the reconciler. Both verbs share it; POST
// bodies (JSON or form) fill in parameters absent from the query string.
func (h *PostbackHandler) Handle(c *fiber.Ctx) error {
	method := c.Method()

	params, err := postbackParams(c)
	if err != nil {
		h.count(c, method, metrics.OutcomeInvalid)
		return badRequest(c, "Invalid request body")
	}

	result, err := h.reconciler.Reconcile(requestContext(c), params)
	if err != nil {
		if statusFor(err) == fiber.StatusBadRequest {
			h.count(c, method, metrics.OutcomeInvalid)
			h.logger.Warn("postback rejected",
				zap.String("method", method),
				zap.Error(err),
			)
			return badRequest(c, publicMessage(err))
		}
		h.count(c, method, metrics.OutcomeFailed)
		h.logger.Error("postback processing failed", zap.String("method", method), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   internalErrorMessage,
		})
	}

	h.count(c, method, string(result.Outcome))
	h.logger.Debug("postback accepted",
		zap.String("method", method),
		zap.String("outcome", string(result.Outcome)),
		zap.Bool("resolved", result.Resolved),
	)
	return c.JSON(fiber.Map{
		"success": true,
		"message": result.Message,
	})
}

func (h *PostbackHandler) count(c *fiber.Ctx, method, outcome string) {
	c.Locals(middleware.OutcomeKey, outcome)
	metrics.PostbacksTotal.WithLabelValues(method, outcome).Inc()
}

func postbackParams(c *fiber.Ctx) (service.PostbackParams, error) {
	values := c.Queries()
	if values == nil {
		values = make(map[string]string)
	}

	if c.Method() == fiber.MethodPost && len(c.Body()) > 0 {
		body, err := bodyValues(c)
		if err != nil {
			return service.PostbackParams{}, err
		}
		for k, v := range body {
			if _, ok := values[k]; !ok {
				values[k] = v
			}
		}
	}

	return service.PostbackParams{
		Values:    values,
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}, nil
}

func bodyValues(c *fiber.Ctx) (map[string]string, error) {
	values := make(map[string]string)

	if strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEApplicationJSON) {
		var raw map[string]interface{}
		dec := json.NewDecoder(bytes.NewReader(c.Body()))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode postback body: %w", err)
		}
		for k, v := range raw {
			if v == nil {
				continue
			}
			values[k] = fmt.Sprint(v)
		}
		return values, nil
	}

	c.Request().PostArgs().VisitAll(func(key, value []byte) {
		values[string(key)] = string(value)
	})
	return values, nil
}
