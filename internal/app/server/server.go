package server

import (
	"context"
	"errors"
	"time"

	"github.com/Carlos20473736/monetag-tracker/config"
	"github.com/Carlos20473736/monetag-tracker/internal/app/service"
	"github.com/Carlos20473736/monetag-tracker/internal/http/handler"
	"github.com/Carlos20473736/monetag-tracker/internal/http/middleware"
	"github.com/Carlos20473736/monetag-tracker/internal/http/util"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dependencies bundles what the HTTP server needs to serve every route.
type Dependencies struct {
	Logger     *zap.Logger
	App        config.AppConfig
	RateLimit  config.RateLimitConfig
	Redis      *redis.Client
	Reconciler handler.Reconciler
	Sessions   service.SessionService
	Events     service.EventService
	Zones      service.ZoneService
	Stats      service.StatsService
	// Ping reports store health; nil means no store is configured.
	Ping handler.Pinger
}

// Server wraps the Fiber application and its dependencies.
type Server struct {
	app  *fiber.App
	deps Dependencies
}

// New creates a new HTTP server instance with every route registered.
func New(deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName:      "monetag-tracker",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorHandler: jsonErrorHandler,
	})

	s := &Server{
		app:  app,
		deps: deps,
	}

	s.registerMiddleware()
	s.registerRoutes()
	return s
}

// App exposes the underlying Fiber application, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts the Fiber server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the Fiber server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerMiddleware() {
	s.app.Use(middleware.RequestID())
	s.app.Use(middleware.Recovery(s.deps.Logger))
	s.app.Use(middleware.Logger(s.deps.Logger))
	s.app.Use(middleware.CORS(s.deps.App.CORSOrigins))
}

func (s *Server) registerRoutes() {
	logger := s.deps.Logger
	verifier := util.NewAdminVerifier(s.deps.App.AdminToken)

	handler.NewHealthHandler(logger, s.deps.Ping).Register(s.app)

	// Client-facing routes share a per-IP budget when Redis is available.
	// Vendor postbacks are never throttled.
	if s.deps.Redis != nil {
		limit := middleware.RateLimit(s.deps.Redis, middleware.RateLimitConfig{
			MaxRequests: s.deps.RateLimit.MaxRequests,
			Window:      s.deps.RateLimit.Window,
			KeyPrefix:   "client",
		}, logger)
		for _, prefix := range []string{"/monetag/session", "/monetag/stats", "/rpc"} {
			s.app.Use(prefix, limit)
		}
	}

	handler.NewPostbackHandler(logger, s.deps.Reconciler).Register(s.app)
	handler.NewSessionHandler(logger, s.deps.Sessions).Register(s.app)
	handler.NewStatsHandler(logger, s.deps.Stats).Register(s.app)
	handler.NewRPCHandler(handler.RPCDeps{
		Logger:   logger,
		Events:   s.deps.Events,
		Zones:    s.deps.Zones,
		Stats:    s.deps.Stats,
		Verifier: verifier,
	}).Register(s.app)
	handler.NewEventsHandler(handler.EventsDeps{
		Logger: logger,
		Events: s.deps.Events,
		Stats:  s.deps.Stats,
		Admin:  middleware.AdminOnly(verifier, logger),
	}).Register(s.app)
	handler.NewDashboardHandler(logger, s.deps.Events, s.deps.Stats).Register(s.app)
}

// jsonErrorHandler keeps fiber's own errors (404, 405, body limits) in the
// same {success, error} shape as handler responses.
func jsonErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}
