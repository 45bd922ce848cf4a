package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carlos20473736/monetag-tracker/internal/app/model"
	"github.com/Carlos20473736/monetag-tracker/internal/app/repository"
	"github.com/Carlos20473736/monetag-tracker/internal/app/service"
	"github.com/Carlos20473736/monetag-tracker/internal/http/middleware"
	"github.com/Carlos20473736/monetag-tracker/internal/http/util"
	"github.com/Carlos20473736/monetag-tracker/internal/infra/postgres"
	"github.com/Carlos20473736/monetag-tracker/internal/infra/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testAdminToken = "admin-secret"

type testEnv struct {
	app      *fiber.App
	db       *gorm.DB
	sessions service.SessionService
}

// newTestEnv wires every handler to real services over a private SQLite file.
// A nil-db env exercises degraded mode.
func newTestEnv(t *testing.T, withStore bool) *testEnv {
	t.Helper()

	var db *gorm.DB
	if withStore {
		var err error
		db, err = sqlite.Open(filepath.Join(t.TempDir(), "handler.db"))
		require.NoError(t, err)
		require.NoError(t, postgres.AutoMigrate(context.Background(), db, model.Models()...))
		t.Cleanup(func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		})
	}

	logger := zap.NewNop()
	events := repository.NewAdEventRepository(db)
	sessions := service.NewSessionService(repository.NewAdSessionRepository(db))
	eventService := service.NewEventService(logger, events, nil)
	zoneService := service.NewZoneService(repository.NewAdZoneRepository(db))
	stats := service.NewStatsService(service.StatsDeps{
		Logger: logger,
		Stats:  repository.NewStatsRepository(db),
		Events: events,
	})
	reconciler := service.NewPostbackReconciler(service.ReconcilerDeps{
		Logger:   logger,
		Events:   events,
		Sessions: sessions,
	})
	verifier := util.NewAdminVerifier(testAdminToken)

	app := fiber.New()
	var ping Pinger
	if db != nil {
		ping = func(ctx context.Context) error { return postgres.Ping(ctx, db) }
	}
	NewHealthHandler(logger, ping).Register(app)
	NewPostbackHandler(logger, reconciler).Register(app)
	NewSessionHandler(logger, sessions).Register(app)
	NewStatsHandler(logger, stats).Register(app)
	NewRPCHandler(RPCDeps{Logger: logger, Events: eventService, Zones: zoneService, Stats: stats, Verifier: verifier}).Register(app)
	NewEventsHandler(EventsDeps{
		Logger: logger,
		Events: eventService,
		Stats:  stats,
		Admin:  middleware.AdminOnly(verifier, logger),
	}).Register(app)
	NewDashboardHandler(logger, eventService, stats).Register(app)

	return &testEnv{app: app, db: db, sessions: sessions}
}

func (e *testEnv) do(t *testing.T, req *http.Request) (int, map[string]interface{}) {
	t.Helper()

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]interface{}
	if len(body) > 0 && strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(body, &out), string(body))
	}
	return resp.StatusCode, out
}

func (e *testEnv) countEvents(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&model.AdEvent{}).Count(&n).Error)
	return n
}

func jsonRequest(method, target, body string) *http.Request {
	req, _ := http.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func getRequest(target string) *http.Request {
	req, _ := http.NewRequest(http.MethodGet, target, nil)
	return req
}
