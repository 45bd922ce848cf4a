package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Carlos20473736/monetag-tracker/config"
	"github.com/Carlos20473736/monetag-tracker/internal/app/repository"
	"github.com/Carlos20473736/monetag-tracker/internal/app/service"
	"github.com/Carlos20473736/monetag-tracker/internal/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newDegradedServer wires every route with no store behind it.
func newDegradedServer() *Server {
	events := repository.NewAdEventRepository(nil)
	sessions := service.NewSessionService(repository.NewAdSessionRepository(nil))
	return New(Dependencies{
		App:      config.AppConfig{AdminToken: "s3cret"},
		Sessions: sessions,
		Events:   service.NewEventService(zap.NewNop(), events, nil),
		Zones:    service.NewZoneService(repository.NewAdZoneRepository(nil)),
		Stats: service.NewStatsService(service.StatsDeps{
			Stats:  repository.NewStatsRepository(nil),
			Events: events,
		}),
		Reconciler: service.NewPostbackReconciler(service.ReconcilerDeps{
			Events:   events,
			Sessions: sessions,
		}),
	})
}

func TestServer_UnknownRouteIsJSON(t *testing.T) {
	app := newDegradedServer().App()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))
}

func TestServer_DegradedRoutes(t *testing.T) {
	app := newDegradedServer().App()

	tests := []struct {
		method string
		target string
		want   int
	}{
		{http.MethodGet, "/monetag/health", http.StatusOK},
		{http.MethodGet, "/ready", http.StatusServiceUnavailable},
		{http.MethodGet, "/api/events", http.StatusOK},
		{http.MethodGet, "/dashboard", http.StatusOK},
		{http.MethodGet, "/monetag/postback?event_type=impression&zone_id=1&ymid=7", http.StatusInternalServerError},
		{http.MethodGet, "/monetag/postback?zone_id=1", http.StatusBadRequest},
		{http.MethodDelete, "/api/events", http.StatusUnauthorized},
		{http.MethodOptions, "/monetag/session/start", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(tt.method, tt.target, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
