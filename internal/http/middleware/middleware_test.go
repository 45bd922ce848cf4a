package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Carlos20473736/monetag-tracker/internal/http/util"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(GetRequestID(c))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	generated := resp.Header.Get(RequestIDHeader)
	assert.Len(t, generated, 36)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err = app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
	assert.Equal(t, "abc-123", string(body))
}

func TestRecovery_WritesJSON500(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID(), Recovery(zap.NewNop()))
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("boom")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, map[string]interface{}{
		"success": false,
		"error":   "Internal server error",
	}, decodeBody(t, resp))
}

func TestCORS(t *testing.T) {
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }

	t.Run("wildcard when unconfigured", func(t *testing.T) {
		app := fiber.New()
		app.Use(CORS(nil))
		app.Get("/", ok)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	})

	t.Run("echoes allowed origin only", func(t *testing.T) {
		app := fiber.New()
		app.Use(CORS([]string{"https://app.example.com/"}))
		app.Get("/", ok)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(fiber.HeaderOrigin, "https://app.example.com")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, "https://app.example.com", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))

		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(fiber.HeaderOrigin, "https://evil.example.com")
		resp, err = app.Test(req)
		require.NoError(t, err)
		assert.Empty(t, resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		app := fiber.New()
		app.Use(CORS(nil))
		app.Post("/", ok)

		resp, err := app.Test(httptest.NewRequest(http.MethodOptions, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Contains(t, resp.Header.Get(fiber.HeaderAccessControlAllowMethods), "DELETE")
	})
}

func TestAdminOnly(t *testing.T) {
	newApp := func(token string) *fiber.App {
		app := fiber.New()
		app.Get("/admin", AdminOnly(util.NewAdminVerifier(token), zap.NewNop()), func(c *fiber.Ctx) error {
			return c.SendString("ok")
		})
		return app
	}

	tests := []struct {
		name   string
		token  string
		header string
		want   int
	}{
		{name: "valid token", token: "s3cret", header: "Bearer s3cret", want: http.StatusOK},
		{name: "wrong token", token: "s3cret", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "missing header", token: "s3cret", want: http.StatusUnauthorized},
		{name: "no token configured", token: "", header: "Bearer anything", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, err := newApp(tt.token).Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestLogger_RecordsOutcome(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID(), Logger(zap.NewNop()))
	app.Get("/", func(c *fiber.Ctx) error {
		c.Locals(OutcomeKey, "recorded")
		return c.Status(fiber.StatusTeapot).SendString("short and stout")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
}
