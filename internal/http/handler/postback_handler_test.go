package handler

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/Carlos20473736/monetag-tracker/internal/app/model"
	"github.com/Carlos20473736/monetag-tracker/internal/app/service"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostback_GetRecordsEvent(t *testing.T) {
	env := newTestEnv(t, true)

	req := getRequest("/monetag/postback?event_type=impression&zone_id=10098295&ymid=5511&request_var=u%40example.com&revenue=0.0025&country=br")
	req.Header.Set(fiber.HeaderUserAgent, "MonetagBot/1.0")
	status, body := env.do(t, req)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Event recorded", body["message"])

	var ev model.AdEvent
	require.NoError(t, env.db.First(&ev).Error)
	assert.Equal(t, model.EventImpression, ev.EventType)
	assert.Equal(t, "5511", *ev.TelegramID)
	assert.Equal(t, "u@example.com", *ev.SubID2)
	assert.Equal(t, "BR", *ev.Country)
	assert.Equal(t, "MonetagBot/1.0", *ev.UserAgent)
}

func TestPostback_PostJSONAndForm(t *testing.T) {
	env := newTestEnv(t, true)

	status, body := env.do(t, jsonRequest(http.MethodPost, "/monetag/postback",
		`{"event_type":"click","zone_id":10098295,"sub_id":"42","revenue":0.01}`))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Event recorded", body["message"])

	form := url.Values{"event_type": {"impression"}, "zone_id": {"10098295"}, "sub_id": {"43"}}
	req, _ := http.NewRequest(http.MethodPost, "/monetag/postback", strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	status, _ = env.do(t, req)
	assert.Equal(t, http.StatusOK, status)

	var events []model.AdEvent
	require.NoError(t, env.db.Order("id").Find(&events).Error)
	require.Len(t, events, 2)
	assert.Equal(t, "10098295", events[0].ZoneID)
	assert.Equal(t, "0.01", *events[0].Revenue)
	assert.Equal(t, "43", *events[1].TelegramID)
}

func TestPostback_ValidationFailures(t *testing.T) {
	env := newTestEnv(t, true)

	for _, target := range []string{
		"/monetag/postback?zone_id=1",
		"/monetag/postback?event_type=click",
		"/monetag/postback?event_type=click&ymid=%7Bymid%7D",
		"/monetag/postback?event_type=install&zone_id=1",
	} {
		status, body := env.do(t, getRequest(target))
		assert.Equal(t, http.StatusBadRequest, status, target)
		assert.Equal(t, false, body["success"])
		assert.NotEmpty(t, body["error"])
	}
	assert.Zero(t, env.countEvents(t))
}

func TestPostback_LiteralMacrosWithoutSessionIgnored(t *testing.T) {
	env := newTestEnv(t, true)

	for _, req := range []*http.Request{
		getRequest("/monetag/postback?event_type=impression&zone_id=10098295&ymid=%7Bymid%7D&request_var=%7Brequest_var%7D"),
		jsonRequest(http.MethodPost, "/monetag/postback", `{"event_type":"click","zone_id":"10098295","sub_id":"{sub_id}"}`),
	} {
		status, body := env.do(t, req)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "Ignored - no active session", body["message"])
	}
	assert.Zero(t, env.countEvents(t))
}

func TestPostback_LiteralMacrosResolvedFromSession(t *testing.T) {
	env := newTestEnv(t, true)
	_, err := env.sessions.Start(context.Background(), service.StartSessionInput{
		UserID: "777", UserEmail: "viewer@example.com", ZoneID: "10098295",
	})
	require.NoError(t, err)

	status, body := env.do(t, jsonRequest(http.MethodPost, "/monetag/postback",
		`{"event_type":"click","zone_id":"10098295","sub_id":"{sub_id}","sub_id2":"{sub_id2}"}`))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Event recorded", body["message"])

	var ev model.AdEvent
	require.NoError(t, env.db.First(&ev).Error)
	assert.Equal(t, "777", *ev.TelegramID)
	assert.Equal(t, "viewer@example.com", *ev.SubID2)
	assert.NotContains(t, string(ev.RawData), "viewer@example.com")
}

func TestPostback_StorageUnavailable(t *testing.T) {
	env := newTestEnv(t, false)

	status, body := env.do(t, getRequest("/monetag/postback?event_type=click&zone_id=1"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Internal server error", body["error"])
}

func TestPostback_InvalidJSONBody(t *testing.T) {
	env := newTestEnv(t, true)

	status, body := env.do(t, jsonRequest(http.MethodPost, "/monetag/postback", `{"event_type":`))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
}
