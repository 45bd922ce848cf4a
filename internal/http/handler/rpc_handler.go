package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/Carlos20473736/monetag-tracker/internal/app/repository"
	"github.com/Carlos20473736/monetag-tracker/internal/app/service"
	"github.com/Carlos20473736/monetag-tracker/internal/http/util"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RPC error codes.
const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotSupported = "METHOD_NOT_SUPPORTED"
	CodeConflict           = "CONFLICT"
	CodeInternal           = "INTERNAL_SERVER_ERROR"
)

// RPCDeps groups dependencies required by the RPC surface.
type RPCDeps struct {
	Logger   *zap.Logger
	Events   service.EventService
	Zones    service.ZoneService
	Stats    service.StatsService
	Verifier *util.AdminVerifier
}

type procedure struct {
	mutation  bool
	protected bool
	call      func(c *fiber.Ctx, input json.RawMessage) (interface{}, error)
}

// RPCHandler serves JSON procedures at /rpc/<router>.<procedure>.
type RPCHandler struct {
	logger     *zap.Logger
	events     service.EventService
	zones      service.ZoneService
	stats      service.StatsService
	verifier   *util.AdminVerifier
	procedures map[string]procedure
}

// NewRPCHandler creates the RPC handler and its procedure table.
func NewRPCHandler(deps RPCDeps) *RPCHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	verifier := deps.Verifier
	if verifier == nil {
		verifier = util.NewAdminVerifier("")
	}

	h := &RPCHandler{
		logger:   logger,
		events:   deps.Events,
		zones:    deps.Zones,
		stats:    deps.Stats,
		verifier: verifier,
	}
	h.procedures = map[string]procedure{
		"adEvents.recordEvent":     {mutation: true, call: h.recordEvent},
		"adEvents.getByTelegramId": {call: h.eventsByTelegramID},
		"adEvents.getStats":        {call: h.globalStats},
		"adEvents.getAll":          {protected: true, call: h.allEvents},
		"adEvents.getByZone":       {protected: true, call: h.eventsByZone},
		"adEvents.getByDateRange":  {protected: true, call: h.eventsByDateRange},
		"adZones.getById":          {call: h.zoneByID},
		"adZones.getAll":           {call: h.allZones},
		"adZones.create":           {mutation: true, protected: true, call: h.createZone},
		"adZones.updateStatus":     {mutation: true, protected: true, call: h.updateZoneStatus},
	}
	return h
}

// Register wires the RPC route onto the provided router.
func (h *RPCHandler) Register(router fiber.Router) {
	router.Get("/rpc/*", h.Dispatch)
	router.Post("/rpc/*", h.Dispatch)
}

// Dispatch resolves the procedure named in the path and runs it.
func (h *RPCHandler) Dispatch(c *fiber.Ctx) error {
	name := c.Params("*")
	proc, ok := h.procedures[name]
	if !ok {
		return rpcError(c, fiber.StatusNotFound, CodeNotFound, "No procedure found on path \""+name+"\"")
	}
	if proc.mutation && c.Method() != fiber.MethodPost {
		return rpcError(c, fiber.StatusMethodNotAllowed, CodeMethodNotSupported, "Mutations must be sent with POST")
	}
	if proc.protected {
		if err := h.verifier.Verify(c.Get(fiber.HeaderAuthorization)); err != nil {
			return rpcError(c, fiber.StatusUnauthorized, CodeUnauthorized, "Admin token required")
		}
	}

	input := rpcInput(c)
	data, err := proc.call(c, input)
	if err != nil {
		return h.fail(c, name, err)
	}
	return c.JSON(fiber.Map{
		"result": fiber.Map{"data": data},
	})
}

func rpcInput(c *fiber.Ctx) json.RawMessage {
	var raw []byte
	if c.Method() == fiber.MethodGet {
		raw = []byte(c.Query("input"))
	} else {
		raw = c.Body()
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return json.RawMessage("{}")
	}
	return json.RawMessage(raw)
}

func (h *RPCHandler) fail(c *fiber.Ctx, name string, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return rpcError(c, fiber.StatusBadRequest, CodeBadRequest, verr.Message)
	case errors.Is(err, errInvalidInput):
		return rpcError(c, fiber.StatusBadRequest, CodeBadRequest, "Invalid input")
	case errors.Is(err, repository.ErrZoneNotFound):
		return rpcError(c, fiber.StatusNotFound, CodeNotFound, "Zone not found")
	case errors.Is(err, repository.ErrZoneExists):
		return rpcError(c, fiber.StatusConflict, CodeConflict, "Zone already exists")
	default:
		h.logger.Error("rpc procedure failed", zap.String("procedure", name), zap.Error(err))
		return rpcError(c, fiber.StatusInternalServerError, CodeInternal, internalErrorMessage)
	}
}

func rpcError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

var errInvalidInput = errors.New("invalid input")

func decodeInput(raw json.RawMessage, dst interface{}) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return errInvalidInput
	}
	return nil
}

type recordEventInput struct {
	EventType  string      `json:"eventType"`
	TelegramID looseString `json:"telegramId"`
	ZoneID     looseString `json:"zoneId"`
	ClickID    string      `json:"clickId"`
	SubID      string      `json:"subId"`
	Revenue    looseString `json:"revenue"`
	Currency   string      `json:"currency"`
	UserAgent  string      `json:"userAgent"`
	IPAddress  string      `json:"ipAddress"`
	Country    string      `json:"country"`
	RawData    string      `json:"rawData"`
}

func (h *RPCHandler) recordEvent(c *fiber.Ctx, raw json.RawMessage) (interface{}, error) {
	var in recordEventInput
	if err := decodeInput(raw, &in); err != nil {
		return nil, err
	}
	if in.UserAgent == "" {
		in.UserAgent = c.Get(fiber.HeaderUserAgent)
	}
	if in.IPAddress == "" {
		in.IPAddress = c.IP()
	}

	return h.events.Record(requestContext(c), service.RecordEventInput{
		EventType:  strings.TrimSpace(in.EventType),
		TelegramID: in.TelegramID.String(),
		ZoneID:     in.ZoneID.String(),
		ClickID:    in.ClickID,
		SubID:      in.SubID,
		Revenue:    in.Revenue.String(),
		Currency:   in.Currency,
		UserAgent:  in.UserAgent,
		IPAddress:  in.IPAddress,
		Country:    in.Country,
		RawData:    in.RawData,
	})
}

type listInput struct {
	TelegramID looseString `json:"telegramId"`
	ZoneID     looseString `json:"zoneId"`
	Limit      int         `json:"limit"`
}

func (h *RPCHandler) eventsByTelegramID(c *fiber.Ctx, raw json.RawMessage) (interface{}, error) {
	var in listInput
	if err := decodeInput(raw, &in); err != nil {
		return nil, err
	}
	return h.events.ListByTelegramID(requestContext(c), in.TelegramID.String(), in.Limit)
}

func (h *RPCHandler) globalStats(c *fiber.Ctx, _ json.RawMessage) (interface{}, error) {
	return h.stats.Global(requestContext(c)), nil
}

func (h *RPCHandler) allEvents(c *fiber.Ctx, raw json.RawMessage) (interface{}, error) {
	var in listInput
	if err := decodeInput(raw, &in); err != nil {
		return nil, err
	}
	return h.events.ListAll(requestContext(c), in.Limit)
}

func (h *RPCHandler) eventsByZone(c *fiber.Ctx, raw json.RawMessage) (interface{}, error) {
	var in listInput
	if err := decodeInput(raw, &in); err != nil {
		return nil, err
	}
	return h.events.ListByZone(requestContext(c), in.ZoneID.String(), in.Limit)
}

type dateRangeInput struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

func (h *RPCHandler) eventsByDateRange(c *fiber.Ctx, raw json.RawMessage) (interface{}, error) {
	var in dateRangeInput
	if err := decodeInput(raw, &in); err != nil {
		return nil, err
	}
	return h.events.ListByDateRange(requestContext(c), in.StartDate, in.EndDate)
}

type zoneInput struct {
	ZoneID   looseString `json:"zoneId"`
	ZoneName string      `json:"zoneName"`
	ZoneType string      `json:"zoneType"`
	IsActive *bool       `json:"isActive"`
}

func (h *RPCHandler) zoneByID(c *fiber.Ctx, raw json.RawMessage) (interface{}, error) {
	var in zoneInput
	if err := decodeInput(raw, &in); err != nil {
		return nil, err
	}
	return h.zones.GetZone(requestContext(c), in.ZoneID.String())
}

func (h *RPCHandler) allZones(c *fiber.Ctx, _ json.RawMessage) (interface{}, error) {
	return h.zones.ListZones(requestContext(c))
}

func (h *RPCHandler) createZone(c *fiber.Ctx, raw json.RawMessage) (interface{}, error) {
	var in zoneInput
	if err := decodeInput(raw, &in); err != nil {
		return nil, err
	}
	return h.zones.CreateZone(requestContext(c), service.CreateZoneInput{
		ZoneID:   in.ZoneID.String(),
		ZoneName: strings.TrimSpace(in.ZoneName),
		ZoneType: strings.TrimSpace(in.ZoneType),
	})
}

func (h *RPCHandler) updateZoneStatus(c *fiber.Ctx, raw json.RawMessage) (interface{}, error) {
	var in zoneInput
	if err := decodeInput(raw, &in); err != nil {
		return nil, err
	}
	if in.IsActive == nil {
		return nil, &service.ValidationError{Field: "isActive", Message: "isActive is required"}
	}
	return h.zones.UpdateStatus(requestContext(c), in.ZoneID.String(), *in.IsActive)
}
