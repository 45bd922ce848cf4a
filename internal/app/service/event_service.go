package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Carlos20473736/monetag-tracker/internal/app/model"
	"github.com/Carlos20473736/monetag-tracker/internal/app/repository"
	"github.com/Carlos20473736/monetag-tracker/internal/metrics"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// EventService defines behaviour-level operations on ad events reported by
// clients and read by dashboards.
type EventService interface {
	Record(ctx context.Context, input RecordEventInput) (*model.AdEvent, error)
	ListByTelegramID(ctx context.Context, telegramID string, limit int) ([]model.AdEvent, error)
	ListByZone(ctx context.Context, zoneID string, limit int) ([]model.AdEvent, error)
	ListAll(ctx context.Context, limit int) ([]model.AdEvent, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]model.AdEvent, error)
	Purge(ctx context.Context) (int64, error)
}

// RecordEventInput captures an event reported directly by the mini app.
type RecordEventInput struct {
	EventType  string
	TelegramID string
	ZoneID     string
	ClickID    string
	SubID      string
	Revenue    string
	Currency   string
	UserAgent  string
	IPAddress  string
	Country    string
	RawData    string
}

type eventService struct {
	logger   *zap.Logger
	repo     repository.AdEventRepository
	notifier EventNotifier
}

// NewEventService returns a service implementation backed by the given
// repository. notifier may be nil.
func NewEventService(logger *zap.Logger, repo repository.AdEventRepository, notifier EventNotifier) EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &eventService{logger: logger, repo: repo, notifier: notifier}
}

func (s *eventService) Record(ctx context.Context, input RecordEventInput) (*model.AdEvent, error) {
	eventType := model.EventType(input.EventType)
	if !eventType.Valid() {
		return nil, invalid("eventType", "eventType must be 'impression' or 'click'")
	}
	if input.ZoneID == "" {
		return nil, invalid("zoneId", "zoneId is required")
	}

	event := &model.AdEvent{
		EventType:  eventType,
		TelegramID: optional(input.TelegramID),
		ZoneID:     input.ZoneID,
		ClickID:    optional(input.ClickID),
		SubID:      optional(input.SubID),
		Revenue:    optional(input.Revenue),
		Currency:   optional(input.Currency),
		UserAgent:  optional(input.UserAgent),
		IPAddress:  optional(input.IPAddress),
		Country:    countryCode(input.Country),
	}
	if input.RawData != "" {
		event.RawData = rawSnapshot(input.RawData)
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("record event: %w", err)
	}
	metrics.EventsRecorded.WithLabelValues(string(eventType), "client").Inc()

	if s.notifier != nil {
		if err := s.notifier.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish recorded event", zap.Uint("id", event.ID), zap.Error(err))
		}
	}
	return event, nil
}

// rawSnapshot keeps valid JSON as-is and stores anything else as a JSON string.
func rawSnapshot(raw string) datatypes.JSON {
	if json.Valid([]byte(raw)) {
		return datatypes.JSON(raw)
	}
	quoted, _ := json.Marshal(raw)
	return datatypes.JSON(quoted)
}

func (s *eventService) ListByTelegramID(ctx context.Context, telegramID string, limit int) ([]model.AdEvent, error) {
	if telegramID == "" {
		return nil, invalid("telegramId", "telegramId is required")
	}
	events, err := s.repo.ListByTelegramID(ctx, telegramID, limit)
	if err != nil {
		return nil, fmt.Errorf("list events by telegram id: %w", err)
	}
	return events, nil
}

func (s *eventService) ListByZone(ctx context.Context, zoneID string, limit int) ([]model.AdEvent, error) {
	if zoneID == "" {
		return nil, invalid("zoneId", "zoneId is required")
	}
	events, err := s.repo.ListByZone(ctx, zoneID, limit)
	if err != nil {
		return nil, fmt.Errorf("list events by zone: %w", err)
	}
	return events, nil
}

func (s *eventService) ListAll(ctx context.Context, limit int) ([]model.AdEvent, error) {
	events, err := s.repo.ListAll(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *eventService) ListByDateRange(ctx context.Context, start, end time.Time) ([]model.AdEvent, error) {
	if start.IsZero() || end.IsZero() {
		return nil, invalid("dateRange", "startDate and endDate are required")
	}
	if end.Before(start) {
		return nil, invalid("dateRange", "endDate must not be before startDate")
	}
	events, err := s.repo.ListByDateRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list events by date range: %w", err)
	}
	return events, nil
}

func (s *eventService) Purge(ctx context.Context) (int64, error) {
	removed, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("purge events: %w", err)
	}
	return removed, nil
}
