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

// PostbackOutcome describes what happened to an accepted postback.
type PostbackOutcome string

const (
	OutcomeRecorded PostbackOutcome = "recorded"
	OutcomeIgnored  PostbackOutcome = "ignored"
)

// PostbackResult is returned for every postback that passed validation.
type PostbackResult struct {
	Outcome  PostbackOutcome
	Message  string
	Event    *model.AdEvent
	Resolved bool
}

// SessionFinder looks up the session that can stand in for a postback's
// missing identity. It returns nil without error when none is active.
type SessionFinder interface {
	FindActive(ctx context.Context, zoneID string) (*model.AdSession, error)
}

// EventNotifier is told about every persisted event. Failures are logged and
// never fail the postback.
type EventNotifier interface {
	Publish(ctx context.Context, event *model.AdEvent) error
}

// PostbackReconciler turns a raw vendor postback into a stored AdEvent,
// recovering the user identity from an ad session when the vendor left
// its correlation macros unexpanded.
type PostbackReconciler struct {
	logger   *zap.Logger
	events   repository.AdEventRepository
	sessions SessionFinder
	notifier EventNotifier
}

// ReconcilerDeps groups dependencies required by the reconciler.
type ReconcilerDeps struct {
	Logger   *zap.Logger
	Events   repository.AdEventRepository
	Sessions SessionFinder
	Notifier EventNotifier
}

// NewPostbackReconciler creates a reconciler with the provided dependencies.
func NewPostbackReconciler(deps ReconcilerDeps) *PostbackReconciler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostbackReconciler{
		logger:   logger,
		events:   deps.Events,
		sessions: deps.Sessions,
		notifier: deps.Notifier,
	}
}

// Reconcile validates params, resolves identity and persists one event.
//
// A *ValidationError is returned when event_type or zone_id is missing or
// invalid. A payload with literal macros and no active session for its zone
// yields OutcomeIgnored and nothing is written. Any other error comes from
// the store and is not retried here.
func (r *PostbackReconciler) Reconcile(ctx context.Context, params PostbackParams) (PostbackResult, error) {
	start := time.Now()
	defer func() {
		metrics.PostbackDuration.Observe(float64(time.Since(start).Microseconds()) / 1000)
	}()

	eventType, zoneID, err := validatePostback(params)
	if err != nil {
		return PostbackResult{}, err
	}

	var session *model.AdSession
	if params.HasLiteralMacros() {
		session, err = r.sessions.FindActive(ctx, zoneID)
		if err != nil {
			return PostbackResult{}, fmt.Errorf("find active session: %w", err)
		}
		if session == nil {
			metrics.MacroResolutions.WithLabelValues("unresolved").Inc()
			r.logger.Info("postback ignored: literal macros and no active session",
				zap.String("zone_id", zoneID),
				zap.String("event_type", string(eventType)),
			)
			return PostbackResult{
				Outcome: OutcomeIgnored,
				Message: "Ignored - no active session",
			}, nil
		}
		metrics.MacroResolutions.WithLabelValues("resolved").Inc()
		r.logger.Info("postback identity recovered from session",
			zap.String("zone_id", zoneID),
			zap.String("user_id", session.UserID),
		)
	}

	event := buildEvent(params, eventType, zoneID, ResolveIdentity(params, session))
	if err := r.events.Create(ctx, event); err != nil {
		return PostbackResult{}, fmt.Errorf("record postback event: %w", err)
	}
	metrics.EventsRecorded.WithLabelValues(string(eventType), "postback").Inc()

	r.logger.Debug("postback event recorded",
		zap.Uint("id", event.ID),
		zap.String("event_type", string(event.EventType)),
		zap.String("zone_id", event.ZoneID),
		zap.Bool("resolved", session != nil),
	)

	if r.notifier != nil {
		if err := r.notifier.Publish(ctx, event); err != nil {
			r.logger.Warn("failed to publish recorded event", zap.Uint("id", event.ID), zap.Error(err))
		}
	}

	return PostbackResult{
		Outcome:  OutcomeRecorded,
		Message:  "Event recorded",
		Event:    event,
		Resolved: session != nil,
	}, nil
}

func validatePostback(params PostbackParams) (model.EventType, string, error) {
	rawType := params.Get(ParamEventType)
	zoneID := params.Get(ParamZoneID)

	if rawType == "" {
		return "", "", invalid(ParamEventType, "Missing required fields: event_type, zone_id")
	}
	if zoneID == "" {
		return "", "", invalid(ParamZoneID, "Missing required fields: event_type, zone_id")
	}

	eventType := model.EventType(rawType)
	if !eventType.Valid() {
		return "", "", invalid(ParamEventType, "Invalid event_type. Must be 'impression' or 'click'")
	}
	return eventType, zoneID, nil
}

func buildEvent(params PostbackParams, eventType model.EventType, zoneID string, identity Identity) *model.AdEvent {
	event := &model.AdEvent{
		EventType:  eventType,
		TelegramID: identity.Primary,
		ZoneID:     zoneID,
		ClickID:    optional(params.Get(ParamClickID)),
		SubID:      identity.Primary,
		SubID2:     identity.Secondary,
		Revenue:    optional(params.Get(ParamRevenue)),
		Currency:   optional(params.Get(ParamCurrency)),
		UserAgent:  optional(params.UserAgent),
		IPAddress:  optional(params.Get(ParamIP)),
		Country:    countryCode(params.Get(ParamCountry)),
	}

	if raw, err := json.Marshal(params.Values); err == nil {
		event.RawData = datatypes.JSON(raw)
	}
	return event
}
