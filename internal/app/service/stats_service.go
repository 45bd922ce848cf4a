package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Carlos20473736/monetag-tracker/internal/app/model"
	"github.com/Carlos20473736/monetag-tracker/internal/app/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RevenuePlaces is the number of fractional digits in reported revenue.
const RevenuePlaces = 4

// StatsService derives counters from stored events.
type StatsService interface {
	// Global never fails: an unavailable or failing store yields zeros.
	Global(ctx context.Context) model.GlobalStats
	ForEmail(ctx context.Context, email string) (model.UserStats, error)
	Invalidate(ctx context.Context)
}

// StatsDeps groups dependencies required by the stats service.
type StatsDeps struct {
	Logger *zap.Logger
	Stats  repository.StatsRepository
	Events repository.AdEventRepository
	Cache  repository.StatsCache
}

type statsService struct {
	logger *zap.Logger
	stats  repository.StatsRepository
	events repository.AdEventRepository
	cache  repository.StatsCache
}

// NewStatsService returns a StatsService. Cache is optional.
func NewStatsService(deps StatsDeps) StatsService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &statsService{
		logger: logger,
		stats:  deps.Stats,
		events: deps.Events,
		cache:  deps.Cache,
	}
}

func (s *statsService) Global(ctx context.Context) model.GlobalStats {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn("stats cache read failed", zap.Error(err))
		} else if ok {
			return cached
		}
	}

	stats, err := s.stats.GlobalStats(ctx)
	if err != nil {
		s.logger.Error("failed to compute global stats", zap.Error(err))
		return model.GlobalStats{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, stats); err != nil {
			s.logger.Warn("stats cache write failed", zap.Error(err))
		}
	}
	return stats
}

func (s *statsService) ForEmail(ctx context.Context, email string) (model.UserStats, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return model.UserStats{}, invalid("email", "Missing required field: email")
	}

	events, err := s.events.ListByEmail(ctx, email)
	if err != nil {
		return model.UserStats{}, fmt.Errorf("list events by email: %w", err)
	}
	return SummarizeUserEvents(events), nil
}

func (s *statsService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("stats cache invalidation failed", zap.Error(err))
	}
}

// SummarizeUserEvents counts impressions and clicks and sums revenue.
// Missing, malformed or negative revenue values contribute zero.
func SummarizeUserEvents(events []model.AdEvent) model.UserStats {
	var stats model.UserStats
	total := decimal.Zero

	for _, e := range events {
		switch e.EventType {
		case model.EventImpression:
			stats.Impressions++
		case model.EventClick:
			stats.Clicks++
		}
		total = total.Add(ParseRevenue(e.Revenue))
	}

	stats.TotalRevenue = total.StringFixed(RevenuePlaces)
	return stats
}

// ParseRevenue returns the decimal value of raw, or zero when raw is absent,
// unparseable or negative.
func ParseRevenue(raw *string) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	v, err := decimal.NewFromString(strings.TrimSpace(*raw))
	if err != nil || v.IsNegative() {
		return decimal.Zero
	}
	return v
}
