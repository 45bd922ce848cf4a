package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Carlos20473736/monetag-tracker/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// countingStatsRepository derives global stats from the events the mock
// event repository has stored so far.
type countingStatsRepository struct {
	events *mockAdEventRepository
}

func (r countingStatsRepository) GlobalStats(ctx context.Context) (model.GlobalStats, error) {
	var stats model.GlobalStats
	users := map[string]struct{}{}
	for _, e := range r.events.created {
		switch e.EventType {
		case model.EventImpression:
			stats.Impressions++
		case model.EventClick:
			stats.Clicks++
		}
		if e.TelegramID != nil {
			users[*e.TelegramID] = struct{}{}
		}
	}
	stats.UniqueUsers = int64(len(users))
	return stats, nil
}

func TestGlobalStats_ReflectsNewPostbacksWithCache(t *testing.T) {
	ctx := context.Background()
	events := &mockAdEventRepository{}
	cache := &mockStatsCache{}
	stats := NewStatsService(StatsDeps{
		Stats:  countingStatsRepository{events: events},
		Events: events,
		Cache:  cache,
	})
	reconciler := NewPostbackReconciler(ReconcilerDeps{
		Logger:   zap.NewNop(),
		Events:   events,
		Sessions: &mockSessionFinder{},
		Notifier: NewStatsRefreshingNotifier(stats, nil),
	})

	assert.Equal(t, model.GlobalStats{}, stats.Global(ctx))

	_, err := reconciler.Reconcile(ctx, params("event_type", "impression", "zone_id", "z", "ymid", "a"))
	require.NoError(t, err)
	_, err = reconciler.Reconcile(ctx, params("event_type", "click", "zone_id", "z", "ymid", "b"))
	require.NoError(t, err)

	assert.Equal(t, model.GlobalStats{Impressions: 1, Clicks: 1, UniqueUsers: 2}, stats.Global(ctx))
}

func TestGlobalStats_ReflectsRecordedEventsWithCache(t *testing.T) {
	ctx := context.Background()
	events := &mockAdEventRepository{}
	stats := NewStatsService(StatsDeps{
		Stats:  countingStatsRepository{events: events},
		Events: events,
		Cache:  &mockStatsCache{},
	})
	svc := NewEventService(zap.NewNop(), events, NewStatsRefreshingNotifier(stats, nil))

	assert.Equal(t, int64(0), stats.Global(ctx).Clicks)
	_, err := svc.Record(ctx, RecordEventInput{EventType: "click", ZoneID: "z", TelegramID: "7"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Global(ctx).Clicks)
}

func TestStatsRefreshingNotifier_ForwardsAfterInvalidating(t *testing.T) {
	cache := &mockStatsCache{cached: &model.GlobalStats{Clicks: 9}}
	stats := NewStatsService(StatsDeps{Stats: &mockStatsRepository{}, Cache: cache})
	next := &mockNotifier{err: errors.New("nats down")}

	err := NewStatsRefreshingNotifier(stats, next).Publish(context.Background(), &model.AdEvent{ID: 3})
	require.Error(t, err)
	assert.Equal(t, 1, cache.invalidated)
	assert.Nil(t, cache.cached)
	require.Len(t, next.published, 1)
	assert.Equal(t, uint(3), next.published[0].ID)
}
