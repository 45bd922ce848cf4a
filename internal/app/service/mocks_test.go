package service

import (
	"context"
	"time"

	"github.com/Carlos20473736/monetag-tracker/internal/app/model"
	"github.com/Carlos20473736/monetag-tracker/internal/app/repository"
)

type mockAdEventRepository struct {
	createFn      func(ctx context.Context, event *model.AdEvent) error
	listByEmailFn func(ctx context.Context, email string) ([]model.AdEvent, error)
	listAllFn     func(ctx context.Context, limit int) ([]model.AdEvent, error)
	rangeFn       func(ctx context.Context, start, end time.Time) ([]model.AdEvent, error)
	deleteAllFn   func(ctx context.Context) (int64, error)

	created []*model.AdEvent
}

func (m *mockAdEventRepository) Create(ctx context.Context, event *model.AdEvent) error {
	if m.createFn != nil {
		if err := m.createFn(ctx, event); err != nil {
			return err
		}
	}
	event.ID = uint(len(m.created) + 1)
	m.created = append(m.created, event)
	return nil
}

func (m *mockAdEventRepository) ListByTelegramID(ctx context.Context, telegramID string, limit int) ([]model.AdEvent, error) {
	return []model.AdEvent{}, nil
}

func (m *mockAdEventRepository) ListByZone(ctx context.Context, zoneID string, limit int) ([]model.AdEvent, error) {
	return []model.AdEvent{}, nil
}

func (m *mockAdEventRepository) ListAll(ctx context.Context, limit int) ([]model.AdEvent, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx, limit)
	}
	return []model.AdEvent{}, nil
}

func (m *mockAdEventRepository) ListByDateRange(ctx context.Context, start, end time.Time) ([]model.AdEvent, error) {
	if m.rangeFn != nil {
		return m.rangeFn(ctx, start, end)
	}
	return []model.AdEvent{}, nil
}

func (m *mockAdEventRepository) ListByEmail(ctx context.Context, email string) ([]model.AdEvent, error) {
	if m.listByEmailFn != nil {
		return m.listByEmailFn(ctx, email)
	}
	return []model.AdEvent{}, nil
}

func (m *mockAdEventRepository) DeleteAll(ctx context.Context) (int64, error) {
	if m.deleteAllFn != nil {
		return m.deleteAllFn(ctx)
	}
	return 0, nil
}

type mockSessionFinder struct {
	session *model.AdSession
	err     error
	calls   []string
}

func (m *mockSessionFinder) FindActive(ctx context.Context, zoneID string) (*model.AdSession, error) {
	m.calls = append(m.calls, zoneID)
	return m.session, m.err
}

type mockNotifier struct {
	err       error
	published []*model.AdEvent
}

func (m *mockNotifier) Publish(ctx context.Context, event *model.AdEvent) error {
	m.published = append(m.published, event)
	return m.err
}

type mockAdSessionRepository struct {
	createFn func(ctx context.Context, session *model.AdSession) error
	findFn   func(ctx context.Context, zoneID string, now time.Time) (*model.AdSession, error)
	deleteFn func(ctx context.Context, now time.Time) (int64, error)
}

func (m *mockAdSessionRepository) Create(ctx context.Context, session *model.AdSession) error {
	if m.createFn != nil {
		return m.createFn(ctx, session)
	}
	return nil
}

func (m *mockAdSessionRepository) FindLatestActive(ctx context.Context, zoneID string, now time.Time) (*model.AdSession, error) {
	if m.findFn != nil {
		return m.findFn(ctx, zoneID, now)
	}
	return nil, repository.ErrSessionNotFound
}

func (m *mockAdSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, now)
	}
	return 0, nil
}

type mockStatsRepository struct {
	stats model.GlobalStats
	err   error
	calls int
}

func (m *mockStatsRepository) GlobalStats(ctx context.Context) (model.GlobalStats, error) {
	m.calls++
	return m.stats, m.err
}

type mockStatsCache struct {
	cached      *model.GlobalStats
	invalidated int
}

func (m *mockStatsCache) Get(ctx context.Context) (model.GlobalStats, bool, error) {
	if m.cached == nil {
		return model.GlobalStats{}, false, nil
	}
	return *m.cached, true, nil
}

func (m *mockStatsCache) Set(ctx context.Context, stats model.GlobalStats) error {
	m.cached = &stats
	return nil
}

func (m *mockStatsCache) Invalidate(ctx context.Context) error {
	m.invalidated++
	m.cached = nil
	return nil
}

type mockAdZoneRepository struct {
	createFn func(ctx context.Context, zone *model.AdZone) error
	getFn    func(ctx context.Context, zoneID string) (*model.AdZone, error)
	updateFn func(ctx context.Context, zoneID string, active bool) (*model.AdZone, error)
}

func (m *mockAdZoneRepository) Create(ctx context.Context, zone *model.AdZone) error {
	if m.createFn != nil {
		return m.createFn(ctx, zone)
	}
	return nil
}

func (m *mockAdZoneRepository) GetByZoneID(ctx context.Context, zoneID string) (*model.AdZone, error) {
	if m.getFn != nil {
		return m.getFn(ctx, zoneID)
	}
	return nil, repository.ErrZoneNotFound
}

func (m *mockAdZoneRepository) List(ctx context.Context) ([]model.AdZone, error) {
	return []model.AdZone{}, nil
}

func (m *mockAdZoneRepository) UpdateStatus(ctx context.Context, zoneID string, active bool) (*model.AdZone, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, zoneID, active)
	}
	return nil, repository.ErrZoneNotFound
}
