package repository

import (
	"context"
	"time"

	"github.com/Carlos20473736/monetag-tracker/internal/app/model"
	"gorm.io/gorm"
)

// AdEventRepository defines the data access contract for ad events.
// Events are append-only: there is no update operation.
type AdEventRepository interface {
	Create(ctx context.Context, event *model.AdEvent) error
	ListByTelegramID(ctx context.Context, telegramID string, limit int) ([]model.AdEvent, error)
	ListByZone(ctx context.Context, zoneID string, limit int) ([]model.AdEvent, error)
	ListAll(ctx context.Context, limit int) ([]model.AdEvent, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]model.AdEvent, error)
	ListByEmail(ctx context.Context, email string) ([]model.AdEvent, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type adEventRepository struct {
	db *gorm.DB
}

// NewAdEventRepository returns a GORM-backed AdEventRepository. A nil db
// yields a degraded repository: lists are empty and writes fail with
// ErrStorageUnavailable.
func NewAdEventRepository(db *gorm.DB) AdEventRepository {
	return &adEventRepository{db: db}
}

func (r *adEventRepository) Create(ctx context.Context, event *model.AdEvent) error {
	if r.db == nil {
		return ErrStorageUnavailable
	}
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *adEventRepository) ListByTelegramID(ctx context.Context, telegramID string, limit int) ([]model.AdEvent, error) {
	return r.list(ctx, normalizeLimit(limit), "telegram_id = ?", telegramID)
}

func (r *adEventRepository) ListByZone(ctx context.Context, zoneID string, limit int) ([]model.AdEvent, error) {
	return r.list(ctx, normalizeLimit(limit), "zone_id = ?", zoneID)
}

func (r *adEventRepository) ListAll(ctx context.Context, limit int) ([]model.AdEvent, error) {
	return r.list(ctx, normalizeLimit(limit), "")
}

// ListByDateRange returns every event created within [start, end].
func (r *adEventRepository) ListByDateRange(ctx context.Context, start, end time.Time) ([]model.AdEvent, error) {
	return r.list(ctx, 0, "created_at >= ? AND created_at <= ?", start.UTC(), end.UTC())
}

// ListByEmail matches the secondary correlation column, which carries the
// email recovered from a session.
func (r *adEventRepository) ListByEmail(ctx context.Context, email string) ([]model.AdEvent, error) {
	return r.list(ctx, 0, "sub_id2 = ?", email)
}

func (r *adEventRepository) DeleteAll(ctx context.Context) (int64, error) {
	if r.db == nil {
		return 0, ErrStorageUnavailable
	}
	result := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.AdEvent{})
	return result.RowsAffected, result.Error
}

func (r *adEventRepository) list(ctx context.Context, limit int, where string, args ...interface{}) ([]model.AdEvent, error) {
	result := []model.AdEvent{}
	if r.db == nil {
		return result, nil
	}

	q := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if where != "" {
		q = q.Where(where, args...)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	if err := q.Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// DefaultListLimit bounds list queries when the caller passes no limit.
const DefaultListLimit = 100

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
