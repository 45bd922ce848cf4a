package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Carlos20473736/monetag-tracker/internal/app/model"
	"gorm.io/gorm"
)

// AdSessionRepository defines the data access contract for ad sessions.
type AdSessionRepository interface {
	Create(ctx context.Context, session *model.AdSession) error
	FindLatestActive(ctx context.Context, zoneID string, now time.Time) (*model.AdSession, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type adSessionRepository struct {
	db *gorm.DB
}

// NewAdSessionRepository returns a GORM-backed AdSessionRepository.
func NewAdSessionRepository(db *gorm.DB) AdSessionRepository {
	return &adSessionRepository{db: db}
}

func (r *adSessionRepository) Create(ctx context.Context, session *model.AdSession) error {
	if r.db == nil {
		return ErrStorageUnavailable
	}
	return r.db.WithContext(ctx).Create(session).Error
}

// FindLatestActive returns the most recently created session for zoneID
// whose expiry lies after now. Expiry is always re-checked here, so stale
// rows left behind by a skipped sweep never match.
func (r *adSessionRepository) FindLatestActive(ctx context.Context, zoneID string, now time.Time) (*model.AdSession, error) {
	if r.db == nil {
		return nil, ErrSessionNotFound
	}

	var session model.AdSession
	err := r.db.WithContext(ctx).
		Where("zone_id = ? AND expires_at > ?", zoneID, now.UTC()).
		Order("created_at DESC").
		Order("id DESC").
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *adSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if r.db == nil {
		return 0, ErrStorageUnavailable
	}
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", now.UTC()).
		Delete(&model.AdSession{})
	return result.RowsAffected, result.Error
}
