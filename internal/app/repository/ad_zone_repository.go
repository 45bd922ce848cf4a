package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Carlos20473736/monetag-tracker/internal/app/model"
	"gorm.io/gorm"
)

// AdZoneRepository defines the data access contract for ad zones.
type AdZoneRepository interface {
	Create(ctx context.Context, zone *model.AdZone) error
	GetByZoneID(ctx context.Context, zoneID string) (*model.AdZone, error)
	List(ctx context.Context) ([]model.AdZone, error)
	UpdateStatus(ctx context.Context, zoneID string, active bool) (*model.AdZone, error)
}

type adZoneRepository struct {
	db *gorm.DB
}

// NewAdZoneRepository returns a GORM-backed AdZoneRepository.
func NewAdZoneRepository(db *gorm.DB) AdZoneRepository {
	return &adZoneRepository{db: db}
}

func (r *adZoneRepository) Create(ctx context.Context, zone *model.AdZone) error {
	if r.db == nil {
		return ErrStorageUnavailable
	}
	if err := r.db.WithContext(ctx).Create(zone).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrZoneExists
		}
		return err
	}
	return nil
}

func (r *adZoneRepository) GetByZoneID(ctx context.Context, zoneID string) (*model.AdZone, error) {
	if r.db == nil {
		return nil, ErrZoneNotFound
	}

	var zone model.AdZone
	if err := r.db.WithContext(ctx).Where("zone_id = ?", zoneID).First(&zone).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrZoneNotFound
		}
		return nil, err
	}
	return &zone, nil
}

func (r *adZoneRepository) List(ctx context.Context) ([]model.AdZone, error) {
	result := []model.AdZone{}
	if r.db == nil {
		return result, nil
	}

	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func (r *adZoneRepository) UpdateStatus(ctx context.Context, zoneID string, active bool) (*model.AdZone, error) {
	if r.db == nil {
		return nil, ErrStorageUnavailable
	}

	result := r.db.WithContext(ctx).
		Model(&model.AdZone{}).
		Where("zone_id = ?", zoneID).
		Updates(map[string]interface{}{
			"is_active":  active,
			"updated_at": time.Now().UTC(),
		})

	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrZoneNotFound
	}

	return r.GetByZoneID(ctx, zoneID)
}
