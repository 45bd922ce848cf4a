package repository

import (
	"context"

	"github.com/Carlos20473736/monetag-tracker/internal/app/model"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"
)

// StatsRepository computes aggregate counters over stored events.
type StatsRepository interface {
	GlobalStats(ctx context.Context) (model.GlobalStats, error)
}

const globalStatsSelect = `COUNT(CASE WHEN event_type = 'impression' THEN 1 END) AS impressions,
	COUNT(CASE WHEN event_type = 'click' THEN 1 END) AS clicks,
	COUNT(DISTINCT telegram_id) AS unique_users`

type gormStatsRepository struct {
	db *gorm.DB
}

// NewStatsRepository returns a GORM-backed StatsRepository.
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &gormStatsRepository{db: db}
}

func (r *gormStatsRepository) GlobalStats(ctx context.Context) (model.GlobalStats, error) {
	var stats model.GlobalStats
	if r.db == nil {
		return stats, nil
	}

	err := r.db.WithContext(ctx).
		Model(&model.AdEvent{}).
		Select(globalStatsSelect).
		Scan(&stats).Error
	return stats, err
}

type pgxStatsRepository struct {
	pool *pgxpool.Pool
}

// NewPgxStatsRepository returns a StatsRepository that runs the aggregate
// directly on a pgx pool, bypassing GORM's scanning.
func NewPgxStatsRepository(pool *pgxpool.Pool) StatsRepository {
	return &pgxStatsRepository{pool: pool}
}

func (r *pgxStatsRepository) GlobalStats(ctx context.Context) (model.GlobalStats, error) {
	var stats model.GlobalStats
	if r.pool == nil {
		return stats, nil
	}

	err := r.pool.QueryRow(ctx, "SELECT "+globalStatsSelect+" FROM ad_events").
		Scan(&stats.Impressions, &stats.Clicks, &stats.UniqueUsers)
	return stats, err
}
