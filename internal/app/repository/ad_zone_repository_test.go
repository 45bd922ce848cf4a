package repository

import (
	"context"
	"testing"

	"github.com/Carlos20473736/monetag-tracker/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdZoneRepository_CreateGetList(t *testing.T) {
	ctx := context.Background()
	repo := NewAdZoneRepository(newTestDB(t))

	require.NoError(t, repo.Create(ctx, &model.AdZone{ZoneID: "10098295", ZoneName: ptr("Rewarded"), IsActive: true}))
	require.NoError(t, repo.Create(ctx, &model.AdZone{ZoneID: "10098296", IsActive: true}))

	zone, err := repo.GetByZoneID(ctx, "10098295")
	require.NoError(t, err)
	assert.Equal(t, "Rewarded", *zone.ZoneName)
	assert.True(t, zone.IsActive)

	zones, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, zones, 2)

	_, err = repo.GetByZoneID(ctx, "missing")
	require.ErrorIs(t, err, ErrZoneNotFound)
}

func TestAdZoneRepository_CreateDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := NewAdZoneRepository(newTestDB(t))

	require.NoError(t, repo.Create(ctx, &model.AdZone{ZoneID: "1", IsActive: true}))
	err := repo.Create(ctx, &model.AdZone{ZoneID: "1", IsActive: true})
	require.ErrorIs(t, err, ErrZoneExists)
}

func TestAdZoneRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewAdZoneRepository(newTestDB(t))

	require.NoError(t, repo.Create(ctx, &model.AdZone{ZoneID: "1", IsActive: true}))

	zone, err := repo.UpdateStatus(ctx, "1", false)
	require.NoError(t, err)
	assert.False(t, zone.IsActive)

	_, err = repo.UpdateStatus(ctx, "missing", true)
	require.ErrorIs(t, err, ErrZoneNotFound)
}
