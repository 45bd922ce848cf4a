package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Carlos20473736/monetag-tracker/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func session(token, zone, user string, created time.Time) *model.AdSession {
	return &model.AdSession{
		UserID:       user,
		UserEmail:    user + "@example.com",
		ZoneID:       zone,
		SessionToken: token,
		CreatedAt:    created,
		ExpiresAt:    created.Add(model.SessionTTL),
	}
}

func TestAdSessionRepository_FindLatestActive(t *testing.T) {
	ctx := context.Background()
	repo := NewAdSessionRepository(newTestDB(t))
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	// Twelve live sessions so the newest would be missed by a bounded oldest-first page.
	for i := 0; i < 12; i++ {
		created := now.Add(-4*time.Minute + time.Duration(i)*time.Second)
		require.NoError(t, repo.Create(ctx, session("t"+string(rune('a'+i)), "z1", "u"+string(rune('a'+i)), created)))
	}
	require.NoError(t, repo.Create(ctx, session("other", "z2", "other", now)))

	got, err := repo.FindLatestActive(ctx, "z1", now)
	require.NoError(t, err)
	assert.Equal(t, "ul", got.UserID)
	assert.Equal(t, "z1", got.ZoneID)
}

func TestAdSessionRepository_FindLatestActive_IgnoresExpired(t *testing.T) {
	ctx := context.Background()
	repo := NewAdSessionRepository(newTestDB(t))
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, session("old", "z1", "u1", now.Add(-10*time.Minute))))

	_, err := repo.FindLatestActive(ctx, "z1", now)
	require.ErrorIs(t, err, ErrSessionNotFound)

	// Expiry is exclusive: a session is gone at exactly expires_at.
	require.NoError(t, repo.Create(ctx, session("edge", "z1", "u2", now.Add(-model.SessionTTL))))
	_, err = repo.FindLatestActive(ctx, "z1", now)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAdSessionRepository_DeleteExpiredIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewAdSessionRepository(newTestDB(t))
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, session("a", "z1", "u1", now.Add(-10*time.Minute))))
	require.NoError(t, repo.Create(ctx, session("b", "z1", "u2", now.Add(-8*time.Minute))))
	require.NoError(t, repo.Create(ctx, session("c", "z1", "u3", now.Add(-time.Minute))))

	removed, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	removed, err = repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, removed)

	got, err := repo.FindLatestActive(ctx, "z1", now)
	require.NoError(t, err)
	assert.Equal(t, "u3", got.UserID)
}

func TestAdSessionRepository_Degraded(t *testing.T) {
	ctx := context.Background()
	repo := NewAdSessionRepository(nil)

	require.ErrorIs(t, repo.Create(ctx, session("a", "z", "u", time.Now())), ErrStorageUnavailable)

	_, err := repo.FindLatestActive(ctx, "z", time.Now())
	require.ErrorIs(t, err, ErrSessionNotFound)

	_, err = repo.DeleteExpired(ctx, time.Now())
	require.ErrorIs(t, err, ErrStorageUnavailable)
}
