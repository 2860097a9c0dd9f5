package repository

import (
	"context"
	"testing"
	"time"

	"tadbirbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStateRepository(t *testing.T) {
	repo := NewMemoryStateRepository(time.Hour)
	ctx := context.Background()

	t.Run("SetAndGetState", func(t *testing.T) {
		state := &models.UserState{
			UserID:      1,
			CurrentStep: models.StateWaitingFullName,
			TempData:    map[string]interface{}{"lang": "ru"},
		}

		require.NoError(t, repo.SetState(ctx, state))

		got, err := repo.GetState(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, models.StateWaitingFullName, got.CurrentStep)
	})

	t.Run("GetNonExistentState", func(t *testing.T) {
		got, err := repo.GetState(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ClearState", func(t *testing.T) {
		state := &models.UserState{UserID: 2, CurrentStep: models.StateWaitingContact}
		repo.SetState(ctx, state)

		require.NoError(t, repo.ClearState(ctx, 2))

		got, _ := repo.GetState(ctx, 2)
		assert.Nil(t, got)
	})

	t.Run("StateExpires", func(t *testing.T) {
		shortRepo := NewMemoryStateRepository(time.Millisecond)
		state := &models.UserState{UserID: 3, CurrentStep: models.StateWaitingLanguage}
		require.NoError(t, shortRepo.SetState(ctx, state))

		time.Sleep(5 * time.Millisecond)

		got, err := shortRepo.GetState(ctx, 3)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("RateLimit", func(t *testing.T) {
		allowed, err := repo.CheckRateLimit(ctx, 4, 2, time.Hour)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, _ = repo.CheckRateLimit(ctx, 4, 2, time.Hour)
		assert.True(t, allowed)

		allowed, _ = repo.CheckRateLimit(ctx, 4, 2, time.Hour)
		assert.False(t, allowed)
	})

	t.Run("RateLimitWindowReset", func(t *testing.T) {
		allowed, err := repo.CheckRateLimit(ctx, 5, 1, time.Millisecond)
		require.NoError(t, err)
		assert.True(t, allowed)

		time.Sleep(5 * time.Millisecond)

		allowed, _ = repo.CheckRateLimit(ctx, 5, 1, time.Millisecond)
		assert.True(t, allowed)
	})
}
