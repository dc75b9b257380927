//go:build integration

package credits

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onego-ai/onego/internal/database/dbtest"
)

func TestPostgresRepository(t *testing.T) {
	pool := dbtest.NewPool(t)
	repo := NewRepository(pool)
	ctx := context.Background()

	t.Run("lazy free account", func(t *testing.T) {
		userID := uuid.New()

		a, err := repo.GetOrCreate(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, PlanFree, a.PlanType)
		assert.Equal(t, 50, a.MonthlyCredits)
		assert.Equal(t, 0, a.CreditsUsedThisMonth)
		assert.True(t, a.ResetDate.After(time.Now()))

		again, err := repo.GetOrCreate(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, a.ResetDate, again.ResetDate)
	})

	t.Run("consume writes one event", func(t *testing.T) {
		userID := uuid.New()
		_, err := repo.GetOrCreate(ctx, userID)
		require.NoError(t, err)

		a, err := repo.Consume(ctx, ConsumeRequest{
			UserID:      userID,
			Action:      ActionCourseCreation,
			Cost:        1,
			Description: "Created course: Negotiation",
			Metadata:    map[string]any{"module_count": 3},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, a.CreditsUsedThisMonth)

		events, err := repo.ListUsage(ctx, userID, 10, 0)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, ActionCourseCreation, events[0].ActionType)
		assert.JSONEq(t, `{"module_count":3}`, string(events[0].Metadata))

		count, err := repo.CountUsage(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("concurrent consumes never overdraw", func(t *testing.T) {
		userID := uuid.New()
		_, err := repo.GetOrCreate(ctx, userID)
		require.NoError(t, err)
		_, err = pool.Exec(ctx, `UPDATE user_credits SET credits_used_this_month = 48 WHERE user_id = $1`, userID)
		require.NoError(t, err)

		var wg sync.WaitGroup
		var mu sync.Mutex
		succeeded := 0
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Consume(ctx, ConsumeRequest{UserID: userID, Action: ActionCourseCreation, Cost: 1})
				if err == nil {
					mu.Lock()
					succeeded++
					mu.Unlock()
				} else {
					assert.ErrorIs(t, err, ErrInsufficientCredits)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 2, succeeded)
		a, err := repo.GetOrCreate(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 50, a.CreditsUsedThisMonth)

		count, err := repo.CountUsage(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("reset expired accounts", func(t *testing.T) {
		userID := uuid.New()
		_, err := repo.GetOrCreate(ctx, userID)
		require.NoError(t, err)
		_, err = pool.Exec(ctx, `
			UPDATE user_credits
			SET credits_used_this_month = 30, reset_date = NOW() - INTERVAL '1 day'
			WHERE user_id = $1`, userID)
		require.NoError(t, err)

		n, err := repo.ResetExpired(ctx, time.Now())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, int64(1))

		a, err := repo.GetOrCreate(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 0, a.CreditsUsedThisMonth)
		assert.True(t, a.ResetDate.After(time.Now()))
		assert.Equal(t, 1, a.ResetDate.UTC().Day())
	})
}
