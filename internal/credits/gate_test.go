package credits

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHolds(t *testing.T) (*HoldStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewHoldStore(client, time.Minute), mr
}

func TestGate_ZeroCreditsHasNoSideEffects(t *testing.T) {
	repo := newMemoryRepository()
	holds, mr := setupHolds(t)
	gate := NewGate(repo, holds, nil)
	ctx := context.Background()
	userID := uuid.New()
	repo.seed(userID, PlanFree, 50, 50)

	res, err := gate.Reserve(ctx, userID, ActionCourseCreation, CostPerAction)

	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, ErrInsufficientCredits))

	var insufficient *InsufficientCreditsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 0, insufficient.Available)
	assert.Equal(t, 1, insufficient.Required)
	assert.Equal(t, 1, insufficient.Shortfall())
	assert.Equal(t, "Insufficient credits. You have 0 credits available. This action requires 1 credits.", err.Error())

	assert.Equal(t, 50, repo.used(userID))
	assert.Equal(t, 0, repo.eventCount())
	assert.False(t, mr.Exists(holdKeyPrefix+userID.String()))
}

func TestGate_OneCreditCommitsExactlyOnce(t *testing.T) {
	repo := newMemoryRepository()
	holds, _ := setupHolds(t)
	gate := NewGate(repo, holds, nil)
	ctx := context.Background()
	userID := uuid.New()
	repo.seed(userID, PlanFree, 50, 49)

	res, err := gate.Reserve(ctx, userID, ActionCourseCreation, CostPerAction)
	require.NoError(t, err)

	summary, err := res.Commit(ctx, "Created course: Customer Service", map[string]any{"module_count": 3})
	require.NoError(t, err)

	assert.Equal(t, 0, summary.AvailableCredits)
	assert.Equal(t, 50, summary.TotalCredits)
	assert.Equal(t, 50, repo.used(userID))
	assert.Equal(t, 1, repo.eventCount())

	// a second commit or a release afterwards changes nothing
	_, err = res.Commit(ctx, "again", nil)
	assert.ErrorIs(t, err, ErrReservationClosed)
	res.Release(ctx)
	assert.Equal(t, 50, repo.used(userID))
	assert.Equal(t, 1, repo.eventCount())

	outstanding, err := holds.Outstanding(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, outstanding)
}

func TestGate_ReleaseConsumesNothing(t *testing.T) {
	repo := newMemoryRepository()
	holds, _ := setupHolds(t)
	gate := NewGate(repo, holds, nil)
	ctx := context.Background()
	userID := uuid.New()

	res, err := gate.Reserve(ctx, userID, ActionWebScraping, CostPerAction)
	require.NoError(t, err)

	held, err := holds.Outstanding(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, held)

	res.Release(ctx)

	held, err = holds.Outstanding(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, held)
	assert.Equal(t, 0, repo.used(userID))
	assert.Equal(t, 0, repo.eventCount())
}

func TestGate_HoldsCountAgainstAvailability(t *testing.T) {
	repo := newMemoryRepository()
	holds, _ := setupHolds(t)
	gate := NewGate(repo, holds, nil)
	ctx := context.Background()
	userID := uuid.New()
	repo.seed(userID, PlanFree, 50, 49)

	first, err := gate.Reserve(ctx, userID, ActionCourseCreation, CostPerAction)
	require.NoError(t, err)

	// the last credit is already held by the first reservation
	_, err = gate.Reserve(ctx, userID, ActionCourseCreation, CostPerAction)
	require.ErrorIs(t, err, ErrInsufficientCredits)

	first.Release(ctx)

	second, err := gate.Reserve(ctx, userID, ActionCourseCreation, CostPerAction)
	require.NoError(t, err)
	second.Release(ctx)
}

func TestGate_HoldsFailOpen(t *testing.T) {
	repo := newMemoryRepository()
	holds, mr := setupHolds(t)
	mr.Close()
	gate := NewGate(repo, holds, nil)
	ctx := context.Background()
	userID := uuid.New()

	res, err := gate.Reserve(ctx, userID, ActionCourseCreation, CostPerAction)
	require.NoError(t, err)

	_, err = res.Commit(ctx, "created", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.used(userID))
}

func TestGate_CommitRefusesOverdraw(t *testing.T) {
	repo := newMemoryRepository()
	gate := NewGate(repo, nil, nil)
	ctx := context.Background()
	userID := uuid.New()
	repo.seed(userID, PlanFree, 50, 49)

	res, err := gate.Reserve(ctx, userID, ActionCourseCreation, CostPerAction)
	require.NoError(t, err)

	// another request spends the last credit between check and consume
	repo.seed(userID, PlanFree, 50, 50)

	_, err = res.Commit(ctx, "created", nil)
	require.ErrorIs(t, err, ErrInsufficientCredits)
	assert.Equal(t, 50, repo.used(userID))
	assert.Equal(t, 0, repo.eventCount())
}

func TestGate_PlanRestriction(t *testing.T) {
	tests := []struct {
		name    string
		plan    PlanType
		action  ActionType
		wantErr error
	}{
		{"free pdf", PlanFree, ActionPDFProcessing, ErrPlanRestricted},
		{"free web", PlanFree, ActionWebScraping, nil},
		{"free course", PlanFree, ActionCourseCreation, nil},
		{"standard pdf", PlanStandard, ActionPDFProcessing, nil},
		{"pro pdf", PlanPro, ActionPDFProcessing, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemoryRepository()
			gate := NewGate(repo, nil, nil)
			userID := uuid.New()
			repo.seed(userID, tt.plan, tt.plan.MonthlyAllowance(), 0)

			res, err := gate.Reserve(context.Background(), userID, tt.action, CostPerAction)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, res)
				return
			}
			require.NoError(t, err)
			res.Release(context.Background())
		})
	}
}

func TestGate_SummaryCreatesFreeAccount(t *testing.T) {
	gate := NewGate(newMemoryRepository(), nil, nil)

	summary, err := gate.Summary(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Equal(t, PlanFree, summary.PlanType)
	assert.Equal(t, 50, summary.TotalCredits)
	assert.Equal(t, 50, summary.AvailableCredits)
	assert.Equal(t, 0, summary.CreditsUsedThisMonth)
}

func TestGate_ListUsage(t *testing.T) {
	repo := newMemoryRepository()
	gate := NewGate(repo, nil, nil)
	ctx := context.Background()
	userID := uuid.New()

	for range 3 {
		res, err := gate.Reserve(ctx, userID, ActionCourseCreation, CostPerAction)
		require.NoError(t, err)
		_, err = res.Commit(ctx, "created", nil)
		require.NoError(t, err)
	}

	events, total, err := gate.ListUsage(ctx, userID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, events, 2)

	events, _, err = gate.ListUsage(ctx, userID, 2, 2)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestPlanAllowances(t *testing.T) {
	assert.Equal(t, 50, PlanFree.MonthlyAllowance())
	assert.Equal(t, 500, PlanStandard.MonthlyAllowance())
	assert.Equal(t, 1500, PlanPro.MonthlyAllowance())
	assert.Equal(t, 4000, PlanBusiness.MonthlyAllowance())
	assert.Equal(t, 0, PlanEnterprise.MonthlyAllowance())
}
