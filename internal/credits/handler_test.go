package credits

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onego-ai/onego/internal/auth"
)

func withUser(r *http.Request, userID uuid.UUID) *http.Request {
	return r.WithContext(auth.WithUserClaims(r.Context(), &auth.AccessClaims{UserID: userID.String()}))
}

func TestHandler_GetSummary(t *testing.T) {
	repo := newMemoryRepository()
	h := NewHandler(NewGate(repo, nil, nil))
	userID := uuid.New()
	repo.seed(userID, PlanPro, 1500, 20)

	rec := httptest.NewRecorder()
	h.GetSummary(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/v1/credits", nil), userID))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data Summary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1480, body.Data.AvailableCredits)
	assert.Equal(t, 1500, body.Data.TotalCredits)
	assert.Equal(t, PlanPro, body.Data.PlanType)
}

func TestHandler_Unauthenticated(t *testing.T) {
	h := NewHandler(NewGate(newMemoryRepository(), nil, nil))

	rec := httptest.NewRecorder()
	h.GetSummary(rec, httptest.NewRequest(http.MethodGet, "/api/v1/credits", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.ListUsage(rec, httptest.NewRequest(http.MethodGet, "/api/v1/credits/usage", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_ListUsage(t *testing.T) {
	repo := newMemoryRepository()
	gate := NewGate(repo, nil, nil)
	h := NewHandler(gate)
	userID := uuid.New()
	ctx := context.Background()

	res, err := gate.Reserve(ctx, userID, ActionWebScraping, CostPerAction)
	require.NoError(t, err)
	_, err = res.Commit(ctx, "Extracted website content", nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ListUsage(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/v1/credits/usage?page=1&page_size=10", nil), userID))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data       []UsageEvent `json:"data"`
		TotalCount int64        `json:"total_count"`
		PageSize   int          `json:"page_size"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.TotalCount)
	assert.Equal(t, 10, body.PageSize)
	require.Len(t, body.Data, 1)
	assert.Equal(t, ActionWebScraping, body.Data[0].ActionType)
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		handled   bool
		status    int
		message   string
		shortfall int
	}{
		{
			name:      "insufficient with balance",
			err:       fmt.Errorf("reserving: %w", &InsufficientCreditsError{Available: 0, Required: 1}),
			handled:   true,
			status:    http.StatusPaymentRequired,
			message:   "Insufficient credits. You have 0 credits available. This action requires 1 credits.",
			shortfall: 1,
		},
		{
			name:      "shortfall larger than one",
			err:       &InsufficientCreditsError{Available: 2, Required: 5},
			handled:   true,
			status:    http.StatusPaymentRequired,
			message:   "Insufficient credits. You have 2 credits available. This action requires 5 credits.",
			shortfall: 3,
		},
		{
			name:    "overdrawn at commit",
			err:     fmt.Errorf("consuming credits: %w", ErrInsufficientCredits),
			handled: true,
			status:  http.StatusPaymentRequired,
			message: "Insufficient credits.",
		},
		{
			name:    "plan restricted",
			err:     ErrPlanRestricted,
			handled: true,
			status:  http.StatusForbidden,
			message: "this action requires a paid plan",
		},
		{
			name:    "unrelated",
			err:     errors.New("db down"),
			handled: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			handled := WriteError(rec, tt.err)

			assert.Equal(t, tt.handled, handled)
			if !tt.handled {
				return
			}
			assert.Equal(t, tt.status, rec.Code)
			var body struct {
				Error     string `json:"error"`
				Shortfall int    `json:"shortfall"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.message, body.Error)
			assert.Equal(t, tt.shortfall, body.Shortfall)
		})
	}
}
