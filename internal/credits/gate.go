package credits

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/onego-ai/onego/internal/metrics"
	inats "github.com/onego-ai/onego/internal/nats"
)

// Gate meters actions against a user's credit account. Callers Reserve before
// doing any work, then Commit on success or Release on failure.
type Gate struct {
	repo   Repository
	holds  *HoldStore
	events *inats.Publisher
}

// NewGate creates a Gate. holds and events may be nil.
func NewGate(repo Repository, holds *HoldStore, events *inats.Publisher) *Gate {
	return &Gate{repo: repo, holds: holds, events: events}
}

// Summary returns the user's account, creating it on first access.
func (g *Gate) Summary(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	a, err := g.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("getting credit account: %w", err)
	}
	return summarize(a), nil
}

func (g *Gate) ListUsage(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]*UsageEvent, int64, error) {
	events, err := g.repo.ListUsage(ctx, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	total, err := g.repo.CountUsage(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// Reserve checks that the user can afford cost for action. On failure it
// returns *InsufficientCreditsError or ErrPlanRestricted and has no side
// effects. Outstanding holds from concurrent reservations count against the
// available balance.
func (g *Gate) Reserve(ctx context.Context, userID uuid.UUID, action ActionType, cost int) (*Reservation, error) {
	account, err := g.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("getting credit account: %w", err)
	}

	if action == ActionPDFProcessing && account.PlanType == PlanFree {
		metrics.CreditRejectionsTotal.WithLabelValues(string(action), "plan").Inc()
		return nil, ErrPlanRestricted
	}

	available := account.Available()
	if g.holds != nil {
		held, err := g.holds.Outstanding(ctx, userID)
		if err != nil {
			slog.Warn("credits: reading holds failed, ignoring them", "error", err, "user_id", userID)
		} else {
			available = max(0, available-held)
		}
	}

	if available < cost {
		metrics.CreditRejectionsTotal.WithLabelValues(string(action), "insufficient").Inc()
		return nil, &InsufficientCreditsError{Available: available, Required: cost}
	}

	res := &Reservation{
		gate:   g,
		holdID: uuid.NewString(),
		UserID: userID,
		Action: action,
		Cost:   cost,
	}
	if g.holds != nil {
		if err := g.holds.Place(ctx, userID, res.holdID, cost); err != nil {
			slog.Warn("credits: placing hold failed, continuing without it", "error", err, "user_id", userID)
		} else {
			res.held = true
		}
	}
	return res, nil
}

// Reservation is an approved, not yet consumed, credit spend. Exactly one of
// Commit or Release takes effect; later calls are no-ops.
type Reservation struct {
	gate   *Gate
	holdID string
	held   bool

	mu   sync.Mutex
	done bool

	UserID uuid.UUID
	Action ActionType
	Cost   int
}

var ErrReservationClosed = errors.New("reservation already committed or released")

// Commit consumes the reserved credits and records one usage event. It fails
// with ErrInsufficientCredits if the balance changed since Reserve.
func (r *Reservation) Commit(ctx context.Context, description string, metadata map[string]any) (*Summary, error) {
	if !r.close() {
		return nil, ErrReservationClosed
	}
	defer r.dropHold(ctx)

	account, err := r.gate.repo.Consume(ctx, ConsumeRequest{
		UserID:      r.UserID,
		Action:      r.Action,
		Cost:        r.Cost,
		Description: description,
		Metadata:    metadata,
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientCredits) {
			metrics.CreditRejectionsTotal.WithLabelValues(string(r.Action), "overdrawn").Inc()
		}
		return nil, fmt.Errorf("consuming credits: %w", err)
	}

	metrics.CreditsConsumedTotal.WithLabelValues(string(r.Action)).Add(float64(r.Cost))

	summary := summarize(account)
	if err := r.gate.events.PublishCreditEvent(ctx, inats.CreditEvent{
		UserID:    r.UserID,
		Action:    string(r.Action),
		Credits:   r.Cost,
		Remaining: summary.AvailableCredits,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		slog.Warn("credits: publishing credit event", "error", err, "user_id", r.UserID)
	}

	return summary, nil
}

// Release abandons the reservation without consuming anything.
func (r *Reservation) Release(ctx context.Context) {
	if !r.close() {
		return
	}
	r.dropHold(ctx)
}

func (r *Reservation) close() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done {
		return false
	}
	r.done = true
	return true
}

func (r *Reservation) dropHold(ctx context.Context) {
	if !r.held {
		return
	}
	// The action's context may already be cancelled; the hold should still go.
	ctx = context.WithoutCancel(ctx)
	if err := r.gate.holds.Release(ctx, r.UserID, r.holdID, r.Cost); err != nil {
		slog.Warn("credits: releasing hold", "error", err, "user_id", r.UserID)
	}
}
