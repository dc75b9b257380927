package credits

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// ResetScheduler runs the monthly credit reset on a cron schedule in UTC.
type ResetScheduler struct {
	repo     Repository
	cron     *cron.Cron
	schedule string
	now      func() time.Time
}

func NewResetScheduler(repo Repository, schedule string) *ResetScheduler {
	return &ResetScheduler{
		repo:     repo,
		cron:     cron.New(cron.WithLocation(time.UTC)),
		schedule: schedule,
		now:      time.Now,
	}
}

// RunOnce resets every account whose reset date has passed.
func (s *ResetScheduler) RunOnce(ctx context.Context) (int64, error) {
	n, err := s.repo.ResetExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		slog.Info("monthly credits reset", "accounts", n)
	}
	return n, nil
}

// Start catches up on resets missed while the service was down, then runs on
// the schedule until ctx is cancelled.
func (s *ResetScheduler) Start(ctx context.Context) error {
	if _, err := s.RunOnce(ctx); err != nil {
		slog.Error("credits: startup reset failed", "error", err)
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.RunOnce(ctx); err != nil {
			slog.Error("credits: scheduled reset failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling credit reset %q: %w", s.schedule, err)
	}

	s.cron.Start()
	slog.Info("credit reset scheduler started", "schedule", s.schedule)

	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}
