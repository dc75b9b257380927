package credits

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	// GetOrCreate returns the user's account, creating a Free one on first access.
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*Account, error)
	// Consume increments usage and appends one usage event atomically. It
	// returns ErrInsufficientCredits if the increment would overdraw the account.
	Consume(ctx context.Context, req ConsumeRequest) (*Account, error)
	ListUsage(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*UsageEvent, error)
	CountUsage(ctx context.Context, userID uuid.UUID) (int64, error)
	// ResetExpired zeroes monthly usage for every account whose reset date has
	// passed and moves the reset date to the start of the next month.
	ResetExpired(ctx context.Context, now time.Time) (int64, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

const accountColumns = `user_id, plan_type, monthly_credits, additional_credits,
	credits_used_this_month, reset_date, created_at, updated_at`

func scanAccount(row pgx.Row) (*Account, error) {
	a := &Account{}
	err := row.Scan(&a.UserID, &a.PlanType, &a.MonthlyCredits, &a.AdditionalCredits,
		&a.CreditsUsedThisMonth, &a.ResetDate, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *postgresRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*Account, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_credits (user_id, plan_type, monthly_credits, reset_date)
		VALUES ($1, $2, $3, date_trunc('month', NOW()) + INTERVAL '1 month')
		ON CONFLICT (user_id) DO NOTHING`,
		userID, PlanFree, PlanFree.MonthlyAllowance())
	if err != nil {
		return nil, fmt.Errorf("ensuring credit account: %w", err)
	}

	a, err := scanAccount(r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM user_credits WHERE user_id = $1`, userID))
	if err != nil {
		return nil, fmt.Errorf("fetching credit account: %w", err)
	}
	return a, nil
}

func (r *postgresRepository) Consume(ctx context.Context, req ConsumeRequest) (*Account, error) {
	metadata, err := json.Marshal(req.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshaling usage metadata: %w", err)
	}

	var account *Account
	err = pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		a, err := scanAccount(tx.QueryRow(ctx, `
			UPDATE user_credits
			SET credits_used_this_month = credits_used_this_month + $2,
			    updated_at = NOW()
			WHERE user_id = $1
			  AND monthly_credits + additional_credits - credits_used_this_month >= $2
			RETURNING `+accountColumns,
			req.UserID, req.Cost))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrInsufficientCredits
			}
			return fmt.Errorf("incrementing credit usage: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO credit_usage_events (id, user_id, action_type, credits_used, description, metadata)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.New(), req.UserID, req.Action, req.Cost, req.Description, json.RawMessage(metadata))
		if err != nil {
			return fmt.Errorf("inserting usage event: %w", err)
		}

		account = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (r *postgresRepository) ListUsage(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*UsageEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, action_type, credits_used, description, metadata, created_at
		FROM credit_usage_events
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying usage events: %w", err)
	}
	defer rows.Close()

	var events []*UsageEvent
	for rows.Next() {
		e := &UsageEvent{}
		if err := rows.Scan(&e.ID, &e.UserID, &e.ActionType, &e.CreditsUsed,
			&e.Description, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning usage event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *postgresRepository) CountUsage(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM credit_usage_events WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting usage events: %w", err)
	}
	return count, nil
}

func (r *postgresRepository) ResetExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE user_credits
		SET credits_used_this_month = 0,
		    reset_date = date_trunc('month', $1::timestamptz) + INTERVAL '1 month',
		    updated_at = NOW()
		WHERE reset_date <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("resetting monthly credits: %w", err)
	}
	return tag.RowsAffected(), nil
}
