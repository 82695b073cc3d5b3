package subscription

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sawitharvest/billing/pkg/plan"
)

// PostgresStore persists subscriptions in the single-row-per-user
// subscriptions table (migrations/00001_create_subscriptions.sql).
// The PRIMARY KEY on user_id enforces the one-slot-per-user invariant at
// the storage layer rather than by convention.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a Store backed by the given connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Get(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	const q = `
		SELECT user_id, tier, start_date, end_date, amount, status, created_at, updated_at, cancelled_at
		FROM subscriptions
		WHERE user_id = $1`

	var (
		sub    Subscription
		tier   string
		status string
	)
	err := s.pool.QueryRow(ctx, q, userID).Scan(
		&sub.UserID, &tier, &sub.StartDate, &sub.EndDate, &sub.AmountMinorUnits,
		&status, &sub.CreatedAt, &sub.UpdatedAt, &sub.CancelledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, errors.Join(ErrStoreFailure, err)
	}

	sub.Tier = plan.Tier(tier)
	sub.Status = Status(status)
	return &sub, nil
}

func (s *PostgresStore) Save(ctx context.Context, sub *Subscription) error {
	const q = `
		INSERT INTO subscriptions (user_id, tier, start_date, end_date, amount, status, created_at, updated_at, cancelled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			tier = EXCLUDED.tier,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			amount = EXCLUDED.amount,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at,
			cancelled_at = EXCLUDED.cancelled_at`

	_, err := s.pool.Exec(ctx, q,
		sub.UserID, string(sub.Tier), sub.StartDate, sub.EndDate, sub.AmountMinorUnits,
		string(sub.Status), sub.CreatedAt, sub.UpdatedAt, sub.CancelledAt,
	)
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}
