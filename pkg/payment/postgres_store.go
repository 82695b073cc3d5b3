package payment

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sawitharvest/billing/pkg/plan"
)

// PostgresStore persists transactions in the payment_transactions table
// (migrations/00002_create_payment_transactions.sql), which carries a
// partial index on unactivated SUCCESS rows for the reconciliation sweep.
//
// The conditional UPDATE in Resolve is the cross-process compare-and-set:
// the WHERE clause on status makes the PENDING -> terminal transition
// happen at most once no matter how many gateway callbacks race.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a Store backed by the given connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Save(ctx context.Context, txn *Transaction) error {
	const q = `
		INSERT INTO payment_transactions
			(id, user_id, tier, method, amount, status, instructions, created_at, expires_at, resolved_at, activated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := s.pool.Exec(ctx, q,
		txn.ID, txn.UserID, string(txn.Tier), string(txn.Method), txn.AmountMinorUnits,
		string(txn.Status), txn.Instructions, txn.CreatedAt, txn.ExpiresAt, txn.ResolvedAt, txn.Activated,
	)
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Transaction, error) {
	const q = `
		SELECT id, user_id, tier, method, amount, status, instructions, created_at, expires_at, resolved_at, activated
		FROM payment_transactions
		WHERE id = $1`

	return scanTransaction(s.pool.QueryRow(ctx, q, id))
}

func (s *PostgresStore) Resolve(ctx context.Context, id string, to Status, resolvedAt time.Time) (bool, error) {
	const q = `
		UPDATE payment_transactions
		SET status = $2, resolved_at = $3
		WHERE id = $1 AND status = $4`

	tag, err := s.pool.Exec(ctx, q, id, string(to), resolvedAt, string(StatusPending))
	if err != nil {
		return false, errors.Join(ErrStoreFailure, err)
	}
	if tag.RowsAffected() == 0 {
		// Either the ID is unknown or the row already left PENDING.
		if _, err := s.Get(ctx, id); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

func (s *PostgresStore) MarkActivated(ctx context.Context, id string) error {
	const q = `UPDATE payment_transactions SET activated = TRUE WHERE id = $1`

	tag, err := s.pool.Exec(ctx, q, id)
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (s *PostgresStore) ListUnreconciled(ctx context.Context, cutoff time.Time, limit int) ([]*Transaction, error) {
	const q = `
		SELECT id, user_id, tier, method, amount, status, instructions, created_at, expires_at, resolved_at, activated
		FROM payment_transactions
		WHERE status = $1 AND NOT activated AND resolved_at < $2
		ORDER BY resolved_at
		LIMIT $3`

	// A NULL limit means no limit, matching the memory store's treatment
	// of non-positive values.
	var rowCap *int
	if limit > 0 {
		rowCap = &limit
	}

	rows, err := s.pool.Query(ctx, q, string(StatusSuccess), cutoff, rowCap)
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	defer rows.Close()

	var out []*Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	return out, nil
}

func scanTransaction(row pgx.Row) (*Transaction, error) {
	var (
		txn    Transaction
		tier   string
		method string
		status string
	)
	err := row.Scan(
		&txn.ID, &txn.UserID, &tier, &method, &txn.AmountMinorUnits,
		&status, &txn.Instructions, &txn.CreatedAt, &txn.ExpiresAt, &txn.ResolvedAt, &txn.Activated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, errors.Join(ErrStoreFailure, err)
	}

	txn.Tier = plan.Tier(tier)
	txn.Method = Method(method)
	txn.Status = Status(status)
	return &txn, nil
}
