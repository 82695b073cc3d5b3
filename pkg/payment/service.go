package payment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sawitharvest/billing/pkg/plan"
)

// Activator applies the subscription side effect of a successful payment.
// The subscription manager is the production implementation.
type Activator interface {
	Activate(ctx context.Context, userID uuid.UUID, tier plan.Tier, amountMinorUnits int64) error
}

// Service owns the lifecycle of payment transactions: create with
// method-specific instructions, resolve exactly once, and hand successful
// resolutions to the Activator.
type Service struct {
	catalog   *plan.Catalog
	store     Store
	activator Activator
	log       *slog.Logger
	now       func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock overrides the time source. Intended for expiry tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates a Service. Panics if a required dependency is nil to
// fail fast during initialization.
func NewService(catalog *plan.Catalog, store Store, activator Activator, opts ...ServiceOption) *Service {
	if catalog == nil {
		panic("payment: plan catalog is required")
	}
	if store == nil {
		panic("payment: transaction store is required")
	}
	if activator == nil {
		panic("payment: activator is required")
	}

	s := &Service{
		catalog:   catalog,
		store:     store,
		activator: activator,
		log:       slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateParams describes a checkout attempt.
type CreateParams struct {
	UserID           uuid.UUID
	Tier             plan.Tier
	Method           Method
	AmountMinorUnits int64
	// Bank selects the virtual-account bank for bank transfers.
	// Empty defaults to BCA; ignored for other methods.
	Bank Bank
}

// Create validates the checkout against the catalog, generates payment
// instructions, and persists a PENDING transaction. The amount must match
// the catalog price exactly: a mismatch is a hard rejection and is logged
// as a possible stale-client or tampering signal, never silently corrected.
func (s *Service) Create(ctx context.Context, p CreateParams) (*Transaction, error) {
	if !p.Method.Valid() {
		return nil, ErrInvalidMethod
	}

	price, err := s.catalog.Price(p.Tier)
	if err != nil {
		return nil, err
	}
	if p.AmountMinorUnits != price {
		s.log.WarnContext(ctx, "checkout amount does not match catalog price",
			slog.String("user_id", p.UserID.String()),
			slog.String("tier", string(p.Tier)),
			slog.Int64("amount", p.AmountMinorUnits),
			slog.Int64("catalog_price", price),
		)
		return nil, ErrPriceMismatch
	}

	now := s.now().UTC()
	txn := &Transaction{
		ID:               newTransactionID(now),
		UserID:           p.UserID,
		Tier:             p.Tier,
		Method:           p.Method,
		AmountMinorUnits: p.AmountMinorUnits,
		Status:           StatusPending,
		CreatedAt:        now,
		ExpiresAt:        now.Add(paymentWindow),
	}

	txn.Instructions, err = buildInstructions(p.Method, p.Bank, txn.ID, p.AmountMinorUnits, now)
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, txn); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "payment transaction created",
		slog.String("transaction_id", txn.ID),
		slog.String("user_id", p.UserID.String()),
		slog.String("tier", string(p.Tier)),
		slog.String("method", string(p.Method)),
	)
	return txn, nil
}

// Resolve moves the transaction out of PENDING exactly once. A second call
// gets ErrAlreadyResolved regardless of outcome: a double resolve usually
// signals a gateway retry bug worth surfacing, so it is idempotent-reject
// rather than idempotent-success. A transaction past its payment window
// yields ErrTransactionExpired even when the gateway reports success late.
//
// On SUCCESS the transaction is marked first and the subscription
// activation attempted second. When activation fails the resolution
// stands and ErrActivationDeferred is returned; the reconciliation sweep
// retries activation from the unactivated SUCCESS rows.
func (s *Service) Resolve(ctx context.Context, id string, outcome Outcome) error {
	target, ok := outcome.status()
	if !ok {
		return ErrInvalidOutcome
	}

	txn, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}

	if txn.Status != StatusPending {
		return ErrAlreadyResolved
	}

	now := s.now().UTC()
	if now.After(txn.ExpiresAt) {
		// Authoritative expiry: write it back so later readers agree,
		// best effort since every reader re-derives from expiresAt anyway.
		if _, err := s.store.Resolve(ctx, id, StatusExpired, now); err != nil {
			s.log.WarnContext(ctx, "failed to persist transaction expiry",
				slog.String("transaction_id", id), slog.Any("error", err))
		}
		return ErrTransactionExpired
	}

	if err := transitions.Transition(txn.Status, target); err != nil {
		return err
	}

	moved, err := s.store.Resolve(ctx, id, target, now)
	if err != nil {
		return err
	}
	if !moved {
		// Lost the race against a concurrent resolver.
		return ErrAlreadyResolved
	}

	s.log.InfoContext(ctx, "payment transaction resolved",
		slog.String("transaction_id", id),
		slog.String("status", string(target)),
	)

	if target != StatusSuccess {
		return nil
	}

	txn.Status = StatusSuccess
	txn.ResolvedAt = &now
	return s.activate(ctx, txn)
}

// activate applies the subscription side effect of a SUCCESS transaction
// and records the activation marker. Shared with the reconciliation sweep.
func (s *Service) activate(ctx context.Context, txn *Transaction) error {
	if err := s.activator.Activate(ctx, txn.UserID, txn.Tier, txn.AmountMinorUnits); err != nil {
		s.log.ErrorContext(ctx, "subscription activation failed, deferring to reconciliation",
			slog.String("transaction_id", txn.ID),
			slog.String("user_id", txn.UserID.String()),
			slog.Any("error", err),
		)
		return errors.Join(ErrActivationDeferred, err)
	}

	if err := s.store.MarkActivated(ctx, txn.ID); err != nil {
		// The activation itself is an idempotent upsert; a lost marker
		// only means the sweep re-activates once more.
		s.log.WarnContext(ctx, "failed to mark transaction activated",
			slog.String("transaction_id", txn.ID), slog.Any("error", err))
	}
	return nil
}

// RetryActivation re-runs the subscription side effect for an unactivated
// SUCCESS transaction. Used by the reconciliation sweep.
func (s *Service) RetryActivation(ctx context.Context, txn *Transaction) error {
	if txn.Status != StatusSuccess || txn.Activated {
		return nil
	}
	return s.activate(ctx, txn)
}

// Unreconciled lists SUCCESS transactions resolved before now-grace whose
// activation is still missing.
func (s *Service) Unreconciled(ctx context.Context, grace time.Duration, limit int) ([]*Transaction, error) {
	return s.store.ListUnreconciled(ctx, s.now().UTC().Add(-grace), limit)
}

// Get returns the transaction with lazy expiry applied to the returned
// copy: a PENDING record past its window reads as EXPIRED.
func (s *Service) Get(ctx context.Context, id string) (*Transaction, error) {
	txn, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	txn.Status = txn.EffectiveStatus(s.now().UTC())
	return txn, nil
}
