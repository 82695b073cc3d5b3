package reconcile_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawitharvest/billing/pkg/payment"
	"github.com/sawitharvest/billing/pkg/plan"
	"github.com/sawitharvest/billing/pkg/reconcile"
	"github.com/sawitharvest/billing/pkg/subscription"
)

// flakyStore wraps a subscription store and fails Save a set number of times.
type flakyStore struct {
	subscription.Store
	failures int
}

func (s *flakyStore) Save(ctx context.Context, sub *subscription.Subscription) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("subscription store down")
	}
	return s.Store.Save(ctx, sub)
}

func TestReconciler_RunOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	catalog, err := plan.NewCatalog(ctx, plan.NewInMemSource(plan.DefaultPlans()...))
	require.NoError(t, err)

	store := &flakyStore{Store: subscription.NewMemoryStore(), failures: 1}
	subs := subscription.NewManager(store)

	payments := payment.NewService(catalog, payment.NewMemoryStore(), subs,
		payment.WithLogger(log))

	userID := uuid.New()
	txn, err := payments.Create(ctx, payment.CreateParams{
		UserID:           userID,
		Tier:             plan.TierPro,
		Method:           payment.MethodQRIS,
		AmountMinorUnits: 149000,
	})
	require.NoError(t, err)

	// The gateway reports success while the subscription store is down:
	// the transaction resolves but activation is deferred.
	err = payments.Resolve(ctx, txn.ID, payment.OutcomeSuccess)
	require.ErrorIs(t, err, payment.ErrActivationDeferred)

	tier, err := subs.EffectiveTier(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, plan.TierFree, tier)

	// The sweep picks the transaction up once the store recovers.
	r := reconcile.New(payments, log, reconcile.Config{GracePeriod: 0})
	r.RunOnce(ctx)

	tier, err = subs.EffectiveTier(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, plan.TierPro, tier)

	// Nothing left to reconcile.
	pending, err := payments.Unreconciled(ctx, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestReconciler_Start_StopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	catalog, err := plan.NewCatalog(ctx, plan.NewInMemSource(plan.DefaultPlans()...))
	require.NoError(t, err)

	subs := subscription.NewManager(subscription.NewMemoryStore())
	payments := payment.NewService(catalog, payment.NewMemoryStore(), subs, payment.WithLogger(log))

	r := reconcile.New(payments, log, reconcile.Config{Interval: 10 * time.Millisecond})

	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop after context cancellation")
	}
}
