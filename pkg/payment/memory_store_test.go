package payment_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawitharvest/billing/pkg/payment"
	"github.com/sawitharvest/billing/pkg/plan"
)

func seedUnreconciled(t *testing.T, store *payment.MemoryStore, n int, base time.Time) {
	t.Helper()
	ctx := context.Background()

	for i := 0; i < n; i++ {
		id := fmt.Sprintf("TXN_%d_seed", i)
		txn := &payment.Transaction{
			ID:               id,
			UserID:           uuid.New(),
			Tier:             plan.TierPro,
			Method:           payment.MethodQRIS,
			AmountMinorUnits: 149000,
			Status:           payment.StatusPending,
			CreatedAt:        base,
			ExpiresAt:        base.Add(24 * time.Hour),
		}
		require.NoError(t, store.Save(ctx, txn))

		moved, err := store.Resolve(ctx, id, payment.StatusSuccess, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		require.True(t, moved)
	}
}

func TestMemoryStore_ListUnreconciled(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cutoff := base.Add(time.Hour)

	t.Run("positive limit caps the batch oldest first", func(t *testing.T) {
		t.Parallel()

		store := payment.NewMemoryStore()
		seedUnreconciled(t, store, 5, base)

		out, err := store.ListUnreconciled(context.Background(), cutoff, 2)
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, "TXN_0_seed", out[0].ID)
		assert.Equal(t, "TXN_1_seed", out[1].ID)
	})

	t.Run("non-positive limit means no limit", func(t *testing.T) {
		t.Parallel()

		store := payment.NewMemoryStore()
		seedUnreconciled(t, store, 5, base)

		out, err := store.ListUnreconciled(context.Background(), cutoff, 0)
		require.NoError(t, err)
		assert.Len(t, out, 5)

		out, err = store.ListUnreconciled(context.Background(), cutoff, -1)
		require.NoError(t, err)
		assert.Len(t, out, 5)
	})

	t.Run("activated rows are excluded", func(t *testing.T) {
		t.Parallel()

		store := payment.NewMemoryStore()
		seedUnreconciled(t, store, 3, base)
		require.NoError(t, store.MarkActivated(context.Background(), "TXN_1_seed"))

		out, err := store.ListUnreconciled(context.Background(), cutoff, 0)
		require.NoError(t, err)
		require.Len(t, out, 2)
		for _, txn := range out {
			assert.NotEqual(t, "TXN_1_seed", txn.ID)
		}
	})
}
