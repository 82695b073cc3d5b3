package reconcile

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sawitharvest/billing/pkg/payment"
)

// Config tunes the sweep cadence and concurrency.
type Config struct {
	Interval    time.Duration `env:"RECONCILE_INTERVAL" envDefault:"5m"`
	GracePeriod time.Duration `env:"RECONCILE_GRACE_PERIOD" envDefault:"1m"`
	BatchSize   int           `env:"RECONCILE_BATCH_SIZE" envDefault:"50"`
	Workers     int           `env:"RECONCILE_WORKERS" envDefault:"5"`
}

// Reconciler runs the periodic sweep.
type Reconciler struct {
	payments *payment.Service
	log      *slog.Logger
	cfg      Config
}

// New creates a Reconciler. Zero or negative Config values fall back to
// sane defaults.
func New(payments *payment.Service, log *slog.Logger, cfg Config) *Reconciler {
	if payments == nil {
		panic("reconcile: payment service is required")
	}
	if log == nil {
		log = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.GracePeriod < 0 {
		cfg.GracePeriod = time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 5
	}

	return &Reconciler{payments: payments, log: log, cfg: cfg}
}

// Start runs the sweep loop until the context is cancelled. Blocking call.
func (r *Reconciler) Start(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	r.log.InfoContext(ctx, "reconciler started",
		slog.Duration("interval", r.cfg.Interval))

	for {
		select {
		case <-ctx.Done():
			r.log.InfoContext(ctx, "reconciler stopped")
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep: list unactivated SUCCESS transactions
// older than the grace period and retry their activation on a bounded
// worker pool. Failures are logged at error level as an alerting signal;
// a row that keeps failing stays in the backlog, it is never dropped.
func (r *Reconciler) RunOnce(ctx context.Context) {
	txns, err := r.payments.Unreconciled(ctx, r.cfg.GracePeriod, r.cfg.BatchSize)
	if err != nil {
		r.log.ErrorContext(ctx, "reconciler failed to list transactions", slog.Any("error", err))
		return
	}
	if len(txns) == 0 {
		return
	}

	r.log.InfoContext(ctx, "reconciling unactivated transactions", slog.Int("count", len(txns)))

	jobs := make(chan *payment.Transaction, len(txns))
	var wg sync.WaitGroup

	for i := 0; i < r.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for txn := range jobs {
				if err := r.payments.RetryActivation(ctx, txn); err != nil {
					r.log.ErrorContext(ctx, "reconciliation failed for transaction",
						slog.String("transaction_id", txn.ID),
						slog.String("user_id", txn.UserID.String()),
						slog.Any("error", err),
					)
				}
			}
		}()
	}

	for _, txn := range txns {
		jobs <- txn
	}
	close(jobs)
	wg.Wait()
}
