package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sawitharvest/billing/modules/billing"
	"github.com/sawitharvest/billing/pkg/config"
	"github.com/sawitharvest/billing/pkg/httpserver"
	"github.com/sawitharvest/billing/pkg/logger"
	"github.com/sawitharvest/billing/pkg/payment"
	"github.com/sawitharvest/billing/pkg/pg"
	"github.com/sawitharvest/billing/pkg/plan"
	"github.com/sawitharvest/billing/pkg/quota"
	"github.com/sawitharvest/billing/pkg/reconcile"
	redisconn "github.com/sawitharvest/billing/pkg/redis"
	"github.com/sawitharvest/billing/pkg/subscription"
)

type appConfig struct {
	Logger    logger.Config
	Plans     plan.Config
	Server    httpserver.Config
	Postgres  pg.Config
	Redis     redisconn.Config
	Reconcile reconcile.Config
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.NewFromConfig(cfg.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalog, err := plan.NewCatalog(ctx, plan.NewInMemSource(plan.PlansFromConfig(cfg.Plans)...))
	if err != nil {
		log.Error("failed to load plan catalog", "error", err)
		os.Exit(1)
	}

	// Stores default to in-memory; external backends kick in when their
	// connection URLs are configured.
	var (
		subStore   subscription.Store = subscription.NewMemoryStore()
		txnStore   payment.Store      = payment.NewMemoryStore()
		quotaStore quota.Store        = quota.NewMemoryStore()
		probes     []func(context.Context) error
	)

	if cfg.Postgres.ConnectionString != "" {
		pool, err := pg.Connect(ctx, cfg.Postgres)
		if err != nil {
			log.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := pg.Migrate(ctx, pool, cfg.Postgres, log); err != nil {
			log.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
		subStore = subscription.NewPostgresStore(pool)
		txnStore = payment.NewPostgresStore(pool)
		probes = append(probes, pg.Healthcheck(pool))
		log.Info("postgres stores enabled")
	}

	if cfg.Redis.ConnectionURL != "" {
		client, err := redisconn.Connect(ctx, cfg.Redis)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		quotaStore = quota.NewRedisStore(client)
		probes = append(probes, redisconn.Healthcheck(client))
		log.Info("redis quota store enabled")
	}

	subs := subscription.NewManager(subStore)
	ledger := quota.NewLedger(catalog, quotaStore, subs.EffectiveTier)
	payments := payment.NewService(catalog, txnStore, subs, payment.WithLogger(log))

	reconciler := reconcile.New(payments, log, cfg.Reconcile)
	go reconciler.Start(ctx)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", httpserver.HealthCheckHandler(log, probes...))
	r.Mount("/billing", billing.NewModule(ledger, subs, payments).Router())

	log.Info("server starting", "addr", cfg.Server.Addr)
	if err := httpserver.New(cfg.Server).Run(ctx, r); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
