package billing

import (
	"github.com/go-chi/chi/v5"

	"github.com/sawitharvest/billing/pkg/payment"
	"github.com/sawitharvest/billing/pkg/quota"
	"github.com/sawitharvest/billing/pkg/subscription"
)

// Module bundles the billing services behind HTTP handlers.
type Module struct {
	quota    *quota.Ledger
	subs     *subscription.Manager
	payments *payment.Service
}

// NewModule wires the billing HTTP surface.
// Panics if any dependency is nil to fail fast during initialization.
func NewModule(ledger *quota.Ledger, subs *subscription.Manager, payments *payment.Service) *Module {
	if ledger == nil {
		panic("billing: quota ledger is required")
	}
	if subs == nil {
		panic("billing: subscription manager is required")
	}
	if payments == nil {
		panic("billing: payment service is required")
	}
	return &Module{quota: ledger, subs: subs, payments: payments}
}

// Router returns the module's routes, ready to mount:
//
//	r := chi.NewRouter()
//	r.Mount("/billing", billing.NewModule(ledger, subs, payments).Router())
func (m *Module) Router() chi.Router {
	r := chi.NewRouter()

	r.Route("/quota", func(q chi.Router) {
		q.Post("/reserve", m.handleQuotaReserve)
		q.Post("/release", m.handleQuotaRelease)
		q.Get("/{userID}/usage", m.handleQuotaUsage)
	})

	r.Route("/subscription", func(s chi.Router) {
		s.Get("/{userID}", m.handleSubscriptionGet)
		s.Post("/{userID}/cancel", m.handleSubscriptionCancel)
	})

	r.Route("/transactions", func(t chi.Router) {
		t.Post("/", m.handleTransactionCreate)
		t.Get("/{id}", m.handleTransactionGet)
		t.Post("/{id}/resolve", m.handleTransactionResolve)
	})

	return r
}
