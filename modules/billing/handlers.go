package billing

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sawitharvest/billing/pkg/payment"
	"github.com/sawitharvest/billing/pkg/plan"
	"github.com/sawitharvest/billing/pkg/subscription"
)

type subscriptionResponse struct {
	UserID           uuid.UUID  `json:"user_id"`
	Tier             plan.Tier  `json:"tier"`
	StartDate        time.Time  `json:"start_date"`
	EndDate          time.Time  `json:"end_date"`
	AmountMinorUnits int64      `json:"amount"`
	Status           string     `json:"status"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`
}

func newSubscriptionResponse(sub *subscription.Subscription) subscriptionResponse {
	return subscriptionResponse{
		UserID:           sub.UserID,
		Tier:             sub.Tier,
		StartDate:        sub.StartDate,
		EndDate:          sub.EndDate,
		AmountMinorUnits: sub.AmountMinorUnits,
		Status:           string(sub.Status),
		CancelledAt:      sub.CancelledAt,
	}
}

type transactionResponse struct {
	ID               string                `json:"id"`
	UserID           uuid.UUID             `json:"user_id"`
	Tier             plan.Tier             `json:"tier"`
	Method           payment.Method        `json:"method"`
	AmountMinorUnits int64                 `json:"amount"`
	Status           string                `json:"status"`
	Instructions     *payment.Instructions `json:"instructions,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	ExpiresAt        time.Time             `json:"expires_at"`
	ResolvedAt       *time.Time            `json:"resolved_at,omitempty"`
}

func newTransactionResponse(txn *payment.Transaction) transactionResponse {
	return transactionResponse{
		ID:               txn.ID,
		UserID:           txn.UserID,
		Tier:             txn.Tier,
		Method:           txn.Method,
		AmountMinorUnits: txn.AmountMinorUnits,
		Status:           string(txn.Status),
		Instructions:     txn.Instructions,
		CreatedAt:        txn.CreatedAt,
		ExpiresAt:        txn.ExpiresAt,
		ResolvedAt:       txn.ResolvedAt,
	}
}

type quotaRequest struct {
	UserID   uuid.UUID     `json:"user_id"`
	Resource plan.Resource `json:"resource"`
}

func (m *Module) handleQuotaReserve(w http.ResponseWriter, r *http.Request) {
	var req quotaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "malformed request body")
		return
	}
	if req.UserID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "user_id is required")
		return
	}

	if err := m.quota.Reserve(r.Context(), req.UserID, req.Resource); err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]bool{"reserved": true})
}

func (m *Module) handleQuotaRelease(w http.ResponseWriter, r *http.Request) {
	var req quotaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "malformed request body")
		return
	}
	if req.UserID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "user_id is required")
		return
	}

	if err := m.quota.Release(r.Context(), req.UserID, req.Resource); err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]bool{"released": true})
}

func (m *Module) handleQuotaUsage(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_USER_ID", "userID must be a UUID")
		return
	}

	usage, err := m.quota.Usage(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, usage)
}

func (m *Module) handleSubscriptionGet(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_USER_ID", "userID must be a UUID")
		return
	}

	sub, err := m.subs.Get(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, newSubscriptionResponse(sub))
}

func (m *Module) handleSubscriptionCancel(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_USER_ID", "userID must be a UUID")
		return
	}

	if err := m.subs.Cancel(r.Context(), userID); err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]bool{"cancelled": true})
}

type createTransactionRequest struct {
	UserID           uuid.UUID      `json:"user_id"`
	Tier             plan.Tier      `json:"tier"`
	Method           payment.Method `json:"method"`
	AmountMinorUnits int64          `json:"amount"`
	Bank             payment.Bank   `json:"bank,omitempty"`
}

func (m *Module) handleTransactionCreate(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "malformed request body")
		return
	}
	if req.UserID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "user_id is required")
		return
	}

	txn, err := m.payments.Create(r.Context(), payment.CreateParams{
		UserID:           req.UserID,
		Tier:             req.Tier,
		Method:           req.Method,
		AmountMinorUnits: req.AmountMinorUnits,
		Bank:             req.Bank,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusCreated, newTransactionResponse(txn))
}

type resolveTransactionRequest struct {
	Outcome payment.Outcome `json:"outcome"`
}

func (m *Module) handleTransactionResolve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req resolveTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "malformed request body")
		return
	}

	err := m.payments.Resolve(r.Context(), id, req.Outcome)
	switch {
	case err == nil:
		respondData(w, http.StatusOK, map[string]bool{"resolved": true})
	case errors.Is(err, payment.ErrActivationDeferred):
		// Payment is final; activation will be picked up by the sweep.
		respondData(w, http.StatusAccepted, map[string]any{
			"resolved":            true,
			"activation_deferred": true,
		})
	default:
		respondDomainError(w, err)
	}
}

func (m *Module) handleTransactionGet(w http.ResponseWriter, r *http.Request) {
	txn, err := m.payments.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, newTransactionResponse(txn))
}
