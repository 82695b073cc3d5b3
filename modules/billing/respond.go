package billing

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sawitharvest/billing/pkg/payment"
	"github.com/sawitharvest/billing/pkg/plan"
	"github.com/sawitharvest/billing/pkg/quota"
	"github.com/sawitharvest/billing/pkg/subscription"
)

type envelope struct {
	Data  any       `json:"data,omitempty"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Data: data})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Error: &apiError{Code: code, Message: message}})
}

// respondDomainError maps domain sentinels onto HTTP statuses and stable
// error codes clients can branch on.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quota.ErrQuotaExceeded):
		msg := err.Error()
		if qe, ok := quota.AsQuotaExceeded(err); ok {
			msg = qe.Error()
		}
		respondError(w, http.StatusConflict, "QUOTA_EXCEEDED", msg)
	case errors.Is(err, quota.ErrUnknownResource):
		respondError(w, http.StatusBadRequest, "UNKNOWN_RESOURCE", err.Error())
	case errors.Is(err, payment.ErrPriceMismatch):
		respondError(w, http.StatusUnprocessableEntity, "PRICE_MISMATCH", err.Error())
	case errors.Is(err, payment.ErrInvalidMethod):
		respondError(w, http.StatusBadRequest, "INVALID_METHOD", err.Error())
	case errors.Is(err, payment.ErrInvalidOutcome):
		respondError(w, http.StatusBadRequest, "INVALID_OUTCOME", err.Error())
	case errors.Is(err, payment.ErrUnknownBank):
		respondError(w, http.StatusBadRequest, "UNKNOWN_BANK", err.Error())
	case errors.Is(err, payment.ErrAlreadyResolved):
		respondError(w, http.StatusConflict, "ALREADY_RESOLVED", err.Error())
	case errors.Is(err, payment.ErrTransactionExpired):
		respondError(w, http.StatusGone, "TRANSACTION_EXPIRED", err.Error())
	case errors.Is(err, payment.ErrTransactionNotFound),
		errors.Is(err, subscription.ErrSubscriptionNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, subscription.ErrAlreadyCancelled):
		respondError(w, http.StatusConflict, "ALREADY_CANCELLED", err.Error())
	case errors.Is(err, subscription.ErrInvalidTier),
		errors.Is(err, plan.ErrPlanNotFound):
		respondError(w, http.StatusBadRequest, "INVALID_TIER", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}
