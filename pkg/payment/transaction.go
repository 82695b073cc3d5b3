package payment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sawitharvest/billing/pkg/plan"
	"github.com/sawitharvest/billing/pkg/statemachine"
)

// Method identifies how the user intends to pay.
type Method string

const (
	MethodBankTransfer Method = "BANK_TRANSFER"
	MethodQRIS         Method = "QRIS"
	MethodCreditCard   Method = "CREDIT_CARD"
	MethodEWallet      Method = "EWALLET"
)

// Valid reports whether the method is one of the supported methods.
func (m Method) Valid() bool {
	switch m {
	case MethodBankTransfer, MethodQRIS, MethodCreditCard, MethodEWallet:
		return true
	}
	return false
}

// Status represents the state of a payment transaction. PENDING is the
// only non-terminal state; a transaction transitions away from it exactly
// once.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
	StatusExpired Status = "EXPIRED"
)

// Outcome is what the (simulated) gateway reports for a transaction.
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailed  Outcome = "FAILED"
)

func (o Outcome) status() (Status, bool) {
	switch o {
	case OutcomeSuccess:
		return StatusSuccess, true
	case OutcomeFailed:
		return StatusFailed, true
	}
	return "", false
}

// transitions encodes the transaction lifecycle. All three targets are
// terminal, so the set has a single fan-out from PENDING.
var transitions = statemachine.New[Status]().
	Allow(StatusPending, StatusSuccess).
	Allow(StatusPending, StatusFailed).
	Allow(StatusPending, StatusExpired)

// paymentWindow is how long a pending transaction stays resolvable.
const paymentWindow = 24 * time.Hour

// Transaction represents one checkout attempt. Once its status leaves
// PENDING the record is immutable except for the activation marker, which
// tracks whether the subscription side effect has been applied.
type Transaction struct {
	ID               string
	UserID           uuid.UUID
	Tier             plan.Tier
	Method           Method
	AmountMinorUnits int64
	Status           Status
	Instructions     *Instructions
	CreatedAt        time.Time
	ExpiresAt        time.Time
	ResolvedAt       *time.Time
	// Activated marks that a SUCCESS transaction has been followed by a
	// subscription activation. SUCCESS rows without it are picked up by
	// the reconciliation sweep.
	Activated bool
}

// EffectiveStatus derives the status a reader should see at the given
// time: a PENDING transaction past its payment window reads as EXPIRED
// even before any writer updates the field.
func (t *Transaction) EffectiveStatus(now time.Time) Status {
	if t.Status == StatusPending && now.After(t.ExpiresAt) {
		return StatusExpired
	}
	return t.Status
}

// newTransactionID builds a collision-resistant transaction ID in the
// TXN_<millis>_<entropy> shape clients already consume.
func newTransactionID(now time.Time) string {
	entropy := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("TXN_%d_%s", now.UnixMilli(), entropy)
}
