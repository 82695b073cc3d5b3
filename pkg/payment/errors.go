package payment

import "errors"

var (
	ErrTransactionNotFound = errors.New("payment: transaction not found")
	ErrAlreadyResolved     = errors.New("payment: transaction already resolved")
	ErrTransactionExpired  = errors.New("payment: transaction expired")
	ErrPriceMismatch       = errors.New("payment: amount does not match catalog price")
	ErrInvalidMethod       = errors.New("payment: invalid payment method")
	ErrInvalidOutcome      = errors.New("payment: invalid resolution outcome")
	ErrUnknownBank         = errors.New("payment: unknown bank code")

	ErrInstructionGeneration = errors.New("payment: failed to generate instructions")
	ErrStoreFailure          = errors.New("payment: transaction store failure")

	// ErrActivationDeferred means the transaction was resolved SUCCESS but
	// the subscription activation failed; the reconciliation sweep will
	// retry it. Callers must not retry Resolve.
	ErrActivationDeferred = errors.New("payment: subscription activation deferred")
)
