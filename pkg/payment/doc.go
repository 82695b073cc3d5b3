// Package payment manages the transaction lifecycle: checkout validation
// against the plan catalog, method-specific payment instructions, and
// exactly-once resolution from PENDING to a terminal status.
package payment
