package quota

import (
	"errors"
	"fmt"

	"github.com/sawitharvest/billing/pkg/plan"
)

var (
	// ErrQuotaExceeded is the sentinel matched by errors.Is against a
	// *QuotaExceededError carrying the rejected resource and its ceiling.
	ErrQuotaExceeded = errors.New("quota: quota exceeded")

	ErrUnknownResource = errors.New("quota: no ceiling defined for resource")
	ErrStoreFailure    = errors.New("quota: counter store failure")
)

// QuotaExceededError is returned by Reserve when the counter is already at
// the ceiling. It is not retryable as-is: the user must upgrade or wait for
// the window to reset.
type QuotaExceededError struct {
	Resource plan.Resource
	Ceiling  int64
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded for %s (ceiling %d)", e.Resource, e.Ceiling)
}

// Is lets errors.Is(err, ErrQuotaExceeded) match without losing the fields.
func (e *QuotaExceededError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

// AsQuotaExceeded extracts the typed error, if err is one.
func AsQuotaExceeded(err error) (*QuotaExceededError, bool) {
	var qe *QuotaExceededError
	ok := errors.As(err, &qe)
	return qe, ok
}
