package subscription

import "errors"

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrInvalidTier          = errors.New("invalid subscription tier")
	ErrAlreadyCancelled     = errors.New("subscription already cancelled")
	ErrStoreFailure         = errors.New("subscription store failure")
)
