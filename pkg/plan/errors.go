package plan

import "errors"

var (
	ErrPlanNotFound             = errors.New("plan: tier not found in catalog")
	ErrInvalidPlanConfiguration = errors.New("plan: invalid plan configuration")
	ErrFailedToLoadPlans        = errors.New("plan: failed to load plans")
)
