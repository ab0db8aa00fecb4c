package payroll

import "errors"

var (
	ErrInvalidPeriod      = errors.New("run period is invalid")
	ErrInvalidRunType     = errors.New("unknown run type")
	ErrInvalidLabel       = errors.New("adjustment label is required")
	ErrRunNotFound        = errors.New("payroll run not found")
	ErrRunNotDraft        = errors.New("payroll run is not in draft")
	ErrDuplicateRegular   = errors.New("overlapping regular run already exists for period")
	ErrLineItemNotFound   = errors.New("employee line item not found")
	ErrAdjustmentNotFound = errors.New("adjustment not found")
	ErrEmployeeNotFound   = errors.New("employee not found")

	// ErrConcurrencyConflict is returned by the store when the
	// line-item-plus-total transaction loses a lock or serialization
	// race; the service retries a bounded number of times before
	// surfacing it.
	ErrConcurrencyConflict = errors.New("run total aggregation contention")
)
