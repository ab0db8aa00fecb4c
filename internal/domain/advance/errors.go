package advance

import "errors"

var (
	ErrAdvanceNotFound      = errors.New("salary advance not found")
	ErrEmployeeNotFound     = errors.New("employee not found")
	ErrActiveAdvanceExists  = errors.New("employee already has an active advance")
	ErrAdvanceNotActive     = errors.New("salary advance is not active")
	ErrCancelAfterRepayment = errors.New("advance with repayments cannot be cancelled")
	ErrInvalidAmount        = errors.New("advance amount must be positive")
	ErrInvalidTenure        = errors.New("advance tenure must be positive")
	ErrInvalidStartMonth    = errors.New("advance start month is required")
)
