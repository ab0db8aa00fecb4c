package payroll

import (
	"context"
	"time"
)

type StoreAPI interface {
	CreateRun(ctx context.Context, tenantID string, in CreateRunInput) (PayrollRun, error)
	GetRun(ctx context.Context, tenantID, runID string) (PayrollRun, error)
	ListRuns(ctx context.Context, tenantID string, limit, offset int) ([]PayrollRun, int, error)
	ListRunsByType(ctx context.Context, tenantID, runType string) ([]PayrollRun, error)
	// MarkRunProcessing is the draft guard: it transitions
	// draft -> processing conditionally and reports ErrRunNotDraft when
	// the run is in any other state.
	MarkRunProcessing(ctx context.Context, tenantID, runID string) error
	SetRunStatus(ctx context.Context, tenantID, runID, status string) error

	// CompletedInterimLines returns the active line items of every
	// other completed off-cycle/partial run whose period overlaps the
	// given one.
	CompletedInterimLines(ctx context.Context, tenantID string, periodStart, periodEnd time.Time, excludeRunID string) ([]PaidLine, error)

	GetLineItem(ctx context.Context, tenantID, runID, employeeID string) (EmployeeLineItem, error)
	ListLineItems(ctx context.Context, tenantID, runID string) ([]EmployeeLineItem, error)
	// SaveLineItem upserts the item and recomputes the run total from a
	// fresh aggregate in the same transaction, under a per-run lock.
	SaveLineItem(ctx context.Context, tenantID string, item EmployeeLineItem) error
	SetLineStatus(ctx context.Context, tenantID, runID, employeeID, status string) error

	CreateAdjustment(ctx context.Context, tenantID, runID, employeeID string, in AdjustmentInput) (Adjustment, error)
	GetAdjustment(ctx context.Context, tenantID, adjustmentID string) (Adjustment, error)
	UpdateAdjustment(ctx context.Context, tenantID, adjustmentID string, in AdjustmentInput) (Adjustment, error)
	DeleteAdjustment(ctx context.Context, tenantID, adjustmentID string) (Adjustment, error)
	ListAdjustments(ctx context.Context, tenantID, runID, employeeID string, limit, offset int) ([]Adjustment, int, error)
	ListAdjustmentLines(ctx context.Context, runID, employeeID string) ([]AdjustmentLine, error)
	AdjustmentEmployees(ctx context.Context, runID string) ([]string, error)

	RunTotals(ctx context.Context, tenantID, runID string) (RunTotals, error)
}
