package payroll

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"payrun/internal/domain/compensation"
)

const (
	defaultWorkers       = 8
	defaultRecalcRetries = 3
)

// CompensationProvider supplies the externally computed base pay pair
// per employee. The engine treats it as opaque.
type CompensationProvider interface {
	ListActive(ctx context.Context, tenantID string) ([]compensation.EmployeeBasePay, error)
	BasePay(ctx context.Context, tenantID, employeeID string) (compensation.EmployeeBasePay, error)
}

// AdvanceIntegrator resolves and settles EMI installments against the
// advance ledger. A zero proposed amount means no advance applies.
type AdvanceIntegrator interface {
	ProposeInstallment(ctx context.Context, tenantID, employeeID string, asOf time.Time) (advanceID string, amount int64, err error)
	ApplyInstallment(ctx context.Context, tenantID, advanceID string, amount int64) error
}

// AuditRecorder is best-effort: the service logs failures and never
// rolls back the financial mutation.
type AuditRecorder interface {
	Record(ctx context.Context, tenantID, action, entityType, entityID string, before, after any) error
}

type Service struct {
	store    StoreAPI
	comp     CompensationProvider
	advances AdvanceIntegrator
	audit    AuditRecorder

	// Workers bounds the per-employee recalculation pool during
	// ProcessRun; size it to the store's connection limit.
	Workers int
	// RecalcRetries bounds transparent retries on total-aggregation
	// contention before the conflict surfaces to the caller.
	RecalcRetries int
	// OnClamp, when set, observes every negative-net clamp event.
	OnClamp func()
}

func NewService(store StoreAPI, comp CompensationProvider, advances AdvanceIntegrator, auditor AuditRecorder) *Service {
	return &Service{
		store:         store,
		comp:          comp,
		advances:      advances,
		audit:         auditor,
		Workers:       defaultWorkers,
		RecalcRetries: defaultRecalcRetries,
	}
}

// recalcLineItem is the single settlement path: it re-reads the
// adjustment ledger, recomputes net pay from the line item's stored
// base figures, and persists the item together with a fresh run total
// in one transaction. Idempotent for a fixed adjustment/advance state.
func (s *Service) recalcLineItem(ctx context.Context, run PayrollRun, employeeID string) (EmployeeLineItem, error) {
	item, err := s.store.GetLineItem(ctx, run.TenantID, run.ID, employeeID)
	if errors.Is(err, ErrLineItemNotFound) {
		item, err = s.newLineItem(ctx, run, employeeID)
	}
	if err != nil {
		return EmployeeLineItem{}, err
	}

	adjustments, err := s.store.ListAdjustmentLines(ctx, run.ID, employeeID)
	if err != nil {
		return EmployeeLineItem{}, err
	}

	result := ComputeSettlement(SettlementInput{
		RunType:        run.RunType,
		BaseGross:      item.BaseGross,
		BaseDeductions: item.BaseDeductions,
		AlreadyPaid:    item.AlreadyPaid,
		EMIDue:         item.EMIDue,
		Adjustments:    adjustments,
	})
	item.NetPay = result.NetPay
	item.Warnings = nil
	if result.Clamped {
		item.Warnings = []string{WarningNetClamped}
		s.warnClamp(run.ID, employeeID, result.RawNet)
	}

	if err := s.saveLineItem(ctx, run.TenantID, item); err != nil {
		return EmployeeLineItem{}, err
	}
	return item, nil
}

// newLineItem seeds a line item for an employee touched by the
// adjustment ledger before the run was processed. Base figures for
// regular runs are captured once, here or at process time, and reused
// by every later recalculation.
func (s *Service) newLineItem(ctx context.Context, run PayrollRun, employeeID string) (EmployeeLineItem, error) {
	item := EmployeeLineItem{
		RunID:      run.ID,
		EmployeeID: employeeID,
		LineStatus: LineStatusActive,
	}
	pay, err := s.comp.BasePay(ctx, run.TenantID, employeeID)
	if errors.Is(err, compensation.ErrEmployeeNotFound) {
		return EmployeeLineItem{}, ErrEmployeeNotFound
	}
	if err != nil {
		return EmployeeLineItem{}, err
	}
	if run.RunType == RunTypeRegular {
		item.BaseGross = pay.Gross
		item.BaseDeductions = pay.Deductions
	}
	return item, nil
}

func (s *Service) saveLineItem(ctx context.Context, tenantID string, item EmployeeLineItem) error {
	var err error
	for attempt := 0; attempt <= s.RecalcRetries; attempt++ {
		err = s.store.SaveLineItem(ctx, tenantID, item)
		if !errors.Is(err, ErrConcurrencyConflict) {
			return err
		}
	}
	return err
}

// Clamping is a warning, never an error: the run keeps going.
func (s *Service) warnClamp(runID, employeeID string, rawNet int64) {
	slog.Warn("net pay clamped to zero", "runId", runID, "employeeId", employeeID, "rawNet", rawNet)
	if s.OnClamp != nil {
		s.OnClamp()
	}
}

func (s *Service) recordAudit(ctx context.Context, tenantID, action, entityType, entityID string, before, after any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, tenantID, action, entityType, entityID, before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "entityId", entityID, "err", err)
	}
}
