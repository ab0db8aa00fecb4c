package payroll

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"payrun/internal/domain/compensation"
)

func (s *Service) CreateRun(ctx context.Context, tenantID string, in CreateRunInput) (PayrollRun, error) {
	if in.PeriodStart.IsZero() || in.PeriodEnd.IsZero() || in.PeriodEnd.Before(in.PeriodStart) {
		return PayrollRun{}, ErrInvalidPeriod
	}
	if !ValidRunType(in.RunType) {
		return PayrollRun{}, ErrInvalidRunType
	}
	if in.DisbursementDate.IsZero() {
		in.DisbursementDate = in.PeriodEnd
	}

	run, err := s.store.CreateRun(ctx, tenantID, in)
	if err != nil {
		return PayrollRun{}, err
	}
	s.recordAudit(ctx, tenantID, "payroll.run.create", "payroll_run", run.ID, nil, run)
	return run, nil
}

func (s *Service) GetRun(ctx context.Context, tenantID, runID string) (PayrollRun, error) {
	return s.store.GetRun(ctx, tenantID, runID)
}

func (s *Service) ListRuns(ctx context.Context, tenantID string, limit, offset int) ([]PayrollRun, int, error) {
	return s.store.ListRuns(ctx, tenantID, limit, offset)
}

// GetRunTotals is the single read path for run money. It returns the
// persisted aggregate and line items; nothing is recomputed here.
func (s *Service) GetRunTotals(ctx context.Context, tenantID, runID string) (RunTotals, error) {
	return s.store.RunTotals(ctx, tenantID, runID)
}

// ProcessRun settles every active employee in the run. Employees are
// settled concurrently; single-employee failures are collected, not
// fatal. The run completes if at least one employee succeeded.
func (s *Service) ProcessRun(ctx context.Context, tenantID, runID string) (ProcessOutcome, error) {
	run, err := s.store.GetRun(ctx, tenantID, runID)
	if err != nil {
		return ProcessOutcome{}, err
	}
	if run.Status != RunStatusDraft {
		return ProcessOutcome{}, ErrRunNotDraft
	}

	if run.RunType == RunTypeRegular {
		if err := s.guardDuplicateRegular(ctx, run); err != nil {
			return ProcessOutcome{}, err
		}
	}

	// Conditional transition closes the race between two concurrent
	// ProcessRun calls for the same run.
	if err := s.store.MarkRunProcessing(ctx, tenantID, runID); err != nil {
		return ProcessOutcome{}, err
	}

	outcome, err := s.settleEmployees(ctx, run)
	if err != nil {
		if stErr := s.store.SetRunStatus(ctx, tenantID, runID, RunStatusFailed); stErr != nil {
			slog.Warn("run status update failed", "runId", runID, "err", stErr)
		}
		return outcome, err
	}

	status := RunStatusFailed
	if len(outcome.Succeeded) > 0 {
		status = RunStatusCompleted
	}
	if err := s.store.SetRunStatus(ctx, tenantID, runID, status); err != nil {
		return outcome, err
	}
	outcome.Status = status

	s.recordAudit(ctx, tenantID, "payroll.run.process", "payroll_run", runID, nil, outcome)
	return outcome, nil
}

func (s *Service) guardDuplicateRegular(ctx context.Context, run PayrollRun) error {
	others, err := s.store.ListRunsByType(ctx, run.TenantID, RunTypeRegular)
	if err != nil {
		return err
	}
	for _, other := range others {
		if other.ID == run.ID || other.Status == RunStatusFailed {
			continue
		}
		if PeriodsOverlap(run.PeriodStart, run.PeriodEnd, other.PeriodStart, other.PeriodEnd) {
			return ErrDuplicateRegular
		}
	}
	return nil
}

func (s *Service) settleEmployees(ctx context.Context, run PayrollRun) (ProcessOutcome, error) {
	outcome := ProcessOutcome{RunID: run.ID, Status: RunStatusProcessing}

	alreadyPaid := map[string]int64{}
	if run.RunType == RunTypeRegular {
		lines, err := s.store.CompletedInterimLines(ctx, run.TenantID, run.PeriodStart, run.PeriodEnd, run.ID)
		if err != nil {
			return outcome, err
		}
		alreadyPaid = AggregateAlreadyPaid(lines)
	}

	employees, err := s.runRoster(ctx, run)
	if err != nil {
		return outcome, err
	}

	type installment struct {
		advanceID string
		amount    int64
	}
	var mu sync.Mutex
	collected := map[string]installment{}

	workers := s.Workers
	if workers < 1 {
		workers = 1
	}
	var group errgroup.Group
	group.SetLimit(workers)

	for _, emp := range employees {
		emp := emp
		group.Go(func() error {
			advanceID, amount, err := s.settleEmployee(ctx, run, emp, alreadyPaid[emp.EmployeeID])
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				outcome.Failed = append(outcome.Failed, ProcessFailure{EmployeeID: emp.EmployeeID, Reason: err.Error()})
				return nil
			}
			outcome.Succeeded = append(outcome.Succeeded, emp.EmployeeID)
			if amount > 0 {
				collected[emp.EmployeeID] = installment{advanceID: advanceID, amount: amount}
			}
			return nil
		})
	}
	_ = group.Wait()

	sort.Strings(outcome.Succeeded)
	sort.Slice(outcome.Failed, func(i, j int) bool {
		return outcome.Failed[i].EmployeeID < outcome.Failed[j].EmployeeID
	})

	// Explicit post-settlement hook: bump advance ledgers for the
	// installments that were actually withheld in this run.
	for employeeID, inst := range collected {
		if err := s.advances.ApplyInstallment(ctx, run.TenantID, inst.advanceID, inst.amount); err != nil {
			slog.Error("advance installment not recorded",
				"runId", run.ID, "employeeId", employeeID, "advanceId", inst.advanceID, "err", err)
		}
	}
	return outcome, nil
}

// runRoster decides who the run settles: the full active roster for a
// regular run, only employees touched by the adjustment ledger for
// off-cycle and partial runs.
func (s *Service) runRoster(ctx context.Context, run PayrollRun) ([]compensation.EmployeeBasePay, error) {
	if run.RunType == RunTypeRegular {
		return s.comp.ListActive(ctx, run.TenantID)
	}
	ids, err := s.store.AdjustmentEmployees(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	roster := make([]compensation.EmployeeBasePay, 0, len(ids))
	for _, id := range ids {
		roster = append(roster, compensation.EmployeeBasePay{EmployeeID: id})
	}
	return roster, nil
}

func (s *Service) settleEmployee(ctx context.Context, run PayrollRun, emp compensation.EmployeeBasePay, alreadyPaid int64) (string, int64, error) {
	item := EmployeeLineItem{
		RunID:      run.ID,
		EmployeeID: emp.EmployeeID,
		LineStatus: LineStatusActive,
	}

	// A previously excluded line stays excluded across reprocessing.
	if existing, err := s.store.GetLineItem(ctx, run.TenantID, run.ID, emp.EmployeeID); err == nil {
		item.LineStatus = existing.LineStatus
	} else if !errors.Is(err, ErrLineItemNotFound) {
		return "", 0, err
	}

	var advanceID string
	var emiDue int64
	if run.RunType == RunTypeRegular {
		item.BaseGross = emp.Gross
		item.BaseDeductions = emp.Deductions
		item.AlreadyPaid = alreadyPaid

		// An excluded line disburses nothing, so no installment is
		// withheld or applied against the advance ledger for it.
		if item.LineStatus == LineStatusActive {
			var err error
			advanceID, emiDue, err = s.advances.ProposeInstallment(ctx, run.TenantID, emp.EmployeeID, run.PeriodEnd)
			if err != nil {
				return "", 0, err
			}
			item.EMIDue = emiDue
		}
	}

	adjustments, err := s.store.ListAdjustmentLines(ctx, run.ID, emp.EmployeeID)
	if err != nil {
		return "", 0, err
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
	if result.Clamped {
		item.Warnings = []string{WarningNetClamped}
		s.warnClamp(run.ID, emp.EmployeeID, result.RawNet)
	}

	if err := s.saveLineItem(ctx, run.TenantID, item); err != nil {
		return "", 0, err
	}
	return advanceID, emiDue, nil
}

// SetLineExclusion flips an employee's line in or out of the run
// total. The store re-aggregates the total in the same transaction.
func (s *Service) SetLineExclusion(ctx context.Context, tenantID, runID, employeeID string, excluded bool) (EmployeeLineItem, error) {
	if _, err := s.store.GetRun(ctx, tenantID, runID); err != nil {
		return EmployeeLineItem{}, err
	}
	status := LineStatusActive
	if excluded {
		status = LineStatusExcluded
	}
	if err := s.store.SetLineStatus(ctx, tenantID, runID, employeeID, status); err != nil {
		return EmployeeLineItem{}, err
	}
	item, err := s.store.GetLineItem(ctx, tenantID, runID, employeeID)
	if err != nil {
		return EmployeeLineItem{}, err
	}
	s.recordAudit(ctx, tenantID, "payroll.line.exclusion", "payroll_run_item", runID+":"+employeeID, nil, item)
	return item, nil
}
