package payroll

import (
	"context"
	"log/slog"
	"strings"
)

// Adjustment mutations are permitted in every run state, including
// completed runs. Each one synchronously recalculates the affected
// employee's line item and the run total before returning, so callers
// never observe a stale aggregate. When recalculation fails after the
// ledger write committed, the ledger write is compensated, so a
// surfaced error never leaves the ledger and the totals disagreeing.

func (s *Service) AddAdjustment(ctx context.Context, tenantID, runID, employeeID string, in AdjustmentInput) (EmployeeLineItem, error) {
	if err := validateAdjustment(in); err != nil {
		return EmployeeLineItem{}, err
	}
	run, err := s.store.GetRun(ctx, tenantID, runID)
	if err != nil {
		return EmployeeLineItem{}, err
	}

	adj, err := s.store.CreateAdjustment(ctx, tenantID, runID, employeeID, in)
	if err != nil {
		return EmployeeLineItem{}, err
	}
	item, err := s.recalcLineItem(ctx, run, employeeID)
	if err != nil {
		if _, rbErr := s.store.DeleteAdjustment(ctx, tenantID, adj.ID); rbErr != nil {
			slog.Warn("adjustment compensation failed", "adjustmentId", adj.ID, "err", rbErr)
		}
		return EmployeeLineItem{}, err
	}
	s.recordAudit(ctx, tenantID, "payroll.adjustment.create", "payroll_adjustment", adj.ID, nil, adj)
	return item, nil
}

func (s *Service) UpdateAdjustment(ctx context.Context, tenantID, runID, adjustmentID string, in AdjustmentInput) (EmployeeLineItem, error) {
	if err := validateAdjustment(in); err != nil {
		return EmployeeLineItem{}, err
	}
	run, err := s.store.GetRun(ctx, tenantID, runID)
	if err != nil {
		return EmployeeLineItem{}, err
	}
	before, err := s.adjustmentInRun(ctx, tenantID, runID, adjustmentID)
	if err != nil {
		return EmployeeLineItem{}, err
	}

	after, err := s.store.UpdateAdjustment(ctx, tenantID, adjustmentID, in)
	if err != nil {
		return EmployeeLineItem{}, err
	}
	item, err := s.recalcLineItem(ctx, run, after.EmployeeID)
	if err != nil {
		restore := AdjustmentInput{Label: before.Label, Amount: before.Amount, Taxable: before.Taxable}
		if _, rbErr := s.store.UpdateAdjustment(ctx, tenantID, adjustmentID, restore); rbErr != nil {
			slog.Warn("adjustment compensation failed", "adjustmentId", adjustmentID, "err", rbErr)
		}
		return EmployeeLineItem{}, err
	}
	s.recordAudit(ctx, tenantID, "payroll.adjustment.update", "payroll_adjustment", adjustmentID, before, after)
	return item, nil
}

func (s *Service) DeleteAdjustment(ctx context.Context, tenantID, runID, adjustmentID string) (EmployeeLineItem, error) {
	run, err := s.store.GetRun(ctx, tenantID, runID)
	if err != nil {
		return EmployeeLineItem{}, err
	}
	if _, err := s.adjustmentInRun(ctx, tenantID, runID, adjustmentID); err != nil {
		return EmployeeLineItem{}, err
	}

	deleted, err := s.store.DeleteAdjustment(ctx, tenantID, adjustmentID)
	if err != nil {
		return EmployeeLineItem{}, err
	}
	item, err := s.recalcLineItem(ctx, run, deleted.EmployeeID)
	if err != nil {
		restore := AdjustmentInput{Label: deleted.Label, Amount: deleted.Amount, Taxable: deleted.Taxable}
		if _, rbErr := s.store.CreateAdjustment(ctx, tenantID, runID, deleted.EmployeeID, restore); rbErr != nil {
			slog.Warn("adjustment compensation failed", "adjustmentId", adjustmentID, "err", rbErr)
		}
		return EmployeeLineItem{}, err
	}
	s.recordAudit(ctx, tenantID, "payroll.adjustment.delete", "payroll_adjustment", adjustmentID, deleted, nil)
	return item, nil
}

func (s *Service) ListAdjustments(ctx context.Context, tenantID, runID, employeeID string, limit, offset int) ([]Adjustment, int, error) {
	if _, err := s.store.GetRun(ctx, tenantID, runID); err != nil {
		return nil, 0, err
	}
	return s.store.ListAdjustments(ctx, tenantID, runID, employeeID, limit, offset)
}

func (s *Service) adjustmentInRun(ctx context.Context, tenantID, runID, adjustmentID string) (Adjustment, error) {
	adj, err := s.store.GetAdjustment(ctx, tenantID, adjustmentID)
	if err != nil {
		return Adjustment{}, err
	}
	if adj.RunID != runID {
		return Adjustment{}, ErrAdjustmentNotFound
	}
	return adj, nil
}

func validateAdjustment(in AdjustmentInput) error {
	if strings.TrimSpace(in.Label) == "" {
		return ErrInvalidLabel
	}
	return nil
}
