package advance

import (
	"context"
	"errors"
	"strings"
	"time"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) CreateAdvance(ctx context.Context, tenantID string, in CreateAdvanceInput) (SalaryAdvance, error) {
	if strings.TrimSpace(in.EmployeeID) == "" {
		return SalaryAdvance{}, ErrEmployeeNotFound
	}
	if in.TotalAmount <= 0 {
		return SalaryAdvance{}, ErrInvalidAmount
	}
	if in.TenureMonths <= 0 {
		return SalaryAdvance{}, ErrInvalidTenure
	}
	if in.StartMonth.IsZero() {
		return SalaryAdvance{}, ErrInvalidStartMonth
	}

	_, err := s.store.ActiveAdvance(ctx, tenantID, in.EmployeeID)
	if err == nil {
		return SalaryAdvance{}, ErrActiveAdvanceExists
	}
	if !errors.Is(err, ErrAdvanceNotFound) {
		return SalaryAdvance{}, err
	}

	adv := SalaryAdvance{
		EmployeeID:         in.EmployeeID,
		TotalAmount:        in.TotalAmount,
		TenureMonths:       in.TenureMonths,
		MonthlyInstallment: MonthlyInstallment(in.TotalAmount, in.TenureMonths),
		Status:             StatusActive,
		StartMonth:         startOfMonth(in.StartMonth),
		DisbursementDate:   in.DisbursementDate,
	}
	return s.store.CreateAdvance(ctx, tenantID, adv)
}

func (s *Service) GetAdvance(ctx context.Context, tenantID, advanceID string) (SalaryAdvance, error) {
	return s.store.GetAdvance(ctx, tenantID, advanceID)
}

func (s *Service) ListAdvances(ctx context.Context, tenantID, employeeID string, limit, offset int) ([]SalaryAdvance, int, error) {
	return s.store.ListAdvances(ctx, tenantID, employeeID, limit, offset)
}

// CancelAdvance voids an agreement that has seen no repayment yet.
func (s *Service) CancelAdvance(ctx context.Context, tenantID, advanceID string) (SalaryAdvance, error) {
	adv, err := s.store.GetAdvance(ctx, tenantID, advanceID)
	if err != nil {
		return SalaryAdvance{}, err
	}
	if adv.Status != StatusActive {
		return SalaryAdvance{}, ErrAdvanceNotActive
	}
	if adv.PaidToDate != 0 {
		return SalaryAdvance{}, ErrCancelAfterRepayment
	}
	if err := s.store.SetStatus(ctx, tenantID, advanceID, StatusCancelled); err != nil {
		return SalaryAdvance{}, err
	}
	adv.Status = StatusCancelled
	return adv, nil
}

// ProposeInstallment resolves the EMI due for an employee in a run
// whose period ends at asOf. A zero amount means no advance applies:
// none active, or its start month has not arrived.
func (s *Service) ProposeInstallment(ctx context.Context, tenantID, employeeID string, asOf time.Time) (string, int64, error) {
	adv, err := s.store.ActiveAdvance(ctx, tenantID, employeeID)
	if errors.Is(err, ErrAdvanceNotFound) {
		return "", 0, nil
	}
	if err != nil {
		return "", 0, err
	}
	if adv.StartMonth.After(asOf) {
		return "", 0, nil
	}
	return adv.ID, NextInstallment(adv.TotalAmount, adv.TenureMonths, adv.PaidToDate), nil
}

// ApplyInstallment records one collected installment. The store bumps
// paid-to-date in a single atomic statement, clamped to the total, and
// completes the advance once fully repaid.
func (s *Service) ApplyInstallment(ctx context.Context, tenantID, advanceID string, amount int64) error {
	if amount <= 0 {
		return nil
	}
	_, err := s.store.ApplyInstallment(ctx, tenantID, advanceID, amount)
	return err
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
