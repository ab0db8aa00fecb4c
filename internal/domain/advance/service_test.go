package advance

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"
)

type fakeStore struct {
	advances map[string]SalaryAdvance
	nextID   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{advances: map[string]SalaryAdvance{}}
}

func (f *fakeStore) CreateAdvance(ctx context.Context, tenantID string, adv SalaryAdvance) (SalaryAdvance, error) {
	f.nextID++
	adv.ID = "adv-" + strconv.Itoa(f.nextID)
	adv.CreatedAt = time.Now()
	f.advances[adv.ID] = adv
	return adv, nil
}

func (f *fakeStore) GetAdvance(ctx context.Context, tenantID, advanceID string) (SalaryAdvance, error) {
	adv, ok := f.advances[advanceID]
	if !ok {
		return SalaryAdvance{}, ErrAdvanceNotFound
	}
	return adv, nil
}

func (f *fakeStore) ActiveAdvance(ctx context.Context, tenantID, employeeID string) (SalaryAdvance, error) {
	for _, adv := range f.advances {
		if adv.EmployeeID == employeeID && adv.Status == StatusActive {
			return adv, nil
		}
	}
	return SalaryAdvance{}, ErrAdvanceNotFound
}

func (f *fakeStore) ListAdvances(ctx context.Context, tenantID, employeeID string, limit, offset int) ([]SalaryAdvance, int, error) {
	var out []SalaryAdvance
	for _, adv := range f.advances {
		if employeeID == "" || adv.EmployeeID == employeeID {
			out = append(out, adv)
		}
	}
	return out, len(out), nil
}

func (f *fakeStore) ApplyInstallment(ctx context.Context, tenantID, advanceID string, amount int64) (SalaryAdvance, error) {
	adv, ok := f.advances[advanceID]
	if !ok {
		return SalaryAdvance{}, ErrAdvanceNotFound
	}
	if adv.Status != StatusActive {
		return SalaryAdvance{}, ErrAdvanceNotActive
	}
	adv.PaidToDate = min(adv.PaidToDate+amount, adv.TotalAmount)
	if adv.PaidToDate >= adv.TotalAmount {
		adv.Status = StatusCompleted
	}
	f.advances[advanceID] = adv
	return adv, nil
}

func (f *fakeStore) SetStatus(ctx context.Context, tenantID, advanceID, status string) error {
	adv, ok := f.advances[advanceID]
	if !ok {
		return ErrAdvanceNotFound
	}
	adv.Status = status
	f.advances[advanceID] = adv
	return nil
}

func month(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func createAdvance(t *testing.T, svc *Service, employeeID string, total int64, tenure int) SalaryAdvance {
	t.Helper()
	adv, err := svc.CreateAdvance(context.Background(), "tenant-1", CreateAdvanceInput{
		EmployeeID:   employeeID,
		TotalAmount:  total,
		TenureMonths: tenure,
		StartMonth:   month("2026-04-01"),
	})
	if err != nil {
		t.Fatalf("create advance: %v", err)
	}
	return adv
}

func TestCreateAdvanceValidation(t *testing.T) {
	svc := NewService(newFakeStore())

	_, err := svc.CreateAdvance(context.Background(), "tenant-1", CreateAdvanceInput{
		EmployeeID: "emp-1", TotalAmount: 0, TenureMonths: 6, StartMonth: month("2026-04-01"),
	})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	_, err = svc.CreateAdvance(context.Background(), "tenant-1", CreateAdvanceInput{
		EmployeeID: "emp-1", TotalAmount: 100000, TenureMonths: 0, StartMonth: month("2026-04-01"),
	})
	if !errors.Is(err, ErrInvalidTenure) {
		t.Fatalf("expected ErrInvalidTenure, got %v", err)
	}

	_, err = svc.CreateAdvance(context.Background(), "tenant-1", CreateAdvanceInput{
		EmployeeID: "emp-1", TotalAmount: 100000, TenureMonths: 6,
	})
	if !errors.Is(err, ErrInvalidStartMonth) {
		t.Fatalf("expected ErrInvalidStartMonth, got %v", err)
	}
}

func TestCreateAdvanceNormalizesAndDerivesInstallment(t *testing.T) {
	svc := NewService(newFakeStore())
	adv, err := svc.CreateAdvance(context.Background(), "tenant-1", CreateAdvanceInput{
		EmployeeID:   "emp-1",
		TotalAmount:  150000,
		TenureMonths: 6,
		StartMonth:   month("2026-04-17"),
	})
	if err != nil {
		t.Fatalf("create advance: %v", err)
	}
	if adv.MonthlyInstallment != 25000 {
		t.Fatalf("expected installment 25000, got %v", adv.MonthlyInstallment)
	}
	if !adv.StartMonth.Equal(month("2026-04-01")) {
		t.Fatalf("expected start month normalized to first day, got %v", adv.StartMonth)
	}
	if adv.Status != StatusActive {
		t.Fatalf("expected active status, got %v", adv.Status)
	}
}

func TestCreateAdvanceRejectsSecondActive(t *testing.T) {
	svc := NewService(newFakeStore())
	createAdvance(t, svc, "emp-1", 100000, 4)

	_, err := svc.CreateAdvance(context.Background(), "tenant-1", CreateAdvanceInput{
		EmployeeID: "emp-1", TotalAmount: 50000, TenureMonths: 2, StartMonth: month("2026-05-01"),
	})
	if !errors.Is(err, ErrActiveAdvanceExists) {
		t.Fatalf("expected ErrActiveAdvanceExists, got %v", err)
	}
}

func TestCancelAdvance(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	adv := createAdvance(t, svc, "emp-1", 100000, 4)

	cancelled, err := svc.CancelAdvance(context.Background(), "tenant-1", adv.ID)
	if err != nil {
		t.Fatalf("cancel advance: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %v", cancelled.Status)
	}
	if _, err := svc.CancelAdvance(context.Background(), "tenant-1", adv.ID); !errors.Is(err, ErrAdvanceNotActive) {
		t.Fatalf("expected ErrAdvanceNotActive, got %v", err)
	}
}

func TestCancelAdvanceRejectedAfterRepayment(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	adv := createAdvance(t, svc, "emp-1", 100000, 4)

	if err := svc.ApplyInstallment(context.Background(), "tenant-1", adv.ID, 25000); err != nil {
		t.Fatalf("apply installment: %v", err)
	}
	if _, err := svc.CancelAdvance(context.Background(), "tenant-1", adv.ID); !errors.Is(err, ErrCancelAfterRepayment) {
		t.Fatalf("expected ErrCancelAfterRepayment, got %v", err)
	}
}

func TestProposeInstallment(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	// No advance at all.
	id, amount, err := svc.ProposeInstallment(context.Background(), "tenant-1", "emp-1", month("2026-04-30"))
	if err != nil || id != "" || amount != 0 {
		t.Fatalf("expected empty proposal, got id=%q amount=%v err=%v", id, amount, err)
	}

	adv := createAdvance(t, svc, "emp-1", 100000, 3)

	// Repayment has not started yet.
	id, amount, err = svc.ProposeInstallment(context.Background(), "tenant-1", "emp-1", month("2026-03-31"))
	if err != nil || id != "" || amount != 0 {
		t.Fatalf("expected no proposal before start month, got id=%q amount=%v err=%v", id, amount, err)
	}

	id, amount, err = svc.ProposeInstallment(context.Background(), "tenant-1", "emp-1", month("2026-04-30"))
	if err != nil {
		t.Fatalf("propose installment: %v", err)
	}
	if id != adv.ID {
		t.Fatalf("expected advance %q, got %q", adv.ID, id)
	}
	if amount != 33334 {
		t.Fatalf("expected first installment 33334, got %v", amount)
	}
}

func TestApplyInstallmentCompletesAdvance(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	adv := createAdvance(t, svc, "emp-1", 100000, 3)

	for _, amount := range []int64{33334, 33333, 33333} {
		if err := svc.ApplyInstallment(context.Background(), "tenant-1", adv.ID, amount); err != nil {
			t.Fatalf("apply installment: %v", err)
		}
	}

	final, err := svc.GetAdvance(context.Background(), "tenant-1", adv.ID)
	if err != nil {
		t.Fatalf("get advance: %v", err)
	}
	if final.PaidToDate != 100000 {
		t.Fatalf("expected paid to date 100000, got %v", final.PaidToDate)
	}
	if final.Status != StatusCompleted {
		t.Fatalf("expected completed, got %v", final.Status)
	}

	// Further applications are rejected, the agreement is settled.
	if err := svc.ApplyInstallment(context.Background(), "tenant-1", adv.ID, 1000); !errors.Is(err, ErrAdvanceNotActive) {
		t.Fatalf("expected ErrAdvanceNotActive, got %v", err)
	}
}

func TestApplyInstallmentIgnoresNonPositive(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	adv := createAdvance(t, svc, "emp-1", 100000, 4)

	if err := svc.ApplyInstallment(context.Background(), "tenant-1", adv.ID, 0); err != nil {
		t.Fatalf("apply zero installment: %v", err)
	}
	final, _ := svc.GetAdvance(context.Background(), "tenant-1", adv.ID)
	if final.PaidToDate != 0 {
		t.Fatalf("expected paid to date untouched, got %v", final.PaidToDate)
	}
}

func TestApplyInstallmentClampsOverpayment(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	adv := createAdvance(t, svc, "emp-1", 50000, 2)

	if err := svc.ApplyInstallment(context.Background(), "tenant-1", adv.ID, 70000); err != nil {
		t.Fatalf("apply installment: %v", err)
	}
	final, _ := svc.GetAdvance(context.Background(), "tenant-1", adv.ID)
	if final.PaidToDate != 50000 {
		t.Fatalf("expected paid to date clamped to 50000, got %v", final.PaidToDate)
	}
	if final.Status != StatusCompleted {
		t.Fatalf("expected completed, got %v", final.Status)
	}
}
