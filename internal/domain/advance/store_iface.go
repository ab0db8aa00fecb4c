package advance

import "context"

type StoreAPI interface {
	CreateAdvance(ctx context.Context, tenantID string, adv SalaryAdvance) (SalaryAdvance, error)
	GetAdvance(ctx context.Context, tenantID, advanceID string) (SalaryAdvance, error)
	ActiveAdvance(ctx context.Context, tenantID, employeeID string) (SalaryAdvance, error)
	ListAdvances(ctx context.Context, tenantID, employeeID string, limit, offset int) ([]SalaryAdvance, int, error)
	// ApplyInstallment adds one collected installment to paid-to-date in
	// a single atomic statement, clamped to the total, completing the
	// advance once fully repaid. Only active advances are touched.
	ApplyInstallment(ctx context.Context, tenantID, advanceID string, amount int64) (SalaryAdvance, error)
	SetStatus(ctx context.Context, tenantID, advanceID, status string) error
}
