package advance

import "time"

// SalaryAdvance is a standing repayment agreement, independent of any
// single payroll run. Amounts are integer minor currency units.
type SalaryAdvance struct {
	ID                 string    `json:"id"`
	EmployeeID         string    `json:"employeeId"`
	TotalAmount        int64     `json:"totalAmount"`
	TenureMonths       int       `json:"tenureMonths"`
	MonthlyInstallment int64     `json:"monthlyInstallment"`
	PaidToDate         int64     `json:"paidToDate"`
	Status             string    `json:"status"`
	StartMonth         time.Time `json:"startMonth"`
	DisbursementDate   time.Time `json:"disbursementDate"`
	CreatedAt          time.Time `json:"createdAt"`
}

type CreateAdvanceInput struct {
	EmployeeID       string
	TotalAmount      int64
	TenureMonths     int
	StartMonth       time.Time
	DisbursementDate time.Time
}
