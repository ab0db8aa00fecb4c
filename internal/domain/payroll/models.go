package payroll

import "time"

// All monetary amounts are integer minor currency units.

type PayrollRun struct {
	ID               string    `json:"id"`
	TenantID         string    `json:"tenantId"`
	PeriodStart      time.Time `json:"periodStart"`
	PeriodEnd        time.Time `json:"periodEnd"`
	DisbursementDate time.Time `json:"disbursementDate"`
	RunType          string    `json:"runType"`
	Status           string    `json:"status"`
	TotalAmount      int64     `json:"totalAmount"`
	CreatedAt        time.Time `json:"createdAt"`
}

type EmployeeLineItem struct {
	RunID          string   `json:"runId"`
	EmployeeID     string   `json:"employeeId"`
	BaseGross      int64    `json:"baseGross"`
	BaseDeductions int64    `json:"baseDeductions"`
	AlreadyPaid    int64    `json:"alreadyPaid"`
	EMIDue         int64    `json:"emiDue"`
	NetPay         int64    `json:"netPay"`
	LineStatus     string   `json:"lineStatus"`
	Warnings       []string `json:"warnings,omitempty"`
}

type Adjustment struct {
	ID         string    `json:"id"`
	RunID      string    `json:"runId"`
	EmployeeID string    `json:"employeeId"`
	Label      string    `json:"label"`
	Amount     int64     `json:"amount"`
	Taxable    bool      `json:"taxable"`
	CreatedAt  time.Time `json:"createdAt"`
}

type CreateRunInput struct {
	PeriodStart      time.Time
	PeriodEnd        time.Time
	DisbursementDate time.Time
	RunType          string
}

type AdjustmentInput struct {
	Label   string
	Amount  int64
	Taxable bool
}

// RunTotals is the single read projection for every surface that
// displays money for a run. TotalAmount is the persisted aggregate,
// never recomputed on read.
type RunTotals struct {
	RunID       string             `json:"runId"`
	RunType     string             `json:"runType"`
	Status      string             `json:"status"`
	TotalAmount int64              `json:"totalAmount"`
	PerEmployee []EmployeeLineItem `json:"perEmployee"`
}

type ProcessFailure struct {
	EmployeeID string `json:"employeeId"`
	Reason     string `json:"reason"`
}

type ProcessOutcome struct {
	RunID     string           `json:"runId"`
	Status    string           `json:"status"`
	Succeeded []string         `json:"succeeded"`
	Failed    []ProcessFailure `json:"failed"`
}

// PaidLine is one already-disbursed line from a completed interim run,
// input to cross-run reconciliation.
type PaidLine struct {
	EmployeeID string
	NetPay     int64
}
