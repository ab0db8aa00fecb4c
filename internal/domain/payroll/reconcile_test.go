package payroll

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestPeriodsOverlap(t *testing.T) {
	if !PeriodsOverlap(day("2026-01-01"), day("2026-01-31"), day("2026-01-31"), day("2026-02-28")) {
		t.Fatal("expected overlap on shared boundary day")
	}
	if !PeriodsOverlap(day("2026-01-01"), day("2026-01-31"), day("2026-01-10"), day("2026-01-15")) {
		t.Fatal("expected overlap for contained range")
	}
	if PeriodsOverlap(day("2026-01-01"), day("2026-01-31"), day("2026-02-01"), day("2026-02-28")) {
		t.Fatal("expected no overlap for adjacent months")
	}
}

func TestReconcilesAgainst(t *testing.T) {
	if ReconcilesAgainst(RunTypeRegular) {
		t.Fatal("regular runs must not reconcile against each other")
	}
	if !ReconcilesAgainst(RunTypeOffCycle) {
		t.Fatal("expected off-cycle runs to count as already paid")
	}
	if !ReconcilesAgainst(RunTypePartialPayment) {
		t.Fatal("expected partial-payment runs to count as already paid")
	}
}

func TestAggregateAlreadyPaid(t *testing.T) {
	paid := AggregateAlreadyPaid([]PaidLine{
		{EmployeeID: "emp-1", NetPay: 5000},
		{EmployeeID: "emp-2", NetPay: 7000},
		{EmployeeID: "emp-1", NetPay: 15000},
	})

	if paid["emp-1"] != 20000 {
		t.Fatalf("expected emp-1 paid 20000, got %v", paid["emp-1"])
	}
	if paid["emp-2"] != 7000 {
		t.Fatalf("expected emp-2 paid 7000, got %v", paid["emp-2"])
	}
}
