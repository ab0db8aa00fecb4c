package payroll

import "time"

// PeriodsOverlap reports whether two inclusive date ranges share at
// least one day.
func PeriodsOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

// ReconcilesAgainst reports whether a completed run of the given type
// counts toward "already paid this period" for a regular run. Regular
// runs never reconcile against other regular runs; that would double
// count the base settlement.
func ReconcilesAgainst(runType string) bool {
	return runType == RunTypeOffCycle || runType == RunTypePartialPayment
}

// AggregateAlreadyPaid sums disbursed net pay per employee across the
// interim lines found by the cross-run resolver.
func AggregateAlreadyPaid(lines []PaidLine) map[string]int64 {
	paid := make(map[string]int64, len(lines))
	for _, line := range lines {
		paid[line.EmployeeID] += line.NetPay
	}
	return paid
}
