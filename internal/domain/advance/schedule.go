package advance

// MonthlyInstallment is the truncated even share of the total. The
// division remainder is absorbed by the schedule, never lost.
func MonthlyInstallment(totalAmount int64, tenureMonths int) int64 {
	if tenureMonths <= 0 {
		return 0
	}
	return totalAmount / int64(tenureMonths)
}

// InstallmentSchedule returns the full repayment schedule. The
// remainder of the truncating division is spread one unit at a time
// over the earliest installments, so the schedule always sums exactly
// to the total: 100000 over 3 months is 33334, 33333, 33333.
func InstallmentSchedule(totalAmount int64, tenureMonths int) []int64 {
	if totalAmount <= 0 || tenureMonths <= 0 {
		return nil
	}
	base := totalAmount / int64(tenureMonths)
	remainder := totalAmount - base*int64(tenureMonths)

	schedule := make([]int64, tenureMonths)
	for i := range schedule {
		schedule[i] = base
		if int64(i) < remainder {
			schedule[i]++
		}
	}
	return schedule
}

// NextInstallment proposes the amount due given what has been repaid
// so far. Repayments always follow the schedule, so paidToDate lands
// on a prefix sum; if it ever does not (a manually adjusted record),
// the proposal falls back to the even share. The result is always
// clamped to the outstanding balance.
func NextInstallment(totalAmount int64, tenureMonths int, paidToDate int64) int64 {
	outstanding := totalAmount - paidToDate
	if outstanding <= 0 {
		return 0
	}

	var prefix int64
	for _, installment := range InstallmentSchedule(totalAmount, tenureMonths) {
		if prefix == paidToDate {
			return min(installment, outstanding)
		}
		prefix += installment
	}
	return min(MonthlyInstallment(totalAmount, tenureMonths), outstanding)
}
