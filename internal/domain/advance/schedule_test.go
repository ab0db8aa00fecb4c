package advance

import "testing"

func TestInstallmentScheduleEvenSplit(t *testing.T) {
	schedule := InstallmentSchedule(150000, 6)
	if len(schedule) != 6 {
		t.Fatalf("expected 6 installments, got %v", len(schedule))
	}
	for i, amount := range schedule {
		if amount != 25000 {
			t.Fatalf("expected installment %d to be 25000, got %v", i, amount)
		}
	}
}

func TestInstallmentScheduleSpreadsRemainder(t *testing.T) {
	schedule := InstallmentSchedule(100000, 3)
	if len(schedule) != 3 {
		t.Fatalf("expected 3 installments, got %v", len(schedule))
	}
	if schedule[0] != 33334 || schedule[1] != 33333 || schedule[2] != 33333 {
		t.Fatalf("expected [33334 33333 33333], got %v", schedule)
	}

	var sum int64
	for _, amount := range schedule {
		sum += amount
	}
	if sum != 100000 {
		t.Fatalf("expected schedule to sum to 100000, got %v", sum)
	}
}

func TestMonthlyInstallmentTruncates(t *testing.T) {
	if got := MonthlyInstallment(100000, 3); got != 33333 {
		t.Fatalf("expected 33333, got %v", got)
	}
	if got := MonthlyInstallment(100000, 0); got != 0 {
		t.Fatalf("expected 0 for zero tenure, got %v", got)
	}
}

func TestNextInstallmentFollowsSchedule(t *testing.T) {
	if got := NextInstallment(100000, 3, 0); got != 33334 {
		t.Fatalf("expected first installment 33334, got %v", got)
	}
	if got := NextInstallment(100000, 3, 33334); got != 33333 {
		t.Fatalf("expected second installment 33333, got %v", got)
	}
	if got := NextInstallment(100000, 3, 66667); got != 33333 {
		t.Fatalf("expected final installment 33333, got %v", got)
	}
	if got := NextInstallment(100000, 3, 100000); got != 0 {
		t.Fatalf("expected nothing due when fully repaid, got %v", got)
	}
}

func TestNextInstallmentClampsToOutstanding(t *testing.T) {
	// An off-schedule paid-to-date falls back to the even share,
	// clamped to what is left.
	if got := NextInstallment(100000, 3, 90000); got != 10000 {
		t.Fatalf("expected clamp to outstanding 10000, got %v", got)
	}
}
