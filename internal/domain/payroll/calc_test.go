package payroll

import "testing"

func TestComputeSettlementRegular(t *testing.T) {
	result := ComputeSettlement(SettlementInput{
		RunType:        RunTypeRegular,
		BaseGross:      500000,
		BaseDeductions: 100000,
		AlreadyPaid:    50000,
		EMIDue:         25000,
		Adjustments: []AdjustmentLine{
			{Amount: 30000, Taxable: true},
			{Amount: 10000, Taxable: false},
			{Amount: -5000, Taxable: false},
		},
	})

	if result.AdjustedGross != 530000 {
		t.Fatalf("expected adjusted gross 530000, got %v", result.AdjustedGross)
	}
	// 530000 - 100000 + 5000 - 50000 - 25000
	if result.NetPay != 360000 {
		t.Fatalf("expected net 360000, got %v", result.NetPay)
	}
	if result.Clamped {
		t.Fatal("expected no clamp")
	}
}

func TestComputeSettlementClampsNegativeNet(t *testing.T) {
	result := ComputeSettlement(SettlementInput{
		RunType:        RunTypeRegular,
		BaseGross:      20000,
		BaseDeductions: 5000,
		AlreadyPaid:    20000,
	})

	if result.RawNet != -5000 {
		t.Fatalf("expected raw net -5000, got %v", result.RawNet)
	}
	if result.NetPay != 0 {
		t.Fatalf("expected clamped net 0, got %v", result.NetPay)
	}
	if !result.Clamped {
		t.Fatal("expected clamp flag")
	}
}

func TestComputeSettlementOffCycleIgnoresBasePay(t *testing.T) {
	result := ComputeSettlement(SettlementInput{
		RunType:        RunTypeOffCycle,
		BaseGross:      50000,
		BaseDeductions: 10000,
		AlreadyPaid:    99999,
		EMIDue:         12345,
		Adjustments: []AdjustmentLine{
			{Amount: 5000, Taxable: false},
		},
	})

	if result.AdjustedGross != 0 {
		t.Fatalf("expected adjusted gross 0, got %v", result.AdjustedGross)
	}
	if result.NetPay != 5000 {
		t.Fatalf("expected net 5000, got %v", result.NetPay)
	}
}

func TestComputeSettlementPartialPaymentTaxableAdjustment(t *testing.T) {
	result := ComputeSettlement(SettlementInput{
		RunType:   RunTypePartialPayment,
		BaseGross: 400000,
		Adjustments: []AdjustmentLine{
			{Amount: 20000, Taxable: true},
		},
	})

	if result.AdjustedGross != 20000 {
		t.Fatalf("expected adjusted gross 20000, got %v", result.AdjustedGross)
	}
	if result.NetPay != 20000 {
		t.Fatalf("expected net 20000, got %v", result.NetPay)
	}
}

func TestComputeSettlementIdempotent(t *testing.T) {
	in := SettlementInput{
		RunType:        RunTypeRegular,
		BaseGross:      300000,
		BaseDeductions: 60000,
		EMIDue:         25000,
		Adjustments: []AdjustmentLine{
			{Amount: 15000, Taxable: true},
			{Amount: -2000, Taxable: false},
		},
	}

	first := ComputeSettlement(in)
	second := ComputeSettlement(in)
	if first != second {
		t.Fatalf("expected identical results, got %+v and %+v", first, second)
	}
}
