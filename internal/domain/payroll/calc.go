package payroll

type AdjustmentLine struct {
	Amount  int64
	Taxable bool
}

type SettlementInput struct {
	RunType        string
	BaseGross      int64
	BaseDeductions int64
	AlreadyPaid    int64
	EMIDue         int64
	Adjustments    []AdjustmentLine
}

type SettlementResult struct {
	AdjustedGross int64
	RawNet        int64
	NetPay        int64
	Clamped       bool
}

// ComputeSettlement derives one employee's net pay for one run.
// Off-cycle and partial-payment runs move adjustment amounts only:
// base pay, cross-run reconciliation and EMI never apply to them.
func ComputeSettlement(in SettlementInput) SettlementResult {
	baseGross := in.BaseGross
	baseDeductions := in.BaseDeductions
	alreadyPaid := in.AlreadyPaid
	emiDue := in.EMIDue
	if in.RunType != RunTypeRegular {
		baseGross = 0
		baseDeductions = 0
		alreadyPaid = 0
		emiDue = 0
	}

	var taxable, nonTaxable int64
	for _, adj := range in.Adjustments {
		if adj.Taxable {
			taxable += adj.Amount
		} else {
			nonTaxable += adj.Amount
		}
	}

	adjustedGross := baseGross + taxable
	rawNet := adjustedGross - baseDeductions + nonTaxable - alreadyPaid - emiDue

	result := SettlementResult{
		AdjustedGross: adjustedGross,
		RawNet:        rawNet,
		NetPay:        rawNet,
	}
	if result.NetPay < 0 {
		result.NetPay = 0
		result.Clamped = true
	}
	return result
}
