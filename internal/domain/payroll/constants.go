package payroll

const (
	RunTypeRegular        = "regular"
	RunTypeOffCycle       = "off_cycle"
	RunTypePartialPayment = "partial_payment"

	RunStatusDraft      = "draft"
	RunStatusProcessing = "processing"
	RunStatusCompleted  = "completed"
	RunStatusFailed     = "failed"

	LineStatusActive   = "active"
	LineStatusExcluded = "excluded"

	WarningNetClamped = "net_clamped"
)

func ValidRunType(runType string) bool {
	switch runType {
	case RunTypeRegular, RunTypeOffCycle, RunTypePartialPayment:
		return true
	}
	return false
}
