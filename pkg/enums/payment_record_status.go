package enums

// PaymentRecordStatus is the terminal outcome recorded on a payment ledger entry.
type PaymentRecordStatus string

const (
	PaymentRecordStatusCompleted PaymentRecordStatus = "completed"
	PaymentRecordStatusRefunded  PaymentRecordStatus = "refunded"
)

var validPaymentRecordStatuses = []PaymentRecordStatus{
	PaymentRecordStatusCompleted,
	PaymentRecordStatusRefunded,
}

// String implements fmt.Stringer.
func (p PaymentRecordStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentRecordStatus.
func (p PaymentRecordStatus) IsValid() bool {
	for _, candidate := range validPaymentRecordStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}
