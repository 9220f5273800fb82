package dto

const (
	ResultStatusPending   = "pending"
	ResultStatusCompleted = "completed"
	ResultStatusFailed    = "failed"
)

// PaymentResult is the normalized outcome of a provider notification,
// whatever shape it arrived in: inbound callback, status query, or a
// synthesized result for cash settlement and retry exhaustion.
type PaymentResult struct {
	Provider          string
	Status            string
	ExternalReference string
	OrderID           uint
	IdempotencyKey    string
	ResultCode        string
	ResultDescription string
	Receipt           string
	Amount            float64
	PayerReference    string
}
