package domain

import "time"

const (
	TransactionStatusPending    = "pending"
	TransactionStatusProcessing = "processing"
	TransactionStatusCompleted  = "completed"
	TransactionStatusFailed     = "failed"
	TransactionStatusCancelled  = "cancelled"
)

const (
	ProviderMpesa = "mpesa"
	ProviderCard  = "card"
	ProviderCash  = "cash"
)

// ResultCodeGatewayUnreachable marks a transaction that failed because the
// provider could not be reached after retry exhaustion.
const ResultCodeGatewayUnreachable = "gateway_unreachable"

// PaymentTransaction is the authoritative record of one payment attempt.
// Once terminal it is immutable; the repository enforces this with a
// compare-and-set on status.
type PaymentTransaction struct {
	ID                uint
	TenantID          int
	OrderID           uint
	Provider          string
	ExternalReference *string
	PayerReference    string
	Amount            float64
	Currency          string
	Status            string
	ResultCode        *string
	ResultDescription *string
	IdempotencyKey    string
	Stale             bool
	CreatedAt         time.Time
	ResolvedAt        *time.Time
}

func (t *PaymentTransaction) Terminal() bool {
	switch t.Status {
	case TransactionStatusCompleted, TransactionStatusFailed, TransactionStatusCancelled:
		return true
	}
	return false
}
