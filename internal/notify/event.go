package notify

import (
	"fmt"
	"time"
)

const (
	TypePaymentStatusUpdate = "payment:status-update"
	TypeOrderStatusUpdate   = "order:status-update"
)

// Event is transient; it is a hint, never the authoritative state. Clients
// re-fetch the order after reconnecting.
type Event struct {
	Topic     string    `json:"topic"`
	Type      string    `json:"type"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderTopic scopes an event to a single order. Publishing is always
// per-resource; there is no tenant-wide or global topic.
func OrderTopic(orderID uint) string {
	return fmt.Sprintf("order:%d", orderID)
}

type PaymentStatusPayload struct {
	OrderID       uint    `json:"orderId"`
	OrderNumber   string  `json:"orderNumber"`
	Status        string  `json:"status"`
	TransactionID uint    `json:"transactionId"`
	Reference     string  `json:"reference,omitempty"`
	Amount        float64 `json:"amount,omitempty"`
	Currency      string  `json:"currency,omitempty"`
	Message       string  `json:"message,omitempty"`
}

type OrderStatusPayload struct {
	OrderID     uint   `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
	Status      string `json:"status"`
	Message     string `json:"message,omitempty"`
}
