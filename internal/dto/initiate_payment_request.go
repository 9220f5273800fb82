package dto

type InitiatePaymentRequest struct {
	OrderID        uint    `json:"orderId"`
	PayerReference string  `json:"payerReference"`
	Amount         float64 `json:"amount"`
}
