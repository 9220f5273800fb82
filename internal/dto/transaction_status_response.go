package dto

import "time"

type TransactionStatusResponse struct {
	TransactionID     uint       `json:"transactionId"`
	OrderID           uint       `json:"orderId"`
	Provider          string     `json:"provider"`
	ExternalReference string     `json:"externalReference,omitempty"`
	Amount            float64    `json:"amount"`
	Currency          string     `json:"currency"`
	Status            string     `json:"status"`
	ResultCode        string     `json:"resultCode,omitempty"`
	ResultDescription string     `json:"resultDescription,omitempty"`
	Stale             bool       `json:"stale"`
	CreatedAt         time.Time  `json:"createdAt"`
	ResolvedAt        *time.Time `json:"resolvedAt,omitempty"`
}
