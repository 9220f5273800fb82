package dto

type InitiatePaymentResponse struct {
	TransactionID     uint   `json:"transactionId"`
	ExternalReference string `json:"externalReference,omitempty"`
	Status            string `json:"status"`
}
