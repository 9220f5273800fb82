package dto

type AdjustmentRequest struct {
	Field    string  `json:"field"`
	NewValue float64 `json:"newValue"`
	Reason   string  `json:"reason"`
}
