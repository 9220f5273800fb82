package dto

import "time"

type TableResponse struct {
	ID             uint      `json:"id"`
	TenantID       int       `json:"tenantId"`
	TableNumber    string    `json:"tableNumber"`
	Capacity       int       `json:"capacity"`
	Status         string    `json:"status"`
	CurrentOrderID *uint     `json:"currentOrderId,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
