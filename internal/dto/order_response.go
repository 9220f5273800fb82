package dto

import "time"

type OrderItemResponse struct {
	MenuItemID int     `json:"menuItemId"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
}

type OrderResponse struct {
	ID            uint                `json:"id"`
	TenantID      int                 `json:"tenantId"`
	OrderNumber   string              `json:"orderNumber"`
	OrderType     string              `json:"orderType"`
	Status        string              `json:"status"`
	TableID       *uint               `json:"tableId,omitempty"`
	Items         []OrderItemResponse `json:"items"`
	Subtotal      float64             `json:"subtotal"`
	Tax           float64             `json:"tax"`
	ServiceCharge float64             `json:"serviceCharge"`
	Discount      float64             `json:"discount"`
	Total         float64             `json:"total"`
	PaymentStatus string              `json:"paymentStatus"`
	PaymentMethod string              `json:"paymentMethod,omitempty"`
	PaidAt        *time.Time          `json:"paidAt,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
}
