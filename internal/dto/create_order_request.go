package dto

type OrderItemRequest struct {
	MenuItemID int     `json:"menuItemId"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
}

type CreateOrderRequest struct {
	OrderType string             `json:"orderType"`
	TableID   *uint              `json:"tableId,omitempty"`
	Items     []OrderItemRequest `json:"items"`
	Discount  float64            `json:"discount"`
}
