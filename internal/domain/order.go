package domain

import "time"

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

const (
	OrderTypeDineIn   = "dine-in"
	OrderTypeTakeaway = "takeaway"
	OrderTypeDelivery = "delivery"
)

const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusPartial  = "partial"
	PaymentStatusRefunded = "refunded"
)

type OrderItem struct {
	ID         uint
	OrderID    uint
	MenuItemID int
	Name       string
	Quantity   int
	Price      float64
}

// OrderAdjustment is one entry in the audit trail of post-creation edits.
type OrderAdjustment struct {
	ID        uint
	OrderID   uint
	Field     string
	OldValue  float64
	NewValue  float64
	Reason    string
	AppliedBy string
	CreatedAt time.Time
}

type Order struct {
	ID            uint
	TenantID      int
	OrderNumber   string
	OrderType     string
	Status        string
	TableID       *uint
	Items         []OrderItem
	Subtotal      float64
	Tax           float64
	ServiceCharge float64
	Discount      float64
	Total         float64
	PaymentStatus string
	PaymentMethod *string
	PaidAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// orderTransitions is the staff-driven lifecycle. paymentStatus is a parallel
// field and never participates here.
var orderTransitions = map[string]string{
	OrderStatusPending:   OrderStatusConfirmed,
	OrderStatusConfirmed: OrderStatusPreparing,
	OrderStatusPreparing: OrderStatusReady,
	OrderStatusReady:     OrderStatusCompleted,
}

// CanTransitionOrder reports whether a staff transition from one order status
// to another is allowed. Any non-terminal status may move to cancelled.
func CanTransitionOrder(from, to string) bool {
	if from == OrderStatusCompleted || from == OrderStatusCancelled {
		return false
	}
	if to == OrderStatusCancelled {
		return true
	}
	return orderTransitions[from] == to
}

// Active reports whether the order still ties up resources: anything outside
// completed/cancelled blocks the release of its table.
func (o *Order) Active() bool {
	return o.Status != OrderStatusCompleted && o.Status != OrderStatusCancelled
}

// ComputedTotal is the total the monetary fields must always satisfy.
func (o *Order) ComputedTotal() float64 {
	return o.Subtotal + o.Tax + o.ServiceCharge - o.Discount
}
