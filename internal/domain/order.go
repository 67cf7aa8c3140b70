package domain

import "time"

type Order struct {
	ID               uint
	OrderNumber      string
	CustomerName     string
	CustomerEmail    string
	DeliveryDate     *time.Time
	Status           string
	Version          int
	StockConsumed    bool
	StockConsumedAt  *time.Time
	PackingStartedAt *time.Time
	PackingPausedAt  *time.Time
	PackingNotes     *string
	Subtotal         int64
	TotalAmount      int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

const (
	OrderStatusConfirmed        = "confirmed"
	OrderStatusPacking          = "packing"
	OrderStatusReadyForDelivery = "ready_for_delivery"
)

// CanMarkReady reports whether the order is in a status from which the
// ready-for-delivery transition is legal.
func (o Order) CanMarkReady() bool {
	return o.Status == OrderStatusConfirmed || o.Status == OrderStatusPacking
}

// IsPaused reports the packing pause sub-state, tracked as a timestamp flag
// rather than a distinct status.
func (o Order) IsPaused() bool {
	return o.Status == OrderStatusPacking && o.PackingPausedAt != nil
}

type OrderItem struct {
	ID         uint
	OrderID    uint
	ProductID  int
	Quantity   int
	Unit       string
	UnitPrice  int64
	TotalPrice int64
}
