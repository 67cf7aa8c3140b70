package dto

// FulfillmentResult reports a committed ready-for-delivery transition.
// SkippedProducts lists order-line product ids that no longer exist; the
// lines are skipped so that historical orders stay closeable.
type FulfillmentResult struct {
	OrderID          uint
	ConsumedLines    int
	ExpiryWarnings   []ExpiryWarning
	LowStockWarnings []LowStockWarning
	SkippedProducts  []int
}

// QuantityUpdateResult reports a mid-packing quantity adjustment.
type QuantityUpdateResult struct {
	OrderID       uint
	ProductID     int
	NewQuantity   int
	NewStock      int
	NewSubtotal   int64
	NewOrderTotal int64
}
